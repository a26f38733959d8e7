package domain

import "time"

// AuditAction names a mutation performed through the portal.
type AuditAction string

const (
	AuditRecordSaved   AuditAction = "record_saved"
	AuditRecordDeleted AuditAction = "record_deleted"
	AuditUserSaved     AuditAction = "user_saved"
	AuditUserDeleted   AuditAction = "user_deleted"
	AuditGroupCreated  AuditAction = "group_created"
	AuditLoginSuccess  AuditAction = "login_success"
	AuditLoginDenied   AuditAction = "login_denied"
)

// AuditEvent records who did what to which sheet row.
type AuditEvent struct {
	ID        string      `json:"id"`
	Action    AuditAction `json:"action"`
	Sheet     string      `json:"sheet"`
	Subject   string      `json:"subject"`
	Actor     string      `json:"actor"`
	Detail    string      `json:"detail,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
