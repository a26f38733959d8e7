package domain

import (
	"strings"
)

// RecordStatus is the operational state of a shipment record as written in the
// status column of the sheet.
type RecordStatus string

const (
	StatusEmTransito    RecordStatus = "EM TRÂNSITO"
	StatusDisponivel    RecordStatus = "DISPONIVEL"
	StatusEntregue      RecordStatus = "ENTREGUE"
	StatusAtrasado      RecordStatus = "ATRASADO"
	StatusAguardandoAWB RecordStatus = "AGUARDANDO AWB"
	StatusColetaErrada  RecordStatus = "COLETA ERRADA"
	StatusOK            RecordStatus = "OK"
)

// KnownStatuses lists the closed status vocabulary in display order.
var KnownStatuses = []RecordStatus{
	StatusEmTransito,
	StatusDisponivel,
	StatusEntregue,
	StatusAtrasado,
	StatusAguardandoAWB,
	StatusColetaErrada,
	StatusOK,
}

// IsKnown reports whether s belongs to the closed status set. Unknown values are
// still carried and displayed verbatim.
func (s RecordStatus) IsKnown() bool {
	for _, k := range KnownStatuses {
		if k == s {
			return true
		}
	}
	return false
}

// IsFinished reports whether the record belongs in the history view.
func (s RecordStatus) IsFinished() bool {
	v := strings.ToUpper(strings.TrimSpace(string(s)))
	return v == string(StatusEntregue) || v == string(StatusOK)
}

// RecordKind selects the sheet a record lives in.
type RecordKind string

const (
	KindAWB RecordKind = "awb"
	KindPre RecordKind = "pre"
)

// ParseRecordKind maps a path segment onto a RecordKind.
func ParseRecordKind(s string) (RecordKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "awb", "":
		return KindAWB, true
	case "pre", "pré":
		return KindPre, true
	}
	return "", false
}

// EmailNotification is the optional e-mail the remote store sends when a record
// is saved with Send set.
type EmailNotification struct {
	Send bool     `json:"send_email"`
	To   []string `json:"email_to"`
	CC   []string `json:"email_cc"`
	BCC  []string `json:"email_bcc"`
	Body string   `json:"email_body"`
}

// ShipmentRecord is one air waybill or pre-shipment notice.
//
// Raw keeps every column exactly as the sheet returned it so callers that still
// address spreadsheet labels can read them; the typed fields are the canonical
// view and win when both are rendered together.
type ShipmentRecord struct {
	ID          string            `json:"id"`
	Kind        RecordKind        `json:"kind"`
	Supplier    string            `json:"fornecedor"`
	Departure   string            `json:"saida"`
	Invoices    string            `json:"nfs"`
	AWBNumber   string            `json:"awbNumber"`
	Tracking    string            `json:"rastreio"`
	Status      RecordStatus      `json:"status"`
	Arrival     string            `json:"chegada"`
	Brand       string            `json:"marca"`
	Material    string            `json:"material"`
	Notes       string            `json:"observacao"`
	Documents   string            `json:"documentos"`
	LegacyLinks []string          `json:"-"`
	Email       EmailNotification `json:"email"`
	Raw         map[string]any    `json:"-"`
}

// MaxLegacyAttachmentColumns is the number of PDF_<n> columns older sheets carry.
const MaxLegacyAttachmentColumns = 11

// AttachmentLinks returns every http(s) link found in the pipe-delimited
// documents field and the legacy PDF_1..PDF_11 columns, deduplicated in first
// seen order.
func (r ShipmentRecord) AttachmentLinks() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if !strings.HasPrefix(v, "http") {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	for _, part := range strings.Split(r.Documents, "|") {
		add(part)
	}
	for _, l := range r.LegacyLinks {
		add(l)
	}
	return out
}

// AppendDocuments returns the documents field with urls appended, keeping only
// the existing entries that are links.
func AppendDocuments(existing string, urls ...string) string {
	var parts []string
	for _, p := range strings.Split(existing, "|") {
		if strings.HasPrefix(strings.TrimSpace(p), "http") {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	parts = append(parts, urls...)
	return strings.Join(parts, "|")
}

// Matches reports whether the record contains term in one of the given fields
// (case-insensitive substring). An empty term matches everything.
func (r ShipmentRecord) Matches(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// FollowUpSearchFields are the fields the follow-up and history searches scan.
func (r ShipmentRecord) FollowUpSearchFields() []string {
	return []string{r.Supplier, r.Invoices, r.AWBNumber}
}

// DashboardSearchFields are the fields the dashboard search scans.
func (r ShipmentRecord) DashboardSearchFields() []string {
	return []string{r.Supplier, r.AWBNumber, r.Invoices, r.Brand, r.Material, r.Tracking}
}
