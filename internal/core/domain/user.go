package domain

import "strings"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	UserStatusActive   = "ativo"
	UserStatusInactive = "inativo"
)

// User models an operator account as stored in the user registry sheet.
// Password is kept in plain text because that is how the registry stores it;
// it never leaves the service.
type User struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"-"`
	Role         string  `json:"role"`
	Status       string  `json:"status"`
	Cargo        string  `json:"cargo"`
	Bio          string  `json:"bio"`
	Location     string  `json:"location"`
	Birthday     string  `json:"birthday"`
	ProfileImage string  `json:"profileImage,omitempty"`
	AllowedViews ViewSet `json:"allowedViews"`
}

// NormalizeRole maps any role text onto admin or user.
func NormalizeRole(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// NormalizeUserStatus maps status text onto ativo or inativo. Only the exact
// token "ativo" (ignoring case and surrounding spaces) is active.
func NormalizeUserStatus(s string) string {
	if strings.ToLower(strings.TrimSpace(s)) == UserStatusActive {
		return UserStatusActive
	}
	return UserStatusInactive
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive reports whether the user may log in.
func (u User) IsActive() bool {
	return NormalizeUserStatus(u.Status) == UserStatusActive
}

// Views returns the effective view set: every view for admins, the parsed
// permission set otherwise.
func (u User) Views() ViewSet {
	if u.IsAdmin() {
		return AllViews()
	}
	return u.AllowedViews
}

// CanView reports whether the user may open v.
func (u User) CanView(v View) bool {
	return u.Views().Has(v)
}

// CanMutateRecords reports whether the user may create, edit or delete shipment
// records. Access to either follow-up view grants it regardless of which view
// is currently open.
func (u User) CanMutateRecords() bool {
	views := u.Views()
	return views.Has(ViewFollowUp) || views.Has(ViewFollowUpPre)
}

// MatchesCredentials compares e-mail (case-insensitive) and password, both
// trimmed, against the stored row.
func (u User) MatchesCredentials(email, password string) bool {
	return strings.ToLower(strings.TrimSpace(u.Email)) == strings.ToLower(strings.TrimSpace(email)) &&
		strings.TrimSpace(u.Password) == strings.TrimSpace(password)
}
