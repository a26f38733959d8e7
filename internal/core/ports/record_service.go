package ports

import (
	"context"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// SearchScope selects which fields a record search scans.
type SearchScope string

const (
	ScopeFollowUp  SearchScope = "follow-up"
	ScopeDashboard SearchScope = "dashboard"
)

// ListRecordsInput carries the search parameters of the record views.
type ListRecordsInput struct {
	Kind     domain.RecordKind
	Search   string
	Statuses []domain.RecordStatus // empty = every status
	Scope    SearchScope
}

// EmailInput is the optional e-mail notification attached to a save.
type EmailInput struct {
	Send bool
	To   []string
	CC   []string
	BCC  []string
	Body string
}

// SaveRecordInput carries the create/edit form.
type SaveRecordInput struct {
	Kind      domain.RecordKind
	ID        string // empty on create
	Supplier  string
	Departure string
	Invoices  string
	AWBNumber string
	Tracking  string
	Status    domain.RecordStatus
	Arrival   string
	Brand     string
	Material  string
	Notes     string
	Documents string
	Uploads   []UploadInput
	Email     EmailInput
	Actor     string
}

// RecordService implements the record views' use cases.
type RecordService interface {
	List(ctx context.Context, in ListRecordsInput) []domain.ShipmentRecord
	History(ctx context.Context, kind domain.RecordKind, search string) []domain.ShipmentRecord
	Get(ctx context.Context, kind domain.RecordKind, id string) (*domain.ShipmentRecord, error)
	Create(ctx context.Context, in SaveRecordInput) (*domain.ShipmentRecord, error)
	Update(ctx context.Context, in SaveRecordInput) (*domain.ShipmentRecord, error)
	Delete(ctx context.Context, kind domain.RecordKind, id, actor string) error
	Upload(ctx context.Context, in UploadInput) (string, error)
}

// ChartPoint is one bar or slice of a report chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// WeeklyPoint aggregates the records departing (or arriving) in one ISO week.
type WeeklyPoint struct {
	Week  string `json:"week"`
	Total int    `json:"total"`
	OK    int    `json:"ok"`
	Delay int    `json:"delay"`
}

// ReportSection aggregates one sheet.
type ReportSection struct {
	Total     int           `json:"total"`
	Weekly    []WeeklyPoint `json:"weekly"`
	Suppliers []ChartPoint  `json:"suppliers"`
	Materials []ChartPoint  `json:"materials"`
	Brands    []ChartPoint  `json:"brands"`
	Statuses  []ChartPoint  `json:"statuses"`
}

// Report is the BI view over both record sheets.
type Report struct {
	AWB ReportSection `json:"awb"`
	Pre ReportSection `json:"pre"`
}

// ReportService builds the BI view.
type ReportService interface {
	Build(ctx context.Context) (*Report, error)
}
