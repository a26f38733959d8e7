package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pcp-logistica/tracking-portal/internal/api/metrics"
	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

type RecordService struct {
	repo     ports.RecordRepository
	uploader ports.FileUploader
	audit    ports.Auditor
	logger   zerolog.Logger
}

func NewRecordService(repo ports.RecordRepository, uploader ports.FileUploader, audit ports.Auditor, logger zerolog.Logger) *RecordService {
	return &RecordService{repo: repo, uploader: uploader, audit: auditorOrNoop(audit), logger: logger}
}

// List returns the records of one sheet matching the search term and, when
// given, one of the selected statuses.
func (s *RecordService) List(ctx context.Context, in ports.ListRecordsInput) []domain.ShipmentRecord {
	records := s.repo.List(ctx, in.Kind)
	out := make([]domain.ShipmentRecord, 0, len(records))
	for _, r := range records {
		fields := r.FollowUpSearchFields()
		if in.Scope == ports.ScopeDashboard {
			fields = r.DashboardSearchFields()
		}
		if !r.Matches(in.Search, fields...) || !statusSelected(r.Status, in.Statuses) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// History returns the finished records (ENTREGUE or OK) matching search.
func (s *RecordService) History(ctx context.Context, kind domain.RecordKind, search string) []domain.ShipmentRecord {
	records := s.repo.List(ctx, kind)
	out := make([]domain.ShipmentRecord, 0, len(records))
	for _, r := range records {
		if r.Status.IsFinished() && r.Matches(search, r.FollowUpSearchFields()...) {
			out = append(out, r)
		}
	}
	return out
}

func (s *RecordService) Get(ctx context.Context, kind domain.RecordKind, id string) (*domain.ShipmentRecord, error) {
	for _, r := range s.repo.List(ctx, kind) {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

// Create assigns a fresh identifier, uploads pending attachments and saves
// the record.
func (s *RecordService) Create(ctx context.Context, in ports.SaveRecordInput) (*domain.ShipmentRecord, error) {
	in.ID = generateID()
	rec, err := s.save(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	metrics.RecordMutationsTotal.WithLabelValues(string(rec.Kind), "create").Inc()
	s.logger.Info().Str("id", rec.ID).Str("kind", string(rec.Kind)).Str("actor", in.Actor).Msg("record created")
	return rec, nil
}

// Update saves the record under its existing identifier. SAVE is an upsert
// decided by the store, so the id is not looked up first.
func (s *RecordService) Update(ctx context.Context, in ports.SaveRecordInput) (*domain.ShipmentRecord, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("update record: %w: missing id", domain.ErrInvalidInput)
	}
	rec, err := s.save(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	metrics.RecordMutationsTotal.WithLabelValues(string(rec.Kind), "update").Inc()
	s.logger.Info().Str("id", rec.ID).Str("kind", string(rec.Kind)).Str("actor", in.Actor).Msg("record updated")
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, kind domain.RecordKind, id, actor string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("delete record: %w: missing id", domain.ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	metrics.RecordMutationsTotal.WithLabelValues(string(kind), "delete").Inc()
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditRecordDeleted,
		Sheet:     string(kind),
		Subject:   id,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	})
	s.logger.Info().Str("id", id).Str("kind", string(kind)).Str("actor", actor).Msg("record deleted")
	return nil
}

func (s *RecordService) Upload(ctx context.Context, in ports.UploadInput) (string, error) {
	if in.FileName == "" || len(in.Content) == 0 {
		return "", fmt.Errorf("upload: %w: empty file", domain.ErrInvalidInput)
	}
	url, err := s.uploader.Upload(ctx, in)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return url, nil
}

func (s *RecordService) save(ctx context.Context, in ports.SaveRecordInput) (*domain.ShipmentRecord, error) {
	if in.Kind != domain.KindAWB && in.Kind != domain.KindPre {
		return nil, fmt.Errorf("%w: unknown record kind %q", domain.ErrInvalidInput, in.Kind)
	}

	docs := in.Documents
	if len(in.Uploads) > 0 {
		urls := make([]string, 0, len(in.Uploads))
		for _, u := range in.Uploads {
			url, err := s.Upload(ctx, u)
			if err != nil {
				return nil, err
			}
			urls = append(urls, url)
		}
		docs = domain.AppendDocuments(docs, urls...)
	}

	status := domain.RecordStatus(strings.TrimSpace(string(in.Status)))
	if status == "" {
		status = domain.StatusEmTransito
	}

	rec := domain.ShipmentRecord{
		ID:        in.ID,
		Kind:      in.Kind,
		Supplier:  in.Supplier,
		Departure: normalizeInputDate(in.Departure),
		Invoices:  in.Invoices,
		AWBNumber: in.AWBNumber,
		Tracking:  in.Tracking,
		Status:    status,
		Arrival:   normalizeInputDate(in.Arrival),
		Brand:     in.Brand,
		Material:  in.Material,
		Notes:     in.Notes,
		Documents: docs,
		Email: domain.EmailNotification{
			Send: in.Email.Send,
			To:   cleanList(in.Email.To),
			CC:   cleanList(in.Email.CC),
			BCC:  cleanList(in.Email.BCC),
			Body: in.Email.Body,
		},
	}
	if rec.Kind == domain.KindPre {
		rec.AWBNumber = "-"
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("id", rec.ID).Msg("failed to save record")
		return nil, err
	}
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditRecordSaved,
		Sheet:     string(rec.Kind),
		Subject:   rec.ID,
		Actor:     in.Actor,
		Detail:    string(rec.Status),
		Timestamp: time.Now().UTC(),
	})
	return &rec, nil
}

func statusSelected(status domain.RecordStatus, selected []domain.RecordStatus) bool {
	if len(selected) == 0 {
		return true
	}
	current := strings.TrimSpace(string(status))
	for _, s := range selected {
		if strings.TrimSpace(string(s)) == current {
			return true
		}
	}
	return false
}

// normalizeInputDate rewrites parseable dates as YYYY-MM-DD and keeps
// anything else verbatim.
func normalizeInputDate(raw string) string {
	if d := domain.InputDate(raw); d != "" {
		return d
	}
	return strings.TrimSpace(raw)
}

func cleanList(in []string) []string {
	out := []string{}
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
