package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

const topSuppliers = 5

// Labels used when a record leaves the column empty.
const (
	unknownSupplier = "DESCONHECIDO"
	unknownMaterial = "NÃO INF."
	unknownBrand    = "OUTROS"
	unknownStatus   = "PENDENTE"
)

type ReportService struct {
	repo   ports.RecordRepository
	logger zerolog.Logger
}

func NewReportService(repo ports.RecordRepository, logger zerolog.Logger) *ReportService {
	return &ReportService{repo: repo, logger: logger}
}

// Build loads both record sheets concurrently and aggregates each one.
func (s *ReportService) Build(ctx context.Context) (*ports.Report, error) {
	var awb, pre []domain.ShipmentRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		awb = s.repo.List(gctx, domain.KindAWB)
		return gctx.Err()
	})
	g.Go(func() error {
		pre = s.repo.List(gctx, domain.KindPre)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	s.logger.Debug().Int("awb", len(awb)).Int("pre", len(pre)).Msg("report built")
	return &ports.Report{AWB: aggregate(awb), Pre: aggregate(pre)}, nil
}

// counter keeps insertion order so ties and unsorted charts stay stable.
type counter struct {
	order []string
	n     map[string]int
}

func newCounter() *counter {
	return &counter{n: make(map[string]int)}
}

func (c *counter) inc(key string) {
	if _, ok := c.n[key]; !ok {
		c.order = append(c.order, key)
	}
	c.n[key]++
}

func (c *counter) points() []ports.ChartPoint {
	out := make([]ports.ChartPoint, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, ports.ChartPoint{Name: k, Value: c.n[k]})
	}
	return out
}

func (c *counter) sorted(limit int) []ports.ChartPoint {
	out := c.points()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func aggregate(records []domain.ShipmentRecord) ports.ReportSection {
	var (
		weekOrder []string
		weeks     = make(map[string]*ports.WeeklyPoint)
		suppliers = newCounter()
		materials = newCounter()
		brands    = newCounter()
		statuses  = newCounter()
	)

	for _, r := range records {
		status := strings.ToUpper(strings.TrimSpace(string(r.Status)))

		raw := r.Departure
		if strings.TrimSpace(raw) == "" {
			raw = r.Arrival
		}
		if t, ok := domain.ParseDate(raw); ok {
			_, wk := t.ISOWeek()
			week := fmt.Sprintf("S%d", wk)
			p, ok := weeks[week]
			if !ok {
				p = &ports.WeeklyPoint{Week: week}
				weeks[week] = p
				weekOrder = append(weekOrder, week)
			}
			p.Total++
			if strings.Contains(status, "OK") || strings.Contains(status, string(domain.StatusEntregue)) {
				p.OK++
			}
			if strings.Contains(status, string(domain.StatusAtrasado)) {
				p.Delay++
			}
		}

		suppliers.inc(label(r.Supplier, unknownSupplier))
		materials.inc(label(r.Material, unknownMaterial))
		brands.inc(label(r.Brand, unknownBrand))
		statuses.inc(label(status, unknownStatus))
	}

	weekly := make([]ports.WeeklyPoint, 0, len(weekOrder))
	for _, w := range weekOrder {
		weekly = append(weekly, *weeks[w])
	}

	return ports.ReportSection{
		Total:     len(records),
		Weekly:    weekly,
		Suppliers: suppliers.sorted(topSuppliers),
		Materials: materials.sorted(0),
		Brands:    brands.sorted(0),
		Statuses:  statuses.points(),
	}
}

func label(v, fallback string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return fallback
	}
	return v
}
