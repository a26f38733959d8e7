package handler

import (
	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// toRecordView flattens a record for the UI. Every sheet column is kept under
// its original label and the canonical fields are written on top, so both
// names are valid reads and the canonical value wins on a clash.
func toRecordView(r domain.ShipmentRecord) map[string]any {
	out := make(map[string]any, len(r.Raw)+18)
	for k, v := range r.Raw {
		out[k] = v
	}

	out["id"] = r.ID
	out["kind"] = r.Kind
	out["fornecedor"] = r.Supplier
	out["saida"] = r.Departure
	out["nfs"] = r.Invoices
	out["awbNumber"] = r.AWBNumber
	out["rastreio"] = r.Tracking
	out["status"] = r.Status
	out["chegada"] = r.Arrival
	out["marca"] = r.Brand
	out["material"] = r.Material
	out["observacao"] = r.Notes
	out["documentos"] = r.Documents
	out["email"] = r.Email
	out["attachments"] = nonNil(r.AttachmentLinks())
	out["saidaFormatada"] = domain.FormatDate(r.Departure)
	out["chegadaFormatada"] = domain.FormatDate(r.Arrival)
	out["finalizado"] = r.Status.IsFinished()
	return out
}

func toRecordViews(records []domain.ShipmentRecord) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordView(r))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
