package handler

import (
	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

// --- Request types ---

type attachmentRequest struct {
	FileName string `json:"fileName" validate:"required"`
	MimeType string `json:"mimeType"`
	// Content is base64 in JSON.
	Content []byte `json:"content" validate:"required"`
}

type emailRequest struct {
	Send bool     `json:"send"`
	To   []string `json:"to" validate:"dive,email"`
	CC   []string `json:"cc" validate:"dive,email"`
	BCC  []string `json:"bcc" validate:"dive,email"`
	Body string   `json:"body"`
}

type recordRequest struct {
	Supplier    string              `json:"fornecedor" validate:"required"`
	Departure   string              `json:"saida"`
	Invoices    string              `json:"nfs"`
	AWBNumber   string              `json:"awbNumber"`
	Tracking    string              `json:"rastreio"`
	Status      string              `json:"status"`
	Arrival     string              `json:"chegada"`
	Brand       string              `json:"marca"`
	Material    string              `json:"material"`
	Notes       string              `json:"observacao"`
	Documents   string              `json:"documentos"`
	Attachments []attachmentRequest `json:"attachments" validate:"max=11,dive"`
	Email       emailRequest        `json:"email"`
}

func (r recordRequest) toInput(kind domain.RecordKind, id, actor string) ports.SaveRecordInput {
	uploads := make([]ports.UploadInput, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		uploads = append(uploads, ports.UploadInput{FileName: a.FileName, MimeType: a.MimeType, Content: a.Content})
	}
	return ports.SaveRecordInput{
		Kind:      kind,
		ID:        id,
		Supplier:  r.Supplier,
		Departure: r.Departure,
		Invoices:  r.Invoices,
		AWBNumber: r.AWBNumber,
		Tracking:  r.Tracking,
		Status:    domain.RecordStatus(r.Status),
		Arrival:   r.Arrival,
		Brand:     r.Brand,
		Material:  r.Material,
		Notes:     r.Notes,
		Documents: r.Documents,
		Uploads:   uploads,
		Email: ports.EmailInput{
			Send: r.Email.Send,
			To:   r.Email.To,
			CC:   r.Email.CC,
			BCC:  r.Email.BCC,
			Body: r.Email.Body,
		},
		Actor: actor,
	}
}

// --- Response types ---

type recordListResponse struct {
	Total   int              `json:"total"`
	Records []map[string]any `json:"records"`
}

type attachmentsResponse struct {
	ID    string   `json:"id"`
	Links []string `json:"links"`
}

type uploadResponse struct {
	URL string `json:"url"`
}
