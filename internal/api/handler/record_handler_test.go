package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
	"github.com/pcp-logistica/tracking-portal/internal/infrastructure/sheets"
)

var editor = &domain.User{ID: "u1", Name: "ANA", Role: domain.RoleUser, AllowedViews: domain.ViewSet{domain.ViewFollowUp}}

func sampleRecords() []domain.ShipmentRecord {
	return []domain.ShipmentRecord{
		{
			ID: "r1", Kind: domain.KindAWB, Supplier: "ACME", Status: domain.StatusEmTransito, Departure: "2024-03-05",
			Documents: "https://files.test/a.pdf", LegacyLinks: []string{"https://files.test/b.pdf", "n/a"},
			Raw: map[string]any{"ID": "r1", "FORNECEDOR": "ACME", "fornecedor": "stale"},
		},
		{ID: "r2", Kind: domain.KindAWB, Supplier: "GLOBEX", Status: domain.StatusEntregue},
	}
}

func TestRecordHandler_List(t *testing.T) {
	svc := &stubRecordService{records: sampleRecords()}
	c, rec := newJSONContext(http.MethodGet, "/v1/records/awb?q=acme&status=ENTREGUE,ok&status=atrasado&scope=dashboard", "", editor)
	c.SetParamNames("kind")
	c.SetParamValues("awb")

	if err := NewRecordHandler(svc).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.lastList.Search != "acme" || svc.lastList.Scope != ports.ScopeDashboard || svc.lastList.Kind != domain.KindAWB {
		t.Errorf("unexpected list input %+v", svc.lastList)
	}
	want := []domain.RecordStatus{domain.StatusEntregue, domain.StatusOK, domain.StatusAtrasado}
	if len(svc.lastList.Statuses) != len(want) {
		t.Fatalf("expected statuses %v, got %v", want, svc.lastList.Statuses)
	}
	for i := range want {
		if svc.lastList.Statuses[i] != want[i] {
			t.Errorf("status %d: expected %q, got %q", i, want[i], svc.lastList.Statuses[i])
		}
	}

	var resp recordListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected 2 records, got %d", resp.Total)
	}
	first := resp.Records[0]
	if first["FORNECEDOR"] != "ACME" {
		t.Errorf("raw label must be kept, got %v", first["FORNECEDOR"])
	}
	if first["fornecedor"] != "ACME" {
		t.Errorf("canonical field must win over raw key, got %v", first["fornecedor"])
	}
	if first["saidaFormatada"] != "05/03/2024" {
		t.Errorf("unexpected formatted date %v", first["saidaFormatada"])
	}
	if links, _ := first["attachments"].([]any); len(links) != 2 {
		t.Errorf("expected 2 attachment links, got %v", first["attachments"])
	}
}

func TestRecordHandler_UnknownKind(t *testing.T) {
	c, _ := newJSONContext(http.MethodGet, "/v1/records/xyz", "", editor)
	c.SetParamNames("kind")
	c.SetParamValues("xyz")

	if code := httpCode(t, NewRecordHandler(&stubRecordService{}).List(c)); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestRecordHandler_HistoryAndGet(t *testing.T) {
	svc := &stubRecordService{records: sampleRecords()}
	h := NewRecordHandler(svc)

	c, rec := newJSONContext(http.MethodGet, "/v1/records/awb/history", "", editor)
	c.SetParamNames("kind")
	c.SetParamValues("awb")
	if err := h.History(c); err != nil {
		t.Fatalf("history error: %v", err)
	}
	var list recordListResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 1 || list.Records[0]["id"] != "r2" {
		t.Fatalf("expected only finished r2, got %+v", list)
	}

	c, rec = newJSONContext(http.MethodGet, "/v1/records/awb/r1/attachments", "", editor)
	c.SetParamNames("kind", "id")
	c.SetParamValues("awb", "r1")
	if err := h.Attachments(c); err != nil {
		t.Fatalf("attachments error: %v", err)
	}
	var att attachmentsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &att)
	if len(att.Links) != 2 {
		t.Fatalf("expected 2 links, got %v", att.Links)
	}

	c, _ = newJSONContext(http.MethodGet, "/v1/records/awb/zzz", "", editor)
	c.SetParamNames("kind", "id")
	c.SetParamValues("awb", "zzz")
	if err := h.Get(c); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRecordHandler_Create(t *testing.T) {
	svc := &stubRecordService{}
	body := `{"fornecedor":"ACME","saida":"2024-03-05","attachments":[{"fileName":"nf.pdf","mimeType":"application/pdf","content":"aGVsbG8="}],"email":{"send":true,"to":["ops@empresa.com"]}}`
	c, rec := newJSONContext(http.MethodPost, "/v1/records/pre", body, editor)
	c.SetParamNames("kind")
	c.SetParamValues("pre")

	if err := NewRecordHandler(svc).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	in := svc.lastSave
	if in.Kind != domain.KindPre || in.ID != "" || in.Actor != "ANA" {
		t.Errorf("unexpected input %+v", in)
	}
	if len(in.Uploads) != 1 || string(in.Uploads[0].Content) != "hello" {
		t.Errorf("attachment not decoded: %+v", in.Uploads)
	}
	if !in.Email.Send || len(in.Email.To) != 1 {
		t.Errorf("email not mapped: %+v", in.Email)
	}
}

func TestRecordHandler_Create_Validation(t *testing.T) {
	tests := map[string]string{
		"missing supplier": `{"saida":"2024-03-05"}`,
		"bad email":        `{"fornecedor":"ACME","email":{"to":["nope"]}}`,
		"bad attachment":   `{"fornecedor":"ACME","attachments":[{"content":"aGk="}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newJSONContext(http.MethodPost, "/v1/records/awb", body, editor)
			c.SetParamNames("kind")
			c.SetParamValues("awb")
			if code := httpCode(t, NewRecordHandler(&stubRecordService{}).Create(c)); code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", code)
			}
		})
	}
}

func TestRecordHandler_UpdateAndDelete(t *testing.T) {
	svc := &stubRecordService{records: sampleRecords()}
	h := NewRecordHandler(svc)

	c, rec := newJSONContext(http.MethodPut, "/v1/records/awb/r1", `{"fornecedor":"ACME","status":"ENTREGUE"}`, editor)
	c.SetParamNames("kind", "id")
	c.SetParamValues("awb", "r1")
	if err := h.Update(c); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if rec.Code != http.StatusOK || svc.lastSave.ID != "r1" || svc.lastSave.Status != domain.StatusEntregue {
		t.Fatalf("unexpected update %d %+v", rec.Code, svc.lastSave)
	}

	svc.saveErr = sheets.ErrUnavailable
	c, _ = newJSONContext(http.MethodPut, "/v1/records/awb/missing", `{"fornecedor":"ACME"}`, editor)
	c.SetParamNames("kind", "id")
	c.SetParamValues("awb", "missing")
	if err := h.Update(c); !errors.Is(err, sheets.ErrUnavailable) {
		t.Fatalf("expected store error, got %v", err)
	}
	if svc.lastSave.ID != "missing" {
		t.Fatalf("expected save attempt for unknown id, got %+v", svc.lastSave)
	}
	svc.saveErr = nil

	c, rec = newJSONContext(http.MethodDelete, "/v1/records/awb/r1", "", editor)
	c.SetParamNames("kind", "id")
	c.SetParamValues("awb", "r1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if rec.Code != http.StatusNoContent || svc.deleted != "r1" {
		t.Fatalf("unexpected delete %d %q", rec.Code, svc.deleted)
	}
}
