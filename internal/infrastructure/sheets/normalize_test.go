package sheets

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

func TestDecodeRecord_AcceptsLabelsAndAliases(t *testing.T) {
	labelled := DecodeRecord(Row{"ID": "1", "Fornecedor": "ACME", "Observação": "frágil"}, domain.KindAWB)
	aliased := DecodeRecord(Row{"id": "1", "fornecedor": "ACME", "observacao": "frágil"}, domain.KindAWB)

	if labelled.Supplier != aliased.Supplier || labelled.Notes != aliased.Notes || labelled.ID != aliased.ID {
		t.Errorf("label and alias rows decoded differently: %+v vs %+v", labelled, aliased)
	}
}

func TestDecodeRecord_LabelMatchIgnoresCaseAndAccents(t *testing.T) {
	rec := DecodeRecord(Row{"SAIDA ": "2024-01-02"}, domain.KindAWB)
	if rec.Departure != "2024-01-02" {
		t.Errorf("expected %q, got %q", "2024-01-02", rec.Departure)
	}
}

func TestDecodeRecord_LegacyAttachmentColumns(t *testing.T) {
	row := Row{
		"Documentos": "https://a|nota|https://b",
		"PDF_1":      "https://b",
		"PDF_11":     "https://c",
		"PDF_3":      "sem link",
	}
	rec := DecodeRecord(row, domain.KindAWB)

	want := []string{"https://a", "https://b", "https://c"}
	if got := rec.AttachmentLinks(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDecodeRecord_EmailFields(t *testing.T) {
	rec := DecodeRecord(Row{
		"send_email": true,
		"email_to":   "a@x.com, b@x.com,",
		"email_body": "segue",
	}, domain.KindAWB)

	if !rec.Email.Send {
		t.Error("expected send flag")
	}
	if want := []string{"a@x.com", "b@x.com"}; !reflect.DeepEqual(rec.Email.To, want) {
		t.Errorf("expected %v, got %v", want, rec.Email.To)
	}
	if len(rec.Email.CC) != 0 {
		t.Errorf("expected no cc, got %v", rec.Email.CC)
	}
}

func TestDecodeRecord_KeepsUnknownStatus(t *testing.T) {
	rec := DecodeRecord(Row{"Status": "EXTRAVIADO"}, domain.KindAWB)
	if rec.Status != "EXTRAVIADO" {
		t.Errorf("expected raw status, got %q", rec.Status)
	}
	if rec.Raw["Status"] != "EXTRAVIADO" {
		t.Errorf("raw row not kept")
	}
}

func TestDecodeUser_Normalizes(t *testing.T) {
	u := DecodeUser(Row{
		"ID":                           json.Number("42"),
		"USUÁRIO":                      "JOÃO",
		"E-MAIL":                       "joao@empresa.com",
		"PAPEL":                        "ADMIN",
		"STATUS":                       " Ativo ",
		"Permissões de Tela (Módulos)": "DASHBOARD; CHAT EQUIPE",
	})

	if u.ID != "42" {
		t.Errorf("expected id 42, got %q", u.ID)
	}
	if u.Role != domain.RoleAdmin || u.Status != domain.UserStatusActive {
		t.Errorf("unexpected role/status %q/%q", u.Role, u.Status)
	}
	if want := (domain.ViewSet{domain.ViewDashboard, domain.ViewChat}); !reflect.DeepEqual(u.AllowedViews, want) {
		t.Errorf("expected %v, got %v", want, u.AllowedViews)
	}
}

func TestDecodeUser_AnythingButAtivoIsInactive(t *testing.T) {
	for _, status := range []string{"", "inativo", "ativo.", "ATIVOS", "bloqueado"} {
		if u := DecodeUser(Row{"STATUS": status}); u.Status != domain.UserStatusInactive {
			t.Errorf("status %q: expected inativo, got %q", status, u.Status)
		}
	}
}

func TestDecodeMessage_Defaults(t *testing.T) {
	m := DecodeMessage(Row{"ID": "7", "img": "https://img/1.png"})
	if m.User != domain.DefaultAuthor {
		t.Errorf("expected %q, got %q", domain.DefaultAuthor, m.User)
	}
	if m.Type != domain.MessageImage || m.ID != "7" {
		t.Errorf("unexpected message %+v", m)
	}
}

func TestParseMembers(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want []string
	}{
		{"json text", `["u1", 2]`, []string{"u1", "2"}},
		{"comma text", "u1, u2 ,", []string{"u1", "u2"}},
		{"array", []any{"u1", json.Number("3")}, []string{"u1", "3"}},
		{"malformed json", `[u1`, []string{}},
		{"missing", nil, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseMembers(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
