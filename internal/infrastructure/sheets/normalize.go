package sheets

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// Column labels as the sheets carry them, each followed by the lowercase alias
// some rows use instead.
var (
	colID           = []string{"ID", "id"}
	colSupplier     = []string{"Fornecedor", "fornecedor"}
	colDeparture    = []string{"Saída", "saida"}
	colSchedule     = []string{"Previsão Agend."}
	colInvoices     = []string{"NF's", "nfs"}
	colAWB          = []string{"AWB", "awbNumber"}
	colStatus       = []string{"Status", "status"}
	colArrival      = []string{"Chegada", "chegada"}
	colBrand        = []string{"Marca", "marca"}
	colMaterial     = []string{"Material", "material"}
	colNotes        = []string{"Observação", "observacao"}
	colTracking     = []string{"Rastreio", "rastreio"}
	colScheduleLink = []string{"Link Agendamento"}
	colDocuments    = []string{"Documentos", "documentos"}

	colUserName     = []string{"USUÁRIO", "name"}
	colUserEmail    = []string{"E-MAIL", "email"}
	colUserPassword = []string{"SENHA", "senha"}
	colUserRole     = []string{"PAPEL", "role"}
	colUserStatus   = []string{"STATUS", "status"}
	colUserBio      = []string{"Bio", "bio"}
	colUserLocation = []string{"Location", "location"}
	colUserBirthday = []string{"Birthday", "birthday"}
	colUserCargo    = []string{"Cargo", "cargo"}
	colUserImage    = []string{"profileImage"}
	colUserViews    = []string{"Permissões de Tela (Módulos)"}

	colGroupName    = []string{"name", "NAME"}
	colGroupMembers = []string{"members", "MEMBERS"}
)

const legacyAttachmentPrefix = "PDF_"

// SheetFor returns the sheet a record kind lives in.
func SheetFor(kind domain.RecordKind) string {
	if kind == domain.KindPre {
		return SheetPre
	}
	return SheetAWB
}

// DecodeRecord maps a raw row onto the canonical record. Missing columns
// become empty strings. For pre-shipment rows the schedule columns take
// precedence over departure and tracking.
func DecodeRecord(row Row, kind domain.RecordKind) domain.ShipmentRecord {
	rec := domain.ShipmentRecord{
		ID:        text(row, colID...),
		Kind:      kind,
		Supplier:  text(row, colSupplier...),
		Departure: text(row, colDeparture...),
		Invoices:  text(row, colInvoices...),
		AWBNumber: text(row, colAWB...),
		Tracking:  text(row, colTracking...),
		Status:    domain.RecordStatus(text(row, colStatus...)),
		Arrival:   text(row, colArrival...),
		Brand:     text(row, colBrand...),
		Material:  text(row, colMaterial...),
		Notes:     text(row, colNotes...),
		Documents: text(row, colDocuments...),
		Email: domain.EmailNotification{
			Send: flag(row["send_email"]),
			To:   addressList(row["email_to"]),
			CC:   addressList(row["email_cc"]),
			BCC:  addressList(row["email_bcc"]),
			Body: text(row, "email_body"),
		},
		Raw: copyRow(row),
	}
	if kind == domain.KindPre {
		rec.Departure = text(row, append(colSchedule, colDeparture...)...)
		rec.Tracking = text(row, append(colScheduleLink, colTracking...)...)
	}
	for i := 1; i <= domain.MaxLegacyAttachmentColumns; i++ {
		if v := text(row, legacyAttachmentPrefix+strconv.Itoa(i)); v != "" {
			rec.LegacyLinks = append(rec.LegacyLinks, v)
		}
	}
	return rec
}

// EncodeRecord builds the SAVE payload. Pre-shipment records write the
// schedule columns and a "-" placeholder AWB.
func EncodeRecord(rec domain.ShipmentRecord) Row {
	row := Row{
		"ID":         rec.ID,
		"Fornecedor": rec.Supplier,
		"NF's":       rec.Invoices,
		"Status":     string(rec.Status),
		"Chegada":    rec.Arrival,
		"Marca":      rec.Brand,
		"Material":   rec.Material,
		"Observação": rec.Notes,
		"Documentos": rec.Documents,
		"send_email": rec.Email.Send,
		"email_to":   strings.Join(rec.Email.To, ","),
		"email_cc":   strings.Join(rec.Email.CC, ","),
		"email_bcc":  strings.Join(rec.Email.BCC, ","),
		"email_body": rec.Email.Body,
	}
	if rec.Kind == domain.KindPre {
		row["Previsão Agend."] = rec.Departure
		row["Link Agendamento"] = rec.Tracking
		row["AWB"] = "-"
	} else {
		row["Saída"] = rec.Departure
		row["AWB"] = rec.AWBNumber
		row["Rastreio"] = rec.Tracking
	}
	return row
}

// DecodeUser maps a registry row onto a user with normalized role, status and
// view set.
func DecodeUser(row Row) domain.User {
	return domain.User{
		ID:           text(row, colID...),
		Name:         text(row, colUserName...),
		Email:        text(row, colUserEmail...),
		Password:     text(row, colUserPassword...),
		Role:         domain.NormalizeRole(text(row, colUserRole...)),
		Status:       domain.NormalizeUserStatus(text(row, colUserStatus...)),
		Cargo:        text(row, colUserCargo...),
		Bio:          text(row, colUserBio...),
		Location:     text(row, colUserLocation...),
		Birthday:     text(row, colUserBirthday...),
		ProfileImage: text(row, colUserImage...),
		AllowedViews: domain.ParsePermissions(text(row, colUserViews...)),
	}
}

// EncodeUser builds the registry SAVE payload.
func EncodeUser(u domain.User) Row {
	role := "User"
	if u.IsAdmin() {
		role = "Admin"
	}
	status := u.Status
	if status == "" {
		status = domain.UserStatusActive
	}
	return Row{
		"ID":                           u.ID,
		"USUÁRIO":                      u.Name,
		"E-MAIL":                       u.Email,
		"SENHA":                        u.Password,
		"PAPEL":                        role,
		"STATUS":                       status,
		"Permissões de Tela (Módulos)": domain.EncodePermissions(u.AllowedViews),
		"Bio":                          u.Bio,
		"Location":                     u.Location,
		"Birthday":                     u.Birthday,
		"Cargo":                        u.Cargo,
		"profileImage":                 u.ProfileImage,
	}
}

// DecodeMessage maps a channel row onto a message.
func DecodeMessage(row Row) domain.ChatMessage {
	img := text(row, "img")
	user := text(row, "user")
	if user == "" {
		user = domain.DefaultAuthor
	}
	return domain.ChatMessage{
		ID:        text(row, "id", "ID"),
		User:      user,
		Text:      text(row, "text"),
		Img:       img,
		Timestamp: text(row, "timestamp"),
		Type:      domain.MessageTypeFor(img),
	}
}

// EncodeMessage builds the CHAT_SAVE payload.
func EncodeMessage(msg domain.ChatMessage) Row {
	return Row{
		"user":      msg.User,
		"text":      msg.Text,
		"img":       msg.Img,
		"type":      string(msg.Type),
		"timestamp": msg.Timestamp,
	}
}

// DecodeGroup maps a group registry row onto a dynamic group. The group name
// doubles as its sheet name.
func DecodeGroup(row Row) domain.ChatGroup {
	name := text(row, colGroupName...)
	return domain.ChatGroup{
		Name:      name,
		SheetName: name,
		Type:      domain.ChannelGroup,
		Members:   parseMembers(lookup(row, colGroupMembers...)),
	}
}

// EncodeGroup builds the GROUP_CREATE payload.
func EncodeGroup(name string, members []string) Row {
	if members == nil {
		members = []string{}
	}
	return Row{"name": name, "members": members}
}

// parseMembers accepts a JSON array encoded as text, comma separated text or a
// native array. Malformed JSON yields no members.
func parseMembers(v any) []string {
	out := []string{}
	switch m := v.(type) {
	case string:
		m = strings.TrimSpace(m)
		if strings.HasPrefix(m, "[") {
			var list []any
			if err := json.Unmarshal([]byte(m), &list); err != nil {
				return out
			}
			for _, item := range list {
				out = append(out, stringify(item))
			}
			return out
		}
		for _, part := range strings.Split(m, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	case []any:
		for _, item := range m {
			out = append(out, stringify(item))
		}
	}
	return out
}

// lookup returns the first present, non-empty value among keys. When no key
// matches exactly it retries against the row labels ignoring case, accents and
// surrounding spaces.
func lookup(row Row, keys ...string) any {
	for _, k := range keys {
		if v, ok := row[k]; ok && !empty(v) {
			return v
		}
	}
	for _, k := range keys {
		want := foldKey(k)
		for label, v := range row {
			if foldKey(label) == want && !empty(v) {
				return v
			}
		}
	}
	return nil
}

func text(row Row, keys ...string) string {
	return strings.TrimSpace(stringify(lookup(row, keys...)))
}

func foldKey(s string) string {
	return strings.ToLower(domain.FoldAccents(strings.TrimSpace(s)))
}

func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	}
	return false
}

// stringify renders a cell as text. Numbers keep the form the endpoint sent.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

func flag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	}
	return false
}

func addressList(v any) []string {
	var parts []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
	default:
		parts = strings.Split(stringify(v), ",")
	}
	out := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func copyRow(row Row) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
