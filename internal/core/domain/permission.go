package domain

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// View identifies one application section.
type View string

const (
	ViewDashboard   View = "dashboard"
	ViewReports     View = "reports"
	ViewHistory     View = "history"
	ViewChat        View = "chat"
	ViewFollowUpPre View = "follow-up-pre"
	ViewFollowUp    View = "follow-up"
	ViewSettings    View = "settings"
	ViewUsers       View = "users"
)

// permissionKeywords is evaluated top to bottom; the first keyword contained in
// a fragment wins, so FOLLOW-UP-PRE must stay ahead of FOLLOW-UP.
var permissionKeywords = []struct {
	keyword string
	view    View
}{
	{"FOLLOW-UP-PRE", ViewFollowUpPre},
	{"FOLLOW-UP", ViewFollowUp},
	{"DASHBOARD", ViewDashboard},
	{"RELATORIO", ViewReports},
	{"HISTORICO", ViewHistory},
	{"CHAT", ViewChat},
	{"CONFIGURA", ViewSettings},
	{"USUARIO", ViewUsers},
}

// viewLabels is the label written back to the permissions column.
var viewLabels = map[View]string{
	ViewDashboard:   "DASHBOARD",
	ViewReports:     "RELATORIOS",
	ViewHistory:     "HISTORICO",
	ViewChat:        "CHAT EQUIPE",
	ViewFollowUpPre: "FOLLOW-UP-PRE",
	ViewFollowUp:    "FOLLOW-UP",
	ViewSettings:    "CONFIGURAÇÕES",
	ViewUsers:       "USUARIOS",
}

var permissionSeparators = regexp.MustCompile(`[;|,]`)

// ViewSet is an ordered, duplicate-free list of views.
type ViewSet []View

// AllViews returns every known view in canonical order.
func AllViews() ViewSet {
	return ViewSet{ViewDashboard, ViewReports, ViewHistory, ViewChat, ViewFollowUpPre, ViewFollowUp, ViewSettings, ViewUsers}
}

// ParseView validates a single view identifier.
func ParseView(s string) (View, bool) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := viewLabels[v]; ok {
		return v, true
	}
	return "", false
}

// Has reports whether v is in the set.
func (s ViewSet) Has(v View) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Add returns s with v appended unless already present.
func (s ViewSet) Add(v View) ViewSet {
	if s.Has(v) {
		return s
	}
	return append(s, v)
}

// ParsePermissions derives the view set from the free-text permissions column.
// Fragments are split on ';', '|' or ','; matching ignores case and accents;
// fragments that match no keyword are dropped.
func ParsePermissions(text string) ViewSet {
	set := ViewSet{}
	for _, fragment := range permissionSeparators.Split(text, -1) {
		if v, ok := matchPermission(fragment); ok {
			set = set.Add(v)
		}
	}
	return set
}

func matchPermission(fragment string) (View, bool) {
	clean := strings.ToUpper(FoldAccents(strings.TrimSpace(fragment)))
	if clean == "" {
		return "", false
	}
	for _, k := range permissionKeywords {
		if strings.Contains(clean, k.keyword) {
			return k.view, true
		}
	}
	return "", false
}

// EncodePermissions renders a view set as the label list stored in the sheet.
func EncodePermissions(views ViewSet) string {
	labels := make([]string, 0, len(views))
	for _, v := range views {
		if l, ok := viewLabels[v]; ok {
			labels = append(labels, l)
		}
	}
	return strings.Join(labels, "; ")
}

// SortedViews returns a copy of s in canonical order.
func SortedViews(s ViewSet) ViewSet {
	order := make(map[View]int)
	for i, v := range AllViews() {
		order[v] = i
	}
	out := append(ViewSet(nil), s...)
	sort.SliceStable(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out
}

// FoldAccents strips combining marks so "RELATÓRIO" compares equal to "RELATORIO".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
