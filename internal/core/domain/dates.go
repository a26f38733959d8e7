package domain

import (
	"strings"
	"time"
)

// dateLayouts are the shapes the sheet hands back for date cells: ISO
// timestamps from the script, plain input dates, and pt-BR text typed by hand.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// ParseDate parses raw sheet text; ok is false when no layout fits.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a sheet date as dd/mm/yyyy. Empty values and "-" render
// as "-"; unparseable text is returned unchanged.
func FormatDate(raw string) string {
	if strings.TrimSpace(raw) == "" || strings.TrimSpace(raw) == "-" {
		return "-"
	}
	t, ok := ParseDate(raw)
	if !ok {
		return raw
	}
	return t.Format("02/01/2006")
}

// InputDate renders a sheet date as yyyy-mm-dd, or "" when it cannot be parsed.
func InputDate(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}
