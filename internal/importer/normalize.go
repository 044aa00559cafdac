package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// stringCell trims a cell; empty becomes nil
func stringCell(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// emailCell trims and lowercases an email cell
func emailCell(s string) interface{} {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return s
}

// codeCell trims and uppercases a code-like cell (part numbers and similar)
func codeCell(s string) interface{} {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return s
}

// imoCell normalizes an IMO number cell: the "IMO" prefix cargo databases
// often carry is stripped, leaving the bare digit string
func imoCell(s string) interface{} {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "IMO"), "imo")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"2 Jan 2006",
	"2 January 2006",
	time.RFC3339,
}

// dateCell coerces a date-like cell to an ISO date string. Unparseable cells
// become nil; the classifier decides whether that is an issue.
func dateCell(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	// Excel serial date: days since 1899-12-30
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 59 && serial < 80000 {
		base := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		return base.AddDate(0, 0, int(serial)).Format("2006-01-02")
	}
	return nil
}

// asString returns a normalized value as its string form, or "" for nil
func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// simplify lowercases a label and collapses runs of non-alphanumerics to a
// single space, so "Deck Cadet", "deck_cadet" and "DECK-CADET" all compare equal
func simplify(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// fuzzyMatch resolves an input label against a canonical list. The second
// return distinguishes an exact canonical value from a simplified-form match,
// which classifiers surface as a warning.
func fuzzyMatch(input string, canonical []string) (match string, exact bool, ok bool) {
	for _, c := range canonical {
		if input == c {
			return c, true, true
		}
	}
	want := simplify(input)
	if want == "" {
		return "", false, false
	}
	for _, c := range canonical {
		if simplify(c) == want {
			return c, false, true
		}
	}
	return "", false, false
}

// allDigits reports whether s is non-empty and numeric
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
