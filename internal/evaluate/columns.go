package evaluate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tyilmaz/optikeval/internal/model"
)

var lowerTR = cases.Lower(language.Turkish)

// columns is the resolved header-to-role mapping for one roster. Discovery
// runs once per Evaluate call; downstream code indexes entries by role, never
// by raw header text.
type columns struct {
	tc      string
	name    string // empty when the roster has no name-like column
	docType string // empty when the roster has no document-type column
	room    string // empty when the roster has no room column
}

// Candidate substrings per role, checked in order against Turkish-lowercased
// header text. Turkish casing matters: "İSİM" must lower to "isim", not
// "i̇sim"-with-combining-dot or "isim" via the ASCII table.
var (
	tcKeywords      = []string{"tc", "kimlik", "tcno"}
	nameKeywords    = []string{"adı soyadı", "ad soyad", "ad", "isim"}
	docTypeKeywords = []string{"belge", "tür", "sertifika"}
	roomKeywords    = []string{"salon", "sınıf", "derslik"}
)

// resolveColumns locates the semantic columns in a roster's header row.
// The national-ID column is mandatory: keyword match first, then a fallback
// to the first column whose values are uniformly eleven characters long.
func resolveColumns(roster model.Roster) (columns, error) {
	cols := columns{
		tc:      findHeader(roster.Headers, tcKeywords),
		name:    findHeader(roster.Headers, nameKeywords),
		docType: findHeader(roster.Headers, docTypeKeywords),
		room:    findHeader(roster.Headers, roomKeywords),
	}

	if cols.tc == "" {
		cols.tc = findUniform11(roster)
	}
	if cols.tc == "" {
		return cols, ErrNoIDColumn
	}
	return cols, nil
}

// findHeader returns the first header containing any of the keywords under
// locale-aware case-insensitive comparison.
func findHeader(headers []string, keywords []string) string {
	for _, h := range headers {
		hLower := lowerTR.String(h)
		for _, k := range keywords {
			if strings.Contains(hLower, lowerTR.String(k)) {
				return h
			}
		}
	}
	return ""
}

// findUniform11 returns the first column whose every value is exactly eleven
// characters long after trimming, the shape of a national ID.
func findUniform11(roster model.Roster) string {
	if len(roster.Rows) == 0 {
		return ""
	}
	for _, h := range roster.Headers {
		uniform := true
		for _, row := range roster.Rows {
			if len([]rune(strings.TrimSpace(row[h]))) != 11 {
				uniform = false
				break
			}
		}
		if uniform {
			return h
		}
	}
	return ""
}
