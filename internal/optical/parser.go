// Package optical decodes raw optical-scanner output: fixed-width positional
// records, one scanned answer sheet per line.
package optical

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tyilmaz/optikeval/internal/model"
)

// ErrNoRecords is returned when the input contains no non-blank line.
var ErrNoRecords = errors.New("optical data contains no records")

// Parse splits raw scanner text into lines and extracts one OpticalRecord per
// non-blank line using the given field map (DefaultFieldMap when nil).
//
// Offsets are character positions, not bytes: scanner exports carry Turkish
// letters in the name field, so each line is sliced as runes. Fields are
// trimmed of surrounding whitespace; no character-class validation happens
// here, that is the caller's concern. Record IDs come from the sira field
// when it is configured and numeric, otherwise from the 1-based line index.
func Parse(text string, fm FieldMap) ([]model.OpticalRecord, error) {
	if fm == nil {
		fm = DefaultFieldMap()
	}

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, ErrNoRecords
	}

	records := make([]model.OpticalRecord, 0, len(lines))
	for i, line := range lines {
		runes := []rune(line)

		id := i + 1
		if sira := extract(runes, fm, FieldSira); sira != "" {
			if n, err := strconv.Atoi(sira); err == nil {
				id = n
			}
		}

		records = append(records, model.OpticalRecord{
			ID:           id,
			FullName:     extract(runes, fm, FieldAdSoyad),
			NationalID:   extract(runes, fm, FieldTCNo),
			RoomNo:       extract(runes, fm, FieldSalonNo),
			AbsenceFlag:  extract(runes, fm, FieldGirmedi),
			BookletType:  extract(runes, fm, FieldKitapcik),
			AnswerString: extract(runes, fm, FieldCevaplar),
		})
	}
	return records, nil
}

// extract slices one field out of a line, clamping to the line's length so a
// short line yields a truncated or empty value instead of a panic.
func extract(line []rune, fm FieldMap, field string) string {
	spec, ok := fm[field]
	if !ok {
		return ""
	}

	start := spec.Start
	if start < 0 {
		start = 0
	}
	if start >= len(line) {
		return ""
	}

	// The answers field with no configured length runs to end of line.
	if field == FieldCevaplar && (spec.Length == nil || *spec.Length <= 0) {
		return strings.TrimSpace(string(line[start:]))
	}
	if spec.Length == nil || *spec.Length <= 0 {
		return ""
	}

	end := start + *spec.Length
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(string(line[start:end]))
}
