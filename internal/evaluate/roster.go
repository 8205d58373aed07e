package evaluate

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/tyilmaz/optikeval/internal/model"
)

// LoadRosterCSV reads an attendance list from a delimited file. The first
// row is the free-form header; remaining rows become string-keyed entries.
// The delimiter is auto-detected between comma and semicolon on the header
// line, since Turkish locale spreadsheet exports use semicolons.
func LoadRosterCSV(path string) (model.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Roster{}, fmt.Errorf("read roster %s: %w", path, err)
	}

	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = detectDelimiter(string(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return model.Roster{}, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if len(rows) == 0 {
		return model.Roster{}, fmt.Errorf("roster %s: %w", path, ErrEmptyRoster)
	}

	roster := model.Roster{Headers: make([]string, 0, len(rows[0]))}
	for _, h := range rows[0] {
		roster.Headers = append(roster.Headers, strings.TrimSpace(h))
	}

	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		entry := make(model.RosterEntry, len(roster.Headers))
		for i, h := range roster.Headers {
			if i < len(row) {
				entry[h] = row[i]
			} else {
				entry[h] = ""
			}
		}
		roster.Rows = append(roster.Rows, entry)
	}

	if len(roster.Rows) == 0 {
		return model.Roster{}, fmt.Errorf("roster %s: %w", path, ErrEmptyRoster)
	}
	return roster, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func detectDelimiter(data string) rune {
	line := data
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
