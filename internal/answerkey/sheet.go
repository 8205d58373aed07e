package answerkey

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/tyilmaz/optikeval/internal/model"
)

// ParseColumns builds an answer key from a spreadsheet-shaped grid.
//
// The header row labels each answer column as "<docType>_<booklet>", e.g.
// "SRC1_A" or "ÜDY3_B"; unlabeled columns are ignored. Rows from startRow
// (1-based, header included) down hold one answer per question. A cell's
// answer is its first A-E letter after Turkish upper-casing, so "b", "B)",
// and "Cevap: C" all parse; cells with no such letter are skipped and do not
// advance the question number, matching the desktop importer.
func ParseColumns(rows [][]string, startRow int) (model.AnswerKey, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty answer key grid")
	}
	if startRow < 1 {
		startRow = 1
	}

	header := rows[0]
	key := model.AnswerKey{}

	for col, label := range header {
		docType, booklet, ok := splitLabel(label)
		if !ok {
			continue
		}

		q := 0
		for i := startRow - 1; i < len(rows); i++ {
			if col >= len(rows[i]) {
				continue
			}
			ans := answerLetter(rows[i][col])
			if ans == "" {
				continue
			}
			q++
			if key[booklet] == nil {
				key[booklet] = map[string]map[int]string{}
			}
			if key[booklet][docType] == nil {
				key[booklet][docType] = map[int]string{}
			}
			key[booklet][docType][q] = ans
		}
	}

	if len(key) == 0 {
		return nil, fmt.Errorf("no answer columns found: header must label columns as DOCTYPE_BOOKLET")
	}
	return key, nil
}

// ImportCSV reads a grid CSV (comma or semicolon delimited) and parses it
// with ParseColumns.
func ImportCSV(path string, startRow int) (model.AnswerKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = detectDelimiter(string(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	key, err := ParseColumns(rows, startRow)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}

// splitLabel splits "SRC1_A" into document type and booklet at the last
// underscore. Both halves are Turkish upper-cased.
func splitLabel(label string) (docType, booklet string, ok bool) {
	label = strings.TrimSpace(label)
	i := strings.LastIndex(label, "_")
	if i <= 0 || i == len(label)-1 {
		return "", "", false
	}
	return NormalizeDocType(label[:i]), NormalizeDocType(label[i+1:]), true
}

// answerLetter extracts the first A-E answer letter from a cell.
func answerLetter(cell string) string {
	for _, r := range upperTR.String(cell) {
		if r >= 'A' && r <= 'E' {
			return string(r)
		}
	}
	return ""
}

// detectDelimiter picks between comma and semicolon based on the first line.
// Turkish locale spreadsheet exports use semicolons.
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
