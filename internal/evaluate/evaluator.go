// Package evaluate reconciles the three exam inputs (attendance roster,
// deduplicated optical records and answer key) and scores every candidate.
package evaluate

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/tyilmaz/optikeval/internal/answerkey"
	"github.com/tyilmaz/optikeval/internal/model"
)

var (
	// ErrEmptyRoster is returned when the attendance list has no rows.
	ErrEmptyRoster = errors.New("attendance roster is empty")
	// ErrNoIDColumn is returned when no national-ID column can be located,
	// neither by keyword nor by the uniform-11-characters fallback.
	ErrNoIDColumn = errors.New("no national-ID column found in roster")
)

// Evaluate joins every roster entry with its optical record by national ID
// and scores it against the answer key. One ScoredResult per roster entry,
// in roster order. Per-row problems (never scanned, absent, missing keys)
// become statuses on the row; only empty inputs fail the whole call.
//
// Pure function: same inputs, same output, no I/O.
func Evaluate(roster model.Roster, optical []model.OpticalRecord, key model.AnswerKey) ([]model.ScoredResult, error) {
	if len(key) == 0 {
		return nil, answerkey.ErrEmptyKey
	}
	if len(roster.Rows) == 0 {
		return nil, ErrEmptyRoster
	}

	cols, err := resolveColumns(roster)
	if err != nil {
		return nil, err
	}

	// First occurrence wins if duplicates slipped past the deduplicator.
	byTC := make(map[string]model.OpticalRecord, len(optical))
	for _, rec := range optical {
		tc := strings.TrimSpace(rec.NationalID)
		if _, ok := byTC[tc]; !ok {
			byTC[tc] = rec
		}
	}

	results := make([]model.ScoredResult, 0, len(roster.Rows))
	for _, row := range roster.Rows {
		res := model.ScoredResult{
			NationalID: strings.TrimSpace(row[cols.tc]),
			FullName:   model.DefaultName,
			RoomNo:     model.DefaultRoom,
			Status:     model.StatusExempt,
			Outcome:    model.OutcomeFail,
			Roster:     row,
		}
		if cols.name != "" {
			res.FullName = row[cols.name]
		}
		if cols.docType != "" {
			res.DocumentType = answerkey.NormalizeDocType(row[cols.docType])
		}
		if cols.room != "" {
			if room := strings.TrimSpace(row[cols.room]); room != "" {
				res.RoomNo = room
			}
		}

		rec, scanned := byTC[res.NationalID]
		if scanned {
			scoreRecord(&res, rec, key)
		}
		results = append(results, res)
	}
	return results, nil
}

// scoreRecord fills in the optical side of a result and scores it when the
// candidate actually sat the exam and a key can be resolved.
func scoreRecord(res *model.ScoredResult, rec model.OpticalRecord, key model.AnswerKey) {
	res.BookletType = rec.BookletType
	res.AnswerString = rec.AnswerString

	if rec.AbsenceFlag == model.AbsenceMarker {
		res.Status = model.StatusAbsent
		res.Outcome = model.OutcomeAbsent
		return
	}
	res.Status = model.StatusEntered

	booklet, ok := answerkey.Booklet(key, rec.BookletType)
	if !ok {
		res.Status = model.StatusNoBookletKey
		res.StatusDetail = rec.BookletType
		return
	}
	questions, ok := answerkey.Questions(booklet, res.DocumentType)
	if !ok {
		res.Status = model.StatusNoDocTypeKey
		res.StatusDetail = res.DocumentType
		return
	}

	res.Correct, res.Wrong, res.Blank = countAnswers(rec.AnswerString, questions)
	res.Score = math.Round(float64(res.Correct)*model.PointsPerQuestion*100) / 100
	if res.Score >= model.PassScore {
		res.Outcome = model.OutcomePass
	}
}

// countAnswers compares an answer string against one question map. Only
// question numbers present in the key are evaluated: the key defines the
// live question set, not the answer string's length. Position q-1 holds the
// answer to question q; a space or missing position is blank.
func countAnswers(answerString string, questions map[int]string) (correct, wrong, blank int) {
	qNos := make([]int, 0, len(questions))
	for q := range questions {
		qNos = append(qNos, q)
	}
	sort.Ints(qNos)

	answers := []rune(answerString)
	for _, q := range qNos {
		var given string
		if q-1 >= 0 && q-1 < len(answers) && answers[q-1] != ' ' {
			given = string(answers[q-1])
		}
		switch {
		case given == "":
			blank++
		case given == questions[q]:
			correct++
		default:
			wrong++
		}
	}
	return correct, wrong, blank
}
