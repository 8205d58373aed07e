// Package report renders evaluation and similarity output as CSV and JSON.
// This is the formatting boundary: scores stay float64 inside the core and
// become fixed-decimal strings only here.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/tyilmaz/optikeval/internal/i18n"
	"github.com/tyilmaz/optikeval/internal/model"
)

// StatusLabel renders a result's status for display, including the missing
// booklet or document type for the no-key statuses.
func StatusLabel(loc *goi18n.Localizer, res model.ScoredResult) string {
	switch res.Status {
	case model.StatusEntered:
		return i18n.T(loc, "StatusEntered")
	case model.StatusAbsent:
		return i18n.T(loc, "StatusAbsent")
	case model.StatusNoBookletKey:
		return i18n.Td(loc, "StatusNoBookletKey", map[string]any{"Booklet": res.StatusDetail})
	case model.StatusNoDocTypeKey:
		return i18n.Td(loc, "StatusNoDocTypeKey", map[string]any{"DocType": res.StatusDetail})
	default:
		return i18n.T(loc, "StatusExempt")
	}
}

// OutcomeLabel renders a pass/fail/absent verdict for display.
func OutcomeLabel(loc *goi18n.Localizer, outcome model.Outcome) string {
	switch outcome {
	case model.OutcomePass:
		return i18n.T(loc, "OutcomePass")
	case model.OutcomeAbsent:
		return i18n.T(loc, "OutcomeAbsent")
	default:
		return i18n.T(loc, "OutcomeFail")
	}
}

// FormatScore renders a score with two decimals, the exam report convention.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

// FormatPct renders a similarity percentage with one decimal.
func FormatPct(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64)
}

// WriteResultsCSV writes the scored result list with localized headers.
func WriteResultsCSV(w io.Writer, results []model.ScoredResult, loc *goi18n.Localizer) error {
	cw := csv.NewWriter(w)
	header := []string{
		i18n.T(loc, "ColSeq"),
		i18n.T(loc, "ColNationalID"),
		i18n.T(loc, "ColFullName"),
		i18n.T(loc, "ColDocType"),
		i18n.T(loc, "ColRoom"),
		i18n.T(loc, "ColStatus"),
		i18n.T(loc, "ColBooklet"),
		i18n.T(loc, "ColCorrect"),
		i18n.T(loc, "ColWrong"),
		i18n.T(loc, "ColBlank"),
		i18n.T(loc, "ColScore"),
		i18n.T(loc, "ColOutcome"),
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, res := range results {
		row := []string{
			strconv.Itoa(i + 1),
			res.NationalID,
			res.FullName,
			res.DocumentType,
			res.RoomNo,
			StatusLabel(loc, res),
			res.BookletType,
			strconv.Itoa(res.Correct),
			strconv.Itoa(res.Wrong),
			strconv.Itoa(res.Blank),
			FormatScore(res.Score),
			OutcomeLabel(loc, res.Outcome),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSimilarityCSV writes the flagged pair list with localized headers.
func WriteSimilarityCSV(w io.Writer, matches []model.Match, loc *goi18n.Localizer) error {
	cw := csv.NewWriter(w)
	header := []string{
		i18n.T(loc, "ColRoom"),
		i18n.T(loc, "ColBooklet"),
		i18n.T(loc, "ColDocType"),
		i18n.T(loc, "ColStudentA"),
		i18n.T(loc, "ColStudentB"),
		i18n.T(loc, "ColSimilarity"),
		i18n.T(loc, "ColMatched"),
		i18n.T(loc, "ColCompared"),
		i18n.T(loc, "ColSharedCorrect"),
		i18n.T(loc, "ColSharedWrong"),
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, m := range matches {
		row := []string{
			m.RoomNo,
			m.BookletType,
			m.DocumentType,
			fmt.Sprintf("%s (%s)", m.StudentA.FullName, m.StudentA.NationalID),
			fmt.Sprintf("%s (%s)", m.StudentB.FullName, m.StudentB.NationalID),
			FormatPct(m.SimilarityPct),
			strconv.Itoa(m.MatchCount),
			strconv.Itoa(m.TotalCount),
			strconv.Itoa(m.SharedCorrect),
			strconv.Itoa(m.SharedWrong),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes an export envelope as indented JSON with a trailing
// newline.
func WriteJSON(w io.Writer, export model.ExamExport) error {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
