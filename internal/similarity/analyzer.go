// Package similarity flags candidate pairs whose answer sheets agree
// suspiciously often. Pairs are only comparable within the same room and the
// same booklet type: booklets scramble question order, so cross-booklet
// comparisons would be meaningless.
package similarity

import (
	"sort"
	"strings"

	"github.com/tyilmaz/optikeval/internal/answerkey"
	"github.com/tyilmaz/optikeval/internal/model"
)

// DefaultThresholdPct is the similarity percentage above which (inclusive)
// a pair is reported.
const DefaultThresholdPct = 90.0

// Analyze compares every unordered pair of candidates that entered the exam,
// room by room, and returns the pairs whose answer similarity reaches
// thresholdPct. A position where both answers are blank is ignored, since a
// mutual blank is no evidence either way. When key is non-nil and resolves
// for a pair's booklet and document type, matching answers are further split
// into shared-correct and shared-wrong counts; shared wrong answers are the
// strongest copying signal.
//
// Never fails on data shape: answer strings of different lengths are walked
// to the longer one with missing positions treated as blank. Cost is
// O(room_size²) per room; rooms are small in practice, but a roster with no
// room column collapses into a single group and pays the full quadratic
// price. Output order follows room then pair iteration; callers sort for
// presentation.
func Analyze(results []model.ScoredResult, key model.AnswerKey, thresholdPct float64) []model.Match {
	byRoom := make(map[string][]model.ScoredResult)
	var rooms []string
	for _, r := range results {
		if r.Status != model.StatusEntered || r.AnswerString == "" {
			continue
		}
		room := r.RoomNo
		if room == "" {
			room = model.DefaultRoom
		}
		if _, ok := byRoom[room]; !ok {
			rooms = append(rooms, room)
		}
		byRoom[room] = append(byRoom[room], r)
	}
	sort.Strings(rooms)

	var matches []model.Match
	for _, room := range rooms {
		students := byRoom[room]
		for i := 0; i < len(students); i++ {
			for j := i + 1; j < len(students); j++ {
				if m, ok := comparePair(students[i], students[j], key, thresholdPct); ok {
					m.RoomNo = room
					matches = append(matches, m)
				}
			}
		}
	}
	return matches
}

func comparePair(a, b model.ScoredResult, key model.AnswerKey, thresholdPct float64) (model.Match, bool) {
	if a.BookletType != b.BookletType {
		return model.Match{}, false
	}

	var questions map[int]string
	if key != nil {
		questions = answerkey.QuestionsExactOrGeneral(key, a.BookletType, a.DocumentType)
	}

	ansA := []rune(a.AnswerString)
	ansB := []rune(b.AnswerString)
	length := len(ansA)
	if len(ansB) > length {
		length = len(ansB)
	}

	var match, total, sharedCorrect, sharedWrong int
	for k := 0; k < length; k++ {
		cA := answerAt(ansA, k)
		cB := answerAt(ansB, k)
		if cA == "" && cB == "" {
			continue
		}
		total++
		if cA != cB {
			continue
		}
		match++
		if questions == nil {
			continue
		}
		if correct, ok := questions[k+1]; ok {
			if cA == correct {
				sharedCorrect++
			} else {
				sharedWrong++
			}
		}
	}

	pct := 0.0
	if total > 0 {
		pct = float64(match) / float64(total) * 100
	}
	if pct < thresholdPct {
		return model.Match{}, false
	}

	return model.Match{
		BookletType:   a.BookletType,
		DocumentType:  a.DocumentType,
		StudentA:      a,
		StudentB:      b,
		SimilarityPct: pct,
		MatchCount:    match,
		TotalCount:    total,
		SharedCorrect: sharedCorrect,
		SharedWrong:   sharedWrong,
	}, true
}

// answerAt returns the marked answer at position k, or "" for a blank or
// out-of-range position.
func answerAt(answers []rune, k int) string {
	if k >= len(answers) {
		return ""
	}
	s := strings.TrimSpace(string(answers[k]))
	return s
}
