package evaluate

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tyilmaz/optikeval/internal/answerkey"
	"github.com/tyilmaz/optikeval/internal/model"
)

func testRoster(t *testing.T, headers []string, rows ...[]string) model.Roster {
	t.Helper()
	roster := model.Roster{Headers: headers}
	for _, row := range rows {
		entry := model.RosterEntry{}
		for i, h := range headers {
			if i < len(row) {
				entry[h] = row[i]
			} else {
				entry[h] = ""
			}
		}
		roster.Rows = append(roster.Rows, entry)
	}
	return roster
}

// keyFromString turns "ABCAA" into {1:"A", 2:"B", 3:"C", 4:"A", 5:"A"}.
func keyFromString(answers string) map[int]string {
	qs := map[int]string{}
	for i, r := range []rune(answers) {
		qs[i+1] = string(r)
	}
	return qs
}

func singleKey(booklet, docType, answers string) model.AnswerKey {
	return model.AnswerKey{
		booklet: {docType: keyFromString(answers)},
	}
}

var defaultHeaders = []string{"TC Kimlik No", "Adı Soyadı", "Belge Türü", "Salon"}

func optRec(tc, booklet, absence, answers string) model.OpticalRecord {
	return model.OpticalRecord{
		ID: 1, NationalID: tc, BookletType: booklet,
		AbsenceFlag: absence, AnswerString: answers,
	}
}

func TestEvaluateScoring(t *testing.T) {
	roster := testRoster(t, defaultHeaders,
		[]string{"11111111111", "AHMET YILMAZ", "SRC1", "101"})
	optical := []model.OpticalRecord{optRec("11111111111", "A", "", "ABCAD")}
	key := singleKey("A", "SRC1", "ABCAA")

	results, err := Evaluate(roster, optical, key)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.Status != model.StatusEntered {
		t.Errorf("Status = %q, want entered", r.Status)
	}
	if r.Correct != 4 || r.Wrong != 1 || r.Blank != 0 {
		t.Errorf("counts = %d/%d/%d, want 4 correct, 1 wrong, 0 blank", r.Correct, r.Wrong, r.Blank)
	}
	if r.Score != 10.0 {
		t.Errorf("Score = %v, want 10.00", r.Score)
	}
	if r.Outcome != model.OutcomeFail {
		t.Errorf("Outcome = %q, want fail", r.Outcome)
	}
	if r.FullName != "AHMET YILMAZ" || r.RoomNo != "101" || r.BookletType != "A" {
		t.Errorf("identity fields wrong: %+v", r)
	}
	if r.AnswerString != "ABCAD" {
		t.Errorf("AnswerString = %q, must be carried through", r.AnswerString)
	}
}

func TestEvaluateCountInvariant(t *testing.T) {
	// Answers: 3 correct, 1 wrong, 1 explicit blank, plus the key has a
	// sixth question past the end of the answer string.
	roster := testRoster(t, defaultHeaders,
		[]string{"11111111111", "X", "SRC1", "101"})
	optical := []model.OpticalRecord{optRec("11111111111", "A", "", "AB CB")}
	key := singleKey("A", "SRC1", "ABCABE")

	results, err := Evaluate(roster, optical, key)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	r := results[0]
	if got := r.Correct + r.Wrong + r.Blank; got != 6 {
		t.Errorf("correct+wrong+blank = %d, want 6 (size of key)", got)
	}
	if r.Correct != 3 || r.Wrong != 1 || r.Blank != 2 {
		t.Errorf("counts = %d/%d/%d, want 3/1/2", r.Correct, r.Wrong, r.Blank)
	}
	if r.Score != float64(r.Correct)*model.PointsPerQuestion {
		t.Errorf("Score = %v, want correct * 2.5", r.Score)
	}
}

func TestEvaluateKeyDefinesLiveQuestions(t *testing.T) {
	// The answer string is longer than the key: extra positions are never
	// evaluated, no credit and no penalty.
	roster := testRoster(t, defaultHeaders,
		[]string{"11111111111", "X", "SRC1", "101"})
	optical := []model.OpticalRecord{optRec("11111111111", "A", "", "ABEEEEEEEE")}
	key := singleKey("A", "SRC1", "AB")

	results, err := Evaluate(roster, optical, key)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	r := results[0]
	if r.Correct != 2 || r.Wrong != 0 || r.Blank != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/0/0", r.Correct, r.Wrong, r.Blank)
	}
}

func TestEvaluatePassBoundary(t *testing.T) {
	// 28 of 40 correct is exactly 70.00 and must pass; 27 is 67.50.
	key := singleKey("A", "SRC1", strings.Repeat("A", 40))

	tests := []struct {
		name    string
		correct int
		want    model.Outcome
		score   float64
	}{
		{"exactly 70 passes", 28, model.OutcomePass, 70.0},
		{"below 70 fails", 27, model.OutcomeFail, 67.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := strings.Repeat("A", tt.correct) + strings.Repeat("B", 40-tt.correct)
			roster := testRoster(t, defaultHeaders,
				[]string{"11111111111", "X", "SRC1", "101"})
			optical := []model.OpticalRecord{optRec("11111111111", "A", "", answers)}

			results, err := Evaluate(roster, optical, key)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if results[0].Score != tt.score {
				t.Errorf("Score = %v, want %v", results[0].Score, tt.score)
			}
			if results[0].Outcome != tt.want {
				t.Errorf("Outcome = %q, want %q", results[0].Outcome, tt.want)
			}
		})
	}
}

func TestEvaluateStatuses(t *testing.T) {
	key := singleKey("A", "SRC1", "ABCAA")

	tests := []struct {
		name       string
		optical    []model.OpticalRecord
		wantStatus model.Status
		wantDetail string
		wantOut    model.Outcome
	}{
		{
			name:       "never scanned",
			optical:    nil,
			wantStatus: model.StatusExempt,
			wantOut:    model.OutcomeFail,
		},
		{
			name:       "absent marker",
			optical:    []model.OpticalRecord{optRec("11111111111", "A", "G", "")},
			wantStatus: model.StatusAbsent,
			wantOut:    model.OutcomeAbsent,
		},
		{
			name:       "missing booklet key",
			optical:    []model.OpticalRecord{optRec("11111111111", "C", "", "ABCAD")},
			wantStatus: model.StatusNoBookletKey,
			wantDetail: "C",
			wantOut:    model.OutcomeFail,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := testRoster(t, defaultHeaders,
				[]string{"11111111111", "X", "SRC1", "101"})

			results, err := Evaluate(roster, tt.optical, key)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			r := results[0]
			if r.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.StatusDetail != tt.wantDetail {
				t.Errorf("StatusDetail = %q, want %q", r.StatusDetail, tt.wantDetail)
			}
			if r.Outcome != tt.wantOut {
				t.Errorf("Outcome = %q, want %q", r.Outcome, tt.wantOut)
			}
			if r.Correct != 0 || r.Wrong != 0 || r.Blank != 0 || r.Score != 0 {
				t.Errorf("unscored row has nonzero counts: %+v", r)
			}
		})
	}
}

func TestEvaluateDocTypeFuzzyMatch(t *testing.T) {
	// Roster says "SRC 1 BELGESİ", key says "SRC 1": containment either way
	// resolves the document type.
	roster := testRoster(t, defaultHeaders,
		[]string{"11111111111", "X", "SRC 1 BELGESİ", "101"})
	optical := []model.OpticalRecord{optRec("11111111111", "A", "", "ABCAA")}
	key := singleKey("A", "SRC 1", "ABCAA")

	results, err := Evaluate(roster, optical, key)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if results[0].Status != model.StatusEntered || results[0].Correct != 5 {
		t.Errorf("fuzzy doc-type match failed: %+v", results[0])
	}
}

func TestEvaluateNoDocTypeKey(t *testing.T) {
	roster := testRoster(t, defaultHeaders,
		[]string{"11111111111", "X", "ODY", "101"})
	optical := []model.OpticalRecord{optRec("11111111111", "A", "", "ABCAA")}
	key := singleKey("A", "SRC1", "ABCAA")

	results, err := Evaluate(roster, optical, key)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	r := results[0]
	if r.Status != model.StatusNoDocTypeKey {
		t.Errorf("Status = %q, want no_doctype_key", r.Status)
	}
	if r.StatusDetail != "ODY" {
		t.Errorf("StatusDetail = %q, want ODY", r.StatusDetail)
	}
}

func TestEvaluateEmptyInputs(t *testing.T) {
	roster := testRoster(t, defaultHeaders, []string{"11111111111", "X", "SRC1", "101"})

	if _, err := Evaluate(roster, nil, model.AnswerKey{}); !errors.Is(err, answerkey.ErrEmptyKey) {
		t.Errorf("empty key error = %v, want ErrEmptyKey", err)
	}
	if _, err := Evaluate(model.Roster{}, nil, singleKey("A", "SRC1", "A")); !errors.Is(err, ErrEmptyRoster) {
		t.Errorf("empty roster error = %v, want ErrEmptyRoster", err)
	}
}

func TestEvaluateColumnDiscovery(t *testing.T) {
	key := singleKey("A", "SRC1", "ABCAA")

	t.Run("turkish dotted capital headers", func(t *testing.T) {
		// "TC KİMLİK NO" only matches "kimlik" under Turkish lowering.
		roster := testRoster(t, []string{"TC KİMLİK NO", "İSİM", "BELGE TÜRÜ"},
			[]string{"11111111111", "AYŞE", "SRC1"})
		optical := []model.OpticalRecord{optRec("11111111111", "A", "", "ABCAA")}

		results, err := Evaluate(roster, optical, key)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		r := results[0]
		if r.FullName != "AYŞE" {
			t.Errorf("FullName = %q, want AYŞE via İSİM header", r.FullName)
		}
		if r.RoomNo != model.DefaultRoom {
			t.Errorf("RoomNo = %q, want default room", r.RoomNo)
		}
		if r.Correct != 5 {
			t.Errorf("Correct = %d, want 5", r.Correct)
		}
	})

	t.Run("uniform 11-char fallback", func(t *testing.T) {
		roster := testRoster(t, []string{"Numara", "Kayıt"},
			[]string{"11111111111", "x"},
			[]string{"22222222222", "y"})
		optical := []model.OpticalRecord{optRec("11111111111", "A", "", "ABCAA")}

		results, err := Evaluate(roster, optical, key)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if results[0].NationalID != "11111111111" {
			t.Errorf("NationalID = %q, fallback column not found", results[0].NationalID)
		}
		if results[0].FullName != model.DefaultName {
			t.Errorf("FullName = %q, want default name", results[0].FullName)
		}
	})

	t.Run("no ID column fails", func(t *testing.T) {
		roster := testRoster(t, []string{"Numara", "Kayıt"},
			[]string{"123", "x"})
		_, err := Evaluate(roster, nil, key)
		if !errors.Is(err, ErrNoIDColumn) {
			t.Errorf("error = %v, want ErrNoIDColumn", err)
		}
	})
}

func TestEvaluateDeterministic(t *testing.T) {
	roster := testRoster(t, defaultHeaders,
		[]string{"11111111111", "A", "SRC1", "101"},
		[]string{"22222222222", "B", "SRC1", "101"},
		[]string{"33333333333", "C", "ÜDY3", "102"})
	optical := []model.OpticalRecord{
		optRec("11111111111", "A", "", "ABCAA"),
		optRec("22222222222", "A", "G", ""),
	}
	key := model.AnswerKey{
		"A": {
			"SRC1": keyFromString("ABCAA"),
			"ÜDY3": keyFromString("BBBBB"),
		},
	}

	first, err := Evaluate(roster, optical, key)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	second, err := Evaluate(roster, optical, key)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Evaluate is not deterministic:\nfirst:  %v\nsecond: %v", first, second)
	}
}
