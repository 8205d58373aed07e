package optical

import (
	"reflect"
	"testing"

	"github.com/tyilmaz/optikeval/internal/model"
)

func rec(id int, tc, answers string) model.OpticalRecord {
	return model.OpticalRecord{ID: id, NationalID: tc, AnswerString: answers}
}

func TestDedupeLastWins(t *testing.T) {
	in := []model.OpticalRecord{
		rec(1, "11111111111", "AAAAA"),
		rec(2, "22222222222", "BBBBB"),
		rec(3, "11111111111", "CCCCC"), // re-scan appended at file end
	}

	out := Dedupe(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	// The correction (id 3) replaces the first scan but the result is
	// re-sorted by id, so the surviving records are 2 then 3.
	if out[0].ID != 2 || out[1].ID != 3 {
		t.Errorf("IDs = %d, %d; want 2, 3", out[0].ID, out[1].ID)
	}
	if out[1].AnswerString != "CCCCC" {
		t.Errorf("kept answers %q, want the later scan's CCCCC", out[1].AnswerString)
	}
}

func TestDedupeBlankIDsNeverMerge(t *testing.T) {
	in := []model.OpticalRecord{
		rec(1, "", "AAAAA"),
		rec(2, "   ", "BBBBB"),
		rec(3, "", "CCCCC"),
	}

	out := Dedupe(in)
	if len(out) != 3 {
		t.Fatalf("blank-ID records were merged: got %d records, want 3", len(out))
	}
}

func TestDedupeTrimsIDs(t *testing.T) {
	in := []model.OpticalRecord{
		rec(1, " 11111111111", "AAAAA"),
		rec(2, "11111111111 ", "BBBBB"),
	}
	out := Dedupe(in)
	if len(out) != 1 {
		t.Fatalf("expected whitespace-padded IDs to merge, got %d records", len(out))
	}
}

func TestDedupeIdempotent(t *testing.T) {
	in := []model.OpticalRecord{
		rec(3, "11111111111", "AAAAA"),
		rec(1, "22222222222", "BBBBB"),
		rec(2, "11111111111", "CCCCC"),
	}

	once := Dedupe(in)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Dedupe is not idempotent:\nonce:  %v\ntwice: %v", once, twice)
	}

	seen := map[string]bool{}
	for _, r := range once {
		if r.NationalID != "" && seen[r.NationalID] {
			t.Errorf("duplicate national ID %q in output", r.NationalID)
		}
		seen[r.NationalID] = true
	}
}

func TestValidTC(t *testing.T) {
	tests := []struct {
		tc   string
		want bool
	}{
		{"11111111111", true},
		{" 11111111111 ", true},
		{"1111111111", false},   // 10 digits
		{"111111111111", false}, // 12 digits
		{"1111111111a", false},
		{"", false},
		{"           ", false},
	}
	for _, tt := range tests {
		if got := ValidTC(tt.tc); got != tt.want {
			t.Errorf("ValidTC(%q) = %v, want %v", tt.tc, got, tt.want)
		}
	}
}
