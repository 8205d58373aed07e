package model

// Status classifies what happened to one roster entry during evaluation.
// Soft failures (missing keys, never scanned) are statuses, not errors, so
// one bad row never aborts the rest of the batch.
type Status string

const (
	// StatusEntered means the candidate was scanned and scoring was
	// attempted against the answer key.
	StatusEntered Status = "entered"
	// StatusAbsent means the optical record carries the absence marker.
	StatusAbsent Status = "absent"
	// StatusExempt means no optical record exists for the candidate at all.
	StatusExempt Status = "exempt_unread"
	// StatusNoBookletKey means the answer key has no entry for the
	// candidate's booklet type.
	StatusNoBookletKey Status = "no_booklet_key"
	// StatusNoDocTypeKey means the booklet's key has no entry for the
	// candidate's document type, even after fuzzy matching.
	StatusNoDocTypeKey Status = "no_doctype_key"
)

// Outcome is the final pass/fail verdict for a candidate.
type Outcome string

const (
	OutcomePass   Outcome = "pass"
	OutcomeFail   Outcome = "fail"
	OutcomeAbsent Outcome = "absent"
)

// Scoring rules, fixed per exam regulation: every question is worth the same
// number of points and wrong answers carry no penalty.
const (
	PointsPerQuestion = 2.5
	PassScore         = 70.0
)

const (
	// AbsenceMarker is the literal the scanner prints for a no-show.
	AbsenceMarker = "G"
	// DefaultRoom labels candidates whose roster has no room column.
	DefaultRoom = "Genel"
	// DefaultName labels candidates whose roster has no name column.
	DefaultName = "İsimsiz"
	// GeneralDocType is the catch-all document type in an answer key.
	GeneralDocType = "GENEL"
)

// OpticalRecord is one scanned answer sheet decoded from a fixed-width line.
// AnswerString holds one character per question: position k is question k+1,
// a space or missing position is a blank answer.
type OpticalRecord struct {
	ID           int    `json:"id"`
	FullName     string `json:"full_name"`
	NationalID   string `json:"national_id"`
	RoomNo       string `json:"room_no"`
	AbsenceFlag  string `json:"absence_flag"`
	BookletType  string `json:"booklet_type"`
	AnswerString string `json:"answer_string"`
}

// RosterEntry is one attendance-list row: free-form column name to value.
type RosterEntry map[string]string

// Roster is an attendance list with its header order preserved. Column
// discovery depends on header order ("first header containing..."), which a
// bare map cannot provide.
type Roster struct {
	Headers []string      `json:"headers"`
	Rows    []RosterEntry `json:"rows"`
}

// AnswerKey maps booklet type -> document type -> question number (1-based)
// -> correct answer letter. The key defines the live question set: questions
// absent from it are never evaluated, regardless of answer string length.
type AnswerKey map[string]map[string]map[int]string

// ScoredResult is the evaluation outcome for one roster entry.
type ScoredResult struct {
	NationalID   string `json:"national_id"`
	FullName     string `json:"full_name"`
	DocumentType string `json:"document_type"`
	RoomNo       string `json:"room_no"`
	Status       Status `json:"status"`
	// StatusDetail names the missing booklet or document type for the
	// no-key statuses; empty otherwise.
	StatusDetail string  `json:"status_detail,omitempty"`
	BookletType  string  `json:"booklet_type"`
	Correct      int     `json:"correct"`
	Wrong        int     `json:"wrong"`
	Blank        int     `json:"blank"`
	Score        float64 `json:"score"`
	Outcome      Outcome `json:"outcome"`
	AnswerString string  `json:"answer_string"`
	// Roster carries the original roster columns through to reports.
	Roster RosterEntry `json:"roster,omitempty"`
}

// Match is one suspicious pair found by the similarity analyzer.
type Match struct {
	RoomNo        string       `json:"room_no"`
	BookletType   string       `json:"booklet_type"`
	DocumentType  string       `json:"document_type"`
	StudentA      ScoredResult `json:"student_a"`
	StudentB      ScoredResult `json:"student_b"`
	SimilarityPct float64      `json:"similarity_pct"`
	MatchCount    int          `json:"match_count"`
	TotalCount    int          `json:"total_count"`
	SharedCorrect int          `json:"shared_correct"`
	SharedWrong   int          `json:"shared_wrong"`
}
