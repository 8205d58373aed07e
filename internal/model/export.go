package model

import "time"

// ExamExport is the top-level JSON structure for exam result export.
type ExamExport struct {
	ExamName     string         `json:"exam_name"`
	GeneratedAt  time.Time      `json:"generated_at"`
	ThresholdPct float64        `json:"threshold_pct,omitempty"`
	Results      []ScoredResult `json:"results"`
	Matches      []Match        `json:"matches,omitempty"`
}

// ExamSnapshot is the persisted state of one evaluated exam: everything
// needed to re-render reports or re-run the similarity analysis later.
type ExamSnapshot struct {
	Results   []ScoredResult `json:"results"`
	AnswerKey AnswerKey      `json:"answer_key"`
}

// ExamInfo is a stored exam's listing row.
type ExamInfo struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
