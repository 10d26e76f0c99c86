package model

import (
	"time"

	"github.com/google/uuid"
)

// NoAnswer is the sentinel shown in review entries for questions the student
// never answered. Missing answers are always scored as incorrect.
const NoAnswer = ""

// Result is the immutable outcome of a completed session: an aggregate score
// plus a per-question review in the activity's question order. Created exactly
// once, at the Completed transition.
type Result struct {
	ActivityID     uuid.UUID     `json:"activity_id"`
	StudentID      int           `json:"student_id"`
	Score          int           `json:"score"`
	CorrectCount   int           `json:"correct_count"`
	TotalQuestions int           `json:"total_questions"`
	ElapsedSeconds int           `json:"elapsed_seconds"`
	Review         []ReviewEntry `json:"review"`
	CompletedAt    time.Time     `json:"completed_at"`
}

// ReviewEntry describes the outcome of a single question.
type ReviewEntry struct {
	QuestionID uuid.UUID    `json:"question_id"`
	Kind       QuestionKind `json:"kind"`
	Prompt     string       `json:"prompt"`
	// Answer is the raw recorded answer, or NoAnswer when the question was
	// never answered.
	Answer   string `json:"answer"`
	Answered bool   `json:"answered"`
	Correct  bool   `json:"correct"`
	// Explanation is the question's explanation text, when present.
	Explanation string `json:"explanation,omitempty"`
	// AcceptedAnswers lists every acceptable phrasing for incorrect
	// SHORT_ANSWER questions, so the student sees all valid spellings.
	AcceptedAnswers []string `json:"accepted_answers,omitempty"`
	// CorrectPairs spells out the left→right mapping for MATCH_PAIRS
	// questions during review.
	CorrectPairs []MatchedPair `json:"correct_pairs,omitempty"`
}

// MatchedPair is one resolved left→right connection of a MATCH_PAIRS question.
type MatchedPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}
