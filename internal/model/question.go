package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// QuestionKind discriminates the question variants.
type QuestionKind string

const (
	QuestionKindMultipleChoice QuestionKind = "MULTIPLE_CHOICE"
	QuestionKindShortAnswer    QuestionKind = "SHORT_ANSWER"
	QuestionKindMatchPairs     QuestionKind = "MATCH_PAIRS"
)

// MatchPairsAcknowledged is the opaque answer value recorded when a student
// confirms having reviewed a MATCH_PAIRS question. There is no per-pair
// response capture; see the scoring rules in internal/session.
const MatchPairsAcknowledged = "acknowledged"

// Question represents a single activity question. Which fields are meaningful
// depends on Kind:
//   - MULTIPLE_CHOICE: Options, CorrectOption
//   - SHORT_ANSWER: CorrectAnswer, AcceptedAnswers
//   - MATCH_PAIRS: LeftItems, RightItems, CorrectMapping
//
// Prompt, Visual and Explanation apply to every kind.
type Question struct {
	ID              uuid.UUID    `json:"id"`
	ActivityID      uuid.UUID    `json:"activity_id"`
	Kind            QuestionKind `json:"kind"`
	Prompt          string       `json:"prompt"`
	Visual          string       `json:"visual,omitempty"`
	Explanation     string       `json:"explanation,omitempty"`
	OrderNum        int          `json:"order_num"`
	Options         []string     `json:"options,omitempty"`
	CorrectOption   string       `json:"correct_option,omitempty"`
	CorrectAnswer   string       `json:"correct_answer,omitempty"`
	AcceptedAnswers []string     `json:"accepted_answers,omitempty"`
	LeftItems       []string     `json:"left_items,omitempty"`
	RightItems      []string     `json:"right_items,omitempty"`
	CorrectMapping  []int        `json:"correct_mapping,omitempty"`
}

// Normalize fills derivable fields before persisting. For SHORT_ANSWER the
// canonical answer is guaranteed to be a member of the accepted set.
func (q *Question) Normalize() {
	if q.Kind != QuestionKindShortAnswer || q.CorrectAnswer == "" {
		return
	}
	for _, a := range q.AcceptedAnswers {
		if strings.EqualFold(a, q.CorrectAnswer) {
			return
		}
	}
	q.AcceptedAnswers = append(q.AcceptedAnswers, q.CorrectAnswer)
}

// Validate checks the construction-time invariants of a question definition.
// Malformed questions are rejected here, before any session is started; the
// session engine assumes every question it sees is well formed.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %d: empty prompt", q.OrderNum)
	}

	switch q.Kind {
	case QuestionKindMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: multiple choice needs at least 2 options", q.OrderNum)
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if _, dup := seen[opt]; dup {
				return fmt.Errorf("question %d: duplicate option %q", q.OrderNum, opt)
			}
			seen[opt] = struct{}{}
		}
		if _, ok := seen[q.CorrectOption]; !ok {
			return fmt.Errorf("question %d: correct option %q is not in the options list", q.OrderNum, q.CorrectOption)
		}

	case QuestionKindShortAnswer:
		if q.CorrectAnswer == "" {
			return fmt.Errorf("question %d: short answer needs a correct answer", q.OrderNum)
		}
		if len(q.AcceptedAnswers) > 0 {
			found := false
			for _, a := range q.AcceptedAnswers {
				if strings.EqualFold(a, q.CorrectAnswer) {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("question %d: correct answer %q is not in the accepted set", q.OrderNum, q.CorrectAnswer)
			}
		}

	case QuestionKindMatchPairs:
		n := len(q.LeftItems)
		if n == 0 {
			return fmt.Errorf("question %d: match pairs needs at least one pair", q.OrderNum)
		}
		if len(q.RightItems) != n {
			return fmt.Errorf("question %d: left/right item counts differ (%d vs %d)", q.OrderNum, n, len(q.RightItems))
		}
		if len(q.CorrectMapping) != n {
			return fmt.Errorf("question %d: mapping length %d does not match pair count %d", q.OrderNum, len(q.CorrectMapping), n)
		}
		// The mapping must be a bijection onto 0..n-1.
		used := make([]bool, n)
		for i, m := range q.CorrectMapping {
			if m < 0 || m >= n {
				return fmt.Errorf("question %d: mapping[%d]=%d out of range", q.OrderNum, i, m)
			}
			if used[m] {
				return fmt.Errorf("question %d: mapping targets index %d twice", q.OrderNum, m)
			}
			used[m] = true
		}

	default:
		return fmt.Errorf("question %d: unknown kind %q", q.OrderNum, q.Kind)
	}

	return nil
}

// AddQuestionRequest is the payload for adding a question to an activity.
type AddQuestionRequest struct {
	Kind            string   `json:"kind" binding:"required,oneof=MULTIPLE_CHOICE SHORT_ANSWER MATCH_PAIRS"`
	Prompt          string   `json:"prompt" binding:"required,min=1,max=2000"`
	Visual          string   `json:"visual" binding:"omitempty,max=64"`
	Explanation     string   `json:"explanation" binding:"omitempty,max=2000"`
	OrderNum        int      `json:"order_num" binding:"min=0"`
	Options         []string `json:"options" binding:"omitempty,max=10,dive,min=1,max=255"`
	CorrectOption   string   `json:"correct_option" binding:"omitempty,max=255"`
	CorrectAnswer   string   `json:"correct_answer" binding:"omitempty,max=255"`
	AcceptedAnswers []string `json:"accepted_answers" binding:"omitempty,max=20,dive,min=1,max=255"`
	LeftItems       []string `json:"left_items" binding:"omitempty,max=10,dive,min=1,max=255"`
	RightItems      []string `json:"right_items" binding:"omitempty,max=10,dive,min=1,max=255"`
	CorrectMapping  []int    `json:"correct_mapping" binding:"omitempty,max=10"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing questions.
type ReplaceQuestionsRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// Question converts the request into a model Question (without IDs).
func (r *AddQuestionRequest) Question() Question {
	q := Question{
		Kind:            QuestionKind(r.Kind),
		Prompt:          r.Prompt,
		Visual:          r.Visual,
		Explanation:     r.Explanation,
		OrderNum:        r.OrderNum,
		Options:         r.Options,
		CorrectOption:   r.CorrectOption,
		CorrectAnswer:   r.CorrectAnswer,
		AcceptedAnswers: r.AcceptedAnswers,
		LeftItems:       r.LeftItems,
		RightItems:      r.RightItems,
		CorrectMapping:  r.CorrectMapping,
	}
	q.Normalize()
	return q
}
