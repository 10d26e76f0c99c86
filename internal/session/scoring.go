package session

import (
	"math"
	"strings"
	"time"

	"github.com/aulaplay/aulaplay-backend/internal/model"
)

// Score maps a frozen answer map to a Result. It is a pure function: the same
// activity and answers always produce the same result, and nothing is
// mutated. Correctness is evaluated per question kind:
//
//   - MULTIPLE_CHOICE: the recorded answer must equal the correct option
//     exactly (byte comparison).
//   - SHORT_ANSWER: the recorded answer must match a member of the accepted
//     set case-insensitively; with an empty set, the canonical answer is
//     compared case-insensitively instead.
//   - MATCH_PAIRS: the recorded answer must be the acknowledgement marker.
//     The correct mapping is only displayed during review, never validated
//     against a per-pair response.
//
// A question absent from the answer map is always incorrect and reviewed as
// unanswered.
func Score(activity *model.Activity, studentID int, answers map[int]string, elapsedSeconds int) *model.Result {
	total := len(activity.Questions)
	correct := 0
	review := make([]model.ReviewEntry, 0, total)

	for i := range activity.Questions {
		q := &activity.Questions[i]
		answer, answered := answers[i]
		ok := answered && evaluate(q, answer)
		if ok {
			correct++
		}

		entry := model.ReviewEntry{
			QuestionID:  q.ID,
			Kind:        q.Kind,
			Prompt:      q.Prompt,
			Answer:      answer,
			Answered:    answered,
			Correct:     ok,
			Explanation: q.Explanation,
		}
		if !answered {
			entry.Answer = model.NoAnswer
		}

		switch q.Kind {
		case model.QuestionKindShortAnswer:
			if !ok {
				entry.AcceptedAnswers = q.AcceptedAnswers
			}
		case model.QuestionKindMatchPairs:
			entry.CorrectPairs = resolvePairs(q)
		}

		review = append(review, entry)
	}

	score := 0
	if total > 0 {
		score = int(math.Round(float64(correct) / float64(total) * 100))
	}

	return &model.Result{
		ActivityID:     activity.ID,
		StudentID:      studentID,
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
		ElapsedSeconds: elapsedSeconds,
		Review:         review,
		CompletedAt:    time.Now(),
	}
}

func evaluate(q *model.Question, answer string) bool {
	switch q.Kind {
	case model.QuestionKindMultipleChoice:
		return answer == q.CorrectOption

	case model.QuestionKindShortAnswer:
		if len(q.AcceptedAnswers) == 0 {
			return strings.EqualFold(answer, q.CorrectAnswer)
		}
		for _, accepted := range q.AcceptedAnswers {
			if strings.EqualFold(answer, accepted) {
				return true
			}
		}
		return false

	case model.QuestionKindMatchPairs:
		return answer == model.MatchPairsAcknowledged
	}
	return false
}

// resolvePairs materializes the left→right connections described by the
// question's mapping, for display in the review.
func resolvePairs(q *model.Question) []model.MatchedPair {
	pairs := make([]model.MatchedPair, 0, len(q.LeftItems))
	for i, left := range q.LeftItems {
		pairs = append(pairs, model.MatchedPair{
			Left:  left,
			Right: q.RightItems[q.CorrectMapping[i]],
		})
	}
	return pairs
}
