package session

import (
	"testing"

	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreAllCorrectMultipleChoice(t *testing.T) {
	activity := testActivity(300,
		multipleChoiceQuestion("q0", "Miau miau", "Guau guau", "Muuu muuu"),
		multipleChoiceQuestion("q1", "León", "Elefante", "Tigre"),
		multipleChoiceQuestion("q2", "Leche", "Huevos", "Miel"),
		multipleChoiceQuestion("q3", "En el agua", "En los árboles"),
	)
	answers := map[int]string{
		0: "Miau miau",
		1: "León",
		2: "Leche",
		3: "En el agua",
	}

	res := Score(activity, 1, answers, 120)

	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 4, res.CorrectCount)
	require.Len(t, res.Review, 4)
	for _, entry := range res.Review {
		assert.True(t, entry.Correct)
		assert.True(t, entry.Answered)
	}
}

func TestScoreMultipleChoiceIsCaseSensitive(t *testing.T) {
	activity := testActivity(300, multipleChoiceQuestion("q0", "Red", "Blue"))

	res := Score(activity, 1, map[int]string{0: "red"}, 10)

	assert.Equal(t, 0, res.Score)
	assert.False(t, res.Review[0].Correct)
}

func TestScoreShortAnswerAcceptedSetIsCaseInsensitive(t *testing.T) {
	activity := testActivity(300,
		shortAnswerQuestion("q0", "pájaro", "pájaro", "pajaro", "ave"),
	)

	res := Score(activity, 1, map[int]string{0: "AVE"}, 10)

	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Review[0].Correct)
	assert.Empty(t, res.Review[0].AcceptedAnswers, "accepted set only shown for incorrect answers")
}

func TestScoreShortAnswerFallsBackToCanonical(t *testing.T) {
	q := model.Question{
		Kind:          model.QuestionKindShortAnswer,
		Prompt:        "q0",
		CorrectAnswer: "elefante",
	}
	activity := testActivity(300, q)

	res := Score(activity, 1, map[int]string{0: "Elefante"}, 10)

	assert.Equal(t, 100, res.Score)
}

func TestScoreIncorrectShortAnswerListsAcceptedSet(t *testing.T) {
	activity := testActivity(300,
		shortAnswerQuestion("q0", "pájaro", "pájaro", "pajaro", "ave"),
	)

	res := Score(activity, 1, map[int]string{0: "perro"}, 10)

	entry := res.Review[0]
	assert.False(t, entry.Correct)
	assert.Equal(t, []string{"pájaro", "pajaro", "ave"}, entry.AcceptedAnswers)
}

func TestScoreMissingAnswer(t *testing.T) {
	activity := testActivity(300,
		multipleChoiceQuestion("q0", "a", "b"),
		shortAnswerQuestion("q1", "sol"),
	)

	res := Score(activity, 1, map[int]string{0: "a"}, 10)

	assert.Equal(t, 50, res.Score)
	entry := res.Review[1]
	assert.False(t, entry.Answered)
	assert.False(t, entry.Correct)
	assert.Equal(t, model.NoAnswer, entry.Answer)
}

func TestScoreMatchPairsAcknowledgement(t *testing.T) {
	activity := testActivity(300, matchPairsQuestion("q0"))

	acked := Score(activity, 1, map[int]string{0: model.MatchPairsAcknowledged}, 10)
	assert.Equal(t, 100, acked.Score)
	assert.True(t, acked.Review[0].Correct)

	other := Score(activity, 1, map[int]string{0: "whatever"}, 10)
	assert.Equal(t, 0, other.Score)
}

func TestScoreMatchPairsReviewResolvesMapping(t *testing.T) {
	activity := testActivity(300, matchPairsQuestion("q0"))

	res := Score(activity, 1, map[int]string{}, 10)

	require.Len(t, res.Review, 1)
	assert.Equal(t, []model.MatchedPair{
		{Left: "Abeja", Right: "Colmena"},
		{Left: "Oso", Right: "Cueva"},
	}, res.Review[0].CorrectPairs)
}

func TestScoreRoundsToNearestPercent(t *testing.T) {
	activity := testActivity(300,
		shortAnswerQuestion("q0", "a"),
		shortAnswerQuestion("q1", "b"),
		shortAnswerQuestion("q2", "c"),
	)

	res := Score(activity, 1, map[int]string{0: "a"}, 10)
	assert.Equal(t, 33, res.Score)

	res = Score(activity, 1, map[int]string{0: "a", 1: "b"}, 10)
	assert.Equal(t, 67, res.Score)
}

func TestScoreIsDeterministic(t *testing.T) {
	activity := testActivity(300,
		multipleChoiceQuestion("q0", "a", "b"),
		shortAnswerQuestion("q1", "sol"),
		matchPairsQuestion("q2"),
	)
	answers := map[int]string{0: "a", 2: model.MatchPairsAcknowledged}

	first := Score(activity, 1, answers, 42)
	for i := 0; i < 5; i++ {
		again := Score(activity, 1, answers, 42)
		assert.Equal(t, first.Score, again.Score)
		assert.Equal(t, first.CorrectCount, again.CorrectCount)
		assert.Equal(t, first.Review, again.Review)
	}
}

func TestScorePreservesQuestionOrder(t *testing.T) {
	activity := testActivity(300,
		multipleChoiceQuestion("primera", "a", "b"),
		shortAnswerQuestion("segunda", "sol"),
		matchPairsQuestion("tercera"),
	)

	res := Score(activity, 1, map[int]string{}, 10)

	require.Len(t, res.Review, 3)
	assert.Equal(t, "primera", res.Review[0].Prompt)
	assert.Equal(t, "segunda", res.Review[1].Prompt)
	assert.Equal(t, "tercera", res.Review[2].Prompt)
}
