package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMultipleChoice() Question {
	return Question{
		Kind:          QuestionKindMultipleChoice,
		Prompt:        "¿Qué sonido hace el gato?",
		Options:       []string{"Guau guau", "Miau miau"},
		CorrectOption: "Miau miau",
	}
}

func TestQuestionValidateMultipleChoice(t *testing.T) {
	q := validMultipleChoice()
	require.NoError(t, q.Validate())

	q.CorrectOption = "Muuu muuu"
	assert.Error(t, q.Validate(), "correct option must be a member of the options list")

	q = validMultipleChoice()
	q.Options = []string{"Miau miau", "Miau miau"}
	assert.Error(t, q.Validate(), "options must be unique")

	q = validMultipleChoice()
	q.Options = []string{"Miau miau"}
	assert.Error(t, q.Validate(), "at least two options required")
}

func TestQuestionValidateShortAnswer(t *testing.T) {
	q := Question{
		Kind:            QuestionKindShortAnswer,
		Prompt:          "Escribe un animal que vuela",
		CorrectAnswer:   "pájaro",
		AcceptedAnswers: []string{"pájaro", "ave"},
	}
	require.NoError(t, q.Validate())

	q.AcceptedAnswers = []string{"ave"}
	assert.Error(t, q.Validate(), "canonical answer must be in the accepted set")

	q.AcceptedAnswers = nil
	assert.NoError(t, q.Validate(), "empty accepted set falls back to the canonical answer")

	q.CorrectAnswer = ""
	assert.Error(t, q.Validate())
}

func TestQuestionNormalizeAddsCanonicalAnswer(t *testing.T) {
	q := Question{
		Kind:            QuestionKindShortAnswer,
		Prompt:          "p",
		CorrectAnswer:   "elefante",
		AcceptedAnswers: []string{"ballena"},
	}
	q.Normalize()
	assert.Equal(t, []string{"ballena", "elefante"}, q.AcceptedAnswers)

	// Case-insensitive membership counts; no duplicate is appended.
	q = Question{
		Kind:            QuestionKindShortAnswer,
		Prompt:          "p",
		CorrectAnswer:   "Elefante",
		AcceptedAnswers: []string{"elefante"},
	}
	q.Normalize()
	assert.Len(t, q.AcceptedAnswers, 1)
}

func TestQuestionValidateMatchPairs(t *testing.T) {
	q := Question{
		Kind:           QuestionKindMatchPairs,
		Prompt:         "Une cada animal con su hogar",
		LeftItems:      []string{"Abeja", "Oso", "Pingüino"},
		RightItems:     []string{"Polo Sur", "Cueva", "Colmena"},
		CorrectMapping: []int{2, 1, 0},
	}
	require.NoError(t, q.Validate())

	q.CorrectMapping = []int{2, 1, 1}
	assert.Error(t, q.Validate(), "mapping must be bijective")

	q.CorrectMapping = []int{2, 1, 3}
	assert.Error(t, q.Validate(), "mapping indexes must be in range")

	q.CorrectMapping = []int{2, 1}
	assert.Error(t, q.Validate(), "mapping length must match pair count")

	q.CorrectMapping = []int{2, 1, 0}
	q.RightItems = []string{"Polo Sur", "Cueva"}
	assert.Error(t, q.Validate(), "left/right lengths must match")
}

func TestActivityValidate(t *testing.T) {
	activity := &Activity{
		ID:               uuid.New(),
		Title:            "Aventura",
		TimeLimitSeconds: 300,
		Questions:        []Question{validMultipleChoice()},
	}
	require.NoError(t, activity.Validate())

	activity.TimeLimitSeconds = 0
	assert.Error(t, activity.Validate())

	activity.TimeLimitSeconds = 300
	activity.Questions = nil
	assert.Error(t, activity.Validate())

	bad := validMultipleChoice()
	bad.CorrectOption = "nope"
	activity.Questions = []Question{bad}
	assert.Error(t, activity.Validate())
}

func TestActivityPayloadHidesAnswerKey(t *testing.T) {
	mc := validMultipleChoice()
	sa := Question{
		Kind:            QuestionKindShortAnswer,
		Prompt:          "p",
		CorrectAnswer:   "sol",
		AcceptedAnswers: []string{"sol"},
	}
	mp := Question{
		Kind:           QuestionKindMatchPairs,
		Prompt:         "m",
		LeftItems:      []string{"a"},
		RightItems:     []string{"b"},
		CorrectMapping: []int{0},
	}
	activity := &Activity{
		ID:               uuid.New(),
		Title:            "Aventura",
		TimeLimitSeconds: 300,
		Questions:        []Question{mc, sa, mp},
	}

	payload := activity.Payload()

	require.Len(t, payload.Questions, 3)
	assert.Equal(t, mc.Options, payload.Questions[0].Options)
	assert.Equal(t, mp.LeftItems, payload.Questions[2].LeftItems)
	assert.Equal(t, mp.RightItems, payload.Questions[2].RightItems)

	assert.Equal(t, activity.TimeLimitSeconds, payload.TimeLimitSeconds)
}
