package session

import (
	"testing"
	"time"

	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastOptions keeps wall-clock waits short while still exercising the real
// ticker and auto-advance paths.
func fastOptions() Options {
	return Options{
		TickInterval:     5 * time.Millisecond,
		AutoAdvanceDelay: 5 * time.Millisecond,
	}
}

func multipleChoiceQuestion(prompt, correct string, others ...string) model.Question {
	q := model.Question{
		ID:            uuid.New(),
		Kind:          model.QuestionKindMultipleChoice,
		Prompt:        prompt,
		Options:       append([]string{correct}, others...),
		CorrectOption: correct,
	}
	return q
}

func shortAnswerQuestion(prompt, canonical string, accepted ...string) model.Question {
	q := model.Question{
		ID:              uuid.New(),
		Kind:            model.QuestionKindShortAnswer,
		Prompt:          prompt,
		CorrectAnswer:   canonical,
		AcceptedAnswers: accepted,
	}
	q.Normalize()
	return q
}

func matchPairsQuestion(prompt string) model.Question {
	return model.Question{
		ID:             uuid.New(),
		Kind:           model.QuestionKindMatchPairs,
		Prompt:         prompt,
		LeftItems:      []string{"Abeja", "Oso"},
		RightItems:     []string{"Cueva", "Colmena"},
		CorrectMapping: []int{1, 0},
	}
}

func testActivity(timeLimit int, questions ...model.Question) *model.Activity {
	for i := range questions {
		questions[i].OrderNum = i
	}
	return &model.Activity{
		ID:               uuid.New(),
		Title:            "Aventura de prueba",
		TimeLimitSeconds: timeLimit,
		Status:           model.ActivityStatusPublished,
		Questions:        questions,
	}
}

func TestStartInitializesSession(t *testing.T) {
	activity := testActivity(300,
		multipleChoiceQuestion("q0", "a", "b"),
		shortAnswerQuestion("q1", "pájaro"),
	)
	c := NewController(activity, 1, fastOptions())

	require.Equal(t, PhaseNotStarted, c.Phase())

	c.Start()
	defer c.Close()

	assert.Equal(t, PhaseInProgress, c.Phase())
	assert.Equal(t, 0, c.CurrentIndex())
	assert.Equal(t, 300, c.RemainingSeconds())
	assert.Empty(t, c.Answers())
}

func TestStartIsSingleShot(t *testing.T) {
	activity := testActivity(300, shortAnswerQuestion("q0", "sol"))
	c := NewController(activity, 1, fastOptions())
	c.Start()
	defer c.Close()

	c.RecordAnswer("sol")
	c.Start() // Must not reset anything.

	assert.Equal(t, map[int]string{0: "sol"}, c.Answers())
	assert.Equal(t, PhaseInProgress, c.Phase())
}

func TestAdvanceRefusedWithoutAnswer(t *testing.T) {
	activity := testActivity(300,
		shortAnswerQuestion("q0", "sol"),
		shortAnswerQuestion("q1", "luna"),
	)
	c := NewController(activity, 1, fastOptions())
	c.Start()
	defer c.Close()

	require.False(t, c.CanAdvance())
	c.Advance()

	assert.Equal(t, 0, c.CurrentIndex())
	assert.Equal(t, PhaseInProgress, c.Phase())
}

func TestAdvanceMovesForwardWithAnswer(t *testing.T) {
	activity := testActivity(300,
		shortAnswerQuestion("q0", "sol"),
		shortAnswerQuestion("q1", "luna"),
	)
	c := NewController(activity, 1, fastOptions())
	c.Start()
	defer c.Close()

	c.RecordAnswer("sol")
	require.True(t, c.CanAdvance())
	c.Advance()

	assert.Equal(t, 1, c.CurrentIndex())
	assert.Equal(t, PhaseInProgress, c.Phase())
}

func TestAdvanceFromLastQuestionSubmits(t *testing.T) {
	activity := testActivity(300, shortAnswerQuestion("q0", "sol"))
	c := NewController(activity, 1, fastOptions())
	c.Start()
	defer c.Close()

	c.RecordAnswer("sol")
	c.Advance()

	require.Equal(t, PhaseCompleted, c.Phase())
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, 100, res.Score)
}

func TestRetreatDoesNotRequireAnswer(t *testing.T) {
	activity := testActivity(300,
		shortAnswerQuestion("q0", "sol"),
		shortAnswerQuestion("q1", "luna"),
	)
	c := NewController(activity, 1, fastOptions())
	c.Start()
	defer c.Close()

	c.RecordAnswer("sol")
	c.Advance()
	require.Equal(t, 1, c.CurrentIndex())

	// Question 1 has no answer; going back is still permitted.
	c.Retreat()
	assert.Equal(t, 0, c.CurrentIndex())

	// Retreat at index 0 is a no-op.
	c.Retreat()
	assert.Equal(t, 0, c.CurrentIndex())
}

func TestSubmitRefusedWithoutAnswer(t *testing.T) {
	activity := testActivity(300, shortAnswerQuestion("q0", "sol"))
	c := NewController(activity, 1, fastOptions())
	c.Start()
	defer c.Close()

	c.Submit()

	assert.Equal(t, PhaseInProgress, c.Phase())
	_, ok := c.Result()
	assert.False(t, ok)
}

func TestMultipleChoiceAutoAdvances(t *testing.T) {
	activity := testActivity(300,
		multipleChoiceQuestion("q0", "Miau miau", "Guau guau"),
		shortAnswerQuestion("q1", "pájaro"),
	)
	c := NewController(activity, 1, fastOptions())
	c.Start()
	defer c.Close()

	c.RecordAnswer("Miau miau")

	require.Eventually(t, func() bool {
		return c.CurrentIndex() == 1
	}, time.Second, time.Millisecond, "selection should auto-advance")
	assert.Equal(t, PhaseInProgress, c.Phase())
}

func TestMultipleChoiceAutoAdvanceOnLastQuestionSubmits(t *testing.T) {
	activity := testActivity(300, multipleChoiceQuestion("q0", "a", "b"))
	c := NewController(activity, 1, fastOptions())
	c.Start()
	defer c.Close()

	c.RecordAnswer("a")

	require.Eventually(t, func() bool {
		return c.Phase() == PhaseCompleted
	}, time.Second, time.Millisecond)
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, 100, res.Score)
}

func TestAutoAdvanceDroppedAfterManualNavigation(t *testing.T) {
	activity := testActivity(300,
		multipleChoiceQuestion("q0", "a", "b"),
		shortAnswerQuestion("q1", "sol"),
		shortAnswerQuestion("q2", "luna"),
	)
	c := NewController(activity, 1, Options{
		TickInterval:     5 * time.Millisecond,
		AutoAdvanceDelay: 20 * time.Millisecond,
	})
	c.Start()
	defer c.Close()

	c.RecordAnswer("a")
	// Leave question 0 before the deferred advance fires.
	c.Advance()
	require.Equal(t, 1, c.CurrentIndex())
	c.RecordAnswer("sol")
	c.Advance()
	require.Equal(t, 2, c.CurrentIndex())

	// The stale timer must not move the session again.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, c.CurrentIndex())
}

func TestTimeoutSubmitsWithoutUserAction(t *testing.T) {
	activity := testActivity(1,
		shortAnswerQuestion("q0", "sol"),
		shortAnswerQuestion("q1", "luna"),
	)
	var completed *model.Result
	done := make(chan struct{})
	opts := fastOptions()
	opts.OnComplete = func(r *model.Result) {
		completed = r
		close(done)
	}
	c := NewController(activity, 7, opts)
	c.Start()
	defer c.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not complete on timeout")
	}

	assert.Equal(t, PhaseCompleted, c.Phase())
	require.NotNil(t, completed)
	assert.Equal(t, 7, completed.StudentID)
	// Untouched session: the whole time limit was used.
	assert.Equal(t, 1, completed.ElapsedSeconds)
	assert.Equal(t, 0, completed.Score)

	res, ok := c.Result()
	require.True(t, ok)
	assert.Same(t, completed, res)
}

func TestTickReportsRemainingSeconds(t *testing.T) {
	activity := testActivity(3, shortAnswerQuestion("q0", "sol"))
	ticks := make(chan int, 16)
	opts := fastOptions()
	opts.OnTick = func(remaining int) { ticks <- remaining }
	c := NewController(activity, 1, opts)
	c.Start()
	defer c.Close()

	var seen []int
	timeout := time.After(time.Second)
	for len(seen) < 3 {
		select {
		case r := <-ticks:
			seen = append(seen, r)
		case <-timeout:
			t.Fatalf("timed out waiting for ticks, got %v", seen)
		}
	}

	assert.Equal(t, []int{2, 1, 0}, seen)
	assert.Equal(t, PhaseCompleted, c.Phase())
}

func TestNoTicksAfterSubmit(t *testing.T) {
	activity := testActivity(600, shortAnswerQuestion("q0", "sol"))
	c := NewController(activity, 1, fastOptions())
	c.Start()

	c.RecordAnswer("sol")
	c.Submit()
	require.Equal(t, PhaseCompleted, c.Phase())

	res, _ := c.Result()
	remaining := c.RemainingSeconds()

	// Enough time for several would-be ticks.
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, remaining, c.RemainingSeconds(), "clock must freeze at submit")
	got, _ := c.Result()
	assert.Same(t, res, got, "result is created exactly once")
}

func TestCloseStopsAbandonedSession(t *testing.T) {
	activity := testActivity(600, shortAnswerQuestion("q0", "sol"))
	c := NewController(activity, 1, fastOptions())
	c.Start()

	c.Close()
	remaining := c.RemainingSeconds()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, remaining, c.RemainingSeconds(), "ticker must stop on Close")

	// Close is idempotent and safe after completion.
	c.Close()
}

func TestRecordAnswerOverwritesPrevious(t *testing.T) {
	activity := testActivity(300, shortAnswerQuestion("q0", "sol"))
	c := NewController(activity, 1, fastOptions())
	c.Start()
	defer c.Close()

	c.RecordAnswer("luna")
	c.RecordAnswer("sol")

	assert.Equal(t, map[int]string{0: "sol"}, c.Answers())
}

func TestResultUnavailableWhileInProgress(t *testing.T) {
	activity := testActivity(300, shortAnswerQuestion("q0", "sol"))
	c := NewController(activity, 1, fastOptions())
	c.Start()
	defer c.Close()

	_, ok := c.Result()
	assert.False(t, ok)
}
