package session

import (
	"context"
	"sync"
	"time"

	"github.com/aulaplay/aulaplay-backend/internal/model"
)

// Phase is the coarse lifecycle state of a session.
type Phase string

const (
	PhaseNotStarted Phase = "NOT_STARTED"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseCompleted  Phase = "COMPLETED"
)

// Options tunes the controller's timing and wires optional observers.
// The zero value gives the production defaults; tests shrink the intervals
// to exercise real transitions quickly.
type Options struct {
	// TickInterval is the wall-clock interval between countdown ticks.
	// Defaults to one second.
	TickInterval time.Duration
	// AutoAdvanceDelay is how long a multiple-choice selection stays on
	// screen before the controller advances on its own. Defaults to one
	// second.
	AutoAdvanceDelay time.Duration
	// OnTick, when set, is invoked after every tick with the remaining
	// seconds. Called outside the controller's lock.
	OnTick func(remaining int)
	// OnComplete, when set, is invoked exactly once with the final result.
	// Called outside the controller's lock.
	OnComplete func(*model.Result)
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.TickInterval <= 0 {
		out.TickInterval = time.Second
	}
	if out.AutoAdvanceDelay <= 0 {
		out.AutoAdvanceDelay = time.Second
	}
	return out
}

// Controller owns the state machine for one student's attempt at one
// activity. It is the only component that mutates session state; the scoring
// engine only ever reads the answer map after the freeze at submit time.
//
// All exported methods are safe for concurrent use. The countdown ticker and
// the auto-advance timer are cancelled on every exit path (submit, timeout,
// Close), so a discarded controller never mutates state again.
type Controller struct {
	activity  *model.Activity
	studentID int
	opts      Options

	mu        sync.Mutex
	phase     Phase
	current   int
	answers   map[int]string
	remaining int
	result    *model.Result

	cancelTick  context.CancelFunc
	autoAdvance *time.Timer
}

// NewController creates a controller in the NotStarted phase. The activity
// must already have passed model.Activity.Validate; the controller performs
// no validation of its own.
func NewController(activity *model.Activity, studentID int, opts Options) *Controller {
	return &Controller{
		activity:  activity,
		studentID: studentID,
		opts:      opts.withDefaults(),
		phase:     PhaseNotStarted,
		answers:   make(map[int]string),
		remaining: activity.TimeLimitSeconds,
	}
}

// Start enters InProgress: question index 0, empty answer map, the full time
// limit on the clock, and the countdown ticking. It is a no-op unless the
// controller is in NotStarted; a retry is always a brand-new controller.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.phase != PhaseNotStarted {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseInProgress
	c.current = 0
	c.answers = make(map[int]string)
	c.remaining = c.activity.TimeLimitSeconds

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelTick = cancel
	interval := c.opts.TickInterval
	c.mu.Unlock()

	go c.runTicker(ctx, interval)
}

func (c *Controller) runTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.tick()
		case <-ctx.Done():
			return
		}
	}
}

// tick decrements the clock by one second. Reaching zero submits implicitly;
// a timeout is not distinguishable from an explicit submission in the result.
func (c *Controller) tick() {
	c.mu.Lock()
	if c.phase != PhaseInProgress {
		c.mu.Unlock()
		return
	}
	c.remaining--
	remaining := c.remaining

	var res *model.Result
	if remaining <= 0 {
		res = c.submitLocked()
	}
	c.mu.Unlock()

	if c.opts.OnTick != nil {
		c.opts.OnTick(remaining)
	}
	c.deliver(res)
}

// RecordAnswer records the raw answer for the current question, overwriting
// any previous answer. For multiple-choice questions it also schedules the
// automatic advance, so the student sees the selected option briefly before
// moving on.
func (c *Controller) RecordAnswer(answer string) {
	c.mu.Lock()
	if c.phase != PhaseInProgress {
		c.mu.Unlock()
		return
	}
	c.answers[c.current] = answer

	if c.activity.Questions[c.current].Kind == model.QuestionKindMultipleChoice {
		if c.autoAdvance != nil {
			c.autoAdvance.Stop()
		}
		idx := c.current
		c.autoAdvance = time.AfterFunc(c.opts.AutoAdvanceDelay, func() {
			c.autoAdvanceFrom(idx)
		})
	}
	c.mu.Unlock()
}

// autoAdvanceFrom fires the deferred advance scheduled by a multiple-choice
// selection. It is dropped silently when the session has moved on in the
// meantime (manual navigation, submit, teardown).
func (c *Controller) autoAdvanceFrom(idx int) {
	c.mu.Lock()
	if c.phase != PhaseInProgress || c.current != idx {
		c.mu.Unlock()
		return
	}
	res := c.advanceLocked()
	c.mu.Unlock()

	c.deliver(res)
}

// Advance moves to the next question, or submits when the current question is
// the last one. Refused (no state change) while the current question has no
// recorded answer — the completeness invariant.
func (c *Controller) Advance() {
	c.mu.Lock()
	res := c.advanceLocked()
	c.mu.Unlock()

	c.deliver(res)
}

func (c *Controller) advanceLocked() *model.Result {
	if c.phase != PhaseInProgress {
		return nil
	}
	if _, answered := c.answers[c.current]; !answered {
		return nil
	}
	if c.current == len(c.activity.Questions)-1 {
		return c.submitLocked()
	}
	c.current++
	return nil
}

// Retreat moves back one question. Permitted whenever the index is above
// zero; the question being left does not need an answer.
func (c *Controller) Retreat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseInProgress || c.current == 0 {
		return
	}
	c.current--
}

// Submit finishes the session explicitly. Refused while the current question
// has no recorded answer; the timeout path is exempt from that rule.
func (c *Controller) Submit() {
	c.mu.Lock()
	var res *model.Result
	if _, answered := c.answers[c.current]; answered {
		res = c.submitLocked()
	}
	c.mu.Unlock()

	c.deliver(res)
}

// submitLocked performs the Completed transition: cancel the timers, freeze
// the answer map and score it. Idempotent — a second call is a no-op.
func (c *Controller) submitLocked() *model.Result {
	if c.phase != PhaseInProgress {
		return nil
	}
	c.phase = PhaseCompleted
	c.stopTimersLocked()

	elapsed := c.activity.TimeLimitSeconds - c.remaining
	if elapsed < 0 {
		elapsed = 0
	}
	c.result = Score(c.activity, c.studentID, c.answers, elapsed)
	return c.result
}

// Close releases the ticker and any pending auto-advance. Must be called on
// every exit path that abandons an InProgress session; safe to call multiple
// times and after completion.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimersLocked()
}

func (c *Controller) stopTimersLocked() {
	if c.cancelTick != nil {
		c.cancelTick()
		c.cancelTick = nil
	}
	if c.autoAdvance != nil {
		c.autoAdvance.Stop()
		c.autoAdvance = nil
	}
}

// deliver invokes OnComplete outside the lock, once per session.
func (c *Controller) deliver(res *model.Result) {
	if res != nil && c.opts.OnComplete != nil {
		c.opts.OnComplete(res)
	}
}

// ─── Observers ──────────────────────────────────────────────────────

// Activity returns the immutable activity this session runs against.
func (c *Controller) Activity() *model.Activity {
	return c.activity
}

// StudentID returns the owning student.
func (c *Controller) StudentID() int {
	return c.studentID
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// CurrentIndex returns the current question index.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// RemainingSeconds returns the seconds left on the clock.
func (c *Controller) RemainingSeconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// CanAdvance reports whether the completeness invariant currently allows
// advancing, so the presentation layer can disable the action.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseInProgress {
		return false
	}
	_, answered := c.answers[c.current]
	return answered
}

// Answers returns a snapshot copy of the recorded answers by question index.
func (c *Controller) Answers() map[int]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]string, len(c.answers))
	for k, v := range c.answers {
		out[k] = v
	}
	return out
}

// Result returns the final result once the phase is Completed.
func (c *Controller) Result() (*model.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseCompleted {
		return nil, false
	}
	return c.result, true
}
