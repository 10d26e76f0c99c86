package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer  Action = "answer"
	ActionAdvance Action = "advance"
	ActionRetreat Action = "retreat"
	ActionSubmit  Action = "submit"
	ActionPing    Action = "ping"
)

// RequestPayload carries every client action; only Answer uses the ans field.
type RequestPayload struct {
	Action Action `json:"action"`
	Answer string `json:"ans,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventState     Event = "state"
	EventTick      Event = "tick"
	EventCompleted Event = "completed"
	EventPong      Event = "pong"
)

// TickResponse is pushed once per countdown tick.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// StateResponse echoes the session snapshot after every accepted action.
type StateResponse struct {
	Event Event       `json:"event"`
	State interface{} `json:"state"`
}

// CompletedResponse carries the final result when the session finishes,
// whether by submit or by timeout.
type CompletedResponse struct {
	Event  Event       `json:"event"`
	Result interface{} `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
