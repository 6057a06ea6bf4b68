package service

// State is the checkout attempt state. A checkout runs
// Idle → Validating → Processing → {Succeeded, Failed} and resets to
// Idle after either terminal state. A second pay action while
// Processing is rejected, never queued.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var validStateNext = map[State]map[State]bool{
	StateIdle:       {StateValidating: true},
	StateValidating: {StateProcessing: true, StateIdle: true},
	StateProcessing: {StateSucceeded: true, StateFailed: true},
	StateSucceeded:  {StateIdle: true},
	StateFailed:     {StateIdle: true},
}

// CanTransition reports whether the checkout may move between the two
// states.
func (s State) CanTransition(to State) bool {
	return validStateNext[s][to]
}
