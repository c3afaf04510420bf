package event

import "time"

// CallState is a point-in-time snapshot of one call leg group.
//
// LinkedID groups every leg of the same call and is required on every
// snapshot. Disposition transitions are owned by the upstream producer;
// see CanTransition for the legal moves.
type CallState struct {
	LinkedID       string      `json:"linked_id"`
	Direction      Direction   `json:"direction"`
	OtherParty     string      `json:"other_party"`
	AgentExtension string      `json:"agent_extension"`
	StartedAt      time.Time   `json:"started_at"`
	Disposition    Disposition `json:"disposition"`
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Disposition string

const (
	DispositionRinging   Disposition = "ringing"
	DispositionAnswered  Disposition = "answered"
	DispositionCompleted Disposition = "completed"
	DispositionFailed    Disposition = "failed"
)

// IsTerminal reports whether a disposition ends the call lifecycle.
func (d Disposition) IsTerminal() bool {
	return d == DispositionCompleted || d == DispositionFailed
}

func (d Disposition) valid() bool {
	switch d {
	case DispositionRinging, DispositionAnswered, DispositionCompleted, DispositionFailed:
		return true
	default:
		return false
	}
}

func (d Direction) valid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// CanTransition reports whether moving a call from one disposition to
// another is legal:
//
//	ringing  -> answered | failed
//	answered -> completed | failed
//
// Any non-terminal state may fail on abnormal termination. Terminal
// states never transition out.
func CanTransition(from, to Disposition) bool {
	if from.IsTerminal() {
		return false
	}
	if to == DispositionFailed {
		return true
	}
	switch from {
	case DispositionRinging:
		return to == DispositionAnswered
	case DispositionAnswered:
		return to == DispositionCompleted
	default:
		return false
	}
}

func (s CallState) validate() error {
	if s.LinkedID == "" {
		return invalidf("call state: linked_id is required")
	}
	if !s.Direction.valid() {
		return invalidf("call state: unknown direction %q", s.Direction)
	}
	if !s.Disposition.valid() {
		return invalidf("call state: unknown disposition %q", s.Disposition)
	}
	return nil
}
