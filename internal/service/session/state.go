package session

import (
	"fmt"
	"slices"

	"github.com/sandevgo/docchat/internal/core"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingCondensation
	PhaseAwaitingRetrieval
	PhaseStreaming
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingCondensation:
		return "awaiting_condensation"
	case PhaseAwaitingRetrieval:
		return "awaiting_retrieval"
	case PhaseStreaming:
		return "streaming"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := PhaseIdle; candidate <= PhaseFailed; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// State is the conversation state of one chat. Reduce never mutates its input.
type State struct {
	Phase    Phase            `json:"phase"`
	Messages []core.Message   `json:"messages"`
	History  core.ChatHistory `json:"history"`
	// Pending is the assistant reply being streamed, nil outside PhaseStreaming.
	Pending *core.Message `json:"pending,omitempty"`

	Question   string             `json:"question,omitempty"`
	Standalone string             `json:"standalone,omitempty"`
	Sources    []core.ScoredChunk `json:"sources,omitempty"`
	LastError  string             `json:"last_error,omitempty"`
}

// Typing reports whether an answer is arriving token by token.
func (s State) Typing() bool {
	return s.Phase == PhaseStreaming
}

// LastAnswer returns the most recent settled assistant message.
func (s State) LastAnswer() (core.Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == core.RoleAssistant {
			return s.Messages[i], true
		}
	}
	return core.Message{}, false
}

type Event interface {
	event()
}

type (
	Submit         struct{ Question string }
	Condensed      struct{ Standalone string }
	Retrieved      struct{ Chunks []core.ScoredChunk }
	Token          struct{ Text string }
	StreamComplete struct{}
	Fail           struct{ Err error }
	Acknowledge    struct{}
)

func (Submit) event()         {}
func (Condensed) event()      {}
func (Retrieved) event()      {}
func (Token) event()          {}
func (StreamComplete) event() {}
func (Fail) event()           {}
func (Acknowledge) event()    {}

// Reduce applies ev to s. On error the returned state equals s.
func Reduce(s State, ev Event) (State, error) {
	switch ev := ev.(type) {
	case Submit:
		if s.Phase != PhaseIdle {
			return s, fmt.Errorf("%w: session is %s", core.ErrTurnInProgress, s.Phase)
		}
		s.Messages = append(slices.Clip(s.Messages), core.Message{Role: core.RoleUser, Text: ev.Question})
		s.Question = ev.Question
		s.Standalone = ""
		s.Sources = nil
		s.LastError = ""
		s.Phase = PhaseAwaitingCondensation
		return s, nil

	case Condensed:
		if s.Phase != PhaseAwaitingCondensation {
			return s, invalid(s, ev)
		}
		s.Standalone = ev.Standalone
		s.Phase = PhaseAwaitingRetrieval
		return s, nil

	case Retrieved:
		if s.Phase != PhaseAwaitingRetrieval {
			return s, invalid(s, ev)
		}
		s.Sources = slices.Clone(ev.Chunks)
		s.Pending = &core.Message{Role: core.RoleAssistant, Sources: s.Sources}
		s.Phase = PhaseStreaming
		return s, nil

	case Token:
		if s.Phase != PhaseStreaming {
			return s, invalid(s, ev)
		}
		pending := *s.Pending
		pending.Text += ev.Text
		s.Pending = &pending
		return s, nil

	case StreamComplete:
		if s.Phase != PhaseStreaming {
			return s, invalid(s, ev)
		}
		s.Messages = append(slices.Clip(s.Messages), *s.Pending)
		s.History = append(slices.Clip(s.History), core.Exchange{Question: s.Question, Answer: s.Pending.Text})
		s.Pending = nil
		s.Question = ""
		s.Phase = PhaseIdle
		return s, nil

	case Fail:
		if s.Phase == PhaseIdle || s.Phase == PhaseFailed {
			return s, invalid(s, ev)
		}
		s.Pending = nil
		if ev.Err != nil {
			s.LastError = ev.Err.Error()
		}
		s.Phase = PhaseFailed
		return s, nil

	case Acknowledge:
		if s.Phase != PhaseFailed {
			return s, invalid(s, ev)
		}
		s.Question = ""
		s.Standalone = ""
		s.Sources = nil
		s.Phase = PhaseIdle
		return s, nil

	default:
		return s, fmt.Errorf("%w: unknown event %T", core.ErrInvalidTransition, ev)
	}
}

func invalid(s State, ev Event) error {
	return fmt.Errorf("%w: %T while %s", core.ErrInvalidTransition, ev, s.Phase)
}
