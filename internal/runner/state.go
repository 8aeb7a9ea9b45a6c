package runner

import (
	"errors"
	"fmt"
)

// State is a step of the reconciliation pipeline. States only move forward.
type State int

const (
	Received State = iota
	ConfigLoaded
	ConfigTopologyAnswered
	GraphBuilt
	ImageTopologyRequested
	ImageTopologyAnswered
	Filtered
	Compared
	Reported
	Failed
)

var stateNames = [...]string{
	Received:               "Received",
	ConfigLoaded:           "ConfigLoaded",
	ConfigTopologyAnswered: "ConfigTopologyAnswered",
	GraphBuilt:             "GraphBuilt",
	ImageTopologyRequested: "ImageTopologyRequested",
	ImageTopologyAnswered:  "ImageTopologyAnswered",
	Filtered:               "Filtered",
	Compared:               "Compared",
	Reported:               "Reported",
	Failed:                 "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == Reported || s == Failed
}

// Kind classifies why a run failed.
type Kind int

const (
	KindInputFormat Kind = iota + 1
	KindOracleUnavailable
	KindAnswerExtraction
	KindAnswerParse
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindInputFormat:
		return "input format error"
	case KindOracleUnavailable:
		return "oracle unavailable"
	case KindAnswerExtraction:
		return "answer extraction error"
	case KindAnswerParse:
		return "answer parse error"
	case KindRender:
		return "render error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// StageError is the single error a failed run surfaces. State is the state
// the run was in when the step failed.
type StageError struct {
	State State
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s while %s: %v", e.Kind, describe(e.State), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, or 0 when err is not a
// StageError.
func KindOf(err error) Kind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func describe(s State) string {
	switch s {
	case Received:
		return "reading the configuration document"
	case ConfigLoaded:
		return "asking for the configuration topology"
	case ConfigTopologyAnswered:
		return "reading the configuration topology"
	case GraphBuilt:
		return "rendering the topology"
	case ImageTopologyRequested:
		return "asking for the diagram topology"
	case ImageTopologyAnswered:
		return "reading the diagram topology"
	default:
		return "in state " + s.String()
	}
}
