package linse

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used to classify failures with errors.Is.
var (
	// ErrInvalidInput marks malformed caller input (empty or multi-word strings).
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnresolved marks a classification call where no token could be resolved.
	ErrUnresolved = errors.New("unresolved sequence")
	// ErrModelLoad marks malformed or inconsistent model data.
	ErrModelLoad = errors.New("model load")
	// ErrUnknownModel is returned when a model name is not registered in the store.
	ErrUnknownModel = errors.New("unknown model")
	// ErrUnknownColumn is returned when a conversion column does not exist.
	ErrUnknownColumn = errors.New("unknown column")
)

// InvalidInputError reports a word that cannot be segmented.
type InvalidInputError struct {
	// Input is the offending string.
	Input string
	// Reason is a short description of what is wrong with it.
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Input)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// UnresolvedSequenceError reports that every token of a sequence resolved to
// the Replacement sentinel.
type UnresolvedSequenceError struct {
	// Model is the name of the sound-class model used for the lookup.
	Model string
	// Tokens is the sequence that could not be resolved.
	Tokens []string
}

func (e *UnresolvedSequenceError) Error() string {
	return fmt.Sprintf("sequence contains only unknown characters for model %q: %s",
		e.Model, strings.Join(e.Tokens, " "))
}

func (e *UnresolvedSequenceError) Unwrap() error { return ErrUnresolved }

// ModelLoadError reports malformed model data found while loading the store.
type ModelLoadError struct {
	// Path is the file that was being read, relative to the data root.
	Path string
	// Line is the 1-based line number, 0 when not applicable.
	Line int
	// Msg describes the problem.
	Msg string
	// Err is the underlying error, if any.
	Err error
}

func (e *ModelLoadError) Error() string {
	var b strings.Builder
	b.WriteString("load ")
	b.WriteString(e.Path)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both ErrModelLoad and the underlying cause.
func (e *ModelLoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrModelLoad}
	}
	return []error{ErrModelLoad, e.Err}
}

// ProsodyError is returned when the prosody state machine meets a sonority
// configuration none of its branches covers.
type ProsodyError struct {
	// Triple holds the previous, current and next sonority ranks.
	Triple [3]int
	// Sonority is the full bracketed profile.
	Sonority []int
	// Partial is the role sequence assigned so far.
	Partial []string
}

func (e *ProsodyError) Error() string {
	return fmt.Sprintf("prosodic string conversion failed at %v: profile %v, roles so far %v",
		e.Triple, e.Sonority, e.Partial)
}

// Kind returns a short, stable label classifying err, suitable for reports
// and API responses.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnresolved):
		return "unresolved"
	case errors.Is(err, ErrUnknownModel):
		return "unknown_model"
	case errors.Is(err, ErrUnknownColumn):
		return "unknown_column"
	case errors.Is(err, ErrModelLoad):
		return "model_load"
	}
	var pe *ProsodyError
	if errors.As(err, &pe) {
		return "prosody"
	}
	return "internal"
}
