package resolve

import (
	"log/slog"

	"nextstop/internal/assistant"
)

// Kind discriminates the outcomes of a resolution attempt.
type Kind int

const (
	// KindEmpty means no value could be determined and no platform action
	// was taken; the caller decides what happens next.
	KindEmpty Kind = iota

	// KindSuccess carries a resolved value.
	KindSuccess

	// KindDelegating means control was handed to the platform (permission
	// prompt, selection list) and the turn must end without further output.
	KindDelegating
)

// Result is the outcome of one resolution call. Exactly one of the three
// kinds is produced per call; once a Delegating result travels up the call
// chain no further platform output may be emitted this turn.
type Result[T any] struct {
	Kind  Kind
	Value T
}

// Success wraps a resolved value.
func Success[T any](v T) Result[T] {
	return Result[T]{Kind: KindSuccess, Value: v}
}

// Delegating marks the turn as handed over to the platform.
func Delegating[T any]() Result[T] {
	return Result[T]{Kind: KindDelegating}
}

// Empty marks the absence of a value.
func Empty[T any]() Result[T] {
	return Result[T]{Kind: KindEmpty}
}

// Must upgrades an Empty result into a spoken failure plus Delegating, for
// call sites where a value is required to continue.
func Must[T any](app assistant.App, r Result[T], message, logMessage string, logger *slog.Logger) Result[T] {
	if r.Kind == KindEmpty {
		app.Tell(message)
		logger.Warn(logMessage)
		return Delegating[T]()
	}
	return r
}
