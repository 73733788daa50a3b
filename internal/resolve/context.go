package resolve

import (
	"nextstop/internal/assistant"
	"nextstop/internal/transloc"
)

// Context keys for the resolved stops of the current conversation.
const (
	FromStopKey = "from"
	ToStopKey   = "to"
)

const stopIDParam = "stopId"

// StoreStopContext records a resolved stop in conversation context so a
// platform round trip (permission grant, list selection) can recover it on
// the next turn. The write is not readable back within the same turn.
func StoreStopContext(app assistant.App, key string, stop transloc.Stop) {
	app.SetContext(key, 0, map[string]any{stopIDParam: stop.ID})
}

// StopFromContext resolves a stop previously stored under key. No context
// yields Empty; a stored id that no longer resolves against the fresh stop
// snapshot ends the turn with a generic failure.
func (r *Resolver) StopFromContext(app assistant.App, key string, stops []transloc.Stop) Result[transloc.Stop] {
	ctx := app.GetContext(key)
	if ctx == nil {
		return Empty[transloc.Stop]()
	}

	id, ok := int64Param(ctx.Parameters, stopIDParam)
	if !ok {
		r.logger.Warn("context missing stop id", "context", key)
		app.Tell("Something went wrong.")
		return Delegating[transloc.Stop]()
	}

	stop, ok := StopByID(id, stops)
	if !ok {
		r.logger.Warn("context stop no longer exists", "context", key, "stopId", id)
		app.Tell("Something went wrong.")
		return Delegating[transloc.Stop]()
	}

	return Success(stop)
}

// int64Param reads an integer parameter that may arrive as a JSON number
// (float64) or as a value set in-process.
func int64Param(params map[string]any, key string) (int64, bool) {
	switch v := params[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
