package intents

import (
	"context"
	"fmt"

	"nextstop/internal/assistant"
)

// HelperContextName is the context carrying forwarded handler arguments
// across a platform-mediated round trip (permission grant, list selection).
const HelperContextName = "helper.context"

const (
	handlerParam      = "handler"
	originalArgsParam = "originalArguments"
	helperCtxLifespan = 1
)

// RecordContext stores the target handler and its original arguments before
// control is handed to a platform helper. The continuation turn reads them
// back through the platform's context propagation.
func RecordContext(app assistant.App, handler string, args map[string]any) {
	app.SetContext(HelperContextName, helperCtxLifespan, map[string]any{
		handlerParam:      handler,
		originalArgsParam: args,
	})
}

// forwardedArguments returns the arguments recorded before a helper
// hand-off, or nil when this turn is not a continuation.
func forwardedArguments(app assistant.App) map[string]any {
	c := app.GetContext(HelperContextName)
	if c == nil {
		return nil
	}
	args, _ := c.Parameters[originalArgsParam].(map[string]any)
	return args
}

// argOrForwarded reads a slot from the utterance, falling back to the
// arguments forwarded across a helper round trip.
func argOrForwarded(app assistant.App, name string) string {
	if v := app.Argument(name); v != "" {
		return v
	}
	if args := forwardedArguments(app); args != nil {
		v, _ := args[name].(string)
		return v
	}
	return ""
}

// recordDelegation forwards the current slot arguments so the continuation
// turn can resume the flow where it left off.
func recordDelegation(app assistant.App, handler, from, to string) {
	args := make(map[string]any)
	if from != "" {
		args[FromArgument] = from
	}
	if to != "" {
		args[ToArgument] = to
	}
	RecordContext(app, handler, args)
}

// HelperResponse handles the platform's generic helper-response intent: it
// looks up the recorded handler and forwards the turn to it.
func (s *Service) HelperResponse(ctx context.Context, app assistant.App) error {
	c := app.GetContext(HelperContextName)
	if c == nil {
		return fmt.Errorf("helper response without forwarded context")
	}

	handler, _ := c.Parameters[handlerParam].(string)
	if handler == "" || handler == HelperResponseIntent {
		return fmt.Errorf("helper context names no usable handler: %q", handler)
	}

	s.logger.Info("forwarding helper response", "handler", handler)
	return s.Handle(ctx, app, handler)
}
