package intents

import (
	"context"
	"fmt"

	"nextstop/internal/assistant"
	"nextstop/internal/resolve"
	"nextstop/internal/transloc"
)

// NextBusOption handles the continuation turn after a disambiguation list
// selection. The picked option resolves one slot; the other comes from
// context or the forwarded query.
func (s *Service) NextBusOption(ctx context.Context, app assistant.App) error {
	s.logger.Info("handling next bus option intent")

	resolver := resolve.NewResolver(s.logger)

	opt, ok, err := resolve.SelectedOptionKey(app)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("option continuation without a selected option")
	}

	agencyRes := resolve.Must(app, resolve.StoredUserAgency(app),
		"Sorry, but I don't know which agency you belong to. Please try again later.",
		"missing stored agency", s.logger)
	if agencyRes.Kind != resolve.KindSuccess {
		return nil
	}
	agencies := []int64{agencyRes.Value}

	stops, topology, err := s.src.Stops(ctx, agencies, true)
	if err != nil {
		return err
	}

	fromRes := resolver.FromStopResumed(app, opt, stops)
	if fromRes.Kind != resolve.KindSuccess {
		return nil
	}
	fromStop := fromRes.Value
	resolve.StoreStopContext(app, resolve.FromStopKey, fromStop)

	toRes, err := resolver.ToStop(app, argOrForwarded(app, ToArgument), stops)
	if err != nil {
		return err
	}
	if toRes.Kind == resolve.KindDelegating {
		return nil
	}

	var toStop *transloc.Stop
	if toRes.Kind == resolve.KindSuccess {
		v := toRes.Value
		toStop = &v
	}

	return s.showArrivals(ctx, app, agencies, fromStop, toStop, topology)
}
