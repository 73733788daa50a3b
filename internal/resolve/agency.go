package resolve

import (
	"context"
	"fmt"

	"nextstop/internal/assistant"
	"nextstop/internal/geo"
	"nextstop/internal/transloc"
)

// AgencySource fetches the list of transit agencies.
type AgencySource interface {
	Agencies(ctx context.Context) ([]transloc.Agency, error)
}

// StoredUserAgency reads the agency persisted in user storage. A zero id
// means no agency has been resolved yet.
func StoredUserAgency(app assistant.App) Result[int64] {
	if id := app.UserData().AgencyID; id != 0 {
		return Success(id)
	}
	return Empty[int64]()
}

// SetUserAgency persists the resolved agency in user storage.
func SetUserAgency(app assistant.App, agencyID int64) {
	app.UserData().AgencyID = agencyID
}

// FindNearestAgency returns the agency closest to the given coordinates.
func FindNearestAgency(to geo.Coordinates, agencies []transloc.Agency) (transloc.Agency, bool) {
	device := geo.CoordsToPosition(to)
	return geo.LowestCost(agencies, func(a transloc.Agency) float64 {
		return geo.Distance(device, a.Position)
	})
}

// UserAgency resolves the agency the user belongs to. A stored agency wins
// without any network call; otherwise the device location is required (the
// turn may delegate into the permission flow) and the nearest agency is
// resolved and persisted.
func (r *Resolver) UserAgency(ctx context.Context, app assistant.App, src AgencySource) (Result[int64], error) {
	if stored := StoredUserAgency(app); stored.Kind == KindSuccess {
		return stored, nil
	}

	locResult, err := r.MustLocation(app, "To find the nearest transit agency")
	if err != nil {
		return Delegating[int64](), err
	}
	if locResult.Kind == KindDelegating {
		return Delegating[int64](), nil
	}

	return r.findUserAgency(ctx, app, *locResult.Value.Coordinates, src)
}

// FindAndStoreAgency resolves the nearest agency for a known location and
// persists it, without consulting stored state.
func (r *Resolver) FindAndStoreAgency(ctx context.Context, app assistant.App, coords geo.Coordinates, src AgencySource) (Result[int64], error) {
	return r.findUserAgency(ctx, app, coords, src)
}

func (r *Resolver) findUserAgency(ctx context.Context, app assistant.App, coords geo.Coordinates, src AgencySource) (Result[int64], error) {
	agencies, err := src.Agencies(ctx)
	if err != nil {
		return Delegating[int64](), fmt.Errorf("resolve agency: %w", err)
	}

	nearest, ok := FindNearestAgency(coords, agencies)
	if !ok {
		r.logger.Warn("no agencies available")
		app.Tell("I couldn't find the nearest agency.")
		return Delegating[int64](), nil
	}

	SetUserAgency(app, nearest.ID)
	r.logger.Info("resolved user agency", "agencyId", nearest.ID)
	return Success(nearest.ID), nil
}
