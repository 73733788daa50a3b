package resolve

import (
	"io"
	"log/slog"
	"testing"

	"nextstop/internal/assistant"
	"nextstop/internal/geo"
	"nextstop/internal/transloc"
)

var testStops = []transloc.Stop{
	{ID: 1, Name: "Gleason Circle", Description: "East side", Position: geo.Position{43.084466, -77.679465}},
	{ID: 2, Name: "Park Point South", Description: "South loop", Position: geo.Position{43.128830, -77.629860}},
	{ID: 3, Name: "Gleason Court", Description: "West side", Position: geo.Position{43.090000, -77.680000}},
}

var testLocation = &assistant.DeviceLocation{
	Coordinates: &geo.Coordinates{Latitude: 43.082978, Longitude: -77.677036},
	Address:     "105 Lomb Memorial Dr",
	ZipCode:     "14623",
	City:        "Rochester, NY",
}

func newResolver() *Resolver {
	return NewResolver(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFindMatchingStop(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		wantID int64
		wantOK bool
	}{
		{"exact match", "Gleason Circle", 1, true},
		{"case insensitive", "gleason circle", 1, true},
		{"whitespace trimmed", "  Gleason Circle  ", 1, true},
		{"no match", "Nonexistent Place", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop, ok := FindMatchingStop(tt.query, testStops)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && stop.ID != tt.wantID {
				t.Errorf("stop.ID = %d, want %d", stop.ID, tt.wantID)
			}
		})
	}
}

func TestFindNearestStop(t *testing.T) {
	stop, ok := FindNearestStop(*testLocation.Coordinates, testStops)
	if !ok {
		t.Fatal("no nearest stop found")
	}
	if stop.ID != 1 {
		t.Errorf("nearest stop = %q, want Gleason Circle", stop.Name)
	}
}

func TestFindNearestStop_Empty(t *testing.T) {
	if _, ok := FindNearestStop(*testLocation.Coordinates, nil); ok {
		t.Error("found a nearest stop in an empty set")
	}
}

func TestFromStop_QueryMatch(t *testing.T) {
	app := assistant.NewMockApp()
	r := newResolver()

	res, err := r.FromStop(app, "Gleason Circle", testStops)
	if err != nil {
		t.Fatalf("FromStop: %v", err)
	}
	if res.Kind != KindSuccess || res.Value.ID != 1 {
		t.Errorf("res = %+v", res)
	}
	if app.Response != nil {
		t.Errorf("unexpected platform response: %+v", app.Response)
	}
}

func TestFromStop_UnknownQueryDelegatesWithRankedList(t *testing.T) {
	app := assistant.NewMockApp()
	app.ScreenOutput = true
	r := newResolver()

	res, err := r.FromStop(app, "Nonexistent Place", testStops)
	if err != nil {
		t.Fatalf("FromStop: %v", err)
	}
	if res.Kind != KindDelegating {
		t.Fatalf("res.Kind = %v, want Delegating", res.Kind)
	}
	if app.Response == nil || app.Response.Kind != assistant.ResponseList {
		t.Fatalf("response = %+v, want list", app.Response)
	}
	if app.Response.Message != `I couldn't find a stop named "Nonexistent Place."` {
		t.Errorf("prompt = %q", app.Response.Message)
	}
	if len(app.Response.List.Items) != len(testStops) {
		t.Errorf("list has %d items, want %d", len(app.Response.List.Items), len(testStops))
	}
	// Every item key must round-trip as a "from" option.
	for _, item := range app.Response.List.Items {
		key, err := ParseOptionKey(item.Key)
		if err != nil {
			t.Fatalf("item key %q: %v", item.Key, err)
		}
		if key.Type != SlotFrom {
			t.Errorf("item key type = %q, want from", key.Type)
		}
	}
}

func TestFromStop_UnknownQueryVoiceOnlyTells(t *testing.T) {
	app := assistant.NewMockApp() // no screen capability
	r := newResolver()

	res, err := r.FromStop(app, "Nonexistent Place", testStops)
	if err != nil {
		t.Fatalf("FromStop: %v", err)
	}
	if res.Kind != KindDelegating {
		t.Fatalf("res.Kind = %v, want Delegating", res.Kind)
	}
	if app.Response == nil || app.Response.Kind != assistant.ResponseTell {
		t.Fatalf("response = %+v, want spoken rejection", app.Response)
	}
}

func TestFromStop_NoQueryNoPermissionRequestsLocation(t *testing.T) {
	app := assistant.NewMockApp()
	r := newResolver()

	res, err := r.FromStop(app, "", testStops)
	if err != nil {
		t.Fatalf("FromStop: %v", err)
	}
	if res.Kind != KindDelegating {
		t.Fatalf("res.Kind = %v, want Delegating", res.Kind)
	}
	if app.Response == nil || app.Response.Kind != assistant.ResponsePermission {
		t.Fatalf("response = %+v, want permission request", app.Response)
	}
	if app.Response.Permission != assistant.PermissionDevicePreciseLocation {
		t.Errorf("permission = %q", app.Response.Permission)
	}
}

func TestFromStop_NoQueryWithLocationPicksNearest(t *testing.T) {
	app := assistant.NewMockApp()
	app.PermissionGranted = true
	app.Location = testLocation
	r := newResolver()

	res, err := r.FromStop(app, "", testStops)
	if err != nil {
		t.Fatalf("FromStop: %v", err)
	}
	if res.Kind != KindSuccess || res.Value.ID != 1 {
		t.Errorf("res = %+v, want Gleason Circle", res)
	}
}

func TestFromStop_Idempotent(t *testing.T) {
	r := newResolver()

	run := func() Result[transloc.Stop] {
		app := assistant.NewMockApp()
		res, err := r.FromStop(app, "Gleason Circle", testStops)
		if err != nil {
			t.Fatalf("FromStop: %v", err)
		}
		return res
	}

	first, second := run(), run()
	if first != second {
		t.Errorf("resolution not idempotent: %+v vs %+v", first, second)
	}
}

func TestFromStop_OptionWinsOverQuery(t *testing.T) {
	app := assistant.NewMockApp()
	app.Option = EncodeOptionKey(OptionKey{ID: 2, Type: SlotFrom})
	r := newResolver()

	res, err := r.FromStop(app, "Gleason Circle", testStops)
	if err != nil {
		t.Fatalf("FromStop: %v", err)
	}
	if res.Kind != KindSuccess || res.Value.ID != 2 {
		t.Errorf("res = %+v, want stop 2 from option", res)
	}
}

func TestFromStop_ContextWinsOverQuery(t *testing.T) {
	app := assistant.NewMockApp()
	app.Contexts[FromStopKey] = &assistant.Context{
		Name:       FromStopKey,
		Parameters: map[string]any{"stopId": float64(2)},
	}
	r := newResolver()

	res, err := r.FromStop(app, "Gleason Circle", testStops)
	if err != nil {
		t.Fatalf("FromStop: %v", err)
	}
	if res.Kind != KindSuccess || res.Value.ID != 2 {
		t.Errorf("res = %+v, want stop 2 from context", res)
	}
}

func TestFromStop_MalformedOptionIsError(t *testing.T) {
	app := assistant.NewMockApp()
	app.Option = "{not json"
	r := newResolver()

	if _, err := r.FromStop(app, "", testStops); err == nil {
		t.Error("expected error for malformed option key")
	}
}

func TestStopByLocation_EmptyStops(t *testing.T) {
	app := assistant.NewMockApp()
	app.Location = testLocation
	r := newResolver()

	res, err := r.StopByLocation(app, nil)
	if err != nil {
		t.Fatalf("StopByLocation: %v", err)
	}
	if res.Kind != KindEmpty {
		t.Errorf("res.Kind = %v, want Empty", res.Kind)
	}
}

func TestMustLocation_CapabilityFailureIsFatal(t *testing.T) {
	app := assistant.NewMockApp()
	app.FailPermission = true
	r := newResolver()

	if _, err := r.MustLocation(app, "To find the nearest stop"); err == nil {
		t.Error("expected error when the permission request fails to acknowledge")
	}
}

func TestToStop_EmptyQueryIsTerminal(t *testing.T) {
	app := assistant.NewMockApp()
	r := newResolver()

	res, err := r.ToStop(app, "", testStops)
	if err != nil {
		t.Fatalf("ToStop: %v", err)
	}
	if res.Kind != KindEmpty {
		t.Errorf("res.Kind = %v, want Empty (no destination filter)", res.Kind)
	}
	if app.Response != nil {
		t.Errorf("unexpected response: %+v", app.Response)
	}
}

func TestStopFromOption(t *testing.T) {
	r := newResolver()

	t.Run("slot mismatch is empty", func(t *testing.T) {
		app := assistant.NewMockApp()
		res := r.StopFromOption(app, OptionKey{ID: 1, Type: SlotTo}, SlotFrom, testStops)
		if res.Kind != KindEmpty {
			t.Errorf("res.Kind = %v, want Empty", res.Kind)
		}
	})

	t.Run("dead stop id delegates with failure", func(t *testing.T) {
		app := assistant.NewMockApp()
		res := r.StopFromOption(app, OptionKey{ID: 999, Type: SlotFrom}, SlotFrom, testStops)
		if res.Kind != KindDelegating {
			t.Errorf("res.Kind = %v, want Delegating", res.Kind)
		}
		if app.Response == nil || app.Response.Message != "The selected stop couldn't be found." {
			t.Errorf("response = %+v", app.Response)
		}
	})

	t.Run("valid option succeeds", func(t *testing.T) {
		app := assistant.NewMockApp()
		res := r.StopFromOption(app, OptionKey{ID: 3, Type: SlotFrom}, SlotFrom, testStops)
		if res.Kind != KindSuccess || res.Value.ID != 3 {
			t.Errorf("res = %+v", res)
		}
	})
}

func TestStopFromContext(t *testing.T) {
	r := newResolver()

	t.Run("no context is empty", func(t *testing.T) {
		app := assistant.NewMockApp()
		res := r.StopFromContext(app, FromStopKey, testStops)
		if res.Kind != KindEmpty {
			t.Errorf("res.Kind = %v, want Empty", res.Kind)
		}
	})

	t.Run("stale stop id delegates generically", func(t *testing.T) {
		app := assistant.NewMockApp()
		app.Contexts[FromStopKey] = &assistant.Context{
			Name:       FromStopKey,
			Parameters: map[string]any{"stopId": float64(999)},
		}
		res := r.StopFromContext(app, FromStopKey, testStops)
		if res.Kind != KindDelegating {
			t.Errorf("res.Kind = %v, want Delegating", res.Kind)
		}
		if app.Response == nil || app.Response.Message != "Something went wrong." {
			t.Errorf("response = %+v", app.Response)
		}
	})

	t.Run("store then read on next turn", func(t *testing.T) {
		app := assistant.NewMockApp()
		StoreStopContext(app, FromStopKey, testStops[1])
		// The mock propagates contexts immediately, standing in for the
		// platform's turn boundary.
		res := r.StopFromContext(app, FromStopKey, testStops)
		if res.Kind != KindSuccess || res.Value.ID != 2 {
			t.Errorf("res = %+v", res)
		}
	})
}

func TestStopList_RankedByNameSimilarity(t *testing.T) {
	list := StopList(SlotFrom, "Gleason Circle", testStops)
	if list.Items[0].Title != "Gleason Circle" {
		t.Errorf("first item = %q, want closest match first", list.Items[0].Title)
	}
	if list.Items[0].Description != "East side" {
		t.Errorf("description = %q", list.Items[0].Description)
	}
}
