// Package assistant defines the capability surface the conversational
// platform offers to intent handlers, plus the Dialogflow webhook binding
// and a recording mock for tests.
package assistant

import (
	"errors"

	"nextstop/internal/geo"
)

// ErrCapabilityFailure signals that a platform capability call failed to
// acknowledge. It is fatal for the turn: silently ignoring it would leave
// the conversation stuck.
var ErrCapabilityFailure = errors.New("assistant: capability request failed")

// Permission identifies a platform permission that can be requested from the
// user.
type Permission string

// PermissionDevicePreciseLocation asks for precise device coordinates.
const PermissionDevicePreciseLocation Permission = "DEVICE_PRECISE_LOCATION"

// SurfaceCapability identifies an output capability of the active client.
type SurfaceCapability string

// CapabilityScreenOutput is present when the client can render visual
// content such as selection lists.
const CapabilityScreenOutput SurfaceCapability = "actions.capability.SCREEN_OUTPUT"

// DeviceLocation is the device position shared after a location permission
// grant. Coordinates is nil when the platform withheld precise coordinates.
type DeviceLocation struct {
	Coordinates *geo.Coordinates
	Address     string
	ZipCode     string
	City        string
}

// Context is a short-lived conversational context record. Parameters are
// JSON-compatible values decoded from the platform payload.
type Context struct {
	Name       string
	Lifespan   int
	Parameters map[string]any
}

// ListItem is one entry of a selection list. Key is an opaque string that
// round-trips verbatim through the platform when the item is picked.
type ListItem struct {
	Key         string
	Title       string
	Description string
}

// List is a titled selection list shown on screen-capable surfaces.
type List struct {
	Title string
	Items []ListItem
}

// UserData is the durable, cross-session record kept in user storage. The
// field layout must stay stable across versions.
type UserData struct {
	AgencyID int64 `json:"agency_id"`
}

// App is the capability interface through which intent handlers talk to the
// conversational platform. Implementations enforce the single-response
// contract: a second call to Tell, AskForPermission or AskWithList within
// one turn panics, since it indicates a programming error rather than a
// recoverable condition.
type App interface {
	// Argument returns the slot value with the given name, or "" when the
	// utterance did not carry it.
	Argument(name string) string

	// IsPermissionGranted reports whether the pending permission was granted
	// on this turn.
	IsPermissionGranted() bool

	// AskForPermission hands control to the platform permission flow. The
	// returned error signals a capability failure; the turn must then abort.
	AskForPermission(reason string, p Permission) error

	// DeviceLocation returns the device location, or nil when unknown.
	DeviceLocation() *DeviceLocation

	// HasSurfaceCapability reports whether the active client supports cap.
	HasSurfaceCapability(cap SurfaceCapability) bool

	// Tell emits the single spoken response for this turn and ends the
	// conversation.
	Tell(message string)

	// AskWithList emits a spoken prompt together with a selection list.
	AskWithList(prompt string, list List)

	// SelectedOption returns the key of the list option the user picked, or
	// "" when this turn is not an option continuation.
	SelectedOption() string

	// GetContext returns the named conversation context, or nil.
	GetContext(name string) *Context

	// SetContext writes a conversation context. A lifespan <= 0 uses the
	// platform default. The write is only visible on a subsequent turn.
	SetContext(name string, lifespan int, parameters map[string]any)

	// UserData returns the mutable per-user storage record. Mutations are
	// persisted by the platform binding when the turn completes.
	UserData() *UserData
}
