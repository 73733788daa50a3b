package assistant

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

const sampleRequest = `{
	"id": "req-1",
	"timestamp": "2018-03-10T10:00:00Z",
	"sessionId": "session-1",
	"result": {
		"action": "bus.next",
		"resolvedQuery": "when is the next bus",
		"parameters": {"from": "Gleason Circle", "to": ""},
		"contexts": [
			{"name": "from", "lifespan": 4, "parameters": {"stopId": 12}}
		]
	},
	"originalRequest": {
		"source": "google",
		"version": "2",
		"data": {
			"user": {"userId": "user-1", "userStorage": "{\"agency_id\":643}"},
			"device": {"location": {"coordinates": {"latitude": 43.08, "longitude": -77.67}}},
			"surface": {"capabilities": [{"name": "actions.capability.SCREEN_OUTPUT"}]},
			"inputs": [
				{"intent": "actions.intent.OPTION", "arguments": [
					{"name": "OPTION", "textValue": "{\"id\":12,\"type\":\"from\"}"},
					{"name": "PERMISSION", "textValue": "true"}
				]}
			]
		}
	}
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parse(t *testing.T, body string) *Dialogflow {
	t.Helper()
	req, err := ParseWebhookRequest(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseWebhookRequest: %v", err)
	}
	return NewDialogflow(req, testLogger())
}

func TestParseWebhookRequest_RejectsMissingAction(t *testing.T) {
	body := `{"id": "x", "sessionId": "y", "result": {"resolvedQuery": "hi"}}`
	if _, err := ParseWebhookRequest(strings.NewReader(body)); err == nil {
		t.Error("expected validation error for missing action")
	}
}

func TestDialogflow_ReadsRequestFields(t *testing.T) {
	d := parse(t, sampleRequest)

	if got := d.Action(); got != "bus.next" {
		t.Errorf("Action() = %q", got)
	}
	if got := d.UserID(); got != "user-1" {
		t.Errorf("UserID() = %q", got)
	}
	if got := d.Argument("from"); got != "Gleason Circle" {
		t.Errorf("Argument(from) = %q", got)
	}
	if got := d.Argument("to"); got != "" {
		t.Errorf("Argument(to) = %q, want empty", got)
	}
	if !d.IsPermissionGranted() {
		t.Error("IsPermissionGranted() = false")
	}
	if got := d.SelectedOption(); got != `{"id":12,"type":"from"}` {
		t.Errorf("SelectedOption() = %q", got)
	}
	if !d.HasSurfaceCapability(CapabilityScreenOutput) {
		t.Error("HasSurfaceCapability(screen) = false")
	}
	if loc := d.DeviceLocation(); loc == nil || loc.Coordinates == nil || loc.Coordinates.Latitude != 43.08 {
		t.Errorf("DeviceLocation() = %+v", loc)
	}
	if got := d.UserData().AgencyID; got != 643 {
		t.Errorf("UserData().AgencyID = %d", got)
	}
	ctx := d.GetContext("from")
	if ctx == nil || ctx.Parameters["stopId"] != float64(12) {
		t.Errorf("GetContext(from) = %+v", ctx)
	}
}

func TestDialogflow_TellRendersFinalResponse(t *testing.T) {
	d := parse(t, sampleRequest)
	d.UserData().AgencyID = 99
	d.SetContext("from", 0, map[string]any{"stopId": 7})
	d.Tell("The next bus is soon.")

	raw, err := d.MarshalResponse()
	if err != nil {
		t.Fatalf("MarshalResponse: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["speech"] != "The next bus is soon." {
		t.Errorf("speech = %v", resp["speech"])
	}

	google := resp["data"].(map[string]any)["google"].(map[string]any)
	if google["expectUserResponse"] != false {
		t.Error("expectUserResponse should be false after Tell")
	}
	if got := google["userStorage"].(string); got != `{"agency_id":99}` {
		t.Errorf("userStorage = %q", got)
	}

	contexts := resp["contextOut"].([]any)
	if len(contexts) != 1 {
		t.Fatalf("contextOut = %v", contexts)
	}
	first := contexts[0].(map[string]any)
	if first["name"] != "from" || first["lifespan"] != float64(defaultContextLifespan) {
		t.Errorf("contextOut[0] = %v", first)
	}
}

func TestDialogflow_AskForPermissionRendersSystemIntent(t *testing.T) {
	d := parse(t, sampleRequest)
	if err := d.AskForPermission("To find the nearest stop", PermissionDevicePreciseLocation); err != nil {
		t.Fatalf("AskForPermission: %v", err)
	}

	raw, err := d.MarshalResponse()
	if err != nil {
		t.Fatalf("MarshalResponse: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	google := resp["data"].(map[string]any)["google"].(map[string]any)
	si := google["systemIntent"].(map[string]any)
	if si["intent"] != permissionIntent {
		t.Errorf("systemIntent = %v", si["intent"])
	}
}

func TestDialogflow_UnsupportedPermissionIsCapabilityFailure(t *testing.T) {
	d := parse(t, sampleRequest)
	if err := d.AskForPermission("reason", Permission("NAME")); err == nil {
		t.Error("expected capability failure for unsupported permission")
	}
	if d.Responded() {
		t.Error("failed permission request must not count as a response")
	}
}

func TestDialogflow_SecondResponsePanics(t *testing.T) {
	d := parse(t, sampleRequest)
	d.Tell("first")

	defer func() {
		if recover() == nil {
			t.Error("second Tell did not panic")
		}
	}()
	d.Tell("second")
}

func TestDialogflow_MarshalWithoutResponseIsError(t *testing.T) {
	d := parse(t, sampleRequest)
	if _, err := d.MarshalResponse(); err == nil {
		t.Error("MarshalResponse succeeded with no response emitted")
	}
}

func TestMockApp_RecordsSingleResponse(t *testing.T) {
	m := NewMockApp()
	m.Tell("hello")
	if m.Response == nil || m.Response.Kind != ResponseTell || m.Response.Message != "hello" {
		t.Errorf("Response = %+v", m.Response)
	}

	defer func() {
		if recover() == nil {
			t.Error("second response did not panic")
		}
	}()
	m.AskWithList("prompt", List{})
}
