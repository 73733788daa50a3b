package assistant

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

// Dialogflow v1 fulfillment wire shapes. Only the fields this webhook reads
// are modeled; everything else passes through untouched.

// WebhookRequest is the inbound fulfillment payload.
type WebhookRequest struct {
	ID              string           `json:"id" validate:"required"`
	Timestamp       string           `json:"timestamp"`
	SessionID       string           `json:"sessionId" validate:"required"`
	Result          RequestResult    `json:"result"`
	OriginalRequest *OriginalRequest `json:"originalRequest"`
}

// RequestResult carries the matched action, slot parameters and the active
// conversation contexts.
type RequestResult struct {
	Action        string         `json:"action" validate:"required"`
	ResolvedQuery string         `json:"resolvedQuery"`
	Parameters    map[string]any `json:"parameters"`
	Contexts      []wireContext  `json:"contexts"`
}

// OriginalRequest wraps the Actions-on-Google request data when the call
// originates from the Google Assistant.
type OriginalRequest struct {
	Source  string  `json:"source"`
	Version string  `json:"version"`
	Data    aogData `json:"data"`
}

type aogData struct {
	User    aogUser    `json:"user"`
	Device  aogDevice  `json:"device"`
	Surface aogSurface `json:"surface"`
	Inputs  []aogInput `json:"inputs"`
}

type aogUser struct {
	UserID      string `json:"userId"`
	UserStorage string `json:"userStorage"`
}

type aogDevice struct {
	Location *DeviceLocation `json:"location"`
}

type aogSurface struct {
	Capabilities []aogCapability `json:"capabilities"`
}

type aogCapability struct {
	Name string `json:"name"`
}

type aogInput struct {
	Intent    string        `json:"intent"`
	Arguments []aogArgument `json:"arguments"`
}

type aogArgument struct {
	Name      string `json:"name"`
	TextValue string `json:"textValue"`
}

type wireContext struct {
	Name       string         `json:"name"`
	Lifespan   int            `json:"lifespan"`
	Parameters map[string]any `json:"parameters"`
}

type webhookResponse struct {
	Speech      string         `json:"speech,omitempty"`
	DisplayText string         `json:"displayText,omitempty"`
	ContextOut  []wireContext  `json:"contextOut,omitempty"`
	Data        *googlePayload `json:"data,omitempty"`
}

type googlePayload struct {
	Google googleData `json:"google"`
}

type googleData struct {
	ExpectUserResponse bool          `json:"expectUserResponse"`
	UserStorage        string        `json:"userStorage,omitempty"`
	SystemIntent       *systemIntent `json:"systemIntent,omitempty"`
}

type systemIntent struct {
	Intent string         `json:"intent"`
	Data   map[string]any `json:"data,omitempty"`
}

const (
	permissionIntent = "actions.intent.PERMISSION"
	optionIntent     = "actions.intent.OPTION"

	permissionArgument = "PERMISSION"
	optionArgument     = "OPTION"

	// Context writes without an explicit lifespan use the Dialogflow default.
	defaultContextLifespan = 5
)

var validate = validator.New()

// ParseWebhookRequest decodes and validates an inbound fulfillment request.
func ParseWebhookRequest(r io.Reader) (*WebhookRequest, error) {
	var req WebhookRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("decode webhook request: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid webhook request: %w", err)
	}
	return &req, nil
}

// Dialogflow is the App implementation backed by a Dialogflow fulfillment
// request/response pair. One Dialogflow value serves exactly one turn.
type Dialogflow struct {
	req    *WebhookRequest
	logger *slog.Logger

	user       UserData
	contexts   map[string]*Context
	contextOut []wireContext
	response   *webhookResponse
}

// NewDialogflow builds the per-turn App from a parsed request.
func NewDialogflow(req *WebhookRequest, logger *slog.Logger) *Dialogflow {
	d := &Dialogflow{
		req:      req,
		logger:   logger,
		contexts: make(map[string]*Context),
	}

	for _, c := range req.Result.Contexts {
		d.contexts[c.Name] = &Context{Name: c.Name, Lifespan: c.Lifespan, Parameters: c.Parameters}
	}

	if aog := req.OriginalRequest; aog != nil && aog.Data.User.UserStorage != "" {
		if err := json.Unmarshal([]byte(aog.Data.User.UserStorage), &d.user); err != nil {
			logger.Warn("malformed user storage, starting fresh", "error", err)
		}
	}

	return d
}

// Action returns the matched intent action name.
func (d *Dialogflow) Action() string { return d.req.Result.Action }

// UserID returns the platform user id, or "" for non-Assistant sources.
func (d *Dialogflow) UserID() string {
	if d.req.OriginalRequest == nil {
		return ""
	}
	return d.req.OriginalRequest.Data.User.UserID
}

// Responded reports whether a response has been emitted this turn.
func (d *Dialogflow) Responded() bool { return d.response != nil }

func (d *Dialogflow) Argument(name string) string {
	v, ok := d.req.Result.Parameters[name]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (d *Dialogflow) IsPermissionGranted() bool {
	return d.inputArgument(permissionArgument) == "true"
}

func (d *Dialogflow) AskForPermission(reason string, p Permission) error {
	if p != PermissionDevicePreciseLocation {
		return fmt.Errorf("%w: unsupported permission %q", ErrCapabilityFailure, p)
	}
	d.record(&webhookResponse{
		Speech: "PLACEHOLDER_FOR_PERMISSION",
		Data: &googlePayload{Google: googleData{
			ExpectUserResponse: true,
			SystemIntent: &systemIntent{
				Intent: permissionIntent,
				Data: map[string]any{
					"@type":       "type.googleapis.com/google.actions.v2.PermissionValueSpec",
					"optContext":  reason,
					"permissions": []string{string(p)},
				},
			},
		}},
	})
	return nil
}

func (d *Dialogflow) DeviceLocation() *DeviceLocation {
	if d.req.OriginalRequest == nil {
		return nil
	}
	return d.req.OriginalRequest.Data.Device.Location
}

func (d *Dialogflow) HasSurfaceCapability(cap SurfaceCapability) bool {
	if d.req.OriginalRequest == nil {
		return false
	}
	for _, c := range d.req.OriginalRequest.Data.Surface.Capabilities {
		if c.Name == string(cap) {
			return true
		}
	}
	return false
}

func (d *Dialogflow) Tell(message string) {
	d.record(&webhookResponse{
		Speech:      message,
		DisplayText: message,
		Data:        &googlePayload{Google: googleData{ExpectUserResponse: false}},
	})
}

func (d *Dialogflow) AskWithList(prompt string, list List) {
	items := make([]map[string]any, len(list.Items))
	for i, item := range list.Items {
		items[i] = map[string]any{
			"optionInfo":  map[string]any{"key": item.Key},
			"title":       item.Title,
			"description": item.Description,
		}
	}
	d.record(&webhookResponse{
		Speech: prompt,
		Data: &googlePayload{Google: googleData{
			ExpectUserResponse: true,
			SystemIntent: &systemIntent{
				Intent: optionIntent,
				Data: map[string]any{
					"@type": "type.googleapis.com/google.actions.v2.OptionValueSpec",
					"listSelect": map[string]any{
						"title": list.Title,
						"items": items,
					},
				},
			},
		}},
	})
}

func (d *Dialogflow) SelectedOption() string {
	return d.inputArgument(optionArgument)
}

func (d *Dialogflow) GetContext(name string) *Context { return d.contexts[name] }

func (d *Dialogflow) SetContext(name string, lifespan int, parameters map[string]any) {
	if lifespan <= 0 {
		lifespan = defaultContextLifespan
	}
	d.contextOut = append(d.contextOut, wireContext{Name: name, Lifespan: lifespan, Parameters: parameters})
}

func (d *Dialogflow) UserData() *UserData { return &d.user }

// MarshalResponse renders the accumulated turn response. It is an error to
// call it before any response was emitted.
func (d *Dialogflow) MarshalResponse() ([]byte, error) {
	if d.response == nil {
		return nil, fmt.Errorf("no response emitted for action %q", d.Action())
	}

	resp := *d.response
	resp.ContextOut = d.contextOut

	if resp.Data != nil {
		storage, err := json.Marshal(d.user)
		if err != nil {
			return nil, fmt.Errorf("marshal user storage: %w", err)
		}
		resp.Data.Google.UserStorage = string(storage)
	}

	return json.Marshal(&resp)
}

func (d *Dialogflow) inputArgument(name string) string {
	if d.req.OriginalRequest == nil {
		return ""
	}
	for _, input := range d.req.OriginalRequest.Data.Inputs {
		for _, arg := range input.Arguments {
			if arg.Name == name {
				return arg.TextValue
			}
		}
	}
	return ""
}

func (d *Dialogflow) record(r *webhookResponse) {
	if d.response != nil {
		panic("assistant: multiple responses in one turn")
	}
	d.response = r
}
