package assistant

// MockApp is a deterministic App implementation for tests. Inputs are seeded
// on the struct; the single emitted response is recorded instead of being
// rendered. Like the real binding, a second response panics.
type MockApp struct {
	// Inputs.
	Args              map[string]string
	PermissionGranted bool
	Location          *DeviceLocation
	Option            string
	Contexts          map[string]*Context
	ScreenOutput      bool
	User              UserData

	// FailPermission makes AskForPermission report a capability failure.
	FailPermission bool

	// Recorded output.
	Response *RecordedResponse
}

// RecordedResponse captures the one platform response of a turn.
type RecordedResponse struct {
	Kind       ResponseKind
	Message    string
	Permission Permission
	Reason     string
	List       List
}

// ResponseKind discriminates recorded responses.
type ResponseKind string

const (
	ResponseTell       ResponseKind = "tell"
	ResponsePermission ResponseKind = "ask_for_permission"
	ResponseList       ResponseKind = "ask_with_list"
)

// NewMockApp creates a mock with empty inputs.
func NewMockApp() *MockApp {
	return &MockApp{
		Args:     make(map[string]string),
		Contexts: make(map[string]*Context),
	}
}

func (m *MockApp) Argument(name string) string { return m.Args[name] }

func (m *MockApp) IsPermissionGranted() bool { return m.PermissionGranted }

func (m *MockApp) AskForPermission(reason string, p Permission) error {
	if m.FailPermission {
		return ErrCapabilityFailure
	}
	m.record(&RecordedResponse{Kind: ResponsePermission, Permission: p, Reason: reason})
	return nil
}

func (m *MockApp) DeviceLocation() *DeviceLocation { return m.Location }

func (m *MockApp) HasSurfaceCapability(cap SurfaceCapability) bool {
	return cap == CapabilityScreenOutput && m.ScreenOutput
}

func (m *MockApp) Tell(message string) {
	m.record(&RecordedResponse{Kind: ResponseTell, Message: message})
}

func (m *MockApp) AskWithList(prompt string, list List) {
	m.record(&RecordedResponse{Kind: ResponseList, Message: prompt, List: list})
}

func (m *MockApp) SelectedOption() string { return m.Option }

func (m *MockApp) GetContext(name string) *Context { return m.Contexts[name] }

func (m *MockApp) SetContext(name string, lifespan int, parameters map[string]any) {
	m.Contexts[name] = &Context{Name: name, Lifespan: lifespan, Parameters: parameters}
}

func (m *MockApp) UserData() *UserData { return &m.User }

func (m *MockApp) record(r *RecordedResponse) {
	if m.Response != nil {
		panic("assistant: multiple responses in one turn")
	}
	m.Response = r
}
