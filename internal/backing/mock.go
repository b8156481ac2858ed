package backing

// MockBackend is a Memory backend with injectable failures for tests.
type MockBackend struct {
	*Memory

	// Error fields, keyed by storage key, for testing error conditions.
	GetErrors    map[string]error
	SetErrors    map[string]error
	DeleteErrors map[string]error
	// SetError, when non-nil, fails every Set.
	SetError error

	SetCalls []string
	Closed   bool
}

// NewMockBackend returns an empty MockBackend without capacity limit.
func NewMockBackend() *MockBackend {
	return &MockBackend{Memory: NewMemory(0)}
}

// Get returns the injected error for key, if any.
func (m *MockBackend) Get(key string) ([]byte, bool, error) {
	if err := m.GetErrors[key]; err != nil {
		return nil, false, err
	}
	return m.Memory.Get(key)
}

// Set records the call and returns the injected error, if any.
func (m *MockBackend) Set(key string, value []byte) error {
	m.SetCalls = append(m.SetCalls, key)
	if m.SetError != nil {
		return m.SetError
	}
	if err := m.SetErrors[key]; err != nil {
		return err
	}
	return m.Memory.Set(key, value)
}

// Delete returns the injected error for key, if any.
func (m *MockBackend) Delete(key string) error {
	if err := m.DeleteErrors[key]; err != nil {
		return err
	}
	return m.Memory.Delete(key)
}

// Close marks the backend closed.
func (m *MockBackend) Close() error {
	m.Closed = true
	return nil
}

// ResetCalls forgets recorded Set calls.
func (m *MockBackend) ResetCalls() {
	m.SetCalls = nil
}
