package backing

import "sort"

// Memory keeps values in a map. It is what tests and --storage memory use.
type Memory struct {
	data     map[string][]byte
	capacity int64
}

// NewMemory returns an empty Memory backend limited to capacity bytes (0 = unlimited).
func NewMemory(capacity int64) *Memory {
	return &Memory{data: make(map[string][]byte), capacity: capacity}
}

// Get implements Backend.
func (m *Memory) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements Backend.
func (m *Memory) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if m.capacity > 0 {
		used := m.used() - int64(len(m.data[key]))
		if used+int64(len(value)) > m.capacity {
			return quotaError(key, used, int64(len(value)), m.capacity)
		}
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Delete implements Backend.
func (m *Memory) Delete(key string) error {
	delete(m.data, key)
	return nil
}

// Keys implements Backend.
func (m *Memory) Keys() ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Backend.
func (m *Memory) Close() error {
	return nil
}

// SetCapacity changes the byte limit; tests use it to simulate a full store.
func (m *Memory) SetCapacity(capacity int64) {
	m.capacity = capacity
}

func (m *Memory) used() int64 {
	var total int64
	for _, v := range m.data {
		total += int64(len(v))
	}
	return total
}
