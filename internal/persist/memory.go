package persist

// MemoryKV is a KV held in process memory. It backs --ephemeral runs and tests.
type MemoryKV struct {
	values map[string]string
	// Err, when set, is returned by every Set call
	Err error
	// Writes counts successful Set calls
	Writes int
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get returns the value stored under key
func (m *MemoryKV) Get(key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

// Set overwrites the value stored under key
func (m *MemoryKV) Set(key, value string) error {
	if m.Err != nil {
		return m.Err
	}
	m.values[key] = value
	m.Writes++
	return nil
}
