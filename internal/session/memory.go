package session

const defaultFlashKey = "_flash"

// MemoryValues is a process-local Values implementation for tests and tools.
type MemoryValues struct {
	data        map[interface{}]interface{}
	Saves       int
	Generations int
}

func NewMemoryValues() *MemoryValues {
	return &MemoryValues{data: make(map[interface{}]interface{})}
}

func (m *MemoryValues) Get(key interface{}) interface{} {
	return m.data[key]
}

func (m *MemoryValues) Set(key interface{}, val interface{}) {
	m.data[key] = val
}

func (m *MemoryValues) Delete(key interface{}) {
	delete(m.data, key)
}

func (m *MemoryValues) Clear() {
	for key := range m.data {
		delete(m.data, key)
	}
}

func (m *MemoryValues) AddFlash(value interface{}, vars ...string) {
	key := defaultFlashKey
	if len(vars) > 0 {
		key = vars[0]
	}
	flashes, _ := m.data[key].([]interface{})
	m.data[key] = append(flashes, value)
}

func (m *MemoryValues) Flashes(vars ...string) []interface{} {
	key := defaultFlashKey
	if len(vars) > 0 {
		key = vars[0]
	}
	flashes, _ := m.data[key].([]interface{})
	delete(m.data, key)
	return flashes
}

func (m *MemoryValues) Save() error {
	m.Saves++
	return nil
}

// Regenerate counts the id changes a real store would perform.
func (m *MemoryValues) Regenerate() error {
	m.Clear()
	m.Generations++
	return nil
}
