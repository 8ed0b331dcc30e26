package matcher

import (
	"fmt"
	"net"
	"sync"
)

// Matcher rewrites node endpoints, used to reach nodes by local addresses during development.
type Matcher struct {
	v  map[string]string
	mx sync.RWMutex
}

// Match returns replacement for endpoint in form host:port.
// Exact endpoint mapping wins, a host-only mapping keeps the original port.
func (m *Matcher) Match(endpoint string) (string, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()
	if v, ok := m.v[endpoint]; ok {
		return v, nil
	}
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		return "", fmt.Errorf("not found")
	}
	if v, ok := m.v[host]; ok {
		return net.JoinHostPort(v, port), nil
	}
	return "", fmt.Errorf("not found")
}

// Set adds or replaces mapping.
func (m *Matcher) Set(from, to string) {
	m.mx.Lock()
	defer m.mx.Unlock()
	if m.v == nil {
		m.v = make(map[string]string)
	}
	m.v[from] = to
}

// NewMatcher creates a new Matcher with the provided key-value map.
func NewMatcher(m map[string]string) *Matcher {
	return &Matcher{v: m}
}
