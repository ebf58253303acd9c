package spray

import "sync"

// History is a Navigator that remembers every path it was sent to. The most
// recent path is the current location.
type History struct {
	mu    sync.Mutex
	paths []string
}

// Navigate records path as the current location.
func (h *History) Navigate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, path)
}

// Current returns the latest path, or "" before any navigation.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.paths) == 0 {
		return ""
	}
	return h.paths[len(h.paths)-1]
}

// Paths returns every recorded path in navigation order.
func (h *History) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}
