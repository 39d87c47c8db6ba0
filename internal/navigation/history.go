package navigation

import "sync"

// Location is where the current view token lives: a URL hash in a browser,
// a History in the terminal client.
type Location interface {
	Current() string
	Push(token string)
	// Back returns to the previous token. It is a no-op at the root.
	Back()
	Subscribe(fn func(token string)) (cancel func())
}

// History is an in-memory token stack. The root token is "".
type History struct {
	mu     sync.Mutex
	stack  []string
	subs   map[int]func(string)
	nextID int
}

func NewHistory() *History {
	return &History{
		stack: []string{""},
		subs:  make(map[int]func(string)),
	}
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.stack[len(h.stack)-1]
}

// Depth is the number of tokens above the root.
func (h *History) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.stack) - 1
}

// Push makes token current. Pushing the current token again does nothing.
func (h *History) Push(token string) {
	h.mu.Lock()
	if h.stack[len(h.stack)-1] == token {
		h.mu.Unlock()
		return
	}

	h.stack = append(h.stack, token)
	fns := h.listenersLocked()
	h.mu.Unlock()

	notify(fns, token)
}

func (h *History) Back() {
	h.mu.Lock()
	if len(h.stack) == 1 {
		h.mu.Unlock()
		return
	}

	h.stack = h.stack[:len(h.stack)-1]
	token := h.stack[len(h.stack)-1]
	fns := h.listenersLocked()
	h.mu.Unlock()

	notify(fns, token)
}

func (h *History) Subscribe(fn func(token string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		delete(h.subs, id)
	}
}

func (h *History) listenersLocked() []func(string) {
	fns := make([]func(string), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}

	return fns
}

func notify(fns []func(string), token string) {
	for _, fn := range fns {
		fn(token)
	}
}
