package live

import (
	"context"
	"sync"
)

// Session reports the signed-in user. An empty id means signed out.
type Session interface {
	Current() (string, bool)
	OnChange(fn func(userID string)) (cancel func())
}

// Watcher keeps exactly one feed subscription open for whoever is signed in.
type Watcher struct {
	feed    *Feed
	session Session
	deliver func(Snapshot)

	mu          sync.Mutex
	ctx         context.Context
	gen         uint64
	owner       string
	unsubscribe func()
	stopSession func()

	// deliverMu orders deliveries so a stale snapshot cannot land after a
	// newer one.
	deliverMu sync.Mutex
}

func NewWatcher(feed *Feed, session Session, deliver func(Snapshot)) *Watcher {
	return &Watcher{feed: feed, session: session, deliver: deliver}
}

// Start binds the current user and follows session changes until Stop or
// until ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	stop := w.session.OnChange(w.bind)

	w.mu.Lock()
	w.stopSession = stop
	w.mu.Unlock()

	user, _ := w.session.Current()
	w.bind(user)
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopSession != nil {
		w.stopSession()
		w.stopSession = nil
	}

	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}

	w.gen++
}

// Owner is the user the current subscription belongs to.
func (w *Watcher) Owner() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.owner
}

func (w *Watcher) bind(user string) {
	w.mu.Lock()
	if user == w.owner && w.unsubscribe != nil {
		w.mu.Unlock()
		return
	}

	// The previous subscription goes away before the next one exists.
	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}

	w.gen++
	gen := w.gen
	w.owner = user
	ctx := w.ctx
	w.mu.Unlock()

	if user == "" {
		w.deliverMu.Lock()
		w.deliver(Snapshot{Seq: nextSeq()})
		w.deliverMu.Unlock()

		return
	}

	unsubscribe := w.feed.Subscribe(ctx, user, func(s Snapshot) {
		w.deliverMu.Lock()
		defer w.deliverMu.Unlock()

		if !w.current(gen) {
			return
		}

		w.deliver(s)
	})

	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.gen {
		unsubscribe()
		return
	}

	w.unsubscribe = unsubscribe
}

func (w *Watcher) current(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return gen == w.gen
}
