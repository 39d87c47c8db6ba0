package live

import "sync"

// Mailbox hands snapshots from a producer goroutine to a consumer that reads
// at its own pace. It holds at most one snapshot; a newer Put replaces an
// unread one and an older one is dropped.
type Mailbox struct {
	mu      sync.Mutex
	snap    Snapshot
	full    bool
	lastSeq uint64
	ready   chan struct{}
}

func NewMailbox() *Mailbox {
	return &Mailbox{ready: make(chan struct{}, 1)}
}

// Put never blocks.
func (m *Mailbox) Put(s Snapshot) {
	m.mu.Lock()
	if s.Seq != 0 && s.Seq <= m.lastSeq {
		m.mu.Unlock()
		return
	}

	m.snap = s
	m.full = true
	m.lastSeq = s.Seq
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Ready receives after a Put. Take may still report nothing when another
// reader got there first.
func (m *Mailbox) Ready() <-chan struct{} {
	return m.ready
}

func (m *Mailbox) Take() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.full {
		return Snapshot{}, false
	}

	s := m.snap
	m.snap = Snapshot{}
	m.full = false

	return s, true
}
