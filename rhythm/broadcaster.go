package rhythm

import "sync"

// Beat is one scheduled click as seen by the visual layer.
type Beat struct {
	// Count is the number of beats scheduled before this one since Start.
	Count int64 `json:"count"`
	// Index is the position inside the bar, 0..beatsPerBar-1.
	Index int `json:"index"`
	// Time is the transport time (seconds) at which the click sounds.
	Time     float64 `json:"time"`
	Tempo    float64 `json:"tempo"`
	Downbeat bool    `json:"downbeat"`
}

// Broadcaster fans out beats to any number of listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
	closed    bool
}

// Listener receives beats from the broadcaster.
type Listener struct {
	C    chan Beat
	done chan struct{}
	once sync.Once
}

// Done is closed once the listener has been unsubscribed.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

func (l *Listener) close() {
	l.once.Do(func() { close(l.done) })
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[*Listener]struct{}),
	}
}

// Subscribe registers a new listener with room for buffer pending beats.
// Subscribing to a closed broadcaster returns a listener that is already done.
func (b *Broadcaster) Subscribe(buffer int) *Listener {
	l := &Listener{
		C:    make(chan Beat, buffer),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		l.close()
		return l
	}
	b.listeners[l] = struct{}{}
	return l
}

// Unsubscribe removes a listener and signals it to stop.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	delete(b.listeners, l)
	b.mu.Unlock()
	l.close()
}

// ListenerCount returns the number of active listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Publish hands the beat to every listener. Slow listeners miss the beat
// instead of holding up the scheduler.
func (b *Broadcaster) Publish(beat Beat) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for l := range b.listeners {
		select {
		case l.C <- beat:
		default:
		}
	}
}

// Close unsubscribes every listener.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for l := range b.listeners {
		delete(b.listeners, l)
		l.close()
	}
}
