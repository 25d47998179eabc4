// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"
)

// timerEntry is one pending timer. Firing order across entries follows
// deadline order; equal deadlines fire in schedule order (seq).
type timerEntry struct {
	id       uint64
	deadline time.Time
	seq      uint64
	period   time.Duration // >0 re-arms after each fire
	fire     func()

	// cancelled resolves the cancel/fire race: it is checked when the
	// deadline elapses and again when the re-injected job executes, so a
	// cancelled timer never runs its callback.
	cancelled atomic.Bool

	index int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// timerSet schedules deferred re-entry into a worker's runtime. Fired
// timers are re-injected as thunk jobs onto the worker's own inbox, so
// callbacks execute under the same sequential guarantee as actions.
type timerSet struct {
	w *Worker

	mu      sync.Mutex
	heap    timerHeap
	byID    map[uint64]*timerEntry
	nextID  uint64
	nextSeq uint64

	wake     chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

func newTimerSet(w *Worker) *timerSet {
	return &timerSet{
		w:      w,
		byID:   make(map[uint64]*timerEntry),
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (ts *timerSet) start() {
	if ts.started.CompareAndSwap(false, true) {
		go ts.run()
	}
}

// schedule registers a timer and returns its handle id.
func (ts *timerSet) schedule(delay time.Duration, repeat bool, fire func()) uint64 {
	ts.mu.Lock()
	ts.nextID++
	ts.nextSeq++
	e := &timerEntry{
		id:       ts.nextID,
		deadline: time.Now().Add(delay),
		seq:      ts.nextSeq,
		fire:     fire,
	}
	if repeat {
		e.period = delay
	}
	heap.Push(&ts.heap, e)
	ts.byID[e.id] = e
	id := e.id
	ts.mu.Unlock()

	ts.poke()
	return id
}

// cancel marks a timer as cancelled. The entry is removed lazily; if its
// job was already enqueued it executes as a skip.
func (ts *timerSet) cancel(id uint64) bool {
	ts.mu.Lock()
	e, ok := ts.byID[id]
	if ok {
		e.cancelled.Store(true)
		delete(ts.byID, id)
	}
	ts.mu.Unlock()
	return ok
}

func (ts *timerSet) stop() {
	ts.stopOnce.Do(func() { close(ts.stopCh) })
	if ts.started.Load() {
		<-ts.doneCh
	}
}

func (ts *timerSet) poke() {
	select {
	case ts.wake <- struct{}{}:
	default:
	}
}

func (ts *timerSet) run() {
	defer close(ts.doneCh)

	for {
		ts.mu.Lock()
		now := time.Now()
		var due []*timerEntry
		for len(ts.heap) > 0 && !ts.heap[0].deadline.After(now) {
			e := heap.Pop(&ts.heap).(*timerEntry)
			if e.cancelled.Load() {
				delete(ts.byID, e.id)
				continue
			}
			if e.period > 0 {
				e.deadline = now.Add(e.period)
				ts.nextSeq++
				e.seq = ts.nextSeq
				heap.Push(&ts.heap, e)
			}
			// One-shot entries stay in byID until their job has run, so a
			// cancel issued while the job waits in the inbox still reaches
			// the flag.
			due = append(due, e)
		}
		wait := time.Duration(-1)
		if len(ts.heap) > 0 {
			wait = time.Until(ts.heap[0].deadline)
			if wait < 0 {
				wait = 0
			}
		}
		ts.mu.Unlock()

		for _, e := range due {
			ts.inject(e)
		}

		if wait < 0 {
			select {
			case <-ts.wake:
			case <-ts.stopCh:
				return
			}
			continue
		}

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ts.wake:
			t.Stop()
		case <-ts.stopCh:
			t.Stop()
			return
		}
	}
}

// inject queues the fire callback on the worker inbox. Timer jobs join
// the same FIFO as user jobs; they never jump ahead. A fire that cannot
// be queued within the retry budget is dropped with a warning, since a
// timer has no caller to surface Busy to.
func (ts *timerSet) inject(e *timerEntry) {
	j := newThunkJob(func() {
		if e.period == 0 {
			defer ts.remove(e.id)
		}
		if e.cancelled.Load() {
			return
		}
		e.fire()
	})
	if err := ts.w.enqueue(j); err != nil {
		if e.period == 0 {
			ts.remove(e.id)
		}
		ts.w.logger.Warn("dropping timer fire",
			"remote", ts.w.id,
			"timer", e.id,
			"error", err)
	}
}

func (ts *timerSet) remove(id uint64) {
	ts.mu.Lock()
	delete(ts.byID, id)
	ts.mu.Unlock()
}
