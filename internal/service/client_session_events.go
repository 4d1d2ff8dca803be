// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"sync"

	"github.com/MKhiriev/nutrilife-sync/models"
)

// EventKind identifies what changed in a session.
type EventKind int

const (
	// EventDataset carries a newly published dataset.
	EventDataset EventKind = iota + 1
	// EventStatus carries a new sync status.
	EventStatus
	// EventNoDataset means neither store holds data for the user; the
	// display layer should start profile creation.
	EventNoDataset
	// EventLocalWarning reports a failed local write. The session keeps
	// working from memory.
	EventLocalWarning
)

func (k EventKind) String() string {
	switch k {
	case EventDataset:
		return "dataset"
	case EventStatus:
		return "status"
	case EventNoDataset:
		return "no_dataset"
	case EventLocalWarning:
		return "local_warning"
	default:
		return "unknown"
	}
}

// Event is a session notification. Dataset is a private copy owned by the
// receiver.
type Event struct {
	Kind    EventKind
	Dataset models.Dataset
	Status  models.SyncStatus
	Err     error
}

// dispatcher delivers events to subscribers on its own goroutine, in the
// order they were emitted. Subscribers may call back into the session.
type dispatcher struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []queuedEvent
	subs   map[int]func(Event)
	nextID int
	closed bool
	done   chan struct{}
}

// queuedEvent goes to every subscriber, or only to subscriber to when
// direct is set.
type queuedEvent struct {
	event  Event
	to     int
	direct bool
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		subs: make(map[int]func(Event)),
		done: make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// subscribe registers fn. replay is delivered to fn alone, ahead of any
// event emitted after the call.
func (d *dispatcher) subscribe(fn func(Event), replay ...Event) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	if !d.closed {
		for _, e := range replay {
			d.queue = append(d.queue, queuedEvent{event: e, to: id, direct: true})
		}
		if len(replay) > 0 {
			d.cond.Signal()
		}
	}
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *dispatcher) emit(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.queue = append(d.queue, queuedEvent{event: e})
	d.cond.Signal()
}

// close stops accepting events and waits until queued ones are delivered.
func (d *dispatcher) close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.cond.Signal()
	}
	d.mu.Unlock()

	<-d.done
}

func (d *dispatcher) run() {
	defer close(d.done)

	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}

		q := d.queue[0]
		d.queue = d.queue[1:]
		subs := make([]func(Event), 0, len(d.subs))
		if q.direct {
			if fn, ok := d.subs[q.to]; ok {
				subs = append(subs, fn)
			}
		} else {
			for _, fn := range d.subs {
				subs = append(subs, fn)
			}
		}
		d.mu.Unlock()

		for _, fn := range subs {
			fn(q.event)
		}
	}
}
