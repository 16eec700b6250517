package memory

import (
	"context"
	"sort"
	"sync"

	"lendex/core"
)

// EventLog in-memory event store
type EventLog struct {
	mux    sync.RWMutex
	events []*core.Event
}

// NewEventLog new in-memory event store
func NewEventLog() *EventLog {
	return &EventLog{}
}

func less(a, b *core.Event) bool {
	if a.BlockNumber != b.BlockNumber {
		return a.BlockNumber < b.BlockNumber
	}

	return a.LogIndex < b.LogIndex
}

func (l *EventLog) Save(ctx context.Context, events []*core.Event) error {
	l.mux.Lock()
	defer l.mux.Unlock()

	for _, e := range events {
		idx := sort.Search(len(l.events), func(i int) bool {
			return !less(l.events[i], e)
		})

		if idx < len(l.events) && !less(e, l.events[idx]) {
			continue
		}

		l.events = append(l.events, nil)
		copy(l.events[idx+1:], l.events[idx:])
		l.events[idx] = e
	}

	return nil
}

func (l *EventLog) ListAfter(ctx context.Context, block uint64, logIndex uint, limit int) ([]*core.Event, error) {
	l.mux.RLock()
	defer l.mux.RUnlock()

	pos := &core.Event{BlockNumber: block, LogIndex: logIndex}
	idx := sort.Search(len(l.events), func(i int) bool {
		return less(pos, l.events[i])
	})

	end := len(l.events)
	if limit > 0 && idx+limit < end {
		end = idx + limit
	}

	return append([]*core.Event(nil), l.events[idx:end]...), nil
}

func (l *EventLog) ListBlock(ctx context.Context, block uint64) ([]*core.Event, error) {
	return l.ListRange(ctx, block, block)
}

func (l *EventLog) ListRange(ctx context.Context, from, to uint64) ([]*core.Event, error) {
	l.mux.RLock()
	defer l.mux.RUnlock()

	var events []*core.Event
	for _, e := range l.events {
		if e.BlockNumber >= from && e.BlockNumber <= to {
			events = append(events, e)
		}
	}

	return events, nil
}

func (l *EventLog) ListByName(ctx context.Context, kind core.ContractKind, names ...string) ([]*core.Event, error) {
	l.mux.RLock()
	defer l.mux.RUnlock()

	var events []*core.Event
	for _, e := range l.events {
		if e.Contract != kind {
			continue
		}

		for _, name := range names {
			if e.Name == name {
				events = append(events, e)
				break
			}
		}
	}

	return events, nil
}
