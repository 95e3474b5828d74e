// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package owken

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/PedroGalveias/OwkenERC20/database"
	"github.com/PedroGalveias/OwkenERC20/event"
)

// journalSink collects the events produced by the running operation so the
// node can write them in the same transaction as the resulting state
type journalSink struct {
	mu      sync.Mutex
	pending []database.JournalRecord
	err     error
	closed  bool
}

func newJournalSink() *journalSink {
	return &journalSink{}
}

// Deliver never fails so the bus keeps the journal registered; encoding
// errors surface when the operation drains the sink
func (j *journalSink) Deliver(evt event.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	data, err := json.Marshal(evt.Data)
	if err != nil {
		j.err = errors.Join(j.err, fmt.Errorf("encode %s event: %w", evt.Type, err))
		return nil
	}
	j.pending = append(j.pending, database.JournalRecord{
		Timestamp: evt.Timestamp,
		Type:      string(evt.Type),
		Data:      data,
	})
	return nil
}

func (j *journalSink) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	j.pending = nil
}

// drain returns and clears the collected records
func (j *journalSink) drain() ([]database.JournalRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	ret, err := j.pending, j.err
	j.pending = nil
	j.err = nil
	return ret, err
}

// discard drops the records of a failed operation
func (j *journalSink) discard() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pending = nil
	j.err = nil
}

func (n *Node) registerJournal() {
	n.journal = newJournalSink()
	for _, eventType := range event.AllEventTypes() {
		n.journalSubs = append(
			n.journalSubs,
			journalSubscription{
				eventType: eventType,
				id:        n.eventBus.RegisterSubscriber(eventType, n.journal),
			},
		)
	}
}

type journalSubscription struct {
	eventType event.EventType
	id        event.EventSubscriberId
}

func (n *Node) unregisterJournal() {
	for _, sub := range n.journalSubs {
		n.eventBus.Unsubscribe(sub.eventType, sub.id)
	}
	n.journalSubs = nil
}

// Journal returns up to limit journal records starting at sequence number
// from. A non-positive limit returns everything.
func (n *Node) Journal(from uint64, limit int) ([]database.JournalRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.db == nil {
		return nil, ErrNotStarted
	}
	return n.db.Journal(from, limit, nil)
}
