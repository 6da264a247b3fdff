// Copyright 2025 walteh LLC
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

package engine

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/fsops/pkg/history"
)

// EventType identifies one engine notification.
type EventType string

const (
	EventStarted   EventType = "operation_started"
	EventProgress  EventType = "operation_progress"
	EventCompleted EventType = "operation_completed"
	EventFailed    EventType = "operation_failed"
)

// Event is one engine notification delivered to registered observers.
type Event struct {
	Type    EventType
	Kind    history.Kind
	Sources []string
	Target  string
	Done    int
	Total   int
	Err     error
}

// Observer receives engine events. Observers are called synchronously on the
// operating goroutine and must not block.
type Observer func(Event)

// Notifier is the observer registry of the engine.
type Notifier struct {
	mu        sync.RWMutex
	nextID    int
	observers map[int]Observer
}

// NewNotifier creates an empty registry.
func NewNotifier() *Notifier {
	return &Notifier{observers: make(map[int]Observer)}
}

// Subscribe registers an observer and returns its id for Unsubscribe.
func (n *Notifier) Subscribe(obs Observer) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	n.observers[n.nextID] = obs
	return n.nextID
}

// Unsubscribe removes a previously registered observer.
func (n *Notifier) Unsubscribe(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// emit delivers an event to every observer. A panicking observer is logged
// and skipped; it never fails the operation.
func (n *Notifier) emit(logger *zerolog.Logger, ev Event) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.observers))
	for _, obs := range n.observers {
		observers = append(observers, obs)
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().Interface("panic", r).Str("event", string(ev.Type)).Msg("observer panicked")
				}
			}()
			obs(ev)
		}()
	}
}
