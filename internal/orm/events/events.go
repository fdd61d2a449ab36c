// Package events dispatches class-metadata lifecycle events to listeners.
package events

import (
	"fmt"
	"sync"

	"github.com/conduit-lang/mapexport/internal/orm/mapping"
)

// Event names
const (
	// LoadClassMetadata fires once per class after its metadata is resolved
	LoadClassMetadata = "loadClassMetadata"
	// OnClassMetadataNotFound fires when no source knows a requested class.
	// Listeners may supply the metadata through SetFoundMetadata.
	OnClassMetadataNotFound = "onClassMetadataNotFound"
)

// Listener handles one dispatched event. args is the event-specific
// argument value, e.g. *LoadClassMetadataArgs.
type Listener func(args interface{}) error

// Manager keeps the listeners registered per event
type Manager struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

// NewManager creates a new event manager
func NewManager() *Manager {
	return &Manager{
		listeners: make(map[string][]Listener),
	}
}

// AddListener registers l for event
func (m *Manager) AddListener(event string, l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[event] = append(m.listeners[event], l)
}

// Listeners returns the listeners for event in registration order
func (m *Manager) Listeners(event string) []Listener {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Listener, len(m.listeners[event]))
	copy(out, m.listeners[event])
	return out
}

// HasListeners returns true if any listener is registered for event
func (m *Manager) HasListeners(event string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listeners[event]) > 0
}

// Dispatch runs the listeners of event in order and stops at the first error
func (m *Manager) Dispatch(event string, args interface{}) error {
	for _, l := range m.Listeners(event) {
		if err := l(args); err != nil {
			return fmt.Errorf("listener for %s failed: %w", event, err)
		}
	}
	return nil
}

// LoadClassMetadataArgs carries freshly loaded metadata
type LoadClassMetadataArgs struct {
	metadata *mapping.ClassMetadata
}

// NewLoadClassMetadataArgs creates the arguments for LoadClassMetadata
func NewLoadClassMetadataArgs(metadata *mapping.ClassMetadata) *LoadClassMetadataArgs {
	return &LoadClassMetadataArgs{metadata: metadata}
}

// ClassMetadata returns the loaded metadata
func (a *LoadClassMetadataArgs) ClassMetadata() *mapping.ClassMetadata {
	return a.metadata
}

// ClassMetadataNotFoundArgs carries the name of an unknown class and any
// metadata a listener found for it
type ClassMetadataNotFoundArgs struct {
	className string
	found     *mapping.ClassMetadata
}

// NewClassMetadataNotFoundArgs creates the arguments for OnClassMetadataNotFound
func NewClassMetadataNotFoundArgs(className string) *ClassMetadataNotFoundArgs {
	return &ClassMetadataNotFoundArgs{className: className}
}

// ClassName returns the requested class name
func (a *ClassMetadataNotFoundArgs) ClassName() string {
	return a.className
}

// FoundMetadata returns the metadata set by a listener, or nil
func (a *ClassMetadataNotFoundArgs) FoundMetadata() *mapping.ClassMetadata {
	return a.found
}

// SetFoundMetadata records metadata for the requested class. nil clears it.
func (a *ClassMetadataNotFoundArgs) SetFoundMetadata(metadata *mapping.ClassMetadata) {
	a.found = metadata
}
