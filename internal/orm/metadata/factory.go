// Package metadata resolves class names to class metadata, caching each
// class after its first load.
package metadata

import (
	"sync"

	"go.uber.org/zap"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
	"github.com/conduit-lang/mapexport/internal/orm/events"
	"github.com/conduit-lang/mapexport/internal/orm/mapping"
)

// Source provides resolved metadata by class name
type Source interface {
	Lookup(className string) (*mapping.ClassMetadata, bool)
	ClassNames() []string
}

// Factory loads class metadata from a Source and caches it. It is safe for
// concurrent use. Listeners run while the factory lock is held and must not
// call back into the factory.
type Factory struct {
	mu     sync.Mutex
	source Source
	events *events.Manager
	logger *zap.Logger
	loaded map[string]*mapping.ClassMetadata
}

// Option configures a Factory
type Option func(*Factory)

// WithEventManager sets the event manager notified on loads and misses
func WithEventManager(m *events.Manager) Option {
	return func(f *Factory) {
		if m != nil {
			f.events = m
		}
	}
}

// WithLogger sets the factory logger
func WithLogger(logger *zap.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFactory creates a factory over source. source may be nil, in which
// case only not-found listeners can supply metadata.
func NewFactory(source Source, opts ...Option) *Factory {
	f := &Factory{
		source: source,
		events: events.NewManager(),
		logger: zap.NewNop(),
		loaded: make(map[string]*mapping.ClassMetadata),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// EventManager returns the manager listeners are registered on
func (f *Factory) EventManager() *events.Manager {
	return f.events
}

// GetClassMetadata returns the metadata for className
func (f *Factory) GetClassMetadata(className string) (*mapping.ClassMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if m, ok := f.loaded[className]; ok {
		return m, nil
	}

	f.logger.Debug("class metadata cache miss", zap.String("class", className))

	m, ok := f.lookup(className)
	if !ok {
		args := events.NewClassMetadataNotFoundArgs(className)
		if f.events.HasListeners(events.OnClassMetadataNotFound) {
			f.logger.Debug("dispatching event",
				zap.String("event", events.OnClassMetadataNotFound),
				zap.String("class", className),
			)
			if err := f.events.Dispatch(events.OnClassMetadataNotFound, args); err != nil {
				return nil, err
			}
		}
		m = args.FoundMetadata()
		if m == nil {
			return nil, mxerrors.NewClassNotFound(className)
		}
	}

	if f.events.HasListeners(events.LoadClassMetadata) {
		f.logger.Debug("dispatching event",
			zap.String("event", events.LoadClassMetadata),
			zap.String("class", className),
		)
		if err := f.events.Dispatch(events.LoadClassMetadata, events.NewLoadClassMetadataArgs(m)); err != nil {
			return nil, err
		}
	}

	f.loaded[className] = m
	return m, nil
}

func (f *Factory) lookup(className string) (*mapping.ClassMetadata, bool) {
	if f.source == nil {
		return nil, false
	}
	return f.source.Lookup(className)
}

// HasMetadataFor reports whether className is cached or known to the source
func (f *Factory) HasMetadataFor(className string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.loaded[className]; ok {
		return true
	}
	_, ok := f.lookup(className)
	return ok
}

// SetMetadataFor caches metadata for className without firing events
func (f *Factory) SetMetadataFor(className string, m *mapping.ClassMetadata) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded[className] = m
}

// AllClassNames returns the source classes in source order
func (f *Factory) AllClassNames() []string {
	if f.source == nil {
		return []string{}
	}
	return f.source.ClassNames()
}

// AllMetadata loads every class known to the source
func (f *Factory) AllMetadata() ([]*mapping.ClassMetadata, error) {
	names := f.AllClassNames()
	out := make([]*mapping.ClassMetadata, 0, len(names))
	for _, name := range names {
		m, err := f.GetClassMetadata(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
