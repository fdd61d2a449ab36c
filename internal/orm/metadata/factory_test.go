package metadata

import (
	"errors"
	"sync"
	"testing"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
	"github.com/conduit-lang/mapexport/internal/orm/events"
	"github.com/conduit-lang/mapexport/internal/orm/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	names   []string
	classes map[string]*mapping.ClassMetadata
}

func newStaticSource(names ...string) *staticSource {
	s := &staticSource{classes: make(map[string]*mapping.ClassMetadata)}
	for _, n := range names {
		s.names = append(s.names, n)
		s.classes[n] = mapping.NewClassMetadata(n)
	}
	return s
}

func (s *staticSource) Lookup(name string) (*mapping.ClassMetadata, bool) {
	m, ok := s.classes[name]
	return m, ok
}

func (s *staticSource) ClassNames() []string {
	return s.names
}

func TestFactory_GetClassMetadataCaches(t *testing.T) {
	source := newStaticSource("User", "Group")
	f := NewFactory(source)

	loads := 0
	f.EventManager().AddListener(events.LoadClassMetadata, func(args interface{}) error {
		loads++
		return nil
	})

	first, err := f.GetClassMetadata("User")
	require.NoError(t, err)
	second, err := f.GetClassMetadata("User")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loads)
	assert.Equal(t, []string{"User", "Group"}, f.AllClassNames())
}

func TestFactory_NotFoundListenerSuppliesMetadata(t *testing.T) {
	f := NewFactory(newStaticSource())
	ghost := mapping.NewClassMetadata("Ghost")

	calls := 0
	f.EventManager().AddListener(events.OnClassMetadataNotFound, func(args interface{}) error {
		calls++
		a := args.(*events.ClassMetadataNotFoundArgs)
		if a.ClassName() == "Ghost" {
			a.SetFoundMetadata(ghost)
		}
		return nil
	})

	m, err := f.GetClassMetadata("Ghost")
	require.NoError(t, err)
	assert.Same(t, ghost, m)

	m, err = f.GetClassMetadata("Ghost")
	require.NoError(t, err)
	assert.Same(t, ghost, m)
	assert.Equal(t, 1, calls)
	assert.True(t, f.HasMetadataFor("Ghost"))

	_, err = f.GetClassMetadata("Nobody")
	assert.True(t, mxerrors.HasCode(err, mxerrors.ErrClassNotFound))
}

func TestFactory_ListenerError(t *testing.T) {
	f := NewFactory(newStaticSource("User"))
	boom := errors.New("boom")
	f.EventManager().AddListener(events.LoadClassMetadata, func(args interface{}) error { return boom })

	_, err := f.GetClassMetadata("User")
	assert.ErrorIs(t, err, boom)
	assert.False(t, f.HasMetadataFor("Nobody"))
}

func TestFactory_NilSource(t *testing.T) {
	f := NewFactory(nil)
	assert.Empty(t, f.AllClassNames())

	_, err := f.GetClassMetadata("User")
	assert.True(t, mxerrors.HasCode(err, mxerrors.ErrClassNotFound))

	m := mapping.NewClassMetadata("User")
	f.SetMetadataFor("User", m)
	got, err := f.GetClassMetadata("User")
	require.NoError(t, err)
	assert.Same(t, m, got)
}

func TestFactory_ConcurrentAccess(t *testing.T) {
	f := NewFactory(newStaticSource("A", "B", "C"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			all, err := f.AllMetadata()
			assert.NoError(t, err)
			assert.Len(t, all, 3)
		}()
	}
	wg.Wait()
}
