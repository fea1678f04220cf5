package metacard_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/eluv-io/errors-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eluv-io/catalog-go/format/metacard"
)

func TestRegistry(t *testing.T) {
	a := metacard.NewType("a")
	b := metacard.NewType("b")
	reg := metacard.NewRegistry(a, nil, b)

	require.Equal(t, []*metacard.Type{a, b}, reg.Types())

	found, ok := reg.Lookup("b")
	require.True(t, ok)
	require.Same(t, b, found)

	_, ok = reg.Lookup("c")
	require.False(t, ok)

	err := reg.Register(metacard.NewType("a"))
	require.Error(t, err)
	require.True(t, errors.IsKind(errors.K.Exist, err))
	name, _ := errors.GetField(err, "metacard_type")
	require.Equal(t, "a", name)

	require.Error(t, reg.Register(nil))
	require.Error(t, reg.Register(metacard.NewType("")))

	require.True(t, reg.Unregister("a"))
	require.False(t, reg.Unregister("a"))
	require.Equal(t, []*metacard.Type{b}, reg.Types())
}

func TestRegistryTypesIsSnapshot(t *testing.T) {
	reg := metacard.NewRegistry(metacard.NewType("a"))
	types := reg.Types()
	require.NoError(t, reg.Register(metacard.NewType("b")))
	require.Len(t, types, 1)
	require.Len(t, reg.Types(), 2)
}

func TestRegistryConcurrent(t *testing.T) {
	reg := metacard.NewRegistry()
	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("type-%d", i)
			assert.NoError(t, reg.Register(metacard.NewType(name)))
			_, ok := reg.Lookup(name)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
	require.Len(t, reg.Types(), 20)
}
