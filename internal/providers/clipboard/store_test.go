package clipboard

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_StartsEmpty(t *testing.T) {
	s := NewStore()

	st := s.Get()
	assert.True(t, st.Empty())
	assert.Equal(t, None, st.Operation)
	assert.NotNil(t, st.Items)
}

func TestStore_SetOverwrites(t *testing.T) {
	s := NewStore()

	s.Set([]string{"/opt/a", "/opt/b"}, Copy)
	s.Set([]string{"/opt/c"}, Cut)

	st := s.Get()
	assert.Equal(t, []string{"/opt/c"}, st.Items)
	assert.Equal(t, Cut, st.Operation)
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	s := NewStore()
	items := []string{"/opt/a"}
	s.Set(items, Copy)

	items[0] = "/etc/passwd"
	st := s.Get()
	st.Items[0] = "/tmp/x"

	assert.Equal(t, []string{"/opt/a"}, s.Get().Items)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Set([]string{"/opt/a"}, Cut)

	s.Clear()

	st := s.Get()
	assert.Empty(t, st.Items)
	assert.Equal(t, None, st.Operation)
}

func TestStore_ClearIfUnchanged(t *testing.T) {
	s := NewStore()
	first := s.Set([]string{"/opt/a"}, Cut)

	s.Set([]string{"/opt/b"}, Copy)
	assert.False(t, s.ClearIfUnchanged(first.Version))
	assert.Equal(t, []string{"/opt/b"}, s.Get().Items)

	current := s.Get()
	assert.True(t, s.ClearIfUnchanged(current.Version))
	assert.True(t, s.Get().Empty())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			item := fmt.Sprintf("/opt/%d", i)
			s.Set([]string{item, item}, Copy)
		}(i)
		go func() {
			defer wg.Done()
			st := s.Get()
			// Never torn: both items always come from the same Set call.
			if len(st.Items) == 2 {
				assert.Equal(t, st.Items[0], st.Items[1])
			}
		}()
	}
	wg.Wait()

	st := s.Get()
	require.Len(t, st.Items, 2)
	assert.Equal(t, uint64(50), st.Version)
}
