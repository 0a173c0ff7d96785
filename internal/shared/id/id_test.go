package id

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsUniqueAndSorted(t *testing.T) {
	gen := NewGenerator()

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.Generate().String()
	}

	assert.True(t, sort.StringsAreSorted(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		assert.Len(t, id, 26)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestPrefixedIDs(t *testing.T) {
	req := NewRequestID()
	assert.True(t, strings.HasPrefix(req.String(), "req_"))
	assert.True(t, IsValidPrefixed(req.String(), RequestPrefix))
	assert.False(t, IsValidPrefixed(req.String(), OperationPrefix))

	op := NewOperationID()
	assert.True(t, IsValidPrefixed(op.String(), OperationPrefix))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(NewGenerator().Generate().String()))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("not-a-ulid"))
	assert.False(t, IsValid("req_01HZ"))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(NewRequestID().String())
	require.NoError(t, err)
	assert.True(t, ts.After(before))

	_, err = Timestamp("req_garbage")
	assert.Error(t, err)
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.GenerateWithPrefix(RequestPrefix)
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}
