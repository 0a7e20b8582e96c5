package reserve

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func tempBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "sub", "reserve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// forEachStore runs fn against both implementations.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("bolt", func(t *testing.T) { fn(t, tempBoltStore(t)) })
}

func TestStore_ReserveAndActive(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		until := t0.Add(time.Minute)
		require.NoError(t, s.Reserve([]string{"aa:0", "bb:1"}, t0, until))

		active, err := s.Active(t0)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.True(t, active["aa:0"].Equal(until))

		active, err = s.Active(until)
		require.NoError(t, err)
		assert.Empty(t, active, "reservations expire at their deadline")
	})
}

func TestStore_ReserveIsAllOrNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Reserve([]string{"aa:0"}, t0, t0.Add(time.Minute)))

		err := s.Reserve([]string{"bb:0", "aa:0"}, t0, t0.Add(time.Minute))
		require.ErrorIs(t, err, ErrReserved)

		active, err := s.Active(t0)
		require.NoError(t, err)
		assert.Len(t, active, 1)
		_, ok := active["bb:0"]
		assert.False(t, ok, "no partial reservation on conflict")
	})
}

func TestStore_ExpiredIsFree(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Reserve([]string{"aa:0"}, t0, t0.Add(time.Minute)))

		later := t0.Add(2 * time.Minute)
		require.NoError(t, s.Reserve([]string{"aa:0"}, later, later.Add(time.Minute)))

		active, err := s.Active(later)
		require.NoError(t, err)
		assert.True(t, active["aa:0"].Equal(later.Add(time.Minute)))
	})
}

func TestStore_Release(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Reserve([]string{"aa:0", "bb:1"}, t0, t0.Add(time.Minute)))
		require.NoError(t, s.Release([]string{"aa:0", "zz:9"}))

		active, err := s.Active(t0)
		require.NoError(t, err)
		assert.Len(t, active, 1)
		assert.Contains(t, active, "bb:1")

		require.NoError(t, s.Reserve([]string{"aa:0"}, t0, t0.Add(time.Minute)))
	})
}

func TestStore_Prune(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Reserve([]string{"aa:0"}, t0, t0.Add(time.Minute)))
		require.NoError(t, s.Reserve([]string{"bb:0", "cc:0"}, t0, t0.Add(time.Hour)))

		n, err := s.Prune(t0.Add(30 * time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		active, err := s.Active(t0)
		require.NoError(t, err)
		assert.Len(t, active, 2)
	})
}

func TestStore_InvalidOutpoint(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		for _, op := range []string{"", "aa", ":0", "aa:", "aa:-1", "aa:x"} {
			err := s.Reserve([]string{op}, t0, t0.Add(time.Minute))
			assert.ErrorIs(t, err, ErrInvalidOutpoint, "outpoint %q", op)
		}
	})
}

func TestBoltStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reserve.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Reserve([]string{"aa:0"}, t0, t0.Add(time.Hour)))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	err = s.Reserve([]string{"aa:0"}, t0, t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrReserved)
}

func TestMemoryStore_ConcurrentReserve(t *testing.T) {
	s := NewMemoryStore()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Reserve([]string{"aa:0"}, t0, t0.Add(time.Minute)) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
