package chartstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/RowanDark/knitcipher/internal/cipher"
	"github.com/RowanDark/knitcipher/internal/knit"
)

// StoreSuite runs every test against a fresh database file.
type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	clock time.Time
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := Open(filepath.Join(s.T().TempDir(), "nested", "charts.db"), nil)
	require.NoError(s.T(), err)

	s.clock = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		s.clock = s.clock.Add(time.Minute)
		return s.clock
	}
	s.store = store
}

func (s *StoreSuite) TearDownTest() {
	require.NoError(s.T(), s.store.Close())
}

func (s *StoreSuite) chart(message, key string, repeat bool) *Chart {
	res, err := knit.Encrypt(message, key, repeat)
	require.NoError(s.T(), err)
	return FromResult(res, "  scarf  ")
}

// TestSaveAndGet: Save assigns identity and Get returns the same fields.
func (s *StoreSuite) TestSaveAndGet() {
	in := s.chart("Hello, World!", cipher.KeyVigenere, false)
	saved, err := s.store.Save(s.ctx, in)
	require.NoError(s.T(), err)

	require.Len(s.T(), saved.ID, 26, "ULID string")
	require.NotEmpty(s.T(), saved.CID)
	require.Equal(s.T(), "scarf", saved.Label)
	require.Empty(s.T(), in.ID, "input chart is not modified")

	got, err := s.store.Get(s.ctx, saved.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), saved.CreatedAt.Equal(got.CreatedAt))
	got.CreatedAt = saved.CreatedAt
	require.Equal(s.T(), saved, got)
	require.Equal(s.T(), "Hello, World!", knit.Decrypt(got.Binary, got.Code))
}

// TestSaveDeduplicates: same pattern, algorithm and repeat returns the existing chart.
func (s *StoreSuite) TestSaveDeduplicates() {
	first, err := s.store.Save(s.ctx, s.chart("knit", cipher.KeyCaesar, false))
	require.NoError(s.T(), err)

	again, err := s.store.Save(s.ctx, s.chart("knit", cipher.KeyCaesar, false))
	require.NoError(s.T(), err)
	require.Equal(s.T(), first.ID, again.ID)

	repeated, err := s.store.Save(s.ctx, s.chart("knit", cipher.KeyCaesar, true))
	require.NoError(s.T(), err)
	require.NotEqual(s.T(), first.ID, repeated.ID, "repeat setting is part of the identity")
	require.Equal(s.T(), first.CID, repeated.CID, "content ID only covers the bits")
}

// TestSaveConcurrentSamePattern: writers racing on one pattern all get the
// same stored chart and only one row is written.
func (s *StoreSuite) TestSaveConcurrentSamePattern() {
	fixed := s.clock
	s.store.now = func() time.Time { return fixed }
	in := s.chart("cable", cipher.KeyVigenere, false)

	const writers = 8
	ids := make([]string, writers)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, err := s.store.Save(s.ctx, in)
			errs[i] = err
			if err == nil {
				ids[i] = saved.ID
			}
		}()
	}
	wg.Wait()

	for i := range writers {
		require.NoError(s.T(), errs[i])
		require.Equal(s.T(), ids[0], ids[i])
	}
	all, err := s.store.List(s.ctx, Filter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)
	require.Equal(s.T(), ids[0], all[0].ID)
}

// TestListNewestFirst: List orders by creation time and honours the filter.
func (s *StoreSuite) TestListNewestFirst() {
	a, err := s.store.Save(s.ctx, s.chart("one", cipher.KeyCaesar, false))
	require.NoError(s.T(), err)
	b, err := s.store.Save(s.ctx, s.chart("two", cipher.KeyROT13, false))
	require.NoError(s.T(), err)
	c, err := s.store.Save(s.ctx, s.chart("three", cipher.KeyCaesar, false))
	require.NoError(s.T(), err)

	all, err := s.store.List(s.ctx, Filter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	require.Equal(s.T(), []string{c.ID, b.ID, a.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	caesar, err := s.store.List(s.ctx, Filter{Algorithm: cipher.KeyCaesar})
	require.NoError(s.T(), err)
	require.Len(s.T(), caesar, 2)

	limited, err := s.store.List(s.ctx, Filter{Limit: 1})
	require.NoError(s.T(), err)
	require.Len(s.T(), limited, 1)
	require.Equal(s.T(), c.ID, limited[0].ID)
}

// TestDelete: deleted charts are gone and a second delete reports ErrNotFound.
func (s *StoreSuite) TestDelete() {
	saved, err := s.store.Save(s.ctx, s.chart("purl", cipher.KeyAtbash, false))
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.store.Delete(s.ctx, saved.ID))
	_, err = s.store.Get(s.ctx, saved.ID)
	require.ErrorIs(s.T(), err, ErrNotFound)
	require.ErrorIs(s.T(), s.store.Delete(s.ctx, saved.ID), ErrNotFound)
}

// TestSaveRejectsInvalid: charts without bits or with stray characters are refused.
func (s *StoreSuite) TestSaveRejectsInvalid() {
	_, err := s.store.Save(s.ctx, &Chart{Algorithm: "caesar", Code: "C1"})
	require.ErrorIs(s.T(), err, ErrInvalidChart)

	_, err = s.store.Save(s.ctx, &Chart{Algorithm: "caesar", Code: "C1", Binary: "01 10"})
	require.ErrorIs(s.T(), err, ErrInvalidChart)

	_, err = s.store.Save(s.ctx, nil)
	require.ErrorIs(s.T(), err, ErrInvalidChart)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func TestContentID(t *testing.T) {
	a, err := ContentID("0101")
	require.NoError(t, err)
	b, err := ContentID("0101")
	require.NoError(t, err)
	c, err := ContentID("0110")
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Equal(t, byte('b'), a[0], "CIDv1 strings are base32 with a b prefix")
}

func TestChartGrid(t *testing.T) {
	res, err := knit.Encrypt("Hi", cipher.KeyCaesar, false)
	require.NoError(t, err)

	g, err := FromResult(res, "").Grid()
	require.NoError(t, err)
	require.Equal(t, res.Grid.Cells, g.Cells)
}
