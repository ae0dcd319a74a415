package highscore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLStore(t *testing.T) (*SQLStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.db")
	s, err := NewSQLStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLStoreMissingKey(t *testing.T) {
	s, _ := newSQLStore(t)
	blob, err := s.Load("nothing")
	require.NoError(t, err)
	assert.Equal(t, "", blob)
}

func TestSQLStoreOverwrites(t *testing.T) {
	s, _ := newSQLStore(t)
	require.NoError(t, s.Save("k", "[1]"))
	require.NoError(t, s.Save("k", "[1,2]"))

	blob, err := s.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", blob)
}

func TestLedgerSurvivesReopen(t *testing.T) {
	s, path := newSQLStore(t)
	l := NewLedger(s)
	l.Record(64.2)
	l.Record(61.9)
	require.NoError(t, s.Close())

	reopened, err := NewSQLStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []float64{61.9, 64.2}, NewLedger(reopened).List())
}
