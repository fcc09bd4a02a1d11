package journal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/booklib/internal/books"
	"github.com/abelbrown/booklib/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpenCreatesTable(t *testing.T) {
	j := openMemory(t)

	var name string
	err := j.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='actions'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "actions", name)
}

func TestRecordAndRecent(t *testing.T) {
	j := openMemory(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	b := books.Book{ID: "b1", Title: "Dune", Author: "Herbert", Source: books.SourceManual}
	seq1, err := j.Record(base, state.AddBook{Book: b})
	require.NoError(t, err)
	seq2, err := j.Record(base.Add(time.Second), state.ToggleFavorite{ID: "b1"})
	require.NoError(t, err)
	_, err = j.Record(base.Add(2*time.Second), state.ClearError{})
	require.NoError(t, err)
	assert.Greater(t, seq2, seq1)

	entries, err := j.Recent(2, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, string(state.TypeClearError), entries[0].Type)
	assert.Equal(t, string(state.TypeToggleFavorite), entries[1].Type)
	assert.Equal(t, seq2, entries[1].Seq)
	assert.True(t, entries[1].At.Equal(base.Add(time.Second)))
	assert.JSONEq(t, `{"id":"b1"}`, entries[1].Payload)

	all, err := j.Recent(10, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, strings.Contains(all[2].Payload, `"title":"Dune"`))
	assert.True(t, strings.Contains(all[2].Payload, `"source":"manual"`))
}

func TestRecentNonPositiveLimit(t *testing.T) {
	j := openMemory(t)
	entries, err := j.Recent(0, "")
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRecentFiltersByTypeBeforeLimit(t *testing.T) {
	j := openMemory(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	_, err := j.Record(base, state.SetTitleFilter{Title: "du"})
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		_, err := j.Record(base.Add(time.Duration(i+1)*time.Second), state.ClearError{})
		require.NoError(t, err)
	}

	entries, err := j.Recent(20, state.TypeSetTitleFilter)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(state.TypeSetTitleFilter), entries[0].Type)
	assert.JSONEq(t, `{"title":"du"}`, entries[0].Payload)

	clears, err := j.Recent(20, state.TypeClearError)
	require.NoError(t, err)
	assert.Len(t, clears, 20)

	none, err := j.Recent(20, "books/unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCount(t *testing.T) {
	j := openMemory(t)
	now := time.Now()
	for i := 0; i < 3; i++ {
		_, err := j.Record(now, state.SetError{Message: "x"})
		require.NoError(t, err)
	}
	_, err := j.Record(now, state.ClearError{})
	require.NoError(t, err)

	n, err := j.Count(state.TypeSetError)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = j.Count("")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestListenerRecordsDispatches(t *testing.T) {
	j := openMemory(t)
	st := state.NewStore(state.Initial())
	st.Subscribe(j.Listener(nil))

	st.Dispatch(state.FetchPending{RequestID: "fetch-1", URL: "http://x"})
	st.Dispatch(state.FetchRejected{RequestID: "fetch-1", Message: "Network Error"})

	entries, err := j.Recent(10, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, string(state.TypeFetchRejected), entries[0].Type)
	assert.JSONEq(t, `{"requestId":"fetch-1","message":"Network Error"}`, entries[0].Payload)
}

func TestListenerReportsErrors(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, j.Close())

	var got []error
	l := j.Listener(func(err error) { got = append(got, err) })
	l(state.ClearError{}, state.Initial(), state.Initial())

	require.Len(t, got, 1)
	assert.Error(t, got[0])
}

func TestFileJournalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.Record(time.Now(), state.ResetFilters{})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	n, err := j.Count(state.TypeResetFilters)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
