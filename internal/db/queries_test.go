package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/delgists/internal/gist"
)

func TestRecordAndListDeletions(t *testing.T) {
	database, err := Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	older := NewDeletion(gist.Gist{
		ID:          "a1",
		Description: "**old** notes",
		HTMLURL:     "https://gist.github.com/a1",
		Public:      true,
		Files:       map[string]gist.File{"a.md": {Filename: "a.md"}, "b.md": {Filename: "b.md"}},
	}, "https://api.github.com", base)
	newer := NewDeletion(gist.Gist{
		ID:      "b2",
		HTMLURL: "https://gist.github.com/b2",
	}, "https://api.github.com", base.Add(time.Minute))

	require.NoError(t, RecordDeletions(ctx, database, []Deletion{older, newer}))

	count, err := CountDeletions(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	entries, err := ListDeletions(ctx, database, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "b2", entries[0].GistID)
	assert.Equal(t, "https://gist.github.com/b2", entries[0].Label)
	assert.False(t, entries[0].Public)

	assert.Equal(t, "a1", entries[1].GistID)
	assert.Equal(t, "**old** notes", entries[1].Label)
	assert.True(t, entries[1].Public)
	assert.Equal(t, 2, entries[1].FileCount)
	assert.Equal(t, base.Unix(), entries[1].DeletedAt)
	assert.Len(t, entries[1].ID, 26)
}

func TestListDeletions_LimitOffset(t *testing.T) {
	database, err := Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	base := time.Now()
	var entries []Deletion
	for i, id := range []string{"a", "b", "c"} {
		entries = append(entries, NewDeletion(gist.Gist{ID: id, HTMLURL: "https://gist.github.com/" + id}, "https://api.github.com", base.Add(time.Duration(i)*time.Second)))
	}
	require.NoError(t, RecordDeletions(ctx, database, entries))

	page, err := ListDeletions(ctx, database, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].GistID)
	assert.Equal(t, "a", page[1].GistID)
}

func TestRecordDeletions_Empty(t *testing.T) {
	database, err := Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, RecordDeletions(context.Background(), database, nil))

	entries, err := ListDeletions(context.Background(), database, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
