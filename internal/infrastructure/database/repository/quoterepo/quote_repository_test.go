package quoterepo

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readwiser/internal/domain/quote"
	"readwiser/internal/infrastructure/database"
)

func newTestRepo(t *testing.T) quote.Repository {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewQuoteGormRepository(db)
}

func strptr(s string) *string { return &s }

func TestSaveAndGetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	input := quote.SaveInput{
		Text:         "Stay hungry, stay foolish",
		URL:          strptr("https://example.com/speech"),
		SourceTitle:  strptr("Commencement Address"),
		SourceAuthor: strptr("Steve Jobs"),
		SourceDomain: strptr("example.com"),
		Tags:         []string{"life", "work"},
	}

	id, err := repo.Save(ctx, "chat-1", input)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.GetByID(ctx, "chat-1", id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, input.Text, got.Text)
	assert.Equal(t, *input.URL, *got.URL)
	assert.Equal(t, *input.SourceTitle, *got.SourceTitle)
	assert.Equal(t, *input.SourceAuthor, *got.SourceAuthor)
	assert.Equal(t, *input.SourceDomain, *got.SourceDomain)
	assert.Equal(t, []string{"life", "work"}, got.Tags)
	assert.False(t, got.IsFavorite)
	assert.Zero(t, got.TimesShown)
	assert.Nil(t, got.LastShown)
}

func TestSaveRejectsEmptyText(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Save(context.Background(), "chat-1", quote.SaveInput{Text: "   "})
	assert.ErrorIs(t, err, quote.ErrEmptyText)
}

func TestChatIsolation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	idA, err := repo.Save(ctx, "chat-a", quote.SaveInput{Text: "alpha"})
	require.NoError(t, err)
	_, err = repo.Save(ctx, "chat-b", quote.SaveInput{Text: "beta"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "chat-b", idA)
	require.NoError(t, err)
	assert.Nil(t, got)

	deleted, err := repo.Delete(ctx, "chat-b", idA)
	require.NoError(t, err)
	assert.False(t, deleted)

	count, err := repo.Count(ctx, "chat-a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Save(ctx, "chat-1", quote.SaveInput{Text: "ephemeral"})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "chat-1", id)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := repo.GetByID(ctx, "chat-1", id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSampleBumpsStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := repo.Save(ctx, "chat-1", quote.SaveInput{Text: text})
		require.NoError(t, err)
	}

	picked, err := repo.Sample(ctx, "chat-1", 2, true)
	require.NoError(t, err)
	require.Len(t, picked, 2)

	for _, q := range picked {
		assert.Equal(t, 1, q.TimesShown)
		require.NotNil(t, q.LastShown)

		stored, err := repo.GetByID(ctx, "chat-1", q.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, 1, stored.TimesShown)
		require.NotNil(t, stored.LastShown)
	}

	count, err := repo.Count(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSampleEmptyStore(t *testing.T) {
	repo := newTestRepo(t)

	picked, err := repo.Sample(context.Background(), "chat-1", 5, true)
	require.NoError(t, err)
	assert.Empty(t, picked)
}

func TestSamplePrefersUnshown(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	shownID, err := repo.Save(ctx, "chat-1", quote.SaveInput{Text: "already shown"})
	require.NoError(t, err)
	freshID, err := repo.Save(ctx, "chat-1", quote.SaveInput{Text: "fresh"})
	require.NoError(t, err)

	// First sample of one marks a single quote as shown.
	first, err := repo.Sample(ctx, "chat-1", 1, true)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := repo.Sample(ctx, "chat-1", 1, true)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.ElementsMatch(t, []uint{shownID, freshID}, []uint{first[0].ID, second[0].ID})
}

func TestRecentOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var ids []uint
	for _, text := range []string{"first", "second", "third"} {
		id, err := repo.Save(ctx, "chat-1", quote.SaveInput{Text: text})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recent, err := repo.Recent(ctx, "chat-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
}

func TestSearchCaseInsensitiveAndCapped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < searchCap+5; i++ {
		_, err := repo.Save(ctx, "chat-1", quote.SaveInput{Text: "the Quick brown fox"})
		require.NoError(t, err)
	}
	_, err := repo.Save(ctx, "chat-1", quote.SaveInput{Text: "unrelated"})
	require.NoError(t, err)

	found, err := repo.Search(ctx, "chat-1", "QUICK")
	require.NoError(t, err)
	assert.Len(t, found, searchCap)

	blank, err := repo.Search(ctx, "chat-1", "   ")
	require.NoError(t, err)
	assert.Empty(t, blank)
}

func TestByTagAndBySource(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, "chat-1", quote.SaveInput{
		Text:         "tagged",
		Tags:         []string{"wisdom"},
		SourceDomain: strptr("example.com"),
	})
	require.NoError(t, err)
	_, err = repo.Save(ctx, "chat-1", quote.SaveInput{Text: "untagged"})
	require.NoError(t, err)

	byTag, err := repo.ByTag(ctx, "chat-1", "wisdom")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "tagged", byTag[0].Text)

	bySource, err := repo.BySource(ctx, "chat-1", "example.com")
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "tagged", bySource[0].Text)
}

func TestToggleFavorite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Save(ctx, "chat-1", quote.SaveInput{Text: "keeper"})
	require.NoError(t, err)

	on, err := repo.ToggleFavorite(ctx, "chat-1", id)
	require.NoError(t, err)
	require.NotNil(t, on)
	assert.True(t, *on)

	favorites, err := repo.Favorites(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, id, favorites[0].ID)

	off, err := repo.ToggleFavorite(ctx, "chat-1", id)
	require.NoError(t, err)
	require.NotNil(t, off)
	assert.False(t, *off)

	missing, err := repo.ToggleFavorite(ctx, "chat-1", id+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTopTags(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saves := [][]string{
		{"go", "life"},
		{"go"},
		{"life"},
		{"go", "rare"},
	}
	for _, tags := range saves {
		_, err := repo.Save(ctx, "chat-1", quote.SaveInput{Text: "q " + tags[0], Tags: tags})
		require.NoError(t, err)
	}

	top, err := repo.TopTags(ctx, "chat-1", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, quote.TagCount{Tag: "go", Count: 3}, top[0])
	assert.Equal(t, quote.TagCount{Tag: "life", Count: 2}, top[1])
}

func TestIsDuplicateWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, "chat-1", quote.SaveInput{Text: "echo"})
	require.NoError(t, err)

	dup, err := repo.IsDuplicate(ctx, "chat-1", "echo", time.Minute)
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = repo.IsDuplicate(ctx, "chat-1", "different", time.Minute)
	require.NoError(t, err)
	assert.False(t, dup)

	// The window is per chat.
	dup, err = repo.IsDuplicate(ctx, "chat-2", "echo", time.Minute)
	require.NoError(t, err)
	assert.False(t, dup)

	// A zero-width window never matches.
	dup, err = repo.IsDuplicate(ctx, "chat-1", "echo", -time.Minute)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestExport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, "chat-1", quote.SaveInput{
		Text: "exported",
		URL:  strptr("https://example.com"),
		Tags: []string{"keep"},
	})
	require.NoError(t, err)
	_, err = repo.Save(ctx, "chat-2", quote.SaveInput{Text: "other tenant"})
	require.NoError(t, err)

	data, err := repo.Export(ctx, "chat-1")
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "exported", records[0]["text"])
	assert.Equal(t, "https://example.com", records[0]["url"])

	created, ok := records[0]["created_at"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, created)
	assert.NoError(t, err)
}
