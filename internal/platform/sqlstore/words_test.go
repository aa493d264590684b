package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/phrazzld/vocabflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordStore_InsertAndFetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	words := NewWordStore(newTestDB(t), quietLogger())

	first := []domain.WordRecord{newWord("w1", "ephemeral"), reviewedWord("w2", "laconic", baseTime)}
	second := []domain.WordRecord{newWord("w0", "ubiquitous")}
	second[0].Language = ""

	require.NoError(t, words.Insert(ctx, "learner-1", first))
	require.NoError(t, words.Insert(ctx, "learner-1", second))
	require.NoError(t, words.Insert(ctx, "learner-2", []domain.WordRecord{newWord("w9", "other")}))

	got, err := words.FetchAll(ctx, "learner-1")
	require.NoError(t, err)

	want := append(append([]domain.WordRecord{}, first...), second...)
	want[2].Language = domain.DefaultLanguage
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FetchAll mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got[0].LastReviewDate.IsZero())
	assert.True(t, got[0].NextReviewDate.IsZero())
}

func TestWordStore_FetchAllEmpty(t *testing.T) {
	t.Parallel()
	words := NewWordStore(newTestDB(t), quietLogger())

	got, err := words.FetchAll(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestWordStore_InsertDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	words := NewWordStore(newTestDB(t), quietLogger())

	require.NoError(t, words.Insert(ctx, "learner-1", []domain.WordRecord{newWord("w1", "ephemeral")}))

	err := words.Insert(ctx, "learner-1", []domain.WordRecord{newWord("w2", "laconic"), newWord("w1", "again")})
	assert.ErrorIs(t, err, store.ErrWordExists)
	assert.True(t, store.IsDuplicateError(err))

	// The batch is rolled back as a whole.
	got, err := words.FetchAll(ctx, "learner-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWordStore_InsertInvalid(t *testing.T) {
	t.Parallel()
	words := NewWordStore(newTestDB(t), quietLogger())

	bad := newWord("w1", "  ")
	err := words.Insert(context.Background(), "learner-1", []domain.WordRecord{bad})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWordStore_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	words := NewWordStore(newTestDB(t), quietLogger())

	require.NoError(t, words.Insert(ctx, "learner-1", []domain.WordRecord{newWord("w1", "ephemeral")}))

	updated := reviewedWord("w1", "ephemeral", baseTime)
	updated.Meaning = "short-lived"
	require.NoError(t, words.Update(ctx, "learner-1", updated))

	got, err := words.FetchAll(ctx, "learner-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	if diff := cmp.Diff(updated, got[0]); diff != "" {
		t.Errorf("Update mismatch (-want +got):\n%s", diff)
	}

	err = words.Update(ctx, "learner-2", updated)
	assert.ErrorIs(t, err, store.ErrWordNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestWordStore_UpsertBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	words := NewWordStore(newTestDB(t), quietLogger())

	require.NoError(t, words.Insert(ctx, "learner-1", []domain.WordRecord{
		newWord("w1", "ephemeral"),
		reviewedWord("w2", "laconic", baseTime.Add(time.Hour)),
	}))

	fresh := reviewedWord("w1", "ephemeral", baseTime)
	stale := reviewedWord("w2", "laconic", baseTime)
	stale.StrengthScore = 0
	stale.Status = domain.WordStatusMistake
	added := newWord("w3", "sanguine")

	require.NoError(t, words.UpsertBatch(ctx, "learner-1", []domain.WordRecord{fresh, stale, added}))

	got, err := words.FetchAll(ctx, "learner-1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "w1", got[0].ID)
	assert.Equal(t, domain.WordStatusLearning, got[0].Status)
	assert.True(t, got[0].LastReviewDate.Equal(baseTime))

	// The stored review is newer than the incoming one.
	assert.Equal(t, "w2", got[1].ID)
	assert.Equal(t, domain.WordStatusLearning, got[1].Status)
	assert.Equal(t, 10, got[1].StrengthScore)
	assert.True(t, got[1].LastReviewDate.Equal(baseTime.Add(time.Hour)))

	assert.Equal(t, "w3", got[2].ID)
}

func TestWordStore_UpsertBatchRepeatedRetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	words := NewWordStore(newTestDB(t), quietLogger())

	batch := []domain.WordRecord{reviewedWord("w1", "ephemeral", baseTime)}
	require.NoError(t, words.UpsertBatch(ctx, "learner-1", batch))
	require.NoError(t, words.UpsertBatch(ctx, "learner-1", batch))

	got, err := words.FetchAll(ctx, "learner-1")
	require.NoError(t, err)
	if diff := cmp.Diff(batch, got); diff != "" {
		t.Errorf("retry changed the stored word (-want +got):\n%s", diff)
	}
}

func TestWordStore_SchemaMissing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := newTestDB(t)
	_, err := db.ExecContext(ctx, "DROP TABLE words")
	require.NoError(t, err)

	_, err = NewWordStore(db, quietLogger()).FetchAll(ctx, "learner-1")
	assert.ErrorIs(t, err, store.ErrSchemaMissing)
	assert.True(t, store.IsSchemaMissing(err))
}

func TestWordStore_EmptyBatchesAreNoops(t *testing.T) {
	t.Parallel()
	words := NewWordStore(newTestDB(t), quietLogger())

	assert.NoError(t, words.Insert(context.Background(), "learner-1", nil))
	assert.NoError(t, words.UpsertBatch(context.Background(), "learner-1", nil))
}
