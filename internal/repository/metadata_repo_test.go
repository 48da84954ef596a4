package repository

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leowang/graph-approvals/internal/models"
	"github.com/leowang/graph-approvals/pkg/database"
)

func newTestRepo(t *testing.T) *MetadataRepository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE approval_metadata (
			approval_id TEXT PRIMARY KEY,
			creator_email TEXT,
			document TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	require.NoError(t, err)

	return NewMetadataRepository(db, zap.NewNop())
}

func TestMetadataSaveAndGet(t *testing.T) {
	repo := newTestRepo(t)

	saved, err := repo.Save(&models.ApprovalMetadata{
		ApprovalID:   "appr-1",
		CreatorEmail: "alice@contoso.com",
		DueDate:      "2026-09-30T00:00:00Z",
		IsSequential: true,
		ApproversWithStages: []models.ApproverStage{
			{Email: "bob@contoso.com", Stage: 1},
			{Email: "carol@contoso.com", Stage: 2},
		},
	})
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := repo.Get("appr-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice@contoso.com", got.CreatorEmail)
	assert.True(t, got.IsSequential)
	require.Len(t, got.ApproversWithStages, 2)
	assert.Equal(t, 2, got.ApproversWithStages[1].Stage)
}

func TestMetadataGetAbsentReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMetadataSaveUpserts(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Save(&models.ApprovalMetadata{ApprovalID: "appr-1", DueDate: "2026-09-01T00:00:00Z"})
	require.NoError(t, err)

	_, err = repo.Save(&models.ApprovalMetadata{ApprovalID: "appr-1", DueDate: "2026-10-01T00:00:00Z"})
	require.NoError(t, err)

	got, err := repo.Get("appr-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-01T00:00:00Z", got.DueDate)

	docs, err := repo.List(ListFilter{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestMetadataListFilter(t *testing.T) {
	repo := newTestRepo(t)

	for _, m := range []*models.ApprovalMetadata{
		{ApprovalID: "a", CreatorEmail: "alice@contoso.com"},
		{ApprovalID: "b", CreatorEmail: "bob@contoso.com"},
		{ApprovalID: "c", CreatorEmail: "alice@contoso.com"},
	} {
		_, err := repo.Save(m)
		require.NoError(t, err)
	}

	t.Run("unfiltered returns everything", func(t *testing.T) {
		docs, err := repo.List(ListFilter{})
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("creator filter is an equality match", func(t *testing.T) {
		docs, err := repo.List(ListFilter{CreatorEmail: "alice@contoso.com"})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a", docs[0].ApprovalID)
		assert.Equal(t, "c", docs[1].ApprovalID)
	})

	t.Run("no matches", func(t *testing.T) {
		docs, err := repo.List(ListFilter{CreatorEmail: "nobody@contoso.com"})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestMetadataDeleteIdempotent(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Save(&models.ApprovalMetadata{ApprovalID: "appr-1"})
	require.NoError(t, err)

	existed, err := repo.Delete("appr-1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = repo.Delete("appr-1")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestMetadataPatch(t *testing.T) {
	repo := newTestRepo(t)

	saved, err := repo.Save(&models.ApprovalMetadata{
		ApprovalID:   "appr-1",
		CreatorEmail: "alice@contoso.com",
		DueDate:      "2026-09-01T00:00:00Z",
	})
	require.NoError(t, err)

	patched, err := repo.Patch("appr-1", map[string]json.RawMessage{
		"dueDate":      json.RawMessage(`"2026-12-01T00:00:00Z"`),
		"isSequential": json.RawMessage(`true`),
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-12-01T00:00:00Z", patched.DueDate)
	assert.True(t, patched.IsSequential)
	// Untouched fields survive the merge.
	assert.Equal(t, "alice@contoso.com", patched.CreatorEmail)
	assert.False(t, patched.UpdatedAt.Before(saved.UpdatedAt))
}

func TestMetadataPatchAbsentFailsWithoutCreating(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Patch("missing", map[string]json.RawMessage{
		"dueDate": json.RawMessage(`"2026-12-01T00:00:00Z"`),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}
