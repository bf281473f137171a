package repositories

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/alimgiray/codenexus/internal/models"
	"github.com/alimgiray/codenexus/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *RepoCreationRepository {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepoCreationRepository(db)
}

func TestRepoCreationRepository(t *testing.T) {
	t.Run("Create and get", func(t *testing.T) {
		repo := newTestRepo(t)
		creation := models.NewRepoCreation(models.CreateRepoRequest{Name: "x", IsPrivate: true})
		require.NoError(t, repo.Create(creation))

		stored, err := repo.GetByID(creation.ID)
		require.NoError(t, err)
		assert.Equal(t, creation.ID, stored.ID)
		assert.Equal(t, "x", stored.Name)
		assert.True(t, stored.IsPrivate)
		assert.Equal(t, models.CreationStatusPending, stored.Status)
		assert.Nil(t, stored.ErrorKind)
		assert.Nil(t, stored.GithubID)
		assert.Nil(t, stored.HTMLURL)
		assert.WithinDuration(t, creation.CreatedAt, stored.CreatedAt, time.Second)
	})

	t.Run("Missing entry", func(t *testing.T) {
		repo := newTestRepo(t)
		_, err := repo.GetByID("missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("Update outcome", func(t *testing.T) {
		repo := newTestRepo(t)
		creation := models.NewRepoCreation(models.CreateRepoRequest{Name: "x"})
		require.NoError(t, repo.Create(creation))

		creation.MarkCreated(models.RepositorySummary{ID: 99, Name: "x", HTMLURL: "https://github.com/u/x"})
		require.NoError(t, repo.Update(creation))

		stored, err := repo.GetByID(creation.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CreationStatusCreated, stored.Status)
		require.NotNil(t, stored.GithubID)
		assert.Equal(t, int64(99), *stored.GithubID)
		require.NotNil(t, stored.HTMLURL)
		assert.Equal(t, "https://github.com/u/x", *stored.HTMLURL)
	})

	t.Run("Recent entries newest first", func(t *testing.T) {
		repo := newTestRepo(t)
		base := time.Now().UTC().Add(-time.Hour)
		for i, name := range []string{"first", "second", "third"} {
			creation := models.NewRepoCreation(models.CreateRepoRequest{Name: name})
			creation.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, repo.Create(creation))
		}

		recent, err := repo.GetRecent(2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "third", recent[0].Name)
		assert.Equal(t, "second", recent[1].Name)
	})
}
