package repositories

import (
	"database/sql"
	"time"

	"github.com/alimgiray/codenexus/internal/models"
)

type RepoCreationRepository struct {
	db *sql.DB
}

func NewRepoCreationRepository(db *sql.DB) *RepoCreationRepository {
	return &RepoCreationRepository{
		db: db,
	}
}

const repoCreationColumns = `id, name, is_private, status, error_kind, github_id, html_url, created_at, updated_at`

// Create inserts a new journal entry
func (r *RepoCreationRepository) Create(creation *models.RepoCreation) error {
	query := `
		INSERT INTO repo_creations (` + repoCreationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		creation.ID,
		creation.Name,
		creation.IsPrivate,
		creation.Status,
		creation.ErrorKind,
		creation.GithubID,
		creation.HTMLURL,
		creation.CreatedAt,
		creation.UpdatedAt,
	)
	return err
}

// GetByID retrieves a journal entry by ID
func (r *RepoCreationRepository) GetByID(id string) (*models.RepoCreation, error) {
	query := `SELECT ` + repoCreationColumns + ` FROM repo_creations WHERE id = ?`
	return scanRepoCreation(r.db.QueryRow(query, id))
}

// GetRecent retrieves the most recent journal entries, newest first
func (r *RepoCreationRepository) GetRecent(limit int) ([]*models.RepoCreation, error) {
	query := `SELECT ` + repoCreationColumns + ` FROM repo_creations ORDER BY created_at DESC, id LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	creations := make([]*models.RepoCreation, 0)
	for rows.Next() {
		creation, err := scanRepoCreation(rows)
		if err != nil {
			return nil, err
		}
		creations = append(creations, creation)
	}

	return creations, rows.Err()
}

// Update updates the outcome fields of a journal entry
func (r *RepoCreationRepository) Update(creation *models.RepoCreation) error {
	query := `
		UPDATE repo_creations
		SET status = ?, error_kind = ?, github_id = ?, html_url = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		creation.Status,
		creation.ErrorKind,
		creation.GithubID,
		creation.HTMLURL,
		creation.UpdatedAt,
		creation.ID,
	)
	return err
}

// DeleteOlderThan removes settled entries created before the cutoff.
// Ambiguous and pending entries are kept until they are reconciled.
func (r *RepoCreationRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	query := `DELETE FROM repo_creations WHERE created_at < ? AND status NOT IN (?, ?)`

	result, err := r.db.Exec(query, cutoff.UTC(), models.CreationStatusAmbiguous, models.CreationStatusPending)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepoCreation(row rowScanner) (*models.RepoCreation, error) {
	var creation models.RepoCreation
	var errorKind, htmlURL sql.NullString
	var githubID sql.NullInt64

	err := row.Scan(
		&creation.ID,
		&creation.Name,
		&creation.IsPrivate,
		&creation.Status,
		&errorKind,
		&githubID,
		&htmlURL,
		&creation.CreatedAt,
		&creation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if errorKind.Valid {
		creation.ErrorKind = &errorKind.String
	}
	if githubID.Valid {
		creation.GithubID = &githubID.Int64
	}
	if htmlURL.Valid {
		creation.HTMLURL = &htmlURL.String
	}

	return &creation, nil
}
