package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/delgists/internal/errors"
	"github.com/hpungsan/delgists/internal/gist"
)

// Deletion is one journal entry for a gist deleted through delgists.
type Deletion struct {
	ID        string `json:"id"`
	GistID    string `json:"gist_id"`
	Label     string `json:"label"`
	HTMLURL   string `json:"html_url"`
	Public    bool   `json:"public"`
	FileCount int    `json:"file_count"`
	APIRoot   string `json:"api_root"`
	DeletedAt int64  `json:"deleted_at"`
}

// NewDeletion builds a journal entry for g with a fresh ULID.
func NewDeletion(g gist.Gist, apiRoot string, at time.Time) Deletion {
	return Deletion{
		ID:        ulid.MustNew(ulid.Timestamp(at), rand.Reader).String(),
		GistID:    g.ID,
		Label:     g.Label(),
		HTMLURL:   g.HTMLURL,
		Public:    g.Public,
		FileCount: len(g.Files),
		APIRoot:   apiRoot,
		DeletedAt: at.Unix(),
	}
}

// RecordDeletions inserts entries in a single transaction.
func RecordDeletions(ctx context.Context, db *sql.DB, entries []Deletion) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO deletions (id, gist_id, label, html_url, public, file_count, api_root, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for _, d := range entries {
		if _, err := stmt.ExecContext(ctx, d.ID, d.GistID, d.Label, d.HTMLURL, boolToInt(d.Public), d.FileCount, d.APIRoot, d.DeletedAt); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListDeletions returns journal entries, newest first.
func ListDeletions(ctx context.Context, db *sql.DB, limit, offset int) ([]Deletion, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, gist_id, label, html_url, public, file_count, api_root, deleted_at
		FROM deletions
		ORDER BY deleted_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []Deletion
	for rows.Next() {
		var d Deletion
		var public int
		if err := rows.Scan(&d.ID, &d.GistID, &d.Label, &d.HTMLURL, &public, &d.FileCount, &d.APIRoot, &d.DeletedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		d.Public = public != 0
		entries = append(entries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return entries, nil
}

// CountDeletions returns the number of journal entries.
func CountDeletions(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM deletions").Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
