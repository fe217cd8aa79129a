// Package db records flash outcomes in SQLite.
package db

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/driveforge/multiflash/pkg/errors"
	_ "modernc.org/sqlite"
)

// Repository provides database operations for the flash history.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (and if necessary creates) the history database.
func NewRepository(dbPath string) (*Repository, error) {
	slog.Info("database_init", "db_path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		slog.Error("database_open_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to open database")
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		slog.Error("database_schema_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to create schema")
	}

	slog.Info("database_ready", "db_path", dbPath)
	return &Repository{db: db}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create inserts a new flash record, normally in the running state.
func (r *Repository) Create(f *Flash) error {
	slog.Info("database_create_flash", "device", f.DevicePath, "image", f.ImagePath, "status", f.Status)

	query := `
		INSERT INTO flashes (device_path, image_path, image_sha256, image_size, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		f.DevicePath, f.ImagePath, f.ImageSHA256, f.ImageSize, f.Status, f.ErrorMessage)
	if err != nil {
		slog.Error("database_insert_failed", "device", f.DevicePath, "error", err)
		return errors.Wrap(err, "failed to insert flash record")
	}

	id, err := result.LastInsertId()
	if err != nil {
		slog.Error("database_last_insert_id_failed", "device", f.DevicePath, "error", err)
		return errors.Wrap(err, "failed to get last insert id")
	}
	f.ID = id

	return nil
}

// Finish marks a flash record completed with its final status.
func (r *Repository) Finish(id int64, status, errorMessage string) error {
	slog.Info("database_finish_flash", "flash_id", id, "status", status)

	query := `
		UPDATE flashes
		SET status = ?, error_message = ?, finished_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query, status, errorMessage, id)
	if err != nil {
		slog.Error("database_finish_failed", "flash_id", id, "error", err)
		return errors.Wrap(err, "failed to finish flash record")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return fmt.Errorf("flash record not found: id=%d", id)
	}
	return nil
}

// List retrieves all flash records, newest first.
func (r *Repository) List() ([]*Flash, error) {
	query := `
		SELECT id, device_path, image_path, image_sha256, image_size, status,
		       error_message, started_at, finished_at
		FROM flashes ORDER BY started_at DESC, id DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		slog.Error("database_list_query_failed", "error", err)
		return nil, errors.Wrap(err, "failed to list flashes")
	}
	defer rows.Close()

	var flashes []*Flash
	for rows.Next() {
		var f Flash
		var errorMessage, finishedAt sql.NullString

		err := rows.Scan(
			&f.ID, &f.DevicePath, &f.ImagePath, &f.ImageSHA256, &f.ImageSize,
			&f.Status, &errorMessage, &f.StartedAt, &finishedAt)
		if err != nil {
			slog.Error("database_scan_row_failed", "error", err)
			return nil, errors.Wrap(err, "failed to scan row")
		}

		f.ErrorMessage = errorMessage.String
		f.FinishedAt = finishedAt.String
		flashes = append(flashes, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}

	slog.Info("database_list_complete", "flash_count", len(flashes))
	return flashes, nil
}
