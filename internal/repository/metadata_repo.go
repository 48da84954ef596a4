package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leowang/graph-approvals/internal/models"
	"github.com/leowang/graph-approvals/pkg/database"
)

// ErrNotFound signals a patch against an approval id with no stored
// document. Absence on Get is not an error; Get returns nil instead.
var ErrNotFound = errors.New("metadata not found")

// ListFilter narrows List to documents created by one user. Zero value
// matches everything.
type ListFilter struct {
	CreatorEmail string
}

// MetadataRepository stores approval metadata documents, one JSON document
// per approval id. The creator email is extracted into its own column so
// the list filter stays a plain equality predicate.
type MetadataRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewMetadataRepository creates a new metadata repository.
func NewMetadataRepository(db *database.DB, logger *zap.Logger) *MetadataRepository {
	return &MetadataRepository{
		db:     db,
		logger: logger,
	}
}

// Save upserts the document for an approval id and stamps updatedAt.
func (r *MetadataRepository) Save(meta *models.ApprovalMetadata) (*models.ApprovalMetadata, error) {
	if meta.ApprovalID == "" {
		return nil, fmt.Errorf("approval id is required")
	}
	meta.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata document: %w", err)
	}

	query := `
		INSERT INTO approval_metadata (approval_id, creator_email, document, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(approval_id) DO UPDATE SET
			creator_email = excluded.creator_email,
			document = excluded.document,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, meta.ApprovalID, meta.CreatorEmail, string(doc), meta.UpdatedAt); err != nil {
		r.logger.Error("Failed to save metadata",
			zap.String("approval_id", meta.ApprovalID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	r.logger.Debug("Metadata saved", zap.String("approval_id", meta.ApprovalID))
	return meta, nil
}

// Get returns the document for an approval id, or nil when none exists.
func (r *MetadataRepository) Get(approvalID string) (*models.ApprovalMetadata, error) {
	var doc string
	err := r.db.QueryRow(
		`SELECT document FROM approval_metadata WHERE approval_id = ?`,
		approvalID,
	).Scan(&doc)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get metadata",
			zap.String("approval_id", approvalID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	return decodeDocument(doc)
}

// List returns all documents matching the filter, in insertion order.
func (r *MetadataRepository) List(filter ListFilter) ([]*models.ApprovalMetadata, error) {
	query := `SELECT document FROM approval_metadata`
	args := []interface{}{}
	if filter.CreatorEmail != "" {
		query += ` WHERE creator_email = ?`
		args = append(args, filter.CreatorEmail)
	}
	query += ` ORDER BY rowid`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list metadata", zap.Error(err))
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	defer rows.Close()

	var results []*models.ApprovalMetadata
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		meta, err := decodeDocument(doc)
		if err != nil {
			return nil, err
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// Delete removes the document for an approval id. Idempotent; reports
// whether a document existed.
func (r *MetadataRepository) Delete(approvalID string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM approval_metadata WHERE approval_id = ?`, approvalID)
	if err != nil {
		r.logger.Error("Failed to delete metadata",
			zap.String("approval_id", approvalID),
			zap.Error(err))
		return false, fmt.Errorf("failed to delete metadata: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected > 0 {
		r.logger.Debug("Metadata deleted", zap.String("approval_id", approvalID))
	}
	return affected > 0, nil
}

// Patch shallow-merges fields into an existing document and re-stamps
// updatedAt. Fails with ErrNotFound when no document exists; a patch never
// creates one.
func (r *MetadataRepository) Patch(approvalID string, fields map[string]json.RawMessage) (*models.ApprovalMetadata, error) {
	var patched *models.ApprovalMetadata

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		var doc string
		err := tx.QueryRow(
			`SELECT document FROM approval_metadata WHERE approval_id = ?`,
			approvalID,
		).Scan(&doc)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read metadata for patch: %w", err)
		}

		var merged map[string]json.RawMessage
		if err := json.Unmarshal([]byte(doc), &merged); err != nil {
			return fmt.Errorf("failed to decode stored document: %w", err)
		}
		for k, v := range fields {
			merged[k] = v
		}

		now := time.Now().UTC()
		stamp, _ := json.Marshal(now)
		merged["updatedAt"] = stamp
		id, _ := json.Marshal(approvalID)
		merged["approvalId"] = id

		out, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("failed to encode patched document: %w", err)
		}

		meta, err := decodeDocument(string(out))
		if err != nil {
			return err
		}

		_, err = tx.Exec(
			`UPDATE approval_metadata SET creator_email = ?, document = ?, updated_at = ? WHERE approval_id = ?`,
			meta.CreatorEmail, string(out), now, approvalID,
		)
		if err != nil {
			return fmt.Errorf("failed to write patched metadata: %w", err)
		}

		patched = meta
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Metadata patched", zap.String("approval_id", approvalID))
	return patched, nil
}

func decodeDocument(doc string) (*models.ApprovalMetadata, error) {
	var meta models.ApprovalMetadata
	if err := json.Unmarshal([]byte(doc), &meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata document: %w", err)
	}
	return &meta, nil
}
