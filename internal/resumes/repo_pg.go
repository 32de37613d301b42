package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres. Profile and free-form fields live in
// JSONB columns; keyword search runs over a GIN-indexed text column.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, profile, fields, file_url, storage_id, extracted_text, search_text, created_at, updated_at`

// Create inserts a new resume.
func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (id, profile, fields, file_url, storage_id, extracted_text, search_text, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	profileJSON, err := json.Marshal(res.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	fieldsJSON, err := marshalFields(res.Fields)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		profileJSON,
		fieldsJSON,
		res.ResumePDF.FileURL,
		res.ResumePDF.StorageID,
		res.ExtractedText,
		res.SearchText,
		res.CreatedAt,
		res.UpdatedAt,
	)
	return err
}

// GetByID returns a resume by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	return scanResume(r.DB.QueryRowContext(ctx, query, id))
}

// UpdateByID merges the patch into the stored JSONB documents and returns the
// updated record. The id and the blob reference are immutable.
func (r *PGRepo) UpdateByID(ctx context.Context, id string, patch Patch) (Resume, error) {
	query := `
UPDATE resumes
SET profile = profile || $2, fields = fields || $3, updated_at = $4
WHERE id = $1
RETURNING ` + resumeColumns

	profileJSON, err := marshalFields(patch.Profile)
	if err != nil {
		return Resume{}, err
	}
	fieldsJSON, err := marshalFields(patch.Fields)
	if err != nil {
		return Resume{}, err
	}

	return scanResume(r.DB.QueryRowContext(ctx, query, id, profileJSON, fieldsJSON, time.Now().UTC()))
}

// UpdateSearchText replaces the derived search text for a resume.
func (r *PGRepo) UpdateSearchText(ctx context.Context, id string, text string) error {
	const query = `UPDATE resumes SET search_text = $2 WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id, text)
	return err
}

// DeleteByID removes a resume and returns its prior state so the caller can
// clean up the associated blob.
func (r *PGRepo) DeleteByID(ctx context.Context, id string) (Resume, error) {
	query := `DELETE FROM resumes WHERE id = $1 RETURNING ` + resumeColumns
	return scanResume(r.DB.QueryRowContext(ctx, query, id))
}

// ListAll returns every resume, newest first.
func (r *PGRepo) ListAll(ctx context.Context) ([]Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResumes(rows)
}

// Search returns one page of resumes. Empty keywords match everything; a
// non-empty keyword list runs a full-text match with the keywords joined by a
// single space, ordered by relevance.
func (r *PGRepo) Search(ctx context.Context, page, limit int, keywords []string) (SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	var (
		items      []Resume
		totalCount int
	)

	if len(keywords) == 0 {
		query := `SELECT ` + resumeColumns + ` FROM resumes ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		rows, err := r.DB.QueryContext(ctx, query, limit, offset)
		if err != nil {
			return SearchResult{}, err
		}
		defer rows.Close()
		if items, err = collectResumes(rows); err != nil {
			return SearchResult{}, err
		}
		if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes`).Scan(&totalCount); err != nil {
			return SearchResult{}, err
		}
	} else {
		phrase := strings.Join(keywords, " ")
		query := `
SELECT ` + resumeColumns + `
FROM resumes
WHERE to_tsvector('english', search_text) @@ plainto_tsquery('english', $1)
ORDER BY ts_rank(to_tsvector('english', search_text), plainto_tsquery('english', $1)) DESC
LIMIT $2 OFFSET $3`
		rows, err := r.DB.QueryContext(ctx, query, phrase, limit, offset)
		if err != nil {
			return SearchResult{}, err
		}
		defer rows.Close()
		if items, err = collectResumes(rows); err != nil {
			return SearchResult{}, err
		}
		countQuery := `
SELECT COUNT(*) FROM resumes
WHERE to_tsvector('english', search_text) @@ plainto_tsquery('english', $1)`
		if err := r.DB.QueryRowContext(ctx, countQuery, phrase).Scan(&totalCount); err != nil {
			return SearchResult{}, err
		}
	}

	return SearchResult{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages(totalCount, limit),
		TotalCount:  totalCount,
	}, nil
}

func totalPages(totalCount, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (totalCount + limit - 1) / limit
}

func marshalFields(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return data, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		res         Resume
		profileJSON []byte
		fieldsJSON  []byte
	)
	err := row.Scan(
		&res.ID,
		&profileJSON,
		&fieldsJSON,
		&res.ResumePDF.FileURL,
		&res.ResumePDF.StorageID,
		&res.ExtractedText,
		&res.SearchText,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &res.Profile); err != nil {
			return Resume{}, fmt.Errorf("unmarshal profile: %w", err)
		}
	}
	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &res.Fields); err != nil {
			return Resume{}, fmt.Errorf("unmarshal fields: %w", err)
		}
	}
	return res, nil
}

func collectResumes(rows *sql.Rows) ([]Resume, error) {
	var out []Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
