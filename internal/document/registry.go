package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikhilbhutani/docchat/internal/models"
)

var (
	ErrDuplicateName       = errors.New("document with the same name already exists")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// DeleteReason explains why a delete did not remove anything.
type DeleteReason string

const (
	ReasonDocumentInUse DeleteReason = "DocumentInUse"
	ReasonNotFound      DeleteReason = "NotFound"
)

// DeleteResult is a soft outcome: a refused delete is not an error.
type DeleteResult struct {
	Removed bool         `json:"removed"`
	Name    string       `json:"name,omitempty"`
	Reason  DeleteReason `json:"reason,omitempty"`
	Message string       `json:"message"`
}

// Registry is the durable catalog of uploaded documents and their activation flag.
type Registry interface {
	Register(ctx context.Context, name string) (*models.Document, error)
	NameExists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]models.Document, error)
	ListActive(ctx context.Context) ([]models.Document, error)
	// SetActive marks exactly ids as active and every other document inactive.
	SetActive(ctx context.Context, ids []int64) error
	Delete(ctx context.Context, id int64) (*DeleteResult, error)
}

const pgUniqueViolation = "23505"

type PgRegistry struct {
	db *pgxpool.Pool
}

func NewPgRegistry(db *pgxpool.Pool) *PgRegistry {
	return &PgRegistry{db: db}
}

func (r *PgRegistry) Register(ctx context.Context, name string) (*models.Document, error) {
	var doc models.Document
	err := r.db.QueryRow(ctx,
		`INSERT INTO documents (name) VALUES ($1)
		 RETURNING id, name, is_active, uploaded_at`,
		name,
	).Scan(&doc.ID, &doc.Name, &doc.IsActive, &doc.UploadedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return &doc, nil
}

func (r *PgRegistry) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM documents WHERE name = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check document name: %w", err)
	}
	return exists, nil
}

func (r *PgRegistry) List(ctx context.Context) ([]models.Document, error) {
	return r.query(ctx, `SELECT id, name, is_active, uploaded_at FROM documents ORDER BY id`)
}

func (r *PgRegistry) ListActive(ctx context.Context) ([]models.Document, error) {
	return r.query(ctx, `SELECT id, name, is_active, uploaded_at FROM documents WHERE is_active ORDER BY id`)
}

func (r *PgRegistry) query(ctx context.Context, sql string) ([]models.Document, error) {
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Name, &d.IsActive, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *PgRegistry) SetActive(ctx context.Context, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// One statement flips every row, so no reader sees a half-applied set.
	if _, err := tx.Exec(ctx,
		`UPDATE documents SET is_active = COALESCE(id = ANY($1), FALSE)`,
		ids,
	); err != nil {
		return fmt.Errorf("set active documents: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit activation: %w", err)
	}
	return nil
}

func (r *PgRegistry) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		name   string
		active bool
	)
	err = tx.QueryRow(ctx,
		`SELECT name, is_active FROM documents WHERE id = $1 FOR UPDATE`, id,
	).Scan(&name, &active)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFoundResult(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	if active {
		return inUseResult(id, name), nil
	}

	if _, err := tx.Exec(ctx, "DELETE FROM documents WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit delete: %w", err)
	}

	return &DeleteResult{
		Removed: true,
		Name:    name,
		Message: fmt.Sprintf("Document with ID %d has been deleted.", id),
	}, nil
}

func notFoundResult(id int64) *DeleteResult {
	return &DeleteResult{
		Reason:  ReasonNotFound,
		Message: fmt.Sprintf("Document with ID %d not found.", id),
	}
}

func inUseResult(id int64, name string) *DeleteResult {
	return &DeleteResult{
		Name:    name,
		Reason:  ReasonDocumentInUse,
		Message: fmt.Sprintf("Document with ID %d is currently being used as context, can't delete.", id),
	}
}
