package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/classboard/classboard/internal/data/database"
	"github.com/classboard/classboard/internal/data/pgxutil"
	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
)

// AssignmentRepo provides database operations for assignments.
type AssignmentRepo struct {
	DB    *sql.DB
	clock Clock
}

// NewAssignmentRepo creates a new AssignmentRepo stamping rows with the system clock.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo {
	return &AssignmentRepo{DB: db, clock: systemClock{}}
}

// NewAssignmentRepoWithClock creates a new AssignmentRepo with an injected
// clock so tests can pin row timestamps.
func NewAssignmentRepoWithClock(db *sql.DB, clock Clock) *AssignmentRepo {
	return &AssignmentRepo{DB: db, clock: clock}
}

// Create inserts a new assignment.
func (r *AssignmentRepo) Create(
	ctx context.Context,
	req *model.CreateAssignmentRequest,
) (*model.Assignment, error) {
	if req == nil {
		return nil, errors.New("create assignment request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	createdAt := r.clock.Now().UTC()
	var out model.Assignment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO assignments (
				id, author_id, type, status, title, content, points, due_at, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $9
			) RETURNING id, author_id, type, status, title, content, points, due_at, created_at, updated_at
		`,
			uuid.NewString(),
			req.AuthorID,
			req.Type,
			req.Status,
			req.Title,
			req.Content,
			req.Points,
			req.DueAt.UTC(),
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Assignment])
		return err
	}); err != nil {
		return nil, r.mapWriteErr(err, false)
	}
	return &out, nil
}

// GetByID retrieves an assignment by ID, joined with its author's display fields.
func (r *AssignmentRepo) GetByID(ctx context.Context, id string) (*model.AssignmentWithAuthor, error) {
	var out model.AssignmentWithAuthor
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, assignmentGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.AssignmentWithAuthor])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment by ID: %w", err)
	}
	return &out, nil
}

// List retrieves a page of assignments plus the total number of rows matching
// the filter. The owner predicate (AuthorID) and the keyword predicate
// combine with AND; the keyword spans title, content, and the author's
// name/username as OR'd ILIKE matches. Count and page fetch run as two
// independent queries; a transient mismatch under concurrent writes is
// acceptable for this read path.
func (r *AssignmentRepo) List(
	ctx context.Context,
	opts model.AssignmentsListOptions,
) ([]*model.AssignmentWithAuthor, int, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	conditions := assignmentListConditions(opts)
	base := []database.ListQueryOption{
		database.WithTableAlias("a"),
		database.WithJoin("JOIN users u ON u.id = a.author_id"),
		database.WithConditions(conditions...),
	}

	countQuery, countArgs := database.BuildListQuery(database.NewListQueryOptions("assignments",
		append([]database.ListQueryOption{database.WithCountOnly()}, base...)...,
	))

	listOpts := append([]database.ListQueryOption{
		database.WithColumns(assignmentColumns()...),
		database.WithOrderBy("a.created_at", "DESC"),
		database.WithOrderBy("a.id", "ASC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}, base...)
	listQuery, listArgs := database.BuildListQuery(database.NewListQueryOptions("assignments", listOpts...))

	var (
		total   int
		rowsOut []model.AssignmentWithAuthor
	)
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		if err := conn.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return err
		}
		rows, err := conn.Query(ctx, listQuery, listArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.AssignmentWithAuthor])
		return err
	}); err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}

	res := make([]*model.AssignmentWithAuthor, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, total, nil
}

// Update updates fields of an assignment.
func (r *AssignmentRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateAssignmentRequest,
) (*model.Assignment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Assignment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(req)
		args = append(args, id)
		query := "UPDATE assignments SET " + setClause + " WHERE id = $" + strconv.Itoa(len(args)) +
			" RETURNING id, author_id, type, status, title, content, points, due_at, created_at, updated_at"
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Assignment])
		return e
	})
	if err != nil {
		return nil, r.mapWriteErr(err, true)
	}
	return &out, nil
}

// buildUpdateClause builds the SQL SET clause and args for updating an assignment.
func (r *AssignmentRepo) buildUpdateClause(req model.UpdateAssignmentRequest) (string, []any) {
	setParts := make([]string, 0, 7)
	args := make([]any, 0, 8)
	nextIdx := func() int { return len(args) + 1 }

	if req.Type != nil {
		setParts = append(setParts, fmt.Sprintf("type = $%d", nextIdx()))
		args = append(args, *req.Type)
	}
	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", nextIdx()))
		args = append(args, *req.Status)
	}
	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Content != nil {
		setParts = append(setParts, fmt.Sprintf("content = $%d", nextIdx()))
		args = append(args, *req.Content)
	}
	if req.Points != nil {
		setParts = append(setParts, fmt.Sprintf("points = $%d", nextIdx()))
		args = append(args, *req.Points)
	}
	if req.DueAt != nil {
		setParts = append(setParts, fmt.Sprintf("due_at = $%d", nextIdx()))
		args = append(args, req.DueAt.UTC())
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.clock.Now().UTC())

	return strings.Join(setParts, ", "), args
}

// Delete deletes an assignment by ID.
func (r *AssignmentRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete assignment: %w", err)
	}
	return rows > 0, nil
}

// --- helpers ---

const assignmentGetByIDQuery = `
	SELECT a.id, a.author_id, a.type, a.status, a.title, a.content, a.points, a.due_at,
	       a.created_at, a.updated_at, u.name AS author_name, u.username AS author_username
	FROM assignments a
	JOIN users u ON u.id = a.author_id
	WHERE a.id = $1`

// assignmentColumns returns the standard column list for joined assignment queries.
func assignmentColumns() []string {
	return []string{
		"a.id",
		"a.author_id",
		"a.type",
		"a.status",
		"a.title",
		"a.content",
		"a.points",
		"a.due_at",
		"a.created_at",
		"a.updated_at",
		"u.name AS author_name",
		"u.username AS author_username",
	}
}

// assignmentListConditions builds the shared WHERE conditions for the count
// and page-fetch queries.
func assignmentListConditions(opts model.AssignmentsListOptions) []database.Condition {
	conditions := []database.Condition{}
	if opts.AuthorID != nil && strings.TrimSpace(*opts.AuthorID) != "" {
		conditions = append(conditions, database.WhereCond(
			"a.author_id", database.Equal, strings.TrimSpace(*opts.AuthorID),
		))
	}
	if opts.Status != nil && opts.Status.Valid() {
		conditions = append(conditions, database.WhereCond(
			"a.status", database.Equal, *opts.Status,
		))
	}
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		pattern := "%" + strings.TrimSpace(*opts.Q) + "%"
		conditions = append(conditions, database.WhereRawCond(
			"(a.title ILIKE $1 OR a.content ILIKE $1 OR u.name ILIKE $1 OR u.username ILIKE $1)",
			pattern,
		))
	}
	return conditions
}

// mapWriteErr translates driver errors on the write path through the shared
// SQLSTATE mapping, so constraint violations surface as typed application
// errors instead of opaque driver failures.
func (r *AssignmentRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrAssignmentNotFound
	}
	return apperrors.MapDBError(err)
}
