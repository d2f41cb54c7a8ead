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
	"github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/domain/model"
	apperrors "github.com/classboard/classboard/internal/errors"
)

// CreateUserParams carries store-level parameters for inserting a user.
// PasswordHash is the already-derived credential hash; plaintext never
// reaches this layer.
type CreateUserParams struct {
	Name         string
	Username     string
	Role         auth.Role
	PasswordHash string
}

// UpdateUserParams carries store-level parameters for updating a user.
// Nil fields are left untouched.
type UpdateUserParams struct {
	Name         *string
	Username     *string
	Role         *auth.Role
	PasswordHash *string
}

// HasUpdates reports whether any field is set.
func (p UpdateUserParams) HasUpdates() bool {
	return p.Name != nil || p.Username != nil || p.Role != nil || p.PasswordHash != nil
}

// UserRepo provides database operations for users.
type UserRepo struct {
	DB    *sql.DB
	clock Clock
}

// NewUserRepo creates a new UserRepo stamping rows with the system clock.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, clock: systemClock{}}
}

// NewUserRepoWithClock creates a new UserRepo with an injected clock so tests
// can pin row timestamps.
func NewUserRepoWithClock(db *sql.DB, clock Clock) *UserRepo {
	return &UserRepo{DB: db, clock: clock}
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, params CreateUserParams) (*model.User, error) {
	if strings.TrimSpace(params.Username) == "" {
		return nil, errors.New("username is required")
	}
	if params.PasswordHash == "" {
		return nil, errors.New("password hash is required")
	}

	createdAt := r.clock.Now().UTC()
	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (
				id, name, username, role, password_hash, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $6
			) RETURNING id, name, username, role, password_hash, created_at, updated_at
		`,
			uuid.NewString(),
			strings.TrimSpace(params.Name),
			strings.TrimSpace(params.Username),
			params.Role,
			params.PasswordHash,
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, r.mapWriteErr(err, false)
	}
	return &out, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByIDQuery, "failed to get user by ID", id)
}

// GetByUsername retrieves a user by exact username match. The lookup is
// case-sensitive, matching the uniqueness constraint.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByUsernameQuery, "failed to get user by username", username)
}

// List retrieves a page of users plus the total number of rows matching the
// filter. Count and page fetch run as two independent queries; a transient
// mismatch under concurrent writes is acceptable for this read path.
func (r *UserRepo) List(ctx context.Context, opts model.UsersListOptions) ([]*model.User, int, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	conditions := userListConditions(opts)

	countQuery, countArgs := database.BuildListQuery(database.NewListQueryOptions("users",
		database.WithCountOnly(),
		database.WithConditions(conditions...),
	))

	listQuery, listArgs := database.BuildListQuery(database.NewListQueryOptions("users",
		database.WithColumns(userColumns()...),
		database.WithConditions(conditions...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithOrderBy("id", "ASC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	))

	var (
		total   int
		rowsOut []model.User
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
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	res := make([]*model.User, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, total, nil
}

// Update updates fields of a user.
func (r *UserRepo) Update(ctx context.Context, id string, params UpdateUserParams) (*model.User, error) {
	if !params.HasUpdates() {
		return r.GetByID(ctx, id)
	}

	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(params)
		args = append(args, id)
		query := "UPDATE users SET " + setClause + " WHERE id = $" + strconv.Itoa(len(args)) +
			" RETURNING id, name, username, role, password_hash, created_at, updated_at"
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return e
	})
	if err != nil {
		return nil, r.mapWriteErr(err, true)
	}
	return &out, nil
}

// buildUpdateClause builds the SQL SET clause and args for updating a user.
func (r *UserRepo) buildUpdateClause(params UpdateUserParams) (string, []any) {
	setParts := make([]string, 0, 5)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if params.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*params.Name))
	}
	if params.Username != nil {
		setParts = append(setParts, fmt.Sprintf("username = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*params.Username))
	}
	if params.Role != nil {
		setParts = append(setParts, fmt.Sprintf("role = $%d", nextIdx()))
		args = append(args, *params.Role)
	}
	if params.PasswordHash != nil {
		setParts = append(setParts, fmt.Sprintf("password_hash = $%d", nextIdx()))
		args = append(args, *params.PasswordHash)
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.clock.Now().UTC())

	return strings.Join(setParts, ", "), args
}

// Delete deletes a user by ID. Assignments authored by the user are removed
// by the ON DELETE CASCADE on assignments.author_id.
func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return rows > 0, nil
}

// --- helpers ---

// SQL query constants for static queries (no dynamic WHERE/ORDER BY).
const (
	userGetByIDQuery = `
		SELECT id, name, username, role, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1`

	userGetByUsernameQuery = `
		SELECT id, name, username, role, password_hash, created_at, updated_at
		FROM users
		WHERE username = $1`
)

// userColumns returns the standard column list for user queries.
func userColumns() []string {
	return []string{
		"id",
		"name",
		"username",
		"role",
		"password_hash",
		"created_at",
		"updated_at",
	}
}

// userListConditions builds the shared WHERE conditions for the count and
// page-fetch queries. The keyword matches name or username as a
// case-insensitive substring.
func userListConditions(opts model.UsersListOptions) []database.Condition {
	conditions := []database.Condition{}
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		pattern := "%" + strings.TrimSpace(*opts.Q) + "%"
		conditions = append(conditions, database.WhereRawCond(
			"(name ILIKE $1 OR username ILIKE $1)", pattern,
		))
	}
	return conditions
}

// getByQuery is a helper function to execute a query and return a single user.
func (r *UserRepo) getByQuery(
	ctx context.Context,
	q string,
	errMsg string,
	args ...any,
) (*model.User, error) {
	var user model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return &user, nil
}

// mapWriteErr translates driver errors on the write path through the shared
// SQLSTATE mapping. Unique violations additionally carry the ErrUsernameExists
// sentinel so callers can branch on it.
func (r *UserRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	mapped := apperrors.MapDBError(err)
	if apperrors.IsConflict(mapped) {
		return fmt.Errorf("%w: %w", ErrUsernameExists, mapped)
	}
	return mapped
}
