package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	cl "coachhub-backend/internal/domains/client"
)

const clientColumns = `id, full_name, email, phone, goals, injuries, equipment, notes, session_rate, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) cl.Repository {
	return &postgresRepository{
		pool: pool,
	}
}

func scanClient(row pgx.Row) (*cl.Client, error) {
	var c cl.Client
	err := row.Scan(
		&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Goals, &c.Injuries,
		&c.Equipment, &c.Notes, &c.SessionRate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new client record.
func (r *postgresRepository) Create(ctx context.Context, c *cl.Client) (*cl.Client, error) {
	query := `
    INSERT INTO clients
    (full_name, email, phone, goals, injuries, equipment, notes, session_rate, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
    RETURNING ` + clientColumns

	row := r.pool.QueryRow(
		ctx, query,
		c.FullName, c.Email, c.Phone, c.Goals, c.Injuries,
		c.Equipment, c.Notes, c.SessionRate,
	)

	created, err := scanClient(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, cl.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create client: %w", err)
	}

	return created, nil
}

// GetByID retrieves a client by ID.
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*cl.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	c, err := scanClient(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cl.ErrClientNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}

	return c, nil
}

// List retrieves a page of clients plus the total count.
func (r *postgresRepository) List(ctx context.Context, filter *cl.ClientFilter) ([]cl.Client, int64, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions,
			fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clients"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	// Sort column is whitelisted, never interpolated from user input.
	orderBy := "created_at DESC"
	switch filter.Sort {
	case "name":
		orderBy = "full_name ASC"
	case "name_desc":
		orderBy = "full_name DESC"
	case "oldest":
		orderBy = "created_at ASC"
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM clients%s ORDER BY %s LIMIT $%d OFFSET $%d",
		clientColumns, where, orderBy, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []cl.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}

	return clients, total, nil
}

// Update overwrites a client record.
func (r *postgresRepository) Update(ctx context.Context, c *cl.Client) (*cl.Client, error) {
	query := `
    UPDATE clients
    SET full_name = $2, email = $3, phone = $4, goals = $5, injuries = $6,
        equipment = $7, notes = $8, session_rate = $9, updated_at = NOW()
    WHERE id = $1
    RETURNING ` + clientColumns

	row := r.pool.QueryRow(
		ctx, query,
		c.ID, c.FullName, c.Email, c.Phone, c.Goals, c.Injuries,
		c.Equipment, c.Notes, c.SessionRate,
	)

	updated, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cl.ErrClientNotFound
		}
		if isUniqueViolation(err) {
			return nil, cl.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update client: %w", err)
	}

	return updated, nil
}

// Delete removes a client record.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cl.ErrClientNotFound
	}
	return nil
}

// BatchCreate inserts many clients in a single round trip using pgx batching.
// A pgx batch runs in one implicit transaction, so a raised error would abort
// every later statement; duplicates are therefore absorbed with ON CONFLICT
// DO NOTHING and detected through the affected-row count, which keeps each
// record's outcome independent.
func (r *postgresRepository) BatchCreate(ctx context.Context, clients []*cl.Client) (int, []cl.BatchItemError, error) {
	if len(clients) == 0 {
		return 0, nil, nil
	}

	query := `
    INSERT INTO clients
    (full_name, email, phone, goals, injuries, equipment, notes, session_rate, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
    ON CONFLICT (email) DO NOTHING`

	batch := &pgx.Batch{}
	for _, c := range clients {
		batch.Queue(query,
			c.FullName, c.Email, c.Phone, c.Goals, c.Injuries,
			c.Equipment, c.Notes, c.SessionRate,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	created, itemErrs := collectBatchResults(results, len(clients))
	return created, itemErrs, nil
}

// collectBatchResults drains one Exec result per queued insert. A raised
// error aborts the implicit transaction, which also rolls back the inserts
// that already succeeded, so every record in the batch gets an error entry
// and the created count resets to zero.
func collectBatchResults(results pgx.BatchResults, total int) (int, []cl.BatchItemError) {
	created := 0
	var itemErrs []cl.BatchItemError
	for i := 0; i < total; i++ {
		tag, err := results.Exec()
		if err != nil {
			itemErrs = itemErrs[:0]
			for j := 0; j < total; j++ {
				itemErrs = append(itemErrs, cl.BatchItemError{Index: j, Message: "insert failed"})
			}
			return 0, itemErrs
		}
		if tag.RowsAffected() == 0 {
			itemErrs = append(itemErrs, cl.BatchItemError{Index: i, Message: "email already exists"})
			continue
		}
		created++
	}

	return created, itemErrs
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
