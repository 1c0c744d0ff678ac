package client

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the data-access contract for clients.
type Repository interface {
	Create(ctx context.Context, c *Client) (*Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context, filter *ClientFilter) ([]Client, int64, error)
	Update(ctx context.Context, c *Client) (*Client, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// BatchCreate inserts many clients in one round trip (pgx batch).
	// Returns the number created plus a per-record error list; a failing
	// record (e.g. duplicate email) does not abort the rest of the batch.
	BatchCreate(ctx context.Context, clients []*Client) (int, []BatchItemError, error)
}
