package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Service is the business-logic contract for clients.
type Service interface {
	Create(ctx context.Context, req *CreateClientRequest) (*ClientResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error)
	List(ctx context.Context, req ListClientsRequest) ([]ClientResponse, *PaginationMeta, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateClientRequest) (*ClientResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ExportToExcel builds a spreadsheet of the (filtered) roster.
	ExportToExcel(ctx context.Context, req ListClientsRequest) (*excelize.File, error)
}
