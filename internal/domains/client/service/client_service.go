package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	cl "coachhub-backend/internal/domains/client"
	"coachhub-backend/pkg/cache"
	"coachhub-backend/pkg/logger"
)

const listCacheTTL = 10 * time.Minute

type clientService struct {
	repo  cl.Repository
	cache cache.Cache
}

func NewClientService(repo cl.Repository, cache cache.Cache) cl.Service {
	return &clientService{
		repo:  repo,
		cache: cache,
	}
}

func (s *clientService) Create(ctx context.Context, req *cl.CreateClientRequest) (*cl.ClientResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("create client: invalid request")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	entity, err := cl.FromCreateRequest(req)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)

	return cl.ToResponse(created), nil
}

func (s *clientService) GetByID(ctx context.Context, id uuid.UUID) (*cl.ClientResponse, error) {
	if id == uuid.Nil {
		return nil, cl.ErrInvalidClientID
	}

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return cl.ToResponse(entity), nil
}

func (s *clientService) List(ctx context.Context, req cl.ListClientsRequest) ([]cl.ClientResponse, *cl.PaginationMeta, error) {
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Page < 1 {
		req.Page = 1
	}

	type listCache struct {
		Data       []cl.ClientResponse `json:"data"`
		Pagination cl.PaginationMeta   `json:"pagination"`
	}
	var cached listCache

	cacheKey := listCacheKey(req)
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		// Cache failures degrade to a DB query, never to a request failure.
		logger.Error("client list cache get failed", err)
	}
	if found {
		return cached.Data, &cached.Pagination, nil
	}

	filter := &cl.ClientFilter{
		Search: req.Search,
		Sort:   req.Sort,
		Offset: (req.Page - 1) * req.Limit,
		Limit:  req.Limit,
	}

	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("list clients: %w", err)
	}

	responses := make([]cl.ClientResponse, len(clients))
	for i := range clients {
		responses[i] = *cl.ToResponse(&clients[i])
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	meta := &cl.PaginationMeta{
		Page:      req.Page,
		PageSize:  req.Limit,
		Total:     total,
		TotalPage: totalPages,
	}

	if err := s.cache.Set(ctx, cacheKey, listCache{Data: responses, Pagination: *meta}, listCacheTTL); err != nil {
		logger.Error("client list cache set failed", err)
	}

	return responses, meta, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req *cl.UpdateClientRequest) (*cl.ClientResponse, error) {
	if id == uuid.Nil {
		return nil, cl.ErrInvalidClientID
	}
	if req == nil {
		return nil, fmt.Errorf("update client: invalid request")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Partial update: only provided fields are overwritten.
	if req.FullName != nil {
		entity.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		entity.Email = req.Email
	}
	if req.Phone != nil {
		entity.Phone = req.Phone
	}
	if req.Goals != nil {
		entity.Goals = req.Goals
	}
	if req.Injuries != nil {
		entity.Injuries = req.Injuries
	}
	if req.Equipment != nil {
		entity.Equipment = pq.StringArray(*req.Equipment)
	}
	if req.Notes != nil {
		entity.Notes = req.Notes
	}
	if req.SessionRate != nil {
		rate, err := decimal.NewFromString(*req.SessionRate)
		if err != nil {
			return nil, cl.NewValidationError("session_rate", "must be a decimal number")
		}
		entity.SessionRate = rate
	}

	updated, err := s.repo.Update(ctx, entity)
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)

	return cl.ToResponse(updated), nil
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return cl.ErrInvalidClientID
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateListCache(ctx)
	return nil
}

// exportLimit caps how many rows one export query pulls. Exports bypass
// the list cache and its page-size clamp.
const exportLimit = 1000

// ExportToExcel builds a roster workbook for download.
func (s *clientService) ExportToExcel(ctx context.Context, req cl.ListClientsRequest) (*excelize.File, error) {
	filter := &cl.ClientFilter{
		Search: req.Search,
		Sort:   req.Sort,
		Limit:  exportLimit,
	}

	clients, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	responses := make([]cl.ClientResponse, len(clients))
	for i := range clients {
		responses[i] = *cl.ToResponse(&clients[i])
	}

	f, err := buildRosterFile(responses)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}

	return f, nil
}

func buildRosterFile(clients []cl.ClientResponse) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "Client roster"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{
		"ID",
		"Full Name",
		"Email",
		"Phone",
		"Goals",
		"Injuries",
		"Equipment",
		"Notes",
		"Session Rate",
		"Created At",
	}

	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	if err == nil {
		f.SetCellStyle(sheetName, "A1", "J1", headerStyle)
	}

	for i, c := range clients {
		rowNum := i + 2

		cellAt := func(col int) string {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			return cell
		}

		f.SetCellValue(sheetName, cellAt(1), c.ID.String())
		f.SetCellValue(sheetName, cellAt(2), c.FullName)
		f.SetCellValue(sheetName, cellAt(3), deref(c.Email))
		f.SetCellValue(sheetName, cellAt(4), deref(c.Phone))
		f.SetCellValue(sheetName, cellAt(5), deref(c.Goals))
		f.SetCellValue(sheetName, cellAt(6), deref(c.Injuries))
		f.SetCellValue(sheetName, cellAt(7), strings.Join(c.Equipment, ", "))
		f.SetCellValue(sheetName, cellAt(8), deref(c.Notes))
		f.SetCellValue(sheetName, cellAt(9), c.SessionRate.InexactFloat64())
		f.SetCellValue(sheetName, cellAt(10), c.CreatedAt.Format(time.RFC3339))
	}

	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func listCacheKey(req cl.ListClientsRequest) string {
	return fmt.Sprintf("clients:list:%s:%s:%d:%d", req.Search, req.Sort, req.Page, req.Limit)
}

func (s *clientService) invalidateListCache(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "clients:list:*"); err != nil {
		logger.Error("client list cache invalidation failed", err)
	}
}
