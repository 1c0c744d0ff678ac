package client

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ========================================
// CLIENT ENTITY (DB)
// ========================================

// Client is a coached person on a trainer's roster.
// Optional fields are pointers so "not provided" is distinguishable from
// the empty string; Equipment maps onto a text[] column.
type Client struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	FullName    string          `json:"full_name" db:"full_name"`
	Email       *string         `json:"email,omitempty" db:"email"`
	Phone       *string         `json:"phone,omitempty" db:"phone"`
	Goals       *string         `json:"goals,omitempty" db:"goals"`
	Injuries    *string         `json:"injuries,omitempty" db:"injuries"`
	Equipment   pq.StringArray  `json:"equipment" db:"equipment"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`
	SessionRate decimal.Decimal `json:"session_rate" db:"session_rate"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ========================================
// REQUEST DTOs
// ========================================

var phonePattern = regexp.MustCompile(`^[0-9+\-\s().]{6,20}$`)

type CreateClientRequest struct {
	FullName    string   `json:"full_name" binding:"required"`
	Email       *string  `json:"email,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Goals       *string  `json:"goals,omitempty"`
	Injuries    *string  `json:"injuries,omitempty"`
	Equipment   []string `json:"equipment,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	SessionRate *string  `json:"session_rate,omitempty"` // decimal string, e.g. "45.00"
}

func (r CreateClientRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName,
			validation.Required.Error("full name is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Email,
			validation.When(r.Email != nil && *r.Email != "",
				is.Email.Error("invalid email format"),
			),
		),
		validation.Field(&r.Phone,
			validation.When(r.Phone != nil && *r.Phone != "",
				validation.Match(phonePattern).Error("invalid phone number"),
			),
		),
	)
}

// UpdateClientRequest is a partial update: nil means "leave unchanged".
type UpdateClientRequest struct {
	FullName    *string   `json:"full_name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Goals       *string   `json:"goals,omitempty"`
	Injuries    *string   `json:"injuries,omitempty"`
	Equipment   *[]string `json:"equipment,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	SessionRate *string   `json:"session_rate,omitempty"`
}

func (r UpdateClientRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName,
			validation.When(r.FullName != nil,
				validation.Required.Error("full name must not be blank"),
				validation.Length(1, 255),
			),
		),
		validation.Field(&r.Email,
			validation.When(r.Email != nil && *r.Email != "",
				is.Email.Error("invalid email format"),
			),
		),
	)
}

type ListClientsRequest struct {
	Search string `form:"search"`
	Sort   string `form:"sort"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ClientFilter holds the query conditions handed to the repository.
type ClientFilter struct {
	Search string
	Sort   string
	Offset int
	Limit  int
}

// ========================================
// RESPONSE DTOs
// ========================================

type ClientResponse struct {
	ID          uuid.UUID       `json:"id"`
	FullName    string          `json:"full_name"`
	Email       *string         `json:"email,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Goals       *string         `json:"goals,omitempty"`
	Injuries    *string         `json:"injuries,omitempty"`
	Equipment   []string        `json:"equipment"`
	Notes       *string         `json:"notes,omitempty"`
	SessionRate decimal.Decimal `json:"session_rate"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type PaginationMeta struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"total_page"`
}

// BatchItemError reports one failed record inside a batch insert.
type BatchItemError struct {
	Index   int    `json:"index"` // position within the submitted batch
	Message string `json:"message"`
}

// ========================================
// MAPPING HELPERS
// ========================================

func ToResponse(c *Client) *ClientResponse {
	equipment := []string(c.Equipment)
	if equipment == nil {
		equipment = []string{}
	}

	return &ClientResponse{
		ID:          c.ID,
		FullName:    c.FullName,
		Email:       c.Email,
		Phone:       c.Phone,
		Goals:       c.Goals,
		Injuries:    c.Injuries,
		Equipment:   equipment,
		Notes:       c.Notes,
		SessionRate: c.SessionRate,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// FromCreateRequest builds a Client entity from a validated request.
func FromCreateRequest(req *CreateClientRequest) (*Client, error) {
	rate := decimal.Zero
	if req.SessionRate != nil && *req.SessionRate != "" {
		parsed, err := decimal.NewFromString(*req.SessionRate)
		if err != nil {
			return nil, NewValidationError("session_rate", "must be a decimal number")
		}
		rate = parsed
	}

	return &Client{
		FullName:    strings.TrimSpace(req.FullName),
		Email:       req.Email,
		Phone:       req.Phone,
		Goals:       req.Goals,
		Injuries:    req.Injuries,
		Equipment:   pq.StringArray(req.Equipment),
		Notes:       req.Notes,
		SessionRate: rate,
	}, nil
}
