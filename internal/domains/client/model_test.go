package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateClientRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateClientRequest
		wantErr bool
	}{
		{
			name: "minimal valid",
			req:  CreateClientRequest{FullName: "Jane Doe"},
		},
		{
			name: "full valid",
			req: CreateClientRequest{
				FullName:    "Jane Doe",
				Email:       strPtr("jane@x.com"),
				Phone:       strPtr("+1 (555) 123-4567"),
				Equipment:   []string{"Dumbbells"},
				SessionRate: strPtr("45.00"),
			},
		},
		{
			name:    "missing name",
			req:     CreateClientRequest{Email: strPtr("jane@x.com")},
			wantErr: true,
		},
		{
			name:    "bad email",
			req:     CreateClientRequest{FullName: "Jane Doe", Email: strPtr("not-an-email")},
			wantErr: true,
		},
		{
			name:    "bad phone",
			req:     CreateClientRequest{FullName: "Jane Doe", Phone: strPtr("abc")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromCreateRequest(t *testing.T) {
	entity, err := FromCreateRequest(&CreateClientRequest{
		FullName:    "  Jane Doe  ",
		Equipment:   []string{"Dumbbells", "Bands"},
		SessionRate: strPtr("45.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", entity.FullName)
	assert.Equal(t, "45.5", entity.SessionRate.String())
	assert.Len(t, entity.Equipment, 2)
}

func TestFromCreateRequestRejectsBadRate(t *testing.T) {
	_, err := FromCreateRequest(&CreateClientRequest{
		FullName:    "Jane Doe",
		SessionRate: strPtr("lots"),
	})
	require.Error(t, err)
}

func TestToResponseNormalizesEquipment(t *testing.T) {
	resp := ToResponse(&Client{FullName: "Jane Doe"})
	assert.NotNil(t, resp.Equipment)
	assert.Empty(t, resp.Equipment)
}
