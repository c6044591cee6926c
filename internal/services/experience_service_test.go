package services

import (
	"context"
	"testing"
	"time"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockExperienceRepository is an in-memory implementation of ExperienceRepository
type mockExperienceRepository struct {
	entries map[int]*models.Experience
	nextID  int
}

func newMockExperienceRepository(entries ...*models.Experience) *mockExperienceRepository {
	m := &mockExperienceRepository{entries: map[int]*models.Experience{}, nextID: 1}
	for _, e := range entries {
		m.entries[e.ID] = e
		m.nextID = e.ID + 1
	}
	return m
}

func (m *mockExperienceRepository) Create(ctx context.Context, e *models.Experience) error {
	e.ID = m.nextID
	m.nextID++
	copied := *e
	m.entries[e.ID] = &copied
	return nil
}

func (m *mockExperienceRepository) GetByID(ctx context.Context, id int) (*models.Experience, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, apperrors.NotFound("Experience not found")
	}
	copied := *e
	return &copied, nil
}

func (m *mockExperienceRepository) Update(ctx context.Context, e *models.Experience) error {
	copied := *e
	m.entries[e.ID] = &copied
	return nil
}

func (m *mockExperienceRepository) Delete(ctx context.Context, id int) error {
	if _, ok := m.entries[id]; !ok {
		return apperrors.NotFound("Experience not found")
	}
	delete(m.entries, id)
	return nil
}

func (m *mockExperienceRepository) List(ctx context.Context, filter models.ExperienceFilter, params models.ListParams) ([]models.Experience, error) {
	return nil, nil
}

func (m *mockExperienceRepository) Companies(ctx context.Context) ([]string, error) {
	return []string{"Acme"}, nil
}

func TestExperienceService_Create(t *testing.T) {
	start := models.NewDate(2020, time.January, 1)
	end := models.NewDate(2022, time.June, 30)
	before := models.NewDate(2019, time.January, 1)

	tests := []struct {
		name          string
		req           models.CreateExperienceRequest
		expectedError bool
		expectNoEnd   bool
	}{
		{
			name: "finished position",
			req:  models.CreateExperienceRequest{Company: "Acme", Position: "Engineer", StartDate: &start, EndDate: &end},
		},
		{
			name:        "current position clears end date",
			req:         models.CreateExperienceRequest{Company: "Acme", Position: "Engineer", StartDate: &start, EndDate: &end, Current: true},
			expectNoEnd: true,
		},
		{
			name:          "end before start",
			req:           models.CreateExperienceRequest{Company: "Acme", Position: "Engineer", StartDate: &start, EndDate: &before},
			expectedError: true,
		},
		{
			name:          "missing start date",
			req:           models.CreateExperienceRequest{Company: "Acme", Position: "Engineer"},
			expectedError: true,
		},
		{
			name:          "unknown type",
			req:           models.CreateExperienceRequest{Company: "Acme", Position: "Engineer", StartDate: &start, Type: "volunteer"},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewExperienceService(newMockExperienceRepository(), zap.NewNop())

			req := tt.req
			e, err := svc.Create(context.Background(), &req)

			if tt.expectedError {
				require.Error(t, err)
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.ExperienceFullTime, e.Type)
			assert.Equal(t, start, e.StartDate)
			if tt.expectNoEnd {
				assert.Nil(t, e.EndDate)
			} else {
				assert.Equal(t, &end, e.EndDate)
			}
		})
	}
}

func TestExperienceService_Update_BecomingCurrent(t *testing.T) {
	end := models.NewDate(2022, time.June, 30)
	repo := newMockExperienceRepository(&models.Experience{
		ID: 1, Company: "Acme", Position: "Engineer", StartDate: models.NewDate(2020, time.January, 1), EndDate: &end,
	})
	svc := NewExperienceService(repo, zap.NewNop())
	current := true

	e, err := svc.Update(context.Background(), 1, &models.UpdateExperienceRequest{Current: &current})

	require.NoError(t, err)
	assert.True(t, e.Current)
	assert.Nil(t, e.EndDate)
	assert.Equal(t, "Acme", e.Company)
}

func TestExperienceService_List_EmptyResult(t *testing.T) {
	svc := NewExperienceService(newMockExperienceRepository(), zap.NewNop())

	result, err := svc.List(context.Background(), models.ExperienceFilter{}, models.DefaultListParams())

	require.NoError(t, err)
	assert.Equal(t, []models.Experience{}, result.Items)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, Total: 0}, result.Pagination)
}
