package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viciniti/booking-api/internal/model"
	apperrors "github.com/viciniti/booking-api/pkg/errors"
)

type fakeAvailabilityRepo struct {
	blocks   []*model.AvailabilityBlock
	replaced int
}

func (r *fakeAvailabilityRepo) ReplaceForProvider(_ context.Context, _ uuid.UUID, blocks []*model.AvailabilityBlock) error {
	r.blocks = blocks
	r.replaced++
	return nil
}

func (r *fakeAvailabilityRepo) ListForProvider(_ context.Context, _ uuid.UUID) ([]*model.AvailabilityBlock, error) {
	return r.blocks, nil
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return v
}

func TestReplaceGroupsAndSorts(t *testing.T) {
	repo := &fakeAvailabilityRepo{}
	svc := NewService(repo)
	providerID := uuid.New()

	req := model.ReplaceAvailabilityRequest{
		"2030-06-01": {
			{Start: at(t, "2030-06-01T13:00:00Z"), End: at(t, "2030-06-01T17:00:00Z")},
			{Start: at(t, "2030-06-01T09:00:00Z"), End: at(t, "2030-06-01T12:00:00Z")},
		},
		"2030-06-02": {
			{Start: at(t, "2030-06-02T09:00:00Z"), End: at(t, "2030-06-02T12:00:00Z")},
		},
	}

	got, err := svc.Replace(context.Background(), providerID, req)
	require.NoError(t, err)

	require.Len(t, got, 2)
	require.Len(t, got["2030-06-01"], 2)
	assert.True(t, got["2030-06-01"][0].StartTime.Before(got["2030-06-01"][1].StartTime),
		"blocks within a day are sorted by start time")

	assert.Equal(t, 1, repo.replaced)
	assert.Len(t, repo.blocks, 3)
	for _, b := range repo.blocks {
		assert.Equal(t, providerID, b.ProviderID)
	}
}

func TestReplaceRejectsInvalidDay(t *testing.T) {
	svc := NewService(&fakeAvailabilityRepo{})

	_, err := svc.Replace(context.Background(), uuid.New(), model.ReplaceAvailabilityRequest{
		"June 1st": {
			{Start: at(t, "2030-06-01T09:00:00Z"), End: at(t, "2030-06-01T12:00:00Z")},
		},
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestReplaceRejectsInvertedBlock(t *testing.T) {
	svc := NewService(&fakeAvailabilityRepo{})

	_, err := svc.Replace(context.Background(), uuid.New(), model.ReplaceAvailabilityRequest{
		"2030-06-01": {
			{Start: at(t, "2030-06-01T12:00:00Z"), End: at(t, "2030-06-01T09:00:00Z")},
		},
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestReplaceEmptyClearsAvailability(t *testing.T) {
	repo := &fakeAvailabilityRepo{
		blocks: []*model.AvailabilityBlock{
			{ProviderID: uuid.New(), Day: "2030-06-01"},
		},
	}
	svc := NewService(repo)

	got, err := svc.Replace(context.Background(), uuid.New(), model.ReplaceAvailabilityRequest{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, repo.blocks)
}

func TestListGroupsByDay(t *testing.T) {
	providerID := uuid.New()
	repo := &fakeAvailabilityRepo{
		blocks: []*model.AvailabilityBlock{
			{ProviderID: providerID, Day: "2030-06-02", StartTime: at(t, "2030-06-02T09:00:00Z"), EndTime: at(t, "2030-06-02T12:00:00Z")},
			{ProviderID: providerID, Day: "2030-06-01", StartTime: at(t, "2030-06-01T09:00:00Z"), EndTime: at(t, "2030-06-01T12:00:00Z")},
		},
	}
	svc := NewService(repo)

	got, err := svc.List(context.Background(), providerID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, got["2030-06-01"], 1)
	assert.Len(t, got["2030-06-02"], 1)
}
