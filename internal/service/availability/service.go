package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/repository"
	apperrors "github.com/viciniti/booking-api/pkg/errors"
)

type Service struct {
	availability repository.AvailabilityRepository
}

func NewService(availability repository.AvailabilityRepository) *Service {
	return &Service{availability: availability}
}

// Replace swaps the provider's entire availability for the given set. Days are
// literal calendar dates, so stale past days are simply overwritten away on
// the next save.
func (s *Service) Replace(ctx context.Context, providerID uuid.UUID, req model.ReplaceAvailabilityRequest) (map[string][]*model.AvailabilityBlock, error) {
	var blocks []*model.AvailabilityBlock
	for day, dayBlocks := range req {
		if _, err := time.Parse(model.DateLayout, day); err != nil {
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid day %q, expected YYYY-MM-DD", day), err)
		}
		for _, tb := range dayBlocks {
			block := &model.AvailabilityBlock{
				ProviderID: providerID,
				Day:        day,
				StartTime:  tb.Start,
				EndTime:    tb.End,
			}
			if !block.Valid() {
				return nil, apperrors.BadRequest(
					fmt.Sprintf("block on %s must end after it starts", day), nil)
			}
			blocks = append(blocks, block)
		}
	}

	if err := s.availability.ReplaceForProvider(ctx, providerID, blocks); err != nil {
		return nil, fmt.Errorf("failed to replace availability: %w", err)
	}
	return groupByDay(blocks), nil
}

func (s *Service) List(ctx context.Context, providerID uuid.UUID) (map[string][]*model.AvailabilityBlock, error) {
	blocks, err := s.availability.ListForProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	return groupByDay(blocks), nil
}

func groupByDay(blocks []*model.AvailabilityBlock) map[string][]*model.AvailabilityBlock {
	out := make(map[string][]*model.AvailabilityBlock)
	for _, b := range blocks {
		out[b.Day] = append(out[b.Day], b)
	}
	for day := range out {
		sort.Slice(out[day], func(i, j int) bool {
			return out[day][i].StartTime.Before(out[day][j].StartTime)
		})
	}
	return out
}
