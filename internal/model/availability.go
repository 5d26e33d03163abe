package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date form availability blocks are keyed by.
// Blocks are tagged with a literal date, not a recurring weekday.
const DateLayout = "2006-01-02"

type AvailabilityBlock struct {
	Base
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	Day        string    `db:"day" json:"day"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	EndTime    time.Time `db:"end_time" json:"end_time"`
}

// Valid reports whether the block spans a positive interval.
func (b *AvailabilityBlock) Valid() bool {
	return b.StartTime.Before(b.EndTime)
}

// TimeBlock is the wire form of a single block within a day.
type TimeBlock struct {
	ID    string    `json:"id,omitempty"`
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

// ReplaceAvailabilityRequest maps calendar dates to the blocks for that day.
// Saving replaces the provider's whole availability, it is not a merge.
type ReplaceAvailabilityRequest map[string][]TimeBlock
