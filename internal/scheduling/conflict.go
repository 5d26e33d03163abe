package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/model"
)

// Conflict describes an existing appointment whose buffered interval collides
// with a proposed booking.
type Conflict struct {
	AppointmentID uuid.UUID               `json:"id"`
	StartTime     time.Time               `json:"start_time"`
	EndTime       time.Time               `json:"end_time"`
	ServiceName   string                  `json:"service"`
	Status        model.AppointmentStatus `json:"status"`
}

// CheckConflict validates a proposed [start, end) against a provider's
// existing appointments. Every occupying appointment is widened by buf on both
// sides and tested against the raw proposal with the same half-open overlap
// rule slot generation uses, without date scoping. A nil result means the
// proposal may be booked.
//
// excludeID skips one appointment, for re-checking time edits against
// everything but the appointment being edited.
func CheckConflict(existing []*model.Appointment, proposed Interval, buf time.Duration, excludeID *uuid.UUID) ([]Conflict, error) {
	if !proposed.Valid() {
		return nil, fmt.Errorf("proposed interval end %s is not after start %s", proposed.End, proposed.Start)
	}

	var conflicts []Conflict
	for _, apt := range existing {
		if !apt.Status.Occupying() {
			continue
		}
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		stored := Interval{Start: apt.StartTime, End: apt.EndTime}
		if !stored.Valid() {
			return nil, fmt.Errorf("appointment %s has corrupt interval: end %s not after start %s",
				apt.ID, apt.EndTime, apt.StartTime)
		}
		if proposed.Overlaps(stored.Buffered(buf)) {
			conflicts = append(conflicts, Conflict{
				AppointmentID: apt.ID,
				StartTime:     apt.StartTime,
				EndTime:       apt.EndTime,
				ServiceName:   apt.ServiceName,
				Status:        apt.Status,
			})
		}
	}
	return conflicts, nil
}
