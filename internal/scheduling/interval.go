package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/model"
)

// DefaultBufferMinutes is the padding applied before and after every
// appointment to keep back-to-back bookings apart.
const DefaultBufferMinutes = 15

// DefaultBuffer is DefaultBufferMinutes as a duration.
const DefaultBuffer = DefaultBufferMinutes * time.Minute

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval spans a positive duration.
func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

// Overlaps reports whether two half-open intervals intersect. The boundary is
// exclusive: an interval starting exactly where another ends does not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// Buffered widens the interval by buf on both sides.
func (iv Interval) Buffered(buf time.Duration) Interval {
	return Interval{Start: iv.Start.Add(-buf), End: iv.End.Add(buf)}
}

// BlockedPeriod is an appointment's buffered interval, tagged with enough of
// the appointment to report collisions.
type BlockedPeriod struct {
	Interval
	AppointmentID uuid.UUID
	ServiceName   string
	Status        model.AppointmentStatus
}

// Day returns the calendar date the blocked period starts on, in the given
// location. Blocked periods are matched to slots by this date string only, so
// a buffer that spills past midnight does not shadow the following day.
func (b BlockedPeriod) Day(loc *time.Location) string {
	return b.Start.In(loc).Format(model.DateLayout)
}

// BuildBlockedPeriods buffers every occupying appointment. Cancelled
// appointments never block time.
func BuildBlockedPeriods(appointments []*model.Appointment, buf time.Duration) []BlockedPeriod {
	blocked := make([]BlockedPeriod, 0, len(appointments))
	for _, apt := range appointments {
		if !apt.Status.Occupying() {
			continue
		}
		blocked = append(blocked, BlockedPeriod{
			Interval:      Interval{Start: apt.StartTime, End: apt.EndTime}.Buffered(buf),
			AppointmentID: apt.ID,
			ServiceName:   apt.ServiceName,
			Status:        apt.Status,
		})
	}
	return blocked
}
