package scheduling

import (
	"fmt"
	"time"

	"github.com/viciniti/booking-api/internal/model"
)

const (
	// WindowDays is the rolling window slots are generated over, today included.
	WindowDays = 14

	// MinLeadTime is the earliest a slot may begin relative to now.
	MinLeadTime = time.Hour
)

// BufferInfo tells the caller how far a slot's buffer zone extends.
type BufferInfo struct {
	BufferMinutes int       `json:"buffer_minutes"`
	BufferedStart time.Time `json:"buffered_start"`
	BufferedEnd   time.Time `json:"buffered_end"`
}

// Slot is a candidate bookable interval matching a service's duration.
type Slot struct {
	ID                 string     `json:"id"`
	Start              time.Time  `json:"start"`
	End                time.Time  `json:"end"`
	DurationMinutes    int        `json:"duration"`
	OriginalPrice      float64    `json:"original_price"`
	DiscountPercentage int        `json:"discount_percentage"`
	DiscountedPrice    float64    `json:"discounted_price"`
	BufferInfo         BufferInfo `json:"buffer_info"`
}

// Generator turns availability blocks and existing appointments into candidate
// slots. It is a pure computation over one snapshot of provider data and is
// safe to call concurrently.
type Generator struct {
	buffer     time.Duration
	windowDays int
	leadTime   time.Duration
	loc        *time.Location
}

type GeneratorOption func(*Generator)

func WithBuffer(buf time.Duration) GeneratorOption {
	return func(g *Generator) { g.buffer = buf }
}

func WithWindowDays(days int) GeneratorOption {
	return func(g *Generator) { g.windowDays = days }
}

func WithLeadTime(lead time.Duration) GeneratorOption {
	return func(g *Generator) { g.leadTime = lead }
}

func WithLocation(loc *time.Location) GeneratorOption {
	return func(g *Generator) { g.loc = loc }
}

func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		buffer:     DefaultBuffer,
		windowDays: WindowDays,
		leadTime:   MinLeadTime,
		loc:        time.UTC,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate computes the bookable slots for a service over the rolling window
// starting at now. The result maps every date in the window to its slot list;
// days without availability map to an empty list, never an error. Calling
// Generate twice with unchanged inputs yields identical output.
func (g *Generator) Generate(blocks []*model.AvailabilityBlock, appointments []*model.Appointment, svc *model.Service, now time.Time) map[string][]Slot {
	duration := svc.DurationTime()
	stride := duration + g.buffer
	blocked := BuildBlockedPeriods(appointments, g.buffer)

	out := make(map[string][]Slot, g.windowDays)
	for i := 0; i < g.windowDays; i++ {
		day := now.In(g.loc).AddDate(0, 0, i).Format(model.DateLayout)
		out[day] = make([]Slot, 0)

		for _, block := range blocks {
			if block.Day != day {
				continue
			}
			start, end := block.StartTime, block.EndTime

			// Today's slots may not begin inside the lead-time window. A block
			// already entirely in the past yields nothing, not an error.
			if i == 0 {
				floor := now.Add(g.leadTime)
				if start.Before(floor) {
					start = floor
				}
				if !start.Before(end) {
					continue
				}
			}

			for cursor, idx := start, 0; ; cursor, idx = cursor.Add(stride), idx+1 {
				slotEnd := cursor.Add(duration)
				if slotEnd.After(end) {
					break
				}
				candidate := Interval{Start: cursor, End: slotEnd}
				if g.collides(candidate, day, blocked) {
					continue
				}
				out[day] = append(out[day], Slot{
					ID:              fmt.Sprintf("slot-%s-%d", day, idx),
					Start:           cursor,
					End:             slotEnd,
					DurationMinutes: svc.Duration,
					OriginalPrice:   svc.Price,
					DiscountedPrice: svc.Price,
					BufferInfo: BufferInfo{
						BufferMinutes: int(g.buffer / time.Minute),
						BufferedStart: cursor.Add(-g.buffer),
						BufferedEnd:   slotEnd.Add(g.buffer),
					},
				})
			}
		}
	}
	return out
}

// collides checks the candidate against blocked periods on the same calendar
// date. Periods on other dates are not consulted, preserving the date-scoped
// matching of the availability model.
func (g *Generator) collides(candidate Interval, day string, blocked []BlockedPeriod) bool {
	for _, b := range blocked {
		if b.Day(g.loc) != day {
			continue
		}
		if candidate.Overlaps(b.Interval) {
			return true
		}
	}
	return false
}
