package pricing

import (
	"math"
	"sort"
	"time"

	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/scheduling"
	"github.com/viciniti/booking-api/pkg/geo"
)

// DefaultAdjacency is how close in time an existing appointment must be to a
// slot's boundary to count toward a discount.
const DefaultAdjacency = 60 * time.Minute

// Annotator attaches proximity discounts to generated slots. Like the slot
// generator it is a pure pass over one snapshot of provider data.
type Annotator struct {
	adjacency time.Duration
}

func NewAnnotator() Annotator {
	return Annotator{adjacency: DefaultAdjacency}
}

func NewAnnotatorWithAdjacency(adjacency time.Duration) Annotator {
	return Annotator{adjacency: adjacency}
}

// Annotate fills in DiscountPercentage and DiscountedPrice on every slot.
// It is a no-op when the configuration is missing or inactive, or when the
// consumer's location is unknown; slots then keep their undiscounted price.
func (a Annotator) Annotate(slots map[string][]scheduling.Slot, cfg *model.DiscountConfig, appointments []*model.Appointment, consumer *geo.Point) {
	if cfg == nil || !cfg.IsActive || consumer == nil {
		return
	}
	table := TableFromConfig(cfg)

	for day := range slots {
		for i := range slots[day] {
			a.annotateSlot(&slots[day][i], table, appointments, consumer)
		}
	}
}

func (a Annotator) annotateSlot(slot *scheduling.Slot, table Table, appointments []*model.Appointment, consumer *geo.Point) {
	adjacent := a.timeAdjacent(slot, appointments)
	if len(adjacent) == 0 {
		return
	}

	// Among time-adjacent appointments, keep those with a known location
	// inside the outermost tier.
	maxYards := float64(table.MaxDistanceYards())
	var distances []float64
	for _, apt := range adjacent {
		loc := apt.Location()
		if loc == nil {
			continue
		}
		d := geo.DistanceYards(*consumer, *loc)
		if d <= maxYards {
			distances = append(distances, d)
		}
	}
	if len(distances) == 0 {
		return
	}
	sort.Float64s(distances)

	pct := table.DiscountFor(distances[0], len(distances))
	if pct <= 0 {
		return
	}
	slot.DiscountPercentage = pct
	slot.DiscountedPrice = roundCents(slot.OriginalPrice * (1 - float64(pct)/100))
}

// timeAdjacent keeps appointments that end within the adjacency window before
// the slot starts, or begin within it after the slot ends. Boundaries are
// inclusive on both ends.
func (a Annotator) timeAdjacent(slot *scheduling.Slot, appointments []*model.Appointment) []*model.Appointment {
	var adjacent []*model.Appointment
	for _, apt := range appointments {
		if !apt.Status.Occupying() {
			continue
		}
		endsBefore := !apt.EndTime.Before(slot.Start.Add(-a.adjacency)) && !apt.EndTime.After(slot.Start)
		startsAfter := !apt.StartTime.Before(slot.End) && !apt.StartTime.After(slot.End.Add(a.adjacency))
		if endsBefore || startsAfter {
			adjacent = append(adjacent, apt)
		}
	}
	return adjacent
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
