package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viciniti/booking-api/internal/model"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	require.NoError(t, err)
	return d
}

func at(t *testing.T, dayStr, clock string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", dayStr+" "+clock)
	require.NoError(t, err)
	return ts
}

func block(t *testing.T, dayStr, start, end string) *model.AvailabilityBlock {
	t.Helper()
	return &model.AvailabilityBlock{
		ProviderID: uuid.New(),
		Day:        dayStr,
		StartTime:  at(t, dayStr, start),
		EndTime:    at(t, dayStr, end),
	}
}

func appointmentAt(t *testing.T, dayStr, start, end string, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	apt := &model.Appointment{
		StartTime: at(t, dayStr, start),
		EndTime:   at(t, dayStr, end),
		Status:    status,
	}
	apt.ID = uuid.New()
	return apt
}

func testService(duration int, price float64) *model.Service {
	return &model.Service{Duration: duration, Price: price}
}

func TestGenerateThreeSlotCadence(t *testing.T) {
	gen := NewGenerator()
	now := at(t, "2024-05-31", "12:00")
	blocks := []*model.AvailabilityBlock{block(t, "2024-06-01", "09:00", "11:00")}

	slots := gen.Generate(blocks, nil, testService(30, 100), now)

	require.Len(t, slots, WindowDays)
	generated := slots["2024-06-01"]
	require.Len(t, generated, 3)

	assert.Equal(t, at(t, "2024-06-01", "09:00"), generated[0].Start)
	assert.Equal(t, at(t, "2024-06-01", "09:30"), generated[0].End)
	assert.Equal(t, at(t, "2024-06-01", "09:45"), generated[1].Start)
	assert.Equal(t, at(t, "2024-06-01", "10:15"), generated[1].End)
	assert.Equal(t, at(t, "2024-06-01", "10:30"), generated[2].Start)
	assert.Equal(t, at(t, "2024-06-01", "11:00"), generated[2].End)

	assert.Equal(t, "slot-2024-06-01-0", generated[0].ID)
	assert.Equal(t, "slot-2024-06-01-1", generated[1].ID)
	assert.Equal(t, "slot-2024-06-01-2", generated[2].ID)

	// Other days in the window are present but empty.
	assert.Empty(t, slots["2024-06-02"])
	assert.Empty(t, slots["2024-05-31"])
}

func TestGenerateTodayFloor(t *testing.T) {
	gen := NewGenerator()
	now := at(t, "2024-06-01", "09:00")
	blocks := []*model.AvailabilityBlock{block(t, "2024-06-01", "08:00", "12:00")}

	slots := gen.Generate(blocks, nil, testService(30, 100), now)

	generated := slots["2024-06-01"]
	require.NotEmpty(t, generated)
	for _, s := range generated {
		assert.False(t, s.Start.Before(at(t, "2024-06-01", "10:00")),
			"slot %s starts before the lead-time floor", s.ID)
	}
	assert.Equal(t, at(t, "2024-06-01", "10:00"), generated[0].Start)
}

func TestGeneratePastBlockYieldsNothing(t *testing.T) {
	gen := NewGenerator()
	now := at(t, "2024-06-01", "13:00")
	blocks := []*model.AvailabilityBlock{block(t, "2024-06-01", "08:00", "12:00")}

	slots := gen.Generate(blocks, nil, testService(30, 100), now)

	assert.Empty(t, slots["2024-06-01"])
}

func TestGenerateIdempotent(t *testing.T) {
	gen := NewGenerator()
	now := at(t, "2024-05-31", "12:00")
	blocks := []*model.AvailabilityBlock{
		block(t, "2024-06-01", "09:00", "11:00"),
		block(t, "2024-06-03", "14:00", "17:00"),
	}
	appointments := []*model.Appointment{
		appointmentAt(t, "2024-06-01", "09:30", "10:00", model.AppointmentStatusConfirmed),
	}

	first := gen.Generate(blocks, appointments, testService(45, 80), now)
	second := gen.Generate(blocks, appointments, testService(45, 80), now)

	assert.Equal(t, first, second)
}

func TestGenerateSlotsMatchDurationAndAvoidAppointments(t *testing.T) {
	gen := NewGenerator()
	now := at(t, "2024-05-31", "12:00")
	svc := testService(30, 100)
	blocks := []*model.AvailabilityBlock{block(t, "2024-06-01", "09:00", "13:00")}
	appointments := []*model.Appointment{
		appointmentAt(t, "2024-06-01", "10:00", "10:30", model.AppointmentStatusPending),
	}

	slots := gen.Generate(blocks, appointments, svc, now)
	blocked := BuildBlockedPeriods(appointments, DefaultBuffer)

	require.NotEmpty(t, slots["2024-06-01"])
	for _, s := range slots["2024-06-01"] {
		assert.Equal(t, svc.DurationTime(), s.End.Sub(s.Start))
		for _, b := range blocked {
			assert.False(t, (Interval{Start: s.Start, End: s.End}).Overlaps(b.Interval),
				"slot %s overlaps blocked period %s-%s", s.ID, b.Start, b.End)
		}
	}
}

func TestGenerateCancelledAppointmentsDoNotBlock(t *testing.T) {
	gen := NewGenerator()
	now := at(t, "2024-05-31", "12:00")
	blocks := []*model.AvailabilityBlock{block(t, "2024-06-01", "09:00", "11:00")}
	appointments := []*model.Appointment{
		appointmentAt(t, "2024-06-01", "09:00", "11:00", model.AppointmentStatusCancelled),
	}

	slots := gen.Generate(blocks, appointments, testService(30, 100), now)

	assert.Len(t, slots["2024-06-01"], 3)
}

func TestGenerateSlotIDsSkipRejectedCandidates(t *testing.T) {
	gen := NewGenerator()
	now := at(t, "2024-05-31", "12:00")
	blocks := []*model.AvailabilityBlock{block(t, "2024-06-01", "09:00", "11:00")}
	// Blocks the first candidate; indices keep counting past it.
	appointments := []*model.Appointment{
		appointmentAt(t, "2024-06-01", "09:00", "09:30", model.AppointmentStatusConfirmed),
	}

	slots := gen.Generate(blocks, appointments, testService(30, 100), now)

	generated := slots["2024-06-01"]
	require.Len(t, generated, 2)
	assert.Equal(t, "slot-2024-06-01-1", generated[0].ID)
	assert.Equal(t, "slot-2024-06-01-2", generated[1].ID)
}

// A buffered appointment spilling past midnight does not shadow the next
// day's slots: blocked periods are matched to slots by calendar date only.
func TestBlockedPeriodDateScoping(t *testing.T) {
	gen := NewGenerator()
	now := at(t, "2024-05-31", "12:00")
	blocks := []*model.AvailabilityBlock{block(t, "2024-06-02", "00:00", "01:00")}
	appointments := []*model.Appointment{
		appointmentAt(t, "2024-06-01", "23:30", "23:50", model.AppointmentStatusConfirmed),
	}

	slots := gen.Generate(blocks, appointments, testService(30, 100), now)

	// The appointment's buffered interval reaches 00:05 on 2024-06-02, which
	// would collide with the first slot, but its blocked period is tagged
	// 2024-06-01 and is not consulted for 2024-06-02.
	generated := slots["2024-06-02"]
	require.NotEmpty(t, generated)
	assert.Equal(t, at(t, "2024-06-02", "00:00"), generated[0].Start)
}

func TestGenerateNoAvailability(t *testing.T) {
	gen := NewGenerator()
	now := at(t, "2024-05-31", "12:00")

	slots := gen.Generate(nil, nil, testService(30, 100), now)

	require.Len(t, slots, WindowDays)
	for dayKey, daySlots := range slots {
		assert.Empty(t, daySlots, "day %s should have no slots", dayKey)
		assert.NotNil(t, daySlots)
	}
}

func TestGenerateCustomWindow(t *testing.T) {
	gen := NewGenerator(WithWindowDays(3))
	now := at(t, "2024-05-31", "12:00")

	slots := gen.Generate(nil, nil, testService(30, 100), now)

	assert.Len(t, slots, 3)
}

func TestGenerateSlotPricingDefaults(t *testing.T) {
	gen := NewGenerator()
	now := at(t, "2024-05-31", "12:00")
	blocks := []*model.AvailabilityBlock{block(t, "2024-06-01", "09:00", "10:00")}

	slots := gen.Generate(blocks, nil, testService(30, 75.50), now)

	generated := slots["2024-06-01"]
	require.NotEmpty(t, generated)
	assert.Equal(t, 75.50, generated[0].OriginalPrice)
	assert.Equal(t, 75.50, generated[0].DiscountedPrice)
	assert.Zero(t, generated[0].DiscountPercentage)
	assert.Equal(t, DefaultBufferMinutes, generated[0].BufferInfo.BufferMinutes)
	assert.Equal(t, generated[0].Start.Add(-DefaultBuffer), generated[0].BufferInfo.BufferedStart)
	assert.Equal(t, generated[0].End.Add(DefaultBuffer), generated[0].BufferInfo.BufferedEnd)
}

func TestIntervalOverlapBoundary(t *testing.T) {
	a := Interval{Start: day(t, "2024-06-01"), End: day(t, "2024-06-01").Add(time.Hour)}
	b := Interval{Start: a.End, End: a.End.Add(time.Hour)}

	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))

	c := Interval{Start: a.End.Add(-time.Minute), End: a.End.Add(time.Hour)}
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(a))
}
