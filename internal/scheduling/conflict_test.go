package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viciniti/booking-api/internal/model"
)

func TestCheckConflictBufferedOverlap(t *testing.T) {
	existing := []*model.Appointment{
		appointmentAt(t, "2024-06-01", "10:40", "11:10", model.AppointmentStatusConfirmed),
	}
	existing[0].ServiceName = "Haircut"

	proposed := Interval{
		Start: at(t, "2024-06-01", "10:00"),
		End:   at(t, "2024-06-01", "10:30"),
	}

	conflicts, err := CheckConflict(existing, proposed, DefaultBuffer, nil)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	assert.Equal(t, existing[0].ID, conflicts[0].AppointmentID)
	assert.Equal(t, "Haircut", conflicts[0].ServiceName)
	assert.Equal(t, model.AppointmentStatusConfirmed, conflicts[0].Status)
	assert.Equal(t, existing[0].StartTime, conflicts[0].StartTime)
	assert.Equal(t, existing[0].EndTime, conflicts[0].EndTime)
}

// Starting exactly where the buffered interval ends is allowed.
func TestCheckConflictExclusiveBoundary(t *testing.T) {
	existing := []*model.Appointment{
		appointmentAt(t, "2024-06-01", "09:15", "09:45", model.AppointmentStatusConfirmed),
	}

	// Buffered interval ends at exactly 10:00.
	proposed := Interval{
		Start: at(t, "2024-06-01", "10:00"),
		End:   at(t, "2024-06-01", "10:30"),
	}

	conflicts, err := CheckConflict(existing, proposed, DefaultBuffer, nil)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestCheckConflictIgnoresCancelled(t *testing.T) {
	existing := []*model.Appointment{
		appointmentAt(t, "2024-06-01", "10:00", "10:30", model.AppointmentStatusCancelled),
	}

	proposed := Interval{
		Start: at(t, "2024-06-01", "10:00"),
		End:   at(t, "2024-06-01", "10:30"),
	}

	conflicts, err := CheckConflict(existing, proposed, DefaultBuffer, nil)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestCheckConflictExcludesSelf(t *testing.T) {
	apt := appointmentAt(t, "2024-06-01", "10:00", "10:30", model.AppointmentStatusConfirmed)

	proposed := Interval{
		Start: at(t, "2024-06-01", "10:15"),
		End:   at(t, "2024-06-01", "10:45"),
	}

	conflicts, err := CheckConflict([]*model.Appointment{apt}, proposed, DefaultBuffer, &apt.ID)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	other := uuid.New()
	conflicts, err = CheckConflict([]*model.Appointment{apt}, proposed, DefaultBuffer, &other)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
}

func TestCheckConflictMultiple(t *testing.T) {
	existing := []*model.Appointment{
		appointmentAt(t, "2024-06-01", "09:00", "10:00", model.AppointmentStatusPending),
		appointmentAt(t, "2024-06-01", "10:30", "11:00", model.AppointmentStatusCompleted),
		appointmentAt(t, "2024-06-01", "14:00", "15:00", model.AppointmentStatusConfirmed),
	}

	proposed := Interval{
		Start: at(t, "2024-06-01", "10:00"),
		End:   at(t, "2024-06-01", "10:45"),
	}

	conflicts, err := CheckConflict(existing, proposed, DefaultBuffer, nil)
	require.NoError(t, err)
	assert.Len(t, conflicts, 2)
}

func TestCheckConflictZeroBuffer(t *testing.T) {
	existing := []*model.Appointment{
		appointmentAt(t, "2024-06-01", "10:30", "11:00", model.AppointmentStatusConfirmed),
	}

	proposed := Interval{
		Start: at(t, "2024-06-01", "10:00"),
		End:   at(t, "2024-06-01", "10:30"),
	}

	conflicts, err := CheckConflict(existing, proposed, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestCheckConflictInvalidProposal(t *testing.T) {
	start := at(t, "2024-06-01", "10:00")

	_, err := CheckConflict(nil, Interval{Start: start, End: start}, DefaultBuffer, nil)
	assert.Error(t, err)

	_, err = CheckConflict(nil, Interval{Start: start, End: start.Add(-time.Hour)}, DefaultBuffer, nil)
	assert.Error(t, err)
}

func TestCheckConflictCorruptStoredInterval(t *testing.T) {
	corrupt := appointmentAt(t, "2024-06-01", "11:00", "10:00", model.AppointmentStatusConfirmed)

	proposed := Interval{
		Start: at(t, "2024-06-01", "15:00"),
		End:   at(t, "2024-06-01", "15:30"),
	}

	_, err := CheckConflict([]*model.Appointment{corrupt}, proposed, DefaultBuffer, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), corrupt.ID.String())
}
