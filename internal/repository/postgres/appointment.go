package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

const appointmentInsert = `
	INSERT INTO appointments (
		id, service_id, consumer_id, start_time, end_time, status, notes,
		address_line1, address_line2, city, state, postal_code, country,
		latitude, longitude, original_price, discount_amount, final_price,
		discount_reason, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18, $19, $20, $21
	)
`

func appointmentInsertArgs(a *model.Appointment) []interface{} {
	return []interface{}{
		a.ID,
		a.ServiceID,
		a.ConsumerID,
		a.StartTime,
		a.EndTime,
		a.Status,
		a.Notes,
		a.Line1,
		a.Line2,
		a.City,
		a.State,
		a.PostalCode,
		a.Country,
		a.Latitude,
		a.Longitude,
		a.OriginalPrice,
		a.DiscountAmount,
		a.FinalPrice,
		a.DiscountReason,
		a.CreatedAt,
		a.UpdatedAt,
	}
}

func (r *appointmentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, appointment *model.Appointment) error {
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := tx.ExecContext(ctx, appointmentInsert, appointmentInsertArgs(appointment)...)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT a.*, s.name AS service_name
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, status = $3, notes = $4,
			address_line1 = $5, address_line2 = $6, city = $7, state = $8,
			postal_code = $9, country = $10, latitude = $11, longitude = $12,
			original_price = $13, discount_amount = $14, final_price = $15,
			discount_reason = $16, updated_at = $17
		WHERE id = $18
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.Line1,
		appointment.Line2,
		appointment.City,
		appointment.State,
		appointment.PostalCode,
		appointment.Country,
		appointment.Latitude,
		appointment.Longitude,
		appointment.OriginalPrice,
		appointment.DiscountAmount,
		appointment.FinalPrice,
		appointment.DiscountReason,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM appointments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT a.*, s.name AS service_name
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.ProviderID != uuid.Nil {
		query += fmt.Sprintf(" AND s.provider_id = $%d", argCount)
		args = append(args, filters.ProviderID)
		argCount++
	}
	if filters.ConsumerID != uuid.Nil {
		query += fmt.Sprintf(" AND a.consumer_id = $%d", argCount)
		args = append(args, filters.ConsumerID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND a.status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND a.start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}
	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND a.start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY a.start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

const activeForProviderQuery = `
	SELECT a.*, s.name AS service_name
	FROM appointments a
	JOIN services s ON s.id = a.service_id
	WHERE s.provider_id = $1
	  AND a.status IN ('pending', 'confirmed', 'completed')
	ORDER BY a.start_time ASC
`

func (r *appointmentRepository) ListActiveForProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error) {
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, activeForProviderQuery, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) WithProviderLock(ctx context.Context, providerID uuid.UUID, fn func(tx *sqlx.Tx, active []*model.Appointment) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Serializes concurrent bookings against the same provider: the row lock
	// on the provider row is held until commit, so the second writer sees the
	// first writer's appointment when it re-reads.
	if _, err := tx.ExecContext(ctx, `SELECT id FROM providers WHERE id = $1 FOR UPDATE`, providerID); err != nil {
		return fmt.Errorf("failed to lock provider: %w", err)
	}

	var active []*model.Appointment
	if err := tx.SelectContext(ctx, &active, activeForProviderQuery, providerID); err != nil {
		return fmt.Errorf("failed to list active appointments: %w", err)
	}

	if err := fn(tx, active); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
