package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/appointment"
	"github.com/clinicdesk/clinicdesk/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return translateSlotConflict(err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return translateSlotConflict(err)
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&appointment.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Order("date DESC").Order("time ASC").
		Find(&out).Error
	return out, err
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("date DESC").Order("time ASC").
		Find(&out).Error
	return out, err
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("date DESC").Order("time ASC").
		Find(&out).Error
	return out, err
}

func (r *AppointmentRepository) ListByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("date DESC").Order("time ASC").
		Find(&out).Error
	return out, err
}

func (r *AppointmentRepository) ListToday(ctx context.Context) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("date = ? AND status <> ?", appointment.DateOnly(time.Now()), appointment.StatusCancelled).
		Order("time ASC").
		Find(&out).Error
	return out, err
}

func (r *AppointmentRepository) ListUpcoming(ctx context.Context, days int) ([]*appointment.Appointment, error) {
	start := appointment.DateOnly(time.Now())
	end := start.AddDate(0, 0, days)

	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ? AND status <> ?", start, end, appointment.StatusCancelled).
		Order("date ASC").Order("time ASC").
		Find(&out).Error
	return out, err
}

func (r *AppointmentRepository) HasDoctorConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, clock string, excludeID uuid.UUID) (bool, error) {
	return r.hasConflict(ctx, "doctor_id", doctorID, date, clock, excludeID)
}

func (r *AppointmentRepository) HasPatientConflict(ctx context.Context, patientID uuid.UUID, date time.Time, clock string, excludeID uuid.UUID) (bool, error) {
	return r.hasConflict(ctx, "patient_id", patientID, date, clock, excludeID)
}

func (r *AppointmentRepository) hasConflict(ctx context.Context, column string, id uuid.UUID, date time.Time, clock string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where(column+" = ? AND date = ? AND time = ? AND status <> ?", id, date, clock, appointment.StatusCancelled)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AppointmentRepository) CountByStatus(ctx context.Context, status appointment.Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// translateSlotConflict maps unique violations on the partial slot indexes to
// the matching domain sentinel, so a lost insert race reads as a conflict.
func translateSlotConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, database.UniqueDoctorSlotIndex):
		return appointment.ErrDoctorSlotTaken
	case strings.Contains(pgErr.ConstraintName, database.UniquePatientSlotIndex):
		return appointment.ErrPatientSlotTaken
	}
	return err
}
