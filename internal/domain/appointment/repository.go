package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Listings for general browsing order by date descending then time
	// ascending; ListToday orders by time, ListUpcoming by date then time.
	List(ctx context.Context) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByStatus(ctx context.Context, status Status) ([]*Appointment, error)
	ListToday(ctx context.Context) ([]*Appointment, error)
	ListUpcoming(ctx context.Context, days int) ([]*Appointment, error)

	// HasDoctorConflict reports whether a non-cancelled appointment other than
	// excludeID occupies (doctorID, date, clock). excludeID lets an update
	// ignore the appointment's own slot; pass uuid.Nil otherwise.
	HasDoctorConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, clock string, excludeID uuid.UUID) (bool, error)
	HasPatientConflict(ctx context.Context, patientID uuid.UUID, date time.Time, clock string, excludeID uuid.UUID) (bool, error)

	CountByStatus(ctx context.Context, status Status) (int64, error)
}
