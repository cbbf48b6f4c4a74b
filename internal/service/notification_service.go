package service

import (
	"context"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/appointment"
	"github.com/clinicdesk/clinicdesk/internal/domain/doctor"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/pkg/mailer"
	"github.com/clinicdesk/clinicdesk/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const notificationBufferSize = 1_000

const dispatchTimeout = 30 * time.Second

// NotificationService delivers confirmation and reminder emails. The
// enqueue path is fire-and-forget: a background worker picks the job up with
// its own context and repository handles, re-fetches the entities, and
// records the outcome on the appointment itself. A dispatch failure never
// reaches the operation that triggered it.
type NotificationService struct {
	appts    appointment.Repository
	doctors  doctor.Repository
	patients patient.Repository
	mail     mailer.Mailer
	log      *zap.Logger
	mx       *metrics.Collector
	jobs     chan uuid.UUID
	done     chan struct{}
}

// WithMetrics attaches a collector. Without one the service runs unmetered.
func (s *NotificationService) WithMetrics(c *metrics.Collector) *NotificationService {
	s.mx = c
	return s
}

func (s *NotificationService) countDispatch(kind string, ok bool) {
	if s.mx == nil {
		return
	}
	outcome := "sent"
	if !ok {
		outcome = "failed"
	}
	s.mx.NotificationsTotal.WithLabelValues(kind, outcome).Inc()
}

func NewNotificationService(
	appts appointment.Repository,
	doctors doctor.Repository,
	patients patient.Repository,
	mail mailer.Mailer,
	log *zap.Logger,
) *NotificationService {
	svc := &NotificationService{
		appts:    appts,
		doctors:  doctors,
		patients: patients,
		mail:     mail,
		log:      log,
		jobs:     make(chan uuid.UUID, notificationBufferSize),
		done:     make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// EnqueueConfirmation schedules a confirmation dispatch without blocking. If
// the buffer is full, the job is dropped and a warning is emitted; the
// appointment's notification fields simply stay unsent.
func (s *NotificationService) EnqueueConfirmation(appointmentID uuid.UUID) {
	select {
	case s.jobs <- appointmentID:
	default:
		s.log.Warn("notification buffer full, dropping confirmation",
			zap.String("appointment_id", appointmentID.String()),
		)
	}
}

func (s *NotificationService) Shutdown() {
	close(s.jobs)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("notification service shutdown timed out; some confirmations may be lost")
	}
}

func (s *NotificationService) worker() {
	defer close(s.done)
	for id := range s.jobs {
		// The triggering request has long since returned; each job gets a
		// fresh context instead of inheriting a cancelled one.
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		if ok, msg := s.DispatchConfirmation(ctx, id); !ok {
			s.log.Warn("confirmation dispatch failed",
				zap.String("appointment_id", id.String()),
				zap.String("message", msg),
			)
		}
		cancel()
	}
}

// DispatchConfirmation re-fetches the appointment and its doctor/patient
// references, sends the confirmation email, and persists the outcome on the
// appointment's notification fields. Safe to call synchronously.
func (s *NotificationService) DispatchConfirmation(ctx context.Context, appointmentID uuid.UUID) (bool, string) {
	a, d, p, msg := s.fetch(ctx, appointmentID)
	if a == nil {
		return false, msg
	}
	if d == nil || p == nil {
		s.record(ctx, a, false, "failed: "+msg)
		return false, msg
	}

	ok, msg := s.mail.SendConfirmation(p.Email, p.FirstName, d.Name, d.Speciality, a.Date, a.Time)
	if ok {
		s.record(ctx, a, true, "sent")
	} else {
		s.record(ctx, a, false, "failed: "+msg)
	}
	s.countDispatch("confirmation", ok)
	return ok, msg
}

// DispatchReminder is the synchronous counterpart used by the explicit
// reminder operation; the outcome is both persisted and returned.
func (s *NotificationService) DispatchReminder(ctx context.Context, appointmentID uuid.UUID) (bool, string) {
	a, d, p, msg := s.fetch(ctx, appointmentID)
	if a == nil {
		return false, msg
	}
	if d == nil || p == nil {
		s.record(ctx, a, false, "reminder failed: "+msg)
		return false, msg
	}

	ok, msg := s.mail.SendReminder(p.Email, p.FirstName, d.Name, a.Date, a.Time)
	if ok {
		s.record(ctx, a, true, "reminder sent")
	} else {
		s.record(ctx, a, false, "reminder failed: "+msg)
	}
	s.countDispatch("reminder", ok)
	return ok, msg
}

func (s *NotificationService) fetch(ctx context.Context, id uuid.UUID) (*appointment.Appointment, *doctor.Doctor, *patient.Patient, string) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, "appointment not found"
	}

	d, err := s.doctors.GetByID(ctx, a.DoctorID)
	if err != nil {
		return a, nil, nil, "could not load the doctor for the appointment"
	}

	p, err := s.patients.GetByID(ctx, a.PatientID)
	if err != nil {
		return a, d, nil, "could not load the patient for the appointment"
	}

	return a, d, p, ""
}

func (s *NotificationService) record(ctx context.Context, a *appointment.Appointment, sent bool, status string) {
	a.RecordNotification(sent, status)
	if err := s.appts.Update(ctx, a); err != nil {
		s.log.Error("failed to persist notification outcome",
			zap.String("appointment_id", a.ID.String()),
			zap.Error(err),
		)
	}
}
