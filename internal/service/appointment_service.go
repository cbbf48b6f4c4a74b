package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/appointment"
	"github.com/clinicdesk/clinicdesk/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher is the notification collaborator the scheduling engine triggers.
// Enqueue never blocks and never fails the booking path; the Dispatch methods
// run synchronously and report the outcome to the caller.
type Dispatcher interface {
	EnqueueConfirmation(appointmentID uuid.UUID)
	DispatchConfirmation(ctx context.Context, appointmentID uuid.UUID) (bool, string)
	DispatchReminder(ctx context.Context, appointmentID uuid.UUID) (bool, string)
}

type AppointmentService struct {
	repo       appointment.Repository
	dispatcher Dispatcher
	auditSvc   *AuditService
	hours      appointment.BusinessHours
	log        *zap.Logger
	mx         *metrics.Collector
}

// WithMetrics attaches a collector. Without one the service runs unmetered.
func (s *AppointmentService) WithMetrics(c *metrics.Collector) *AppointmentService {
	s.mx = c
	return s
}

func (s *AppointmentService) countStatus(status appointment.Status) {
	if s.mx != nil {
		s.mx.AppointmentsTotal.WithLabelValues(string(status)).Inc()
	}
}

func NewAppointmentService(
	repo appointment.Repository,
	dispatcher Dispatcher,
	auditSvc *AuditService,
	hours appointment.BusinessHours,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{repo: repo, dispatcher: dispatcher, auditSvc: auditSvc, hours: hours, log: log}
}

// Schedule books a new appointment. The operation succeeds on persistence
// alone; the confirmation notification runs fire-and-forget afterwards.
func (s *AppointmentService) Schedule(ctx context.Context, cmd *appointment.ScheduleCommand, callerID uuid.UUID, ip string) (*appointment.Appointment, error) {
	a := &appointment.Appointment{
		DoctorID:  cmd.DoctorID,
		PatientID: cmd.PatientID,
		Date:      appointment.DateOnly(cmd.Date),
		Time:      cmd.Time,
		Reason:    strings.TrimSpace(cmd.Reason),
		Status:    appointment.StatusPending,
	}

	if verr := validateAppointment(a, s.hours); verr != nil {
		return nil, verr
	}

	if err := s.checkConflicts(ctx, a, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		// The partial unique indexes are the commit-time authority; a lost
		// race surfaces here as a slot-taken sentinel, not a generic failure.
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "create",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})

	s.countStatus(a.Status)
	s.dispatcher.EnqueueConfirmation(a.ID)

	return a, nil
}

// Reschedule re-books an existing appointment with the same rule validation
// and conflict checks as Schedule, excluding the appointment's own slot.
func (s *AppointmentService) Reschedule(ctx context.Context, id uuid.UUID, cmd *appointment.RescheduleCommand, callerID uuid.UUID, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.DoctorID = cmd.DoctorID
	a.PatientID = cmd.PatientID
	a.Date = appointment.DateOnly(cmd.Date)
	a.Time = cmd.Time
	a.Reason = strings.TrimSpace(cmd.Reason)
	if cmd.Status != nil {
		if !cmd.Status.IsValid() {
			return nil, appointment.ErrInvalidStatus
		}
		a.Status = *cmd.Status
	}

	if verr := validateAppointment(a, s.hours); verr != nil {
		return nil, verr
	}

	if err := s.checkConflicts(ctx, a, a.ID); err != nil {
		return nil, err
	}

	a.Touch()
	if err := s.repo.Update(ctx, a); err != nil {
		s.log.Error("failed to update appointment", zap.Error(err))
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})

	if a.Status == appointment.StatusPending || a.Status == appointment.StatusConfirmed {
		s.dispatcher.EnqueueConfirmation(a.ID)
	}

	return a, nil
}

func (s *AppointmentService) Confirm(ctx context.Context, id uuid.UUID, callerID uuid.UUID, ip string) (*appointment.Appointment, error) {
	a, err := s.transition(ctx, id, callerID, ip, `{"status":"confirmed"}`, (*appointment.Appointment).Confirm)
	if err != nil {
		return nil, err
	}
	s.dispatcher.EnqueueConfirmation(a.ID)
	return a, nil
}

func (s *AppointmentService) MarkAttended(ctx context.Context, id uuid.UUID, callerID uuid.UUID, ip string) (*appointment.Appointment, error) {
	return s.transition(ctx, id, callerID, ip, `{"status":"attended"}`, (*appointment.Appointment).MarkAttended)
}

func (s *AppointmentService) MarkNoShow(ctx context.Context, id uuid.UUID, callerID uuid.UUID, ip string) (*appointment.Appointment, error) {
	return s.transition(ctx, id, callerID, ip, `{"status":"no_show"}`, (*appointment.Appointment).MarkNoShow)
}

// Cancel releases the slot: cancelled appointments no longer count as
// occupants for either the doctor or the patient.
func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID, reason string, callerID uuid.UUID, ip string) (*appointment.Appointment, error) {
	changes := fmt.Sprintf(`{"status":"cancelled","reason":%q}`, reason)
	return s.transition(ctx, id, callerID, ip, changes, func(a *appointment.Appointment) {
		a.Cancel(reason)
	})
}

func (s *AppointmentService) transition(ctx context.Context, id uuid.UUID, callerID uuid.UUID, ip, changes string, apply func(*appointment.Appointment)) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(a)

	if err := s.repo.Update(ctx, a); err != nil {
		s.log.Error("failed to update appointment status", zap.Error(err))
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      changes,
	})

	s.countStatus(a.Status)
	return a, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID, callerID uuid.UUID, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "delete",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}

// AvailableSlots enumerates the free slot labels for a doctor on a date,
// ascending. A fully booked day yields an empty slice.
func (s *AppointmentService) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	if s.mx != nil {
		defer func(start time.Time) {
			s.mx.SlotQueryDuration.Observe(time.Since(start).Seconds())
		}(time.Now())
	}

	day := appointment.DateOnly(date)
	available := make([]string, 0, len(s.hours.Slots()))
	for _, slot := range s.hours.Slots() {
		taken, err := s.repo.HasDoctorConflict(ctx, doctorID, day, slot, uuid.Nil)
		if err != nil {
			return nil, fmt.Errorf("checking slot %s: %w", slot, err)
		}
		if !taken {
			available = append(available, slot)
		}
	}
	return available, nil
}

// Statistics counts appointments per status across all five statuses.
func (s *AppointmentService) Statistics(ctx context.Context) (map[appointment.Status]int64, error) {
	stats := make(map[appointment.Status]int64, len(appointment.Statuses()))
	for _, status := range appointment.Statuses() {
		n, err := s.repo.CountByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("counting %s appointments: %w", status, err)
		}
		stats[status] = n
	}
	return stats, nil
}

// SendReminder dispatches a reminder synchronously and reports the outcome to
// the caller, unlike the fire-and-forget confirmation path.
func (s *AppointmentService) SendReminder(ctx context.Context, id uuid.UUID, callerID uuid.UUID, ip string) (bool, string) {
	ok, msg := s.dispatcher.DispatchReminder(ctx, id)

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "notify",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"kind":"reminder","sent":%t}`, ok),
	})

	return ok, msg
}

func (s *AppointmentService) ResendConfirmation(ctx context.Context, id uuid.UUID, callerID uuid.UUID, ip string) (bool, string) {
	ok, msg := s.dispatcher.DispatchConfirmation(ctx, id)

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "notify",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"kind":"confirmation","sent":%t}`, ok),
	})

	if ok {
		return true, "confirmation resent successfully"
	}
	return false, msg
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentService) ListAppointments(ctx context.Context) ([]*appointment.Appointment, error) {
	return s.repo.List(ctx)
}

func (s *AppointmentService) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *AppointmentService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *AppointmentService) ListByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	if !status.IsValid() {
		return nil, appointment.ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, status)
}

func (s *AppointmentService) ListToday(ctx context.Context) ([]*appointment.Appointment, error) {
	return s.repo.ListToday(ctx)
}

func (s *AppointmentService) ListUpcoming(ctx context.Context, days int) ([]*appointment.Appointment, error) {
	if days <= 0 {
		days = 7
	}
	return s.repo.ListUpcoming(ctx, days)
}

// checkConflicts verifies both scopes: the doctor's calendar first, then the
// patient's. Both must be free for the booking to proceed.
func (s *AppointmentService) checkConflicts(ctx context.Context, a *appointment.Appointment, excludeID uuid.UUID) error {
	taken, err := s.repo.HasDoctorConflict(ctx, a.DoctorID, a.Date, a.Time, excludeID)
	if err != nil {
		return fmt.Errorf("checking doctor conflicts: %w", err)
	}
	if taken {
		return appointment.ErrDoctorSlotTaken
	}

	taken, err = s.repo.HasPatientConflict(ctx, a.PatientID, a.Date, a.Time, excludeID)
	if err != nil {
		return fmt.Errorf("checking patient conflicts: %w", err)
	}
	if taken {
		return appointment.ErrPatientSlotTaken
	}

	return nil
}
