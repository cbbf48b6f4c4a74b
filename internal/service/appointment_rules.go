package service

import (
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/appointment"
	"github.com/google/uuid"
)

// validateAppointment applies the booking business rules and returns every
// violation at once. Field-shape validation of patient/doctor data lives with
// their own services; only scheduling rules are enforced here.
func validateAppointment(a *appointment.Appointment, hours appointment.BusinessHours) *ValidationError {
	var errs []string

	if a.DoctorID == uuid.Nil {
		errs = append(errs, "a doctor must be selected")
	}
	if a.PatientID == uuid.Nil {
		errs = append(errs, "a patient must be selected")
	}

	if a.Date.IsZero() {
		errs = append(errs, "the date is required")
	} else {
		today := appointment.DateOnly(time.Now())
		if a.Date.Before(today) {
			errs = append(errs, "the date cannot be in the past")
		}
		if !appointment.IsWeekday(a.Date) {
			errs = append(errs, "appointments can only be scheduled on weekdays (Monday to Friday)")
		}
	}

	if a.Time == "" {
		errs = append(errs, "the time is required")
	} else if minutes, err := appointment.ParseClock(a.Time); err != nil {
		errs = append(errs, "the time must be a valid HH:MM clock label")
	} else if !hours.Contains(minutes) {
		errs = append(errs, "the time must be between "+appointment.FormatClock(hours.Start)+" and "+appointment.FormatClock(hours.End))
	}

	if len(a.Reason) > appointment.MaxReasonLength {
		errs = append(errs, "the reason cannot exceed 500 characters")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
