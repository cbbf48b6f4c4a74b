package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorSlotTaken     = errors.New("the doctor already has an appointment at that time")
	ErrPatientSlotTaken    = errors.New("the patient already has an appointment at that time")
	ErrInvalidStatus       = errors.New("invalid appointment status")
	ErrInvalidClock        = errors.New("clock label must be HH:MM between 00:00 and 23:59")
)
