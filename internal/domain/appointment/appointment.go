package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status lifecycle:
//
//	pending → confirmed → attended
//	any non-cancelled status → cancelled (frees the slot)
//	confirmed → no_show (if patient doesn't arrive)
//
// Transition operations are deliberately permissive: clinic staff may correct
// a mis-marked appointment by re-invoking any transition.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusAttended  Status = "attended"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusAttended, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Statuses lists every status in reporting order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusAttended, StatusCancelled, StatusNoShow}
}

const MaxReasonLength = 500

type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`

	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctor_id"`
	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`

	// Date carries the calendar day only; Time is a zero-padded "HH:MM" clock
	// label so that lexical order equals chronological order.
	Date   time.Time `gorm:"column:date;type:date;not null;index" json:"date"`
	Time   string    `gorm:"column:time;type:varchar(5);not null" json:"time"`
	Reason string    `gorm:"column:reason;type:varchar(500)" json:"reason"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`

	NotificationSent   bool       `gorm:"column:notification_sent;default:false" json:"notification_sent"`
	NotificationSentAt *time.Time `gorm:"column:notification_sent_at" json:"notification_sent_at,omitempty"`
	NotificationStatus string     `gorm:"column:notification_status;type:varchar(255)" json:"notification_status,omitempty"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

// Touch stamps UpdatedAt. Called on every mutation after creation; a freshly
// created appointment keeps UpdatedAt nil.
func (a *Appointment) Touch() {
	now := time.Now()
	a.UpdatedAt = &now
}

// IsActive reports whether the appointment occupies its slot.
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

func (a *Appointment) Confirm() {
	a.Status = StatusConfirmed
	a.Touch()
}

func (a *Appointment) MarkAttended() {
	a.Status = StatusAttended
	a.Touch()
}

func (a *Appointment) Cancel(reason string) {
	a.Status = StatusCancelled
	if reason == "" {
		reason = "Cancelled by the user"
	}
	a.Reason = reason
	a.Touch()
}

func (a *Appointment) MarkNoShow() {
	a.Status = StatusNoShow
	a.Touch()
}

// RecordNotification persists the outcome of a notification dispatch on the
// appointment itself. Failures are visible only through these fields.
func (a *Appointment) RecordNotification(sent bool, status string) {
	now := time.Now()
	a.NotificationSent = sent
	a.NotificationSentAt = &now
	a.NotificationStatus = status
}

type ScheduleCommand struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      time.Time
	Time      string
	Reason    string
}

// RescheduleCommand re-books an existing appointment. Status is optional;
// when nil the current status is kept.
type RescheduleCommand struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      time.Time
	Time      string
	Reason    string
	Status    *Status
}
