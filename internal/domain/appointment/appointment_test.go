package appointment

import (
	"testing"
	"time"
)

func newTestAppointment() *Appointment {
	return &Appointment{
		Date:   DateOnly(time.Now().AddDate(0, 0, 7)),
		Time:   "10:00",
		Reason: "general check-up",
		Status: StatusPending,
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range Statuses() {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Status{"", "scheduled", "PENDING", "done"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestConfirmStampsUpdatedAt(t *testing.T) {
	a := newTestAppointment()
	if a.UpdatedAt != nil {
		t.Fatal("a fresh appointment should have no update timestamp")
	}

	a.Confirm()

	if a.Status != StatusConfirmed {
		t.Errorf("status = %s, want confirmed", a.Status)
	}
	if a.UpdatedAt == nil {
		t.Error("Confirm should stamp UpdatedAt")
	}
}

func TestMarkAttended(t *testing.T) {
	a := newTestAppointment()
	a.Confirm()
	a.MarkAttended()

	if a.Status != StatusAttended {
		t.Errorf("status = %s, want attended", a.Status)
	}
}

func TestMarkNoShow(t *testing.T) {
	a := newTestAppointment()
	a.Confirm()
	a.MarkNoShow()

	if a.Status != StatusNoShow {
		t.Errorf("status = %s, want no_show", a.Status)
	}
}

func TestCancelKeepsProvidedReason(t *testing.T) {
	a := newTestAppointment()
	a.Cancel("patient requested a different doctor")

	if a.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", a.Status)
	}
	if a.Reason != "patient requested a different doctor" {
		t.Errorf("reason = %q", a.Reason)
	}
	if a.IsActive() {
		t.Error("cancelled appointment should not be active")
	}
}

func TestCancelDefaultsReason(t *testing.T) {
	a := newTestAppointment()
	a.Cancel("")

	if a.Reason != "Cancelled by the user" {
		t.Errorf("reason = %q, want default", a.Reason)
	}
}

func TestIsActive(t *testing.T) {
	a := newTestAppointment()
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusAttended, StatusNoShow} {
		a.Status = s
		if !a.IsActive() {
			t.Errorf("%s should occupy its slot", s)
		}
	}
	a.Status = StatusCancelled
	if a.IsActive() {
		t.Error("cancelled should not occupy its slot")
	}
}

func TestRecordNotification(t *testing.T) {
	a := newTestAppointment()
	a.RecordNotification(true, "sent")

	if !a.NotificationSent {
		t.Error("NotificationSent should be true")
	}
	if a.NotificationSentAt == nil {
		t.Error("NotificationSentAt should be stamped")
	}
	if a.NotificationStatus != "sent" {
		t.Errorf("NotificationStatus = %q", a.NotificationStatus)
	}

	a.RecordNotification(false, "failed: smtp timeout")
	if a.NotificationSent {
		t.Error("a failed dispatch should clear NotificationSent")
	}
	if a.NotificationStatus != "failed: smtp timeout" {
		t.Errorf("NotificationStatus = %q", a.NotificationStatus)
	}
}
