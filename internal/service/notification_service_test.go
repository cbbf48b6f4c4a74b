package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/appointment"
	"github.com/clinicdesk/clinicdesk/internal/domain/doctor"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newNotificationFixture(t *testing.T, mail *fakeMailer) (*NotificationService, *memAppointmentRepo, *appointment.Appointment) {
	t.Helper()

	appts := newMemAppointmentRepo()
	doctors := newMemDoctorRepo()
	patients := newMemPatientRepo()

	d := &doctor.Doctor{Document: "10001", Name: "Garcia", Speciality: "Cardiology", Email: "garcia@clinic.test"}
	if err := doctors.Create(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	p := &patient.Patient{Document: "20001", FirstName: "Ana", LastName: "Lopez", Age: 34, Email: "ana@example.test"}
	if err := patients.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	a := &appointment.Appointment{
		DoctorID:  d.ID,
		PatientID: p.ID,
		Date:      appointment.DateOnly(time.Now().AddDate(0, 0, 3)),
		Time:      "09:30",
		Status:    appointment.StatusPending,
	}
	if err := appts.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	svc := NewNotificationService(appts, doctors, patients, mail, zap.NewNop())
	t.Cleanup(svc.Shutdown)

	return svc, appts, a
}

func TestDispatchConfirmationRecordsSuccess(t *testing.T) {
	mail := &fakeMailer{}
	svc, appts, a := newNotificationFixture(t, mail)

	ok, msg := svc.DispatchConfirmation(context.Background(), a.ID)
	if !ok {
		t.Fatalf("dispatch failed: %s", msg)
	}

	stored, err := appts.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.NotificationSent {
		t.Error("NotificationSent should be true")
	}
	if stored.NotificationStatus != "sent" {
		t.Errorf("NotificationStatus = %q, want sent", stored.NotificationStatus)
	}
	if stored.NotificationSentAt == nil {
		t.Error("NotificationSentAt should be stamped")
	}
}

func TestDispatchConfirmationRecordsFailure(t *testing.T) {
	mail := &fakeMailer{fail: true, failMsg: "error sending the email: smtp timeout"}
	svc, appts, a := newNotificationFixture(t, mail)

	ok, msg := svc.DispatchConfirmation(context.Background(), a.ID)
	if ok {
		t.Fatal("dispatch should fail")
	}
	if msg != "error sending the email: smtp timeout" {
		t.Errorf("message = %q", msg)
	}

	stored, err := appts.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.NotificationSent {
		t.Error("NotificationSent should stay false")
	}
	if !strings.HasPrefix(stored.NotificationStatus, "failed: ") {
		t.Errorf("NotificationStatus = %q, want failed: prefix", stored.NotificationStatus)
	}
}

func TestDispatchConfirmationMissingAppointment(t *testing.T) {
	mail := &fakeMailer{}
	svc, _, _ := newNotificationFixture(t, mail)

	ok, msg := svc.DispatchConfirmation(context.Background(), uuid.New())
	if ok {
		t.Fatal("dispatch of a missing appointment should fail")
	}
	if msg != "appointment not found" {
		t.Errorf("message = %q", msg)
	}
	if mail.sends() != 0 {
		t.Errorf("no email should be sent, got %d", mail.sends())
	}
}

func TestDispatchReminderRecordsOutcome(t *testing.T) {
	mail := &fakeMailer{}
	svc, appts, a := newNotificationFixture(t, mail)

	ok, msg := svc.DispatchReminder(context.Background(), a.ID)
	if !ok {
		t.Fatalf("reminder failed: %s", msg)
	}
	if msg != "reminder sent successfully" {
		t.Errorf("message = %q", msg)
	}

	stored, err := appts.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.NotificationStatus != "reminder sent" {
		t.Errorf("NotificationStatus = %q", stored.NotificationStatus)
	}
}

func TestEnqueueConfirmationDelivers(t *testing.T) {
	mail := &fakeMailer{}
	svc, appts, a := newNotificationFixture(t, mail)

	svc.EnqueueConfirmation(a.ID)

	// The worker owns delivery; poll until the outcome lands.
	deadline := time.After(2 * time.Second)
	for {
		stored, err := appts.GetByID(context.Background(), a.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.NotificationSent {
			return
		}
		select {
		case <-deadline:
			t.Fatal("confirmation was never delivered")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
