package service

import (
	"context"
	"errors"
	"testing"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestPatientService() *PatientService {
	return NewPatientService(newMemPatientRepo(), newTestAuditService(), zap.NewNop())
}

func validPatientCommand() *patient.CreatePatientCommand {
	return &patient.CreatePatientCommand{
		Document:  "87654321",
		FirstName: "Ana",
		LastName:  "Lopez",
		Age:       34,
		Email:     "Ana@Example.Test",
		Phone:     "555-0200",
	}
}

func TestCreatePatient(t *testing.T) {
	svc := newTestPatientService()

	p, err := svc.CreatePatient(context.Background(), validPatientCommand(), uuid.Nil, "")
	if err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected an assigned ID")
	}
	if p.Email != "ana@example.test" {
		t.Errorf("email = %q, want lowercased", p.Email)
	}
	if p.FullName() != "Ana Lopez" {
		t.Errorf("FullName = %q", p.FullName())
	}
}

func TestCreatePatientDuplicateDocument(t *testing.T) {
	svc := newTestPatientService()

	if _, err := svc.CreatePatient(context.Background(), validPatientCommand(), uuid.Nil, ""); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.CreatePatient(context.Background(), validPatientCommand(), uuid.Nil, "")
	if !errors.Is(err, patient.ErrPatientAlreadyExists) {
		t.Errorf("expected ErrPatientAlreadyExists, got %v", err)
	}
}

func TestCreatePatientValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*patient.CreatePatientCommand)
	}{
		{"missing document", func(c *patient.CreatePatientCommand) { c.Document = "" }},
		{"short document", func(c *patient.CreatePatientCommand) { c.Document = "123" }},
		{"missing first name", func(c *patient.CreatePatientCommand) { c.FirstName = "  " }},
		{"missing last name", func(c *patient.CreatePatientCommand) { c.LastName = "" }},
		{"zero age", func(c *patient.CreatePatientCommand) { c.Age = 0 }},
		{"implausible age", func(c *patient.CreatePatientCommand) { c.Age = 150 }},
		{"bad email", func(c *patient.CreatePatientCommand) { c.Email = "nope" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestPatientService()
			cmd := validPatientCommand()
			tt.mutate(cmd)

			_, err := svc.CreatePatient(context.Background(), cmd, uuid.Nil, "")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestUpdatePatientPartial(t *testing.T) {
	svc := newTestPatientService()

	p, err := svc.CreatePatient(context.Background(), validPatientCommand(), uuid.Nil, "")
	if err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}

	age := 35
	updated, err := svc.UpdatePatient(context.Background(), p.ID, &patient.UpdatePatientCommand{Age: &age}, uuid.Nil, "")
	if err != nil {
		t.Fatalf("UpdatePatient: %v", err)
	}

	if updated.Age != 35 {
		t.Errorf("age = %d, want 35", updated.Age)
	}
	// Untouched fields survive.
	if updated.FirstName != "Ana" || updated.Document != "87654321" {
		t.Errorf("unrelated fields changed: %+v", updated)
	}
}

func TestUpdatePatientRejectsInvalidField(t *testing.T) {
	svc := newTestPatientService()

	p, err := svc.CreatePatient(context.Background(), validPatientCommand(), uuid.Nil, "")
	if err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}

	bad := "no-at-sign"
	_, err = svc.UpdatePatient(context.Background(), p.ID, &patient.UpdatePatientCommand{Email: &bad}, uuid.Nil, "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestGetPatientByDocument(t *testing.T) {
	svc := newTestPatientService()

	if _, err := svc.CreatePatient(context.Background(), validPatientCommand(), uuid.Nil, ""); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}

	p, err := svc.GetByDocument(context.Background(), " 87654321 ")
	if err != nil {
		t.Fatalf("GetByDocument: %v", err)
	}
	if p.FirstName != "Ana" {
		t.Errorf("first name = %q", p.FirstName)
	}

	if _, err := svc.GetByDocument(context.Background(), "00000000"); !errors.Is(err, patient.ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}
