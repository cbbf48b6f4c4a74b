package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PatientService struct {
	repo     patient.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewPatientService(repo patient.Repository, auditSvc *AuditService, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *PatientService) CreatePatient(ctx context.Context, cmd *patient.CreatePatientCommand, callerID uuid.UUID, ip string) (*patient.Patient, error) {
	if err := validatePatientCommand(cmd); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByDocument(ctx, strings.TrimSpace(cmd.Document), uuid.Nil)
	if err != nil {
		s.log.Error("failed to check patient document uniqueness", zap.Error(err))
		return nil, fmt.Errorf("checking uniqueness: %w", err)
	}
	if exists {
		return nil, patient.ErrPatientAlreadyExists
	}

	p := &patient.Patient{
		Document:  strings.TrimSpace(cmd.Document),
		FirstName: strings.TrimSpace(cmd.FirstName),
		LastName:  strings.TrimSpace(cmd.LastName),
		Age:       cmd.Age,
		Email:     strings.ToLower(strings.TrimSpace(cmd.Email)),
		Phone:     strings.TrimSpace(cmd.Phone),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "create",
		ResourceType: "patient",
		ResourceID:   p.ID.String(),
		IPAddress:    ip,
	})

	return p, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PatientService) GetByDocument(ctx context.Context, document string) (*patient.Patient, error) {
	return s.repo.GetByDocument(ctx, strings.TrimSpace(document))
}

func (s *PatientService) UpdatePatient(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand, callerID uuid.UUID, ip string) (*patient.Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.FirstName != nil {
		p.FirstName = strings.TrimSpace(*cmd.FirstName)
	}
	if cmd.LastName != nil {
		p.LastName = strings.TrimSpace(*cmd.LastName)
	}
	if cmd.Age != nil {
		p.Age = *cmd.Age
	}
	if cmd.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*cmd.Email))
	}
	if cmd.Phone != nil {
		p.Phone = strings.TrimSpace(*cmd.Phone)
	}

	if verr := validatePatientFields(p); verr != nil {
		return nil, verr
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.log.Error("failed to update patient", zap.Error(err))
		return nil, fmt.Errorf("updating patient: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "update",
		ResourceType: "patient",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return p, nil
}

func (s *PatientService) DeletePatient(ctx context.Context, id uuid.UUID, callerID uuid.UUID, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "delete",
		ResourceType: "patient",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}

func (s *PatientService) ListPatients(ctx context.Context) ([]*patient.Patient, error) {
	return s.repo.List(ctx)
}

func validatePatientCommand(cmd *patient.CreatePatientCommand) error {
	p := &patient.Patient{
		Document:  strings.TrimSpace(cmd.Document),
		FirstName: strings.TrimSpace(cmd.FirstName),
		LastName:  strings.TrimSpace(cmd.LastName),
		Age:       cmd.Age,
		Email:     strings.TrimSpace(cmd.Email),
	}
	return validatePatientFields(p)
}

func validatePatientFields(p *patient.Patient) error {
	var errs []string

	if p.Document == "" {
		errs = append(errs, "the identity document is required")
	} else if len(p.Document) < 5 || len(p.Document) > 20 {
		errs = append(errs, "the document must be between 5 and 20 characters")
	}
	if p.FirstName == "" {
		errs = append(errs, "the first name is required")
	}
	if p.LastName == "" {
		errs = append(errs, "the last name is required")
	}
	if p.Age <= 0 || p.Age >= 150 {
		errs = append(errs, "the age must be between 1 and 149")
	}
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		errs = append(errs, "a valid email address is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
