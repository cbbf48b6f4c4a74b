package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinicdesk/clinicdesk/internal/domain/doctor"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DoctorService struct {
	repo     doctor.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewDoctorService(repo doctor.Repository, auditSvc *AuditService, log *zap.Logger) *DoctorService {
	return &DoctorService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *DoctorService) CreateDoctor(ctx context.Context, cmd *doctor.CreateDoctorCommand, callerID uuid.UUID, ip string) (*doctor.Doctor, error) {
	d := &doctor.Doctor{
		Document:   strings.TrimSpace(cmd.Document),
		Name:       strings.TrimSpace(cmd.Name),
		Speciality: strings.TrimSpace(cmd.Speciality),
		Email:      strings.ToLower(strings.TrimSpace(cmd.Email)),
		Phone:      strings.TrimSpace(cmd.Phone),
	}

	if verr := validateDoctorFields(d); verr != nil {
		return nil, verr
	}

	exists, err := s.repo.ExistsByDocument(ctx, d.Document, uuid.Nil)
	if err != nil {
		s.log.Error("failed to check doctor document uniqueness", zap.Error(err))
		return nil, fmt.Errorf("checking uniqueness: %w", err)
	}
	if exists {
		return nil, doctor.ErrDoctorAlreadyExists
	}

	exists, err = s.repo.ExistsByNameAndSpeciality(ctx, d.Name, d.Speciality, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("checking name and speciality uniqueness: %w", err)
	}
	if exists {
		return nil, doctor.ErrDuplicateSpeciality
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error("failed to create doctor", zap.Error(err))
		return nil, fmt.Errorf("creating doctor: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "create",
		ResourceType: "doctor",
		ResourceID:   d.ID.String(),
		IPAddress:    ip,
	})

	return d, nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) GetByDocument(ctx context.Context, document string) (*doctor.Doctor, error) {
	return s.repo.GetByDocument(ctx, strings.TrimSpace(document))
}

func (s *DoctorService) UpdateDoctor(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateDoctorCommand, callerID uuid.UUID, ip string) (*doctor.Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		d.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Speciality != nil {
		d.Speciality = strings.TrimSpace(*cmd.Speciality)
	}
	if cmd.Email != nil {
		d.Email = strings.ToLower(strings.TrimSpace(*cmd.Email))
	}
	if cmd.Phone != nil {
		d.Phone = strings.TrimSpace(*cmd.Phone)
	}

	if verr := validateDoctorFields(d); verr != nil {
		return nil, verr
	}

	exists, err := s.repo.ExistsByNameAndSpeciality(ctx, d.Name, d.Speciality, d.ID)
	if err != nil {
		return nil, fmt.Errorf("checking name and speciality uniqueness: %w", err)
	}
	if exists {
		return nil, doctor.ErrDuplicateSpeciality
	}

	if err := s.repo.Update(ctx, d); err != nil {
		s.log.Error("failed to update doctor", zap.Error(err))
		return nil, fmt.Errorf("updating doctor: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "update",
		ResourceType: "doctor",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return d, nil
}

func (s *DoctorService) DeleteDoctor(ctx context.Context, id uuid.UUID, callerID uuid.UUID, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		Action:       "delete",
		ResourceType: "doctor",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}

func (s *DoctorService) ListDoctors(ctx context.Context) ([]*doctor.Doctor, error) {
	return s.repo.List(ctx)
}

func (s *DoctorService) ListBySpeciality(ctx context.Context, speciality string) ([]*doctor.Doctor, error) {
	return s.repo.ListBySpeciality(ctx, strings.TrimSpace(speciality))
}

func (s *DoctorService) Specialities(ctx context.Context) ([]string, error) {
	return s.repo.Specialities(ctx)
}

func validateDoctorFields(d *doctor.Doctor) error {
	var errs []string

	if d.Document == "" {
		errs = append(errs, "the document is required")
	} else if len(d.Document) < 5 || len(d.Document) > 20 {
		errs = append(errs, "the document must be between 5 and 20 characters")
	}
	if d.Name == "" {
		errs = append(errs, "the name is required")
	} else if len(d.Name) > 100 {
		errs = append(errs, "the name cannot exceed 100 characters")
	}
	if d.Speciality == "" {
		errs = append(errs, "the speciality is required")
	} else if len(d.Speciality) > 50 {
		errs = append(errs, "the speciality cannot exceed 50 characters")
	}
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		errs = append(errs, "a valid email address is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
