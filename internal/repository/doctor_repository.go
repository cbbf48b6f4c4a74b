package repository

import (
	"context"
	"errors"

	"github.com/clinicdesk/clinicdesk/internal/domain/doctor"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

func (r *DoctorRepository) Create(ctx context.Context, d *doctor.Doctor) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, doctor.ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepository) GetByDocument(ctx context.Context, document string) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).First(&d, "document = ?", document).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, doctor.ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepository) Update(ctx context.Context, d *doctor.Doctor) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DoctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&doctor.Doctor{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return doctor.ErrDoctorNotFound
	}
	return nil
}

func (r *DoctorRepository) List(ctx context.Context) ([]*doctor.Doctor, error) {
	var out []*doctor.Doctor
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *DoctorRepository) ListBySpeciality(ctx context.Context, speciality string) ([]*doctor.Doctor, error) {
	var out []*doctor.Doctor
	err := r.db.WithContext(ctx).
		Where("speciality = ?", speciality).
		Order("name ASC").
		Find(&out).Error
	return out, err
}

func (r *DoctorRepository) Specialities(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&doctor.Doctor{}).
		Distinct("speciality").
		Order("speciality ASC").
		Pluck("speciality", &out).Error
	return out, err
}

func (r *DoctorRepository) ExistsByDocument(ctx context.Context, document string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Where("document = ?", document)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DoctorRepository) ExistsByNameAndSpeciality(ctx context.Context, name, speciality string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&doctor.Doctor{}).
		Where("name = ? AND speciality = ?", name, speciality)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
