package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByDocument(ctx context.Context, document string) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context) ([]*Doctor, error)
	ListBySpeciality(ctx context.Context, speciality string) ([]*Doctor, error)
	Specialities(ctx context.Context) ([]string, error)

	ExistsByDocument(ctx context.Context, document string, excludeID uuid.UUID) (bool, error)
	ExistsByNameAndSpeciality(ctx context.Context, name, speciality string, excludeID uuid.UUID) (bool, error)
}
