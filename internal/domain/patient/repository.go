package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByDocument(ctx context.Context, document string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context) ([]*Patient, error)

	ExistsByDocument(ctx context.Context, document string, excludeID uuid.UUID) (bool, error)
}
