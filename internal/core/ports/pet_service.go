package ports

import (
	"context"
	"io"

	"github.com/petadopt/adoption-api/internal/core/domain"
)

// ImageUpload is an image file received from the transport layer, not yet stored.
type ImageUpload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// PetInput carries the owner-editable pet fields for create and update.
type PetInput struct {
	Name   string        `json:"name"   validate:"required"`
	Age    int           `json:"age"    validate:"required"`
	Weight float64       `json:"weight" validate:"required"`
	Color  string        `json:"color"  validate:"required"`
	Images []ImageUpload `json:"images" validate:"min=1"`
}

// PetService defines the pet listing and adoption workflow use cases.
type PetService interface {
	Create(ctx context.Context, identity *domain.User, input PetInput) (*domain.Pet, error)
	ListAll(ctx context.Context) ([]*domain.Pet, error)
	ListOwnedBy(ctx context.Context, identity *domain.User) ([]*domain.Pet, error)
	ListAdoptedBy(ctx context.Context, identity *domain.User) ([]*domain.Pet, error)
	GetByID(ctx context.Context, id string) (*domain.Pet, error)
	Update(ctx context.Context, identity *domain.User, id string, input PetInput) error
	Remove(ctx context.Context, identity *domain.User, id string) error
	// ScheduleVisit returns a confirmation message carrying the owner's contact details.
	ScheduleVisit(ctx context.Context, identity *domain.User, id string) (string, error)
	ConcludeAdoption(ctx context.Context, identity *domain.User, id string) error
}
