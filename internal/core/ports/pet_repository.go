package ports

import (
	"context"
	"time"

	"github.com/petadopt/adoption-api/internal/core/domain"
)

// PetFilter selects pets for List. Empty fields are not applied.
type PetFilter struct {
	OwnerID   string
	AdopterID string
}

// PetChanges is the set of owner-editable fields written by Update.
type PetChanges struct {
	Name      string
	Age       int
	Weight    float64
	Color     string
	Images    []string
	UpdatedAt time.Time
}

// PetRepository defines persistence operations for pets.
//
// Mutations are conditional: each re-asserts its precondition in the write
// filter and returns domain.ErrStaleWrite when nothing matched.
type PetRepository interface {
	Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error)
	FindByID(ctx context.Context, id string) (*domain.Pet, error)
	// List returns matching pets newest first.
	List(ctx context.Context, filter PetFilter) ([]*domain.Pet, error)
	// Update applies changes if the pet is still owned by ownerID.
	Update(ctx context.Context, id, ownerID string, changes PetChanges) error
	// Delete removes the pet if it is still owned by ownerID.
	Delete(ctx context.Context, id, ownerID string) error
	// SetAdopter records adopter unless they own the pet or already are its adopter.
	SetAdopter(ctx context.Context, id string, adopter domain.Adopter, at time.Time) error
	// MarkAdopted flips available to false if the pet is owned by ownerID and still available.
	MarkAdopted(ctx context.Context, id, ownerID string, at time.Time) error
}
