package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/petadopt/adoption-api/internal/pkg/metrics"
	"github.com/petadopt/adoption-api/internal/core/domain"
	"github.com/petadopt/adoption-api/internal/core/ports"
	"github.com/petadopt/adoption-api/internal/pkg/validation"
)

// PetService implements the pet listing and adoption workflow.
type PetService struct {
	repo      ports.PetRepository
	images    ports.ImageStore
	cleaner   ports.ImageCleaner
	validator *validation.Validator
	logger    zerolog.Logger
	now       func() time.Time
}

func NewPetService(repo ports.PetRepository, images ports.ImageStore, cleaner ports.ImageCleaner, logger zerolog.Logger) *PetService {
	return &PetService{
		repo:      repo,
		images:    images,
		cleaner:   cleaner,
		validator: validation.New(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create lists a new pet owned by identity. Nothing is stored unless every
// field is valid.
func (s *PetService) Create(ctx context.Context, identity *domain.User, in ports.PetInput) (*domain.Pet, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	refs, err := s.storeImages(ctx, "", in.Images)
	if err != nil {
		return nil, err
	}

	now := s.now()
	pet, err := s.repo.Create(ctx, &domain.Pet{
		Name:      in.Name,
		Age:       in.Age,
		Weight:    in.Weight,
		Color:     in.Color,
		Images:    refs,
		Available: true,
		Owner:     domain.OwnerOf(identity),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.cleanup("", refs)
		s.logger.Error().Err(err).Str("owner_id", identity.ID).Msg("failed to create pet")
		return nil, fmt.Errorf("create pet: %w", err)
	}

	metrics.PetsCreatedTotal.Inc()
	s.logger.Info().Str("pet_id", pet.ID).Str("owner_id", identity.ID).Msg("pet created")
	return pet, nil
}

// ListAll returns every pet, newest first, regardless of availability.
func (s *PetService) ListAll(ctx context.Context) ([]*domain.Pet, error) {
	pets, err := s.repo.List(ctx, ports.PetFilter{})
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	return pets, nil
}

func (s *PetService) ListOwnedBy(ctx context.Context, identity *domain.User) ([]*domain.Pet, error) {
	pets, err := s.repo.List(ctx, ports.PetFilter{OwnerID: identity.ID})
	if err != nil {
		return nil, fmt.Errorf("list owned pets: %w", err)
	}
	if len(pets) == 0 {
		return nil, domain.ErrNoPets
	}
	return pets, nil
}

func (s *PetService) ListAdoptedBy(ctx context.Context, identity *domain.User) ([]*domain.Pet, error) {
	pets, err := s.repo.List(ctx, ports.PetFilter{AdopterID: identity.ID})
	if err != nil {
		return nil, fmt.Errorf("list adopted pets: %w", err)
	}
	if len(pets) == 0 {
		return nil, domain.ErrNoAdoptions
	}
	return pets, nil
}

func (s *PetService) GetByID(ctx context.Context, id string) (*domain.Pet, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

// Update replaces the owner-editable fields of a pet. All fields are
// validated before anything is written; owner, adopter and availability are
// left untouched.
func (s *PetService) Update(ctx context.Context, identity *domain.User, id string, in ports.PetInput) error {
	pet, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !pet.OwnedBy(identity.ID) {
		return s.reject("update", "not_owner", domain.ErrNotPetOwner)
	}
	if err := s.validateInput(in); err != nil {
		return err
	}

	refs, err := s.storeImages(ctx, id, in.Images)
	if err != nil {
		return err
	}

	err = s.repo.Update(ctx, id, identity.ID, ports.PetChanges{
		Name:      in.Name,
		Age:       in.Age,
		Weight:    in.Weight,
		Color:     in.Color,
		Images:    refs,
		UpdatedAt: s.now(),
	})
	if err != nil {
		s.cleanup(id, refs)
		if errors.Is(err, domain.ErrStaleWrite) {
			return s.resolveStale(ctx, id, s.reject("update", "not_owner", domain.ErrNotPetOwner))
		}
		return fmt.Errorf("update pet: %w", err)
	}

	s.cleanup(id, pet.Images)
	s.logger.Info().Str("pet_id", id).Msg("pet updated")
	return nil
}

// Remove deletes a pet listed by identity.
func (s *PetService) Remove(ctx context.Context, identity *domain.User, id string) error {
	pet, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !pet.OwnedBy(identity.ID) {
		return s.reject("remove", "not_owner", domain.ErrNotPetOwner)
	}

	if err := s.repo.Delete(ctx, id, identity.ID); err != nil {
		if errors.Is(err, domain.ErrStaleWrite) {
			return s.resolveStale(ctx, id, s.reject("remove", "not_owner", domain.ErrNotPetOwner))
		}
		return fmt.Errorf("remove pet: %w", err)
	}

	s.cleanup(id, pet.Images)
	metrics.PetsRemovedTotal.Inc()
	s.logger.Info().Str("pet_id", id).Msg("pet removed")
	return nil
}

// ScheduleVisit records identity as the prospective adopter and returns a
// message carrying the owner's contact details.
func (s *PetService) ScheduleVisit(ctx context.Context, identity *domain.User, id string) (string, error) {
	pet, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if pet.OwnedBy(identity.ID) {
		return "", s.reject("schedule_visit", "self_adoption", domain.ErrSelfAdoption)
	}
	if pet.AdoptedBy(identity.ID) {
		return "", s.reject("schedule_visit", "already_scheduled", domain.ErrVisitPending)
	}

	if err := s.repo.SetAdopter(ctx, id, domain.AdopterOf(identity), s.now()); err != nil {
		if errors.Is(err, domain.ErrStaleWrite) {
			return "", s.resolveStale(ctx, id, s.reject("schedule_visit", "already_scheduled", domain.ErrVisitPending))
		}
		return "", fmt.Errorf("schedule visit: %w", err)
	}

	metrics.VisitsScheduledTotal.Inc()
	s.logger.Info().Str("pet_id", id).Str("adopter_id", identity.ID).Msg("visit scheduled")

	return fmt.Sprintf("visit scheduled successfully, contact %s at %s.", pet.Owner.Name, pet.Owner.Phone), nil
}

// ConcludeAdoption marks a pet as adopted. Only the owner may do it, once.
func (s *PetService) ConcludeAdoption(ctx context.Context, identity *domain.User, id string) error {
	pet, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !pet.OwnedBy(identity.ID) {
		return s.reject("conclude_adoption", "not_owner", domain.ErrNotConcluder)
	}
	if !pet.Available {
		return s.reject("conclude_adoption", "already_adopted", domain.ErrAdopted)
	}

	if err := s.repo.MarkAdopted(ctx, id, identity.ID, s.now()); err != nil {
		if errors.Is(err, domain.ErrStaleWrite) {
			return s.resolveStale(ctx, id, s.reject("conclude_adoption", "already_adopted", domain.ErrAdopted))
		}
		return fmt.Errorf("conclude adoption: %w", err)
	}

	metrics.AdoptionsConcludedTotal.Inc()
	s.logger.Info().Str("pet_id", id).Msg("adoption concluded")
	return nil
}

func (s *PetService) validateInput(in ports.PetInput) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}
	if math.IsNaN(in.Weight) || math.IsInf(in.Weight, 0) {
		return domain.Validationf("weight must be a number")
	}
	for _, img := range in.Images {
		if !domain.SupportedImage(img.Filename) {
			return domain.Validationf("only jpg or png images are accepted")
		}
	}
	return nil
}

// storeImages saves every upload or none: on failure the images already
// written are handed to the cleaner.
func (s *PetService) storeImages(ctx context.Context, petID string, uploads []ports.ImageUpload) ([]string, error) {
	refs := make([]string, 0, len(uploads))
	for _, up := range uploads {
		ref, err := s.images.Save(ctx, up)
		if err != nil {
			s.cleanup(petID, refs)
			return nil, fmt.Errorf("store image %q: %w", up.Filename, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *PetService) cleanup(petID string, refs []string) {
	if len(refs) == 0 || s.cleaner == nil {
		return
	}
	s.cleaner.Enqueue(ports.ImageCleanupJob{PetID: petID, Images: refs})
}

// resolveStale explains a conditional write that matched nothing: the pet is
// either gone or its precondition changed under us.
func (s *PetService) resolveStale(ctx context.Context, id string, rule error) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return rule
}

func (s *PetService) reject(operation, reason string, err error) error {
	metrics.WorkflowRejectionsTotal.WithLabelValues(operation, reason).Inc()
	return err
}
