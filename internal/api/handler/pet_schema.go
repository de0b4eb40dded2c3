package handler

import "github.com/petadopt/adoption-api/internal/core/domain"

// errorResponse documents the envelope rendered by the API error handler.
type errorResponse struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createPetResponse struct {
	Message string      `json:"message"`
	NewPet  *domain.Pet `json:"newPet"`
}

type petResponse struct {
	Pet *domain.Pet `json:"pet"`
}

type petListResponse struct {
	Pets []*domain.Pet `json:"pets"`
}

const (
	msgPetCreated       = "pet registered successfully"
	msgPetUpdated       = "pet updated successfully"
	msgPetRemoved       = "pet removed successfully"
	msgAdoptionComplete = "congratulations! the adoption cycle was completed successfully"
)
