package handler

import (
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/petadopt/adoption-api/internal/core/domain"
	"github.com/petadopt/adoption-api/internal/core/ports"
)

// PetHandler handles HTTP requests for pet listings and the adoption workflow.
type PetHandler struct {
	service ports.PetService
}

func NewPetHandler(service ports.PetService) *PetHandler {
	return &PetHandler{service: service}
}

// Create handles POST /pets.
//
// @Summary      List a pet for adoption
// @Tags         pets
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        name    formData  string  true  "Name"
// @Param        age     formData  int     true  "Age in years"
// @Param        weight  formData  number  true  "Weight"
// @Param        color   formData  string  true  "Color"
// @Param        images  formData  file    true  "One or more jpg/png images"
// @Success      201     {object}  createPetResponse
// @Failure      422     {object}  errorResponse
// @Router       /pets [post]
func (h *PetHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	in, err := petInputFromForm(c)
	if err != nil {
		return err
	}

	pet, err := h.service.Create(c.Request().Context(), identity, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createPetResponse{Message: msgPetCreated, NewPet: pet})
}

// List handles GET /pets.
//
// @Summary      List every pet, newest first
// @Tags         pets
// @Produce      json
// @Success      200  {object}  petListResponse
// @Router       /pets [get]
func (h *PetHandler) List(c echo.Context) error {
	pets, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, petListResponse{Pets: pets})
}

// Mine handles GET /pets/mine.
//
// @Summary      List the caller's pets
// @Tags         pets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  petListResponse
// @Failure      422  {object}  errorResponse
// @Router       /pets/mine [get]
func (h *PetHandler) Mine(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pets, err := h.service.ListOwnedBy(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, petListResponse{Pets: pets})
}

// Adoptions handles GET /pets/adoptions.
//
// @Summary      List pets the caller scheduled a visit for
// @Tags         pets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  petListResponse
// @Failure      422  {object}  errorResponse
// @Router       /pets/adoptions [get]
func (h *PetHandler) Adoptions(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pets, err := h.service.ListAdoptedBy(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, petListResponse{Pets: pets})
}

// Get handles GET /pets/:id.
//
// @Summary      Get a pet by id
// @Tags         pets
// @Produce      json
// @Param        id   path      string  true  "Pet id"
// @Success      200  {object}  petResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /pets/{id} [get]
func (h *PetHandler) Get(c echo.Context) error {
	pet, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, petResponse{Pet: pet})
}

// Update handles PATCH /pets/:id.
//
// @Summary      Edit a pet
// @Tags         pets
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Pet id"
// @Param        name    formData  string  true  "Name"
// @Param        age     formData  int     true  "Age in years"
// @Param        weight  formData  number  true  "Weight"
// @Param        color   formData  string  true  "Color"
// @Param        images  formData  file    true  "One or more jpg/png images"
// @Success      200     {object}  messageResponse
// @Failure      404     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /pets/{id} [patch]
func (h *PetHandler) Update(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	in, err := petInputFromForm(c)
	if err != nil {
		return err
	}

	if err := h.service.Update(c.Request().Context(), identity, c.Param("id"), in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msgPetUpdated})
}

// Remove handles DELETE /pets/:id.
//
// @Summary      Remove a pet
// @Tags         pets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Pet id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /pets/{id} [delete]
func (h *PetHandler) Remove(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Remove(c.Request().Context(), identity, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msgPetRemoved})
}

// Schedule handles PATCH /pets/schedule/:id.
//
// @Summary      Schedule a visit to adopt a pet
// @Tags         adoption
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Pet id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /pets/schedule/{id} [patch]
func (h *PetHandler) Schedule(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	msg, err := h.service.ScheduleVisit(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// Conclude handles PATCH /pets/conclude/:id.
//
// @Summary      Conclude the adoption of a pet
// @Tags         adoption
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Pet id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /pets/conclude/{id} [patch]
func (h *PetHandler) Conclude(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.ConcludeAdoption(c.Request().Context(), identity, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msgAdoptionComplete})
}

// petInputFromForm reads the multipart pet form. Blank numbers are left at
// zero so the service reports them as missing.
func petInputFromForm(c echo.Context) (ports.PetInput, error) {
	in := ports.PetInput{
		Name:  strings.TrimSpace(c.FormValue("name")),
		Color: strings.TrimSpace(c.FormValue("color")),
	}

	if v := strings.TrimSpace(c.FormValue("age")); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return in, domain.Validationf("age must be a whole number")
		}
		in.Age = age
	}
	if v := strings.TrimSpace(c.FormValue("weight")); v != "" {
		weight, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return in, domain.Validationf("weight must be a number")
		}
		in.Weight = weight
	}

	// A non-multipart body simply carries no images.
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["images"] {
			in.Images = append(in.Images, imageUpload(fh))
		}
	}
	return in, nil
}

func imageUpload(fh *multipart.FileHeader) ports.ImageUpload {
	return ports.ImageUpload{
		Filename: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
