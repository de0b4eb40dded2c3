package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Owner is a snapshot of the user who listed a pet, taken at creation time.
// Later edits to the user are not reflected here.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Phone string `json:"phone"`
}

// Adopter is a snapshot of the user who scheduled a visit.
type Adopter struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Pet is the adoption listing aggregate.
//
// Lifecycle: created available with no adopter; ScheduleVisit sets Adopter;
// ConcludeAdoption flips Available to false, which is terminal.
type Pet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Weight    float64   `json:"weight"`
	Color     string    `json:"color"`
	Images    []string  `json:"images"`
	Available bool      `json:"available"`
	Owner     Owner     `json:"owner"`
	Adopter   *Adopter  `json:"adopter,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerOf copies the owner-visible fields of u.
func OwnerOf(u *User) Owner {
	return Owner{ID: u.ID, Name: u.Name, Image: u.Image, Phone: u.Phone}
}

// AdopterOf copies the adopter-visible fields of u.
func AdopterOf(u *User) Adopter {
	return Adopter{ID: u.ID, Name: u.Name, Image: u.Image}
}

// OwnedBy reports whether userID listed the pet.
func (p *Pet) OwnedBy(userID string) bool {
	return p.Owner.ID == userID
}

// AdoptedBy reports whether userID is the current adopter.
func (p *Pet) AdoptedBy(userID string) bool {
	return p.Adopter != nil && p.Adopter.ID == userID
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// SupportedImage reports whether filename has an accepted image extension.
func SupportedImage(filename string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}
