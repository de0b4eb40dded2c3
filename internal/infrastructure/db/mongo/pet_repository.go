package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petadopt/adoption-api/internal/core/domain"
	"github.com/petadopt/adoption-api/internal/core/ports"
)

const collectionPets = "pets"

// PetRepository implements ports.PetRepository using MongoDB. The owner
// snapshot is stored under "user".
type PetRepository struct {
	col *mongo.Collection
}

func NewPetRepository(db *mongo.Database) *PetRepository {
	return &PetRepository{col: db.Collection(collectionPets)}
}

type ownerDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Image string             `bson:"image,omitempty"`
	Phone string             `bson:"phone"`
}

type adopterDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Image string             `bson:"image,omitempty"`
}

type petDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Age       int                `bson:"age"`
	Weight    float64            `bson:"weight"`
	Color     string             `bson:"color"`
	Images    []string           `bson:"images"`
	Available bool               `bson:"available"`
	Owner     ownerDoc           `bson:"user"`
	Adopter   *adopterDoc        `bson:"adopter,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d petDoc) toDomain() *domain.Pet {
	p := &domain.Pet{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Age:       d.Age,
		Weight:    d.Weight,
		Color:     d.Color,
		Images:    d.Images,
		Available: d.Available,
		Owner: domain.Owner{
			ID:    d.Owner.ID.Hex(),
			Name:  d.Owner.Name,
			Image: d.Owner.Image,
			Phone: d.Owner.Phone,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if d.Adopter != nil {
		p.Adopter = &domain.Adopter{
			ID:    d.Adopter.ID.Hex(),
			Name:  d.Adopter.Name,
			Image: d.Adopter.Image,
		}
	}
	return p
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

// Create inserts a new pet document and returns it with its ID.
func (r *PetRepository) Create(ctx context.Context, p *domain.Pet) (*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ownerID, err := objectID(p.Owner.ID)
	if err != nil {
		return nil, err
	}

	doc := petDoc{
		ID:        primitive.NewObjectID(),
		Name:      p.Name,
		Age:       p.Age,
		Weight:    p.Weight,
		Color:     p.Color,
		Images:    p.Images,
		Available: p.Available,
		Owner: ownerDoc{
			ID:    ownerID,
			Name:  p.Owner.Name,
			Image: p.Owner.Image,
			Phone: p.Owner.Phone,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert pet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PetRepository) FindByID(ctx context.Context, id string) (*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc petDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPetNotFound
		}
		return nil, fmt.Errorf("find pet: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns pets matching filter, newest first.
func (r *PetRepository) List(ctx context.Context, f ports.PetFilter) ([]*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.OwnerID != "" {
		oid, err := objectID(f.OwnerID)
		if err != nil {
			return nil, err
		}
		filter["user._id"] = oid
	}
	if f.AdopterID != "" {
		oid, err := objectID(f.AdopterID)
		if err != nil {
			return nil, err
		}
		filter["adopter._id"] = oid
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	defer cur.Close(ctx)

	var docs []petDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode pets: %w", err)
	}

	pets := make([]*domain.Pet, 0, len(docs))
	for _, d := range docs {
		pets = append(pets, d.toDomain())
	}
	return pets, nil
}

// Update sets the owner-editable fields in one write, guarded by ownership.
func (r *PetRepository) Update(ctx context.Context, id, ownerID string, c ports.PetChanges) error {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, filter, bson.M{"$set": bson.M{
		"name":       c.Name,
		"age":        c.Age,
		"weight":     c.Weight,
		"color":      c.Color,
		"images":     c.Images,
		"updated_at": c.UpdatedAt,
	}})
}

// Delete removes the pet if ownerID still owns it.
func (r *PetRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrStaleWrite
	}
	return nil
}

// SetAdopter records the adopter snapshot unless the adopter owns the pet or
// is already its adopter.
func (r *PetRepository) SetAdopter(ctx context.Context, id string, a domain.Adopter, at time.Time) error {
	filter, err := scheduleFilter(id, a.ID)
	if err != nil {
		return err
	}
	adopterID, _ := objectID(a.ID)
	return r.updateOne(ctx, filter, bson.M{"$set": bson.M{
		"adopter":    adopterDoc{ID: adopterID, Name: a.Name, Image: a.Image},
		"updated_at": at,
	}})
}

// MarkAdopted flips available to false, only from true.
func (r *PetRepository) MarkAdopted(ctx context.Context, id, ownerID string, at time.Time) error {
	filter, err := concludeFilter(id, ownerID)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, filter, bson.M{"$set": bson.M{
		"available":  false,
		"updated_at": at,
	}})
}

func (r *PetRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update pet: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrStaleWrite
	}
	return nil
}

func ownedFilter(id, ownerID string) (bson.M, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	owner, err := objectID(ownerID)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid, "user._id": owner}, nil
}

// scheduleFilter matches the pet unless adopterID owns it or already adopted it.
func scheduleFilter(id, adopterID string) (bson.M, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	adopter, err := objectID(adopterID)
	if err != nil {
		return nil, err
	}
	return bson.M{
		"_id":         oid,
		"user._id":    bson.M{"$ne": adopter},
		"adopter._id": bson.M{"$ne": adopter},
	}, nil
}

// concludeFilter matches the pet only while ownerID owns it and it is available.
func concludeFilter(id, ownerID string) (bson.M, error) {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}
	filter["available"] = true
	return filter, nil
}

// EnsureIndexes creates the indexes backing the listing queries.
func (r *PetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user._id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "adopter._id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
