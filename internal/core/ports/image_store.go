package ports

import "context"

// ImageStore persists uploaded pet images and returns a reference used to
// serve them back.
type ImageStore interface {
	Save(ctx context.Context, upload ImageUpload) (string, error)
	Delete(ctx context.Context, ref string) error
}

// ImageCleanupJob lists image references that no pet points to anymore.
type ImageCleanupJob struct {
	PetID  string
	Images []string
}

// ImageCleaner accepts orphaned images for asynchronous removal.
type ImageCleaner interface {
	Enqueue(job ImageCleanupJob)
}
