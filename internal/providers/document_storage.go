package providers

import "context"

// StoredObject identifies an uploaded file. PublicID is what Delete takes.
type StoredObject struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// DocumentStorage defines the interface for the object store holding
// registrant documents, course images and admin assets.
type DocumentStorage interface {
	// Upload stores data under folder and returns its public location
	Upload(ctx context.Context, data []byte, folder, filename string) (StoredObject, error)

	// Delete removes a previously uploaded object
	Delete(ctx context.Context, publicID string) error
}
