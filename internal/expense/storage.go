package expense

import "context"

// Storage persists the serialized expense list as a single blob.
//
//go:generate mockgen -source=storage.go -destination=storage_mock.go -package=expense
type Storage interface {
	// Load returns the stored blob, or nil with no error when nothing was ever saved.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
