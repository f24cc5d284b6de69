package imagesearch

import (
	"context"

	"github.com/Dixeliare/hochiminh-chatbot/internal/model"
)

// Provider is one image-search backend in the cascade. An unconfigured
// provider (missing credentials) is skipped without error.
type Provider interface {
	Name() string
	Configured() bool
	Search(ctx context.Context, query string, limit int) ([]model.ImageResult, error)
}
