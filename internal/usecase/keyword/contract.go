package keyword

import (
	"context"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

// Corpus provides the current corpus snapshot.
type Corpus interface {
	Load(ctx context.Context) ([]content.Item, error)
}
