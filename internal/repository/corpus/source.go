package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

// Source produces the items of one content source.
// An absent source yields no items and no error.
type Source interface {
	Name() string
	Kind() content.Kind
	// Paths lists the files or directories the source reads, for watching.
	Paths() []string
	Load(ctx context.Context) ([]content.Item, error)
}

// readOptional reads a source file. A missing file returns (nil, nil).
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func parseError(path string, err error) error {
	return fmt.Errorf("%s: %w: %w", path, domain.ErrParseFailure, err)
}
