package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func mustItem(t *testing.T, id, title, body string, kind content.Kind) content.Item {
	t.Helper()
	it, err := content.New(id, title, body, kind)
	if err != nil {
		t.Fatalf("content.New(%s): %v", id, err)
	}
	return it
}

// fakeSource is a configurable Source.
type fakeSource struct {
	name  string
	kind  content.Kind
	items []content.Item
	err   error
	calls int
}

func (f *fakeSource) Name() string       { return f.name }
func (f *fakeSource) Kind() content.Kind { return f.kind }
func (f *fakeSource) Paths() []string    { return []string{"/tmp/" + f.name} }

func (f *fakeSource) Load(_ context.Context) ([]content.Item, error) {
	f.calls++
	return f.items, f.err
}

func ids(items []content.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID()
	}
	return out
}
