package corpus

import (
	"context"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

type docRecord struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	URL   string `yaml:"url"`
}

// DocsFile loads curated documentation entries from a YAML list.
type DocsFile struct {
	Path string
}

// Name implements Source.
func (d *DocsFile) Name() string { return "docs:" + filepath.Base(d.Path) }

// Kind implements Source.
func (d *DocsFile) Kind() content.Kind { return content.KindDocumentation }

// Paths implements Source.
func (d *DocsFile) Paths() []string { return []string{d.Path} }

// Load implements Source.
func (d *DocsFile) Load(_ context.Context) ([]content.Item, error) {
	data, err := readOptional(d.Path)
	if err != nil || data == nil {
		return nil, err
	}

	var records []docRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, parseError(d.Path, err)
	}

	items := make([]content.Item, 0, len(records))
	for _, r := range records {
		item, err := content.New(r.ID, strings.TrimSpace(r.Title), strings.TrimSpace(r.Body), content.KindDocumentation)
		if err != nil {
			continue
		}
		items = append(items, item.WithRef(r.URL))
	}
	return items, nil
}
