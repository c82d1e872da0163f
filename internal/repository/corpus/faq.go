package corpus

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

type faqRecord struct {
	ID       string `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// FAQFile loads structured question/answer records from a YAML or JSON list.
type FAQFile struct {
	Path string
}

// Name implements Source.
func (f *FAQFile) Name() string { return "faq:" + filepath.Base(f.Path) }

// Kind implements Source.
func (f *FAQFile) Kind() content.Kind { return content.KindFAQ }

// Paths implements Source.
func (f *FAQFile) Paths() []string { return []string{f.Path} }

// Load implements Source.
func (f *FAQFile) Load(_ context.Context) ([]content.Item, error) {
	data, err := readOptional(f.Path)
	if err != nil || data == nil {
		return nil, err
	}

	var records []faqRecord
	if strings.EqualFold(filepath.Ext(f.Path), ".json") {
		err = json.Unmarshal(data, &records)
	} else {
		err = yaml.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, parseError(f.Path, err)
	}

	items := make([]content.Item, 0, len(records))
	for _, r := range records {
		q, a := strings.TrimSpace(r.Question), strings.TrimSpace(r.Answer)
		if r.ID == "" || q == "" || a == "" {
			continue
		}
		item, err := content.New(r.ID, q, "Q: "+q+"\nA: "+a, content.KindFAQ)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
