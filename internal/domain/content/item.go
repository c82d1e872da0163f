package content

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind is the origin of a content item.
type Kind string

const (
	// KindFAQ is a structured question/answer record.
	KindFAQ Kind = "structured-faq"
	// KindHTML is a fragment extracted from a markup document.
	KindHTML Kind = "html-extracted"
	// KindDocumentation is a static documentation blurb.
	KindDocumentation Kind = "documentation"
	// KindEmail is a historical support email transcript.
	KindEmail Kind = "support-email"
)

// Kinds lists every kind in source-priority order.
var Kinds = []Kind{KindFAQ, KindHTML, KindDocumentation, KindEmail}

// Priority returns the dedup priority of the kind (lower wins), -1 for unknown kinds.
func (k Kind) Priority() int {
	for i, known := range Kinds {
		if k == known {
			return i
		}
	}
	return -1
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k.Priority() >= 0 }

// dedupPrefixLen is the number of leading body characters compared during dedup.
const dedupPrefixLen = 100

// Item is the unit of retrieval (immutable value object).
type Item struct {
	id          string
	title       string
	body        string
	kind        Kind
	externalRef string
	category    string
	tags        []string
}

// New validates and creates an Item. Body must contain non-whitespace text.
func New(id, title, body string, kind Kind) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("item ID is required")
	}
	if strings.TrimSpace(body) == "" {
		return Item{}, fmt.Errorf("item %s: body is required", id)
	}
	if !kind.Valid() {
		return Item{}, fmt.Errorf("item %s: unknown kind %q", id, kind)
	}
	return Item{id: id, title: title, body: body, kind: kind}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(id, title, body string, kind Kind, externalRef, category string, tags []string) Item {
	return Item{
		id: id, title: title, body: body, kind: kind,
		externalRef: externalRef, category: category, tags: tags,
	}
}

// ID returns the item identifier.
func (i *Item) ID() string { return i.id }

// Title returns the short human-readable label.
func (i *Item) Title() string { return i.title }

// Body returns the retrievable text.
func (i *Item) Body() string { return i.body }

// Kind returns the item origin.
func (i *Item) Kind() Kind { return i.kind }

// ExternalRef returns the anchor or URL of the originating document, if any.
func (i *Item) ExternalRef() string { return i.externalRef }

// Category returns the support-email category, if any.
func (i *Item) Category() string { return i.category }

// Tags returns the support-email tags, if any.
func (i *Item) Tags() []string { return i.tags }

// WithRef returns a copy pointing back to ref.
func (i Item) WithRef(ref string) Item {
	i.externalRef = ref
	return i
}

// WithClassification returns a copy carrying category and tags.
func (i Item) WithClassification(category string, tags []string) Item {
	i.category = category
	i.tags = append([]string(nil), tags...)
	return i
}

// TitleKey is the case-insensitive title used for dedup.
func (i *Item) TitleKey() string { return strings.ToLower(i.title) }

// BodyKey is the leading body text used for dedup.
func (i *Item) BodyKey() string {
	if utf8.RuneCountInString(i.body) <= dedupPrefixLen {
		return i.body
	}
	n := 0
	for pos := range i.body {
		if n == dedupPrefixLen {
			return i.body[:pos]
		}
		n++
	}
	return i.body
}

// EmbeddingText is the text sent to the embedding provider for this item.
func (i *Item) EmbeddingText() string {
	if i.title == "" {
		return i.body
	}
	return i.title + "\n\n" + i.body
}
