package vectorindex

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

// Hash field names. question/answer are only read: they belong to the
// legacy Q&A shape written by earlier indexers.
const (
	fieldID          = "id"
	fieldType        = "type"
	fieldTitle       = "title"
	fieldContent     = "content"
	fieldQuestion    = "question"
	fieldAnswer      = "answer"
	fieldSourceKind  = "source_kind"
	fieldExternalRef = "external_ref"
	fieldCategory    = "category"
	fieldTags        = "tags"
	fieldVector      = "vector"

	tagSeparator = "|"

	typeFAQ = "faq"
	typeDoc = "doc"
)

var metadataFields = []string{
	fieldID, fieldType, fieldTitle, fieldContent, fieldQuestion, fieldAnswer,
	fieldSourceKind, fieldExternalRef, fieldCategory, fieldTags,
}

// buildHashFields flattens an item and its vector into the generic title/content shape.
func buildHashFields(item *content.Item, vector []float32) map[string]string {
	typ := typeDoc
	if item.Kind() == content.KindFAQ {
		typ = typeFAQ
	}

	m := map[string]string{
		fieldID:         item.ID(),
		fieldType:       typ,
		fieldTitle:      item.Title(),
		fieldContent:    item.Body(),
		fieldSourceKind: string(item.Kind()),
		fieldVector:     vectorToBytes(vector),
	}
	if ref := item.ExternalRef(); ref != "" {
		m[fieldExternalRef] = ref
	}
	if cat := item.Category(); cat != "" {
		m[fieldCategory] = cat
	}
	if tags := item.Tags(); len(tags) > 0 {
		m[fieldTags] = strings.Join(tags, tagSeparator)
	}
	return m
}

// parseHashFields rebuilds an item from stored metadata. It accepts both the
// legacy {type, question, answer} shape and the generic {title, content} shape.
// ok is false when neither shape yields a body.
func parseHashFields(id string, m map[string]string) (item content.Item, ok bool) {
	if v := m[fieldID]; v != "" {
		id = v
	}

	var title, body string
	var kind content.Kind

	question, answer := m[fieldQuestion], m[fieldAnswer]
	if question != "" || answer != "" {
		title = question
		body = "Q: " + question + "\nA: " + answer
		kind = content.KindFAQ
	} else {
		title = m[fieldTitle]
		body = m[fieldContent]
		kind = parseKind(m[fieldSourceKind], m[fieldType])
	}

	if strings.TrimSpace(body) == "" {
		return content.Item{}, false
	}

	var tags []string
	if raw := m[fieldTags]; raw != "" {
		tags = strings.Split(raw, tagSeparator)
	}

	return content.Reconstruct(id, title, body, kind, m[fieldExternalRef], m[fieldCategory], tags), true
}

func parseKind(sourceKind, typ string) content.Kind {
	if k := content.Kind(sourceKind); k.Valid() {
		return k
	}
	if typ == typeFAQ {
		return content.KindFAQ
	}
	return content.KindDocumentation
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
