package keyword

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/content"
	"github.com/kailas-cloud/helpdesk/internal/domain/lexical"
)

type mockCorpus struct {
	items []content.Item
	err   error
}

func (m *mockCorpus) Load(_ context.Context) ([]content.Item, error) { return m.items, m.err }

func corpus(t *testing.T) []content.Item {
	t.Helper()
	mk := func(id, title, body string) content.Item {
		it, err := content.New(id, title, body, content.KindFAQ)
		if err != nil {
			t.Fatal(err)
		}
		return it
	}
	return []content.Item{
		mk("seats", "Seat selection", "Choose seats after pricing."),
		mk("infants", "Adding infants to a booking", "Attach each infant to an adult passenger in the booking."),
		mk("currency", "Currency handling", "Prices are returned in the agency currency."),
	}
}

func TestSearch_InfantQueryRanksFirst(t *testing.T) {
	svc := New(&mockCorpus{items: corpus(t)}, lexical.New(lexical.DefaultWeights(), nil))

	got, err := svc.Search(context.Background(), "How do I add infants to a booking?", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) == 0 || got[0].ID() != "infants" {
		t.Fatalf("expected infants first, got %+v", got)
	}
	for _, r := range got[1:] {
		if r.Score() >= got[0].Score() {
			t.Errorf("%s scored %v, not below the infant item %v", r.ID(), r.Score(), got[0].Score())
		}
	}
}

func TestSearch_TopK(t *testing.T) {
	svc := New(&mockCorpus{items: corpus(t)}, lexical.New(lexical.DefaultWeights(), nil))

	got, err := svc.Search(context.Background(), "the", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) > 1 {
		t.Errorf("expected at most 1 result, got %d", len(got))
	}
}

func TestSearch_CorpusError(t *testing.T) {
	svc := New(&mockCorpus{err: domain.ErrCorpusUnavailable}, lexical.New(lexical.DefaultWeights(), nil))

	if _, err := svc.Search(context.Background(), "booking", 5); !errors.Is(err, domain.ErrCorpusUnavailable) {
		t.Fatalf("expected ErrCorpusUnavailable, got %v", err)
	}
}

func TestHasVocabulary(t *testing.T) {
	svc := New(&mockCorpus{}, lexical.New(lexical.DefaultWeights(), nil))

	if !svc.HasVocabulary("Why is my PAYMENT failing") {
		t.Error("expected vocabulary hit")
	}
	if svc.HasVocabulary("asdkjqwe random gibberish") {
		t.Error("unexpected vocabulary hit")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("  "); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if err := Validate("booking"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
