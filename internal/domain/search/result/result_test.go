package result

import (
	"testing"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

func item(t *testing.T, id string) content.Item {
	t.Helper()
	it, err := content.New(id, "title "+id, "body "+id, content.KindFAQ)
	if err != nil {
		t.Fatalf("content.New: %v", err)
	}
	return it
}

func TestNew(t *testing.T) {
	r := New(item(t, "a"), 0.876)

	if r.ID() != "a" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Score() != 0.876 {
		t.Errorf("Score() = %f", r.Score())
	}
	if r.Confidence() != 88 {
		t.Errorf("Confidence() = %d, want 88", r.Confidence())
	}
	it := r.Item()
	if it.Title() != "title a" {
		t.Errorf("Item().Title() = %q", it.Title())
	}
}

func TestNew_ClampsNegative(t *testing.T) {
	r := New(item(t, "a"), -0.2)
	if r.Score() != 0 {
		t.Errorf("Score() = %f, want 0", r.Score())
	}
}

func TestSortByScore_StableTies(t *testing.T) {
	rs := []Result{
		New(item(t, "a"), 1),
		New(item(t, "b"), 2),
		New(item(t, "c"), 1),
		New(item(t, "d"), 2),
	}
	SortByScore(rs)

	want := []string{"b", "d", "a", "c"}
	for i, id := range want {
		if rs[i].ID() != id {
			t.Fatalf("position %d: got %s, want %s", i, rs[i].ID(), id)
		}
	}
}

func TestTruncate(t *testing.T) {
	rs := []Result{New(item(t, "a"), 1), New(item(t, "b"), 1)}

	if got := Truncate(rs, 1); len(got) != 1 {
		t.Errorf("Truncate(1) len = %d", len(got))
	}
	if got := Truncate(rs, 5); len(got) != 2 {
		t.Errorf("Truncate(5) len = %d", len(got))
	}
	if got := Truncate(rs, 0); got == nil || len(got) != 0 {
		t.Errorf("Truncate(0) = %v, want empty non-nil", got)
	}
}
