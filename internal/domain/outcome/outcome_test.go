package outcome

import (
	"testing"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
)

func TestTagAndEscalation(t *testing.T) {
	it, err := content.New("a", "t", "b", content.KindFAQ)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		o         Outcome
		tag       Tag
		escalated bool
	}{
		{"greeting", Greeting(), TagMatched, false},
		{"help", Help(), TagMatched, false},
		{"answered", Answered(TierSemantic, []result.Result{result.New(it, 0.9)}), TagMatched, false},
		{"no match", NoMatch(TierLexical, ReasonOffTopic), TagNoMatch, false},
		{"failure", SystemFailure(), TagFailure, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.o.Tag(); got != tc.tag {
				t.Errorf("Tag() = %q, want %q", got, tc.tag)
			}
			if got := tc.o.Escalated(); got != tc.escalated {
				t.Errorf("Escalated() = %v, want %v", got, tc.escalated)
			}
		})
	}
}

func TestAccessors(t *testing.T) {
	o := NoMatch(TierSemantic, ReasonInDomain)
	if o.Kind() != KindNoMatch || o.Tier() != TierSemantic || o.Reason() != ReasonInDomain {
		t.Errorf("unexpected outcome: %+v", o)
	}
	if o.Results() != nil {
		t.Error("NoMatch must not carry results")
	}

	f := SystemFailure()
	if f.Reason() != ReasonBothTiersFailed {
		t.Errorf("Reason() = %q", f.Reason())
	}
}
