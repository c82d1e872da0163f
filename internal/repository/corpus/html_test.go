package corpus

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

const guideHTML = `<html><body>
<h1 id="intro">Booking Flow</h1>
<p>Search availability first.</p>
<p>Then <b>price</b> the itinerary.</p>
<h2>Payments</h2>
<p>Cards and vouchers are accepted.</p>
<table>
  <caption>Error Codes</caption>
  <tr><th>Code</th><th>Meaning</th></tr>
  <tr><td>E100</td><td>Session expired</td></tr>
</table>
<table>
  <tr><td>ADT</td><td>Adult</td></tr>
</table>
<ul>
  <li>Visa</li>
  <li>Mastercard <ul><li>nested</li></ul></li>
</ul>
<script>var ignored = 1;</script>
</body></html>`

func loadHTML(t *testing.T, src *HTMLFile) []content.Item {
	t.Helper()
	items, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return items
}

func TestHTMLFile_Headings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "guide.html", guideHTML)
	items := loadHTML(t, &HTMLFile{Path: path})

	byTitle := make(map[string]content.Item)
	for _, it := range items {
		byTitle[it.Title()] = it
	}

	intro, ok := byTitle["Booking Flow"]
	if !ok {
		t.Fatalf("missing heading section, got titles %v", titles(items))
	}
	if intro.Body() != "Search availability first.\nThen price the itinerary." {
		t.Errorf("heading body = %q", intro.Body())
	}
	if intro.ExternalRef() != "#intro" {
		t.Errorf("ref = %q", intro.ExternalRef())
	}
	if intro.Kind() != content.KindHTML {
		t.Errorf("kind = %q", intro.Kind())
	}

	pay := byTitle["Payments"]
	if !strings.HasPrefix(pay.Body(), "Cards and vouchers are accepted.") {
		t.Errorf("payments body = %q", pay.Body())
	}
}

func TestHTMLFile_TablesAndLists(t *testing.T) {
	path := writeFile(t, t.TempDir(), "guide.html", guideHTML)
	items := loadHTML(t, &HTMLFile{Path: path})

	byTitle := make(map[string]content.Item)
	for _, it := range items {
		byTitle[it.Title()] = it
	}

	captioned, ok := byTitle["Error Codes - Table Data"]
	if !ok {
		t.Fatalf("missing captioned table, got titles %v", titles(items))
	}
	if captioned.Body() != "Code | Meaning\nE100 | Session expired" {
		t.Errorf("table body = %q", captioned.Body())
	}

	if _, ok := byTitle["Table 2 - Table Data"]; !ok {
		t.Errorf("missing synthesized table title, got %v", titles(items))
	}

	list, ok := byTitle["Payments - List Items"]
	if !ok {
		t.Fatalf("missing list, got titles %v", titles(items))
	}
	if list.Body() != "- Visa\n- Mastercard nested" {
		t.Errorf("list body = %q", list.Body())
	}

	for _, it := range items {
		if strings.Contains(it.Body(), "ignored") {
			t.Errorf("script text leaked into %q", it.Title())
		}
	}
}

func TestHTMLFile_ListWithoutHeading(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plain.html", `<ol><li>one</li><li>two</li></ol>`)
	items := loadHTML(t, &HTMLFile{Label: "plain", Path: path})

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %v", titles(items))
	}
	if items[0].Title() != "List 1 - List Items" {
		t.Errorf("title = %q", items[0].Title())
	}
	if items[0].ID() != "html-plain-list-1" {
		t.Errorf("id = %q", items[0].ID())
	}
}

func TestHTMLFile_QuestionSections(t *testing.T) {
	path := writeFile(t, t.TempDir(), "faq.html", `<main>
<section id="q1"><h2>Q1: How do I add an infant?</h2><p>Attach the infant to an adult passenger.</p></section>
<section id="q2"><h2>Q2: Empty answer</h2></section>
<section id="intro"><h2>Not a question</h2><p>skip</p></section>
</main>`)

	src := &HTMLFile{Label: "faq", Path: path, QuestionSections: true}
	items := loadHTML(t, src)

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %v", titles(items))
	}
	it := items[0]
	if it.Title() != "How do I add an infant?" {
		t.Errorf("title = %q", it.Title())
	}
	if it.Body() != "Q: How do I add an infant?\nA: Attach the infant to an adult passenger." {
		t.Errorf("body = %q", it.Body())
	}
	if it.ExternalRef() != "#q1" {
		t.Errorf("ref = %q", it.ExternalRef())
	}
	if src.Name() != "html:faq" {
		t.Errorf("name = %q", src.Name())
	}
}

func TestHTMLFile_Missing(t *testing.T) {
	items := loadHTML(t, &HTMLFile{Path: filepath.Join(t.TempDir(), "absent.html")})
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

func titles(items []content.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Title()
	}
	return out
}
