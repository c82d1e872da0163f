package corpus

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

func TestEmailDir_CSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2024.csv", `date,customerQuestion,supportAnswer,category,tags
2024-03-01,How do I cancel a booking?,Use the Cancel endpoint with the PNR.,booking,"cancel, pnr"
2024-03-02,Missing answer,,general,
`)

	items, err := (&EmailDir{Dir: dir}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %v", ids(items))
	}
	it := items[0]
	if it.ID() != "email-2024-1" {
		t.Errorf("id = %q", it.ID())
	}
	if it.Title() != "Customer Question: How do I cancel a booking?" {
		t.Errorf("title = %q", it.Title())
	}
	want := "Customer Question: How do I cancel a booking?\n\n" +
		"Support Answer: Use the Cancel endpoint with the PNR.\n\n" +
		"Category: booking\nDate: 2024-03-01"
	if it.Body() != want {
		t.Errorf("body:\ngot:  %q\nwant: %q", it.Body(), want)
	}
	if it.Kind() != content.KindEmail {
		t.Errorf("kind = %q", it.Kind())
	}
	if it.Category() != "booking" {
		t.Errorf("category = %q", it.Category())
	}
	if !reflect.DeepEqual(it.Tags(), []string{"cancel", "pnr"}) {
		t.Errorf("tags = %v", it.Tags())
	}
}

func TestEmailDir_CSVAliasesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "short.csv", "Question,Answer\nWhat currency is used?,The agency currency.\n")

	items, err := (&EmailDir{Dir: dir}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Category() != "general" {
		t.Errorf("category = %q", items[0].Category())
	}
	if strings.Contains(items[0].Body(), "Date:") {
		t.Errorf("undated email must not carry a Date line: %q", items[0].Body())
	}
}

func TestEmailDir_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "export.json", `[
  {"id":"e-7","date":"2024-01-05","question":"Can I hold a seat?","answer":"Seats can be held for 24 hours.","tags":["seat"]},
  {"customerQuestion":"Baggage allowance?","supportAnswer":"Depends on the fare.","category":"baggage","tags":"bags, fare"}
]`)

	items, err := (&EmailDir{Dir: dir}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := ids(items); !reflect.DeepEqual(got, []string{"email-export-e-7", "email-export-2"}) {
		t.Fatalf("ids = %v", got)
	}
	if items[0].Category() != "general" {
		t.Errorf("default category = %q", items[0].Category())
	}
	if !reflect.DeepEqual(items[1].Tags(), []string{"bags", "fare"}) {
		t.Errorf("string tags = %v", items[1].Tags())
	}
}

func TestEmailDir_Text(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", `Q: How do I add an SSR?
A: Send the SSR code
with the passenger reference.
---
Q: Question without answer
---

Q: Is there a sandbox?
A: Yes.
`)

	items, err := (&EmailDir{Dir: dir}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %v", ids(items))
	}
	if !strings.Contains(items[0].Body(), "Support Answer: Send the SSR code with the passenger reference.") {
		t.Errorf("continuation line not joined: %q", items[0].Body())
	}
	if items[0].Category() != "imported" {
		t.Errorf("category = %q", items[0].Category())
	}
	if items[1].Title() != "Customer Question: Is there a sandbox?" {
		t.Errorf("title = %q", items[1].Title())
	}
}

func TestEmailDir_BadFileSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-broken.json", `{not json`)
	writeFile(t, dir, "b-good.txt", "Q: q\nA: a\n")
	writeFile(t, dir, "readme.md", "ignored")

	items, err := (&EmailDir{Dir: dir}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 1 || items[0].ID() != "email-b-good-1" {
		t.Fatalf("unexpected items: %v", ids(items))
	}
}

func TestEmailDir_Missing(t *testing.T) {
	items, err := (&EmailDir{Dir: filepath.Join(t.TempDir(), "none")}).Load(context.Background())
	if err != nil {
		t.Fatalf("absent directory must not fail: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}
