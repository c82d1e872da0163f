package corpus

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
)

const (
	defaultEmailCategory = "general"
	textEmailCategory    = "imported"
)

// EmailDir loads historical support emails from every .csv, .json and .txt file
// in Dir. A malformed file is logged and skipped; the rest of the directory loads.
type EmailDir struct {
	Dir    string
	Logger *zap.Logger
}

// Name implements Source.
func (e *EmailDir) Name() string { return "email:" + filepath.Base(e.Dir) }

// Kind implements Source.
func (e *EmailDir) Kind() content.Kind { return content.KindEmail }

// Paths implements Source.
func (e *EmailDir) Paths() []string { return []string{e.Dir} }

type email struct {
	id       string
	date     string
	question string
	answer   string
	category string
	tags     []string
}

// Load implements Source.
func (e *EmailDir) Load(ctx context.Context) ([]content.Item, error) {
	entries, err := os.ReadDir(e.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read email dir %s: %w", e.Dir, err)
	}

	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var items []content.Item
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(e.Dir, entry.Name())
		emails, err := readEmailFile(path)
		if err != nil {
			logger.Warn("skip email file", zap.String("path", path), zap.Error(err))
			metrics.CorpusSourceErrorsTotal.WithLabelValues(e.Name()).Inc()
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		for _, m := range emails {
			if item, ok := m.item(stem); ok {
				items = append(items, item)
			}
		}
	}
	return items, nil
}

func readEmailFile(path string) ([]email, error) {
	var parse func([]byte) ([]email, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		parse = parseEmailCSV
	case ".json":
		parse = parseEmailJSON
	case ".txt":
		parse = parseEmailText
	default:
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	emails, err := parse(data)
	if err != nil {
		return nil, parseError(path, err)
	}
	return emails, nil
}

func (m *email) item(stem string) (content.Item, bool) {
	q, a := strings.TrimSpace(m.question), strings.TrimSpace(m.answer)
	if q == "" || a == "" {
		return content.Item{}, false
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Customer Question: %s\n\nSupport Answer: %s\n\nCategory: %s", q, a, m.category)
	if m.date != "" {
		fmt.Fprintf(&body, "\nDate: %s", m.date)
	}

	item, err := content.New("email-"+stem+"-"+m.id, "Customer Question: "+q, body.String(), content.KindEmail)
	if err != nil {
		return content.Item{}, false
	}
	return item.WithClassification(m.category, m.tags), true
}

// parseEmailCSV reads a headered CSV. Column names are matched case-insensitively;
// customerQuestion/question and supportAnswer/answer are aliases.
func parseEmailCSV(data []byte) ([]email, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(rec []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
		}
		return ""
	}

	var out []email
	for row := 1; ; row++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		category := get(rec, "category")
		if category == "" {
			category = defaultEmailCategory
		}
		out = append(out, email{
			id:       strconv.Itoa(row),
			date:     get(rec, "date"),
			question: get(rec, "customerquestion", "question"),
			answer:   get(rec, "supportanswer", "answer"),
			category: category,
			tags:     splitTags(get(rec, "tags")),
		})
	}
	return out, nil
}

// tagList accepts either a JSON array or a comma-separated string.
type tagList []string

func (t *tagList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("tags must be a list or a string: %w", err)
	}
	*t = splitTags(s)
	return nil
}

type emailRecord struct {
	ID               string  `json:"id"`
	Date             string  `json:"date"`
	CustomerQuestion string  `json:"customerQuestion"`
	Question         string  `json:"question"`
	SupportAnswer    string  `json:"supportAnswer"`
	Answer           string  `json:"answer"`
	Category         string  `json:"category"`
	Tags             tagList `json:"tags"`
}

func parseEmailJSON(data []byte) ([]email, error) {
	var records []emailRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	out := make([]email, 0, len(records))
	for i, r := range records {
		m := email{
			id:       r.ID,
			date:     r.Date,
			question: firstNonEmpty(r.CustomerQuestion, r.Question),
			answer:   firstNonEmpty(r.SupportAnswer, r.Answer),
			category: firstNonEmpty(r.Category, defaultEmailCategory),
			tags:     r.Tags,
		}
		if m.id == "" {
			m.id = strconv.Itoa(i + 1)
		}
		out = append(out, m)
	}
	return out, nil
}

// parseEmailText reads "---"-separated sections of Q:/A: lines. Lines without a
// marker continue the current field.
func parseEmailText(data []byte) ([]email, error) {
	var (
		out     []email
		q, a    []string
		current *[]string
	)
	flush := func() {
		if len(q) > 0 || len(a) > 0 {
			out = append(out, email{
				id:       strconv.Itoa(len(out) + 1),
				question: strings.Join(q, " "),
				answer:   strings.Join(a, " "),
				category: textEmailCategory,
			})
		}
		q, a, current = nil, nil, nil
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "---":
			flush()
		case strings.HasPrefix(line, "Q:"):
			current = &q
			q = append(q, strings.TrimSpace(strings.TrimPrefix(line, "Q:")))
		case strings.HasPrefix(line, "A:"):
			current = &a
			a = append(a, strings.TrimSpace(strings.TrimPrefix(line, "A:")))
		case line != "" && current != nil:
			*current = append(*current, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
