package corpus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/content"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
)

// Loader assembles the corpus from its sources.
type Loader struct {
	sources []Source
	logger  *zap.Logger
}

// NewLoader creates a Loader. Sources are ordered by kind priority; sources of the
// same kind keep the given order.
func NewLoader(logger *zap.Logger, sources ...Source) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	ordered := append([]Source(nil), sources...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind().Priority() < ordered[j].Kind().Priority()
	})
	return &Loader{sources: ordered, logger: logger}
}

// Paths returns every path read by the sources.
func (l *Loader) Paths() []string {
	var out []string
	for _, s := range l.sources {
		out = append(out, s.Paths()...)
	}
	return out
}

// Load reads every source and returns the deduplicated corpus.
// A failing source is logged and skipped. ErrCorpusUnavailable is returned only
// when every configured source failed.
func (l *Loader) Load(ctx context.Context) ([]content.Item, error) {
	var (
		all    []content.Item
		errs   []error
		failed int
	)
	for _, s := range l.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := s.Load(ctx)
		if err != nil {
			failed++
			errs = append(errs, err)
			l.logger.Warn("skip corpus source", zap.String("source", s.Name()), zap.Error(err))
			metrics.CorpusSourceErrorsTotal.WithLabelValues(s.Name()).Inc()
			continue
		}
		all = append(all, items...)
	}

	if len(l.sources) > 0 && failed == len(l.sources) {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, errors.Join(errs...))
	}

	corpus := Dedup(all)
	recordCorpusSize(corpus)
	l.logger.Debug("corpus loaded",
		zap.Int("items", len(corpus)),
		zap.Int("dropped", len(all)-len(corpus)),
		zap.Int("failed_sources", failed))
	return corpus, nil
}

// Dedup drops items whose ID, case-insensitive title or leading body text was
// already seen earlier in items. Items with a blank body are dropped as well.
func Dedup(items []content.Item) []content.Item {
	ids := make(map[string]struct{}, len(items))
	titles := make(map[string]struct{}, len(items))
	bodies := make(map[string]struct{}, len(items))

	out := make([]content.Item, 0, len(items))
	for i := range items {
		it := &items[i]
		if strings.TrimSpace(it.Body()) == "" {
			continue
		}

		_, dupID := ids[it.ID()]
		_, dupBody := bodies[it.BodyKey()]
		dupTitle := false
		if key := it.TitleKey(); key != "" {
			_, dupTitle = titles[key]
			titles[key] = struct{}{}
		}
		ids[it.ID()] = struct{}{}
		bodies[it.BodyKey()] = struct{}{}

		if dupID || dupTitle || dupBody {
			continue
		}
		out = append(out, *it)
	}
	return out
}

func recordCorpusSize(items []content.Item) {
	counts := make(map[content.Kind]int, len(content.Kinds))
	for i := range items {
		counts[items[i].Kind()]++
	}
	for _, k := range content.Kinds {
		metrics.CorpusItems.WithLabelValues(string(k)).Set(float64(counts[k]))
	}
}
