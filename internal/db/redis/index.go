package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/helpdesk/internal/db"
)

// CreateIndex issues FT.CREATE for def. An existing index is reported as
// db.ErrIndexExists so callers can treat creation as idempotent.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "index already exists"):
		return db.ErrIndexExists
	default:
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
}

// DropIndex drops the index definition only; the item hashes survive.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	err := s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()).Error()
	if err == nil {
		return nil
	}
	if unknownIndex(err) {
		return db.ErrIndexNotFound
	}
	return &db.Error{Op: db.OpDropIndex, Err: err}
}

func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	if err == nil {
		return true, nil
	}
	if unknownIndex(err) {
		return false, nil
	}
	return false, &db.Error{Op: db.OpIndexInfo, Err: err}
}

func unknownIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index")
}

// buildCreateArgs renders everything after FT.CREATE:
// name ON HASH [PREFIX n p...] SCHEMA field...
func buildCreateArgs(def *db.IndexDefinition) ([]string, error) {
	if def.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(def.Fields) == 0 {
		return nil, fmt.Errorf("index %s: no schema fields", def.Name)
	}

	on := def.StorageType
	if on == "" {
		on = db.StorageHash
	}
	args := []string{def.Name, "ON", string(on)}
	if n := len(def.Prefixes); n > 0 {
		args = append(args, "PREFIX", strconv.Itoa(n))
		args = append(args, def.Prefixes...)
	}
	args = append(args, "SCHEMA")

	for i := range def.Fields {
		fa, err := buildFieldArgs(&def.Fields[i])
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", def.Name, err)
		}
		args = append(args, fa...)
	}
	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	switch f.Type {
	case db.IndexFieldText:
		return []string{f.Name, "TEXT"}, nil
	case db.IndexFieldTag:
		if f.TagSeparator == "" {
			return []string{f.Name, "TAG"}, nil
		}
		return []string{f.Name, "TAG", "SEPARATOR", f.TagSeparator}, nil
	case db.IndexFieldVector:
		attrs, err := vectorAttrs(f)
		if err != nil {
			return nil, err
		}
		algo := f.VectorAlgo
		if algo == "" {
			algo = db.VectorFlat
		}
		// VECTOR takes its attribute count before the attribute pairs.
		out := []string{f.Name, "VECTOR", string(algo), strconv.Itoa(len(attrs))}
		return append(out, attrs...), nil
	default:
		return nil, fmt.Errorf("field %s: unknown type %d", f.Name, f.Type)
	}
}

func vectorAttrs(f *db.IndexField) ([]string, error) {
	if f.VectorDim <= 0 {
		return nil, fmt.Errorf("field %s: vector dim must be positive, got %d", f.Name, f.VectorDim)
	}
	metric := f.VectorDistance
	if metric == "" {
		metric = db.DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(metric),
	}
	if f.VectorAlgo != db.VectorHNSW {
		return attrs, nil
	}
	if f.VectorM > 0 {
		attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
	}
	if f.VectorEFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
	}
	return attrs, nil
}
