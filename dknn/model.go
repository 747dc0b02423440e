package dknn

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/viant/dknn/engine"
	"github.com/viant/dknn/index"
	"github.com/viant/dknn/vector"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Option configures model construction.
type Option func(*options)

type options struct {
	factory IndexFactory
	db      *sql.DB
}

// WithIndexFactory overrides the backend selected by Config.Index.
func WithIndexFactory(f IndexFactory) Option {
	return func(o *options) { o.factory = f }
}

// WithDB supplies the database used by the sqlite index backend. The caller
// keeps ownership; it must have been opened with engine.Open.
func WithDB(db *sql.DB) Option {
	return func(o *options) { o.db = db }
}

// layer is the immutable per-layer search state.
type layer struct {
	pre   *vector.Preprocessor
	index index.Index
}

// Model is a DkNN model over a fixed training corpus.
//
// The corpus, layer centers and indexes never change after construction.
// Calibration state is guarded by mu: Calibrate holds the write lock for its
// whole run, prediction calls hold the read lock.
type Model[T any] struct {
	id     uuid.UUID
	cfg    Config
	source Source[T]
	labels []int
	layers map[string]*layer
	scorer Scorer
	db     *sql.DB
	ownsDB bool

	mu          sync.RWMutex
	calibration *Calibration
}

// New extracts the training activations of train through source and builds
// the model over them.
func New[T any](ctx context.Context, cfg Config, source Source[T], train []T, labels []int, opts ...Option) (*Model[T], error) {
	if source == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "source is nil")
	}
	if len(train) != len(labels) {
		return nil, errors.Wrapf(ErrInvalidInput, "train has %d examples but %d labels", len(train), len(labels))
	}
	acts, err := source.Activations(ctx, train)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute training activations")
	}
	return NewFromCorpus(ctx, cfg, source, Corpus{Activations: acts, Labels: labels}, opts...)
}

// NewFromCorpus builds the model over precomputed training activations. The
// corpus is copied; the caller may reuse it.
func NewFromCorpus[T any](ctx context.Context, cfg Config, source Source[T], corpus Corpus, opts ...Option) (*Model[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "source is nil")
	}
	if err := validateCorpus(cfg, corpus); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	m := &Model[T]{
		id:     uuid.New(),
		cfg:    cfg,
		source: source,
		labels: append([]int(nil), corpus.Labels...),
		layers: make(map[string]*layer, len(cfg.Layers)),
		scorer: Scorer{Layers: cfg.Layers, Classes: cfg.Classes, Neighbors: cfg.Neighbors, Missing: cfg.missingPolicy()},
		db:     o.db,
	}
	factory := o.factory
	if factory == nil {
		if needsDB(cfg.Index) && m.db == nil {
			dsn := cfg.Index.DSN
			if dsn == "" {
				dsn = engine.MemoryDSN
			}
			db, err := engine.Open(dsn)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to open index database %s", dsn)
			}
			m.db, m.ownsDB = db, true
		}
		factory = cfg.Index.factory(m.db, m.scope())
	}
	if err := m.build(ctx, corpus.Activations, factory); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}

func needsDB(c IndexConfig) bool { return c.Kind == IndexSQLite }

func validateCorpus(cfg Config, corpus Corpus) error {
	n := len(corpus.Labels)
	if n == 0 {
		return errors.Wrap(ErrInvalidInput, "empty training corpus")
	}
	for i, label := range corpus.Labels {
		if label < 0 || label >= cfg.Classes {
			return errors.Wrapf(ErrInvalidInput, "training label %d at row %d outside [0, %d)", label, i, cfg.Classes)
		}
	}
	return checkActivations(cfg.Layers, corpus.Activations, n)
}

// checkActivations verifies every layer carries n rows of one dimension.
func checkActivations(layers Layers, acts Activations, n int) error {
	for _, name := range layers {
		rows, ok := acts[name]
		if !ok {
			return errors.Wrapf(ErrShapeMismatch, "activations missing layer %q", name)
		}
		if len(rows) != n {
			return errors.Wrapf(ErrShapeMismatch, "layer %q has %d rows, want %d", name, len(rows), n)
		}
		for i, row := range rows {
			if len(row) == 0 || len(row) != len(rows[0]) {
				return errors.Wrapf(ErrShapeMismatch, "layer %q row %d has dim %d, want %d", name, i, len(row), len(rows[0]))
			}
		}
	}
	return nil
}

// build computes each layer's center and indexes its preprocessed rows.
func (m *Model[T]) build(ctx context.Context, acts Activations, factory IndexFactory) error {
	built := make([]*layer, len(m.cfg.Layers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.parallelism())
	for i, name := range m.cfg.Layers {
		g.Go(func() error {
			started := time.Now()
			rows := acts[name]
			pre, err := vector.NewPreprocessor(rows)
			if err != nil {
				return errors.Wrapf(err, "layer %q", name)
			}
			prepped, err := pre.Apply(rows)
			if err != nil {
				return errors.Wrapf(err, "layer %q", name)
			}
			idx, err := factory(name, len(rows), pre.Dim())
			if err != nil {
				return errors.Wrapf(err, "failed to create index for layer %q", name)
			}
			if err := idx.Build(gctx, prepped); err != nil {
				return errors.Wrapf(err, "failed to build index for layer %q", name)
			}
			built[i] = &layer{pre: pre, index: idx}
			klog.V(1).Infof("dknn: indexed layer %q (%d rows, dim %d) in %s", name, len(rows), pre.Dim(), time.Since(started))
			return nil
		})
	}
	err := g.Wait()
	for i, name := range m.cfg.Layers {
		if built[i] != nil {
			m.layers[name] = built[i]
		}
	}
	return err
}

// ID identifies the model; it scopes the sqlite index tables.
func (m *Model[T]) ID() uuid.UUID { return m.id }

func (m *Model[T]) scope() string {
	return strings.ReplaceAll(m.id.String(), "-", "")
}

// Config returns the model configuration.
func (m *Model[T]) Config() Config { return m.cfg }

// TrainSize returns the number of training examples.
func (m *Model[T]) TrainSize() int { return len(m.labels) }

// Center returns a copy of the center used to preprocess layer.
func (m *Model[T]) Center(name string) ([]float32, bool) {
	l, ok := m.layers[name]
	if !ok {
		return nil, false
	}
	return l.pre.Center(), true
}

type dropper interface {
	Drop(ctx context.Context) error
}

// Close drops the index tables the model created and releases the index
// database when the model opened it.
func (m *Model[T]) Close() error {
	var err error
	for _, name := range m.cfg.Layers {
		l, ok := m.layers[name]
		if !ok || l == nil {
			continue
		}
		if d, ok := l.index.(dropper); ok && m.db != nil {
			if dropErr := d.Drop(context.Background()); dropErr != nil && err == nil {
				err = errors.Wrapf(dropErr, "failed to drop index of layer %q", name)
			}
		}
	}
	if m.ownsDB && m.db != nil {
		if closeErr := m.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	m.db = nil
	return err
}

// Predict runs the DkNN forward pass and returns the credibility matrix:
// one row per input, classes wide, with only the predicted class populated.
func (m *Model[T]) Predict(ctx context.Context, data []T) ([][]float64, error) {
	outcome, err := m.PredictConfCred(ctx, data)
	if err != nil {
		return nil, err
	}
	return outcome.Credibilities, nil
}

// PredictConfCred runs the DkNN forward pass and returns predictions,
// confidences, credibilities and per-class p-values.
func (m *Model[T]) PredictConfCred(ctx context.Context, data []T) (*Outcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkCalibrated(); err != nil {
		return nil, err
	}
	neighbors, err := m.neighbors(ctx, data)
	if err != nil {
		return nil, err
	}
	table, err := m.scorer.Score(neighbors)
	if err != nil {
		return nil, err
	}
	return m.calibration.ConfCred(table)
}

// Explain returns the training neighbors of every input per layer, the
// evidence behind a prediction.
func (m *Model[T]) Explain(ctx context.Context, data []T) (map[string]*Neighbors, error) {
	return m.neighbors(ctx, data)
}

func (m *Model[T]) neighbors(ctx context.Context, data []T) (map[string]*Neighbors, error) {
	acts, err := m.source.Activations(ctx, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute activations")
	}
	if err := checkActivations(m.cfg.Layers, acts, len(data)); err != nil {
		return nil, err
	}
	return m.FindTrainNeighbors(ctx, acts)
}

// Nonconformity scores neighbor labels; see Scorer.Score.
func (m *Model[T]) Nonconformity(neighbors map[string]*Neighbors) (Table, error) {
	return m.scorer.Score(neighbors)
}

// ConfCred converts a nonconformity table into the conformal outcome using
// the current calibration.
func (m *Model[T]) ConfCred(table Table) (*Outcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkCalibrated(); err != nil {
		return nil, err
	}
	for i, row := range table {
		if len(row) != m.cfg.Classes {
			return nil, errors.Wrapf(ErrShapeMismatch, "table row %d has %d classes, want %d", i, len(row), m.cfg.Classes)
		}
	}
	return m.calibration.ConfCred(table)
}
