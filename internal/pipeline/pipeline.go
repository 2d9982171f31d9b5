// Package pipeline runs one staging load end to end: read the three source
// files, open the sink, optionally declare the staging schema, replace each
// relation's contents and read back the row counts.
//
// A run is strictly sequential and holds a single sink connection. The first
// failure stops the run; the sink is closed on every exit path once opened.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"stageload/internal/config"
	"stageload/internal/ddl"
	"stageload/internal/failure"
	"stageload/internal/loader"
	"stageload/internal/metrics"
	csvparser "stageload/internal/parser/csv"
	"stageload/internal/records"
	"stageload/internal/schema"
	"stageload/internal/storage"
	"stageload/internal/transformer"
	"stageload/internal/transformer/builtin"
	"stageload/internal/validate"
)

// State is a step of the run lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateConnected  State = "connected"
	StateStaging    State = "staging"
	StateValidating State = "validating"
	StateClosed     State = "closed"
	StateFailed     State = "failed"
)

// Deps are the collaborators a run needs from outside. Zero values select
// the production defaults.
type Deps struct {
	// OpenSink opens the destination. Defaults to storage.New.
	OpenSink func(ctx context.Context, cfg storage.Config) (storage.Sink, error)

	// Out receives the status lines. Defaults to os.Stdout.
	Out io.Writer
}

// Runner executes a single run and records the states it passed through.
type Runner struct {
	cfg   config.Config
	deps  Deps
	runID string

	state   State
	history []State
}

// NewRunner prepares a run of cfg. The runner is single-use.
func NewRunner(cfg config.Config, deps Deps) *Runner {
	if deps.OpenSink == nil {
		deps.OpenSink = storage.New
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	return &Runner{
		cfg:     cfg,
		deps:    deps,
		runID:   uuid.NewString(),
		state:   StateIdle,
		history: []State{StateIdle},
	}
}

// Run is shorthand for NewRunner(cfg, deps).Run(ctx).
func Run(ctx context.Context, cfg config.Config, deps Deps) (validate.Report, error) {
	return NewRunner(cfg, deps).Run(ctx)
}

func (r *Runner) State() State { return r.state }

// History returns every state entered, starting with StateIdle.
func (r *Runner) History() []State { return append([]State(nil), r.history...) }

func (r *Runner) RunID() string { return r.runID }

func (r *Runner) enter(s State) {
	r.state = s
	r.history = append(r.history, s)
	log.Printf("pipeline: run=%s state=%s", r.runID, s)
}

func (r *Runner) say(format string, a ...any) {
	fmt.Fprintf(r.deps.Out, format+"\n", a...)
}

// fail moves the runner to StateFailed and prints msg with the cause.
func (r *Runner) fail(msg string, err error) error {
	r.enter(StateFailed)
	r.say("❌ %s: %v", msg, err)
	return err
}

// step times fn and records it as a metrics step.
func (r *Runner) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(r.cfg.Job, name, err, time.Since(start))
	return err
}

// connect opens the sink and, when a call timeout is configured, bounds
// each blocking call on it.
func (r *Runner) connect(ctx context.Context) (storage.Sink, error) {
	if r.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.CallTimeout)
		defer cancel()
	}
	sink, err := r.deps.OpenSink(ctx, storage.Config{
		Kind:      r.cfg.DBDriver,
		DSN:       r.cfg.ConnString(),
		BatchSize: r.cfg.BatchSize,
	})
	if err != nil {
		return nil, err
	}
	if r.cfg.CallTimeout > 0 {
		sink = deadlineSink{Sink: sink, timeout: r.cfg.CallTimeout}
	}
	return sink, nil
}

// staged pairs a dataset with the relation it is written to.
type staged struct {
	spec     schema.DatasetSpec
	relation schema.Relation
	data     records.Dataset
}

// Run executes the pipeline. The returned report holds the validated row
// counts on success.
func (r *Runner) Run(ctx context.Context) (validate.Report, error) {
	if r.state != StateIdle {
		return validate.Report{}, fmt.Errorf("pipeline: runner already used (state=%s)", r.state)
	}
	r.say("🚀 Starting data loading to staging pipeline...")
	log.Printf("pipeline: run=%s driver=%s dsn=%s data_dir=%s declare_schema=%t",
		r.runID, r.cfg.DBDriver, r.cfg.Redacted(), r.cfg.DataDir, r.cfg.DeclareSchema)

	naming, err := schema.ParseNaming(r.cfg.TableNaming)
	if err != nil {
		return validate.Report{}, r.fail("Error", err)
	}

	r.enter(StateLoading)
	var sets []staged
	err = r.step("extract", func() (err error) {
		sets, err = r.readSources(ctx, naming)
		return err
	})
	if err != nil {
		return validate.Report{}, r.fail("Error", err)
	}
	r.say("✅ Datasets successfully loaded.")

	var sink storage.Sink
	err = r.step("connect", func() (err error) {
		sink, err = r.connect(ctx)
		return err
	})
	if err != nil {
		return validate.Report{}, r.fail("Database connection failed", failure.Wrap(failure.ErrConnectionFailed, "", "", err))
	}
	defer func() {
		sink.Close()
		log.Printf("pipeline: run=%s sink closed", r.runID)
	}()
	r.enter(StateConnected)
	r.say("✅ Successfully connected to the %s database.", r.cfg.DBDriver)

	r.enter(StateStaging)
	if r.cfg.DeclareSchema {
		relations := make([]schema.Relation, len(sets))
		for i, s := range sets {
			relations[i] = s.relation
		}
		if err := r.step("schema", func() error { return r.ensureSchema(ctx, sink, relations) }); err != nil {
			return validate.Report{}, r.fail("Error defining staging schema", err)
		}
		r.say("✅ Staging schema is in place.")
	}
	if err := r.step("load", func() error { return r.stage(ctx, sink, sets) }); err != nil {
		return validate.Report{}, r.fail("Error loading data into staging tables", err)
	}
	r.say("✅ Data successfully loaded into staging tables.")

	r.enter(StateValidating)
	var rep validate.Report
	err = r.step("validate", func() (err error) {
		rep, err = r.validate(ctx, sink, sets)
		return err
	})
	if err != nil {
		return rep, r.fail("Error during validation checks", err)
	}
	for _, e := range rep.Entries {
		r.say("✅ %s row count: %d", e.Relation, e.Rows)
		metrics.RecordRows(r.cfg.Job, e.Relation, "validated", e.Rows)
	}
	for _, line := range rep.Lines() {
		log.Printf("pipeline: run=%s validate %s", r.runID, line)
	}
	r.say("✅ Validation checks completed successfully.")

	r.enter(StateClosed)
	r.say("✅ Pipeline execution completed successfully.")
	return rep, nil
}

// readSources reads every dataset file. Nothing is normalized yet.
func (r *Runner) readSources(ctx context.Context, naming schema.Naming) ([]staged, error) {
	specs := schema.Datasets()
	out := make([]staged, 0, len(specs))
	for _, spec := range specs {
		ds, err := csvparser.LoadFile(ctx, spec.Name, r.cfg.SourcePath(spec.File), csvparser.DefaultOptions())
		if err != nil {
			return nil, err
		}
		rel := spec.Relation(naming)
		metrics.RecordRows(r.cfg.Job, rel.Name, "read", int64(ds.Len()))
		out = append(out, staged{spec: spec, relation: rel, data: ds})
	}
	return out, nil
}

// ensureSchema creates each relation that does not exist yet. Existing
// relations and their rows are left alone.
func (r *Runner) ensureSchema(ctx context.Context, sink storage.Sink, relations []schema.Relation) error {
	for _, rel := range relations {
		if err := sink.EnsureTable(ctx, ddl.FromRelation(rel)); err != nil {
			return failure.Wrap(failure.ErrSchemaDefinitionFailed, rel.Dataset, rel.Name, err)
		}
		log.Printf("pipeline: run=%s ensured relation=%s", r.runID, rel.Name)
	}
	return nil
}

// stage normalizes each dataset and replaces its relation's contents, in
// order. The first failure stops the rest.
func (r *Runner) stage(ctx context.Context, sink storage.Sink, sets []staged) error {
	for i := range sets {
		s := &sets[i]
		s.data = transformer.Normalize(s.data, r.rules(s))

		target := loader.Target{Relation: s.relation, Declared: r.cfg.DeclareSchema, Kinds: s.spec.DateKinds()}
		n, err := loader.LoadToStaging(ctx, sink, s.data, target, loader.ModeReplace)
		if err != nil {
			return err
		}
		metrics.RecordRows(r.cfg.Job, s.relation.Name, "written", n)
	}
	return nil
}

// rules picks the column kinds a dataset is coerced to. A declared relation
// dictates them; otherwise the date columns are fixed and the rest are
// inferred from the date-coerced values.
func (r *Runner) rules(s *staged) map[string]records.Kind {
	if r.cfg.DeclareSchema {
		return s.relation.Kinds()
	}
	dates := s.spec.DateKinds()
	kinds := builtin.InferKinds(transformer.Normalize(s.data, dates))
	for c, k := range dates {
		kinds[c] = k
	}
	return kinds
}

func (r *Runner) validate(ctx context.Context, sink storage.Sink, sets []staged) (validate.Report, error) {
	targets := make([]validate.Target, len(sets))
	expected := make(map[string]int64, len(sets))
	for i, s := range sets {
		targets[i] = validate.Target{Dataset: s.spec.Name, Relation: s.relation.Name}
		expected[s.relation.Name] = int64(s.data.Len())
	}
	opt := validate.Options{
		SchemaFacts:  r.cfg.SchemaFacts,
		Expected:     expected,
		StrictCounts: r.cfg.StrictCounts,
	}
	return validate.Run(ctx, sink, targets, opt)
}
