// Package compare runs one reconciliation of a municipality: it loads map data
// and the register concurrently, normalizes both and diffs them.
package compare

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/at-addrcompare/internal/dataset"
	"github.com/at-addrcompare/internal/logging"
	"github.com/at-addrcompare/internal/normalize"
	"github.com/at-addrcompare/internal/reconcile"
	"github.com/at-addrcompare/internal/register"
	"github.com/at-addrcompare/internal/report"
)

// MapSource provides map data. *overpass.Client implements it.
type MapSource interface {
	FetchAddresses(ctx context.Context, gkz int) ([]dataset.Element, error)
	ResolveGKZ(ctx context.Context, name string) (int, error)
}

// Runner holds the collaborators of a reconciliation run.
type Runner struct {
	Map      MapSource
	Register register.Source
	Columns  dataset.Columns
	Canon    *normalize.Canonicalizer
	Logger   zerolog.Logger

	now func() time.Time
}

// NewRunner returns a Runner using the default register columns.
func NewRunner(m MapSource, reg register.Source, canon *normalize.Canonicalizer, logger zerolog.Logger) *Runner {
	return &Runner{
		Map:      m,
		Register: reg,
		Columns:  dataset.DefaultColumns(),
		Canon:    canon,
		Logger:   logger,
		now:      time.Now,
	}
}

// Run is the outcome of one reconciliation.
type Run struct {
	ID          string
	GKZ         int
	Started     time.Time
	Result      reconcile.Result
	Diagnostics []dataset.Diagnostic
}

// Meta returns the report header values of the run.
func (r *Run) Meta() report.Meta {
	return report.Meta{
		GKZ:         r.GKZ,
		Generated:   r.Started,
		RunID:       r.ID,
		Diagnostics: len(r.Diagnostics),
	}
}

// ResolveMunicipality turns a filter argument into a municipality code. An
// integer is taken as the code itself; anything else is looked up as a
// municipality name.
func (r *Runner) ResolveMunicipality(ctx context.Context, filter string) (int, error) {
	filter = strings.TrimSpace(filter)
	if gkz, err := strconv.Atoi(filter); err == nil {
		return gkz, nil
	}

	r.Logger.Info().Str("name", filter).Msg("Resolving municipality name...")
	gkz, err := r.Map.ResolveGKZ(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("could not match name %q to GKZ: %w", filter, err)
	}
	r.Logger.Info().Str("name", filter).Int("gkz", gkz).Msg("municipality resolved")
	return gkz, nil
}

// Run loads both sources for gkz and reconciles them. Source failures abort
// the run; per-record problems end up in Run.Diagnostics.
func (r *Runner) Run(ctx context.Context, gkz int) (*Run, error) {
	now := r.now
	if now == nil {
		now = time.Now
	}
	run := &Run{ID: uuid.NewString(), GKZ: gkz, Started: now()}
	logger := r.Logger.With().Str("run_id", run.ID).Int("gkz", gkz).Logger()
	defer logging.Timing(logger, "reconciliation run")()

	var (
		elements []dataset.Element
		records  []dataset.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Msg("Fetching data from Overpass API...")
		var err error
		elements, err = r.Map.FetchAddresses(gctx, gkz)
		if err != nil {
			return fmt.Errorf("failed to fetch map data: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info().Msg("Reading register...")
		var err error
		records, err = r.Register.Records(gctx, gkz)
		if err != nil {
			return fmt.Errorf("failed to read register: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info().Msg("Processing data...")
	builder := dataset.NewBuilder(r.Canon, logger)
	mapData := builder.BuildMapData(elements)
	registerData := builder.BuildRegister(records, gkz, r.Columns)

	logger.Info().Msg("Sorting output...")
	run.Result = reconcile.Reconcile(mapData.Addresses, registerData.Addresses, mapData.Abbreviated)
	run.Diagnostics = append(mapData.Diagnostics, registerData.Diagnostics...)

	pct, ok := run.Result.Completeness()
	logger.Info().
		Int("streets", len(run.Result.Streets)).
		Int("register_addresses", run.Result.TotalRegisterAddresses).
		Str("completeness", report.FormatPercent(pct, ok)).
		Int("diagnostics", len(run.Diagnostics)).
		Msg("Done.")
	return run, nil
}
