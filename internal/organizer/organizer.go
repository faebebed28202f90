package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"snapsort/internal/config"
	"snapsort/internal/datefind"
	"snapsort/internal/faults"
	"snapsort/internal/logging"
	"snapsort/internal/media"
	"snapsort/internal/mover"
	"snapsort/internal/plan"
	"snapsort/internal/scan"
)

// lockFileName guards the destination root against concurrent runs.
const lockFileName = ".snapsort.lock"

// Result is the final record for one scanned file.
type Result struct {
	Source      string
	Destination string
	RelPath     string
	Kind        media.Kind
	Action      plan.Action
	// Strategy and Date carry the provenance of the resolved capture date.
	Strategy string
	Date     time.Time
	// Reason is a short label explaining a skip, rename, or failure.
	Reason string
	Err    error
}

// Failed reports whether the file could not be placed.
func (r Result) Failed() bool { return r.Err != nil }

// Summary aggregates one run.
type Summary struct {
	RunID       string
	DryRun      bool
	Scanned     int
	Moved       int
	Copied      int
	Renamed     int
	Skipped     int
	Unknown     int
	Failed      int
	DirsRemoved int
	Duration    time.Duration
}

// Organizer coordinates a full run: scan, resolve, plan, and transfer, fanned
// out over a bounded worker pool.
type Organizer struct {
	cfg      *config.Config
	logger   *slog.Logger
	resolver *datefind.Resolver
	planner  *plan.Planner
	mover    *mover.Mover
}

// New wires the pipeline from validated configuration.
func New(cfg *config.Config, logger *slog.Logger) *Organizer {
	if logger == nil {
		logger = logging.NewNop()
	}

	registry := datefind.NewRegistry(datefind.Options{
		FFprobeBinary: cfg.Probe.FFprobeBinary,
		Timeout:       time.Duration(cfg.Probe.TimeoutSeconds) * time.Second,
	})
	rules := datefind.DefaultRules()
	if cfg.Dates.EarliestYear > 0 {
		rules.EarliestYear = cfg.Dates.EarliestYear
	}
	resolver := datefind.NewResolver(registry, rules,
		time.Duration(cfg.Probe.TimeoutSeconds)*time.Second, logger)

	return &Organizer{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "organizer"),
		resolver: resolver,
		planner:  plan.NewPlanner(cfg.Paths.DestDir, cfg.Mode(), logger),
		mover:    mover.New(cfg.Organize.DryRun, logger),
	}
}

// Run executes one organizing pass. Per-file failures are recorded and do not
// stop the run; a fatal error (destination conflict, unusable destination
// root) cancels outstanding work and is returned alongside whatever results
// completed. Results are sorted by source path.
func (o *Organizer) Run(ctx context.Context) (Summary, []Result, error) {
	start := time.Now()
	runID := uuid.NewString()[:8]
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)

	summary := Summary{RunID: runID, DryRun: o.cfg.Organize.DryRun}

	if err := os.MkdirAll(o.cfg.Paths.DestDir, 0o755); err != nil {
		return summary, nil, faults.Wrap(faults.ErrDestinationWriteFailed, "run", "prepare",
			"destination root not writable", err)
	}

	lock := flock.New(filepath.Join(o.cfg.Paths.DestDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return summary, nil, faults.Wrap(faults.ErrDestinationWriteFailed, "run", "lock",
			"destination lock failed", err)
	}
	if !locked {
		return summary, nil, faults.Wrap(faults.ErrDestinationWriteFailed, "run", "lock",
			"another run holds the destination lock", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	logger.Info("run starting",
		logging.String("source", o.cfg.Paths.SourceDir),
		logging.String("destination", o.cfg.Paths.DestDir),
		logging.String("mode", string(o.cfg.Mode())),
		logging.Bool("dry_run", o.cfg.Organize.DryRun),
		logging.Int("workers", o.cfg.Organize.Concurrency),
	)

	files, err := scan.Walk(ctx, o.cfg.Paths.SourceDir, o.cfg.Probe.SniffBytes, o.logger)
	if err != nil {
		return summary, nil, err
	}
	summary.Scanned = len(files)

	results, runErr := o.processAll(ctx, files)
	sort.Slice(results, func(i, j int) bool { return results[i].Source < results[j].Source })
	o.tally(&summary, results)

	if runErr == nil && !o.cfg.Organize.DryRun &&
		o.cfg.Mode() == config.ModeMove && o.cfg.Organize.CleanupEmptyDirs {
		removed, cleanupErr := scan.CleanupEmptyDirs(o.cfg.Paths.SourceDir)
		if cleanupErr != nil {
			logger.Warn("source cleanup failed", logging.Error(cleanupErr))
		}
		summary.DirsRemoved = removed
	}

	summary.Duration = time.Since(start)
	logger.Info("run complete",
		logging.Int("scanned", summary.Scanned),
		logging.Int("moved", summary.Moved),
		logging.Int("copied", summary.Copied),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration),
	)
	return summary, results, runErr
}

// maxConsecutiveWriteFailures is the abort threshold for destination write
// errors. A lone write failure is a per-file problem; an unbroken streak
// means the destination itself has gone bad (full disk, revoked permissions)
// and every remaining file would fail the same way.
const maxConsecutiveWriteFailures = 3

// processAll fans the file list out over the worker pool. The first fatal
// error cancels the run; files still queued at that point are dropped rather
// than reported as failures of their own. A streak of destination write
// failures is escalated to fatal as well.
func (o *Organizer) processAll(ctx context.Context, files []media.File) ([]Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := o.cfg.Organize.Concurrency
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan media.File)
	out := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				if ctx.Err() != nil {
					continue
				}
				out <- o.processFile(ctx, file)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, file := range files {
			select {
			case jobs <- file:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	var results []Result
	var fatal error
	writeFailures := 0
	for result := range out {
		switch {
		case !result.Failed():
			writeFailures = 0
		case errors.Is(result.Err, faults.ErrDestinationWriteFailed):
			writeFailures++
			if writeFailures >= maxConsecutiveWriteFailures && fatal == nil {
				fatal = faults.Wrap(faults.ErrDestinationWriteFailed, "run", "abort",
					fmt.Sprintf("%d consecutive destination write failures", writeFailures),
					result.Err)
				cancel()
			}
		}
		if result.Failed() && faults.Fatal(result.Err) && fatal == nil {
			fatal = result.Err
			cancel()
		}
		results = append(results, result)
	}
	if fatal != nil {
		return results, fatal
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// processFile runs the resolve, plan, apply sequence for one file.
func (o *Organizer) processFile(ctx context.Context, file media.File) Result {
	ctx = logging.WithFile(ctx, file.Path)
	result := Result{Source: file.Path, Kind: file.Kind}

	var resolved datefind.Resolved
	if file.Kind != media.KindUnsupported {
		resolved = o.resolver.Resolve(ctx, file)
	}
	result.Strategy = resolved.Strategy
	result.Date = resolved.Time

	decision, err := o.planner.Plan(file, resolved)
	if err != nil {
		result.Err = err
		result.Reason = faults.Classify(err)
		return result
	}
	result.Destination = decision.AbsPath
	result.RelPath = decision.RelPath
	result.Action = decision.Action
	result.Reason = decision.Reason
	if file.Kind == media.KindUnsupported {
		result.Reason = faults.Classify(faults.ErrUnsupportedFormat)
	}

	if err := o.mover.Apply(ctx, file, decision); err != nil {
		if decision.Action != plan.ActionSkipDuplicate {
			o.planner.Index().Release(decision.AbsPath)
		}
		result.Err = err
		result.Reason = faults.Classify(err)
		return result
	}
	return result
}

// tally folds results into summary counters.
func (o *Organizer) tally(summary *Summary, results []Result) {
	for _, result := range results {
		if result.Failed() {
			summary.Failed++
			continue
		}
		if strings.HasPrefix(result.RelPath, plan.UnknownBucket+string(os.PathSeparator)) {
			summary.Unknown++
		}
		switch result.Action {
		case plan.ActionMove:
			summary.Moved++
		case plan.ActionCopy:
			summary.Copied++
		case plan.ActionRenameSuffix:
			summary.Renamed++
		case plan.ActionSkipDuplicate:
			summary.Skipped++
		}
	}
}

// Describe returns a one-line human description of a result for list output.
func Describe(result Result) string {
	if result.Failed() {
		return fmt.Sprintf("%s: failed (%s): %v", result.Source, result.Reason, result.Err)
	}
	if result.Action == plan.ActionSkipDuplicate {
		return fmt.Sprintf("%s: skipped, duplicate of %s", result.Source, result.RelPath)
	}
	return fmt.Sprintf("%s -> %s (%s)", result.Source, result.RelPath, result.Action)
}
