package mover

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"snapsort/internal/config"
	"snapsort/internal/faults"
	"snapsort/internal/fileutil"
	"snapsort/internal/logging"
	"snapsort/internal/media"
	"snapsort/internal/plan"
)

// Mover applies placement decisions to the filesystem. Writes go to a
// uniquely named temp file in the destination directory and are finalized
// with a rename, so a crash mid-transfer never leaves a partial file under
// the final name.
type Mover struct {
	dryRun bool
	logger *slog.Logger
}

// New builds a mover. With dryRun set it logs intended actions and touches
// nothing.
func New(dryRun bool, logger *slog.Logger) *Mover {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Mover{dryRun: dryRun, logger: logging.NewComponentLogger(logger, "mover")}
}

// Apply executes one decision. Move removes the source only after the
// destination write is confirmed; copy leaves the source untouched;
// skip-duplicate performs no I/O at all.
func (m *Mover) Apply(ctx context.Context, file media.File, decision plan.Decision) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch decision.Action {
	case plan.ActionSkipDuplicate:
		return nil
	case plan.ActionMove, plan.ActionCopy, plan.ActionRenameSuffix:
	default:
		return faults.Wrap(faults.ErrDestinationWriteFailed, "move", "apply",
			fmt.Sprintf("unknown action %q", decision.Action), nil)
	}

	if m.dryRun {
		m.logger.Info("dry run",
			logging.String("action", string(decision.Action)),
			logging.String(logging.FieldFile, file.Path),
			logging.String("destination", decision.AbsPath))
		return nil
	}

	destDir := filepath.Dir(decision.AbsPath)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return faults.Wrap(faults.ErrDestinationWriteFailed, "move", "mkdir", destDir, err)
	}

	// The planner holds the only reservation for this path, so an existing
	// file here means the reservation invariant was broken.
	if _, err := os.Stat(decision.AbsPath); err == nil {
		return faults.Wrap(faults.ErrDestinationConflict, "move", "finalize",
			fmt.Sprintf("destination %s already exists", decision.AbsPath), nil)
	}

	if transferIsMove(decision) {
		// Same-filesystem moves finish with a single rename.
		if err := os.Rename(file.Path, decision.AbsPath); err == nil {
			m.logger.Debug("moved by rename",
				logging.String(logging.FieldFile, file.Path),
				logging.String("destination", decision.AbsPath))
			return nil
		}
	}

	temp := filepath.Join(destDir, fmt.Sprintf(".snapsort-%s.tmp", uuid.NewString()))
	if err := fileutil.CopyFileVerified(file.Path, temp); err != nil {
		_ = os.Remove(temp)
		return faults.Wrap(faults.ErrDestinationWriteFailed, "move", "copy", decision.AbsPath, err)
	}
	if err := os.Rename(temp, decision.AbsPath); err != nil {
		_ = os.Remove(temp)
		return faults.Wrap(faults.ErrDestinationWriteFailed, "move", "finalize", decision.AbsPath, err)
	}

	if transferIsMove(decision) {
		if err := os.Remove(file.Path); err != nil {
			return faults.Wrap(faults.ErrSourceUnreadable, "move", "remove-source", file.Path, err)
		}
	}

	m.logger.Debug("transfer complete",
		logging.String("action", string(decision.Action)),
		logging.String(logging.FieldFile, file.Path),
		logging.String("destination", decision.AbsPath))
	return nil
}

// transferIsMove reports whether the decision removes the source. A
// rename-suffix decision inherits the configured transfer mode.
func transferIsMove(decision plan.Decision) bool {
	if decision.Action == plan.ActionCopy {
		return false
	}
	if decision.Action == plan.ActionRenameSuffix {
		return decision.Mode == config.ModeMove
	}
	return decision.Action == plan.ActionMove
}
