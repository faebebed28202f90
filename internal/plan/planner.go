package plan

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"snapsort/internal/config"
	"snapsort/internal/datefind"
	"snapsort/internal/faults"
	"snapsort/internal/fileutil"
	"snapsort/internal/logging"
	"snapsort/internal/media"
)

// Action is what the mover should do with one file.
type Action string

const (
	// ActionMove transfers the file and removes the source afterwards.
	ActionMove Action = "move"
	// ActionCopy transfers the file and leaves the source in place.
	ActionCopy Action = "copy"
	// ActionSkipDuplicate performs no I/O; an identical copy already sits at
	// the destination path.
	ActionSkipDuplicate Action = "skip-duplicate"
	// ActionRenameSuffix transfers under a numeric suffix because the
	// preferred name is taken by different content.
	ActionRenameSuffix Action = "rename-suffix"
)

// UnknownBucket is the destination subdirectory for files whose capture date
// could not be resolved or whose format was not recognised.
const UnknownBucket = "Unknown"

// maxRenameAttempts bounds the suffix search so a pathological directory
// cannot spin the planner forever.
const maxRenameAttempts = 1000

// Decision is the planner's verdict for a single file: where it goes, how it
// gets there, and why the name changed if it did.
type Decision struct {
	// RelPath is the destination path relative to the destination root,
	// suffix already applied.
	RelPath string
	// AbsPath is RelPath joined onto the destination root.
	AbsPath string
	Action  Action
	// Mode carries the configured transfer semantics so a rename-suffix
	// decision still knows whether to move or copy.
	Mode config.TransferMode
	// Reason explains a skip or rename, empty for clean placements.
	Reason string
}

// Planner maps resolved files onto destination paths. A single Planner is
// shared by all workers of a run; its collision index is the only coordination
// point between them.
type Planner struct {
	destRoot string
	mode     config.TransferMode
	index    *Index
	logger   *slog.Logger
}

// NewPlanner builds a planner rooted at destRoot.
func NewPlanner(destRoot string, mode config.TransferMode, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Planner{
		destRoot: destRoot,
		mode:     mode,
		index:    NewIndex(),
		logger:   logging.NewComponentLogger(logger, "planner"),
	}
}

// Index exposes the collision index, mostly for tests and run accounting.
func (p *Planner) Index() *Index { return p.index }

// Plan decides the destination for one file. Resolved files land in
// <year>/<month>/; unresolved or unsupported files land in Unknown/. The
// basename is kept unless the slot is occupied by different content, in which
// case a numeric suffix is appended before the extension.
func (p *Planner) Plan(file media.File, resolved datefind.Resolved) (Decision, error) {
	relDir := UnknownBucket
	if resolved.OK && file.Kind != media.KindUnsupported {
		relDir = fmt.Sprintf("%04d/%02d", resolved.Year(), int(resolved.Month()))
	}

	base := filepath.Base(file.Path)
	ownHash := ""
	for attempt := 0; attempt <= maxRenameAttempts; attempt++ {
		name := suffixedName(base, attempt)
		rel := filepath.Join(relDir, name)
		abs := filepath.Join(p.destRoot, rel)

		holder, owned := p.index.Acquire(abs, file.Path)
		if owned {
			action := actionForMode(p.mode)
			reason := ""
			if attempt > 0 {
				action = ActionRenameSuffix
				reason = fmt.Sprintf("destination name taken, renamed to %s", name)
				p.logger.Debug("collision resolved by suffix",
					logging.String(logging.FieldFile, file.Path),
					logging.String("destination", abs))
			}
			return Decision{RelPath: rel, AbsPath: abs, Action: action, Mode: p.mode, Reason: reason}, nil
		}

		if ownHash == "" {
			h, err := fileutil.HashFile(file.Path)
			if err != nil {
				return Decision{}, faults.Wrap(faults.ErrSourceUnreadable, "plan", "hash", file.Path, err)
			}
			ownHash = h
		}
		same, err := p.sameAsHolder(file.Path, ownHash, holder)
		if err != nil {
			return Decision{}, faults.Wrap(faults.ErrSourceUnreadable, "plan", "compare", abs, err)
		}
		if same {
			p.logger.Debug("duplicate content, skipping",
				logging.String(logging.FieldFile, file.Path),
				logging.String("destination", abs))
			return Decision{
				RelPath: rel,
				AbsPath: abs,
				Action:  ActionSkipDuplicate,
				Mode:    p.mode,
				Reason:  "identical content already at destination",
			}, nil
		}
	}

	return Decision{}, faults.Wrap(faults.ErrDestinationConflict, "plan", "reserve",
		fmt.Sprintf("no free destination name for %s after %d attempts", base, maxRenameAttempts), nil)
}

// sameAsHolder compares our content hash against the slot occupant's. The
// occupant's hash is cached on its entry, so every file is hashed at most
// once per run no matter how many collisions it participates in.
func (p *Planner) sameAsHolder(source, sourceHash string, holder *Entry) (bool, error) {
	if holder.Source() == source {
		return true, nil
	}
	theirs, err := holder.Hash()
	if err != nil {
		return false, err
	}
	return sourceHash == theirs, nil
}

// suffixedName returns base for attempt 0 and base_<n> before the extension
// for later attempts: clip.mp4, clip_1.mp4, clip_2.mp4.
func suffixedName(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%d%s", stem, attempt, ext)
}

func actionForMode(mode config.TransferMode) Action {
	if mode == config.ModeCopy {
		return ActionCopy
	}
	return ActionMove
}
