package organizer_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"snapsort/internal/config"
	"snapsort/internal/faults"
	"snapsort/internal/organizer"
	"snapsort/internal/testsupport"
)

func TestRunMovesDatedFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "IMG_20230314_090000.jpg"), []byte("photo bytes"))
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "notes.txt"), []byte("not media"))
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, ".DS_Store"), []byte("junk"))

	summary, results, err := organizer.New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Scanned != 2 {
		t.Fatalf("scanned = %d, want 2 (junk must be dropped)", summary.Scanned)
	}
	if summary.Moved != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Unknown != 1 {
		t.Fatalf("unknown = %d, want 1 for the text file", summary.Unknown)
	}

	placed := filepath.Join(cfg.Paths.DestDir, "2023", "03", "IMG_20230314_090000.jpg")
	if _, err := os.Stat(placed); err != nil {
		t.Fatalf("dated photo not placed: %v", err)
	}
	unknown := filepath.Join(cfg.Paths.DestDir, "Unknown", "notes.txt")
	if _, err := os.Stat(unknown); err != nil {
		t.Fatalf("unsupported file not routed to Unknown: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.SourceDir, "IMG_20230314_090000.jpg")); !os.IsNotExist(err) {
		t.Fatal("move mode must delete the source")
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
}

func TestRunCopyKeepsSources(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMode(config.ModeCopy), testsupport.WithStubbedBinaries())
	src := filepath.Join(cfg.Paths.SourceDir, "PXL_20220605_101530111.jpg")
	testsupport.WriteFile(t, src, []byte("pixel shot"))

	summary, _, err := organizer.New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Copied != 1 {
		t.Fatalf("copied = %d", summary.Copied)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("copy mode must keep the source: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.DestDir, "2022", "06", "PXL_20220605_101530111.jpg")); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDryRun(), testsupport.WithStubbedBinaries())
	src := filepath.Join(cfg.Paths.SourceDir, "IMG_20210101_000000.jpg")
	testsupport.WriteFile(t, src, []byte("x"))

	summary, _, err := organizer.New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !summary.DryRun || summary.Moved != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.DestDir, "2021")); !os.IsNotExist(err) {
		t.Fatal("dry run must not create destination subdirectories")
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("dry run must keep the source: %v", err)
	}
}

func TestRunSecondPassSkipsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMode(config.ModeCopy), testsupport.WithStubbedBinaries())
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "IMG_20230314_090000.jpg"), []byte("stable bytes"))

	if _, _, err := organizer.New(cfg, nil).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	summary, _, err := organizer.New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.Copied != 0 {
		t.Fatalf("second pass summary = %+v", summary)
	}
}

func TestRunSuffixesClashingNames(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "cardA", "IMG_20230314_090000.jpg"), []byte("first body"))
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "cardB", "IMG_20230314_090000.jpg"), []byte("second body"))

	summary, _, err := organizer.New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Moved+summary.Renamed != 2 || summary.Renamed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	monthDir := filepath.Join(cfg.Paths.DestDir, "2023", "03")
	entries, err := os.ReadDir(monthDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 files in %s, got %d", monthDir, len(entries))
	}
}

func TestRunCleanupRemovesEmptiedDirs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCleanup(), testsupport.WithStubbedBinaries())
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, "trip", "IMG_20230314_090000.jpg"), []byte("x"))

	summary, _, err := organizer.New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.DirsRemoved != 1 {
		t.Fatalf("dirs removed = %d", summary.DirsRemoved)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.SourceDir, "trip")); !os.IsNotExist(err) {
		t.Fatal("emptied source subdirectory must be removed")
	}
}

func TestRunAbortsOnRepeatedWriteFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConcurrency(1), testsupport.WithStubbedBinaries())
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("IMG_2023031%d_090000.jpg", i)
		testsupport.WriteFile(t, filepath.Join(cfg.Paths.SourceDir, name), []byte("x"))
	}
	// A plain file where the year directory belongs makes every placement
	// fail the same way, like a destination gone read-only would.
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.DestDir, "2023"), []byte("in the way"))

	summary, _, err := organizer.New(cfg, nil).Run(context.Background())
	if err == nil {
		t.Fatal("run must abort when the destination keeps rejecting writes")
	}
	if !errors.Is(err, faults.ErrDestinationWriteFailed) {
		t.Fatalf("err = %v, want destination write failure", err)
	}
	// The worker may have pulled one more job before the cancel landed.
	if summary.Failed < 3 || summary.Failed > 4 {
		t.Fatalf("failed = %d, want the abort after 3 failures", summary.Failed)
	}
	if summary.Moved != 0 {
		t.Fatalf("moved = %d, want 0", summary.Moved)
	}
}

func TestRunRefusesLockedDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := os.MkdirAll(cfg.Paths.DestDir, 0o755); err != nil {
		t.Fatal(err)
	}
	lock := flock.New(filepath.Join(cfg.Paths.DestDir, ".snapsort.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-lock failed: locked=%v err=%v", locked, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if _, _, err := organizer.New(cfg, nil).Run(context.Background()); err == nil {
		t.Fatal("run must refuse a locked destination")
	}
}

func TestRunEmptySource(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	summary, results, err := organizer.New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Scanned != 0 || len(results) != 0 {
		t.Fatalf("summary = %+v, results = %d", summary, len(results))
	}
}
