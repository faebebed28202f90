package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"snapsort/internal/config"
	"snapsort/internal/datefind"
	"snapsort/internal/media"
)

func writeSource(t *testing.T, dir, name, content string) media.File {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return media.File{Path: path, Kind: media.KindJPEG, Size: int64(len(content))}
}

func resolvedAt(year int, month time.Month) datefind.Resolved {
	return datefind.Resolved{
		Time:     time.Date(year, month, 15, 10, 0, 0, 0, time.Local),
		Strategy: "exif",
		Tier:     datefind.TierEmbedded,
		OK:       true,
	}
}

func TestPlanResolvedFileLandsInYearMonth(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	file := writeSource(t, src, "IMG_0001.jpg", "payload")

	p := NewPlanner(dest, config.ModeMove, nil)
	decision, err := p.Plan(file, resolvedAt(2023, time.March))
	if err != nil {
		t.Fatal(err)
	}
	if decision.RelPath != filepath.Join("2023", "03", "IMG_0001.jpg") {
		t.Fatalf("relpath = %q", decision.RelPath)
	}
	if decision.Action != ActionMove {
		t.Fatalf("action = %q", decision.Action)
	}
	if decision.AbsPath != filepath.Join(dest, decision.RelPath) {
		t.Fatalf("abspath = %q", decision.AbsPath)
	}
}

func TestPlanCopyMode(t *testing.T) {
	src := t.TempDir()
	file := writeSource(t, src, "a.jpg", "x")

	p := NewPlanner(t.TempDir(), config.ModeCopy, nil)
	decision, err := p.Plan(file, resolvedAt(2020, time.January))
	if err != nil {
		t.Fatal(err)
	}
	if decision.Action != ActionCopy || decision.Mode != config.ModeCopy {
		t.Fatalf("decision = %+v", decision)
	}
}

func TestPlanUnresolvedGoesToUnknown(t *testing.T) {
	src := t.TempDir()
	file := writeSource(t, src, "mystery.jpg", "x")

	p := NewPlanner(t.TempDir(), config.ModeMove, nil)
	decision, err := p.Plan(file, datefind.Resolved{})
	if err != nil {
		t.Fatal(err)
	}
	if decision.RelPath != filepath.Join(UnknownBucket, "mystery.jpg") {
		t.Fatalf("relpath = %q", decision.RelPath)
	}
}

func TestPlanUnsupportedKindGoesToUnknown(t *testing.T) {
	src := t.TempDir()
	file := writeSource(t, src, "notes.txt", "x")
	file.Kind = media.KindUnsupported

	p := NewPlanner(t.TempDir(), config.ModeMove, nil)
	decision, err := p.Plan(file, resolvedAt(2023, time.May))
	if err != nil {
		t.Fatal(err)
	}
	if decision.RelPath != filepath.Join(UnknownBucket, "notes.txt") {
		t.Fatalf("unsupported kind must ignore the resolved date, got %q", decision.RelPath)
	}
}

func TestPlanSkipsByteIdenticalDuplicateOnDisk(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	file := writeSource(t, src, "dup.jpg", "same bytes")

	destDir := filepath.Join(dest, "2023", "03")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(destDir, "dup.jpg"), []byte("same bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewPlanner(dest, config.ModeMove, nil)
	decision, err := p.Plan(file, resolvedAt(2023, time.March))
	if err != nil {
		t.Fatal(err)
	}
	if decision.Action != ActionSkipDuplicate {
		t.Fatalf("action = %q, want skip-duplicate", decision.Action)
	}
}

func TestPlanSuffixesNameClashWithDifferentContent(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	file := writeSource(t, src, "clash.jpg", "new content")

	destDir := filepath.Join(dest, "2023", "03")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(destDir, "clash.jpg"), []byte("old content!"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewPlanner(dest, config.ModeMove, nil)
	decision, err := p.Plan(file, resolvedAt(2023, time.March))
	if err != nil {
		t.Fatal(err)
	}
	if decision.Action != ActionRenameSuffix {
		t.Fatalf("action = %q, want rename-suffix", decision.Action)
	}
	if filepath.Base(decision.RelPath) != "clash_1.jpg" {
		t.Fatalf("relpath = %q, want clash_1.jpg", decision.RelPath)
	}
	if decision.Reason == "" {
		t.Fatal("rename decision must carry a reason")
	}
}

func TestPlanInRunNameClash(t *testing.T) {
	src := t.TempDir()
	first := writeSource(t, src, "a.jpg", "first body")
	other := t.TempDir()
	second := writeSource(t, other, "a.jpg", "second body")

	p := NewPlanner(t.TempDir(), config.ModeMove, nil)
	resolved := resolvedAt(2022, time.July)

	d1, err := p.Plan(first, resolved)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := p.Plan(second, resolved)
	if err != nil {
		t.Fatal(err)
	}
	if d1.Action != ActionMove || filepath.Base(d1.RelPath) != "a.jpg" {
		t.Fatalf("first decision = %+v", d1)
	}
	if d2.Action != ActionRenameSuffix || filepath.Base(d2.RelPath) != "a_1.jpg" {
		t.Fatalf("second decision = %+v", d2)
	}
}

func TestPlanInRunDuplicateContent(t *testing.T) {
	srcA := t.TempDir()
	srcB := t.TempDir()
	first := writeSource(t, srcA, "same.jpg", "identical")
	second := writeSource(t, srcB, "same.jpg", "identical")

	p := NewPlanner(t.TempDir(), config.ModeMove, nil)
	resolved := resolvedAt(2022, time.July)

	if _, err := p.Plan(first, resolved); err != nil {
		t.Fatal(err)
	}
	d2, err := p.Plan(second, resolved)
	if err != nil {
		t.Fatal(err)
	}
	if d2.Action != ActionSkipDuplicate {
		t.Fatalf("action = %q, want skip-duplicate for identical in-run content", d2.Action)
	}
}

// completeMove mimics the mover finishing a move: the content appears at the
// destination and the source disappears.
func completeMove(t *testing.T, decision Decision, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(decision.AbsPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(decision.AbsPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPlanClashAfterHolderMoved(t *testing.T) {
	srcA := t.TempDir()
	srcB := t.TempDir()
	first := writeSource(t, srcA, "shot.jpg", "first body")
	second := writeSource(t, srcB, "shot.jpg", "second body")

	p := NewPlanner(t.TempDir(), config.ModeMove, nil)
	resolved := resolvedAt(2023, time.March)

	d1, err := p.Plan(first, resolved)
	if err != nil {
		t.Fatal(err)
	}
	completeMove(t, d1, "first body")
	if err := os.Remove(first.Path); err != nil {
		t.Fatal(err)
	}

	d2, err := p.Plan(second, resolved)
	if err != nil {
		t.Fatalf("planning after the holder moved: %v", err)
	}
	if d2.Action != ActionRenameSuffix || filepath.Base(d2.RelPath) != "shot_1.jpg" {
		t.Fatalf("second decision = %+v, want rename to shot_1.jpg", d2)
	}
}

func TestPlanDuplicateAfterHolderMoved(t *testing.T) {
	srcA := t.TempDir()
	srcB := t.TempDir()
	first := writeSource(t, srcA, "same.jpg", "identical")
	second := writeSource(t, srcB, "same.jpg", "identical")

	p := NewPlanner(t.TempDir(), config.ModeMove, nil)
	resolved := resolvedAt(2023, time.March)

	d1, err := p.Plan(first, resolved)
	if err != nil {
		t.Fatal(err)
	}
	completeMove(t, d1, "identical")
	if err := os.Remove(first.Path); err != nil {
		t.Fatal(err)
	}

	d2, err := p.Plan(second, resolved)
	if err != nil {
		t.Fatal(err)
	}
	if d2.Action != ActionSkipDuplicate {
		t.Fatalf("action = %q, want skip-duplicate for identical content", d2.Action)
	}
}

func TestEntryHashRetriesAfterFailure(t *testing.T) {
	srcA := t.TempDir()
	srcB := t.TempDir()
	first := writeSource(t, srcA, "late.jpg", "body one")
	second := writeSource(t, srcB, "late.jpg", "body two")

	p := NewPlanner(t.TempDir(), config.ModeMove, nil)
	resolved := resolvedAt(2023, time.April)

	d1, err := p.Plan(first, resolved)
	if err != nil {
		t.Fatal(err)
	}
	// Source gone and destination not yet written: the comparison must fail,
	// but only transiently.
	if err := os.Remove(first.Path); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Plan(second, resolved); err == nil {
		t.Fatal("expected an error while the holder is unreadable")
	}

	completeMove(t, d1, "body one")
	d2, err := p.Plan(second, resolved)
	if err != nil {
		t.Fatalf("hash failure must not be cached: %v", err)
	}
	if d2.Action != ActionRenameSuffix {
		t.Fatalf("action = %q, want rename-suffix", d2.Action)
	}
}

func TestPlanSuffixSkipsOccupiedSlots(t *testing.T) {
	src := t.TempDir()
	p := NewPlanner(t.TempDir(), config.ModeMove, nil)
	resolved := resolvedAt(2021, time.December)

	var last Decision
	for i := 0; i < 4; i++ {
		dir := filepath.Join(src, fmt.Sprintf("card%d", i))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		file := writeSource(t, dir, "IMG.jpg", fmt.Sprintf("body %d", i))
		decision, err := p.Plan(file, resolved)
		if err != nil {
			t.Fatal(err)
		}
		last = decision
	}
	if filepath.Base(last.RelPath) != "IMG_3.jpg" {
		t.Fatalf("fourth clash should land on IMG_3.jpg, got %q", last.RelPath)
	}
}

func TestPlanConcurrentClashesGetDistinctPaths(t *testing.T) {
	const workers = 16
	p := NewPlanner(t.TempDir(), config.ModeMove, nil)
	resolved := resolvedAt(2020, time.June)

	files := make([]media.File, workers)
	for i := range files {
		dir := filepath.Join(t.TempDir(), fmt.Sprintf("w%d", i))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		files[i] = writeSource(t, dir, "shot.jpg", fmt.Sprintf("unique %d", i))
	}

	decisions := make([]Decision, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decisions[i], errs[i] = p.Plan(files[i], resolved)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]int)
	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
		seen[decisions[i].AbsPath]++
	}
	if len(seen) != workers {
		t.Fatalf("expected %d distinct destinations, got %d", workers, len(seen))
	}
	for path, n := range seen {
		if n != 1 {
			t.Fatalf("path %q reserved %d times", path, n)
		}
	}
}

func TestSuffixedName(t *testing.T) {
	if got := suffixedName("clip.mp4", 0); got != "clip.mp4" {
		t.Fatalf("got %q", got)
	}
	if got := suffixedName("clip.mp4", 2); got != "clip_2.mp4" {
		t.Fatalf("got %q", got)
	}
	if got := suffixedName("noext", 1); got != "noext_1" {
		t.Fatalf("got %q", got)
	}
}
