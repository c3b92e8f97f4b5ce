package planindex

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/reviewstore"
)

func newTestIndex(t *testing.T) (*Index, *reviewstore.Store, string) {
	t.Helper()
	plansDir := t.TempDir()
	reviews, err := reviewstore.New(t.TempDir(), plansDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return New(plansDir, reviews), reviews, plansDir
}

func writePlan(t *testing.T, dir, id, content string) string {
	t.Helper()
	path := filepath.Join(dir, id+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	return path
}

func TestList_Empty(t *testing.T) {
	ix, _, _ := newTestIndex(t)

	items, err := ix.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list, got %d items", len(items))
	}
}

func TestList_MissingDirIsEmpty(t *testing.T) {
	reviews, err := reviewstore.New(t.TempDir(), "/nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ix := New(filepath.Join(t.TempDir(), "does-not-exist"), reviews)

	items, err := ix.List()
	if err != nil {
		t.Fatalf("expected missing plans dir to be tolerated, got %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list, got %d items", len(items))
	}
}

func TestList_StatusCountsSumToTotal(t *testing.T) {
	ix, reviews, plansDir := newTestIndex(t)
	writePlan(t, plansDir, "doc", "# Plan\n\n## Setup\nsteps\n\n## Run\nsteps\n")

	if _, err := reviews.SetSectionStatus("doc", "plan_2_setup", reviewstore.StatusApproved, "Setup"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := ix.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	sc := items[0].StatusCounts
	if sc.Total != 3 {
		t.Errorf("expected 3 total sections, got %d", sc.Total)
	}
	if sc.Approved != 1 {
		t.Errorf("expected 1 approved, got %d", sc.Approved)
	}
	if sc.Pending != 2 {
		t.Errorf("expected 2 pending, got %d", sc.Pending)
	}
	if sum := sc.Pending + sc.Approved + sc.Rejected + sc.Resolved; sum != sc.Total {
		t.Errorf("status counts must sum to total: %d != %d", sum, sc.Total)
	}
	if !items[0].HasComments {
		t.Error("expected hasComments once a review file exists")
	}
	if items[0].Title != "Plan" {
		t.Errorf("expected title from first h1, got %q", items[0].Title)
	}
}

func TestList_OrphanedReviewTolerated(t *testing.T) {
	ix, reviews, plansDir := newTestIndex(t)
	writePlan(t, plansDir, "doc", "## Alive\nbody\n")

	// Review state for a section that no longer exists in the plan.
	if _, err := reviews.AddComment("doc", "2_deleted-section", "stale note", "Deleted Section"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := reviews.SetSectionStatus("doc", "2_deleted-section", reviewstore.StatusApproved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := ix.List()
	if err != nil {
		t.Fatalf("orphaned review must not fail listing: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	sc := items[0].StatusCounts
	// The orphan contributes nothing to section tallies...
	if sc.Total != 1 {
		t.Errorf("expected total 1 (live sections only), got %d", sc.Total)
	}
	if sc.Approved != 0 {
		t.Errorf("orphaned approval must not count, got %d approved", sc.Approved)
	}
	if sc.Pending != 1 {
		t.Errorf("expected the live section pending, got %d", sc.Pending)
	}
	// ...but its unresolved comments still demand attention.
	if items[0].UnresolvedCount != 1 {
		t.Errorf("expected unresolvedCount 1 including orphans, got %d", items[0].UnresolvedCount)
	}
}

func TestList_SortedByModTimeDesc(t *testing.T) {
	ix, _, plansDir := newTestIndex(t)

	oldPath := writePlan(t, plansDir, "older", "# Older\n")
	writePlan(t, plansDir, "newer", "# Newer\n")

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	items, err := ix.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "newer" || items[1].ID != "older" {
		t.Errorf("expected newest first, got %q then %q", items[0].ID, items[1].ID)
	}
}

func TestList_IgnoresNonMarkdown(t *testing.T) {
	ix, _, plansDir := newTestIndex(t)

	writePlan(t, plansDir, "doc", "# Doc\n")
	if err := os.WriteFile(filepath.Join(plansDir, "notes.txt"), []byte("not a plan"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	items, err := ix.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected only the .md plan, got %d items", len(items))
	}
}

func TestGet(t *testing.T) {
	ix, _, plansDir := newTestIndex(t)
	writePlan(t, plansDir, "doc", "# Doc\n\nbody\n")

	plan, err := ix.Get("doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan == nil {
		t.Fatal("expected plan")
	}
	if plan.ID != "doc" {
		t.Errorf("expected id %q, got %q", "doc", plan.ID)
	}
	if plan.Metadata.ModifiedAt.IsZero() {
		t.Error("expected modifiedAt filled from stat")
	}
}

func TestGet_Absent(t *testing.T) {
	ix, _, _ := newTestIndex(t)

	plan, err := ix.Get("no-such-plan")
	if err != nil {
		t.Fatalf("expected absent plan to be non-fatal, got %v", err)
	}
	if plan != nil {
		t.Errorf("expected nil for unknown plan, got %+v", plan)
	}
}
