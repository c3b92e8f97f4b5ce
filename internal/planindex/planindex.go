package planindex

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/parser"
	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/plantree"
	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/reviewstore"
)

// StatusCounts tallies section review statuses for one plan. The four
// buckets always sum to Total, the number of sections in the current parse.
type StatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Resolved int `json:"resolved"`
	Total    int `json:"total"`
}

// PlanListItem is the aggregate list view of one plan: parse-derived fields
// joined with review-file tallies. Computed fresh on every List call, never
// persisted.
type PlanListItem struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Path            string       `json:"path"`
	ModifiedAt      time.Time    `json:"modifiedAt"`
	HasComments     bool         `json:"hasComments"`
	UnresolvedCount int          `json:"unresolvedCount"`
	StatusCounts    StatusCounts `json:"statusCounts"`
}

// Index enumerates plan files and joins their parsed section trees with the
// review store. It holds no state of its own; every call re-reads disk.
type Index struct {
	plansDir string
	reviews  *reviewstore.Store
}

// New creates an Index over plansDir, joining against reviews.
func New(plansDir string, reviews *reviewstore.Store) *Index {
	return &Index{plansDir: plansDir, reviews: reviews}
}

// List returns every known plan with its review aggregates, newest first.
// A missing plans directory yields an empty list, not an error.
func (ix *Index) List() ([]PlanListItem, error) {
	entries, err := os.ReadDir(ix.plansDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []PlanListItem{}, nil
		}
		return nil, fmt.Errorf("list plans dir: %w", err)
	}

	items := []PlanListItem{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		planID := strings.TrimSuffix(entry.Name(), ".md")
		planPath := filepath.Join(ix.plansDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			continue
		}
		content, err := os.ReadFile(planPath)
		if err != nil {
			// The file may have been deleted between ReadDir and here.
			continue
		}

		plan := parser.Parse(string(content), planID, planPath)
		review, err := ix.reviews.Get(planID)
		if err != nil {
			return nil, err
		}

		item := PlanListItem{
			ID:           planID,
			Title:        plan.Title,
			Path:         planPath,
			ModifiedAt:   info.ModTime(),
			HasComments:  review != nil,
			StatusCounts: statusCounts(plan.Sections, review),
		}
		if review != nil {
			item.UnresolvedCount = review.UnresolvedCount()
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ModifiedAt.After(items[j].ModifiedAt)
	})
	return items, nil
}

// statusCounts tallies the status of every section in the current parse.
// Sections without a review record count as pending. Review records whose
// section ID no longer exists in the tree contribute nothing here; the live
// tree alone defines the total.
func statusCounts(sections []*plantree.Section, review *reviewstore.PlanReviewFile) StatusCounts {
	ids := plantree.CollectIDs(sections)
	counts := StatusCounts{Total: len(ids)}

	for _, id := range ids {
		status := reviewstore.StatusPending
		if review != nil {
			if sr := review.FindSection(id); sr != nil {
				status = sr.Status
			}
		}
		switch status {
		case reviewstore.StatusApproved:
			counts.Approved++
		case reviewstore.StatusRejected:
			counts.Rejected++
		case reviewstore.StatusResolved:
			counts.Resolved++
		default:
			counts.Pending++
		}
	}
	return counts
}

// Get parses a single plan on demand. An unreadable or missing plan returns
// (nil, nil); callers translate that to their own not-found shape.
func (ix *Index) Get(planID string) (*plantree.ParsedPlan, error) {
	planPath := filepath.Join(ix.plansDir, planID+".md")
	content, err := os.ReadFile(planPath)
	if err != nil {
		return nil, nil
	}

	plan := parser.Parse(string(content), planID, planPath)
	if info, err := os.Stat(planPath); err == nil {
		plan.Metadata.ModifiedAt = info.ModTime()
		plan.Metadata.CreatedAt = info.ModTime()
	}
	return plan, nil
}
