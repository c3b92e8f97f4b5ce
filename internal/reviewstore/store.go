package reviewstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAuthor is attached to every new comment.
const DefaultAuthor = "User"

var (
	// ErrEmptyText rejects comments with no text before anything is written.
	ErrEmptyText = errors.New("comment text is required")
	// ErrEmptySectionID rejects mutations that name no section.
	ErrEmptySectionID = errors.New("section id is required")
	// ErrInvalidStatus rejects statuses outside the known enum.
	ErrInvalidStatus = errors.New("invalid section status")
)

// Store persists per-plan review files as JSON under a configured directory.
// Every mutation is a read-modify-write of the whole file; a per-plan mutex
// serializes writers so concurrent mutations on the same plan cannot lose
// updates, and files are replaced via temp+rename so readers never observe
// a partial write.
type Store struct {
	dir      string // review files live here, one <planID>.json each
	plansDir string // used only to record planPath in new review files

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir, plansDir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reviews dir: %w", err)
	}
	return &Store{
		dir:      dir,
		plansDir: plansDir,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

func (s *Store) filePath(planID string) string {
	return filepath.Join(s.dir, planID+".json")
}

// lock returns the mutex serializing writes for one plan.
func (s *Store) lock(planID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[planID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[planID] = l
	}
	return l
}

// Get loads the review file for a plan. A plan that has never been reviewed
// returns (nil, nil); only I/O or decode failures are errors.
func (s *Store) Get(planID string) (*PlanReviewFile, error) {
	data, err := os.ReadFile(s.filePath(planID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read review file for %s: %w", planID, err)
	}
	var f PlanReviewFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode review file for %s: %w", planID, err)
	}
	return &f, nil
}

// save rewrites the whole review file atomically, stamping updatedAt.
func (s *Store) save(f *PlanReviewFile) error {
	f.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode review file for %s: %w", f.PlanID, err)
	}
	path := s.filePath(f.PlanID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write review file for %s: %w", f.PlanID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace review file for %s: %w", f.PlanID, err)
	}
	return nil
}

// EnsureInitialized returns the plan's review file, creating and persisting
// an empty one if none exists yet. Idempotent.
func (s *Store) EnsureInitialized(planID string) (*PlanReviewFile, error) {
	l := s.lock(planID)
	l.Lock()
	defer l.Unlock()
	return s.ensureInitializedLocked(planID)
}

func (s *Store) ensureInitializedLocked(planID string) (*PlanReviewFile, error) {
	existing, err := s.Get(planID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	f := &PlanReviewFile{
		PlanID:    planID,
		PlanPath:  filepath.Join(s.plansDir, planID+".md"),
		CreatedAt: now,
		UpdatedAt: now,
		Sections:  []SectionReview{},
	}
	if err := s.save(f); err != nil {
		return nil, err
	}
	return f, nil
}

// findOrCreateSection returns the review record for sectionID, appending a
// pending one if absent. A previously-empty cached heading is backfilled
// from the supplied label.
func findOrCreateSection(f *PlanReviewFile, sectionID, heading string, level int) *SectionReview {
	if sr := f.FindSection(sectionID); sr != nil {
		if sr.Heading == "" && heading != "" {
			sr.Heading = heading
		}
		return sr
	}
	if level <= 0 {
		level = 1
	}
	f.Sections = append(f.Sections, SectionReview{
		SectionID:    sectionID,
		Heading:      heading,
		HeadingLevel: level,
		Status:       StatusPending,
		Comments:     []Comment{},
	})
	return &f.Sections[len(f.Sections)-1]
}

// AddComment appends a comment to the section's thread, creating the review
// file and the section record on demand.
func (s *Store) AddComment(planID, sectionID, text, heading string) (*Comment, error) {
	if sectionID == "" {
		return nil, ErrEmptySectionID
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	l := s.lock(planID)
	l.Lock()
	defer l.Unlock()

	f, err := s.ensureInitializedLocked(planID)
	if err != nil {
		return nil, err
	}

	comment := Comment{
		ID:        uuid.NewString(),
		SectionID: sectionID,
		Text:      text,
		Author:    DefaultAuthor,
		CreatedAt: time.Now().UTC(),
		Resolved:  false,
	}

	sr := findOrCreateSection(f, sectionID, heading, 0)
	sr.Comments = append(sr.Comments, comment)

	if err := s.save(f); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment patches a comment's text and/or resolved flag. An unknown
// comment ID returns (nil, nil), not an error.
func (s *Store) UpdateComment(planID, commentID string, update CommentUpdate) (*Comment, error) {
	l := s.lock(planID)
	l.Lock()
	defer l.Unlock()

	f, err := s.Get(planID)
	if err != nil || f == nil {
		return nil, err
	}

	for si := range f.Sections {
		comments := f.Sections[si].Comments
		for ci := range comments {
			if comments[ci].ID != commentID {
				continue
			}
			c := &comments[ci]
			now := time.Now().UTC()
			if update.Text != nil {
				c.Text = *update.Text
			}
			if update.Resolved != nil {
				c.Resolved = *update.Resolved
				if c.Resolved {
					c.ResolvedAt = &now
				} else {
					c.ResolvedAt = nil
				}
			}
			c.UpdatedAt = &now
			if err := s.save(f); err != nil {
				return nil, err
			}
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

// DeleteComment removes a comment and reports whether anything was removed.
// An emptied section record stays in the file with its last status.
func (s *Store) DeleteComment(planID, commentID string) (bool, error) {
	l := s.lock(planID)
	l.Lock()
	defer l.Unlock()

	f, err := s.Get(planID)
	if err != nil || f == nil {
		return false, err
	}

	for si := range f.Sections {
		comments := f.Sections[si].Comments
		for ci := range comments {
			if comments[ci].ID != commentID {
				continue
			}
			f.Sections[si].Comments = append(comments[:ci], comments[ci+1:]...)
			if err := s.save(f); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// SetSectionStatus sets a section's review status, creating the review file
// and section record on demand. Moving to resolved stamps resolvedAt; any
// other status clears it.
func (s *Store) SetSectionStatus(planID, sectionID string, status Status, heading string) (*SectionReview, error) {
	if sectionID == "" {
		return nil, ErrEmptySectionID
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	l := s.lock(planID)
	l.Lock()
	defer l.Unlock()

	f, err := s.ensureInitializedLocked(planID)
	if err != nil {
		return nil, err
	}

	sr := findOrCreateSection(f, sectionID, heading, 0)
	sr.Status = status
	if status == StatusResolved {
		now := time.Now().UTC()
		sr.ResolvedAt = &now
	} else {
		sr.ResolvedAt = nil
	}

	if err := s.save(f); err != nil {
		return nil, err
	}
	out := *sr
	return &out, nil
}
