package reviewstore

import "time"

// Status is the review state of a single section.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusResolved Status = "resolved"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusResolved:
		return true
	}
	return false
}

// Comment is a single review comment attached to a section ID.
type Comment struct {
	ID         string     `json:"id"`
	SectionID  string     `json:"sectionId"`
	Text       string     `json:"text"`
	Author     string     `json:"author"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// SectionReview is the persisted review state for one section: a status
// plus its comment thread. The section ID may refer to a section that no
// longer exists in the current parse of the plan; such orphaned reviews
// are kept, never pruned.
type SectionReview struct {
	SectionID    string     `json:"sectionId"`
	Heading      string     `json:"heading"` // Cached label, may lag the live heading
	HeadingLevel int        `json:"headingLevel"`
	Status       Status     `json:"status"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
	Comments     []Comment  `json:"comments"`
}

// PlanReviewFile is the on-disk review state for one plan, stored as
// <reviewsDir>/<planID>.json.
type PlanReviewFile struct {
	PlanID    string          `json:"planId"`
	PlanPath  string          `json:"planPath"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Sections  []SectionReview `json:"sections"`
}

// CommentUpdate carries the patchable comment fields; nil means "leave as is".
type CommentUpdate struct {
	Text     *string `json:"text,omitempty"`
	Resolved *bool   `json:"resolved,omitempty"`
}

// UnresolvedCount counts unresolved comments across all sections, including
// sections that no longer exist in the current parse. An unresolved comment
// still needs a reviewer's attention even if its heading was deleted.
func (f *PlanReviewFile) UnresolvedCount() int {
	n := 0
	for _, s := range f.Sections {
		for _, c := range s.Comments {
			if !c.Resolved {
				n++
			}
		}
	}
	return n
}

// FindSection returns the review record for sectionID, or nil.
func (f *PlanReviewFile) FindSection(sectionID string) *SectionReview {
	for i := range f.Sections {
		if f.Sections[i].SectionID == sectionID {
			return &f.Sections[i]
		}
	}
	return nil
}
