package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotCount is the number of academic-year slots carried by every YearDocument.
const SlotCount = 4

// Course is a single catalog entry.
type Course struct {
	Code        string   `json:"code" yaml:"code" bson:"code"`
	Description string   `json:"description" yaml:"description" bson:"description"`
	Units       float64  `json:"units" yaml:"units" bson:"units"`
	Tags        []string `json:"tags" yaml:"tags" bson:"tags"`
}

// HasAnyTag reports whether the course carries at least one tag from the set.
func (c Course) HasAnyTag(set map[string]struct{}) bool {
	for _, tag := range c.Tags {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}

// Validate checks the fields a writer must supply.
func (c Course) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("code is required")
	}
	if c.Description == "" {
		return fmt.Errorf("course %s: description is required", c.Code)
	}
	if c.Tags == nil {
		return fmt.Errorf("course %s: tags are required", c.Code)
	}
	return nil
}

// YearDocument groups the courses of an academic plan by year.
// Years[0] is the first year; slot labels are applied by a Schema at the
// storage and wire boundaries.
type YearDocument struct {
	ID        string
	Years     [SlotCount][]Course
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks that the document can be written to a store.
func (d *YearDocument) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document id is required")
	}
	for i, courses := range d.Years {
		for _, c := range courses {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("year %d: %w", i+1, err)
			}
		}
	}
	return nil
}

// CourseCount returns the total number of courses across all slots.
func (d *YearDocument) CourseCount() int {
	n := 0
	for _, courses := range d.Years {
		n += len(courses)
	}
	return n
}

// Touch stamps the write timestamps. CreatedAt is only set once.
func (d *YearDocument) Touch(now time.Time) {
	now = now.UTC().Truncate(time.Millisecond)
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
}

// NewDocumentID returns a fresh document identifier.
func NewDocumentID() string {
	return uuid.New().String()
}

// TaggedCourse is the projection served by tag-filtered listings.
type TaggedCourse struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
