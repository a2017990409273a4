package query

import (
	"context"
	"fmt"

	"github.com/dyluth/coursecat/pkg/catalog"
	"golang.org/x/text/language"
)

// Source is the read side of a catalog store.
type Source interface {
	ListYearDocuments(ctx context.Context) ([]*catalog.YearDocument, error)
}

// Service answers catalog queries. Every call reads the full current state of
// the source; nothing is cached between calls.
type Service struct {
	source Source
	locale language.Tag
}

// NewService creates a query service ordering descriptions by the given locale.
func NewService(source Source, locale language.Tag) *Service {
	return &Service{
		source: source,
		locale: locale,
	}
}

// ListAll returns every stored document unmodified.
func (s *Service) ListAll(ctx context.Context) ([]*catalog.YearDocument, error) {
	docs, err := s.source.ListYearDocuments(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list documents", Err: err}
	}
	if docs == nil {
		docs = []*catalog.YearDocument{}
	}
	return docs, nil
}

// ListFlattenedSorted returns the courses of every document, ordered by description.
// Courses with equal descriptions keep their flattened order.
func (s *Service) ListFlattenedSorted(ctx context.Context) ([]catalog.Course, error) {
	docs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	courses := Flatten(docs)
	SortByDescription(courses, s.locale)
	return courses, nil
}

// ListByTags returns the description and tags of every course carrying at least
// one of the given tags, in flattened order.
func (s *Service) ListByTags(ctx context.Context, tags []string) ([]catalog.TaggedCourse, error) {
	docs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return FilterByTags(Flatten(docs), tags), nil
}

// StoreError reports a failure to read from the catalog store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
