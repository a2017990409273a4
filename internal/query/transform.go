package query

import (
	"bytes"
	"sort"

	"github.com/dyluth/coursecat/pkg/catalog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Flatten concatenates the year slots of every document: documents in the
// given order, slots first to fourth, courses in slot order.
func Flatten(docs []*catalog.YearDocument) []catalog.Course {
	total := 0
	for _, d := range docs {
		total += d.CourseCount()
	}

	courses := make([]catalog.Course, 0, total)
	for _, d := range docs {
		for _, slot := range d.Years {
			courses = append(courses, slot...)
		}
	}
	return courses
}

// SortByDescription sorts courses in place by description using the collation
// rules of locale. The sort is stable.
func SortByDescription(courses []catalog.Course, locale language.Tag) {
	// Collators keep internal state, so each sort gets its own
	c := collate.New(locale)

	var buf collate.Buffer
	keyed := make([]keyedCourse, len(courses))
	for i, course := range courses {
		keyed[i] = keyedCourse{
			key:    c.KeyFromString(&buf, norm.NFC.String(course.Description)),
			course: course,
		}
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		return bytes.Compare(keyed[i].key, keyed[j].key) < 0
	})

	for i := range keyed {
		courses[i] = keyed[i].course
	}
}

type keyedCourse struct {
	key    []byte
	course catalog.Course
}

// SelectByTags keeps courses carrying at least one of tags, in order.
func SelectByTags(courses []catalog.Course, tags []string) []catalog.Course {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}

	result := []catalog.Course{}
	for _, c := range courses {
		if c.HasAnyTag(set) {
			result = append(result, c)
		}
	}
	return result
}

// FilterByTags keeps courses carrying at least one of tags and projects them
// to description and tags.
func FilterByTags(courses []catalog.Course, tags []string) []catalog.TaggedCourse {
	selected := SelectByTags(courses, tags)

	result := make([]catalog.TaggedCourse, 0, len(selected))
	for _, c := range selected {
		result = append(result, catalog.TaggedCourse{
			Description: c.Description,
			Tags:        c.Tags,
		})
	}
	return result
}
