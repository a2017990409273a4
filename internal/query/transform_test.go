package query

import (
	"testing"

	"github.com/dyluth/coursecat/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func descriptions(courses []catalog.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Description
	}
	return out
}

func codes(courses []catalog.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Code
	}
	return out
}

func TestFlatten(t *testing.T) {
	docs := []*catalog.YearDocument{
		document("first",
			[]catalog.Course{course("Y1a", "x"), course("Y1b", "x")},
			[]catalog.Course{course("Y2", "x")},
			nil,
			[]catalog.Course{course("Y4", "x")},
		),
		document("second", nil, nil, []catalog.Course{course("Z3", "x")}),
	}

	assert.Equal(t, []string{"Y1a", "Y1b", "Y2", "Y4", "Z3"}, codes(Flatten(docs)))
	assert.Empty(t, Flatten(nil))
}

func TestSortByDescription(t *testing.T) {
	t.Run("uses locale collation instead of byte order", func(t *testing.T) {
		courses := []catalog.Course{
			course("1", "zebra"),
			course("2", "Banana"),
			course("3", "éclair"),
			course("4", "apple"),
		}

		SortByDescription(courses, language.English)
		assert.Equal(t, []string{"apple", "Banana", "éclair", "zebra"}, descriptions(courses))
	})

	t.Run("keeps input order for equal descriptions", func(t *testing.T) {
		courses := []catalog.Course{
			course("b1", "Networks"),
			course("a", "Algorithms"),
			course("b2", "Networks"),
			course("b3", "Networks"),
		}

		SortByDescription(courses, language.English)
		assert.Equal(t, []string{"a", "b1", "b2", "b3"}, codes(courses))
	})

	t.Run("treats composed and decomposed forms alike", func(t *testing.T) {
		courses := []catalog.Course{
			course("decomposed", "Cafe\u0301"),
			course("composed", "Caf\u00e9"),
		}

		SortByDescription(courses, language.English)
		assert.Equal(t, []string{"decomposed", "composed"}, codes(courses))
	})

	t.Run("output is non-decreasing under the collation", func(t *testing.T) {
		courses := []catalog.Course{
			course("1", "Web Development"),
			course("2", "data structures"),
			course("3", "Data Structures"),
			course("4", "Ethics"),
			course("5", "Álgebra"),
			course("6", "Calculus"),
		}

		SortByDescription(courses, language.English)

		c := collate.New(language.English)
		for i := 1; i < len(courses); i++ {
			assert.LessOrEqual(t, c.CompareString(courses[i-1].Description, courses[i].Description), 0,
				"%q should not sort after %q", courses[i-1].Description, courses[i].Description)
		}
	})
}

func TestFilterByTags(t *testing.T) {
	courses := []catalog.Course{
		course("1", "IT only", "BSIT"),
		course("2", "CS only", "BSCS"),
		course("3", "IS and CS", "BSCS", "BSIS"),
		course("4", "untagged"),
	}

	result := FilterByTags(courses, []string{"BSIT", "BSIS"})
	assert.Equal(t, []catalog.TaggedCourse{
		{Description: "IT only", Tags: []string{"BSIT"}},
		{Description: "IS and CS", Tags: []string{"BSCS", "BSIS"}},
	}, result)

	assert.Empty(t, FilterByTags(courses, nil))
}

func TestSelectByTags(t *testing.T) {
	courses := []catalog.Course{
		course("1", "IT only", "BSIT"),
		course("2", "CS only", "BSCS"),
		course("3", "IS and CS", "BSCS", "BSIS"),
	}

	assert.Equal(t, []string{"2", "3"}, codes(SelectByTags(courses, []string{"BSCS"})))
	assert.NotNil(t, SelectByTags(nil, []string{"BSIT"}))
}
