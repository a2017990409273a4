package catalog

import "fmt"

// Schema names the four year slots of a YearDocument as they appear in storage
// and on the wire. The two built-in schemas correspond to the two conventions
// found in deployed catalogs.
type Schema struct {
	Name  string
	Slots [SlotCount]string
}

var (
	// SchemaOrdinal labels slots "1st Year" through "4th Year". It is the canonical schema.
	SchemaOrdinal = Schema{
		Name:  "ordinal",
		Slots: [SlotCount]string{"1st Year", "2nd Year", "3rd Year", "4th Year"},
	}

	// SchemaCamel labels slots "FirstYear" through "FourthYear".
	SchemaCamel = Schema{
		Name:  "camel",
		Slots: [SlotCount]string{"FirstYear", "SecondYear", "ThirdYear", "FourthYear"},
	}
)

// reserved field names that a slot label must not shadow
var reservedFields = map[string]bool{
	fieldID:        true,
	fieldCreatedAt: true,
	fieldUpdatedAt: true,
}

// Validate checks that every slot label is set, unique and not reserved.
func (s Schema) Validate() error {
	seen := make(map[string]bool, SlotCount)
	for i, label := range s.Slots {
		if label == "" {
			return fmt.Errorf("schema %q: slot %d has no label", s.Name, i+1)
		}
		if reservedFields[label] {
			return fmt.Errorf("schema %q: slot label %q is reserved", s.Name, label)
		}
		if seen[label] {
			return fmt.Errorf("schema %q: duplicate slot label %q", s.Name, label)
		}
		seen[label] = true
	}
	return nil
}

// SchemaByName returns a built-in schema.
func SchemaByName(name string) (Schema, error) {
	switch name {
	case SchemaOrdinal.Name:
		return SchemaOrdinal, nil
	case SchemaCamel.Name:
		return SchemaCamel, nil
	default:
		return Schema{}, fmt.Errorf("unknown schema: %s (must be 'ordinal' or 'camel')", name)
	}
}

// Redis key pattern helpers
//
// All keys are namespaced so several catalogs can share one Redis server.
//
// Document key: coursecat:{namespace}:year:{id}
// Index key:    coursecat:{namespace}:years
// Sequence key: coursecat:{namespace}:seq

// DocumentKey returns the Redis key of a YearDocument hash.
func DocumentKey(namespace, id string) string {
	return fmt.Sprintf("coursecat:%s:year:%s", namespace, id)
}

// IndexKey returns the Redis key of the ZSET that orders documents by first write.
func IndexKey(namespace string) string {
	return fmt.Sprintf("coursecat:%s:years", namespace)
}

// SeqKey returns the Redis key of the counter that scores new index entries.
func SeqKey(namespace string) string {
	return fmt.Sprintf("coursecat:%s:seq", namespace)
}
