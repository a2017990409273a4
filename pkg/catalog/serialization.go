package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Serialization helpers for converting YearDocuments to and from Redis hashes
// and JSON objects.
//
// In a Redis hash each slot is one field holding a JSON-encoded course array.
// In JSON each slot is a top-level key, next to _id, createdAt and updatedAt.

const (
	fieldID        = "_id"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"

	hashID        = "id"
	hashCreatedAt = "created_at_ms"
	hashUpdatedAt = "updated_at_ms"
)

// timestampLayout matches the millisecond ISO-8601 form document stores emit.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DocumentToHash converts a YearDocument to a Redis hash.
func (s Schema) DocumentToHash(d *YearDocument) (map[string]interface{}, error) {
	hash := map[string]interface{}{
		hashID:        d.ID,
		hashCreatedAt: d.CreatedAt.UnixMilli(),
		hashUpdatedAt: d.UpdatedAt.UnixMilli(),
	}

	for i, label := range s.Slots {
		data, err := json.Marshal(nonNil(d.Years[i]))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal slot %q: %w", label, err)
		}
		hash[label] = string(data)
	}

	return hash, nil
}

// HashToDocument converts a Redis hash to a YearDocument.
// Missing slot fields decode as empty slots.
func (s Schema) HashToDocument(hash map[string]string) (*YearDocument, error) {
	d := &YearDocument{ID: hash[hashID]}
	if d.ID == "" {
		return nil, fmt.Errorf("missing id field")
	}

	for i, label := range s.Slots {
		raw := hash[label]
		if raw == "" {
			d.Years[i] = []Course{}
			continue
		}
		if err := json.Unmarshal([]byte(raw), &d.Years[i]); err != nil {
			return nil, fmt.Errorf("failed to unmarshal slot %q: %w", label, err)
		}
		d.Years[i] = nonNil(d.Years[i])
	}

	createdMs, _ := strconv.ParseInt(hash[hashCreatedAt], 10, 64)
	updatedMs, _ := strconv.ParseInt(hash[hashUpdatedAt], 10, 64)
	d.CreatedAt = fromMillis(createdMs)
	d.UpdatedAt = fromMillis(updatedMs)

	return d, nil
}

// MarshalDocument encodes a YearDocument as a JSON object with keys in stored
// order: _id, the four slots, createdAt, updatedAt. Zero timestamps are omitted.
func (s Schema) MarshalDocument(d *YearDocument) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeMember(&buf, fieldID, d.ID, true); err != nil {
		return nil, err
	}
	for i, label := range s.Slots {
		if err := writeMember(&buf, label, nonNil(d.Years[i]), false); err != nil {
			return nil, err
		}
	}
	if !d.CreatedAt.IsZero() {
		if err := writeMember(&buf, fieldCreatedAt, d.CreatedAt.UTC().Format(timestampLayout), false); err != nil {
			return nil, err
		}
	}
	if !d.UpdatedAt.IsZero() {
		if err := writeMember(&buf, fieldUpdatedAt, d.UpdatedAt.UTC().Format(timestampLayout), false); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes a JSON object produced by MarshalDocument (or written
// by hand in a seed file). Unknown keys are ignored; absent slots are empty.
func (s Schema) UnmarshalDocument(data []byte) (*YearDocument, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	d := &YearDocument{}
	if raw, ok := fields[fieldID]; ok {
		if err := json.Unmarshal(raw, &d.ID); err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", fieldID, err)
		}
	}

	for i, label := range s.Slots {
		raw, ok := fields[label]
		if ok {
			if err := json.Unmarshal(raw, &d.Years[i]); err != nil {
				return nil, fmt.Errorf("failed to unmarshal slot %q: %w", label, err)
			}
		}
		d.Years[i] = nonNil(d.Years[i])
	}

	var err error
	if d.CreatedAt, err = parseTimestamp(fields[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("invalid %s field: %w", fieldCreatedAt, err)
	}
	if d.UpdatedAt, err = parseTimestamp(fields[fieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("invalid %s field: %w", fieldUpdatedAt, err)
	}

	return d, nil
}

// DocumentList is a JSON-marshalable list of documents rendered with a schema.
type DocumentList struct {
	Schema    Schema
	Documents []*YearDocument
}

// MarshalJSON implements json.Marshaler.
func (l DocumentList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, d := range l.Documents {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := l.Schema.MarshalDocument(d)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value interface{}, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	k, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to marshal key %q: %w", key, err)
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// nonNil keeps empty slots encoding as [] rather than null.
func nonNil(courses []Course) []Course {
	if courses == nil {
		return []Course{}
	}
	return courses
}
