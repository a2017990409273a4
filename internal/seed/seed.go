// Package seed loads year documents from YAML or JSON files into a store.
//
// A seed file holds a list of documents in the catalog's wire shape:
//
//	- _id: plan-2024
//	  "1st Year":
//	    - code: CS101
//	      description: Introduction to Computing
//	      units: 3
//	      tags: [BSIT, BSIS]
//
// JSON is valid YAML, so the same loader reads both. Slot labels must match
// the active schema; documents without an _id get a generated one.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/dyluth/coursecat/pkg/catalog"
	"gopkg.in/yaml.v3"
)

// Writer stores a document, replacing any existing document with the same ID.
type Writer interface {
	PutYearDocument(ctx context.Context, d *catalog.YearDocument) error
}

// LoadFile reads and decodes every document in the seed file at path.
func LoadFile(path string, schema catalog.Schema) ([]*catalog.YearDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data, schema)
}

// Parse decodes a YAML or JSON list of documents.
func Parse(data []byte, schema catalog.Schema) ([]*catalog.YearDocument, error) {
	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	docs := make([]*catalog.YearDocument, 0, len(raw))
	for i, entry := range raw {
		// Round-trip through JSON so the schema's wire decoder owns slot mapping
		encoded, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}

		d, err := schema.UnmarshalDocument(encoded)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if d.ID == "" {
			d.ID = catalog.NewDocumentID()
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("document %d (%s): %w", i, d.ID, err)
		}
		docs = append(docs, d)
	}

	return docs, nil
}

// Apply writes docs to w in order. It stops at the first failure and reports
// how many documents were written before it.
func Apply(ctx context.Context, w Writer, docs []*catalog.YearDocument) (int, error) {
	for i, d := range docs {
		if err := w.PutYearDocument(ctx, d); err != nil {
			return i, fmt.Errorf("failed to store document %s: %w", d.ID, err)
		}
		log.Printf("[DEBUG] Seeded document %s (%d courses)", d.ID, d.CourseCount())
	}
	return len(docs), nil
}
