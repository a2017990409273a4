// Package catalog provides the course catalog data model and its Redis-backed
// document store.
//
// # Overview
//
// A catalog is a set of YearDocuments. Each YearDocument holds four ordered
// lists of Courses, one per academic year. The Go model keeps the years in a
// fixed array; a Schema supplies the labels ("1st Year" or "FirstYear") used
// when a document is stored or rendered as JSON.
//
// # Usage Example
//
//	client, err := catalog.NewClient(&redis.Options{Addr: "localhost:6379"}, "mongo-test", catalog.SchemaOrdinal)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	doc := &catalog.YearDocument{ID: catalog.NewDocumentID()}
//	doc.Years[0] = []catalog.Course{{Code: "CS101", Description: "Intro", Units: 3, Tags: []string{"BSIT"}}}
//	if err := client.PutYearDocument(ctx, doc); err != nil {
//		log.Fatal(err)
//	}
//
// # Redis Schema
//
// Documents: coursecat:{namespace}:year:{id} (hash; one JSON-encoded field per slot)
// Index:     coursecat:{namespace}:years (ZSET scored by creation time in ms)
package catalog
