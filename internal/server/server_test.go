package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/coursecat/internal/config"
	"github.com/dyluth/coursecat/internal/query"
	"github.com/dyluth/coursecat/pkg/catalog"
	"github.com/redis/go-redis/v9"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog returns canned results or a canned error
type fakeCatalog struct {
	docs     []*catalog.YearDocument
	err      error
	lastTags []string
}

func (f *fakeCatalog) ListAll(ctx context.Context) ([]*catalog.YearDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeCatalog) ListFlattenedSorted(ctx context.Context) ([]catalog.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	courses := query.Flatten(f.docs)
	query.SortByDescription(courses, config.Default().Locale())
	return courses, nil
}

func (f *fakeCatalog) ListByTags(ctx context.Context, tags []string) ([]catalog.TaggedCourse, error) {
	f.lastTags = tags
	if f.err != nil {
		return nil, f.err
	}
	return query.FilterByTags(query.Flatten(f.docs), tags), nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func scenarioDocs() []*catalog.YearDocument {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	d := &catalog.YearDocument{ID: "65e1a2b3c4d5e6f708192a3b", CreatedAt: at, UpdatedAt: at}
	d.Years[0] = []catalog.Course{{Code: "CS101", Description: "Zebra Systems", Units: 3, Tags: []string{"BSIT"}}}
	d.Years[1] = []catalog.Course{{Code: "CS102", Description: "Alpha Logic", Units: 3, Tags: []string{"BSIS"}}}
	d.Years[2] = []catalog.Course{{Code: "CS201", Description: "Compilers", Units: 4, Tags: []string{"BSCS"}}}
	return []*catalog.YearDocument{d}
}

func newTestServer(t *testing.T, cfg *config.Config, cat Catalog, store Pinger) *httptest.Server {
	t.Helper()
	srv := New(cfg, cat, store)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestCatalogRoutes(t *testing.T) {
	ts := newTestServer(t, config.Default(), &fakeCatalog{docs: scenarioDocs()}, fakePinger{})

	tests := []struct {
		name string
		path string
	}{
		{"all_courses", "/all-courses"},
		{"sorted_courses", "/CourseSort"},
		{"tagged_courses", "/BSITandBSIScourses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			golden(t).Assert(t, tt.name, body)
		})
	}
}

func TestCatalogRoutes_Failure(t *testing.T) {
	storeErr := &query.StoreError{Op: "list documents", Err: errors.New("connection refused")}
	ts := newTestServer(t, config.Default(), &fakeCatalog{err: storeErr}, fakePinger{})

	tests := []struct {
		name string
		path string
	}{
		{"all_courses_error", "/all-courses"},
		{"sorted_courses_error", "/CourseSort"},
		{"tagged_courses_error", "/BSITandBSIScourses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.True(t, json.Valid(body))
			golden(t).Assert(t, tt.name, body)
		})
	}
}

func TestCatalogRoutes_UnencodableResult(t *testing.T) {
	docs := scenarioDocs()
	docs[0].Years[0][0].Units = math.NaN()
	ts := newTestServer(t, config.Default(), &fakeCatalog{docs: docs}, fakePinger{})

	tests := []struct {
		path string
		want map[string]string
	}{
		{"/all-courses", map[string]string{"error": "Internal server error"}},
		{"/CourseSort", map[string]string{"message": "failed to encode response: json: unsupported value: NaN"}},
		{"/BSITandBSIScourses", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if tt.want == nil {
				// Tagged projection drops units, so it still encodes
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				return
			}
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			var got map[string]string
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogRoutes_CamelVariant(t *testing.T) {
	cfg := &config.Config{Version: "1.0", Variant: "camel"}
	require.NoError(t, cfg.Validate())
	ts := newTestServer(t, cfg, &fakeCatalog{docs: scenarioDocs()}, fakePinger{})

	resp, body := get(t, ts.URL+"/all-available-courses")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var docs []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &docs))
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0], "FirstYear")
	assert.NotContains(t, docs[0], "1st Year")

	resp, _ = get(t, ts.URL+"/backend-courses")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, ts.URL+"/bsit-bsis-courses")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// the other variant's routes are not served
	resp, _ = get(t, ts.URL+"/CourseSort")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaggedRoute_UsesConfiguredTags(t *testing.T) {
	cfg := &config.Config{Version: "1.0", Routes: &config.RoutesConfig{
		Tagged: &config.RouteConfig{Tags: []string{"BSCS"}},
	}}
	require.NoError(t, cfg.Validate())
	cat := &fakeCatalog{docs: scenarioDocs()}
	ts := newTestServer(t, cfg, cat, fakePinger{})

	resp, body := get(t, ts.URL+"/BSITandBSIScourses")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"BSCS"}, cat.lastTags)
	assert.JSONEq(t, `[{"description":"Compilers","tags":["BSCS"]}]`, string(body))
}

func TestCatalogRoutes_RejectOtherMethods(t *testing.T) {
	ts := newTestServer(t, config.Default(), &fakeCatalog{}, fakePinger{})

	resp, err := http.Post(ts.URL+"/CourseSort", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	t.Run("healthy store", func(t *testing.T) {
		ts := newTestServer(t, config.Default(), &fakeCatalog{}, fakePinger{})

		resp, body := get(t, ts.URL+"/healthz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"healthy","store":"connected"}`, string(body))
	})

	t.Run("unreachable store", func(t *testing.T) {
		ts := newTestServer(t, config.Default(), &fakeCatalog{}, fakePinger{err: errors.New("dial tcp: refused")})

		resp, body := get(t, ts.URL+"/healthz")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.JSONEq(t, `{"status":"unhealthy","store":"disconnected","error":"dial tcp: refused"}`, string(body))
	})
}

// TestRedisBackedScenario runs the catalog end to end against miniredis.
func TestRedisBackedScenario(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	cfg := config.Default()
	client, err := catalog.NewClient(&redis.Options{Addr: mr.Addr()}, "test-catalog", cfg.CatalogSchema())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	for _, d := range scenarioDocs() {
		require.NoError(t, client.PutYearDocument(ctx, d))
	}

	ts := newTestServer(t, cfg, query.NewService(client, cfg.Locale()), client)

	t.Run("sorted", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/CourseSort")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var courses []catalog.Course
		require.NoError(t, json.Unmarshal(body, &courses))
		require.Len(t, courses, 3)
		assert.Equal(t, "Alpha Logic", courses[0].Description)
		assert.Equal(t, "Compilers", courses[1].Description)
		assert.Equal(t, "Zebra Systems", courses[2].Description)
	})

	t.Run("tagged projection has exactly description and tags", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/BSITandBSIScourses")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var items []map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &items))
		require.Len(t, items, 2)
		for _, item := range items {
			assert.Len(t, item, 2)
			assert.Contains(t, item, "description")
			assert.Contains(t, item, "tags")
		}
	})

	t.Run("all keeps nested slots and timestamps", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/all-courses")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var docs []map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(body, &docs))
		require.Len(t, docs, 1)
		for _, key := range []string{"_id", "1st Year", "2nd Year", "3rd Year", "4th Year", "createdAt", "updatedAt"} {
			assert.Contains(t, docs[0], key)
		}
		assert.JSONEq(t, `"2024-03-01T10:00:00.000Z"`, string(docs[0]["createdAt"]))
	})

	t.Run("store outage answers 500 with valid JSON", func(t *testing.T) {
		mr.Close()

		resp, body := get(t, ts.URL+"/CourseSort")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var failure map[string]string
		require.NoError(t, json.Unmarshal(body, &failure))
		assert.Contains(t, failure["message"], "failed to list documents")

		resp, body = get(t, ts.URL+"/all-courses")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Internal server error"}`, string(body))

		resp, _ = get(t, ts.URL+"/healthz")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestStartAndShutdown(t *testing.T) {
	srv := New(config.Default(), &fakeCatalog{}, fakePinger{})
	srv.server.Addr = "127.0.0.1:0"
	require.NoError(t, srv.Start())

	resp, _ := get(t, "http://"+srv.Addr()+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}

func TestShutdownBeforeStart(t *testing.T) {
	srv := New(config.Default(), &fakeCatalog{}, fakePinger{})
	assert.NoError(t, srv.Shutdown(context.Background()))
}
