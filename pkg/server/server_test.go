package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lirany1/pickles-explorer/pkg/analytics"
	"github.com/lirany1/pickles-explorer/pkg/loader"
	"github.com/lirany1/pickles-explorer/pkg/models"
	"github.com/lirany1/pickles-explorer/pkg/report"
)

func steps(n int) []models.Step {
	s := make([]models.Step, n)
	for i := range s {
		s[i] = models.Step{Keyword: "Given", Name: "step"}
	}
	return s
}

func fixture() *models.Document {
	return &models.Document{Features: []models.FeatureWrapper{
		{
			RelativeFolder: "auth/login.feature",
			Feature: &models.Feature{
				Name: "Login",
				Tags: []string{"@smoke"},
				FeatureElements: []models.Scenario{
					{Name: "User Login Flow", Tags: []string{"@smoke"}, Steps: steps(1)},
					{Name: "Logout", Tags: []string{}, Steps: steps(3)},
				},
			},
		},
		{
			RelativeFolder: "billing.feature",
			Feature: &models.Feature{
				Name:            "Billing",
				Tags:            []string{},
				FeatureElements: []models.Scenario{{Name: "Invoice", Tags: []string{"@automated"}, Steps: steps(2)}},
			},
		},
	}}
}

func newTestServer(doc *models.Document) *Server {
	s := NewServer(nil, nil)
	if doc != nil {
		s.SetDocument(doc, "fixture")
	}
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(nil), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNoDocument(t *testing.T) {
	s := newTestServer(nil)
	for _, target := range []string{"/api/summary", "/api/scenarios", "/api/features", "/api/document", "/"} {
		assert.Equal(t, http.StatusServiceUnavailable, get(t, s, target).Code, target)
	}
}

func TestSummary(t *testing.T) {
	rec := get(t, newTestServer(fixture()), "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary analytics.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Aggregates.FeatureCount)
	assert.Equal(t, 3, summary.Aggregates.ScenarioCount)
	assert.Equal(t, 6, summary.Aggregates.StepCount)
	assert.Equal(t, 3, summary.Aggregates.TagCounts["@smoke"])
	assert.Equal(t, "fixture", summary.Source)
}

func TestSummary_UndefinedPercentIsNull(t *testing.T) {
	doc := &models.Document{Features: []models.FeatureWrapper{{
		Feature: &models.Feature{Name: "Empty", Tags: []string{"@wip"}, FeatureElements: []models.Scenario{}},
	}}}

	rec := get(t, newTestServer(doc), "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `{"tag":"@wip","count":0,"percent":null}`)
	assert.NotContains(t, rec.Body.String(), "NaN")
}

func TestScenarios(t *testing.T) {
	s := newTestServer(fixture())

	tests := []struct {
		target string
		want   []string
	}{
		{"/api/scenarios", []string{"Logout", "Invoice", "User Login Flow"}},
		{"/api/scenarios?order=asc", []string{"User Login Flow", "Invoice", "Logout"}},
		{"/api/scenarios?sort=name", []string{"Invoice", "Logout", "User Login Flow"}},
		{"/api/scenarios?search=Login", []string{"Logout", "User Login Flow"}},
		{"/api/scenarios?search=login", []string{}},
		{"/api/scenarios?tag=@automated", []string{"Invoice"}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			var items []report.ScenarioItem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
			got := make([]string, 0, len(items))
			for _, item := range items {
				got = append(got, item.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScenarios_BadSort(t *testing.T) {
	rec := get(t, newTestServer(fixture()), "/api/scenarios?sort=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeatures(t *testing.T) {
	rec := get(t, newTestServer(fixture()), "/api/features")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []report.FeatureItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, report.FeatureItem{Name: "Login", Folder: "auth/login.feature", Tags: []string{"@smoke"}, Scenarios: 2, Steps: 4}, items[0])

	rec = get(t, newTestServer(fixture()), "/api/features?tag=@smoke")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Login", items[0].Name)

	// the feature filter looks at feature tags only; Invoice's own tag does not lift Billing
	rec = get(t, newTestServer(fixture()), "/api/features?tag=@automated")
	require.Equal(t, http.StatusOK, rec.Code)
	items = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Empty(t, items)
}

func TestDocument(t *testing.T) {
	rec := get(t, newTestServer(fixture()), "/api/document")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "{\n  \"Features\""))
}

func TestHistory_WithoutDatabase(t *testing.T) {
	rec := get(t, newTestServer(fixture()), "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"direction":"stable"`)

	assert.Equal(t, http.StatusBadRequest, get(t, newTestServer(fixture()), "/api/history?limit=0").Code)
}

func TestIndex(t *testing.T) {
	rec := get(t, newTestServer(fixture()), "/?search=Invoice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	html := rec.Body.String()
	assert.Contains(t, html, "Scenarios (1)")
	assert.Contains(t, html, `value="Invoice"`)
}

func TestSetDocument_Replaces(t *testing.T) {
	s := newTestServer(fixture())
	s.SetDocument(&models.Document{Features: []models.FeatureWrapper{}}, "empty")

	var summary analytics.Summary
	require.NoError(t, json.Unmarshal(get(t, s, "/api/summary").Body.Bytes(), &summary))
	assert.Equal(t, 0, summary.Aggregates.ScenarioCount)
	assert.Equal(t, "empty", summary.Source)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pickledFeatures.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Features":[]}`), 0644))

	s := newTestServer(&models.Document{Features: []models.FeatureWrapper{}})
	l := loader.New("", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, path, func() (*models.Document, error) { return l.LoadFile(path) })
	}()

	data, err := json.Marshal(fixture())
	require.NoError(t, err)

	// the watcher may not be registered yet, so keep rewriting
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, data, 0644)
		doc, _ := s.document()
		return len(doc.Features) == 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
