package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-classmatch/internal/api"
	"github.com/p-n-ai/pai-classmatch/internal/content"
	"github.com/p-n-ai/pai-classmatch/internal/materials"
	"github.com/p-n-ai/pai-classmatch/internal/progress"
	"github.com/p-n-ai/pai-classmatch/internal/recommend"
	"github.com/p-n-ai/pai-classmatch/internal/report"
	"github.com/p-n-ai/pai-classmatch/internal/similarity"
)

const greeting = "Listen to greetings and respond politely."

type stubChecker struct{ err error }

func (c stubChecker) HealthCheck(context.Context) error { return c.err }

func newTestServer(t *testing.T, opts ...api.Option) http.Handler {
	t.Helper()
	repo := materials.NewMemoryRepository(nil)
	repo.Put("target", content.Material{ID: "t1", UnitNumber: 1, LessonNumber: 1, MaterialType: "audio", Description: greeting})
	repo.Put("same", content.Material{ID: "s1", UnitNumber: 1, LessonNumber: 1, MaterialType: "audio", Description: greeting})
	repo.Put("far", content.Material{ID: "f1", UnitNumber: 6, LessonNumber: 9, MaterialType: "book",
		Description: "Analyse the structure of formal essays.", PrerequisiteIDs: []string{"x", "y"}})

	prog := progress.NewMemoryStore()
	prog.Record("student-1", "course-en", "p1")

	rec := recommend.NewRecommender(repo)
	return api.NewServer(repo, rec, prog, opts...).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		opts       []api.Option
		path       string
		wantStatus int
		wantBody   string
	}{
		{"healthz returns 200", nil, "/healthz", http.StatusOK, `{"status":"ok"}`},
		{"readyz without checkers", nil, "/readyz", http.StatusOK, `{"status":"ready"}`},
		{
			"readyz healthy",
			[]api.Option{api.WithHealthCheck("database", stubChecker{})},
			"/readyz", http.StatusOK, `{"status":"ready"}`,
		},
		{
			"readyz failing",
			[]api.Option{
				api.WithHealthCheck("database", stubChecker{}),
				api.WithHealthCheck("cache", stubChecker{err: errors.New("connection refused")}),
			},
			"/readyz", http.StatusServiceUnavailable,
			`{"failed":{"cache":"connection refused"},"status":"unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, tt.opts...), http.MethodGet, tt.path, "")

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	h := newTestServer(t)

	body := `{
		"contentA": [{"id": "a1", "skills": [{"id": "s1"}], "difficultyLevel": 3}],
		"contentB": [{"id": "b1", "skills": [{"id": "s1"}], "difficultyLevel": 3, "prerequisites": ["p1"]}],
		"studentId": "%s"
	}`

	tests := []struct {
		student    string
		wantPrereq float64
	}{
		{"student-1", 1},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run("student="+tt.student, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/similarity/compare", strings.Replace(body, "%s", tt.student, 1))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}

			var res similarity.Result
			if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if res.SkillOverlap != 1 {
				t.Errorf("SkillOverlap = %v, want 1", res.SkillOverlap)
			}
			if res.PrerequisiteCompatibility != tt.wantPrereq {
				t.Errorf("PrerequisiteCompatibility = %v, want %v", res.PrerequisiteCompatibility, tt.wantPrereq)
			}
		})
	}
}

func TestCompare_Errors(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", `{"contentA": [`, http.StatusBadRequest},
		{"missing id", `{"contentA": [{"title": "x"}], "contentB": [{"id": "b"}]}`, http.StatusBadRequest},
		{"empty sides", `{}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/similarity/compare", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				var e map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&e); err != nil || e["error"] == "" {
					t.Errorf("error body = %v, decode err %v", e, err)
				}
			}
		})
	}
}

func TestCompareClasses(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/v1/classes/target/compare/same", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res similarity.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.OverallSimilarity != 1 {
		t.Errorf("OverallSimilarity = %v, want 1", res.OverallSimilarity)
	}

	rec = do(t, h, http.MethodGet, "/v1/classes/target/compare/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing class status = %d, want 404", rec.Code)
	}
}

func TestAlternatives(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/classes/target/alternatives",
		`{"studentId": "student-1", "candidateClassIds": ["far", "same", "target", "ghost"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var ranking recommend.Ranking
	if err := json.NewDecoder(rec.Body).Decode(&ranking); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ranking.Matches) != 1 || ranking.Matches[0].ClassID != "same" {
		t.Errorf("Matches = %+v, want [same]", ranking.Matches)
	}
	if len(ranking.Skipped) != 1 || ranking.Skipped[0].ClassID != "ghost" {
		t.Errorf("Skipped = %+v, want [ghost]", ranking.Skipped)
	}
	if ranking.MinThreshold != recommend.DefaultMinThreshold {
		t.Errorf("MinThreshold = %v, want default", ranking.MinThreshold)
	}
}

func TestAlternatives_Threshold(t *testing.T) {
	tests := []struct {
		name        string
		opts        []api.Option
		body        string
		wantStatus  int
		wantMatches int
	}{
		{"request threshold zero keeps far", nil, `{"candidateClassIds": ["far", "same"], "minThreshold": 0}`, http.StatusOK, 2},
		{"server default", []api.Option{api.WithMinThreshold(0)}, `{"candidateClassIds": ["far", "same"]}`, http.StatusOK, 2},
		{"negative", nil, `{"candidateClassIds": ["same"], "minThreshold": -1}`, http.StatusBadRequest, 0},
		{"one", nil, `{"candidateClassIds": ["same"], "minThreshold": 1}`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, tt.opts...), http.MethodPost, "/v1/classes/target/alternatives", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var ranking recommend.Ranking
			if err := json.NewDecoder(rec.Body).Decode(&ranking); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(ranking.Matches) != tt.wantMatches {
				t.Errorf("len(Matches) = %d, want %d", len(ranking.Matches), tt.wantMatches)
			}
		})
	}
}

func TestAlternatives_UnknownTarget(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/classes/ghost/alternatives", `{"candidateClassIds": ["same"]}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAlternativesReport(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/classes/target/alternatives/report",
		`{"candidateClassIds": ["same", "ghost"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != report.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "alternatives-target.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(report.SheetAlternatives)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "same" {
		t.Errorf("rows = %v", rows)
	}
}
