package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/p-n-ai/pai-classmatch/internal/content"
	"github.com/p-n-ai/pai-classmatch/internal/recommend"
	"github.com/p-n-ai/pai-classmatch/internal/report"
)

type compareRequest struct {
	ContentA  []content.LearningContent `json:"contentA"`
	ContentB  []content.LearningContent `json:"contentB"`
	StudentID string                    `json:"studentId"`
}

type alternativesRequest struct {
	StudentID         string   `json:"studentId"`
	CandidateClassIDs []string `json:"candidateClassIds"`
	MinThreshold      *float64 `json:"minThreshold,omitempty"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rc, err := s.progress.ContextForStudent(r.Context(), req.StudentID)
	if err != nil {
		writeError(w, r, fmt.Errorf("loading student progress: %w", err))
		return
	}

	res, err := s.scorer.Compare(req.ContentA, req.ContentB, rc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompareClasses(w http.ResponseWriter, r *http.Request) {
	rc, err := s.progress.ContextForStudent(r.Context(), r.URL.Query().Get("studentId"))
	if err != nil {
		writeError(w, r, fmt.Errorf("loading student progress: %w", err))
		return
	}

	res, err := s.recommender.CompareClasses(r.Context(), r.PathValue("classID"), r.PathValue("otherID"), rc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAlternatives(w http.ResponseWriter, r *http.Request) {
	var req alternativesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ranking, err := s.rank(r.Context(), r.PathValue("classID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (s *Server) handleAlternativesReport(w http.ResponseWriter, r *http.Request) {
	var req alternativesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	classID := r.PathValue("classID")
	ranking, err := s.rank(r.Context(), classID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteAlternatives(&buf, ranking); err != nil {
		writeError(w, r, fmt.Errorf("rendering report: %w", err))
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="alternatives-%s.xlsx"`, sanitizeFilename(classID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// rank fetches the target class and ranks the requested candidates against it.
func (s *Server) rank(ctx context.Context, classID string, req alternativesRequest) (recommend.Ranking, error) {
	threshold := s.minThreshold
	if req.MinThreshold != nil {
		threshold = *req.MinThreshold
	}
	if threshold < 0 || threshold >= 1 {
		return recommend.Ranking{}, fmt.Errorf("%w: minThreshold must be in [0, 1), got %v", errBadRequest, threshold)
	}

	target, err := s.repo.ContentForClass(ctx, classID)
	if err != nil {
		return recommend.Ranking{}, fmt.Errorf("fetching class %s: %w", classID, err)
	}

	rc, err := s.progress.ContextForStudent(ctx, req.StudentID)
	if err != nil {
		return recommend.Ranking{}, fmt.Errorf("loading student progress: %w", err)
	}

	candidates := make([]string, 0, len(req.CandidateClassIDs))
	for _, id := range req.CandidateClassIDs {
		if id = strings.TrimSpace(id); id != "" && id != classID {
			candidates = append(candidates, id)
		}
	}

	return s.recommender.FindSimilarContentClasses(ctx, target, candidates, rc, recommend.WithMinThreshold(threshold))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
