package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/vendor-intake/internal/intake"
	"github.com/sells-group/vendor-intake/internal/model"
	"github.com/sells-group/vendor-intake/internal/store"
)

type importTextRequest struct {
	Text          string `json:"text"`
	ExpectedCount *int   `json:"expected_count"`
}

type importRowsRequest struct {
	Rows          []model.Row `json:"rows"`
	ExpectedCount *int        `json:"expected_count"`
}

type commitRequest struct {
	Session       model.ImportSession     `json:"session"`
	Candidates    []model.VendorCandidate `json:"candidates"`
	MinConfidence float64                 `json:"min_confidence"`
}

type commitResponse struct {
	SessionID string                 `json:"session_id"`
	Outcomes  []intake.CommitOutcome `json:"outcomes"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleImportText(w http.ResponseWriter, r *http.Request) {
	var req importTextRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.intake.ImportText(req.Text, req.ExpectedCount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleImportRows(w http.ResponseWriter, r *http.Request) {
	var req importRowsRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.intake.ImportRows(req.Rows, req.ExpectedCount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleImportFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, uploadError(err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, badRequest("file is required"))
		return
	}
	defer file.Close() //nolint:errcheck

	expected, err := parseExpected(r.FormValue("expected_count"))
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.intake.ImportUpload(r.Context(), header.Filename, file, expected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.MinConfidence < 0 || req.MinConfidence > 1 {
		writeError(w, badRequest("min_confidence must be between 0 and 1"))
		return
	}
	if req.Session.SourceKind == "" {
		req.Session.SourceKind = model.SourceFreeText
	}
	if !req.Session.SourceKind.Valid() {
		writeError(w, badRequest("unknown session source_kind "+string(req.Session.SourceKind)))
		return
	}

	result := &model.ImportResult{Session: req.Session, Candidates: req.Candidates}
	outcomes, err := s.intake.Commit(r.Context(), result, req.MinConfidence)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if intake.Failed(outcomes) {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, commitResponse{SessionID: result.Session.ID, Outcomes: outcomes})
}

func (s *Server) handleGetVendor(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, intake.ErrNoStore)
		return
	}
	v, err := s.store.GetVendor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, intake.ErrNoStore)
		return
	}
	sess, err := s.store.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleListVendors(w http.ResponseWriter, r *http.Request) {
	s.listVendors(w, r, r.URL.Query().Get("session_id"))
}

func (s *Server) handleListSessionVendors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.store != nil {
		if _, err := s.store.GetSession(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
	}
	s.listVendors(w, r, id)
}

func (s *Server) listVendors(w http.ResponseWriter, r *http.Request, sessionID string) {
	if s.store == nil {
		writeError(w, intake.ErrNoStore)
		return
	}

	filter := store.VendorFilter{SessionID: sessionID}
	var err error
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		writeError(w, err)
		return
	}

	vendors, err := s.store.ListVendors(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vendors": vendors, "count": len(vendors)})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}

// uploadError classifies a multipart parse failure. Oversized bodies keep
// their *http.MaxBytesError so they map to 413.
func uploadError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}
	if strings.Contains(err.Error(), "request body too large") {
		return &http.MaxBytesError{}
	}
	return badRequest("invalid multipart form: " + err.Error())
}

func parseExpected(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, badRequest("expected_count must be an integer")
	}
	return &n, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest(key + " must be a non-negative integer")
	}
	return n, nil
}
