package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"github.com/KaramelBytes/attrition-cli/internal/analysis"
	"github.com/KaramelBytes/attrition-cli/internal/submission"
)

type submissionResponse struct {
	Submission *submission.Record `json:"submission"`
	Report     *analysis.Report   `json:"report"`
}

type dimensionsResponse struct {
	Dimensions []analysis.Dimension `json:"dimensions"`
	Selection  analysis.Selection   `json:"selection"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// createSubmission accepts multipart fields name, email, phone, company and file.
func (s *Server) createSubmission(w http.ResponseWriter, r *http.Request) {
	limit := s.maxUpload + formOverhead
	if r.ContentLength > limit {
		s.fail(w, r, &http.MaxBytesError{Limit: s.maxUpload})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.fail(w, r, &http.MaxBytesError{Limit: s.maxUpload})
			return
		}
		s.fail(w, r, newAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Expected a multipart form upload.", err.Error()))
		return
	}

	form := submission.Form{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Phone:   r.FormValue("phone"),
		Company: r.FormValue("company"),
	}
	var data []byte
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		s.fail(w, r, newAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Could not read the uploaded file.", err.Error()))
		return
	default:
		defer file.Close()
		form.Filename = header.Filename
		if header.Size > s.maxUpload {
			s.fail(w, r, &http.MaxBytesError{Limit: s.maxUpload})
			return
		}
		data, err = io.ReadAll(file)
		if err != nil {
			s.fail(w, r, err)
			return
		}
	}

	rec, report, err := s.session.Submit(s.store, form, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, submissionResponse{Submission: rec, Report: report})
}

func (s *Server) listSubmissions(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []*submission.Record{}
	}
	render.JSON(w, r, recs)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	report, err := s.session.Report()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

func (s *Server) dashboardHTML(w http.ResponseWriter, r *http.Request) {
	report, err := s.session.Report()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(report.HTML())
}

func (s *Server) dimensions(w http.ResponseWriter, r *http.Request) {
	dims, err := s.session.Dimensions()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sel, err := s.session.Selection()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, dimensionsResponse{Dimensions: dims, Selection: sel})
}

func (s *Server) applyFilters(w http.ResponseWriter, r *http.Request) {
	var sel analysis.Selection
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&sel); err != nil {
		s.fail(w, r, newAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Body must be a JSON object of dimension selections.", err.Error()))
		return
	}
	report, err := s.session.Apply(sel)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, report)
}
