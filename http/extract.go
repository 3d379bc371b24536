package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fwojciec/unscraper"
)

// extractResponse is the success body of POST /extract.
type extractResponse struct {
	Rows         []unscraper.Record `json:"rows"`
	Pages        int                `json:"pages"`
	Chunks       int                `json:"chunks"`
	FailedChunks int                `json:"failed_chunks"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// handleExtract reads the url, api_key, fields and page_count form values
// and runs an extraction. A missing page_count means one page.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	req, err := parseExtractRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.extractor.Run(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	rows := result.Rows
	if rows == nil {
		rows = []unscraper.Record{}
	}
	writeJSON(w, http.StatusOK, extractResponse{
		Rows:         rows,
		Pages:        result.Pages,
		Chunks:       result.Chunks,
		FailedChunks: len(result.Failures),
		Warnings:     failureMessages(result.Failures),
	})
}

func failureMessages(failures []unscraper.ChunkFailure) []string {
	var msgs []string
	for _, f := range failures {
		if f.Err == nil {
			continue
		}
		msgs = append(msgs, fmt.Sprintf("chunk %d: %s", f.Index, unscraper.ErrorMessage(f.Err)))
	}
	return msgs
}

func parseExtractRequest(r *http.Request) (unscraper.Request, error) {
	if err := r.ParseForm(); err != nil {
		return unscraper.Request{}, unscraper.Errorf(unscraper.EINVALID, "Invalid form data: %v", err)
	}

	req := unscraper.Request{
		URL:       strings.TrimSpace(r.FormValue("url")),
		APIKey:    strings.TrimSpace(r.FormValue("api_key")),
		Fields:    unscraper.ParseFields(r.FormValue("fields")),
		PageCount: 1,
	}
	if v := r.FormValue("page_count"); v != "" {
		n, err := unscraper.ParsePageCount(v)
		if err != nil {
			return unscraper.Request{}, err
		}
		req.PageCount = n
	}
	return req, nil
}
