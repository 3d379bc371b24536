package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/fwojciec/unscraper"
	"github.com/fwojciec/unscraper/export"
	"github.com/go-chi/chi/v5"
)

// downloadFormats maps a downloadable format to its content type.
var downloadFormats = map[string]string{
	export.FormatCSV:  "text/csv",
	export.FormatJSON: "application/json",
	export.FormatXML:  "application/xml",
}

// handleDownload accepts {"rows": [...]} and returns the rows as an
// attachment in the format named by the path.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	contentType, ok := downloadFormats[format]
	if !ok {
		writeError(w, unscraper.Errorf(unscraper.EINVALID, "Unsupported download format %q", format))
		return
	}

	var body struct {
		Rows []unscraper.Record `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, unscraper.Errorf(unscraper.EINVALID, "Invalid request body: %v", err))
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, body.Rows); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="scraping_results.`+format+`"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
