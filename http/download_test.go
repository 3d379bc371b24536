package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uhttp "github.com/fwojciec/unscraper/http"
	"github.com/fwojciec/unscraper/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postDownload(t *testing.T, format, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := uhttp.NewServer(&mock.Extractor{})
	req := httptest.NewRequest(http.MethodPost, "/download/"+format, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

const downloadBody = `{"rows":[{"title":"Widget","price":"$19.99"},{"title":"Gadget","price":"$5"}]}`

func TestServer_Download(t *testing.T) {
	t.Parallel()

	t.Run("csv normalizes prices", func(t *testing.T) {
		t.Parallel()

		rec := postDownload(t, "csv", downloadBody)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="scraping_results.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "Price ($),title\n19.99,Widget\n5,Gadget\n", rec.Body.String())
	})

	t.Run("json is indented", func(t *testing.T) {
		t.Parallel()

		rec := postDownload(t, "json", downloadBody)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "  {\n    \"Price ($)\": 19.99,")
	})

	t.Run("xml is supported", func(t *testing.T) {
		t.Parallel()

		rec := postDownload(t, "xml", downloadBody)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `<field name="title">Gadget</field>`)
	})

	t.Run("empty rows are valid", func(t *testing.T) {
		t.Parallel()

		csvRec := postDownload(t, "csv", `{"rows":[]}`)
		jsonRec := postDownload(t, "json", `{"rows":[]}`)

		assert.Equal(t, http.StatusOK, csvRec.Code)
		assert.Empty(t, csvRec.Body.String())
		assert.Equal(t, "[]\n", jsonRec.Body.String())
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		rec := postDownload(t, "csv", `{"rows":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid request body")
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		rec := postDownload(t, "table", downloadBody)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
