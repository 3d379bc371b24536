//go:build integration

package harvest_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/unscraper/goquery"
	"github.com/fwojciec/unscraper/harvest"
	"github.com/fwojciec/unscraper/htmltomarkdown"
	"github.com/fwojciec/unscraper/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingSite() *httptest.Server {
	mux := http.NewServeMux()
	for page := 1; page <= 3; page++ {
		path := "/list"
		if page > 1 {
			path = fmt.Sprintf("/list/%d", page)
		}
		next := ""
		if page < 3 {
			next = fmt.Sprintf(`<a rel="next" href="/list/%d">Next</a>`, page+1)
		}
		body := fmt.Sprintf(`<html><body><nav>Menu</nav>
<div class="item">Listing %d-A $%d.00</div>
<div class="item">Listing %d-B $%d.50</div>
%s</body></html>`, page, page*10, page, page*10, next)
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, body)
		})
	}
	return httptest.NewServer(mux)
}

func TestHarvester_Integration_FollowsPagination(t *testing.T) {
	t.Parallel()

	server := listingSite()
	defer server.Close()

	browser, err := rod.NewBrowserManager()
	require.NoError(t, err)
	defer browser.Close()

	h := harvest.NewHarvester(browser, goquery.NewCleaner(), htmltomarkdown.NewConverter(),
		harvest.WithScroll(2, 500, 50*time.Millisecond),
		harvest.WithSettleDelay(500*time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	doc, err := h.Harvest(ctx, server.URL+"/list", 5)

	require.NoError(t, err)
	assert.Equal(t, 3, doc.Pages)
	assert.Contains(t, doc.Text, "Listing 1-A $10.00")
	assert.Contains(t, doc.Text, "Listing 3-B $30.50")
	assert.NotContains(t, doc.Text, "Menu")
	assert.NotEmpty(t, doc.Hash)
}
