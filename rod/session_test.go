//go:build integration

package rod_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/unscraper"
	"github.com/fwojciec/unscraper/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *rod.BrowserManager {
	t.Helper()
	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	return manager
}

func newSession(t *testing.T, opts unscraper.SessionOptions) unscraper.Session {
	t.Helper()
	sess, err := newManager(t).NewSession(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestSession_NavigateAndReadHTML(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1>Rendered</h1><script>document.body.insertAdjacentHTML('beforeend','<p>from js</p>')</script></body></html>`)
	}))
	defer server.Close()

	sess := newSession(t, unscraper.SessionOptions{Width: 1280, Height: 800, Timeout: 10 * time.Second})

	require.NoError(t, sess.Navigate(server.URL))
	require.NoError(t, sess.WaitIdle(5*time.Second))

	html, err := sess.HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "Rendered")
	assert.Contains(t, html, "from js")

	u, err := sess.URL()
	require.NoError(t, err)
	assert.Contains(t, u, server.URL)
}

func TestSession_SetsUserAgent(t *testing.T) {
	t.Parallel()

	var got atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.UserAgent())
		fmt.Fprint(w, `<html><body>ok</body></html>`)
	}))
	defer server.Close()

	sess := newSession(t, unscraper.SessionOptions{UserAgent: "unscraper-test/1.0"})
	require.NoError(t, sess.Navigate(server.URL))

	assert.Equal(t, "unscraper-test/1.0", got.Load())
}

func TestSession_BlocksMatchingRequests(t *testing.T) {
	t.Parallel()

	var imageHits, scriptHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><img src="/photo.png"><script src="/analytics.js"></script><p>page</p></body></html>`)
	})
	mux.HandleFunc("/photo.png", func(w http.ResponseWriter, r *http.Request) {
		imageHits.Add(1)
	})
	mux.HandleFunc("/analytics.js", func(w http.ResponseWriter, r *http.Request) {
		scriptHits.Add(1)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sess := newSession(t, unscraper.SessionOptions{BlockRules: unscraper.DefaultBlockRules})
	require.NoError(t, sess.Navigate(server.URL))
	require.NoError(t, sess.WaitIdle(5*time.Second))

	assert.Zero(t, imageHits.Load())
	assert.Zero(t, scriptHits.Load())
}

func TestSession_FindAndClickNext(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>first</p><div class="pager-wrap"><span>Page 1</span><a class="pager" href="/page/2">NEXT &raquo;</a></div></body></html>`)
	})
	mux.HandleFunc("/page/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>second</p></body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sess := newSession(t, unscraper.SessionOptions{Width: 1280, Height: 800})
	require.NoError(t, sess.Navigate(server.URL))

	el, err := sess.Find(unscraper.NextTextFallback, 2*time.Second)
	require.NoError(t, err)

	href, err := el.Href()
	require.NoError(t, err)
	assert.Equal(t, "/page/2", href)

	require.NoError(t, el.Click())
	require.NoError(t, sess.WaitIdle(5*time.Second))

	html, err := sess.HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "second")
}

func TestSession_FindMissingElementTimesOut(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>no pager here</body></html>`)
	}))
	defer server.Close()

	sess := newSession(t, unscraper.SessionOptions{})
	require.NoError(t, sess.Navigate(server.URL))

	_, err := sess.Find(unscraper.NextSelector{CSS: "a.next"}, 300*time.Millisecond)
	assert.Error(t, err)
}
