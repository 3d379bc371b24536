// Package rod implements unscraper.Browser with go-rod driving headless
// Chrome.
package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/unscraper"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxSessions is the default number of sessions before browser
// recycling.
const DefaultMaxSessions = 50

// Ensure BrowserManager implements unscraper.Browser at compile time.
var _ unscraper.Browser = (*BrowserManager)(nil)

// BrowserManager shares one Chrome process across isolated sessions and
// recycles it after a number of sessions to bound memory growth. Chrome's
// baseline memory never returns to its initial level, even with proper page
// cleanup. The process is only replaced while no session is open.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser     *rod.Browser
	launcher    *launcher.Launcher
	sessions    int64
	active      int64
	maxSessions int64
	mu          sync.Mutex
	closed      atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxSessions sets the number of sessions before the browser is
// recycled. Defaults to DefaultMaxSessions.
func WithMaxSessions(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxSessions = n
	}
}

// NewBrowserManager launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxSessions: DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(bm)
	}

	if err := bm.launchBrowser(); err != nil {
		return nil, err
	}

	return bm, nil
}

// NewSession opens an incognito context with a stealth page configured by
// opts. Session operations are bound to ctx.
func (bm *BrowserManager) NewSession(ctx context.Context, opts unscraper.SessionOptions) (unscraper.Session, error) {
	if bm.closed.Load() {
		return nil, errors.New("browser manager is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bm.mu.Lock()
	if bm.sessions >= bm.maxSessions && bm.active == 0 {
		bm.recycleBrowser()
	}
	browser := bm.browser
	bm.sessions++
	bm.active++
	bm.mu.Unlock()

	sess, err := newSession(ctx, browser, opts, bm.release)
	if err != nil {
		bm.release()
		return nil, err
	}
	return sess, nil
}

func (bm *BrowserManager) release() {
	bm.mu.Lock()
	bm.active--
	bm.mu.Unlock()
}

// Close releases browser resources. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	return bm.closeBrowser()
}

// launchBrowser starts a new browser instance with stability flags.
func (bm *BrowserManager) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Set("disable-blink-features", "AutomationControlled").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = lnchr
	return nil
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycleBrowser starts a fresh browser and closes the old one.
// If launching the new browser fails, the old browser is kept.
// Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	oldBrowser := bm.browser
	oldLauncher := bm.launcher
	bm.browser = nil
	bm.launcher = nil

	if err := bm.launchBrowser(); err != nil {
		bm.browser = oldBrowser
		bm.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	bm.sessions = 0
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
