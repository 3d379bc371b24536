// Package harvest collects the text of paginated pages through a headless
// browser session.
package harvest

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/fwojciec/unscraper"
	"github.com/fwojciec/unscraper/bloom"
)

// Harvester defaults.
const (
	DefaultScrollSteps       = 30
	DefaultScrollDelta       = 2000
	DefaultScrollPause       = 150 * time.Millisecond
	DefaultIdleTimeout       = 10 * time.Second
	DefaultProbeTimeout      = 1 * time.Second
	DefaultSettleDelay       = 2 * time.Second
	DefaultNavigationTimeout = 15 * time.Second
	DefaultViewportWidth     = 1920
	DefaultViewportHeight    = 1080
)

// DefaultNavigationRetryDelays are the waits between attempts to load the
// first page.
var DefaultNavigationRetryDelays = []time.Duration{1 * time.Second, 2 * time.Second}

// DefaultUserAgents is the pool a session user agent is drawn from.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Ensure Harvester implements unscraper.Harvester at compile time.
var _ unscraper.Harvester = (*Harvester)(nil)

// Harvester drives one browser session per call through the states
// Navigating, Scrolling, Settling, LocatingNext and Clicking until it is
// Done or Stalled.
type Harvester struct {
	browser   unscraper.Browser
	cleaner   unscraper.Cleaner
	converter unscraper.Converter

	userAgents   []string
	selectors    []unscraper.NextSelector
	fallback     unscraper.NextSelector
	blockRules   []unscraper.BlockRule
	scrollSteps  int
	scrollDelta  float64
	scrollPause  time.Duration
	idleTimeout  time.Duration
	probeTimeout time.Duration
	settleDelay  time.Duration
	navTimeout   time.Duration
	navRetries   []time.Duration
	sleep        SleepFunc
	logger       *slog.Logger
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithUserAgents replaces DefaultUserAgents.
func WithUserAgents(agents ...string) Option {
	return func(h *Harvester) {
		h.userAgents = agents
	}
}

// WithNextSelectors replaces unscraper.DefaultNextSelectors.
func WithNextSelectors(selectors ...unscraper.NextSelector) Option {
	return func(h *Harvester) {
		h.selectors = selectors
	}
}

// WithBlockRules replaces unscraper.DefaultBlockRules.
func WithBlockRules(rules ...unscraper.BlockRule) Option {
	return func(h *Harvester) {
		h.blockRules = rules
	}
}

// WithScroll sets the number of wheel events per page, their magnitude and
// the pause between them.
func WithScroll(steps int, delta float64, pause time.Duration) Option {
	return func(h *Harvester) {
		h.scrollSteps = steps
		h.scrollDelta = delta
		h.scrollPause = pause
	}
}

// WithSettleDelay sets how long to wait after clicking a next control.
func WithSettleDelay(d time.Duration) Option {
	return func(h *Harvester) {
		h.settleDelay = d
	}
}

// WithNavigationTimeout sets the session's default operation timeout.
func WithNavigationTimeout(d time.Duration) Option {
	return func(h *Harvester) {
		h.navTimeout = d
	}
}

// WithNavigationRetries sets the backoff delays between attempts to load the
// first page. No delays means a single attempt.
func WithNavigationRetries(delays ...time.Duration) Option {
	return func(h *Harvester) {
		h.navRetries = delays
	}
}

// WithSleep replaces the timer based wait. Tests use it to skip delays.
func WithSleep(fn SleepFunc) Option {
	return func(h *Harvester) {
		h.sleep = fn
	}
}

// WithLogger sets the logger for pagination events.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harvester) {
		h.logger = logger
	}
}

// NewHarvester creates a new Harvester.
func NewHarvester(browser unscraper.Browser, cleaner unscraper.Cleaner, converter unscraper.Converter, opts ...Option) *Harvester {
	h := &Harvester{
		browser:      browser,
		cleaner:      cleaner,
		converter:    converter,
		userAgents:   DefaultUserAgents,
		selectors:    unscraper.DefaultNextSelectors,
		fallback:     unscraper.NextTextFallback,
		blockRules:   unscraper.DefaultBlockRules,
		scrollSteps:  DefaultScrollSteps,
		scrollDelta:  DefaultScrollDelta,
		scrollPause:  DefaultScrollPause,
		idleTimeout:  DefaultIdleTimeout,
		probeTimeout: DefaultProbeTimeout,
		settleDelay:  DefaultSettleDelay,
		navTimeout:   DefaultNavigationTimeout,
		navRetries:   DefaultNavigationRetryDelays,
		sleep:        sleepContext,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Harvest collects up to pageCount pages starting at url. Only failures on
// the first page are errors; later failures end pagination early.
func (h *Harvester) Harvest(ctx context.Context, url string, pageCount int) (*unscraper.Document, error) {
	if pageCount < 1 {
		pageCount = 1
	}

	sess, err := h.browser.NewSession(ctx, unscraper.SessionOptions{
		UserAgent:  h.userAgent(),
		Width:      DefaultViewportWidth,
		Height:     DefaultViewportHeight,
		Timeout:    h.navTimeout,
		BlockRules: h.blockRules,
	})
	if err != nil {
		return nil, unscraper.Errorf(unscraper.EFETCH, "failed to open browser session: %s", unscraper.ErrorMessage(err))
	}
	defer func() {
		if err := sess.Close(); err != nil {
			h.logger.Warn("closing session", "url", url, "err", err)
		}
	}()

	r := &run{
		Harvester: h,
		ctx:       ctx,
		sess:      sess,
		startURL:  url,
		pageCount: pageCount,
		seen:      bloom.NewFilter(uint(unscraper.MaxPageCount*4), 0.0001),
	}
	state := Navigating
	for !state.Terminal() {
		next := r.step(state)
		h.logger.Debug("harvest transition", "url", url, "from", state, "to", next, "pages", len(r.pages))
		state = next
	}
	if r.err != nil {
		return nil, r.err
	}

	text := CleanText(strings.Join(r.pages, "\n"))
	return &unscraper.Document{
		URL:   url,
		Text:  text,
		Pages: len(r.pages),
		Hash:  bloom.Fingerprint(text),
	}, nil
}

func (h *Harvester) userAgent() string {
	if len(h.userAgents) == 0 {
		return ""
	}
	return h.userAgents[rand.IntN(len(h.userAgents))]
}

// run is the mutable state of one Harvest call.
type run struct {
	*Harvester
	ctx       context.Context
	sess      unscraper.Session
	startURL  string
	pageCount int

	pages   []string
	seen    *bloom.Filter
	lastURL string
	next    unscraper.Element
	err     error
}

func (r *run) step(s State) State {
	if err := r.ctx.Err(); err != nil {
		r.err = err
		return Done
	}
	switch s {
	case Navigating:
		return r.navigate()
	case Scrolling:
		return r.scroll()
	case Settling:
		return r.settle()
	case LocatingNext:
		return r.locateNext()
	case Clicking:
		return r.click()
	}
	return Done
}

// navigate loads the first page, retrying with backoff.
func (r *run) navigate() State {
	var err error
	for attempt := 0; ; attempt++ {
		if err = r.sess.Navigate(r.startURL); err == nil {
			return Scrolling
		}
		if attempt >= len(r.navRetries) {
			break
		}
		r.logger.Info("retrying navigation", "url", r.startURL, "attempt", attempt+2, "err", err)
		if err := r.sleep(r.ctx, r.navRetries[attempt]); err != nil {
			r.err = err
			return Done
		}
	}
	r.err = unscraper.Errorf(unscraper.EFETCH, "failed to load %s: %s", r.startURL, unscraper.ErrorMessage(err))
	return Done
}

func (r *run) scroll() State {
	for i := 0; i < r.scrollSteps; i++ {
		if err := r.sess.Scroll(r.scrollDelta); err != nil {
			r.logger.Debug("scroll failed", "url", r.startURL, "err", err)
			break
		}
		if err := r.sleep(r.ctx, r.scrollPause); err != nil {
			r.err = err
			return Done
		}
	}
	return Settling
}

// settle waits for network idle and captures the page text.
func (r *run) settle() State {
	if err := r.sess.WaitIdle(r.idleTimeout); err != nil {
		r.logger.Debug("network idle wait ended early", "url", r.startURL, "err", err)
	}

	text, err := r.capture()
	if err != nil {
		if len(r.pages) == 0 {
			r.err = unscraper.Errorf(unscraper.EFETCH, "failed to read %s: %s", r.startURL, unscraper.ErrorMessage(err))
			return Done
		}
		r.logger.Warn("capturing page failed", "url", r.startURL, "page", len(r.pages)+1, "err", err)
		return Done
	}

	// Blank pages carry no fingerprint worth comparing; the URL check still
	// catches a control that does nothing.
	if strings.TrimSpace(text) != "" && r.seen.SeenBefore(text) {
		r.logger.Info("page repeats earlier content", "url", r.startURL, "page", len(r.pages)+1)
		return Stalled
	}
	r.pages = append(r.pages, text)
	if len(r.pages) >= r.pageCount {
		return Done
	}

	u, err := r.sess.URL()
	if err != nil {
		r.logger.Warn("reading page URL failed", "url", r.startURL, "err", err)
		return Done
	}
	r.lastURL = u
	return LocatingNext
}

func (r *run) capture() (string, error) {
	html, err := r.sess.HTML()
	if err != nil {
		return "", err
	}
	cleaned, err := r.cleaner.Clean(html)
	if err != nil {
		return "", err
	}
	return r.converter.Convert(cleaned)
}

// locateNext probes the selector list in order, then the text fallback.
func (r *run) locateNext() State {
	candidates := append(append([]unscraper.NextSelector(nil), r.selectors...), r.fallback)
	for _, sel := range candidates {
		if err := r.ctx.Err(); err != nil {
			r.err = err
			return Done
		}
		el, err := r.sess.Find(sel, r.probeTimeout)
		if err != nil || el == nil {
			continue
		}
		r.logger.Debug("next control found", "url", r.startURL, "selector", sel.String())
		r.next = el
		return Clicking
	}
	r.logger.Info("no next control found", "url", r.startURL, "pages", len(r.pages))
	return Done
}

// click tries a native click, a scripted click and finally navigation to
// the control's href. An unchanged URL after any page but the first means
// pagination has stalled.
func (r *run) click() State {
	el := r.next
	r.next = nil

	if !r.activate(el) {
		r.logger.Info("next control could not be activated", "url", r.startURL, "pages", len(r.pages))
		return Done
	}

	if err := r.sleep(r.ctx, r.settleDelay); err != nil {
		r.err = err
		return Done
	}

	u, err := r.sess.URL()
	if err != nil {
		r.logger.Warn("reading page URL failed", "url", r.startURL, "err", err)
		return Done
	}
	if u == r.lastURL && len(r.pages) > 1 {
		r.logger.Info("pagination stalled", "url", u, "pages", len(r.pages))
		return Stalled
	}
	return Scrolling
}

func (r *run) activate(el unscraper.Element) bool {
	err := el.Click()
	if err == nil {
		return true
	}
	r.logger.Debug("native click failed", "err", err)

	if err = el.ClickScript(); err == nil {
		return true
	}
	r.logger.Debug("script click failed", "err", err)

	href, err := el.Href()
	if err != nil {
		r.logger.Debug("reading href failed", "err", err)
		return false
	}
	target := ResolveHref(r.startURL, href)
	if target == "" {
		return false
	}
	if err := r.sess.Navigate(target); err != nil {
		r.logger.Debug("href navigation failed", "href", target, "err", err)
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
