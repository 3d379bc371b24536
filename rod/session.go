package rod

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/unscraper"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultTimeout bounds each session operation when SessionOptions leaves
// Timeout unset.
const DefaultTimeout = 15 * time.Second

// requestIdle is how long the network must stay quiet before WaitIdle
// returns.
const requestIdle = 500 * time.Millisecond

var (
	_ unscraper.Session = (*Session)(nil)
	_ unscraper.Element = (*Element)(nil)
)

// Session is a single stealth page in its own incognito context.
type Session struct {
	incognito *rod.Browser
	page      *rod.Page
	router    *rod.HijackRouter
	timeout   time.Duration
	width     int
	height    int

	release   func()
	closeOnce sync.Once
	closeErr  error
}

func newSession(ctx context.Context, browser *rod.Browser, opts unscraper.SessionOptions, release func()) (*Session, error) {
	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	s := &Session{
		incognito: incognito,
		timeout:   opts.Timeout,
		width:     opts.Width,
		height:    opts.Height,
		release:   func() {},
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}

	if err := s.setup(ctx, opts); err != nil {
		_ = s.Close()
		return nil, err
	}
	s.release = release
	return s, nil
}

func (s *Session) setup(ctx context.Context, opts unscraper.SessionOptions) error {
	if err := s.incognito.IgnoreCertErrors(true); err != nil {
		return fmt.Errorf("ignoring certificate errors: %w", err)
	}

	page, err := stealth.Page(s.incognito)
	if err != nil {
		return fmt.Errorf("creating page: %w", err)
	}
	s.page = page.Context(ctx)

	if err := (proto.PageSetBypassCSP{Enabled: true}).Call(s.page); err != nil {
		return fmt.Errorf("bypassing CSP: %w", err)
	}

	if opts.UserAgent != "" {
		if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			return fmt.Errorf("setting user agent: %w", err)
		}
	}

	if opts.Width > 0 && opts.Height > 0 {
		err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			return fmt.Errorf("setting viewport: %w", err)
		}
	}

	if len(opts.BlockRules) > 0 {
		rules := opts.BlockRules
		router := s.page.HijackRequests()
		err := router.Add("*", "", func(h *rod.Hijack) {
			if unscraper.Blocked(rules, string(h.Request.Type()), h.Request.URL().String()) {
				h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
			h.ContinueRequest(&proto.FetchContinueRequest{})
		})
		if err != nil {
			return fmt.Errorf("installing request filter: %w", err)
		}
		go router.Run()
		s.router = router
	}

	return nil
}

// Navigate loads url and waits for DOMContentLoaded.
func (s *Session) Navigate(url string) error {
	p := s.page.Timeout(s.timeout)
	defer p.CancelTimeout()

	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return err
	}
	wait()
	return p.GetContext().Err()
}

// Scroll dispatches a mouse wheel event at the center of the viewport.
func (s *Session) Scroll(dy float64) error {
	p := s.page.Timeout(s.timeout)
	defer p.CancelTimeout()

	return proto.InputDispatchMouseEvent{
		Type:   proto.InputDispatchMouseEventTypeMouseWheel,
		X:      float64(s.width) / 2,
		Y:      float64(s.height) / 2,
		DeltaY: dy,
	}.Call(p)
}

// WaitIdle waits until no requests have been in flight for a short quiet
// period, or until timeout elapses.
func (s *Session) WaitIdle(timeout time.Duration) error {
	p := s.page.Timeout(timeout)
	defer p.CancelTimeout()

	err := rod.Try(func() {
		p.WaitRequestIdle(requestIdle, nil, nil, nil)()
	})
	if err != nil {
		return err
	}
	return p.GetContext().Err()
}

// HTML returns the rendered document.
func (s *Session) HTML() (string, error) {
	p := s.page.Timeout(s.timeout)
	defer p.CancelTimeout()
	return p.HTML()
}

// URL returns the address currently loaded in the page.
func (s *Session) URL() (string, error) {
	p := s.page.Timeout(s.timeout)
	defer p.CancelTimeout()

	info, err := p.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// findTextJS returns the first element matching selector whose text matches
// the pattern and that has no matching descendant.
const findTextJS = `(selector, pattern, flags) => {
	const re = new RegExp(pattern, flags);
	const text = (el) => el.innerText || el.value || el.textContent || '';
	const matches = Array.from(document.querySelectorAll(selector)).filter((el) => re.test(text(el)));
	const set = new Set(matches);
	return matches.find((el) => !Array.from(el.querySelectorAll('*')).some((c) => set.has(c))) || null;
}`

// Find returns the first element matching sel within timeout. A selector
// with Text matches the innermost element whose text contains it, or
// matches it as a "/pattern/flags" regular expression.
func (s *Session) Find(sel unscraper.NextSelector, timeout time.Duration) (unscraper.Element, error) {
	p := s.page.Timeout(timeout)

	var (
		el  *rod.Element
		err error
	)
	if sel.Text == "" {
		el, err = p.Element(sel.CSS)
	} else {
		pattern, flags := textPattern(sel.Text)
		el, err = p.ElementByJS(rod.Eval(findTextJS, sel.CSS, pattern, flags))
	}
	if err != nil {
		p.CancelTimeout()
		return nil, err
	}
	return &Element{el: el.CancelTimeout(), timeout: s.timeout}, nil
}

// Close disposes the incognito context and its page. Close is safe to call
// multiple times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.router != nil {
			_ = s.router.Stop()
		}
		s.closeErr = s.incognito.Close()
		s.release()
	})
	return s.closeErr
}

// Element wraps a rod element located by Session.Find.
type Element struct {
	el      *rod.Element
	timeout time.Duration
}

// Click performs a native left click, scrolling the element into view.
func (e *Element) Click() error {
	el := e.el.Timeout(e.timeout)
	defer el.CancelTimeout()
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// ClickScript calls the element's click method from JavaScript.
func (e *Element) ClickScript() error {
	el := e.el.Timeout(e.timeout)
	defer el.CancelTimeout()
	_, err := el.Eval(`() => this.click()`)
	return err
}

// Href returns the element's href attribute, or "" when it has none.
func (e *Element) Href() (string, error) {
	el := e.el.Timeout(e.timeout)
	defer el.CancelTimeout()

	v, err := el.Attribute("href")
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// textPattern splits a "/pattern/flags" expression. Other text is matched
// literally.
func textPattern(text string) (pattern, flags string) {
	if i := strings.LastIndex(text, "/"); strings.HasPrefix(text, "/") && i > 0 {
		return text[1:i], text[i+1:]
	}
	return regexp.QuoteMeta(text), ""
}
