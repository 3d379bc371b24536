package mock

import (
	"context"
	"time"

	"github.com/fwojciec/unscraper"
)

var _ unscraper.Browser = (*Browser)(nil)

// Browser is a mock implementation of unscraper.Browser.
type Browser struct {
	NewSessionFn func(ctx context.Context, opts unscraper.SessionOptions) (unscraper.Session, error)
}

func (b *Browser) NewSession(ctx context.Context, opts unscraper.SessionOptions) (unscraper.Session, error) {
	return b.NewSessionFn(ctx, opts)
}

var _ unscraper.Session = (*Session)(nil)

// Session is a mock implementation of unscraper.Session.
type Session struct {
	NavigateFn func(url string) error
	ScrollFn   func(dy float64) error
	WaitIdleFn func(timeout time.Duration) error
	HTMLFn     func() (string, error)
	URLFn      func() (string, error)
	FindFn     func(sel unscraper.NextSelector, timeout time.Duration) (unscraper.Element, error)
	CloseFn    func() error
}

func (s *Session) Navigate(url string) error {
	return s.NavigateFn(url)
}

func (s *Session) Scroll(dy float64) error {
	return s.ScrollFn(dy)
}

func (s *Session) WaitIdle(timeout time.Duration) error {
	return s.WaitIdleFn(timeout)
}

func (s *Session) HTML() (string, error) {
	return s.HTMLFn()
}

func (s *Session) URL() (string, error) {
	return s.URLFn()
}

func (s *Session) Find(sel unscraper.NextSelector, timeout time.Duration) (unscraper.Element, error) {
	return s.FindFn(sel, timeout)
}

func (s *Session) Close() error {
	return s.CloseFn()
}

var _ unscraper.Element = (*Element)(nil)

// Element is a mock implementation of unscraper.Element.
type Element struct {
	ClickFn       func() error
	ClickScriptFn func() error
	HrefFn        func() (string, error)
}

func (e *Element) Click() error {
	return e.ClickFn()
}

func (e *Element) ClickScript() error {
	return e.ClickScriptFn()
}

func (e *Element) Href() (string, error) {
	return e.HrefFn()
}
