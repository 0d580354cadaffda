package render

import (
	"context"
	"errors"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// PlaywrightOptions configures the headless Chromium used for scraping.
type PlaywrightOptions struct {
	Headless          bool
	NavigationTimeout time.Duration
	ActionTimeout     time.Duration
	UserAgent         string
	Locale            string
}

// PlaywrightLauncher starts a dedicated Playwright driver and Chromium per
// session, so concurrent scrapes never share browser state.
type PlaywrightLauncher struct {
	opts PlaywrightOptions
}

// NewPlaywrightLauncher creates a launcher, filling zero timeouts with defaults.
func NewPlaywrightLauncher(opts PlaywrightOptions) *PlaywrightLauncher {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 60 * time.Second
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 5 * time.Second
	}
	return &PlaywrightLauncher{opts: opts}
}

func (l *PlaywrightLauncher) Name() string { return "playwright" }

// Open launches the driver, browser, context and page. Anything acquired
// before a failure is released before returning.
func (l *PlaywrightLauncher) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, eris.Wrap(err, "playwright: start driver")
	}
	s := &playwrightSession{pw: pw, opts: l.opts}

	s.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
	})
	if err != nil {
		_ = s.Close()
		return nil, eris.Wrap(err, "playwright: launch chromium")
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if l.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(l.opts.UserAgent)
	}
	if l.opts.Locale != "" {
		ctxOpts.Locale = playwright.String(l.opts.Locale)
	}
	s.bctx, err = s.browser.NewContext(ctxOpts)
	if err != nil {
		_ = s.Close()
		return nil, eris.Wrap(err, "playwright: new context")
	}

	s.page, err = s.bctx.NewPage()
	if err != nil {
		_ = s.Close()
		return nil, eris.Wrap(err, "playwright: new page")
	}
	return s, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
	opts    PlaywrightOptions
}

func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(s.opts.NavigationTimeout.Milliseconds())),
	})
	if err != nil {
		return eris.Wrapf(err, "playwright: goto %s", url)
	}
	if resp != nil && resp.Status() >= 400 {
		return eris.Errorf("playwright: goto %s: status %d", url, resp.Status())
	}
	return nil
}

func (s *playwrightSession) Locate(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handles, err := s.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, eris.Wrapf(err, "playwright: query %q", selector)
	}
	return wrapHandles(handles, s.opts.ActionTimeout), nil
}

func (s *playwrightSession) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := s.page.Content()
	return content, eris.Wrap(err, "playwright: page content")
}

func (s *playwrightSession) Wait(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// Close releases page, context, browser and driver in reverse order of
// acquisition. Every step runs even if an earlier one fails.
func (s *playwrightSession) Close() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, eris.Wrap(err, "playwright: close page"))
		}
	}
	if s.bctx != nil {
		if err := s.bctx.Close(); err != nil {
			errs = append(errs, eris.Wrap(err, "playwright: close context"))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, eris.Wrap(err, "playwright: close browser"))
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, eris.Wrap(err, "playwright: stop driver"))
		}
	}
	if len(errs) > 0 {
		zap.L().Debug("playwright: session close reported errors", zap.Int("errors", len(errs)))
	}
	return errors.Join(errs...)
}

type playwrightElement struct {
	h       playwright.ElementHandle
	timeout time.Duration
}

func wrapHandles(handles []playwright.ElementHandle, timeout time.Duration) []Element {
	out := make([]Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, &playwrightElement{h: h, timeout: timeout})
	}
	return out
}

func (e *playwrightElement) Locate(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handles, err := e.h.QuerySelectorAll(selector)
	if err != nil {
		return nil, eris.Wrapf(err, "playwright: query %q", selector)
	}
	return wrapHandles(handles, e.timeout), nil
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := e.h.InnerText()
	return text, eris.Wrap(err, "playwright: inner text")
}

// Attribute treats an empty value as absent; the driver reports a missing
// attribute as "".
func (e *playwrightElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, err := e.h.GetAttribute(name)
	if err != nil {
		return "", false, eris.Wrapf(err, "playwright: attribute %s", name)
	}
	return v, v != "", nil
}

func (e *playwrightElement) Visible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := e.h.IsVisible()
	return ok, eris.Wrap(err, "playwright: is visible")
}

func (e *playwrightElement) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := e.h.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(float64(e.timeout.Milliseconds())),
	})
	return eris.Wrap(err, "playwright: click")
}

func (e *playwrightElement) Scroll(ctx context.Context, deltaY float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.h.Evaluate(`(el, dy) => el.scrollBy(0, dy)`, deltaY)
	return eris.Wrap(err, "playwright: scroll")
}
