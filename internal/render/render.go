// Package render abstracts the browser that loads and exposes review pages.
// Descriptors passed to Locate are CSS selectors.
package render

import (
	"context"
	"time"
)

// Element is a handle to one rendered DOM subtree.
type Element interface {
	// Locate returns the descendants matching selector, in document order.
	Locate(ctx context.Context, selector string) ([]Element, error)
	// Text returns the visible text with block boundaries as newlines.
	Text(ctx context.Context) (string, error)
	// Attribute returns the attribute value and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)
	Visible(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
	// Scroll scrolls the element's own viewport by deltaY pixels.
	Scroll(ctx context.Context, deltaY float64) error
}

// Session is one exclusively-owned page in a browser.
type Session interface {
	// Navigate loads url and returns once the network is idle.
	Navigate(ctx context.Context, url string) error
	Locate(ctx context.Context, selector string) ([]Element, error)
	// Content returns the current page HTML.
	Content(ctx context.Context) (string, error)
	Wait(ctx context.Context, d time.Duration) error
	Close() error
}

// Launcher opens a fresh Session per scrape.
type Launcher interface {
	Open(ctx context.Context) (Session, error)
	Name() string
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
