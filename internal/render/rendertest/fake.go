// Package rendertest provides in-memory render doubles for tests.
package rendertest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sells-group/review-intel/internal/render"
)

// Element is a scripted render.Element. Children are keyed by the exact
// selector string passed to Locate.
type Element struct {
	Body     string
	TextErr  error
	Attrs    map[string]string
	Children map[string][]*Element
	Hidden   bool
	ClickErr error

	mu       sync.Mutex
	clicks   int
	scrolled float64
	// OnScroll runs after each Scroll, letting tests reveal items lazily.
	OnScroll func()
}

// NewElement returns an element whose visible text is body.
func NewElement(body string) *Element {
	return &Element{Body: body}
}

// WithAttr sets an attribute and returns e.
func (e *Element) WithAttr(name, value string) *Element {
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[name] = value
	return e
}

// WithChild registers child under selector and returns e.
func (e *Element) WithChild(selector string, child *Element) *Element {
	if e.Children == nil {
		e.Children = map[string][]*Element{}
	}
	e.Children[selector] = append(e.Children[selector], child)
	return e
}

func (e *Element) Locate(_ context.Context, selector string) ([]render.Element, error) {
	return toElements(e.Children[selector]), nil
}

func (e *Element) Text(_ context.Context) (string, error) {
	if e.TextErr != nil {
		return "", e.TextErr
	}
	return e.Body, nil
}

func (e *Element) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := e.Attrs[name]
	return v, ok, nil
}

func (e *Element) Visible(_ context.Context) (bool, error) { return !e.Hidden, nil }

func (e *Element) Click(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.clicks++
	return nil
}

func (e *Element) Scroll(_ context.Context, deltaY float64) error {
	e.mu.Lock()
	e.scrolled += deltaY
	fn := e.OnScroll
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

// Clicks returns how many times Click succeeded.
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Scrolled returns the accumulated scroll distance.
func (e *Element) Scrolled() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scrolled
}

func toElements(els []*Element) []render.Element {
	out := make([]render.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out
}

// Session is a scripted render.Session backed by a selector table.
type Session struct {
	NavigateErr error
	CloseErr    error
	HTML        string

	mu       sync.Mutex
	elements map[string][]*Element
	visited  []string
	waited   time.Duration
	closed   int
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{elements: map[string][]*Element{}}
}

// Set replaces the elements returned for selector.
func (s *Session) Set(selector string, els ...*Element) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[selector] = els
	return s
}

func (s *Session) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visited = append(s.visited, url)
	return s.NavigateErr
}

func (s *Session) Locate(_ context.Context, selector string) ([]render.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toElements(s.elements[selector]), nil
}

func (s *Session) Content(_ context.Context) (string, error) { return s.HTML, nil }

// Wait records the duration without sleeping.
func (s *Session) Wait(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waited += d
	return ctx.Err()
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return s.CloseErr
}

// Closed returns how many times Close was called.
func (s *Session) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Visited returns the navigated URLs.
func (s *Session) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visited...)
}

// Waited returns the total requested wait time.
func (s *Session) Waited() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waited
}

// Launcher hands out a fixed Session.
type Launcher struct {
	Session *Session
	OpenErr error
}

func (l *Launcher) Name() string { return "fake" }

func (l *Launcher) Open(_ context.Context) (render.Session, error) {
	if l.OpenErr != nil {
		return nil, l.OpenErr
	}
	if l.Session == nil {
		return nil, errors.New("rendertest: no session configured")
	}
	return l.Session, nil
}
