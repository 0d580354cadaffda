package render

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxStaticBody = 4 << 20

// StaticLauncher renders pages without a browser: the HTML is fetched over
// HTTP (or supplied inline) and queried with goquery. Click and Scroll are
// no-ops, so it only sees reviews present in the initial markup.
type StaticLauncher struct {
	client    *http.Client
	userAgent string
	html      string
}

// StaticOption configures a StaticLauncher.
type StaticOption func(*StaticLauncher)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) StaticOption {
	return func(l *StaticLauncher) { l.client = hc }
}

// WithUserAgent sets the User-Agent header for fetches.
func WithUserAgent(ua string) StaticOption {
	return func(l *StaticLauncher) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithHTML makes every session serve html instead of fetching the URL.
func WithHTML(doc string) StaticOption {
	return func(l *StaticLauncher) { l.html = doc }
}

// NewStaticLauncher creates a StaticLauncher with sensible defaults.
func NewStaticLauncher(opts ...StaticOption) *StaticLauncher {
	l := &StaticLauncher{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: "Mozilla/5.0 (compatible; ReviewIntel/1.0)",
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *StaticLauncher) Name() string { return "static" }

// Open returns a new session. Nothing is fetched until Navigate.
func (l *StaticLauncher) Open(_ context.Context) (Session, error) {
	return &staticSession{launcher: l}, nil
}

type staticSession struct {
	launcher *StaticLauncher
	doc      *goquery.Document
	closed   bool
}

func (s *staticSession) Navigate(ctx context.Context, targetURL string) error {
	if s.closed {
		return eris.New("static: session closed")
	}
	if s.launcher.html != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.launcher.html))
		if err != nil {
			return eris.Wrap(err, "static: parse inline html")
		}
		s.doc = doc
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return eris.Wrap(err, "static: create request")
	}
	req.Header.Set("User-Agent", s.launcher.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.launcher.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "static: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStaticBody))
	if err != nil {
		return eris.Wrap(err, "static: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return eris.Errorf("static: blocked (%s)", blockType)
	}
	if resp.StatusCode >= 400 {
		return eris.Errorf("static: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return eris.Wrap(err, "static: parse html")
	}
	s.doc = doc
	return nil
}

func (s *staticSession) Locate(_ context.Context, selector string) ([]Element, error) {
	if s.doc == nil {
		return nil, eris.New("static: no page loaded")
	}
	return wrapSelection(s.doc.Find(selector)), nil
}

func (s *staticSession) Content(_ context.Context) (string, error) {
	if s.doc == nil {
		return "", eris.New("static: no page loaded")
	}
	out, err := s.doc.Html()
	return out, eris.Wrap(err, "static: render html")
}

func (s *staticSession) Wait(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func (s *staticSession) Close() error {
	s.closed = true
	s.doc = nil
	return nil
}

type staticElement struct {
	sel *goquery.Selection
}

func wrapSelection(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &staticElement{sel: s})
	})
	return out
}

func (e *staticElement) Locate(_ context.Context, selector string) ([]Element, error) {
	return wrapSelection(e.sel.Find(selector)), nil
}

func (e *staticElement) Text(_ context.Context) (string, error) {
	if e.sel.Length() == 0 {
		return "", eris.New("static: detached element")
	}
	return VisibleText(e.sel.Get(0)), nil
}

func (e *staticElement) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *staticElement) Visible(_ context.Context) (bool, error) {
	if e.sel.Length() == 0 {
		return false, nil
	}
	for n := e.sel.Get(0); n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hiddenNode(n) {
			return false, nil
		}
	}
	return true, nil
}

func (e *staticElement) Click(_ context.Context) error { return nil }

func (e *staticElement) Scroll(_ context.Context, _ float64) error { return nil }

var skipTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Head:     true,
}

var blockTags = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Figure: true,
	atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true, atom.Li: true,
	atom.Main: true, atom.Nav: true, atom.Ol: true, atom.P: true, atom.Section: true,
	atom.Table: true, atom.Tr: true, atom.Ul: true,
}

func hiddenNode(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

// VisibleText approximates a browser's innerText: hidden subtrees are
// skipped, block elements and <br> break lines, and whitespace inside a
// line is collapsed. Empty lines are dropped.
func VisibleText(root *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			writeCollapsed(&b, n.Data)
			return
		case html.ElementNode:
			if skipTags[n.DataAtom] || hiddenNode(n) {
				return
			}
			if n.DataAtom == atom.Br {
				b.WriteByte('\n')
				return
			}
		}
		block := n.Type == html.ElementNode && blockTags[n.DataAtom]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	walk(root)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// writeCollapsed writes s with every whitespace run reduced to one space, so
// source formatting newlines never become line breaks.
func writeCollapsed(b *strings.Builder, s string) {
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
}
