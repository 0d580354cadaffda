package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const reviewPage = `<html><head><title>Acme Bistro</title><style>.x{}</style></head>
<body>
<div role="dialog"><button id="accept-all">Accept all</button></div>
<div class="jftiEf" data-review-id="r1">
  <button class="WEBjve"><div class="d4r55">Jane Doe</div></button>
  <span class="kvMYJc" role="img" aria-label="4 stars"></span>
  <span class="rsqaWe">2 months ago</span>
  <div class="MyEned"><span class="wiI7pd">Great food,
     slow service</span></div>
  <button hidden>Like</button>
</div>
<div class="jftiEf" data-review-id="r2" style="display: none">Hidden review</div>
<script>var x = "not text";</script>
</body></html>`

func openStatic(t *testing.T, doc string) Session {
	t.Helper()
	sess, err := NewStaticLauncher(WithHTML(doc)).Open(context.Background())
	require.NoError(t, err)
	require.NoError(t, sess.Navigate(context.Background(), "https://example.com/maps"))
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestStaticSession_LocateAndText(t *testing.T) {
	ctx := context.Background()
	sess := openStatic(t, reviewPage)

	items, err := sess.Locate(ctx, "div.jftiEf")
	require.NoError(t, err)
	require.Len(t, items, 2)

	text, err := items[0].Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n2 months ago\nGreat food, slow service", text)

	hiddenText, err := items[1].Text(ctx)
	require.NoError(t, err)
	assert.Empty(t, hiddenText)
}

func TestStaticElement_ScopedLocateAndAttribute(t *testing.T) {
	ctx := context.Background()
	sess := openStatic(t, reviewPage)

	items, err := sess.Locate(ctx, "[data-review-id]")
	require.NoError(t, err)
	require.Len(t, items, 2)

	stars, err := items[0].Locate(ctx, `[role="img"][aria-label]`)
	require.NoError(t, err)
	require.Len(t, stars, 1)

	label, ok, err := stars[0].Attribute(ctx, "aria-label")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "4 stars", label)

	_, ok, err = stars[0].Attribute(ctx, "data-missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStaticElement_Visible(t *testing.T) {
	ctx := context.Background()
	sess := openStatic(t, reviewPage)

	buttons, err := sess.Locate(ctx, "button")
	require.NoError(t, err)
	require.Len(t, buttons, 3)

	visible, err := buttons[0].Visible(ctx)
	require.NoError(t, err)
	assert.True(t, visible)

	visible, err = buttons[2].Visible(ctx)
	require.NoError(t, err)
	assert.False(t, visible)

	items, err := sess.Locate(ctx, "div.jftiEf")
	require.NoError(t, err)
	visible, err = items[1].Visible(ctx)
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestStaticSession_InvalidSelectorMatchesNothing(t *testing.T) {
	sess := openStatic(t, reviewPage)

	els, err := sess.Locate(context.Background(), `button:has-text("Accept")`)
	require.NoError(t, err)
	assert.Empty(t, els)
}

func TestStaticSession_LocateBeforeNavigate(t *testing.T) {
	sess, err := NewStaticLauncher().Open(context.Background())
	require.NoError(t, err)

	_, err = sess.Locate(context.Background(), "div")
	assert.Error(t, err)
}

func TestStaticSession_FetchOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "ReviewIntel")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(reviewPage))
	}))
	defer srv.Close()

	sess, err := NewStaticLauncher().Open(context.Background())
	require.NoError(t, err)
	defer sess.Close() //nolint:errcheck

	require.NoError(t, sess.Navigate(context.Background(), srv.URL))
	content, err := sess.Content(context.Background())
	require.NoError(t, err)
	assert.Contains(t, content, "Acme Bistro")
}

func TestStaticSession_FetchBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cf-Ray", "abc123")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	sess, err := NewStaticLauncher().Open(context.Background())
	require.NoError(t, err)

	err = sess.Navigate(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestStaticSession_FetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(strings.Repeat("<p>missing</p>", 300)))
	}))
	defer srv.Close()

	sess, err := NewStaticLauncher().Open(context.Background())
	require.NoError(t, err)

	err = sess.Navigate(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestVisibleText_LineBreaks(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<div>First<br>Second<p>Third   line</p><span>inline</span> tail</div>`))
	require.NoError(t, err)

	assert.Equal(t, "First\nSecond\nThird line\ninline tail", VisibleText(doc))
}
