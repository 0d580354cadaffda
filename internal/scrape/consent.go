package scrape

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/review-intel/internal/render"
)

// acceptLabels are exact (lowercased) captions of consent accept buttons.
var acceptLabels = map[string]bool{
	"accept all":            true,
	"accept":                true,
	"accept all cookies":    true,
	"i agree":               true,
	"agree":                 true,
	"alle akzeptieren":      true,
	"akzeptieren":           true,
	"zustimmen":             true,
	"ich stimme zu":         true,
	"alle cookies zulassen": true,
	"tout accepter":         true,
	"accepter":              true,
	"aceptar todo":          true,
	"accetta tutto":         true,
	"alles accepteren":      true,
}

// consentMarkers are vendor and attribute hooks of common consent banners.
var consentMarkers = []string{
	"#onetrust-accept-btn-handler",
	"#CybotCookiebotDialogBodyLevelButtonLevelOptinAllowAll",
	"#CybotCookiebotDialogBodyButtonAccept",
	`button[data-testid="uc-accept-all-button"]`,
	`button[id*="accept"]`,
	`button[aria-label*="Accept"]`,
	`button[aria-label*="accept"]`,
	`button[aria-label*="Akzeptieren"]`,
}

// dialogContainers hold consent prompts on pages without a known vendor.
var dialogContainers = []string{
	`[role="dialog"]`,
	`[aria-modal="true"]`,
	`form[action*="consent"]`,
	`div[class*="consent"]`,
}

var (
	// dialogButton matches accept buttons inside a dialog.
	dialogButton = wordMatcher([]string{"accept", "agree", "ok", "akzeptieren", "zustimmen"})
	// reviewsTab matches the tab that opens the review list. The whole caption
	// must be the label, so profile buttons like "12 reviews" never match.
	reviewsTab = labelMatcher([]string{"reviews", "rezensionen", "bewertungen", "avis", "reseñas", "recensioni"})
)

// dismissAttempt tries one way of closing a consent prompt and reports
// whether it clicked something. Failures are logged, never returned.
type dismissAttempt func(ctx context.Context, sess render.Session, log *zap.Logger) bool

func (s *Scraper) resolveConsent(ctx context.Context, sess render.Session, log *zap.Logger) bool {
	attempts := []struct {
		name string
		fn   dismissAttempt
	}{
		{"accept_label", dismissByLabel},
		{"consent_marker", dismissByMarker},
		{"dialog_button", dismissInDialog},
	}
	for _, a := range attempts {
		if a.fn(ctx, sess, log) {
			log.Debug("scrape: consent dismissed", zap.String("attempt", a.name))
			if err := sess.Wait(ctx, s.cfg.ActionDelay); err != nil {
				log.Debug("scrape: consent wait", zap.Error(err))
			}
			return true
		}
	}
	log.Debug("scrape: no consent prompt found")
	return false
}

func dismissByLabel(ctx context.Context, sess render.Session, log *zap.Logger) bool {
	buttons := locate(ctx, sess, log, "button", `[role="button"]`)
	return clickFirst(ctx, buttons, log, func(text string) bool {
		return acceptLabels[text]
	})
}

func dismissByMarker(ctx context.Context, sess render.Session, log *zap.Logger) bool {
	return clickFirst(ctx, locate(ctx, sess, log, consentMarkers...), log, nil)
}

func dismissInDialog(ctx context.Context, sess render.Session, log *zap.Logger) bool {
	for _, dialog := range locate(ctx, sess, log, dialogContainers...) {
		buttons, err := dialog.Locate(ctx, "button")
		if err != nil {
			log.Debug("scrape: locate dialog buttons", zap.Error(err))
			continue
		}
		if clickFirst(ctx, buttons, log, dialogButton) {
			return true
		}
	}
	return false
}

func (s *Scraper) ensureReviewsTab(ctx context.Context, sess render.Session, log *zap.Logger) bool {
	tabs := locate(ctx, sess, log, `[role="tab"]`, "button")
	if !clickFirst(ctx, tabs, log, reviewsTab) {
		log.Debug("scrape: no reviews tab found")
		return false
	}
	if err := sess.Wait(ctx, s.cfg.ActionDelay); err != nil {
		log.Debug("scrape: reviews tab wait", zap.Error(err))
	}
	return true
}

// locate collects matches for every selector, in selector order.
func locate(ctx context.Context, sess render.Session, log *zap.Logger, selectors ...string) []render.Element {
	var out []render.Element
	for _, sel := range selectors {
		els, err := sess.Locate(ctx, sel)
		if err != nil {
			log.Debug("scrape: locate", zap.String("selector", sel), zap.Error(err))
			continue
		}
		out = append(out, els...)
	}
	return out
}

// clickFirst clicks the first visible element whose lowercased, trimmed text
// satisfies match. A nil match accepts any visible element.
func clickFirst(ctx context.Context, els []render.Element, log *zap.Logger, match func(string) bool) bool {
	for _, el := range els {
		visible, err := el.Visible(ctx)
		if err != nil || !visible {
			continue
		}
		if match != nil {
			text, err := el.Text(ctx)
			if err != nil {
				log.Debug("scrape: read button text", zap.Error(err))
				continue
			}
			if !match(strings.ToLower(strings.TrimSpace(text))) {
				continue
			}
		}
		if err := el.Click(ctx); err != nil {
			log.Debug("scrape: click", zap.Error(err))
			continue
		}
		return true
	}
	return false
}

// wordMatcher reports whether text contains any keyword as a whole word,
// so "ok" matches "OK, got it" but not "booking".
func wordMatcher(keywords []string) func(string) bool {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return re.MatchString
}

// labelMatcher reports whether text is exactly one of labels, optionally
// followed by a count: "reviews", "reviews (120)" or "reviews 1,204".
func labelMatcher(labels []string) func(string) bool {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = regexp.QuoteMeta(l)
	}
	re := regexp.MustCompile(`(?i)^\s*(?:` + strings.Join(quoted, "|") + `)(?:\s*\(?\s*[\d.,]+\s*\)?)?\s*$`)
	return re.MatchString
}
