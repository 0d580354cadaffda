// Package extract recovers review fields from one rendered review item using
// ordered fallback strategies per field.
package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/review-intel/internal/render"
	"github.com/sells-group/review-intel/internal/textclean"
)

// minResidueLen is the shortest residue the last review-text tier accepts.
const minResidueLen = 20

// Selectors holds the CSS selectors each markup-based strategy consults.
// Every list is tried in order.
type Selectors struct {
	Rating []string `yaml:"rating" mapstructure:"rating"`
	Name   []string `yaml:"name" mapstructure:"name"`
	Text   []string `yaml:"text" mapstructure:"text"`
	Date   []string `yaml:"date" mapstructure:"date"`
}

// DefaultSelectors returns selectors for the current Google Maps review markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Rating: []string{"span.kvMYJc", `[role="img"][aria-label]`},
		Name:   []string{"div.d4r55", `button[data-href*="/contrib/"]`, `a[href*="/contrib/"]`},
		Text:   []string{"span.wiI7pd", "div.MyEned"},
		Date:   []string{"span.rsqaWe", "span.xRkPPb"},
	}
}

// Item is one candidate review: its handle plus its flattened text,
// computed once and shared by every strategy.
type Item struct {
	El    render.Element
	Text  string
	Lines []string
}

// NewItem splits text into trimmed non-empty lines.
func NewItem(el render.Element, text string) Item {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return Item{El: el, Text: text, Lines: lines}
}

// strategy yields a value or nil. Strategies never return errors.
type strategy[T any] func(ctx context.Context, it Item) *T

// firstOf runs strategies in order and returns the first non-nil result.
// Later strategies are never consulted once one succeeds.
func firstOf[T any](ctx context.Context, it Item, strategies ...strategy[T]) *T {
	for _, s := range strategies {
		if v := s(ctx, it); v != nil {
			return v
		}
	}
	return nil
}

// Extractor holds the per-field strategy chains.
type Extractor struct {
	sel Selectors
}

// New creates an Extractor. Empty selector lists fall back to the defaults.
func New(sel Selectors) *Extractor {
	def := DefaultSelectors()
	if len(sel.Rating) == 0 {
		sel.Rating = def.Rating
	}
	if len(sel.Name) == 0 {
		sel.Name = def.Name
	}
	if len(sel.Text) == 0 {
		sel.Text = def.Text
	}
	if len(sel.Date) == 0 {
		sel.Date = def.Date
	}
	return &Extractor{sel: sel}
}

// Rating returns a rating in (0,5] or nil.
func (x *Extractor) Rating(ctx context.Context, it Item) *float64 {
	return firstOf(ctx, it,
		x.ratingFromLabel,
		ratingFromText,
	)
}

// ReviewerName returns the reviewer's display name or nil.
func (x *Extractor) ReviewerName(ctx context.Context, it Item) *string {
	return firstOf(ctx, it,
		x.nameFromProfile,
		nameFromFirstLine,
	)
}

// ReviewText returns cleaned review prose or nil. name is the already
// extracted reviewer name, excluded from the text-based tiers.
func (x *Extractor) ReviewText(ctx context.Context, it Item, name *string) *string {
	return firstOf(ctx, it,
		x.textFromElement,
		textFromLines(name),
		textFromResidue(name),
	)
}

// ReviewDate returns the opaque relative date or nil.
func (x *Extractor) ReviewDate(ctx context.Context, it Item) *string {
	return firstOf(ctx, it,
		x.dateFromElement,
		dateFromLines,
	)
}

// --- rating ---

func (x *Extractor) ratingFromLabel(ctx context.Context, it Item) *float64 {
	for _, el := range locateAll(ctx, it.El, x.sel.Rating) {
		label, ok, err := el.Attribute(ctx, "aria-label")
		if err != nil {
			zap.L().Debug("extract: read rating label", zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		if v := ParseRating(label); v != nil {
			return v
		}
	}
	return nil
}

func ratingFromText(_ context.Context, it Item) *float64 {
	return ParseRating(it.Text)
}

// --- reviewer name ---

func (x *Extractor) nameFromProfile(ctx context.Context, it Item) *string {
	for _, el := range locateAll(ctx, it.El, x.sel.Name) {
		text, err := el.Text(ctx)
		if err != nil {
			zap.L().Debug("extract: read profile text", zap.Error(err))
			continue
		}
		if name := nameLine(text); name != "" {
			return &name
		}
	}
	return nil
}

func nameFromFirstLine(_ context.Context, it Item) *string {
	if len(it.Lines) == 0 {
		return nil
	}
	if name := cleanName(it.Lines[0]); name != "" {
		return &name
	}
	return nil
}

// nameLine returns the first non-empty line of text without a date suffix.
func nameLine(text string) string {
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return cleanName(l)
		}
	}
	return ""
}

// cleanName drops a glued-on relative date and UI noise from a name line.
func cleanName(line string) string {
	return textclean.Clean(stripDateSuffix(line))
}

// --- review text ---

func (x *Extractor) textFromElement(ctx context.Context, it Item) *string {
	for _, el := range locateAll(ctx, it.El, x.sel.Text) {
		text, err := el.Text(ctx)
		if err != nil {
			zap.L().Debug("extract: read review text element", zap.Error(err))
			continue
		}
		if cleaned := textclean.Clean(text); cleaned != "" {
			return &cleaned
		}
	}
	return nil
}

func textFromLines(name *string) strategy[string] {
	return func(_ context.Context, it Item) *string {
		if len(it.Lines) < 2 {
			return nil
		}
		var kept []string
		for _, line := range it.Lines[1:] {
			if isMetadataLine(line) || (name != nil && line == *name) {
				continue
			}
			kept = append(kept, line)
		}
		if cleaned := textclean.Clean(strings.Join(kept, "\n")); cleaned != "" {
			return &cleaned
		}
		return nil
	}
}

func textFromResidue(name *string) strategy[string] {
	return func(_ context.Context, it Item) *string {
		residue := it.Text
		if name != nil && *name != "" {
			residue = removeFold(residue, *name)
		}
		residue = textclean.Clean(stripMetadata(residue))
		if utf8.RuneCountInString(residue) <= minResidueLen {
			return nil
		}
		return &residue
	}
}

// removeFold replaces every case-insensitive occurrence of sub in s with a
// space.
func removeFold(s, sub string) string {
	n := utf8.RuneCountInString(sub)
	if n == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		j := i
		for k := 0; k < n && j < len(s); k++ {
			_, w := utf8.DecodeRuneInString(s[j:])
			j += w
		}
		if strings.EqualFold(s[i:j], sub) {
			b.WriteByte(' ')
			i = j
			continue
		}
		_, w := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+w])
		i += w
	}
	return b.String()
}

// --- relative date ---

func (x *Extractor) dateFromElement(ctx context.Context, it Item) *string {
	for _, el := range locateAll(ctx, it.El, x.sel.Date) {
		text, err := el.Text(ctx)
		if err != nil {
			zap.L().Debug("extract: read date element", zap.Error(err))
			continue
		}
		if d := FindRelativeDate(text); d != "" {
			return &d
		}
		if d := textclean.CollapseWhitespace(text); d != "" {
			return &d
		}
	}
	return nil
}

func dateFromLines(_ context.Context, it Item) *string {
	for i := len(it.Lines) - 1; i >= 0; i-- {
		if d := FindRelativeDate(it.Lines[i]); d != "" {
			return &d
		}
	}
	return nil
}

// locateAll returns matches for each selector in order, skipping selectors
// that fail. Read failures are data, not errors.
func locateAll(ctx context.Context, el render.Element, selectors []string) []render.Element {
	if el == nil {
		return nil
	}
	var out []render.Element
	for _, sel := range selectors {
		found, err := el.Locate(ctx, sel)
		if err != nil {
			zap.L().Debug("extract: locate failed", zap.String("selector", sel), zap.Error(err))
			continue
		}
		out = append(out, found...)
	}
	return out
}
