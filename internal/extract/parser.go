package extract

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-intel/internal/model"
	"github.com/sells-group/review-intel/internal/render"
)

var (
	// ErrEmptyItem means the item had no visible text.
	ErrEmptyItem = eris.New("extract: empty item")
	// ErrNoFields means no extractor produced a value.
	ErrNoFields = eris.New("extract: no fields recovered")
)

// Parser turns one rendered review item into a ReviewRecord.
type Parser struct {
	x *Extractor
}

// NewParser creates a Parser using the given selectors.
func NewParser(sel Selectors) *Parser {
	return &Parser{x: New(sel)}
}

// Parse reads the item's visible text once and runs every field extractor
// against it. A text read failure is returned as-is for the caller's failure
// boundary; ErrEmptyItem and ErrNoFields mark items that should be skipped.
func (p *Parser) Parse(ctx context.Context, el render.Element) (*model.ReviewRecord, error) {
	raw, err := el.Text(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "extract: read item text")
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyItem
	}

	it := NewItem(el, raw)
	name := p.x.ReviewerName(ctx, it)
	rec := &model.ReviewRecord{
		Rating:       p.x.Rating(ctx, it),
		ReviewerName: name,
		ReviewText:   p.x.ReviewText(ctx, it, name),
		ReviewDate:   p.x.ReviewDate(ctx, it),
		Source:       model.SourceGoogleMaps,
		RawCapture:   raw,
	}
	if !rec.HasContent() {
		return nil, ErrNoFields
	}
	return rec, nil
}
