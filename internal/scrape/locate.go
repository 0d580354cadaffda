package scrape

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/review-intel/internal/render"
)

// locateItems finds review items with the first selector that matches. When
// none match it scrolls the review feed until items appear. With ScrollForMore
// it keeps scrolling until want items are present. Scrolling stops after
// ScrollAttempts. Once items are present, it also stops after StaleScrolls
// scrolls without growth; an empty feed gets every attempt.
func (s *Scraper) locateItems(ctx context.Context, sess render.Session, want int, log *zap.Logger) []render.Element {
	items := s.findItems(ctx, sess, log)
	if len(items) >= want || (len(items) > 0 && !s.cfg.ScrollForMore) {
		return items
	}

	feed := s.findFeed(ctx, sess, log)
	if feed == nil {
		log.Debug("scrape: no scrollable feed found", zap.Int("items", len(items)))
		return items
	}

	stale := 0
	for attempt := 1; attempt <= s.cfg.ScrollAttempts; attempt++ {
		if err := feed.Scroll(ctx, s.cfg.ScrollDelta); err != nil {
			log.Debug("scrape: scroll feed", zap.Int("attempt", attempt), zap.Error(err))
			break
		}
		if err := sess.Wait(ctx, s.cfg.ScrollDelay); err != nil {
			break
		}

		next := s.findItems(ctx, sess, log)
		log.Debug("scrape: scrolled feed", zap.Int("attempt", attempt), zap.Int("items", len(next)))
		if len(next) <= len(items) {
			if len(items) == 0 {
				continue
			}
			stale++
			if stale >= s.cfg.StaleScrolls {
				break
			}
			continue
		}
		stale = 0
		items = next
		if len(items) >= want || !s.cfg.ScrollForMore {
			break
		}
	}
	return items
}

// findItems returns the matches of the first item selector with any results.
func (s *Scraper) findItems(ctx context.Context, sess render.Session, log *zap.Logger) []render.Element {
	for _, sel := range s.cfg.ItemSelectors {
		els, err := sess.Locate(ctx, sel)
		if err != nil {
			log.Debug("scrape: locate items", zap.String("selector", sel), zap.Error(err))
			continue
		}
		if len(els) > 0 {
			return els
		}
	}
	return nil
}

func (s *Scraper) findFeed(ctx context.Context, sess render.Session, log *zap.Logger) render.Element {
	for _, sel := range s.cfg.FeedSelectors {
		els, err := sess.Locate(ctx, sel)
		if err != nil {
			log.Debug("scrape: locate feed", zap.String("selector", sel), zap.Error(err))
			continue
		}
		if len(els) > 0 {
			return els[0]
		}
	}
	return nil
}
