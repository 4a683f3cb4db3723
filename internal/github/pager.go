package github

import (
	"context"
	"fmt"

	apperrors "github-projects-mcp/internal/errors"

	"github.com/rs/zerolog/log"
)

// PageFetcher returns the page that starts at cursor. An empty cursor is the first page.
type PageFetcher func(ctx context.Context, cursor string) (Page, error)

// CollectOptions tune a Collect run.
type CollectOptions struct {
	// MaxPages stops runaway pagination. Zero means no limit.
	MaxPages int
	// OnPage is called before each fetch with the 1-based page number.
	OnPage func(page int, cursor string)
}

// Collect walks every page returned by fetch, decodes each node and keeps the
// records accepted by keep (nil keeps everything), in page order.
// Pages are fetched sequentially. Any fetch or decode error aborts the walk and
// no partial result is returned.
func Collect[T any](ctx context.Context, fetch PageFetcher, decode Decoder[T], keep func(T) bool, opts CollectOptions) ([]T, error) {
	results := make([]T, 0)
	cursor := ""

	for page := 1; ; page++ {
		if opts.MaxPages > 0 && page > opts.MaxPages {
			return nil, apperrors.NewPageLimitError(opts.MaxPages)
		}

		log.Debug().Int("page", page).Str("cursor", cursor).Msg("Fetching page")
		if opts.OnPage != nil {
			opts.OnPage(page, cursor)
		}

		p, err := fetch(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}

		kept := 0
		for _, raw := range p.Nodes {
			record, ok, err := decode(raw)
			if err != nil {
				return nil, fmt.Errorf("decoding page %d: %w", page, err)
			}
			if !ok {
				continue
			}
			if keep == nil || keep(record) {
				results = append(results, record)
				kept++
			}
		}
		log.Debug().Int("page", page).Int("nodes", len(p.Nodes)).Int("kept", kept).Bool("has_next", p.HasNextPage).Msg("Page processed")

		if !p.HasNextPage {
			return results, nil
		}
		cursor = p.EndCursor
	}
}
