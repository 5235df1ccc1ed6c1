package github

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/go-github/v81/github"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"
)

// PageSize is the per_page value requested from every list endpoint.
const PageSize = 100

// Paginate walks a REST list endpoint page by page and yields each element as
// the raw JSON the API returned, so records pass through without being
// reshaped by a typed model.
//
// opts is a go-github list options struct (or nil); it is encoded into the
// query string of the first request and per_page defaults to PageSize. After
// that the URL in the response's Link rel="next" is requested exactly as
// given, whether it carries a page number or a cursor, until no next link
// remains.
//
// On failure the error is yielded once and iteration stops. Pages are only
// fetched as the caller consumes the sequence.
func (c *Client) Paginate(ctx context.Context, path string, opts any) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		params, err := query.Values(opts)
		if err != nil {
			yield(nil, fmt.Errorf("encode list options for %s: %w", path, err))
			return
		}
		if params.Get("per_page") == "" {
			params.Set("per_page", strconv.Itoa(PageSize))
		}
		params.Del("page")

		first, err := c.Client.BaseURL.Parse(path + "?" + params.Encode())
		if err != nil {
			yield(nil, fmt.Errorf("build request for %s: %w", path, err))
			return
		}

		log := zerolog.Ctx(ctx)
		next := first.String()
		seen := make(map[string]bool)
		for page := 1; next != ""; page++ {
			// A link already visited would loop forever.
			if seen[next] {
				yield(nil, fmt.Errorf("fetch page %d of %s: next link repeats an earlier page", page, path))
				return
			}
			seen[next] = true

			items, resp, err := c.getPage(ctx, next)
			if err != nil {
				yield(nil, fmt.Errorf("fetch page %d of %s: %w", page, path, err))
				return
			}
			log.Debug().Str("path", path).Int("page", page).Int("items", len(items)).Msg("fetched page")

			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			next = nextLink(resp.Header)
		}
	}
}

// nextLink returns the target of the rel="next" entry of the Link headers in
// h, or "" on the last page.
func nextLink(h http.Header) string {
	for _, header := range h.Values("Link") {
		for _, link := range strings.Split(header, ",") {
			segments := strings.Split(strings.TrimSpace(link), ";")
			if len(segments) < 2 {
				continue
			}
			target := strings.TrimSpace(segments[0])
			if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
				continue
			}
			for _, param := range segments[1:] {
				param = strings.TrimSpace(param)
				if param == `rel="next"` || param == "rel=next" {
					return target[1 : len(target)-1]
				}
			}
		}
	}
	return ""
}

func (c *Client) getPage(ctx context.Context, u string) ([]json.RawMessage, *github.Response, error) {
	req, err := c.Client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}
	var items []json.RawMessage
	resp, err := c.Client.Do(ctx, req, &items)
	if err != nil {
		return nil, nil, err
	}
	return items, resp, nil
}

// Collect drains seq into a slice, stopping at the first error. The result is
// never nil on success so an empty listing encodes as [].
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	out := []T{}
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
