package soundcloud

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// discoverClientID scrapes a public page, fetches every script it loads and
// searches the combined text for the client id.
//
// Script fetches are best effort: a failing bundle is logged and skipped.
// Bodies are joined in page order so the first match is deterministic.
func (c *Client) discoverClientID(ctx context.Context) (string, error) {
	pageURL := c.scrapeURLs[rand.Intn(len(c.scrapeURLs))]

	page, err := c.fetcher.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %w", ErrDiscovery, pageURL, err)
	}

	scriptURLs := FindScriptURLs(string(page))
	c.logger.Debug("scraping scripts for client id",
		zap.String("page", pageURL),
		zap.Int("scripts", len(scriptURLs)),
	)

	bodies := make([][]byte, len(scriptURLs))
	g, gctx := errgroup.WithContext(ctx)
	for i, scriptURL := range scriptURLs {
		i, scriptURL := i, scriptURL
		g.Go(func() error {
			abs, err := absoluteURL(pageURL, scriptURL)
			if err != nil {
				c.logger.Debug("skipping script", zap.String("url", scriptURL), zap.Error(err))
				return nil
			}
			body, err := c.fetcher.Get(gctx, abs)
			if err != nil {
				c.logger.Debug("script fetch failed", zap.String("url", abs), zap.Error(err))
				return nil
			}
			bodies[i] = body
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, body := range bodies {
		sb.Write(body)
		sb.WriteByte('\n')
	}

	clientID, ok := FindClientID(sb.String())
	if !ok {
		return "", fmt.Errorf("%w: could not find a public client id in %d scripts from %s; "+
			"SoundCloud has likely changed where the client id is located, please report this",
			ErrDiscovery, len(scriptURLs), pageURL)
	}
	return clientID, nil
}

// absoluteURL resolves a script src against the page it was found on.
func absoluteURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
