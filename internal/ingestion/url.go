package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/vacancy-templater/internal/fetch"
	"github.com/rs/zerolog"
)

var (
	// ErrHTTPRequestFailed is returned when the page could not be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text could be extracted
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// Options configures URL ingestion. A nil Fetcher fetches without caching
// using Fetch; a nil Renderer disables the headless browser fallback.
type Options struct {
	Fetcher  *fetch.CachedFetcher
	Fetch    *fetch.Options
	Renderer fetch.Renderer
	Logger   zerolog.Logger
}

// IngestFromURL fetches a vacancy page, extracts its main text with the
// detected platform's selectors and cleans it. When the page yields too
// little text and a Renderer is configured, the page is rendered in a
// browser and extracted again.
func IngestFromURL(ctx context.Context, urlStr string, opts *Options) (string, *Metadata, error) {
	if opts == nil {
		opts = &Options{Logger: zerolog.Nop()}
	}
	logger := opts.Logger.With().Str("url", urlStr).Logger()

	platform := fetch.DetectPlatform(urlStr)
	pageURL := fetch.PageURL(urlStr)
	logger.Debug().Str("platform", string(platform)).Msg("fetching vacancy page")

	html, err := fetchHTML(ctx, pageURL, opts)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	textContent, err := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	logger.Debug().Int("chars", len(textContent)).Msg("extracted page text")

	if opts.Renderer != nil && fetch.ShouldUseBrowser(textContent) {
		logger.Debug().Int("chars", len(textContent)).Int("min", fetch.MinContentLength).
			Msg("content too short, falling back to browser rendering")

		rendered, renderErr := opts.Renderer.Render(ctx, pageURL)
		if renderErr != nil {
			logger.Warn().Err(renderErr).Msg("browser rendering failed, using HTTP content")
		} else if browserText, extractErr := fetch.ExtractMainText(rendered, contentSelectors, noiseSelectors...); extractErr != nil {
			logger.Warn().Err(extractErr).Msg("browser content extraction failed")
		} else if len(browserText) > len(textContent) {
			textContent = browserText
			html = rendered
		}
	}

	cleanedText := CleanText(textContent)
	if cleanedText == "" {
		return "", nil, fmt.Errorf("%w: page has no readable text", ErrContentExtractionFailed)
	}

	metadata := NewMetadata(cleanedText, urlStr)
	metadata.Platform = string(platform)
	metadata.Title = fetch.PageTitle(html)

	return cleanedText, metadata, nil
}

func fetchHTML(ctx context.Context, urlStr string, opts *Options) (string, error) {
	if opts.Fetcher != nil {
		result, err := opts.Fetcher.Fetch(ctx, urlStr)
		if err != nil {
			return "", err
		}
		return result.HTML, nil
	}
	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}
