package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinServedWords is the word count below which a served page is assumed to be
// rendered client-side and is re-read through a headless browser.
const MinServedWords = 100

// renderSettle gives client-side scripts time to inject JSON-LD after load.
const renderSettle = 2 * time.Second

func needsRender(f *PageFacts) bool {
	return f.WordCount < MinServedWords
}

// Render loads url in headless Chrome and returns the DOM after scripts ran.
// Chrome or Chromium must be installed.
func Render(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	start := time.Now()
	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(renderSettle),
		chromedp.OuterHTML("html", &html),
	); err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}

	logger.Debug("page rendered",
		zap.String("url", url),
		zap.Int("bytes", len(html)),
		zap.Duration("took", time.Since(start)))
	return html, nil
}
