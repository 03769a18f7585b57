package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/config"
)

const (
	viewportWidth  = 1680
	viewportHeight = 1050

	// A4 in inches
	paperWidth  = 8.27
	paperHeight = 11.69
)

type printFunc func(ctx context.Context, url string) ([]byte, error)

// ChromeRenderer prints frontend report pages to PDF with headless Chrome.
// At most MaxConcurrent browsers run at once.
type ChromeRenderer struct {
	sem     *semaphore.Weighted
	timeout time.Duration
	settle  time.Duration
	print   printFunc
}

func NewChromeRenderer(cfg config.RendererConfig) *ChromeRenderer {
	r := &ChromeRenderer{
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		timeout: cfg.Timeout,
		settle:  cfg.SettleDelay,
	}
	r.print = r.printWithChrome
	return r
}

// RenderPDF loads url and returns the printed PDF bytes.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, url string) ([]byte, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for renderer slot: %w", err)
	}
	defer r.sem.Release(1)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	pdf, err := r.print(ctx, url)
	if err != nil {
		return nil, err
	}
	slog.Debug("Report rendered", "url", url, "bytes", len(pdf), "duration", time.Since(start))
	return pdf, nil
}

func (r *ChromeRenderer) printWithChrome(ctx context.Context, url string) ([]byte, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.Navigate(url),
		chromedp.Sleep(r.settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome render %s: %w", url, err)
	}
	return pdf, nil
}
