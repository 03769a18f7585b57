package renderer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPDF_BoundsConcurrentBrowsers(t *testing.T) {
	r := NewChromeRenderer(config.RendererConfig{MaxConcurrent: 2, Timeout: time.Second})

	var inFlight, peak int32
	r.print = func(ctx context.Context, url string) ([]byte, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return []byte("%PDF"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pdf, err := r.RenderPDF(context.Background(), "http://frontend/downloadReportPdf/x")
			assert.NoError(t, err)
			assert.Equal(t, []byte("%PDF"), pdf)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRenderPDF_AppliesTimeout(t *testing.T) {
	r := NewChromeRenderer(config.RendererConfig{MaxConcurrent: 1, Timeout: 10 * time.Millisecond})
	r.print = func(ctx context.Context, url string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := r.RenderPDF(context.Background(), "http://frontend")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
