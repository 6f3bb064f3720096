// Package render rasterizes a populated card document with a headless browser.
package render

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/naka-gawa/github-social-card/internal/domain"
)

// Card dimensions in CSS pixels. Screenshots use a device scale factor of 1,
// so the PNG has the same size in pixels.
const (
	DefaultWidth  = 900
	DefaultHeight = 325

	// DefaultSettle is how long the network must stay quiet before capture.
	DefaultSettle = 500 * time.Millisecond
)

// Renderer turns an HTML document into PNG bytes.
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Options configures a BrowserRenderer. Zero values select the defaults.
type Options struct {
	// Bin is the browser executable. Empty lets the launcher find or download one.
	Bin       string
	Width     int
	Height    int
	Settle    time.Duration
	Timeout   time.Duration
	NoSandbox bool
}

// BrowserRenderer starts a new headless browser for every Render call and
// tears it down before returning. Nothing is shared between calls.
type BrowserRenderer struct {
	opts   Options
	logger *log.Logger
}

// NewBrowserRenderer creates a BrowserRenderer.
func NewBrowserRenderer(opts Options, logger *log.Logger) *BrowserRenderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	return &BrowserRenderer{
		opts:   opts,
		logger: logger,
	}
}

// Render loads html into a fresh page of Width x Height, waits until the
// document is loaded and the network has been idle for Settle, and captures
// the viewport as PNG.
func (r *BrowserRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	l := launcher.New().Context(ctx).Headless(true).Leakless(true)
	if r.opts.Bin != "" {
		l = l.Bin(r.opts.Bin)
	}
	if r.opts.NoSandbox {
		l = l.NoSandbox(true)
	}

	r.logger.Println("  Launching headless browser...")
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to launch browser: %w", domain.ErrRender, err)
	}
	var browser *rod.Browser
	defer func() {
		var closeBrowser func() error
		if browser != nil {
			closeBrowser = browser.Close
		}
		teardown(closeBrowser, l, r.logger)
	}()

	connected := rod.New().ControlURL(controlURL).Context(ctx)
	if err := connected.Connect(); err != nil {
		return nil, fmt.Errorf("%w: failed to connect to browser: %w", domain.ErrRender, err)
	}
	browser = connected

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open page: %w", domain.ErrRender, err)
	}
	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             r.opts.Width,
		Height:            r.opts.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to set viewport: %w", domain.ErrRender, err)
	}

	// The avatar is fetched over the network, so capture waits for both the
	// load event and a quiet network.
	waitIdle := page.WaitRequestIdle(r.opts.Settle, nil, nil, nil)
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("%w: failed to load document: %w", domain.ErrRender, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: failed waiting for document load: %w", domain.ErrRender, err)
	}
	waitIdle()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	img, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to capture screenshot: %w", domain.ErrRender, err)
	}
	r.logger.Printf("  Captured %dx%d screenshot (%d bytes).", r.opts.Width, r.opts.Height, len(img))
	return img, nil
}

// browserProcess is the part of *launcher.Launcher that teardown needs.
type browserProcess interface {
	Kill()
	Cleanup()
}

// teardown ends a launched browser on every exit path. A graceful close makes
// the process exit by itself; Kill is only needed when there is no connection
// or the close failed. Cleanup then waits for the exit and removes the profile.
func teardown(closeBrowser func() error, proc browserProcess, logger *log.Logger) {
	closed := false
	if closeBrowser != nil {
		if err := closeBrowser(); err != nil {
			logger.Printf("  Browser close failed, killing it: %v", err)
		} else {
			closed = true
		}
	}
	if !closed {
		proc.Kill()
	}
	proc.Cleanup()
}
