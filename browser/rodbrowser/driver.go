// Package rodbrowser drives Chromium over the DevTools protocol with go-rod.
package rodbrowser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/hairizuanbinnoorazman/uiscript/browser"
)

var (
	_ browser.Driver  = (*Driver)(nil)
	_ browser.Element = (*Element)(nil)
)

// Options controls how the browser is started.
type Options struct {
	// ControlURL attaches to an already running browser instead of launching one.
	ControlURL string
	// Bin is the browser executable. Empty means look it up, downloading if needed.
	Bin      string
	Headless bool
	Width    int
	Height   int
}

// Driver is one Chromium page.
type Driver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// Launch starts (or attaches to) a browser and opens a blank page.
func Launch(ctx context.Context, opts Options) (*Driver, error) {
	d := &Driver{}

	controlURL := opts.ControlURL
	if controlURL == "" {
		bin := opts.Bin
		if bin == "" {
			bin, _ = launcher.LookPath()
		}
		l := launcher.New().Context(ctx).Headless(opts.Headless)
		if bin != "" {
			l = l.Bin(bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		d.launcher = l
		controlURL = u
	}

	d.browser = rod.New().ControlURL(controlURL)
	if err := d.browser.Connect(); err != nil {
		d.shutdown()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := d.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	d.page = page

	if opts.Width > 0 && opts.Height > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}

	return d, nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	p := d.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return p.WaitLoad()
}

func (d *Driver) Refresh(ctx context.Context) error {
	p := d.page.Context(ctx)
	if err := p.Reload(); err != nil {
		return fmt.Errorf("failed to reload page: %w", err)
	}
	return p.WaitLoad()
}

func (d *Driver) FindAll(ctx context.Context, by browser.By) ([]browser.Element, error) {
	expr, err := by.Expression(false)
	if err != nil {
		return nil, err
	}
	els, err := d.page.Context(ctx).ElementsX(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", browser.ErrInvalidExpression, expr, err)
	}
	return wrap(els), nil
}

func (d *Driver) ActiveElement(ctx context.Context) (browser.Element, error) {
	el, err := d.page.Context(ctx).ElementByJS(rod.Eval(`() => document.activeElement`))
	if err != nil {
		return nil, fmt.Errorf("failed to get active element: %w", err)
	}
	return &Element{el: el}, nil
}

// Screenshot captures the viewport as PNG.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	return d.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (d *Driver) AcceptAlert(ctx context.Context) error {
	return d.handleDialog(ctx, true)
}

func (d *Driver) DismissAlert(ctx context.Context) error {
	return d.handleDialog(ctx, false)
}

func (d *Driver) handleDialog(ctx context.Context, accept bool) error {
	err := proto.PageHandleJavaScriptDialog{Accept: accept}.Call(d.page.Context(ctx))
	if err == nil {
		return nil
	}
	var cdpErr *cdp.Error
	if errors.As(err, &cdpErr) && strings.Contains(strings.ToLower(cdpErr.Message), "no dialog") {
		return browser.ErrNoAlert
	}
	return err
}

// Close closes the browser and, when it was launched here, removes its profile.
func (d *Driver) Close() error {
	var err error
	if d.browser != nil {
		err = d.browser.Close()
	}
	d.shutdown()
	return err
}

func (d *Driver) shutdown() {
	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher.Cleanup()
		d.launcher = nil
	}
}

func wrap(els rod.Elements) []browser.Element {
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = &Element{el: el}
	}
	return out
}
