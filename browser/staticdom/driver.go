// Package staticdom is an offline browser driver over parsed HTML. Queries
// run as real XPath against the document; interactions mutate the tree the
// way a browser would mutate the DOM, without running scripts or layout.
package staticdom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/hairizuanbinnoorazman/uiscript/browser"
	"golang.org/x/net/html"
)

var (
	// ErrNoDocument is returned when querying before any page was loaded.
	ErrNoDocument = errors.New("no document loaded")

	// ErrUnsupportedScheme is returned for URLs other than file and http(s).
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
)

var (
	_ browser.Driver  = (*Driver)(nil)
	_ browser.Element = (*Element)(nil)
)

// Driver implements browser.Driver over an in-memory HTML tree. It is not
// safe for concurrent use; each interpreter owns its own Driver.
type Driver struct {
	client *http.Client
	url    string
	source []byte
	doc    *html.Node
	active *html.Node
}

// Option configures a Driver.
type Option func(*Driver)

// WithHTTPClient sets the client used to load http(s) pages.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Driver) {
		d.client = c
	}
}

// New creates a Driver with no document loaded.
func New(opts ...Option) *Driver {
	d := &Driver{
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromString creates a Driver with src already loaded.
func NewFromString(src string, opts ...Option) (*Driver, error) {
	d := New(opts...)
	if err := d.load([]byte(src)); err != nil {
		return nil, err
	}
	return d, nil
}

// URL returns the address of the loaded page, if it came from one.
func (d *Driver) URL() string {
	return d.url
}

// HTML renders the current state of the document.
func (d *Driver) HTML() string {
	if d.doc == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, d.doc); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Driver) load(src []byte) error {
	doc, err := htmlquery.Parse(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("failed to parse html: %w", err)
	}
	d.source = src
	d.doc = doc
	d.active = htmlquery.FindOne(doc, "//body")
	return nil
}

func (d *Driver) fetch(ctx context.Context, raw string) ([]byte, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}

	switch u.Scheme {
	case "":
		return os.ReadFile(raw)
	case "file":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		return os.ReadFile(path)
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
		if err != nil {
			return nil, err
		}
		resp, err := d.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", raw, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("failed to fetch %s: status %d", raw, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
}

// Navigate loads a page from a file path, file:// URL or http(s) URL.
func (d *Driver) Navigate(ctx context.Context, raw string) error {
	src, err := d.fetch(ctx, raw)
	if err != nil {
		return err
	}
	if err := d.load(src); err != nil {
		return err
	}
	d.url = raw
	return nil
}

// Refresh reloads the page from its URL, or restores the original source
// when the page was loaded from a string.
func (d *Driver) Refresh(ctx context.Context) error {
	if d.url != "" {
		return d.Navigate(ctx, d.url)
	}
	if d.source == nil {
		return ErrNoDocument
	}
	return d.load(d.source)
}

// FindAll evaluates by against the whole document.
func (d *Driver) FindAll(ctx context.Context, by browser.By) ([]browser.Element, error) {
	if d.doc == nil {
		return nil, ErrNoDocument
	}
	expr, err := by.Expression(false)
	if err != nil {
		return nil, err
	}
	return d.query(d.doc, expr)
}

func (d *Driver) query(top *html.Node, expr string) ([]browser.Element, error) {
	nodes, err := htmlquery.QueryAll(top, expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", browser.ErrInvalidExpression, expr, err)
	}
	out := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, &Element{d: d, n: n})
		}
	}
	return out, nil
}

// ActiveElement returns the last clicked element, or <body>.
func (d *Driver) ActiveElement(ctx context.Context) (browser.Element, error) {
	if d.doc == nil {
		return nil, ErrNoDocument
	}
	if d.active == nil || !d.attached(d.active) {
		d.active = htmlquery.FindOne(d.doc, "//body")
	}
	if d.active == nil {
		return nil, ErrNoDocument
	}
	return &Element{d: d, n: d.active}, nil
}

// Screenshot returns the serialized document. There is no rendering.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	if d.doc == nil {
		return nil, ErrNoDocument
	}
	return []byte(d.HTML()), nil
}

// AcceptAlert always fails: static pages never open dialogs.
func (d *Driver) AcceptAlert(ctx context.Context) error {
	return browser.ErrNoAlert
}

// DismissAlert always fails: static pages never open dialogs.
func (d *Driver) DismissAlert(ctx context.Context) error {
	return browser.ErrNoAlert
}

// Close drops the document.
func (d *Driver) Close() error {
	d.doc = nil
	d.active = nil
	return nil
}

func (d *Driver) attached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.doc {
			return true
		}
	}
	return false
}
