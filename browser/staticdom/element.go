package staticdom

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/hairizuanbinnoorazman/uiscript/browser"
	"golang.org/x/net/html"
)

var (
	// ErrNotClickable is returned when clicking a hidden or disabled element.
	ErrNotClickable = errors.New("element is not clickable")

	// ErrUnsupportedKey is returned for keys the driver cannot simulate.
	ErrUnsupportedKey = errors.New("unsupported key")

	// ErrInvalidDragTarget is returned when dragging onto a foreign element or a descendant.
	ErrInvalidDragTarget = errors.New("invalid drag target")
)

// Tags that never render a box.
var nonRendered = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"title":    true,
	"meta":     true,
	"link":     true,
	"noscript": true,
	"template": true,
	"base":     true,
}

// Element is a node in a Driver's document.
type Element struct {
	d *Driver
	n *html.Node
}

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node {
	return e.n
}

func (e *Element) live() error {
	if !e.d.attached(e.n) {
		return browser.ErrStaleElement
	}
	return nil
}

func (e *Element) FindAll(ctx context.Context, by browser.By) ([]browser.Element, error) {
	if err := e.live(); err != nil {
		return nil, err
	}
	expr, err := by.Expression(true)
	if err != nil {
		return nil, err
	}
	return e.d.query(e.n, expr)
}

func (e *Element) Parent(ctx context.Context) (browser.Element, error) {
	if err := e.live(); err != nil {
		return nil, err
	}
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil, browser.ErrNoParent
	}
	return &Element{d: e.d, n: p}, nil
}

func (e *Element) TagName(ctx context.Context) (string, error) {
	return strings.ToLower(e.n.Data), nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := attr(e.n, name)
	return v, ok, nil
}

// Text returns the element's text with whitespace collapsed.
func (e *Element) Text(ctx context.Context) (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(htmlquery.InnerText(e.n)), " "), nil
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	if err := e.live(); err != nil {
		return false, err
	}
	return displayed(e.n), nil
}

func (e *Element) IsPresent(ctx context.Context) bool {
	return e.d.attached(e.n)
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	return e.live()
}

func (e *Element) WaitClickable(ctx context.Context) error {
	if err := e.live(); err != nil {
		return err
	}
	if !displayed(e.n) {
		return fmt.Errorf("%w: not displayed", ErrNotClickable)
	}
	if _, disabled := attr(e.n, "disabled"); disabled {
		return fmt.Errorf("%w: disabled", ErrNotClickable)
	}
	return nil
}

// Click focuses the element. Clicking a label focuses its control, clicking
// an option selects it and clicking a checkbox or radio toggles it.
func (e *Element) Click(ctx context.Context) error {
	if err := e.live(); err != nil {
		return err
	}
	if !displayed(e.n) {
		return fmt.Errorf("%w: not displayed", ErrNotClickable)
	}

	target := e.n
	switch strings.ToLower(e.n.Data) {
	case "label":
		if control := e.labelControl(); control != nil {
			target = control
		}
	case "option":
		if sel := closest(e.n, "select"); sel != nil {
			selectOption(sel, e.n)
			target = sel
		}
	case "input":
		switch strings.ToLower(htmlquery.SelectAttr(e.n, "type")) {
		case "checkbox":
			if _, on := attr(e.n, "checked"); on {
				removeAttr(e.n, "checked")
			} else {
				setAttr(e.n, "checked", "checked")
			}
		case "radio":
			setAttr(e.n, "checked", "checked")
		}
	}

	e.d.active = target
	return nil
}

func (e *Element) labelControl() *html.Node {
	if id := htmlquery.SelectAttr(e.n, "for"); id != "" {
		if n := htmlquery.FindOne(e.d.doc, "//*[@id="+browser.Literal(id)+"]"); n != nil {
			return n
		}
	}
	return htmlquery.FindOne(e.n, ".//input | .//textarea | .//select")
}

func (e *Element) Clear(ctx context.Context) error {
	if err := e.live(); err != nil {
		return err
	}
	setAttr(e.n, "value", "")
	return nil
}

// SendKeys appends text to the element's value.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	if err := e.live(); err != nil {
		return err
	}
	v, _ := attr(e.n, "value")
	setAttr(e.n, "value", v+text)
	return nil
}

func (e *Element) PressKey(ctx context.Context, key browser.Key) error {
	if err := e.live(); err != nil {
		return err
	}
	if key != browser.KeyEnter {
		return fmt.Errorf("%w: %s", ErrUnsupportedKey, key)
	}
	return nil
}

func (e *Element) SelectByText(ctx context.Context, text string) error {
	if err := e.live(); err != nil {
		return err
	}
	if strings.ToLower(e.n.Data) != "select" {
		return browser.ErrNotSelect
	}
	for _, opt := range htmlquery.Find(e.n, ".//option") {
		if strings.Join(strings.Fields(htmlquery.InnerText(opt)), " ") == text {
			selectOption(e.n, opt)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", browser.ErrOptionNotFound, text)
}

const highlightDecl = "border: " + browser.HighlightBorder + ";"

// Highlight adds or removes the border declaration in the style attribute.
func (e *Element) Highlight(ctx context.Context, on bool) error {
	if err := e.live(); err != nil {
		return err
	}
	style, _ := attr(e.n, "style")
	style = strings.TrimSpace(strings.ReplaceAll(style, highlightDecl, ""))
	if on {
		if style != "" && !strings.HasSuffix(style, ";") {
			style += ";"
		}
		style = strings.TrimSpace(style + " " + highlightDecl)
	}
	if style == "" {
		removeAttr(e.n, "style")
		return nil
	}
	setAttr(e.n, "style", style)
	return nil
}

func (e *Element) UploadFile(ctx context.Context, path string) error {
	if err := e.live(); err != nil {
		return err
	}
	setAttr(e.n, "value", path)
	return nil
}

// DragTo moves the node to the end of target's children.
func (e *Element) DragTo(ctx context.Context, target browser.Element) error {
	if err := e.live(); err != nil {
		return err
	}
	t, ok := target.(*Element)
	if !ok || t.d != e.d {
		return ErrInvalidDragTarget
	}
	if err := t.live(); err != nil {
		return err
	}
	for p := t.n; p != nil; p = p.Parent {
		if p == e.n {
			return fmt.Errorf("%w: target is inside the dragged element", ErrInvalidDragTarget)
		}
	}
	e.n.Parent.RemoveChild(e.n)
	t.n.AppendChild(e.n)
	return nil
}

func displayed(n *html.Node) bool {
	if n.Type == html.ElementNode && strings.ToLower(n.Data) == "input" &&
		strings.ToLower(htmlquery.SelectAttr(n, "type")) == "hidden" {
		return false
	}
	for p := n; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if nonRendered[strings.ToLower(p.Data)] {
			return false
		}
		if _, hidden := attr(p, "hidden"); hidden {
			return false
		}
		style := strings.ReplaceAll(strings.ToLower(htmlquery.SelectAttr(p, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func closest(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && strings.ToLower(p.Data) == tag {
			return p
		}
	}
	return nil
}

func selectOption(sel, opt *html.Node) {
	for _, o := range htmlquery.Find(sel, ".//option") {
		removeAttr(o, "selected")
	}
	setAttr(opt, "selected", "selected")
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}
