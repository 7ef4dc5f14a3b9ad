package rodbrowser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/hairizuanbinnoorazman/uiscript/browser"
)

// Element wraps a remote DOM node.
type Element struct {
	el *rod.Element
}

func (e *Element) FindAll(ctx context.Context, by browser.By) ([]browser.Element, error) {
	expr, err := by.Expression(true)
	if err != nil {
		return nil, err
	}
	els, err := e.el.Context(ctx).ElementsX(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", browser.ErrInvalidExpression, expr, err)
	}
	return wrap(els), nil
}

func (e *Element) Parent(ctx context.Context) (browser.Element, error) {
	tag, err := e.TagName(ctx)
	if err != nil {
		return nil, err
	}
	if tag == "html" {
		return nil, browser.ErrNoParent
	}
	p, err := e.el.Context(ctx).Parent()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", browser.ErrNoParent, err)
	}
	return &Element{el: p}, nil
}

func (e *Element) TagName(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	return e.el.Context(ctx).Visible()
}

func (e *Element) IsPresent(ctx context.Context) bool {
	res, err := e.el.Context(ctx).Eval(`() => this.isConnected`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	return e.el.Context(ctx).ScrollIntoView()
}

func (e *Element) WaitClickable(ctx context.Context) error {
	_, err := e.el.Context(ctx).WaitInteractable()
	return err
}

func (e *Element) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *Element) Clear(ctx context.Context) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input("")
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	return e.el.Context(ctx).Input(text)
}

func (e *Element) PressKey(ctx context.Context, key browser.Key) error {
	switch key {
	case browser.KeyEnter:
		return e.el.Context(ctx).Type(input.Enter)
	}
	return fmt.Errorf("unsupported key %q", key)
}

func (e *Element) SelectByText(ctx context.Context, text string) error {
	tag, err := e.TagName(ctx)
	if err != nil {
		return err
	}
	if tag != "select" {
		return browser.ErrNotSelect
	}
	if err := e.el.Context(ctx).Select([]string{text}, true, rod.SelectorTypeText); err != nil {
		return fmt.Errorf("%w: %q: %v", browser.ErrOptionNotFound, text, err)
	}
	return nil
}

// Highlight sets or clears the inline border of the node.
func (e *Element) Highlight(ctx context.Context, on bool) error {
	border := ""
	if on {
		border = browser.HighlightBorder
	}
	_, err := e.el.Context(ctx).Eval(`(border) => { this.style.border = border }`, border)
	return err
}

func (e *Element) UploadFile(ctx context.Context, path string) error {
	return e.el.Context(ctx).SetFiles([]string{path})
}

// DragTo presses the mouse on the centre of e, moves to the centre of
// target in small steps and releases.
func (e *Element) DragTo(ctx context.Context, target browser.Element) error {
	t, ok := target.(*Element)
	if !ok {
		return errors.New("drag target belongs to another driver")
	}

	from, err := center(e.el.Context(ctx))
	if err != nil {
		return err
	}
	to, err := center(t.el.Context(ctx))
	if err != nil {
		return err
	}

	mouse := e.el.Page().Context(ctx).Mouse
	if err := mouse.MoveTo(from); err != nil {
		return err
	}
	if err := mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if err := mouse.MoveLinear(to, 10); err != nil {
		return err
	}
	return mouse.Up(proto.InputMouseButtonLeft, 1)
}

func center(el *rod.Element) (proto.Point, error) {
	shape, err := el.Shape()
	if err != nil {
		return proto.Point{}, err
	}
	if len(shape.Quads) == 0 {
		return proto.Point{}, errors.New("element has no shape")
	}
	quad := shape.Quads[0]
	return proto.Point{
		X: (quad[0] + quad[2] + quad[4] + quad[6]) / 4,
		Y: (quad[1] + quad[3] + quad[5] + quad[7]) / 4,
	}, nil
}
