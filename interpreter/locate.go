package interpreter

import (
	"context"
	"errors"
	"fmt"

	"github.com/hairizuanbinnoorazman/uiscript/browser"
)

// strategy is one step of the locator chain.
type strategy struct {
	name string
	by   func(text string) browser.By
	// unfiltered strategies accept hidden elements.
	unfiltered bool
	// last takes the last displayed match instead of the first.
	last bool
	// documentOnly strategies are skipped for scoped searches.
	documentOnly bool
}

func xpathf(format string) func(string) browser.By {
	return func(text string) browser.By {
		return browser.XPath(fmt.Sprintf(format, browser.Literal(text)))
	}
}

// locatorChain is tried in order; the first strategy with a match wins.
var locatorChain = []strategy{
	{name: "placeholder", by: xpathf("//input[@placeholder=%s]")},
	{name: "placeholder-contains", by: xpathf("//input[contains(@placeholder, %s)]")},
	{name: "text", by: xpathf("//*[text()=%s]")},
	{name: "text-contains", by: xpathf("//*[contains(text(), %s)]")},
	{name: "title", by: xpathf("//*[@title=%s]")},
	{name: "aria-label", by: xpathf("//*[@aria-label=%s]")},
	{name: "id", by: browser.ID},
	{name: "name", by: browser.Name},
	{name: "class", by: browser.ClassName},
	{name: "tag", by: browser.TagName},
	{name: "xpath", by: browser.XPath, unfiltered: true},
	{name: "contents", by: xpathf("//*[contains(., %s)]"), last: true, documentOnly: true},
}

// locate resolves text to an element, retrying the chain with the backoff
// schedule. On success the element becomes the focused element.
func (in *Interpreter) locate(ctx context.Context, text string, scroll bool) (browser.Element, error) {
	for attempt, wait := range in.backoff {
		if err := in.sleep(ctx, wait); err != nil {
			return nil, err
		}

		el, err := in.findOnce(ctx, text)
		if err != nil {
			return nil, err
		}
		if el != nil {
			in.focused = el
			in.lastLocator = text
			in.highlightLocated(ctx, el)
			if scroll {
				if err := el.ScrollIntoView(ctx); err != nil {
					in.logger.Debug(ctx, "scroll into view failed", map[string]interface{}{
						"locator": text,
						"error":   err.Error(),
					})
				}
			}
			return el, nil
		}

		in.logger.Debug(ctx, "locator did not match", map[string]interface{}{
			"locator": text,
			"attempt": attempt + 1,
		})
	}
	return nil, fmt.Errorf("%w: %q", ErrElementNotFound, text)
}

// findOnce runs the chain a single time. Under a scope base it climbs
// through at most maxScopeClimb ancestors, and searches the whole document
// once the root is passed. Only context errors are returned.
func (in *Interpreter) findOnce(ctx context.Context, text string) (browser.Element, error) {
	if in.scope == nil {
		return in.search(ctx, nil, text)
	}

	base := in.scope
	for climb := 0; ; climb++ {
		el, err := in.search(ctx, base, text)
		if el != nil || err != nil {
			return el, err
		}
		if climb >= in.maxScopeClimb {
			return nil, nil
		}

		parent, err := base.Parent(ctx)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			return in.search(ctx, nil, text)
		}
		base = parent
	}
}

// search runs every strategy against root, or the document when root is nil.
func (in *Interpreter) search(ctx context.Context, root browser.Element, text string) (browser.Element, error) {
	for _, st := range locatorChain {
		if st.documentOnly && root != nil {
			continue
		}

		var (
			els []browser.Element
			err error
		)
		if root == nil {
			els, err = in.driver.FindAll(ctx, st.by(text))
		} else {
			els, err = root.FindAll(ctx, st.by(text))
		}
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			if !errors.Is(err, browser.ErrInvalidExpression) {
				in.logger.Debug(ctx, "locator query failed", map[string]interface{}{
					"strategy": st.name,
					"error":    err.Error(),
				})
			}
			continue
		}

		if el := pick(ctx, els, st); el != nil {
			in.logger.Debug(ctx, "locator matched", map[string]interface{}{
				"locator":  text,
				"strategy": st.name,
				"scoped":   root != nil,
			})
			return el, nil
		}
	}
	return nil, nil
}

func pick(ctx context.Context, els []browser.Element, st strategy) browser.Element {
	if len(els) == 0 {
		return nil
	}
	if st.unfiltered {
		return els[0]
	}
	if st.last {
		for i := len(els) - 1; i >= 0; i-- {
			if ok, err := els[i].IsDisplayed(ctx); err == nil && ok {
				return els[i]
			}
		}
		return nil
	}
	for _, el := range els {
		if ok, err := el.IsDisplayed(ctx); err == nil && ok {
			return el
		}
	}
	return nil
}

// currentElement returns the focused element, locating it again through the
// last locator if it went stale.
func (in *Interpreter) currentElement(ctx context.Context) (browser.Element, error) {
	if in.focused == nil {
		return nil, ErrNoElement
	}
	if in.focused.IsPresent(ctx) {
		return in.focused, nil
	}
	if in.lastLocator == "" {
		return nil, browser.ErrStaleElement
	}

	in.logger.Debug(ctx, "focused element went stale, locating again", map[string]interface{}{
		"locator": in.lastLocator,
	})
	return in.locate(ctx, in.lastLocator, false)
}

var controlTags = []browser.By{
	browser.TagName("input"),
	browser.TagName("textarea"),
	browser.TagName("select"),
}

func isControl(tag string) bool {
	return tag == "input" || tag == "textarea" || tag == "select"
}

// resolveLabel swaps a focused <label> for the form control it describes.
// If no control is found the label itself is returned.
func (in *Interpreter) resolveLabel(ctx context.Context, el browser.Element) browser.Element {
	tag, err := el.TagName(ctx)
	if err != nil || tag != "label" {
		return el
	}

	redirect := func(control browser.Element, how string) browser.Element {
		in.logger.Debug(ctx, "redirected label to control", map[string]interface{}{
			"via": how,
		})
		in.focused = control
		return control
	}

	if c := firstControl(ctx, el); c != nil {
		return redirect(c, "descendant")
	}

	if target, ok, _ := el.Attribute(ctx, "for"); ok && target != "" {
		for _, by := range []browser.By{browser.ID(target), browser.Name(target)} {
			if els, err := in.driver.FindAll(ctx, by); err == nil && len(els) > 0 {
				return redirect(els[0], "for")
			}
		}
	}

	if sib, err := el.FindAll(ctx, browser.XPath("./following-sibling::*[1]")); err == nil && len(sib) > 0 {
		if t, err := sib[0].TagName(ctx); err == nil && isControl(t) {
			return redirect(sib[0], "sibling")
		}
	}

	cur := el
	for i := 0; i < in.labelDepth; i++ {
		parent, err := cur.Parent(ctx)
		if err != nil {
			break
		}
		if c := firstControl(ctx, parent); c != nil {
			return redirect(c, "ancestor")
		}
		cur = parent
	}

	return el
}

func firstControl(ctx context.Context, root browser.Element) browser.Element {
	for _, by := range controlTags {
		els, err := root.FindAll(ctx, by)
		if err != nil {
			continue
		}
		for _, c := range els {
			if ok, err := c.IsDisplayed(ctx); err == nil && ok {
				return c
			}
		}
	}
	return nil
}

// highlightLocated moves the highlight border onto el. Failures are logged
// and ignored.
func (in *Interpreter) highlightLocated(ctx context.Context, el browser.Element) {
	if !in.highlight {
		return
	}
	if prev, ok := in.highlighted.(browser.Highlighter); ok && in.highlighted.IsPresent(ctx) {
		if err := prev.Highlight(ctx, false); err != nil {
			in.logger.Debug(ctx, "failed to clear highlight", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	in.highlighted = nil

	h, ok := el.(browser.Highlighter)
	if !ok {
		return
	}
	if err := h.Highlight(ctx, true); err != nil {
		in.logger.Debug(ctx, "failed to highlight element", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	in.highlighted = el
}
