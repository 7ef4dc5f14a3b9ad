package interpreter

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/uiscript/browser"
	"github.com/hairizuanbinnoorazman/uiscript/parser"
)

func (in *Interpreter) execCmd(ctx context.Context, cmd parser.Cmd) error {
	if err := in.sleep(ctx, in.commandDelay); err != nil {
		return err
	}

	in.logger.Debug(ctx, "executing command", map[string]interface{}{
		"command": cmd.String(),
	})

	switch c := cmd.(type) {
	case parser.Locate:
		return in.locateParam(ctx, c.Param, true)
	case parser.LocateNoScroll:
		return in.locateParam(ctx, c.Param, false)
	case parser.Type:
		return in.typeText(ctx, c.Param)
	case parser.Click:
		return in.click(ctx)
	case parser.Refresh:
		return in.driver.Refresh(ctx)
	case parser.TryAgain:
		return in.tryAgain(ctx)
	case parser.Screenshot:
		img, err := in.driver.Screenshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to take screenshot: %w", err)
		}
		in.screenshots = append(in.screenshots, img)
		return nil
	case parser.ReadTo:
		el, err := in.currentElement(ctx)
		if err != nil {
			return err
		}
		text, err := el.Text(ctx)
		if err != nil {
			return fmt.Errorf("failed to read element text: %w", err)
		}
		in.env.Set(c.Variable, text)
		return nil
	case parser.URL:
		u, err := in.env.Resolve(c.Param)
		if err != nil {
			return err
		}
		return in.driver.Navigate(ctx, u)
	case parser.Press:
		return in.press(ctx, c.Param)
	case parser.Chill:
		return in.chill(ctx, c.Param)
	case parser.Select:
		return in.selectOption(ctx, c.Param)
	case parser.DragTo:
		return in.dragTo(ctx, c.Param)
	case parser.Upload:
		return in.upload(ctx, c.Param)
	case parser.AcceptAlert:
		return in.driver.AcceptAlert(ctx)
	case parser.DismissAlert:
		return in.driver.DismissAlert(ctx)
	}
	return fmt.Errorf("unsupported command %q", cmd.String())
}

func (in *Interpreter) locateParam(ctx context.Context, p parser.CmdParam, scroll bool) error {
	text, err := in.env.Resolve(p)
	if err != nil {
		return err
	}
	_, err = in.locate(ctx, text, scroll)
	return err
}

// typeText clicks the focused element and types into whatever is active
// afterwards, which lets rich widgets swap in their own input.
func (in *Interpreter) typeText(ctx context.Context, p parser.CmdParam) error {
	text, err := in.env.Resolve(p)
	if err != nil {
		return err
	}
	el, err := in.currentElement(ctx)
	if err != nil {
		return err
	}
	el = in.resolveLabel(ctx, el)

	if err := el.Click(ctx); err != nil {
		return fmt.Errorf("failed to click element before typing: %w", err)
	}
	if err := in.sleep(ctx, in.typeSettle); err != nil {
		return err
	}

	active, err := in.driver.ActiveElement(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active element: %w", err)
	}
	if err := active.Clear(ctx); err != nil {
		in.logger.Debug(ctx, "clearing element failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := active.SendKeys(ctx, text); err != nil {
		return fmt.Errorf("failed to type: %w", err)
	}
	return nil
}

func (in *Interpreter) click(ctx context.Context) error {
	el, err := in.currentElement(ctx)
	if err != nil {
		return err
	}
	el = in.resolveLabel(ctx, el)

	if err := el.WaitClickable(ctx); err != nil {
		in.logger.Debug(ctx, "element not reported clickable, clicking anyway", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := el.Click(ctx); err != nil {
		return fmt.Errorf("failed to click: %w", err)
	}
	return nil
}

func (in *Interpreter) selectOption(ctx context.Context, p parser.CmdParam) error {
	text, err := in.env.Resolve(p)
	if err != nil {
		return err
	}
	el, err := in.currentElement(ctx)
	if err != nil {
		return err
	}
	el = in.resolveLabel(ctx, el)

	tag, err := el.TagName(ctx)
	if err != nil {
		return err
	}
	// An option (possibly inside an optgroup) selects through its <select>.
	for tag == "option" || tag == "optgroup" {
		if el, err = el.Parent(ctx); err != nil {
			return err
		}
		if tag, err = el.TagName(ctx); err != nil {
			return err
		}
	}
	if tag != "select" {
		return fmt.Errorf("%w: got <%s>", browser.ErrNotSelect, tag)
	}
	return el.SelectByText(ctx, text)
}

func (in *Interpreter) press(ctx context.Context, p parser.CmdParam) error {
	key, err := in.env.Resolve(p)
	if err != nil {
		return err
	}
	if browser.Key(key) != browser.KeyEnter {
		return fmt.Errorf("%w: %q", ErrUnsupportedKey, key)
	}
	el, err := in.currentElement(ctx)
	if err != nil {
		return err
	}
	return el.PressKey(ctx, browser.KeyEnter)
}

func (in *Interpreter) chill(ctx context.Context, p parser.CmdParam) error {
	v, err := in.env.Resolve(p)
	if err != nil {
		return err
	}
	secs, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidWait, v)
	}
	return in.sleep(ctx, time.Duration(secs)*time.Second)
}

// dragTo locates the target, which moves focus to it, and drags the
// previously focused element onto it.
func (in *Interpreter) dragTo(ctx context.Context, p parser.CmdParam) error {
	text, err := in.env.Resolve(p)
	if err != nil {
		return err
	}
	src, err := in.currentElement(ctx)
	if err != nil {
		return err
	}
	dst, err := in.locate(ctx, text, true)
	if err != nil {
		return err
	}
	if err := src.DragTo(ctx, dst); err != nil {
		return fmt.Errorf("failed to drag: %w", err)
	}
	return nil
}

func (in *Interpreter) upload(ctx context.Context, p parser.CmdParam) error {
	raw, err := in.env.Resolve(p)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return fmt.Errorf("failed to resolve upload path %q: %w", raw, err)
	}
	path, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fmt.Errorf("failed to resolve upload path %q: %w", raw, err)
	}
	el, err := in.currentElement(ctx)
	if err != nil {
		return err
	}
	return el.UploadFile(ctx, path)
}
