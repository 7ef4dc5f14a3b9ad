package rodbrowser

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/hairizuanbinnoorazman/uiscript/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><body>
<form>
  <label for="email">Email</label>
  <input id="email" name="email" placeholder="you@example.com">
  <select id="plan"><option>Free</option><option>Pro</option></select>
  <button type="button" onclick="document.getElementById('status').textContent='Saved'">Save</button>
</form>
<p id="status">Idle</p>
</body></html>`

// launch starts a real Chromium. It needs a browser on the machine, so it
// only runs when SUI_BROWSER_TEST is set.
func launch(t *testing.T) *Driver {
	t.Helper()
	if os.Getenv("SUI_BROWSER_TEST") == "" {
		t.Skip("set SUI_BROWSER_TEST=1 to run against a real browser")
	}

	d, err := Launch(context.Background(), Options{Headless: true, Width: 800, Height: 600})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	p := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(p, []byte(page), 0644))
	require.NoError(t, d.Navigate(context.Background(), (&url.URL{Scheme: "file", Path: p}).String()))
	return d
}

func findOne(t *testing.T, d *Driver, by browser.By) browser.Element {
	t.Helper()
	els, err := d.FindAll(context.Background(), by)
	require.NoError(t, err)
	require.Len(t, els, 1)
	return els[0]
}

func TestDriver_Interactions(t *testing.T) {
	d := launch(t)
	ctx := context.Background()

	email := findOne(t, d, browser.ID("email"))
	tag, err := email.TagName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "input", tag)

	placeholder, ok, err := email.Attribute(ctx, "placeholder")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "you@example.com", placeholder)

	require.NoError(t, email.Click(ctx))
	require.NoError(t, email.SendKeys(ctx, "a@b.c"))
	active, err := d.ActiveElement(ctx)
	require.NoError(t, err)
	id, _, err := active.Attribute(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, "email", id)

	plan := findOne(t, d, browser.ID("plan"))
	require.NoError(t, plan.SelectByText(ctx, "Pro"))
	assert.ErrorIs(t, email.SelectByText(ctx, "Pro"), browser.ErrNotSelect)

	save := findOne(t, d, browser.TagName("button"))
	require.NoError(t, save.Click(ctx))
	status, err := findOne(t, d, browser.ID("status")).Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Saved", status)

	shot, err := d.Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), shot[:4])

	assert.ErrorIs(t, d.AcceptAlert(ctx), browser.ErrNoAlert)
}

func TestElement_Parent(t *testing.T) {
	d := launch(t)
	ctx := context.Background()

	root := findOne(t, d, browser.TagName("html"))
	_, err := root.Parent(ctx)
	assert.ErrorIs(t, err, browser.ErrNoParent)

	form, err := findOne(t, d, browser.ID("email")).Parent(ctx)
	require.NoError(t, err)
	tag, err := form.TagName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "form", tag)
}
