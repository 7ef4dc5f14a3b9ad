package interpreter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hairizuanbinnoorazman/uiscript/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopPage = `<html><body>
<h2>Heading</h2>
<label for="colour">Colour</label>
<select id="colour"><option>Red</option><optgroup label="Blues"><option>Dark blue</option></optgroup></select>
<span id="total">42.00</span>
<input type="file" name="attachment">
<ul id="todo"><li>Card</li></ul>
<ul id="done"><li>Finished</li></ul>
<form action="/search"><input id="search" placeholder="Search"></form>
</body></html>`

func TestInterpreter_Commands(t *testing.T) {
	tests := []struct {
		name      string
		script    string
		wantError error
		check     func(t *testing.T, in *Interpreter, d browser.Driver)
	}{
		{
			name:   "select through option",
			script: `locate "Red" and select "Dark blue"`,
			check: func(t *testing.T, in *Interpreter, d browser.Driver) {
				opt := findOne(t, d, browser.XPath("//option[@selected]"))
				text, err := opt.Text(context.Background())
				require.NoError(t, err)
				assert.Equal(t, "Dark blue", text)
			},
		},
		{
			name:   "select through label",
			script: `locate "Colour" and select "Red"`,
			check: func(t *testing.T, in *Interpreter, d browser.Driver) {
				opt := findOne(t, d, browser.XPath("//option[@selected]"))
				text, err := opt.Text(context.Background())
				require.NoError(t, err)
				assert.Equal(t, "Red", text)
			},
		},
		{
			name:      "select on non select element",
			script:    `locate "Heading" and select "Red"`,
			wantError: browser.ErrNotSelect,
		},
		{
			name:   "read to variable",
			script: "locate \"total\" and read-to amount\nlocate amount",
			check: func(t *testing.T, in *Interpreter, d browser.Driver) {
				v, ok := in.Environment().Get("amount")
				require.True(t, ok)
				assert.Equal(t, "42.00", v)
				assert.Equal(t, "total", attribute(t, in.focused, "id"))
			},
		},
		{
			name:   "drag to target",
			script: `locate "Card" and drag-to "done"`,
			check: func(t *testing.T, in *Interpreter, d browser.Driver) {
				card := findOne(t, d, browser.XPath("//li[text()='Card']"))
				parent, err := card.Parent(context.Background())
				require.NoError(t, err)
				assert.Equal(t, "done", attribute(t, parent, "id"))
			},
		},
		{
			name:   "press enter",
			script: `locate "Search" and type "shoes" and press "Enter"`,
		},
		{
			name:      "press unsupported key",
			script:    `locate "Search" and press "Tab"`,
			wantError: ErrUnsupportedKey,
		},
		{
			name:      "chill with invalid duration",
			script:    `chill "soon"`,
			wantError: ErrInvalidWait,
		},
		{
			name:   "chill zero seconds",
			script: `chill "0"`,
		},
		{
			name:      "accept alert without alert",
			script:    `accept-alert`,
			wantError: browser.ErrNoAlert,
		},
		{
			name:      "dismiss alert without alert",
			script:    `dismiss-alert`,
			wantError: browser.ErrNoAlert,
		},
		{
			name:   "locate without scrolling",
			script: `locate-no-scroll "Heading"`,
			check: func(t *testing.T, in *Interpreter, d browser.Driver) {
				assert.Equal(t, "h2", tagOf(t, in.focused))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, d, _ := newTestInterpreter(t, shopPage)

			rep := runScript(t, in, tt.script)

			if tt.wantError != nil {
				require.True(t, rep.OutstandingError)
				require.NotEmpty(t, rep.Statements)
				assert.Contains(t, rep.Statements[len(rep.Statements)-1].Error, tt.wantError.Error())
				return
			}
			require.True(t, rep.Passed(), "statements: %+v", rep.Statements)
			if tt.check != nil {
				tt.check(t, in, d)
			}
		})
	}
}

func TestInterpreter_Upload(t *testing.T) {
	in, d, _ := newTestInterpreter(t, shopPage)

	file := filepath.Join(t.TempDir(), "invoice.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0644))
	want, err := filepath.EvalSymlinks(file)
	require.NoError(t, err)

	rep := runScript(t, in, fmt.Sprintf(`locate "attachment" and upload "%s"`, file))

	require.True(t, rep.Passed(), "statements: %+v", rep.Statements)
	assert.Equal(t, want, attribute(t, findOne(t, d, browser.Name("attachment")), "value"))
}

func TestInterpreter_UploadMissingFile(t *testing.T) {
	in, _, _ := newTestInterpreter(t, shopPage)

	missing := filepath.Join(t.TempDir(), "nope.txt")
	rep := runScript(t, in, fmt.Sprintf(`locate "attachment" and upload "%s"`, missing))

	assert.True(t, rep.OutstandingError)
	assert.Contains(t, rep.Statements[0].Error, "failed to resolve upload path")
}

func TestInterpreter_ScreenshotAttachesToStatement(t *testing.T) {
	in, _, _ := newTestInterpreter(t, shopPage)

	rep := runScript(t, in, "screenshot\nlocate \"Heading\"\nscreenshot and screenshot")

	require.True(t, rep.Passed())
	require.Len(t, rep.Statements, 3)
	assert.Len(t, rep.Statements[0].Screenshots, 1)
	assert.Empty(t, rep.Statements[1].Screenshots)
	assert.Len(t, rep.Statements[2].Screenshots, 2)
	assert.Equal(t, 3, rep.ScreenshotCount())
	assert.Contains(t, string(rep.Statements[0].Screenshots[0]), "Heading")
}
