package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestScan_Kinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Kind
	}{
		{
			name: "empty input",
			src:  "",
			want: []Kind{EOF},
		},
		{
			name: "single command with literal",
			src:  `locate "Username"`,
			want: []Kind{Locate, String, EOL, EOF},
		},
		{
			name: "chained commands",
			src:  `locate "Password" and type "secret"`,
			want: []Kind{Locate, String, And, Type, String, EOL, EOF},
		},
		{
			name: "comment line is not tokenized further",
			src:  `# locate "this" and click`,
			want: []Kind{Comment, EOL, EOF},
		},
		{
			name: "save statement with variable",
			src:  `save "admin" as user`,
			want: []Kind{Save, String, As, Variable, EOL, EOF},
		},
		{
			name: "catch error and try again",
			src:  `catch-error: refresh and try-again`,
			want: []Kind{CatchError, Refresh, And, TryAgain, EOL, EOF},
		},
		{
			name: "blank lines still end with EOL",
			src:  "click\n\nrefresh\n",
			want: []Kind{Click, EOL, EOL, Refresh, EOL, EOF},
		},
		{
			name: "keywords are case sensitive",
			src:  "Click",
			want: []Kind{Variable, EOL, EOF},
		},
		{
			name: "under active element",
			src:  `under-active-element locate "Save" and click`,
			want: []Kind{UnderActiveElement, Locate, String, And, Click, EOL, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(Scan(tt.src)))
		})
	}
}

func TestScan_StringLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"single word", `locate "Login"`, "Login"},
		{"multiple words", `locate "Log In Now"`, "Log In Now"},
		{"double spaces preserved", `locate "a  b"`, "a  b"},
		{"leading space", `locate " a"`, " a"},
		{"trailing space", `locate "a "`, "a "},
		{"empty literal", `locate ""`, ""},
		{"keyword inside literal", `locate "click and save"`, "click and save"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Scan(tt.src)
			require.Len(t, tokens, 4)
			assert.Equal(t, String, tokens[1].Kind)
			assert.Equal(t, tt.want, tokens[1].Lexeme)
		})
	}
}

func TestScan_LineNumbers(t *testing.T) {
	tokens := Scan("url \"https://example.com\"\n# note\n  click  ")

	require.Equal(t, []Kind{URL, String, EOL, Comment, EOL, Click, EOL, EOF}, kinds(tokens))
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[3].Line)
	assert.Equal(t, "# note", tokens[3].Lexeme)
	assert.Equal(t, 3, tokens[5].Line)
}

func TestScan_UnterminatedLiteral(t *testing.T) {
	tokens := Scan("locate \"Log In\nclick")

	require.Equal(t, []Kind{Locate, Illegal, EOL, Click, EOL, EOF}, kinds(tokens))
	assert.Equal(t, `"Log In`, tokens[1].Lexeme)
	assert.Equal(t, 1, tokens[1].Line)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "catch-error:", CatchError.String())
	assert.Equal(t, "locate-no-scroll", LocateNoScroll.String())
	assert.Equal(t, "Kind(200)", Kind(200).String())
	assert.True(t, DismissAlert.IsCommand())
	assert.False(t, Save.IsCommand())
}
