package scanner

import "fmt"

// Kind identifies the lexical class of a token.
type Kind uint8

const (
	Illegal Kind = iota
	EOF
	EOL

	// payload-bearing kinds
	String
	Variable
	Comment

	// commands
	Locate
	LocateNoScroll
	Type
	Click
	Refresh
	TryAgain
	Screenshot
	ReadTo
	URL
	Press
	Chill
	Select
	DragTo
	Upload
	AcceptAlert
	DismissAlert

	// statement keywords
	If
	Then
	And
	Save
	As
	CatchError
	Under
	UnderActiveElement
)

var kindNames = [...]string{
	Illegal:            "ILLEGAL",
	EOF:                "EOF",
	EOL:                "EOL",
	String:             "STRING",
	Variable:           "VARIABLE",
	Comment:            "COMMENT",
	Locate:             "locate",
	LocateNoScroll:     "locate-no-scroll",
	Type:               "type",
	Click:              "click",
	Refresh:            "refresh",
	TryAgain:           "try-again",
	Screenshot:         "screenshot",
	ReadTo:             "read-to",
	URL:                "url",
	Press:              "press",
	Chill:              "chill",
	Select:             "select",
	DragTo:             "drag-to",
	Upload:             "upload",
	AcceptAlert:        "accept-alert",
	DismissAlert:       "dismiss-alert",
	If:                 "if",
	Then:               "then",
	And:                "and",
	Save:               "save",
	As:                 "as",
	CatchError:         "catch-error:",
	Under:              "under",
	UnderActiveElement: "under-active-element",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsCommand reports whether k starts a browser command.
func (k Kind) IsCommand() bool {
	return k >= Locate && k <= DismissAlert
}

// keywords maps the exact source spelling to its kind.
var keywords = func() map[string]Kind {
	m := make(map[string]Kind)
	for k := Locate; k <= UnderActiveElement; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

// Keyword returns the keyword kind for word, if it is one.
func Keyword(word string) (Kind, bool) {
	k, ok := keywords[word]
	return k, ok
}

// Token is a single lexical unit. Lexeme holds the dequoted text for
// string literals, the name for variables and the full line for comments.
type Token struct {
	Kind   Kind
	Line   int
	Lexeme string
}

func (t Token) String() string {
	switch t.Kind {
	case String:
		return fmt.Sprintf("%q", t.Lexeme)
	case EOL:
		return "end of line"
	case EOF:
		return "end of file"
	case Illegal, Variable, Comment:
		return t.Lexeme
	default:
		return t.Kind.String()
	}
}
