package browser

import (
	"fmt"
	"strings"
)

// Strategy is the kind of query a By performs.
type Strategy uint8

const (
	ByXPath Strategy = iota
	ByID
	ByName
	ByClassName
	ByTagName
)

func (s Strategy) String() string {
	switch s {
	case ByXPath:
		return "xpath"
	case ByID:
		return "id"
	case ByName:
		return "name"
	case ByClassName:
		return "class name"
	case ByTagName:
		return "tag name"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// By is a query against the page.
type By struct {
	Strategy Strategy
	Value    string
}

func XPath(expr string) By      { return By{Strategy: ByXPath, Value: expr} }
func ID(id string) By           { return By{Strategy: ByID, Value: id} }
func Name(name string) By       { return By{Strategy: ByName, Value: name} }
func ClassName(class string) By { return By{Strategy: ByClassName, Value: class} }
func TagName(tag string) By     { return By{Strategy: ByTagName, Value: tag} }

func (b By) String() string {
	return b.Strategy.String() + "=" + b.Value
}

// Expression renders b as an XPath expression. When scoped is true the
// expression is relative to a context node. Raw XPath values starting with
// "/" are made relative by prefixing ".". It returns ErrInvalidExpression for
// a tag name that cannot be one.
func (b By) Expression(scoped bool) (string, error) {
	prefix := "//"
	if scoped {
		prefix = ".//"
	}

	switch b.Strategy {
	case ByXPath:
		if b.Value == "" {
			return "", ErrInvalidExpression
		}
		if scoped && strings.HasPrefix(b.Value, "/") {
			return "." + b.Value, nil
		}
		return b.Value, nil
	case ByID:
		return prefix + "*[@id=" + Literal(b.Value) + "]", nil
	case ByName:
		return prefix + "*[@name=" + Literal(b.Value) + "]", nil
	case ByClassName:
		if strings.TrimSpace(b.Value) == "" || strings.ContainsAny(b.Value, " \t\n") {
			return "", ErrInvalidExpression
		}
		return prefix + "*[contains(concat(' ', normalize-space(@class), ' '), " +
			Literal(" "+b.Value+" ") + ")]", nil
	case ByTagName:
		if !IsTagName(b.Value) {
			return "", ErrInvalidExpression
		}
		return prefix + strings.ToLower(b.Value), nil
	}
	return "", fmt.Errorf("%w: unknown strategy %d", ErrInvalidExpression, b.Strategy)
}

// Literal quotes s as an XPath string literal. Strings containing both
// quote characters are built with concat().
func Literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	args := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			args = append(args, `"'"`)
		}
		if p != "" {
			args = append(args, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}

// IsTagName reports whether s can be an HTML element name.
func IsTagName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}
