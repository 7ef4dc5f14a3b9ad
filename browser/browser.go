// Package browser defines the capability surface the interpreter drives.
// Concrete drivers live in sub-packages.
package browser

import (
	"context"
	"errors"
)

var (
	// ErrNoAlert is returned when an alert action is requested but no dialog is open.
	ErrNoAlert = errors.New("no alert is open")

	// ErrNoParent is returned by Element.Parent at the document root.
	ErrNoParent = errors.New("element has no parent")

	// ErrNotSelect is returned when selecting an option on an element that is not a <select>.
	ErrNotSelect = errors.New("element is not a select")

	// ErrOptionNotFound is returned when no option carries the requested visible text.
	ErrOptionNotFound = errors.New("no option with that text")

	// ErrInvalidExpression is returned for query expressions the driver cannot evaluate.
	ErrInvalidExpression = errors.New("invalid query expression")

	// ErrStaleElement is returned when acting on an element that left the document.
	ErrStaleElement = errors.New("element is no longer attached to the document")
)

// Key names a special keyboard key.
type Key string

const (
	KeyEnter Key = "Enter"
)

// Driver is one browser session.
type Driver interface {
	// Navigate loads url in the current page.
	Navigate(ctx context.Context, url string) error

	// Refresh reloads the current page.
	Refresh(ctx context.Context) error

	// FindAll returns every element in the document matching by.
	FindAll(ctx context.Context, by By) ([]Element, error)

	// ActiveElement returns the element that currently has focus.
	ActiveElement(ctx context.Context) (Element, error)

	// Screenshot captures the current page as image bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	AcceptAlert(ctx context.Context) error
	DismissAlert(ctx context.Context) error

	// Close ends the session and releases its resources.
	Close() error
}

// HighlightBorder is the CSS border drawn around a highlighted element.
const HighlightBorder = "5px solid purple"

// Highlighter is implemented by elements that can draw HighlightBorder
// around themselves.
type Highlighter interface {
	Highlight(ctx context.Context, on bool) error
}

// Element is a handle to a node in the page. Handles may go stale when the
// page changes; IsPresent reports whether it is still attached.
type Element interface {
	// FindAll returns descendants of this element matching by. by is
	// rendered as a relative expression.
	FindAll(ctx context.Context, by By) ([]Element, error)

	Parent(ctx context.Context) (Element, error)
	TagName(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, bool, error)
	Text(ctx context.Context) (string, error)
	IsDisplayed(ctx context.Context) (bool, error)
	IsPresent(ctx context.Context) bool

	ScrollIntoView(ctx context.Context) error
	WaitClickable(ctx context.Context) error
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	PressKey(ctx context.Context, key Key) error

	// SelectByText picks the option whose visible text equals text.
	SelectByText(ctx context.Context, text string) error

	// UploadFile hands an absolute file path to a file input.
	UploadFile(ctx context.Context, path string) error

	// DragTo drags this element onto target.
	DragTo(ctx context.Context, target Element) error
}
