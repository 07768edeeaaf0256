package share

import (
	"context"
	"strings"
)

// ItemKind is the type of a shared item.
type ItemKind string

const (
	ItemText ItemKind = "text"
	ItemURL  ItemKind = "url"
	ItemFile ItemKind = "file"
)

// Item is one thing handed to a Presenter. For files Value is an absolute
// path the presenter may read until the Completion resolves.
type Item struct {
	Kind     ItemKind `json:"kind"`
	Value    string   `json:"value"`
	Name     string   `json:"name,omitempty"`
	MIMEType string   `json:"mimeType,omitempty"`
}

// Request is what a Presenter is asked to show.
type Request struct {
	Title string `json:"title,omitempty"`
	Items []Item `json:"items"`
}

// CombinedText joins the text and URL items with a newline, for targets that
// take a single string.
func (r Request) CombinedText() string {
	var parts []string
	for _, it := range r.Items {
		if it.Kind == ItemText || it.Kind == ItemURL {
			parts = append(parts, it.Value)
		}
	}
	return strings.Join(parts, "\n")
}

// Files returns the file items of r.
func (r Request) Files() []Item {
	var out []Item
	for _, it := range r.Items {
		if it.Kind == ItemFile {
			out = append(out, it)
		}
	}
	return out
}

// URL returns the first URL item, if any.
func (r Request) URL() (string, bool) {
	for _, it := range r.Items {
		if it.Kind == ItemURL {
			return it.Value, true
		}
	}
	return "", false
}

// Has reports whether r carries an item of the given kind.
func (r Request) Has(kind ItemKind) bool {
	for _, it := range r.Items {
		if it.Kind == kind {
			return true
		}
	}
	return false
}

// Kinds lists the item kinds of r in order.
func (r Request) Kinds() []string {
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, string(it.Kind))
	}
	return out
}

// Presenter shows a native share affordance. Present must return promptly;
// the share UI itself reports back through the returned Completion, which
// must eventually resolve, including when the user cancels.
type Presenter interface {
	Present(ctx context.Context, req Request) *Completion
}

// Availability is implemented by presenters that can tell in advance whether
// a request can be shown.
type Availability interface {
	CanShare(req Request) bool
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(ctx context.Context, req Request) *Completion

func (f PresenterFunc) Present(ctx context.Context, req Request) *Completion {
	return f(ctx, req)
}
