// Package h builds HTML for portal views. It is a thin layer over gomponents
// with helpers for the Datastar attributes the runtime relies on.
package h

import (
	"io"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/components"
)

// H is a renderable HTML node: an element, an attribute or text.
type H interface {
	Render(w io.Writer) error
}

func retype(nodes []H) []g.Node {
	if len(nodes) == 0 {
		return nil
	}
	list := make([]g.Node, 0, len(nodes))
	for _, node := range nodes {
		if node == nil {
			continue
		}
		list = append(list, g.Node(node))
	}
	return list
}

// Text renders escaped text.
func Text(s string) H {
	return g.Text(s)
}

// Textf renders escaped formatted text.
func Textf(format string, a ...any) H {
	return g.Textf(format, a...)
}

// Raw renders s without escaping.
func Raw(s string) H {
	return g.Raw(s)
}

// Group renders the nodes one after another without a wrapping element.
func Group(nodes ...H) H {
	return g.Group(retype(nodes))
}

// If renders n only when condition holds.
func If(condition bool, n H) H {
	if !condition || n == nil {
		return nil
	}
	return n
}

// Iff renders the node built by f only when condition holds. f is not called
// otherwise.
func Iff(condition bool, f func() H) H {
	if !condition {
		return nil
	}
	return f()
}

// Map renders f for every item.
func Map[T any](items []T, f func(T) H) H {
	nodes := make([]H, 0, len(items))
	for _, item := range items {
		nodes = append(nodes, f(item))
	}
	return Group(nodes...)
}

// HTML5Props describes a full document.
type HTML5Props struct {
	Title       string
	Description string
	Language    string
	Head        []H
	Body        []H
}

// HTML5 renders a complete HTML5 document.
func HTML5(p HTML5Props) H {
	return components.HTML5(components.HTML5Props{
		Title:       p.Title,
		Description: p.Description,
		Language:    p.Language,
		Head:        retype(p.Head),
		Body:        retype(p.Body),
	})
}
