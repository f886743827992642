package vfs

import (
	"fmt"
	"strings"
)

// Cursor is the session state a path is resolved against
type Cursor interface {
	CurrentPath() string
	User() string
}

// ResolveError reports where resolution stopped
type ResolveError struct {
	// Path is the absolute prefix consumed up to and including the failing segment
	Path string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// HomeDir returns the home directory of user
func HomeDir(user string) string {
	return "/home/" + user
}

// Expand rewrites ~ and relative expressions into an absolute, uncleaned path
func Expand(expr string, cur Cursor) string {
	switch {
	case expr == "~":
		expr = HomeDir(cur.User())
	case strings.HasPrefix(expr, "~/"):
		expr = HomeDir(cur.User()) + expr[1:]
	}

	if strings.HasPrefix(expr, "/") {
		return expr
	}

	base := cur.CurrentPath()
	if base == "/" {
		return "/" + expr
	}
	return base + "/" + expr
}

// Resolve maps a path expression to a node of t
func Resolve(t *Tree, expr string, cur Cursor) (NodeID, error) {
	abs := Expand(expr, cur)

	id := RootID
	consumed := ""
	for _, seg := range strings.Split(abs, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			n, _ := t.Node(id)
			id = n.Parent
			consumed = t.Path(id)
			continue
		}

		if consumed == "/" {
			consumed = ""
		}
		consumed += "/" + seg

		n, _ := t.Node(id)
		if !n.IsDir() {
			return -1, &ResolveError{Path: consumed, Err: ErrNotADirectory}
		}
		next, ok := t.Lookup(id, seg)
		if !ok {
			return -1, &ResolveError{Path: consumed, Err: ErrNotFound}
		}
		id = next
	}

	return id, nil
}
