package shell

import (
	"strings"

	"github.com/pinet-os/pinetsh/internal/vfs"
)

// Cursor is the mutable per-session state: working directory and user.
// It satisfies vfs.Cursor.
type Cursor struct {
	path string
	user string
}

// NewCursor starts a cursor in the user's home directory
func NewCursor(user string) *Cursor {
	return &Cursor{
		path: vfs.HomeDir(user),
		user: user,
	}
}

func (c *Cursor) CurrentPath() string { return c.path }
func (c *Cursor) User() string        { return c.user }
func (c *Cursor) Home() string        { return vfs.HomeDir(c.user) }

func (c *Cursor) setPath(path string) {
	c.path = path
}

// parent drops the last segment of the current path; "/" stays "/"
func (c *Cursor) parent() string {
	segments := strings.FieldsFunc(c.path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments[:len(segments)-1], "/")
}

// displayPath abbreviates the home directory to ~ as bash prompts do
func (c *Cursor) displayPath() string {
	home := c.Home()
	switch {
	case c.path == home:
		return "~"
	case strings.HasPrefix(c.path, home+"/"):
		return "~" + strings.TrimPrefix(c.path, home)
	default:
		return c.path
	}
}
