// Package vfs holds the in-memory filesystem tree behind the PiNet terminal.
//
// Nodes live in an arena owned by a single Tree and refer to each other by
// NodeID. Parent links are kept so that paths can be rebuilt and ".." can
// be resolved; children lists keep insertion order, which is also display
// order. The tree is append-only.
package vfs

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes files from directories
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NodeID indexes a node inside its Tree
type NodeID int

// RootID is the id of "/" in every tree
const RootID NodeID = 0

// Default permission strings
const (
	DirPermissions  = "drwxr-xr-x"
	FilePermissions = "-rw-r--r--"
)

var (
	ErrNotFound      = errors.New("no such file or directory")
	ErrNotADirectory = errors.New("not a directory")
	ErrIsADirectory  = errors.New("is a directory")
	ErrDuplicateName = errors.New("file exists")
	ErrInvalidName   = errors.New("invalid name")
)

// Node is a file or directory
type Node struct {
	ID          NodeID
	Name        string
	Kind        Kind
	Content     string
	Children    []NodeID
	Size        int64
	ModTime     time.Time
	Permissions string
	Parent      NodeID

	attached bool
}

// IsDir reports whether the node is a directory
func (n *Node) IsDir() bool {
	return n.Kind == KindDir
}

// Attrs carries optional attributes for CreateNode
type Attrs struct {
	Content     string
	Size        int64
	Permissions string
}

// Tree owns every node of one filesystem
type Tree struct {
	nodes []*Node
	clock func() time.Time
}

// Option configures a Tree
type Option func(*Tree)

// WithClock replaces time.Now as the source of node timestamps
func WithClock(clock func() time.Time) Option {
	return func(t *Tree) {
		t.clock = clock
	}
}

// NewTree creates a tree holding only the root directory
func NewTree(opts ...Option) *Tree {
	t := &Tree{clock: time.Now}
	for _, opt := range opts {
		opt(t)
	}

	root := &Node{
		ID:          RootID,
		Name:        "/",
		Kind:        KindDir,
		Children:    []NodeID{},
		ModTime:     t.clock(),
		Permissions: DirPermissions,
		Parent:      RootID,
		attached:    true,
	}
	t.nodes = append(t.nodes, root)
	return t
}

// CreateNode builds a detached node stamped with the current time.
// It does not become part of the tree until AppendChild is called.
func (t *Tree) CreateNode(kind Kind, name string, attrs Attrs) (*Node, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	n := &Node{
		ID:          -1,
		Name:        name,
		Kind:        kind,
		ModTime:     t.clock(),
		Permissions: attrs.Permissions,
	}

	switch kind {
	case KindDir:
		n.Children = []NodeID{}
		if n.Permissions == "" {
			n.Permissions = DirPermissions
		}
	case KindFile:
		n.Content = attrs.Content
		n.Size = attrs.Size
		if n.Size == 0 {
			n.Size = int64(len(attrs.Content))
		}
		if n.Permissions == "" {
			n.Permissions = FilePermissions
		}
	default:
		return nil, fmt.Errorf("create %q: unknown kind %v", name, kind)
	}

	return n, nil
}

// ValidateName rejects names that cannot be a single path segment
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case strings.Contains(name, "/"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return nil
}

// AppendChild attaches child as the last entry of parent
func (t *Tree) AppendChild(parent NodeID, child *Node) (NodeID, error) {
	p, err := t.Node(parent)
	if err != nil {
		return -1, err
	}
	if child == nil {
		return -1, fmt.Errorf("append to %s: nil node", t.Path(parent))
	}
	if child.attached {
		return -1, fmt.Errorf("append %q to %s: node already attached", child.Name, t.Path(parent))
	}
	if !p.IsDir() {
		return -1, fmt.Errorf("append %q to %s: %w", child.Name, t.Path(parent), ErrNotADirectory)
	}
	if _, ok := t.Lookup(parent, child.Name); ok {
		return -1, fmt.Errorf("append %q to %s: %w", child.Name, t.Path(parent), ErrDuplicateName)
	}

	child.ID = NodeID(len(t.nodes))
	child.Parent = parent
	child.attached = true
	t.nodes = append(t.nodes, child)
	p.Children = append(p.Children, child.ID)
	p.ModTime = t.clock()

	return child.ID, nil
}

// Node returns the node with the given id
func (t *Tree) Node(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	return t.nodes[id], nil
}

// Root returns the root directory
func (t *Tree) Root() *Node {
	return t.nodes[RootID]
}

// Len returns the number of nodes including the root
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Children returns the children of dir in insertion order.
// Files have no children.
func (t *Tree) Children(dir NodeID) []*Node {
	d, err := t.Node(dir)
	if err != nil || !d.IsDir() {
		return nil
	}

	out := make([]*Node, 0, len(d.Children))
	for _, id := range d.Children {
		out = append(out, t.nodes[id])
	}
	return out
}

// Lookup finds a direct child of dir by exact name
func (t *Tree) Lookup(dir NodeID, name string) (NodeID, bool) {
	d, err := t.Node(dir)
	if err != nil || !d.IsDir() {
		return -1, false
	}
	for _, id := range d.Children {
		if t.nodes[id].Name == name {
			return id, true
		}
	}
	return -1, false
}

// Path rebuilds the absolute path of a node from its parent links
func (t *Tree) Path(id NodeID) string {
	if id == RootID {
		return "/"
	}

	var segments []string
	for cur := id; cur != RootID; {
		n, err := t.Node(cur)
		if err != nil {
			return ""
		}
		segments = append(segments, n.Name)
		cur = n.Parent
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return "/" + strings.Join(segments, "/")
}
