package types

import "errors"

// Container is a hierarchical store of nodes. Callers attach to a
// backend, open nodes by path, work with their attributes, and detach
// when done.
type Container interface {
	// Attach opens the backend described by config, creating DataDir and
	// the container file if needed.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	// After Detach, operations return ErrContainerDetached.
	Detach() error

	// Root returns the root node "/".
	Root() (Node, error)

	// Group returns the node at an absolute path.
	// Returns ErrNodeNotFound if no node has the path.
	Group(path string) (Node, error)

	// CreateGroup creates a node under an existing parent.
	// Returns ErrNodeExists if the path is taken, ErrNodeNotFound if the
	// parent is missing.
	CreateGroup(path string) (Node, error)

	// DeleteGroup removes a node, its descendants and their attributes.
	// The root cannot be deleted.
	DeleteGroup(path string) error

	// Groups returns every node path in lexical order, root first.
	Groups() ([]string, error)
}

// Node is an addressable location in a container that owns an attribute
// table.
type Node interface {
	ID() NodeID
	Path() string
	Attrs() AttributeTable
}

// Container lifecycle and node errors.
var (
	ErrContainerDetached = errors.New("container is detached")
	ErrAlreadyAttached   = errors.New("container is already attached")
	ErrNodeNotFound      = errors.New("node not found")
	ErrNodeExists        = errors.New("node already exists")
	ErrInvalidPath       = errors.New("invalid node path")
)
