package store

import (
	"fmt"
	"strings"
	"sync"
)

// ZNodeType distinguishes a standard node from an ephemeral one, whose
// lifetime is bound to the session that created it.
type ZNodeType int

const (
	ZNodeStandard ZNodeType = iota
	ZNodeEphemeral
)

// ZNode is one node of the in-memory data tree. The real data-tree
// component (watches, multi-op transactions, four-letter commands) is an
// out-of-scope named collaborator per spec.md §1; ZNode here is a
// deliberately small stand-in that's just enough to give the snapshot
// and commit-processor code something real to drive and to derive an
// ephemeral-node index from.
type ZNode struct {
	Name               string
	Version            int64
	Children           map[string]*ZNode
	NodeType           ZNodeType
	OwnerSession       int64
	NextSequentialNode int
	Data               []byte
}

func newZNode(name string, nodeType ZNodeType, owner int64, data []byte) *ZNode {
	return &ZNode{
		Name:         name,
		Children:     map[string]*ZNode{},
		NodeType:     nodeType,
		OwnerSession: owner,
		Data:         data,
	}
}

// Tree is the root of the data tree plus the mutex that serializes all
// access to it.
type Tree struct {
	root *ZNode
	mu   sync.RWMutex
}

// NewTree returns a tree containing only the root node.
func NewTree() *Tree {
	return &Tree{root: newZNode("", ZNodeStandard, 0, nil)}
}

func splitPath(path string) []string {
	return strings.Split(path, "/")[1:]
}

func findZNode(start *ZNode, names []string) *ZNode {
	node := start
	for _, name := range names {
		z, ok := node.Children[name]
		if !ok {
			return nil
		}
		node = z
	}
	return node
}

func newFullName(name string, ancestors []string) string {
	if len(ancestors) == 0 {
		return "/" + name
	}
	return "/" + strings.Join(ancestors, "/") + "/" + name
}

// ValidatePath checks the structural requirements every path must meet:
// starts at root, isn't the root itself, doesn't end in a trailing
// slash, and has no empty segment.
func ValidatePath(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("store: path %q does not start at the root", path)
	}
	if path == "/" {
		return fmt.Errorf("store: path cannot be the root")
	}
	if strings.HasSuffix(path, "/") {
		return fmt.Errorf("store: path %q should end in a node name, not '/'", path)
	}
	for _, name := range splitPath(path) {
		if name == "" {
			return fmt.Errorf("store: path %q contains an empty node name", path)
		}
	}
	return nil
}

// IsValidVersion implements the ZooKeeper convention that -1 means
// "skip the version check".
func IsValidVersion(expected, actual int64) bool {
	return expected == -1 || expected == actual
}

// Create adds a new node under path's parent. sequential and ephemeral
// mirror the ZooKeeper create flags; owner is the creating session,
// recorded on ephemeral nodes so the caller can index them.
func (t *Tree) Create(path string, data []byte, sequential, ephemeral bool, owner int64) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	names := splitPath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	parent := findZNode(t.root, names[:len(names)-1])
	if parent == nil {
		return "", fmt.Errorf("store: ancestor of %q is missing", path)
	}
	if parent.NodeType == ZNodeEphemeral {
		return "", fmt.Errorf("store: ephemeral nodes cannot have children")
	}

	newName := names[len(names)-1]
	if sequential {
		newName = fmt.Sprintf("%s_%d", newName, parent.NextSequentialNode)
	}
	if _, ok := parent.Children[newName]; ok {
		return "", fmt.Errorf("store: node %q already exists under %q", newName, path)
	}

	nodeType := ZNodeStandard
	if ephemeral {
		nodeType = ZNodeEphemeral
	}
	ancestors := names[:len(names)-1]
	fullName := newFullName(newName, ancestors)

	parent.Children[newName] = newZNode(fullName, nodeType, owner, data)
	if sequential {
		parent.NextSequentialNode++
	}
	return fullName, nil
}

// Delete removes the leaf node at path if its version matches (or -1 is
// passed to skip the check). Deleting a node that does not exist is a
// no-op success, matching ZooKeeper's delete semantics.
func (t *Tree) Delete(path string, version int64) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	names := splitPath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	parent := findZNode(t.root, names[:len(names)-1])
	if parent == nil {
		return fmt.Errorf("store: ancestor of %q is missing", path)
	}
	name := names[len(names)-1]
	node, ok := parent.Children[name]
	if !ok {
		return nil
	}
	if !IsValidVersion(version, node.Version) {
		return fmt.Errorf("store: invalid version for %q: expected %d, actual %d", path, version, node.Version)
	}
	if len(node.Children) > 0 {
		return fmt.Errorf("store: %q has children, only leaf nodes can be deleted", path)
	}
	delete(parent.Children, name)
	return nil
}

// Exists reports whether a node is present at path.
func (t *Tree) Exists(path string) (bool, error) {
	if err := ValidatePath(path); err != nil {
		return false, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return findZNode(t.root, splitPath(path)) != nil, nil
}

// GetData returns the data and version stored at path.
func (t *Tree) GetData(path string) ([]byte, int64, error) {
	if err := ValidatePath(path); err != nil {
		return nil, 0, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	node := findZNode(t.root, splitPath(path))
	if node == nil {
		return nil, 0, fmt.Errorf("store: node %q does not exist", path)
	}
	return node.Data, node.Version, nil
}

// SetData overwrites the data at path if version matches, bumping the
// node's version.
func (t *Tree) SetData(path string, data []byte, version int64) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	node := findZNode(t.root, splitPath(path))
	if node == nil {
		return fmt.Errorf("store: node %q does not exist", path)
	}
	if !IsValidVersion(version, node.Version) {
		return fmt.Errorf("store: invalid version for %q: expected %d, actual %d", path, version, node.Version)
	}
	node.Data = data
	node.Version++
	return nil
}

// GetChildren returns the names of path's immediate children.
func (t *Tree) GetChildren(path string) ([]string, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	node := findZNode(t.root, splitPath(path))
	if node == nil {
		return nil, fmt.Errorf("store: node %q does not exist", path)
	}
	var names []string
	for name := range node.Children {
		names = append(names, name)
	}
	return names, nil
}
