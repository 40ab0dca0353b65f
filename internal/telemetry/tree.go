package telemetry

import (
	"sort"
	"strings"
)

// Separator splits telemetry keys into tree levels.
const Separator = "/"

// Node is one level of the data tree. A node carrying a Key is a bindable
// leaf: it stands for a whole telemetry value and hides anything below it.
type Node struct {
	Name   string
	UID    string // key prefix up to and including this level
	Key    string
	Fields []Field

	children map[string]*Node
	order    []string
}

// Leaf reports whether the node is bindable.
func (n *Node) Leaf() bool { return n.Key != "" }

// Label is the text shown for the node: bindable leaves also show their key.
func (n *Node) Label() string {
	if n.Leaf() {
		return n.Name + " [" + n.Key + "]"
	}
	return n.Name
}

// Tree is the hierarchy built from a set of flat telemetry keys. Node UIDs
// are key prefixes, so they stay stable between refreshes and a view can keep
// its expansion and selection by UID.
type Tree struct {
	root  *Node
	nodes map[string]*Node
}

// BuildTree splits each key on Separator and hangs its fields on the last
// level. Keys are inserted in sorted order; when a key is also the prefix of
// another, the shorter key wins and the longer one stays hidden below it.
func BuildTree(values map[string][]Field) *Tree {
	t := &Tree{
		root:  &Node{children: map[string]*Node{}},
		nodes: map[string]*Node{},
	}
	t.nodes[""] = t.root

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, Separator)
		n := t.root
		for i, part := range parts {
			uid := strings.Join(parts[:i+1], Separator)
			child, ok := n.children[part]
			if !ok {
				child = &Node{Name: part, UID: uid, children: map[string]*Node{}}
				n.children[part] = child
				n.order = append(n.order, part)
				t.nodes[uid] = child
			}
			n = child
		}
		if !n.Leaf() {
			n.Key = key
			n.Fields = values[key]
		}
	}
	for _, n := range t.nodes {
		sort.Strings(n.order)
	}
	return t
}

// Node returns the node with the given UID. The root has UID "".
func (t *Tree) Node(uid string) (*Node, bool) {
	n, ok := t.nodes[uid]
	return n, ok
}

// ChildUIDs lists the visible children of uid.
func (t *Tree) ChildUIDs(uid string) []string {
	n, ok := t.nodes[uid]
	if !ok || n.Leaf() {
		return nil
	}
	out := make([]string, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.children[name].UID)
	}
	return out
}

// IsBranch reports whether uid has visible children.
func (t *Tree) IsBranch(uid string) bool {
	return len(t.ChildUIDs(uid)) > 0
}

// Keys returns every visible bindable key in display order.
func (t *Tree) Keys() []string {
	var keys []string
	t.walk("", func(n *Node) {
		if n.Leaf() {
			keys = append(keys, n.Key)
		}
	})
	return keys
}

// Len is the number of visible bindable leaves.
func (t *Tree) Len() int {
	return len(t.Keys())
}

func (t *Tree) walk(uid string, fn func(*Node)) {
	for _, c := range t.ChildUIDs(uid) {
		fn(t.nodes[c])
		t.walk(c, fn)
	}
}
