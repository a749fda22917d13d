package resource

import "strings"

// keyNode is an ordered tree built from dotted keys, used to write nested
// JSON and YAML documents.
type keyNode struct {
	name     string
	leaf     bool
	entry    Entry
	children []*keyNode
}

func (n *keyNode) child(name string) *keyNode {
	for _, c := range n.children {
		if !c.leaf && c.name == name {
			return c
		}
	}
	return nil
}

func (n *keyNode) hasLeaf(name string) bool {
	for _, c := range n.children {
		if c.leaf && c.name == name {
			return true
		}
	}
	return false
}

// buildTree nests entries by their dotted keys. A key whose prefix is
// already a value is kept flat under its full name so that it reads back
// unchanged.
func buildTree(entries []Entry) *keyNode {
	root := &keyNode{}
	for _, e := range entries {
		parts := strings.Split(e.Key, ".")
		node := root
		placed := false
		for i, part := range parts[:len(parts)-1] {
			if part == "" || node.hasLeaf(part) {
				node.children = append(node.children, &keyNode{name: strings.Join(parts[i:], "."), leaf: true, entry: e})
				placed = true
				break
			}
			next := node.child(part)
			if next == nil {
				next = &keyNode{name: part}
				node.children = append(node.children, next)
			}
			node = next
		}
		if !placed {
			node.children = append(node.children, &keyNode{name: parts[len(parts)-1], leaf: true, entry: e})
		}
	}
	return root
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
