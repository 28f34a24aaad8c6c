package canvas

// Index is a derived lookup over a node collection: identifier to slice
// position, and group identifier to the positions of its direct children.
//
// An Index never owns nodes. It stays valid for any collection with the same
// identifiers in the same order and the same ParentID values, which is what
// every transform in this module produces, so a single Index can serve a
// whole batch of fits.
type Index struct {
	byID     map[string]int
	children map[string][]int
	groups   []string
}

// NewIndex builds an index over nodes.
// If identifiers repeat, the last occurrence wins the ID lookup; children are
// still recorded for every occurrence.
func NewIndex(nodes []Node) *Index {
	idx := &Index{
		byID:     make(map[string]int, len(nodes)),
		children: make(map[string][]int),
	}
	for i := range nodes {
		n := &nodes[i]
		idx.byID[n.ID] = i
		if n.ParentID != "" {
			idx.children[n.ParentID] = append(idx.children[n.ParentID], i)
		}
		if n.IsGroup() {
			idx.groups = append(idx.groups, n.ID)
		}
	}
	return idx
}

// Lookup returns the slice position of the node with the given id.
func (idx *Index) Lookup(id string) (int, bool) {
	i, ok := idx.byID[id]
	return i, ok
}

// Children returns the slice positions of the direct children of groupID,
// in collection order. The returned slice must not be modified.
func (idx *Index) Children(groupID string) []int {
	return idx.children[groupID]
}

// Groups returns the identifiers of group-typed nodes in collection order.
// The returned slice must not be modified.
func (idx *Index) Groups() []string {
	return idx.groups
}

// AbsolutePosition returns the canvas-space position of the node with the
// given id by adding up positions along its parent chain.
//
// A parent that is missing from the collection ends the walk, as if the node
// were top level. A cycle in the parent chain also ends the walk. The second
// result is false only when id itself is unknown.
func AbsolutePosition(nodes []Node, idx *Index, id string) (Position, bool) {
	i, ok := idx.Lookup(id)
	if !ok {
		return Position{}, false
	}

	pos := nodes[i].Position
	seen := map[string]bool{id: true}
	parent := nodes[i].ParentID
	for parent != "" && !seen[parent] {
		j, ok := idx.Lookup(parent)
		if !ok {
			break
		}
		seen[parent] = true
		pos = pos.Add(nodes[j].Position.X, nodes[j].Position.Y)
		parent = nodes[j].ParentID
	}
	return pos, true
}

// Depth returns the number of ancestors of the node with the given id that
// exist in the collection. Top-level nodes have depth zero.
func Depth(nodes []Node, idx *Index, id string) int {
	i, ok := idx.Lookup(id)
	if !ok {
		return 0
	}
	depth := 0
	seen := map[string]bool{id: true}
	for parent := nodes[i].ParentID; parent != "" && !seen[parent]; {
		j, ok := idx.Lookup(parent)
		if !ok {
			break
		}
		seen[parent] = true
		depth++
		parent = nodes[j].ParentID
	}
	return depth
}
