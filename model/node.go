package model

// NodeIDSeparator separates the layer prefix from the running number in
// node IDs, e.g. "0.3" is the fourth terminal and "1.2" a foundational unit.
const NodeIDSeparator = "."

// EdgeIDSeparator joins parent and child IDs into an edge ID
const EdgeIDSeparator = "->"

// Edge is a directed relation from a parent node to a child node, carrying
// a category tag and a remote flag. Non-remote (primary) edges form the
// spanning tree of their layer; remote edges are additional reentrant
// references that never imply ownership.
type Edge struct {
	parent *Node
	child  *Node
	tag    string
	remote bool
	attrib Metadata
}

// ID returns the edge ID in the form "parentID->childID"
func (e *Edge) ID() string {
	return e.parent.id + EdgeIDSeparator + e.child.id
}

// Parent returns the source node of the edge
func (e *Edge) Parent() *Node { return e.parent }

// Child returns the target node of the edge
func (e *Edge) Child() *Node { return e.child }

// Tag returns the category of the edge
func (e *Edge) Tag() string { return e.tag }

// Remote reports whether the edge is a reentrant (non-tree) reference
func (e *Edge) Remote() bool { return e.remote }

// Attrib returns the mutable attribute map of the edge
func (e *Edge) Attrib() Metadata { return e.attrib }

// Node is a vertex in the annotation graph. It is owned by exactly one
// layer for its entire lifetime and keeps two separate outgoing edge
// collections (primary and remote, both in insertion order) plus incoming
// back-references, split the same way. The split keeps the one-primary-
// parent invariant mechanically checkable.
type Node struct {
	id      string
	tag     string
	layer   *Layer
	passage *Passage
	attrib  Metadata
	extra   Metadata
	// outgoing edges
	primary []*Edge
	remotes []*Edge
	// incoming back-references, never owning
	inPrimary []*Edge
	inRemotes []*Edge
}

// ID returns the node ID, stable across serialization round-trips
func (n *Node) ID() string { return n.id }

// Tag returns the node kind/category tag
func (n *Node) Tag() string { return n.tag }

// Layer returns the layer owning the node
func (n *Node) Layer() *Layer { return n.layer }

// Passage returns the passage the node belongs to
func (n *Node) Passage() *Passage { return n.passage }

// Attrib returns the mutable attribute map of the node
func (n *Node) Attrib() Metadata { return n.attrib }

// Extra returns the scratch metadata map, not part of structural equality.
// Collaborators such as the POS tagger write their annotations here.
func (n *Node) Extra() Metadata { return n.extra }

// Edges returns the outgoing edges of the node in insertion order,
// primary first, then remote edges if includeRemote is true.
func (n *Node) Edges(includeRemote bool) []*Edge {
	edges := make([]*Edge, 0, len(n.primary)+len(n.remotes))
	edges = append(edges, n.primary...)
	if includeRemote {
		edges = append(edges, n.remotes...)
	}
	return edges
}

// Incoming returns the incoming edges of the node, primary first
func (n *Node) Incoming(includeRemote bool) []*Edge {
	edges := make([]*Edge, 0, len(n.inPrimary)+len(n.inRemotes))
	edges = append(edges, n.inPrimary...)
	if includeRemote {
		edges = append(edges, n.inRemotes...)
	}
	return edges
}

// Children returns the targets of the outgoing edges. The default tree
// view excludes remote edges; pass includeRemote to opt in.
func (n *Node) Children(includeRemote bool) []*Node {
	edges := n.Edges(includeRemote)
	children := make([]*Node, len(edges))
	for i, e := range edges {
		children[i] = e.child
	}
	return children
}

// Parents returns the sources of the incoming edges
func (n *Node) Parents(includeRemote bool) []*Node {
	edges := n.Incoming(includeRemote)
	parents := make([]*Node, len(edges))
	for i, e := range edges {
		parents[i] = e.parent
	}
	return parents
}

// PrimaryIncoming returns the single primary incoming edge, nil for heads
func (n *Node) PrimaryIncoming() *Edge {
	if len(n.inPrimary) == 0 {
		return nil
	}
	return n.inPrimary[0]
}

// PrimaryParent returns the parent via the primary incoming edge, nil for heads
func (n *Node) PrimaryParent() *Node {
	e := n.PrimaryIncoming()
	if e == nil {
		return nil
	}
	return e.parent
}

func removeEdge(edges []*Edge, e *Edge) []*Edge {
	for i, candidate := range edges {
		if candidate == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}
