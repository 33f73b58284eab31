package model

import (
	"fmt"
	"strconv"
)

// Passage is the top-level container of an annotated document. It owns all
// layers and all nodes (an arena indexed by stable string IDs) and is the
// unit of serialization.
//
// A passage is a mutable aggregate with at most one writer at a time;
// read-only traversals may run concurrently with each other but never with
// a structural mutation. External synchronization is the caller's
// responsibility.
type Passage struct {
	id     string
	attrib Metadata

	layers     map[string]*Layer
	layerOrder []string
	nodes      map[string]*Node

	// version counts structural edits; derived caches (terminal yields)
	// compare against it instead of being invalidated eagerly
	version      uint64
	yieldCache   map[string][]*Node
	yieldVersion uint64
}

// NewPassage creates an empty passage with the given document ID
func NewPassage(id string) *Passage {
	return &Passage{
		id:     id,
		attrib: Metadata{},
		layers: make(map[string]*Layer),
		nodes:  make(map[string]*Node),
	}
}

// ID returns the document ID of the passage
func (p *Passage) ID() string { return p.id }

// Attrib returns the mutable document-level attribute map
func (p *Passage) Attrib() Metadata { return p.attrib }

// Version returns the structural version, incremented on every mutation
func (p *Passage) Version() uint64 { return p.version }

// Layer returns the layer with the given ID
func (p *Passage) Layer(id string) (*Layer, bool) {
	l, ok := p.layers[id]
	return l, ok
}

// Layers returns all layers in creation order
func (p *Passage) Layers() []*Layer {
	layers := make([]*Layer, 0, len(p.layerOrder))
	for _, id := range p.layerOrder {
		layers = append(layers, p.layers[id])
	}
	return layers
}

// ByID returns the node with the given ID
func (p *Passage) ByID(id string) (*Node, bool) {
	n, ok := p.nodes[id]
	return n, ok
}

// NodeCount returns the number of nodes across all layers
func (p *Passage) NodeCount() int { return len(p.nodes) }

// CreateNode allocates a node owned by the given layer, assigning the next
// free ID of the layer. Returns ErrInvalidLayer if the layer does not
// belong to this passage.
func (p *Passage) CreateNode(l *Layer, tag string, attrib Metadata) (*Node, error) {
	if l == nil || l.passage != p {
		return nil, ErrInvalidLayer
	}
	l.nextNum++
	id := l.id + NodeIDSeparator + strconv.Itoa(l.nextNum)
	return p.CreateNodeWithID(l, id, tag, attrib)
}

// CreateNodeWithID allocates a node with an explicit ID, used when decoding
// serialized passages whose IDs must be preserved. Returns ErrInvalidLayer
// if the layer is foreign, ErrDuplicateNodeID if the ID is taken.
func (p *Passage) CreateNodeWithID(l *Layer, id, tag string, attrib Metadata) (*Node, error) {
	if l == nil || l.passage != p {
		return nil, ErrInvalidLayer
	}
	if _, exists := p.nodes[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNodeID, id)
	}
	if attrib == nil {
		attrib = Metadata{}
	}
	if num := nodeNumber(id); num > l.nextNum && num != int(^uint(0)>>1) {
		l.nextNum = num
	}
	n := &Node{
		id:      id,
		tag:     tag,
		layer:   l,
		passage: p,
		attrib:  attrib,
		extra:   Metadata{},
	}
	p.nodes[id] = n
	l.all = append(l.all, n)
	p.version++
	return n, nil
}

// AddEdge adds a directed edge from parent to child.
//
// For non-remote edges the primary-tree invariant is enforced before
// anything is applied: ErrDuplicateParent if the child already has a
// primary incoming edge, ErrCycleViolation if the edge would close a cycle
// among primary edges. A failed call leaves the passage unchanged.
func (p *Passage) AddEdge(parent, child *Node, tag string, remote bool) (*Edge, error) {
	if parent == nil || parent.passage != p || child == nil || child.passage != p {
		return nil, ErrMissingNode
	}
	if !remote {
		if len(child.inPrimary) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParent, child.id)
		}
		// A cycle closes exactly when the child dominates the parent, so
		// walking the parent's primary ancestry suffices.
		for cur := parent; cur != nil; cur = cur.PrimaryParent() {
			if cur == child {
				return nil, fmt.Errorf("%w: %s%s%s", ErrCycleViolation, parent.id, EdgeIDSeparator, child.id)
			}
		}
	}
	e := &Edge{
		parent: parent,
		child:  child,
		tag:    tag,
		remote: remote,
		attrib: Metadata{},
	}
	if remote {
		parent.remotes = append(parent.remotes, e)
		child.inRemotes = append(child.inRemotes, e)
	} else {
		parent.primary = append(parent.primary, e)
		child.inPrimary = append(child.inPrimary, e)
	}
	p.version++
	return e, nil
}

// RemoveNode deletes the node and all edges referencing it. Children of the
// same layer which are left with neither a primary nor a remote incoming
// edge are unreachable and removed recursively; anything still referenced
// by a remote edge survives.
func (p *Passage) RemoveNode(n *Node) {
	if n == nil || p.nodes[n.id] != n {
		return
	}
	p.version++

	for _, e := range n.inPrimary {
		e.parent.primary = removeEdge(e.parent.primary, e)
	}
	for _, e := range n.inRemotes {
		e.parent.remotes = removeEdge(e.parent.remotes, e)
	}

	var orphanCandidates []*Node
	for _, e := range n.primary {
		e.child.inPrimary = removeEdge(e.child.inPrimary, e)
		if e.child.layer == n.layer {
			orphanCandidates = append(orphanCandidates, e.child)
		}
	}
	for _, e := range n.remotes {
		e.child.inRemotes = removeEdge(e.child.inRemotes, e)
	}

	delete(p.nodes, n.id)
	for i, candidate := range n.layer.all {
		if candidate == n {
			n.layer.all = append(n.layer.all[:i], n.layer.all[i+1:]...)
			break
		}
	}

	for _, child := range orphanCandidates {
		if len(child.inPrimary) == 0 && len(child.inRemotes) == 0 {
			p.RemoveNode(child)
		}
	}
}

// Root returns the unique top-level node of the foundational layer
func (p *Passage) Root() (*Node, error) {
	l, ok := p.layers[FoundationalLayerID]
	if !ok {
		return nil, fmt.Errorf("%w: no foundational layer", ErrMissingNode)
	}
	heads := l.Heads()
	for _, head := range heads {
		if head.tag == NodeTagFoundational {
			return head, nil
		}
	}
	return nil, fmt.Errorf("%w: foundational layer has no head", ErrMissingNode)
}

// Equal reports structural equality with another passage: same layers,
// same nodes (ID, tag, attributes) and same edges including remote flags
// and categories. Extra (scratch) metadata is not compared.
func (p *Passage) Equal(other *Passage) bool {
	if other == nil || p.id != other.id || !p.attrib.Equal(other.attrib) {
		return false
	}
	if len(p.layers) != len(other.layers) || len(p.nodes) != len(other.nodes) {
		return false
	}
	for id, l := range p.layers {
		ol, ok := other.layers[id]
		if !ok || !l.attrib.Equal(ol.attrib) {
			return false
		}
	}
	for id, n := range p.nodes {
		on, ok := other.nodes[id]
		if !ok || n.tag != on.tag || !n.attrib.Equal(on.attrib) || n.layer.id != on.layer.id {
			return false
		}
		if !edgesEqual(n.primary, on.primary) || !edgesEqual(n.remotes, on.remotes) {
			return false
		}
	}
	return true
}

func edgesEqual(a, b []*Edge) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].tag != b[i].tag || a[i].child.id != b[i].child.id ||
			a[i].remote != b[i].remote || !a[i].attrib.Equal(b[i].attrib) {
			return false
		}
	}
	return true
}

// cachedYield returns the memoized terminal yield for a node, if still valid
func (p *Passage) cachedYield(nodeID string) ([]*Node, bool) {
	if p.yieldCache == nil || p.yieldVersion != p.version {
		return nil, false
	}
	nodes, ok := p.yieldCache[nodeID]
	return nodes, ok
}

// storeYield memoizes a terminal yield for the current structural version
func (p *Passage) storeYield(nodeID string, nodes []*Node) {
	if p.yieldCache == nil || p.yieldVersion != p.version {
		p.yieldCache = make(map[string][]*Node)
		p.yieldVersion = p.version
	}
	p.yieldCache[nodeID] = nodes
}
