package model

import (
	"sort"
	"strconv"
	"strings"
)

// Layer is a named collection of nodes sharing a semantic stratum
// (terminal text vs. foundational semantics). It owns its nodes.
type Layer struct {
	id      string
	passage *Passage
	attrib  Metadata
	all     []*Node
	nextNum int
}

// NewLayer creates a layer owned by the passage.
// Returns ErrDuplicateLayer if a layer with the same ID already exists.
func NewLayer(p *Passage, id string, attrib Metadata) (*Layer, error) {
	if _, exists := p.layers[id]; exists {
		return nil, ErrDuplicateLayer
	}
	if attrib == nil {
		attrib = Metadata{}
	}
	l := &Layer{
		id:      id,
		passage: p,
		attrib:  attrib,
	}
	p.layers[id] = l
	p.layerOrder = append(p.layerOrder, id)
	return l, nil
}

// ID returns the layer ID
func (l *Layer) ID() string { return l.id }

// Passage returns the owning passage
func (l *Layer) Passage() *Passage { return l.passage }

// Attrib returns the mutable attribute map of the layer
func (l *Layer) Attrib() Metadata { return l.attrib }

// All returns the nodes of the layer ordered by their running number
func (l *Layer) All() []*Node {
	nodes := make([]*Node, len(l.all))
	copy(nodes, l.all)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodeNumber(nodes[i].id) < nodeNumber(nodes[j].id)
	})
	return nodes
}

// Len returns the number of nodes in the layer
func (l *Layer) Len() int { return len(l.all) }

// Heads returns the nodes of the layer without a primary incoming edge,
// in layer order. For the foundational layer these are the tree root and
// any linkage nodes.
func (l *Layer) Heads() []*Node {
	var heads []*Node
	for _, n := range l.All() {
		if len(n.inPrimary) == 0 {
			heads = append(heads, n)
		}
	}
	return heads
}

// nodeNumber extracts the running number from a node ID ("1.12" -> 12).
// IDs without a numeric suffix sort last.
func nodeNumber(id string) int {
	_, suffix, found := strings.Cut(id, NodeIDSeparator)
	if !found {
		return int(^uint(0) >> 1)
	}
	num, err := strconv.Atoi(suffix)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return num
}
