package model

import (
	"fmt"
	"iter"
	"sort"
)

// FoundationalLayerID is the ID of the foundational (semantic) layer
const FoundationalLayerID = "1"

// Node tags of the foundational layer
const (
	NodeTagFoundational = "FN"
	NodeTagPunctuation  = "PNCT"
	NodeTagLinkage      = "LKG"
)

// Edge categories of the foundational layer
const (
	EdgeTagParallelScene = "H"
	EdgeTagParticipant   = "A"
	EdgeTagProcess       = "P"
	EdgeTagState         = "S"
	EdgeTagAdverbial     = "D"
	EdgeTagCenter        = "C"
	EdgeTagElaborator    = "E"
	EdgeTagFunction      = "F"
	EdgeTagGround        = "G"
	EdgeTagLinker        = "L"
	EdgeTagConnector     = "N"
	EdgeTagRelator       = "R"
	EdgeTagLinkRelation  = "LR"
	EdgeTagLinkArgument  = "LA"
	EdgeTagTerminal      = "Terminal"
	EdgeTagPunct         = "U"
)

// AttrImplicit marks foundational nodes without any terminal yield
const AttrImplicit = "implicit"

// AttrRemote marks reentrant edges in serialized form
const AttrRemote = "remote"

// FoundationalNode is a semantic unit built above the terminal layer. It
// may be implicit (no terminal yield) or the target of remote edges from
// other units.
type FoundationalNode struct {
	*Node
}

// Implicit reports whether the unit has no terminal yield by design
func (fn *FoundationalNode) Implicit() bool {
	return fn.attrib.Bool(AttrImplicit)
}

// FTag returns the category of the primary incoming edge, "" for heads
func (fn *FoundationalNode) FTag() string {
	e := fn.PrimaryIncoming()
	if e == nil {
		return ""
	}
	return e.tag
}

// FParent returns the parent through the primary incoming edge, nil for heads
func (fn *FoundationalNode) FParent() *FoundationalNode {
	parent := fn.PrimaryParent()
	if parent == nil {
		return nil
	}
	return &FoundationalNode{Node: parent}
}

// IsScene reports whether the unit is headed by a main relation
// (a Process or State child edge)
func (fn *FoundationalNode) IsScene() bool {
	return fn.Process() != nil || fn.State() != nil
}

// Process returns the process unit of a scene, nil if there is none
func (fn *FoundationalNode) Process() *FoundationalNode {
	return fn.childByTag(EdgeTagProcess)
}

// State returns the state unit of a scene, nil if there is none
func (fn *FoundationalNode) State() *FoundationalNode {
	return fn.childByTag(EdgeTagState)
}

// Participants returns the participant units of the node, in edge order
func (fn *FoundationalNode) Participants() []*FoundationalNode {
	return fn.childrenByTag(EdgeTagParticipant)
}

// Centers returns the center units of the node, in edge order
func (fn *FoundationalNode) Centers() []*FoundationalNode {
	return fn.childrenByTag(EdgeTagCenter)
}

// Elaborators returns the elaborator units of the node, in edge order
func (fn *FoundationalNode) Elaborators() []*FoundationalNode {
	return fn.childrenByTag(EdgeTagElaborator)
}

func (fn *FoundationalNode) childByTag(tag string) *FoundationalNode {
	for _, e := range fn.primary {
		if e.tag == tag {
			return &FoundationalNode{Node: e.child}
		}
	}
	return nil
}

func (fn *FoundationalNode) childrenByTag(tag string) []*FoundationalNode {
	var children []*FoundationalNode
	for _, e := range fn.primary {
		if e.tag == tag {
			children = append(children, &FoundationalNode{Node: e.child})
		}
	}
	return children
}

// YieldTerminals computes the terminals dominated by the unit through
// primary edges only, in terminal order. Implicit units yield an empty
// sequence. The result is memoized per passage version: the first call
// costs the subtree size, repeated calls are cache hits until the next
// structural edit.
func (fn *FoundationalNode) YieldTerminals() []*Terminal {
	nodes, ok := fn.passage.cachedYield(fn.id)
	if !ok {
		nodes = collectYield(fn.Node)
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodeNumber(nodes[i].id) < nodeNumber(nodes[j].id)
		})
		fn.passage.storeYield(fn.id, nodes)
	}
	terminals := make([]*Terminal, len(nodes))
	for i, n := range nodes {
		terminals[i] = &Terminal{Node: n}
	}
	return terminals
}

func collectYield(n *Node) []*Node {
	var terminals []*Node
	for _, e := range n.primary {
		if e.child.layer.id == TerminalLayerID {
			terminals = append(terminals, e.child)
			continue
		}
		terminals = append(terminals, collectYield(e.child)...)
	}
	return terminals
}

// StartPosition returns the position of the first terminal in the yield,
// -1 for units without a yield
func (fn *FoundationalNode) StartPosition() int {
	terminals := fn.YieldTerminals()
	if len(terminals) == 0 {
		return -1
	}
	return terminals[0].Position()
}

// EndPosition returns the position of the last terminal in the yield,
// -1 for units without a yield
func (fn *FoundationalNode) EndPosition() int {
	terminals := fn.YieldTerminals()
	if len(terminals) == 0 {
		return -1
	}
	return terminals[len(terminals)-1].Position()
}

// Discontiguous reports whether the yield has gaps in terminal positions
func (fn *FoundationalNode) Discontiguous() bool {
	terminals := fn.YieldTerminals()
	for i := 1; i < len(terminals); i++ {
		if terminals[i].Position() != terminals[i-1].Position()+1 {
			return true
		}
	}
	return false
}

// Linkage connects two or more scene-headed units through a linker
// relation without duplicating their content. Its edges are remote: the
// linkage records participation, never ownership.
type Linkage struct {
	*Node
}

// Relation returns the linker unit of the linkage
func (lk *Linkage) Relation() *FoundationalNode {
	for _, e := range lk.remotes {
		if e.tag == EdgeTagLinkRelation {
			return &FoundationalNode{Node: e.child}
		}
	}
	return nil
}

// Arguments returns the linked scene units, in edge order
func (lk *Linkage) Arguments() []*FoundationalNode {
	var args []*FoundationalNode
	for _, e := range lk.remotes {
		if e.tag == EdgeTagLinkArgument {
			args = append(args, &FoundationalNode{Node: e.child})
		}
	}
	return args
}

// FoundationalLayer composes UCCA policy on top of the graph kernel
type FoundationalLayer struct {
	layer   *Layer
	passage *Passage
}

// NewFoundationalLayer creates the foundational layer of a passage
// together with its head node, the root of the primary tree.
func NewFoundationalLayer(p *Passage) (*FoundationalLayer, error) {
	layer, err := NewLayer(p, FoundationalLayerID, nil)
	if err != nil {
		return nil, err
	}
	_, err = p.CreateNode(layer, NodeTagFoundational, nil)
	if err != nil {
		return nil, err
	}
	return &FoundationalLayer{layer: layer, passage: p}, nil
}

// FoundationalLayerOf wraps the existing foundational layer of a passage
func FoundationalLayerOf(p *Passage) (*FoundationalLayer, bool) {
	l, ok := p.Layer(FoundationalLayerID)
	if !ok {
		return nil, false
	}
	return &FoundationalLayer{layer: l, passage: p}, true
}

// Layer returns the underlying generic layer
func (f *FoundationalLayer) Layer() *Layer { return f.layer }

// Head returns the root of the primary tree
func (f *FoundationalLayer) Head() *FoundationalNode {
	root, err := f.passage.Root()
	if err != nil {
		return nil
	}
	return &FoundationalNode{Node: root}
}

// Heads returns all top-level nodes of the layer: the tree root followed
// by any linkage nodes, in layer order.
func (f *FoundationalLayer) Heads() []*Node {
	return f.layer.Heads()
}

// AddFNode creates a foundational unit under parent with the given edge category
func (f *FoundationalLayer) AddFNode(parent *FoundationalNode, edgeTag string) (*FoundationalNode, error) {
	node, err := f.passage.CreateNode(f.layer, NodeTagFoundational, nil)
	if err != nil {
		return nil, err
	}
	_, err = f.passage.AddEdge(parent.Node, node, edgeTag, false)
	if err != nil {
		f.passage.RemoveNode(node)
		return nil, err
	}
	return &FoundationalNode{Node: node}, nil
}

// AttachImplicit creates a childless unit with no terminal yield under
// parent, representing an elided or understood semantic argument.
func (f *FoundationalLayer) AttachImplicit(parent *FoundationalNode, edgeTag string) (*FoundationalNode, error) {
	node, err := f.AddFNode(parent, edgeTag)
	if err != nil {
		return nil, err
	}
	node.attrib[AttrImplicit] = true
	return node, nil
}

// AttachRemote adds a reentrant edge from node to target, expressing
// shared participation without ownership. Returns ErrSelfReference when
// node and target coincide, ErrForeignLayer when the target is not part
// of this foundational layer.
func (f *FoundationalLayer) AttachRemote(node, target *FoundationalNode, category string) (*Edge, error) {
	if node.Node == target.Node {
		return nil, fmt.Errorf("%w: %s", ErrSelfReference, node.id)
	}
	if target.layer != f.layer {
		return nil, fmt.Errorf("%w: %s", ErrForeignLayer, target.id)
	}
	return f.passage.AddEdge(node.Node, target.Node, category, true)
}

// AddTerminal attaches a terminal to the given unit
func (f *FoundationalLayer) AddTerminal(parent *FoundationalNode, t *Terminal) (*Edge, error) {
	return f.passage.AddEdge(parent.Node, t.Node, EdgeTagTerminal, false)
}

// AddPunct attaches a punctuation terminal to its governing unit through
// a punctuation node, without semantic categorization.
func (f *FoundationalLayer) AddPunct(parent *FoundationalNode, t *Terminal) (*FoundationalNode, error) {
	node, err := f.passage.CreateNode(f.layer, NodeTagPunctuation, nil)
	if err != nil {
		return nil, err
	}
	_, err = f.passage.AddEdge(parent.Node, node, EdgeTagPunct, false)
	if err != nil {
		f.passage.RemoveNode(node)
		return nil, err
	}
	_, err = f.passage.AddEdge(node, t.Node, EdgeTagTerminal, false)
	if err != nil {
		f.passage.RemoveNode(node)
		return nil, err
	}
	return &FoundationalNode{Node: node}, nil
}

// CreateLinkage connects two or more scenes through a linker unit.
// Returns ErrInsufficientScenes when fewer than two scenes are supplied.
func (f *FoundationalLayer) CreateLinkage(linker *FoundationalNode, scenes ...*FoundationalNode) (*Linkage, error) {
	if len(scenes) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientScenes, len(scenes))
	}
	node, err := f.passage.CreateNode(f.layer, NodeTagLinkage, nil)
	if err != nil {
		return nil, err
	}
	if _, err := f.passage.AddEdge(node, linker.Node, EdgeTagLinkRelation, true); err != nil {
		f.passage.RemoveNode(node)
		return nil, err
	}
	for _, scene := range scenes {
		if _, err := f.passage.AddEdge(node, scene.Node, EdgeTagLinkArgument, true); err != nil {
			f.passage.RemoveNode(node)
			return nil, err
		}
	}
	return &Linkage{Node: node}, nil
}

// Linkages returns all linkage nodes of the layer, in layer order
func (f *FoundationalLayer) Linkages() []*Linkage {
	var linkages []*Linkage
	for _, n := range f.layer.All() {
		if n.tag == NodeTagLinkage {
			linkages = append(linkages, &Linkage{Node: n})
		}
	}
	return linkages
}

// FNodes returns all foundational units of the layer, in layer order
func (f *FoundationalLayer) FNodes() []*FoundationalNode {
	var nodes []*FoundationalNode
	for _, n := range f.layer.All() {
		if n.tag == NodeTagFoundational {
			nodes = append(nodes, &FoundationalNode{Node: n})
		}
	}
	return nodes
}

// Scenes yields the scene-headed units of the passage in document order
// (by start position, units without a yield last). Each range starts a
// fresh traversal, independent of prior consumption.
func (f *FoundationalLayer) Scenes() iter.Seq[*FoundationalNode] {
	return func(yield func(*FoundationalNode) bool) {
		for _, scene := range f.scenesInOrder() {
			if !yield(scene) {
				return
			}
		}
	}
}

// TopScenes returns the parallel scenes directly under the head, in
// document order.
func (f *FoundationalLayer) TopScenes() []*FoundationalNode {
	head := f.Head()
	if head == nil {
		return nil
	}
	var scenes []*FoundationalNode
	for _, e := range head.primary {
		child := &FoundationalNode{Node: e.child}
		if e.tag == EdgeTagParallelScene && child.IsScene() {
			scenes = append(scenes, child)
		}
	}
	sortByDocumentOrder(scenes)
	return scenes
}

func (f *FoundationalLayer) scenesInOrder() []*FoundationalNode {
	var scenes []*FoundationalNode
	for _, fn := range f.FNodes() {
		if fn.IsScene() {
			scenes = append(scenes, fn)
		}
	}
	sortByDocumentOrder(scenes)
	return scenes
}

func sortByDocumentOrder(nodes []*FoundationalNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		si, sj := nodes[i].StartPosition(), nodes[j].StartPosition()
		if si < 0 || sj < 0 {
			// units without a yield sort last, by ID
			if si < 0 && sj < 0 {
				return nodeNumber(nodes[i].id) < nodeNumber(nodes[j].id)
			}
			return sj < 0
		}
		if si != sj {
			return si < sj
		}
		return nodeNumber(nodes[i].id) < nodeNumber(nodes[j].id)
	})
}
