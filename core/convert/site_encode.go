package convert

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/siherrmann/ucca/model"
)

// siteElem is a mutable XML element used to build the site document,
// keeping attribute and child order stable.
type siteElem struct {
	tag      string
	attrs    []xml.Attr
	text     string
	children []*siteElem
}

func newSiteElem(tag string, attrs ...xml.Attr) *siteElem {
	return &siteElem{tag: tag, attrs: attrs}
}

func attr(key, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: key}, Value: value}
}

func (e *siteElem) get(key string) string {
	for _, a := range e.attrs {
		if a.Name.Local == key {
			return a.Value
		}
	}
	return ""
}

func (e *siteElem) set(key, value string) {
	for i, a := range e.attrs {
		if a.Name.Local == key {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, attr(key, value))
}

func (e *siteElem) append(child *siteElem) {
	e.children = append(e.children, child)
}

func (e *siteElem) insertFront(child *siteElem) {
	e.children = append([]*siteElem{child}, e.children...)
}

func (e *siteElem) encode(enc *xml.Encoder) error {
	start := xml.StartElement{Name: xml.Name{Local: e.tag}, Attr: e.attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.text != "" {
		if err := enc.EncodeToken(xml.CharData(e.text)); err != nil {
			return err
		}
	}
	for _, child := range e.children {
		if err := child.encode(enc); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

type siteEncoder struct {
	passage *model.Passage
	f       *model.FoundationalLayer
	nextID  int
	mapping map[string]string    // node ID -> site ID
	elems   map[string]*siteElem // node ID -> element
	split   map[string]bool      // node IDs of discontiguous units
}

func (s *siteEncoder) newID() string {
	id := strconv.Itoa(s.nextID)
	s.nextID++
	return id
}

func (s *siteEncoder) record(elem *siteElem, node *model.Node) {
	s.mapping[node.ID()] = elem.get(siteAttrSiteID)
	s.elems[node.ID()] = elem
}

func boolAttr(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

// word wraps one terminal in its unit element
func (s *siteEncoder) word(terminal *model.Terminal) *siteElem {
	elemTag := siteTypeTBD
	if terminal.Punct() {
		elemTag = siteTypePunct
	}
	word := newSiteElem(siteTagWord, attr(siteAttrSiteID, s.newID()))
	word.text = terminal.Text()
	elem := newSiteElem(siteTagUnit,
		attr(siteAttrElemTag, elemTag),
		attr(siteAttrSiteID, s.newID()),
		attr(siteAttrUnanalyzable, "false"),
		attr(siteAttrUncertain, "false"))
	elem.append(word)
	s.record(elem, terminal.Node)
	return elem
}

// cunit builds the unit element of a foundational node, wrapping subelem
// when given
func (s *siteEncoder) cunit(node *model.FoundationalNode, subelem *siteElem) *siteElem {
	edges := node.Edges(false)
	unanalyzable := len(edges) > 1
	for _, e := range edges {
		if e.Tag() != model.EdgeTagTerminal && e.Tag() != model.EdgeTagPunct {
			unanalyzable = false
			break
		}
	}
	elem := newSiteElem(siteTagUnit,
		attr(siteAttrElemTag, edgeToSiteTag[node.FTag()]),
		attr(siteAttrSiteID, s.newID()),
		attr(siteAttrUnanalyzable, boolAttr(unanalyzable)),
		attr(siteAttrUncertain, boolAttr(node.Attrib().Bool(siteAttrUncertain))),
		attr(siteAttrSuggestion, boolAttr(node.Attrib().Bool("suggest"))))
	if subelem != nil {
		elem.append(subelem)
	}
	// later chunks of discontiguous units must not overwrite the mapping
	// that the group element holds
	if _, mapped := s.mapping[node.ID()]; !mapped {
		s.record(elem, node.Node)
	}
	return elem
}

func (s *siteEncoder) remote(edge *model.Edge) {
	parentElem, ok := s.elems[edge.Parent().ID()]
	if !ok {
		return
	}
	parentElem.insertFront(newSiteElem(siteTagRemote,
		attr(siteAttrElemTag, edgeToSiteTag[edge.Tag()]),
		attr(siteAttrSiteID, s.mapping[edge.Child().ID()]),
		attr(siteAttrUnanalyzable, "false"),
		attr(siteAttrUncertain, boolAttr(edge.Child().Attrib().Bool(siteAttrUncertain))),
		attr(siteAttrSuggestion, boolAttr(edge.Child().Attrib().Bool("suggest")))))
}

func (s *siteEncoder) implicit(node *model.FoundationalNode) {
	parent := node.FParent()
	if parent == nil {
		return
	}
	parentElem, ok := s.elems[parent.ID()]
	if !ok {
		return
	}
	uncertain := false
	if incoming := node.PrimaryIncoming(); incoming != nil {
		uncertain = incoming.Attrib().Bool(siteAttrUncertain)
	}
	parentElem.insertFront(newSiteElem(siteTagImplicit,
		attr(siteAttrElemTag, edgeToSiteTag[node.FTag()]),
		attr(siteAttrSiteID, s.newID()),
		attr(siteAttrUnanalyzable, "false"),
		attr(siteAttrUncertain, boolAttr(uncertain)),
		attr(siteAttrSuggestion, boolAttr(node.Attrib().Bool("suggest")))))
}

func (s *siteEncoder) linkage(link *model.Linkage) {
	relation := link.Relation()
	if relation == nil {
		return
	}
	linkerElem, ok := s.elems[relation.ID()]
	if !ok {
		return
	}
	var args []string
	for _, argument := range link.Arguments() {
		args = append(args, s.mapping[argument.ID()])
	}
	linkerElem.insertFront(newSiteElem(siteTagLinkage,
		attr(siteAttrLinkageArgs, strings.Join(args, ","))))
}

// siteParent returns the unit that owns the node in the site hierarchy:
// punctuation wrappers are transparent and the layer head maps to the
// paragraph level (nil).
func (s *siteEncoder) siteParent(node *model.Node) *model.FoundationalNode {
	parent := node.PrimaryParent()
	if parent == nil {
		return nil
	}
	if parent.Tag() == model.NodeTagPunctuation {
		parent = parent.PrimaryParent()
		if parent == nil {
			return nil
		}
	}
	for _, head := range s.f.Heads() {
		if parent == head {
			return nil
		}
	}
	return &model.FoundationalNode{Node: parent}
}

// ToSite serializes a passage to the annotation site XML format
func ToSite(p *model.Passage) ([]byte, error) {
	s := &siteEncoder{
		passage: p,
		nextID:  1,
		mapping: map[string]string{},
		elems:   map[string]*siteElem{},
		split:   map[string]bool{},
	}
	f, ok := model.FoundationalLayerOf(p)
	if !ok {
		var err error
		if f, err = model.NewFoundationalLayer(p); err != nil {
			return nil, err
		}
	}
	s.f = f

	// discontiguous units are emitted as unit groups outside the
	// hierarchy, their in-tree chunks reference them by group ID
	var unitGroups []*siteElem
	for _, node := range f.FNodes() {
		if node.Discontiguous() {
			s.split[node.ID()] = true
			unitGroups = append(unitGroups, s.cunit(node, nil))
		}
	}

	var paraElems []*siteElem
	tl, ok := model.TerminalLayerOf(p)
	if !ok {
		return nil, model.ErrEmptyInput
	}
	for _, terminal := range tl.Terminals() {
		unit := s.word(terminal)
		parent := s.siteParent(terminal.Node)
		for parent != nil {
			if _, mapped := s.mapping[parent.ID()]; mapped && !s.split[parent.ID()] {
				s.elems[parent.ID()].append(unit)
				break
			}
			elem := s.cunit(parent, unit)
			if s.split[parent.ID()] {
				elem.set(siteAttrElemTag, siteTypeTBD)
				elem.set(siteAttrGroupID, s.mapping[parent.ID()])
			}
			unit = elem
			parent = s.siteParent(parent.Node)
		}
		if parent == nil {
			if terminal.ParaPos() == 0 {
				paraElems = append(paraElems, newSiteElem(siteTagUnit,
					attr(siteAttrElemTag, siteTypeTBD),
					attr(siteAttrSiteID, s.newID())))
			}
			paraElems[len(paraElems)-1].append(unit)
		}
	}

	for _, paraElem := range paraElems {
		mergeGroupChunks(paraElem)
	}

	for _, node := range f.Layer().All() {
		for _, edge := range node.Edges(true) {
			if edge.Remote() {
				s.remote(edge)
			}
		}
	}
	for _, node := range f.FNodes() {
		if node.Implicit() {
			s.implicit(node)
		}
	}
	for _, link := range f.Linkages() {
		s.linkage(link)
	}

	root := newSiteElem("root", attr("schemeVersion", siteSchemeVersion))
	groups := newSiteElem("unitGroups")
	for _, group := range unitGroups {
		groups.append(group)
	}
	root.append(groups)
	units := newSiteElem("units", attr(siteAttrPassageID, p.ID()))
	units0 := newSiteElem(siteTagUnit,
		attr(siteAttrElemTag, siteTypeTBD),
		attr(siteAttrSiteID, "0"),
		attr(siteAttrUnanalyzable, "false"),
		attr(siteAttrUncertain, "false"))
	for _, paraElem := range paraElems {
		units0.append(paraElem)
	}
	units.append(units0)
	root.append(units)
	root.append(newSiteElem("LRUunits"))
	root.append(newSiteElem("hiddenUnits"))

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := root.encode(enc); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mergeGroupChunks merges adjacent sibling elements that belong to the
// same discontiguous unit group into one element, recursively
func mergeGroupChunks(elem *siteElem) {
	merged := elem.children[:0]
	for _, child := range elem.children {
		last := len(merged) - 1
		if last >= 0 && child.get(siteAttrGroupID) != "" &&
			child.get(siteAttrGroupID) == merged[last].get(siteAttrGroupID) {
			merged[last].children = append(merged[last].children, child.children...)
			continue
		}
		merged = append(merged, child)
	}
	elem.children = merged
	for _, child := range elem.children {
		mergeGroupChunks(child)
	}
}
