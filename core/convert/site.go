package convert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/siherrmann/ucca/model"
)

// Site XML element tags
const (
	siteTagUnit     = "unit"
	siteTagWord     = "word"
	siteTagRemote   = "remoteUnit"
	siteTagImplicit = "implicitUnit"
	siteTagLinkage  = "linkage"
)

// Site XML attribute names
const (
	siteAttrPassageID    = "passageID"
	siteAttrSiteID       = "id"
	siteAttrElemTag      = "type"
	siteAttrUncertain    = "uncertain"
	siteAttrUnanalyzable = "unanalyzable"
	siteAttrRemarks      = "remarks"
	siteAttrGroupID      = "unitGroupID"
	siteAttrLinkageArgs  = "args"
	siteAttrSuggestion   = "suggestion"
)

const (
	siteTypePunct     = "Punctuation"
	siteTypeTBD       = "To Be Defined"
	siteSchemeVersion = "1.0.3"
)

// siteTagToEdge maps the site type attribute to edge categories
var siteTagToEdge = map[string]string{
	"Linked U":       model.EdgeTagParallelScene,
	"Parallel Scene": model.EdgeTagParallelScene,
	"Function":       model.EdgeTagFunction,
	"Participant":    model.EdgeTagParticipant,
	"Process":        model.EdgeTagProcess,
	"State":          model.EdgeTagState,
	"aDverbial":      model.EdgeTagAdverbial,
	"Center":         model.EdgeTagCenter,
	"Elaborator":     model.EdgeTagElaborator,
	"Linker":         model.EdgeTagLinker,
	"Ground":         model.EdgeTagGround,
	"Connector":      model.EdgeTagConnector,
	"Role Marker":    model.EdgeTagRelator,
	"Relator":        model.EdgeTagRelator,
}

// edgeToSiteTag maps edge categories back to site type attributes
var edgeToSiteTag = map[string]string{
	model.EdgeTagParallelScene: "Parallel Scene",
	model.EdgeTagFunction:      "Function",
	model.EdgeTagParticipant:   "Participant",
	model.EdgeTagProcess:       "Process",
	model.EdgeTagState:         "State",
	model.EdgeTagAdverbial:     "aDverbial",
	model.EdgeTagCenter:        "Center",
	model.EdgeTagElaborator:    "Elaborator",
	model.EdgeTagLinker:        "Linker",
	model.EdgeTagGround:        "Ground",
	model.EdgeTagConnector:     "Connector",
	model.EdgeTagRelator:       "Relator",
}

// FromSite decodes the annotation site XML format into a passage. The
// hierarchical units are walked top down; remote units and linkages may
// reference units anywhere in the document and are resolved in a second
// pass. Remote units pointing at unknown site IDs are skipped, any other
// inconsistency returns ErrMalformedInput.
func FromSite(data []byte) (*model.Passage, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}
	units := xmlquery.FindOne(doc, "//units")
	if units == nil {
		return nil, fmt.Errorf("%w: missing units element", model.ErrMalformedInput)
	}

	d := &siteDecoder{
		passage:   model.NewPassage(units.SelectAttr(siteAttrPassageID)),
		elem2node: map[string]*model.Node{},
	}
	if err := d.decodeTerminals(doc); err != nil {
		return nil, err
	}
	if err := d.decodeAnnotation(doc); err != nil {
		return nil, err
	}
	return d.passage, nil
}

type siteDecoder struct {
	passage   *model.Passage
	f         *model.FoundationalLayer
	groups    []*xmlquery.Node
	elem2node map[string]*model.Node
}

// decodeTerminals extracts the word elements paragraph by paragraph. Each
// word is wrapped by a unit element carrying its type, so position in the
// word order and the wrapper attributes together define the terminal.
func (d *siteDecoder) decodeTerminals(doc *xmlquery.Node) error {
	var tokens []model.Token
	var wrappers []*xmlquery.Node
	for paraNum, paragraph := range xmlquery.Find(doc, "//units/unit/*") {
		for _, word := range xmlquery.Find(paragraph, ".//"+siteTagWord) {
			wrapper := word.Parent
			if wrapper == nil || wrapper.Data != siteTagUnit {
				return fmt.Errorf("%w: word element without unit wrapper", model.ErrMalformedInput)
			}
			tokens = append(tokens, model.Token{
				Text:      word.InnerText(),
				Punct:     wrapper.SelectAttr(siteAttrElemTag) == siteTypePunct,
				Paragraph: paraNum + 1,
			})
			wrappers = append(wrappers, wrapper)
		}
	}

	tl, err := model.BuildTerminals(d.passage, tokens)
	if err != nil {
		return err
	}
	for position, wrapper := range wrappers {
		terminal, _ := tl.ByPosition(position)
		d.elem2node[wrapper.SelectAttr(siteAttrSiteID)] = terminal.Node
	}
	return nil
}

type sitePending struct {
	parent *model.FoundationalNode
	elem   *xmlquery.Node
}

func (d *siteDecoder) decodeAnnotation(doc *xmlquery.Node) error {
	f, err := model.NewFoundationalLayer(d.passage)
	if err != nil {
		return err
	}
	d.f = f
	d.groups = xmlquery.Find(doc, "//unitGroups/*")

	var pending []sitePending
	for _, elem := range xmlquery.Find(doc, "//units/unit/*/*") {
		tbd, err := d.parseUnit(elem, f.Head())
		if err != nil {
			return err
		}
		pending = append(pending, tbd...)
	}

	// remotes and linkages reference site IDs from anywhere in the
	// document, so they resolve only after every unit exists
	for _, p := range pending {
		switch p.elem.Data {
		case siteTagRemote:
			child, ok := d.elem2node[p.elem.SelectAttr(siteAttrSiteID)]
			if !ok {
				// the annotation site emits dangling remote references
				continue
			}
			tag, err := d.edgeTag(p.elem)
			if err != nil {
				return err
			}
			if _, err := f.AttachRemote(p.parent, &model.FoundationalNode{Node: child}, tag); err != nil {
				return err
			}
		case siteTagLinkage:
			var scenes []*model.FoundationalNode
			for _, siteID := range strings.Split(p.elem.SelectAttr(siteAttrLinkageArgs), ",") {
				node, ok := d.elem2node[siteID]
				if !ok {
					return fmt.Errorf("%w: linkage references unknown unit %s", model.ErrMalformedInput, siteID)
				}
				scenes = append(scenes, &model.FoundationalNode{Node: node})
			}
			if _, err := f.CreateLinkage(p.parent, scenes...); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown element %s", model.ErrMalformedInput, p.elem.Data)
		}
	}
	return nil
}

// parseUnit parses one annotation element recursively, attaching it under
// parent. Elements that cannot be resolved yet are returned for the
// second pass.
func (d *siteDecoder) parseUnit(elem *xmlquery.Node, parent *model.FoundationalNode) ([]sitePending, error) {
	var pending []sitePending

	switch elem.Data {
	case siteTagUnit:
		if node := d.resolvedNode(elem); node != nil {
			switch node.Tag() {
			case model.NodeTagWord:
				if _, err := d.f.AddTerminal(parent, &model.Terminal{Node: node}); err != nil {
					return nil, err
				}
			case model.NodeTagPunct:
				punct, err := d.f.AddPunct(parent, &model.Terminal{Node: node})
				if err != nil {
					return nil, err
				}
				d.elem2node[elem.SelectAttr(siteAttrSiteID)] = punct.Node
			default:
				// a later chunk of a discontiguous unit: the node exists,
				// only its subelements still need parsing
				fn := &model.FoundationalNode{Node: node}
				for child := elem.FirstChild; child != nil; child = child.NextSibling {
					if child.Type != xmlquery.ElementNode {
						continue
					}
					tbd, err := d.parseUnit(child, fn)
					if err != nil {
						return nil, err
					}
					pending = append(pending, tbd...)
				}
			}
			return pending, nil
		}

		// data of discontiguous units lives on their group element,
		// outside the hierarchy being walked
		workElem := d.workElem(elem)
		tag, err := d.edgeTag(workElem)
		if err != nil {
			return nil, err
		}
		node, err := d.f.AddFNode(parent, tag)
		if err != nil {
			return nil, err
		}
		d.elem2node[workElem.SelectAttr(siteAttrSiteID)] = node.Node
		fillSiteAttributes(workElem, node)
		for child := elem.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != xmlquery.ElementNode {
				continue
			}
			tbd, err := d.parseUnit(child, node)
			if err != nil {
				return nil, err
			}
			pending = append(pending, tbd...)
		}
		return pending, nil

	case siteTagImplicit:
		tag, err := d.edgeTag(elem)
		if err != nil {
			return nil, err
		}
		node, err := d.f.AttachImplicit(parent, tag)
		if err != nil {
			return nil, err
		}
		d.elem2node[elem.SelectAttr(siteAttrSiteID)] = node.Node
		fillSiteAttributes(elem, node)
		return nil, nil

	default:
		return []sitePending{{parent: parent, elem: elem}}, nil
	}
}

// resolvedNode returns the node already created for the element, checking
// the discontiguous group ID first, nil when none exists yet
func (d *siteDecoder) resolvedNode(elem *xmlquery.Node) *model.Node {
	if groupID := elem.SelectAttr(siteAttrGroupID); groupID != "" {
		return d.elem2node[groupID]
	}
	return d.elem2node[elem.SelectAttr(siteAttrSiteID)]
}

// workElem returns the element carrying the unit's data: the group
// element for discontiguous units, the element itself otherwise
func (d *siteDecoder) workElem(elem *xmlquery.Node) *xmlquery.Node {
	groupID := elem.SelectAttr(siteAttrGroupID)
	if groupID == "" {
		return elem
	}
	for _, group := range d.groups {
		if group.SelectAttr(siteAttrSiteID) == groupID {
			return group
		}
	}
	return elem
}

func (d *siteDecoder) edgeTag(elem *xmlquery.Node) (string, error) {
	tag, ok := siteTagToEdge[elem.SelectAttr(siteAttrElemTag)]
	if !ok {
		return "", fmt.Errorf("%w: unknown unit type %q", model.ErrMalformedInput, elem.SelectAttr(siteAttrElemTag))
	}
	return tag, nil
}

func fillSiteAttributes(elem *xmlquery.Node, node *model.FoundationalNode) {
	if elem.SelectAttr(siteAttrUncertain) == "true" {
		node.Attrib()[siteAttrUncertain] = true
	}
	if remarks := elem.SelectAttr(siteAttrRemarks); remarks != "" {
		node.Extra()[siteAttrRemarks] = remarks
	}
}
