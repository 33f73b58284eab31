// Package convert translates annotation passages between the in-memory
// graph and their serialized forms: the standard XML interchange format,
// the annotation site XML format and plain tokenized text.
package convert

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/siherrmann/ucca/model"
)

// boolAttrs are attribute keys parsed as booleans when decoding
var boolAttrs = map[string]bool{
	"remote":    true,
	"implicit":  true,
	"uncertain": true,
	"suggest":   true,
}

// intAttrs are attribute keys parsed as integers when decoding
var intAttrs = map[string]bool{
	model.AttrParagraph: true,
	model.AttrParaPos:   true,
}

type xmlAttributes struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type xmlEdge struct {
	ToID       string         `xml:"toID,attr"`
	Type       string         `xml:"type,attr"`
	Attributes xmlAttributes  `xml:"attributes"`
	Extra      *xmlAttributes `xml:"extra,omitempty"`
}

type xmlNode struct {
	ID         string         `xml:"ID,attr"`
	Type       string         `xml:"type,attr"`
	Attributes xmlAttributes  `xml:"attributes"`
	Extra      *xmlAttributes `xml:"extra,omitempty"`
	Edges      []xmlEdge      `xml:"edge"`
}

type xmlLayer struct {
	LayerID    string        `xml:"layerID,attr"`
	Attributes xmlAttributes `xml:"attributes"`
	Nodes      []xmlNode     `xml:"node"`
}

type xmlRoot struct {
	XMLName      xml.Name       `xml:"root"`
	PassageID    string         `xml:"passageID,attr"`
	AnnotationID string         `xml:"annotationID,attr"`
	Attributes   xmlAttributes  `xml:"attributes"`
	Extra        *xmlAttributes `xml:"extra,omitempty"`
	Layers       []xmlLayer     `xml:"layer"`
}

// ToStandard serializes a passage to the standard XML interchange format:
// a shallow structure of layer, node and edge elements where hierarchy
// lives in toID references, remote and implicit carried as explicit
// attributes.
func ToStandard(p *model.Passage) ([]byte, error) {
	root := xmlRoot{
		PassageID:    p.ID(),
		AnnotationID: "0",
		Attributes:   attributesOf(p.Attrib()),
	}

	layers := p.Layers()
	sort.Slice(layers, func(i, j int) bool { return layers[i].ID() < layers[j].ID() })
	for _, layer := range layers {
		layerElem := xmlLayer{
			LayerID:    layer.ID(),
			Attributes: attributesOf(layer.Attrib()),
		}
		for _, node := range layer.All() {
			nodeElem := xmlNode{
				ID:         node.ID(),
				Type:       node.Tag(),
				Attributes: attributesOf(node.Attrib()),
				Extra:      extraOf(node.Extra()),
			}
			for _, edge := range node.Edges(true) {
				attrib := edge.Attrib()
				if edge.Remote() {
					attrib = attrib.Copy()
					attrib["remote"] = true
				}
				nodeElem.Edges = append(nodeElem.Edges, xmlEdge{
					ToID:       edge.Child().ID(),
					Type:       edge.Tag(),
					Attributes: attributesOf(attrib),
				})
			}
			layerElem.Nodes = append(layerElem.Nodes, nodeElem)
		}
		root.Layers = append(root.Layers, layerElem)
	}

	return xml.MarshalIndent(root, "", "  ")
}

// FromStandard decodes a standard XML document into a passage. The decode
// is two-pass: every node of every layer is created first, edges are
// resolved second, so forward references never fail. Returns
// ErrMalformedInput for documents that are not well formed, reference
// unknown node IDs or repeat node IDs; no partial passage is returned.
func FromStandard(data []byte) (*model.Passage, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}
	root := xmlquery.FindOne(doc, "/root")
	if root == nil {
		return nil, fmt.Errorf("%w: missing root element", model.ErrMalformedInput)
	}

	p := model.NewPassage(root.SelectAttr("passageID"))
	fillAttrib(p.Attrib(), root)

	type pendingEdge struct {
		parent *model.Node
		elem   *xmlquery.Node
	}
	var edges []pendingEdge

	for _, layerElem := range xmlquery.Find(root, "layer") {
		layer, err := model.NewLayer(p, layerElem.SelectAttr("layerID"), attribOf(layerElem))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
		}
		for _, nodeElem := range xmlquery.Find(layerElem, "node") {
			node, err := p.CreateNodeWithID(layer, nodeElem.SelectAttr("ID"),
				nodeElem.SelectAttr("type"), attribOf(nodeElem))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
			}
			fillExtra(node.Extra(), nodeElem)
			for _, edgeElem := range xmlquery.Find(nodeElem, "edge") {
				edges = append(edges, pendingEdge{parent: node, elem: edgeElem})
			}
		}
	}

	for _, pending := range edges {
		toID := pending.elem.SelectAttr("toID")
		child, ok := p.ByID(toID)
		if !ok {
			return nil, fmt.Errorf("%w: edge references unknown node %s", model.ErrMalformedInput, toID)
		}
		attrib := attribOf(pending.elem)
		remote := attrib.Bool("remote")
		delete(attrib, "remote")
		edge, err := p.AddEdge(pending.parent, child, pending.elem.SelectAttr("type"), remote)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
		}
		for k, v := range attrib {
			edge.Attrib()[k] = v
		}
	}

	return p, nil
}

// attributesOf stringifies a metadata map into sorted XML attributes
func attributesOf(m model.Metadata) xmlAttributes {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]xml.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, xml.Attr{
			Name:  xml.Name{Local: k},
			Value: stringifyValue(m[k]),
		})
	}
	return xmlAttributes{Attrs: attrs}
}

func extraOf(m model.Metadata) *xmlAttributes {
	if len(m) == 0 {
		return nil
	}
	attrs := attributesOf(m)
	return &attrs
}

func stringifyValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case bool:
		if value {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func parseValue(key, value string) interface{} {
	if boolAttrs[key] {
		return value == "True" || value == "true"
	}
	if intAttrs[key] {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return value
}

// attribOf reads the attributes child element of an XML element
func attribOf(elem *xmlquery.Node) model.Metadata {
	attrib := model.Metadata{}
	if attributes := xmlquery.FindOne(elem, "attributes"); attributes != nil {
		for _, attr := range attributes.Attr {
			attrib[attr.Name.Local] = parseValue(attr.Name.Local, attr.Value)
		}
	}
	return attrib
}

func fillAttrib(target model.Metadata, elem *xmlquery.Node) {
	for k, v := range attribOf(elem) {
		target[k] = v
	}
}

func fillExtra(target model.Metadata, elem *xmlquery.Node) {
	if extra := xmlquery.FindOne(elem, "extra"); extra != nil {
		for _, attr := range extra.Attr {
			target[attr.Name.Local] = attr.Value
		}
	}
}
