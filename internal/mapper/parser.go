package mapper

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/yobatis-go/yobatis/internal/debug"
)

const rootTag = "mapper"

// Parse builds a Mapper from one document. name identifies the document in
// errors and log output.
func Parse(name string, data []byte) (*Mapper, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, NewMalformedError(name, "document", "", err.Error())
	}

	root := doc.Root()
	if root == nil {
		return nil, NewMalformedError(name, "document", "", "no root element")
	}
	if root.Tag != rootTag {
		return nil, NewMalformedError(name, root.Tag, "", "root element must be <mapper>")
	}

	p := &parser{document: name}
	namespace, err := p.require(root, "", "namespace")
	if err != nil {
		return nil, err
	}
	p.m = New(namespace, name)

	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "resultMap":
			err = p.resultMap(el)
		case "sql":
			err = p.fragment(el)
		case "insert":
			err = p.statement(el, Insert)
		case "update":
			err = p.statement(el, Update)
		case "select":
			err = p.statement(el, Select)
		case "delete":
			err = p.statement(el, Delete)
		default:
			debug.Warn("skipping unknown mapper element", "document", name, "element", el.Tag)
		}
		if err != nil {
			return nil, err
		}
	}

	debug.Debug("parsed mapper",
		"document", name,
		"namespace", namespace,
		"result_maps", p.m.ResultMaps.Len(),
		"fragments", p.m.Fragments.Len(),
		"statements", p.m.StatementCount())

	return p.m, nil
}

type parser struct {
	document string
	m        *Mapper
}

func (p *parser) require(el *etree.Element, id, attr string) (string, error) {
	a := el.SelectAttr(attr)
	if a == nil {
		return "", NewMissingAttributeError(p.document, el.Tag, id, attr)
	}
	return a.Value, nil
}

func (p *parser) resultMap(el *etree.Element) error {
	id, err := p.require(el, "", "id")
	if err != nil {
		return err
	}
	typeName, err := p.require(el, id, "type")
	if err != nil {
		return err
	}

	rm := &ResultMap{ID: id, Type: typeName}
	for _, child := range el.ChildElements() {
		if child.Tag != "result" {
			debug.Warn("skipping unknown resultMap element", "document", p.document, "resultMap", id, "element", child.Tag)
			continue
		}
		column, err := p.require(child, id, "column")
		if err != nil {
			return err
		}
		property, err := p.require(child, id, "property")
		if err != nil {
			return err
		}
		yoType, err := p.require(child, id, "yo_type")
		if err != nil {
			return err
		}
		if _, dup := rm.Field(property); dup {
			return NewMalformedError(p.document, "resultMap", id, "property "+property+" is mapped more than once")
		}
		rm.Fields = append(rm.Fields, Field{
			Column:   column,
			Property: property,
			YoType:   yoType,
			Kind:     ParseFieldKind(yoType),
		})
	}

	return p.m.AddResultMap(rm)
}

// fragment keeps only the literal text children of <sql>.
func (p *parser) fragment(el *etree.Element) error {
	id, err := p.require(el, "", "id")
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}

	return p.m.AddFragment(&Fragment{ID: id, Text: sb.String()})
}

func (p *parser) statement(el *etree.Element, kind StatementKind) error {
	id, err := p.require(el, "", "id")
	if err != nil {
		return err
	}
	paramType, err := p.require(el, id, "parameterType")
	if err != nil {
		return err
	}

	st := &Statement{Kind: kind, ID: id, ParameterType: paramType}
	if kind == Select {
		if st.ResultMap, err = p.require(el, id, "resultMap"); err != nil {
			return err
		}
	}

	if st.Body, err = p.content(el, id); err != nil {
		return err
	}

	return p.m.AddStatement(st)
}

// content converts the mixed children of el, keeping document order.
// Adjacent character data (text and CDATA) is merged into one Text node.
func (p *parser) content(el *etree.Element, stmtID string) ([]Node, error) {
	var nodes []Node
	appendText := func(s string) {
		if s == "" {
			return
		}
		if n := len(nodes); n > 0 {
			if prev, ok := nodes[n-1].(Text); ok {
				nodes[n-1] = Text{Value: prev.Value + s}
				return
			}
		}
		nodes = append(nodes, Text{Value: s})
	}

	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			appendText(t.Data)
		case *etree.Element:
			node, err := p.element(t, stmtID)
			if err != nil {
				return nil, err
			}
			if node != nil {
				nodes = append(nodes, node)
			}
		}
	}

	return nodes, nil
}

func (p *parser) element(el *etree.Element, stmtID string) (Node, error) {
	switch el.Tag {
	case "if":
		test, err := p.require(el, stmtID, "test")
		if err != nil {
			return nil, err
		}
		content, err := p.content(el, stmtID)
		if err != nil {
			return nil, err
		}
		return Conditional{Test: test, Content: content}, nil

	case "trim":
		content, err := p.content(el, stmtID)
		if err != nil {
			return nil, err
		}
		return Trim{
			Prefix:          el.SelectAttrValue("prefix", ""),
			Suffix:          el.SelectAttrValue("suffix", ""),
			PrefixOverrides: el.SelectAttrValue("prefixOverrides", ""),
			SuffixOverrides: el.SelectAttrValue("suffixOverrides", ""),
			Content:         content,
		}, nil

	case "include":
		refID, err := p.require(el, stmtID, "refid")
		if err != nil {
			return nil, err
		}
		return Include{RefID: refID}, nil

	default:
		debug.Warn("skipping unknown sql element", "document", p.document, "statement", stmtID, "element", el.Tag)
		return nil, nil
	}
}
