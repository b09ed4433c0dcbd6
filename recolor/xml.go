package recolor

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/bodgit/ttdviewer/palette"
	"github.com/bodgit/ttdviewer/remap"
)

//go:embed recolor.xml
var defaultDocument []byte

// SchemaError reports a rule document that is well formed XML but does not
// describe a valid tree.
type SchemaError struct {
	Element string
	Name    string
	Reason  string
	Err     error
}

func (e *SchemaError) Error() string {
	s := fmt.Sprintf("recolor: <%s> %q: %s", e.Element, e.Name, e.Reason)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

type xmlNode struct {
	XMLName      xml.Name
	Name         string    `xml:"name,attr"`
	Desc         string    `xml:"desc,attr"`
	Climates     string    `xml:"climates,attr"`
	Sprite       string    `xml:"sprite,attr"`
	Indices      string    `xml:"indices,attr"`
	Separateable string    `xml:"separateable,attr"`
	Content      string    `xml:",chardata"`
	Children     []xmlNode `xml:",any"`
}

// Load reads a rule document. The root element is a <sequence>, <choice>
// or <recolor>.
func Load(r io.Reader) (*Node, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc xmlNode
	if err := xml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	return doc.node()
}

// Default returns the tree of the rule document shipped with the package.
func Default() *Node {
	n, err := Load(bytes.NewReader(defaultDocument))
	if err != nil {
		panic(err)
	}
	return n
}

func (x *xmlNode) schemaError(reason string, err error) error {
	return &SchemaError{
		Element: x.XMLName.Local,
		Name:    x.Name,
		Reason:  reason,
		Err:     err,
	}
}

func (x *xmlNode) node() (*Node, error) {
	n := &Node{
		Name:        x.Name,
		Description: x.Desc,
		Sprite:      -1,
		Table:       remap.Identity(),
	}

	switch x.XMLName.Local {
	case "recolor":
		n.Kind = Recolor
	case "sequence":
		n.Kind = Sequence
	case "choice":
		n.Kind = Choice
	default:
		return nil, x.schemaError("unknown element", nil)
	}

	if err := x.climates(n); err != nil {
		return nil, err
	}

	if n.Kind != Recolor {
		for i := range x.Children {
			child, err := x.Children[i].node()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
		return n, nil
	}

	if len(x.Children) > 0 {
		return nil, x.schemaError("recolor cannot have child elements", nil)
	}

	if x.Sprite != "" {
		sprite, err := strconv.Atoi(x.Sprite)
		if err != nil {
			return nil, x.schemaError("bad sprite", err)
		}
		n.Sprite = sprite
	}

	indices, err := x.numberList(x.Indices)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(x.Separateable) == "all" {
		n.Separate = append([]int(nil), indices...)
	} else if n.Separate, err = x.numberList(x.Separateable); err != nil {
		return nil, err
	}

	content := strings.Fields(x.Content)
	if len(content) != len(indices) {
		return nil, x.schemaError(fmt.Sprintf("length of indices (%d) and content (%d) do not match", len(indices), len(content)), nil)
	}

	targets := make([]int, len(content))
	for i, s := range content {
		if s == "__" {
			targets[i] = remap.Keep
			continue
		}
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return nil, x.schemaError("bad content", err)
		}
		targets[i] = int(v)
	}

	if n.Table, err = remap.FromIndices(indices, targets); err != nil {
		return nil, x.schemaError("bad recoloring", err)
	}

	return n, nil
}

// A missing or empty climates attribute means every climate
func (x *xmlNode) climates(n *Node) error {
	fields := strings.Fields(x.Climates)
	if len(fields) == 0 {
		for i := range n.Climates {
			n.Climates[i] = true
		}
		return nil
	}
	for _, f := range fields {
		c, err := palette.ParseClimate(f)
		if err != nil {
			return x.schemaError("bad climates", err)
		}
		n.Climates[c] = true
	}
	return nil
}

// Parses "none", "all" or a list of hex indices
func (x *xmlNode) numberList(s string) ([]int, error) {
	switch s = strings.TrimSpace(s); s {
	case "", "none":
		return nil, nil
	case "all":
		indices := make([]int, remap.Size)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	fields := strings.Fields(s)
	indices := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, x.schemaError("bad index list", err)
		}
		indices[i] = int(v)
	}
	return indices, nil
}
