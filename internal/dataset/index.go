// Package dataset turns the raw records of each address source into a
// normalized address.Set. Problems with individual records are reported as
// diagnostics and never stop a build.
package dataset

import (
	"fmt"
	"strconv"
)

// Element types used by the map data source.
const (
	TypeNode     = "node"
	TypeWay      = "way"
	TypeRelation = "relation"
)

// Element is one raw map data record: a node, way or relation with its tags
// and, for ways, the ordered ids of the nodes it references.
type Element struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Tags  map[string]string `json:"tags,omitempty"`
	Nodes []int64           `json:"nodes,omitempty"`
}

// Ref formats the element as "type/id".
func (e Element) Ref() string {
	return e.Type + "/" + strconv.FormatInt(e.ID, 10)
}

// Record is one raw register row keyed by column name.
type Record map[string]string

type elementKey struct {
	typ string
	id  int64
}

// Index holds a dataset's elements and resolves references by type and id.
// It is built once per dataset and not modified afterwards.
type Index struct {
	elements []Element
	byKey    map[elementKey]int
}

// NewIndex indexes elements. When an id repeats, the first element wins.
func NewIndex(elements []Element) *Index {
	idx := &Index{
		elements: elements,
		byKey:    make(map[elementKey]int, len(elements)),
	}
	for i, e := range elements {
		k := elementKey{e.Type, e.ID}
		if _, dup := idx.byKey[k]; !dup {
			idx.byKey[k] = i
		}
	}
	return idx
}

// Len returns the number of indexed elements.
func (idx *Index) Len() int {
	return len(idx.elements)
}

// At returns the i-th element in input order.
func (idx *Index) At(i int) Element {
	return idx.elements[i]
}

// Node resolves a node reference.
func (idx *Index) Node(id int64) (Element, bool) {
	return idx.lookup(TypeNode, id)
}

func (idx *Index) lookup(typ string, id int64) (Element, bool) {
	i, ok := idx.byKey[elementKey{typ, id}]
	if !ok {
		return Element{}, false
	}
	return idx.elements[i], true
}

// String is used in debug logging.
func (idx *Index) String() string {
	return fmt.Sprintf("Index(%d elements)", len(idx.elements))
}
