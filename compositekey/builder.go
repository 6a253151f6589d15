package compositekey

import "xdao.co/ledgertrust/keys"

// Builder accumulates weighted children for a composite node.
//
// The first error encountered is kept and returned by Build, so calls can be
// chained without checking each step.
type Builder struct {
	children []Weighted
	err      error
}

func NewBuilder() *Builder { return &Builder{} }

// AddKey adds pk as a leaf child with the given weight.
func (b *Builder) AddKey(pk keys.PublicKey, weight int) *Builder {
	if b.err != nil {
		return b
	}
	leaf, err := NewLeaf(pk)
	if err != nil {
		b.err = err
		return b
	}
	b.children = append(b.children, Weighted{Key: leaf, Weight: weight})
	return b
}

// AddKeys adds each key as a weight-1 leaf child.
func (b *Builder) AddKeys(pks ...keys.PublicKey) *Builder {
	for _, pk := range pks {
		b.AddKey(pk, 1)
	}
	return b
}

// AddChild adds an existing key (leaf or node) with the given weight.
func (b *Builder) AddChild(k *Key, weight int) *Builder {
	if b.err != nil {
		return b
	}
	b.children = append(b.children, Weighted{Key: k, Weight: weight})
	return b
}

// Build returns the node. A threshold of 0 means "all of": the threshold is
// set to the sum of the child weights.
func (b *Builder) Build(threshold int) (*Key, error) {
	if b.err != nil {
		return nil, b.err
	}
	if threshold == 0 {
		for _, c := range b.children {
			threshold += c.Weight
		}
	}
	return New(b.children, threshold)
}
