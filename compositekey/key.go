package compositekey

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"xdao.co/ledgertrust/keys"
)

const (
	// MaxDepth bounds the height of a tree, counting a bare leaf as depth 1.
	MaxDepth = 64
	// MaxTotalWeight bounds the sum of child weights at any single node.
	MaxTotalWeight = math.MaxInt32
)

// Key is an immutable tree of public keys with per-child weights and a
// per-node threshold.
//
// A Key is either a leaf wrapping one keys.PublicKey, or a node with an
// ordered list of weighted children. Keys are only produced by the
// constructors and decoders in this package and are never mutated
// afterwards, so a *Key may be shared freely between goroutines and owners.
type Key struct {
	leaf      keys.PublicKey
	children  []Weighted
	threshold int

	canonical string
	hash      uint64
	depth     int
	nodes     int
}

// Weighted is a child of a composite node together with its weight.
type Weighted struct {
	Key    *Key
	Weight int
}

// NewLeaf returns the degenerate single-key tree for pk.
// It behaves exactly like the bare key: fulfilled iff pk is in the set.
func NewLeaf(pk keys.PublicKey) (*Key, error) {
	if pk.IsZero() {
		return nil, structureError("CK-STR-007", "leaf requires a public key")
	}
	return newLeaf(pk, pk.String()), nil
}

// FromPublicKey is NewLeaf for keys known to be valid.
// It panics if pk is the zero PublicKey.
func FromPublicKey(pk keys.PublicKey) *Key {
	k, err := NewLeaf(pk)
	if err != nil {
		panic(err)
	}
	return k
}

func newLeaf(pk keys.PublicKey, text string) *Key {
	return &Key{
		leaf:      pk,
		threshold: 1,
		canonical: text,
		hash:      xxhash.Sum64String(text),
		depth:     1,
		nodes:     1,
	}
}

// New builds a composite node from an ordered list of weighted children.
//
// It fails with an ErrInvalidStructure error if the list is empty, a child is
// missing, any weight is below 1, or threshold is outside [1, sum of weights].
// Children must themselves be built by this package, which rules out cycles.
func New(children []Weighted, threshold int) (*Key, error) {
	if len(children) == 0 {
		return nil, structureError("CK-STR-001", "composite node requires at least one child")
	}
	var total int64
	depth, nodes := 0, 1
	var b strings.Builder
	b.WriteString(strconv.Itoa(threshold))
	b.WriteByte('(')
	for i, c := range children {
		if c.Key == nil || c.Key.canonical == "" {
			return nil, structureError("CK-STR-002", fmt.Sprintf("child %d is not a constructed key", i))
		}
		if c.Weight < 1 {
			return nil, structureError("CK-STR-003", fmt.Sprintf("child %d has weight %d, must be at least 1", i, c.Weight))
		}
		total += int64(c.Weight)
		if total > MaxTotalWeight {
			return nil, structureError("CK-STR-005", "total child weight overflows")
		}
		if c.Key.depth > depth {
			depth = c.Key.depth
		}
		nodes += c.Key.nodes
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(c.Weight))
		b.WriteByte('*')
		b.WriteString(c.Key.canonical)
	}
	if threshold < 1 || int64(threshold) > total {
		return nil, structureError("CK-STR-004", fmt.Sprintf("threshold %d outside [1, %d]", threshold, total))
	}
	if depth+1 > MaxDepth {
		return nil, structureError("CK-STR-006", fmt.Sprintf("tree depth exceeds %d", MaxDepth))
	}
	b.WriteByte(')')

	text := b.String()
	return &Key{
		children:  append([]Weighted(nil), children...),
		threshold: threshold,
		canonical: text,
		hash:      xxhash.Sum64String(text),
		depth:     depth + 1,
		nodes:     nodes,
	}, nil
}

// AnyOf is a node fulfilled by any single child (threshold 1, weights 1).
func AnyOf(children ...*Key) (*Key, error) {
	return New(unitWeights(children), 1)
}

// AllOf is a node fulfilled only when every child is (threshold = child count).
func AllOf(children ...*Key) (*Key, error) {
	return New(unitWeights(children), len(children))
}

// Threshold is an m-of-n node over unit-weight children.
func Threshold(m int, children ...*Key) (*Key, error) {
	return New(unitWeights(children), m)
}

func unitWeights(children []*Key) []Weighted {
	out := make([]Weighted, len(children))
	for i, c := range children {
		out[i] = Weighted{Key: c, Weight: 1}
	}
	return out
}

// IsLeaf reports whether k wraps a single public key.
func (k *Key) IsLeaf() bool { return k != nil && k.children == nil }

// PublicKey returns the wrapped key of a leaf.
func (k *Key) PublicKey() (keys.PublicKey, bool) {
	if !k.IsLeaf() {
		return keys.PublicKey{}, false
	}
	return k.leaf, true
}

// Threshold returns the node threshold. Leaves report 1.
func (k *Key) Threshold() int {
	if k == nil {
		return 0
	}
	return k.threshold
}

// TotalWeight returns the sum of child weights. Leaves report 1.
func (k *Key) TotalWeight() int {
	if k.IsLeaf() {
		return 1
	}
	total := 0
	for _, c := range k.children {
		total += c.Weight
	}
	return total
}

// Children returns a copy of the weighted children (nil for a leaf).
func (k *Key) Children() []Weighted {
	if k == nil || k.children == nil {
		return nil
	}
	return append([]Weighted(nil), k.children...)
}

// Depth returns the height of the tree; a leaf has depth 1.
func (k *Key) Depth() int {
	if k == nil {
		return 0
	}
	return k.depth
}

// NodeCount returns the number of nodes, leaves included.
func (k *Key) NodeCount() int {
	if k == nil {
		return 0
	}
	return k.nodes
}

// IsFulfilledBy reports whether the keys in set satisfy k.
//
// A leaf is fulfilled iff its key is in set. A node is fulfilled iff the
// summed weight of its fulfilled children reaches the threshold.
func (k *Key) IsFulfilledBy(set KeySet) bool {
	if k == nil {
		return false
	}
	if k.children == nil {
		return set.containsText(k.canonical)
	}
	sum := 0
	for _, c := range k.children {
		if c.Key.IsFulfilledBy(set) {
			sum += c.Weight
			if sum >= k.threshold {
				return true
			}
		}
	}
	return false
}

// IsFulfilledByKeys is IsFulfilledBy over the given keys.
func (k *Key) IsFulfilledByKeys(pks ...keys.PublicKey) bool {
	return k.IsFulfilledBy(NewKeySet(pks...))
}

// Leaves returns the distinct leaf keys of k in pre-order.
func (k *Key) Leaves() []keys.PublicKey {
	if k == nil {
		return nil
	}
	var out []keys.PublicKey
	seen := make(map[string]bool)
	var walk func(*Key)
	walk = func(n *Key) {
		if n.children == nil {
			if !seen[n.canonical] {
				seen[n.canonical] = true
				out = append(out, n.leaf)
			}
			return
		}
		for _, c := range n.children {
			walk(c.Key)
		}
	}
	walk(k)
	return out
}

// Contains reports whether pk appears as a leaf anywhere in k.
func (k *Key) Contains(pk keys.PublicKey) bool {
	if k == nil {
		return false
	}
	if k.children == nil {
		return k.leaf.Equal(pk)
	}
	for _, c := range k.children {
		if c.Key.Contains(pk) {
			return true
		}
	}
	return false
}

// Equal reports structural equality: same shape, order, weights, thresholds
// and leaf keys.
func (k *Key) Equal(o *Key) bool {
	if k == nil || o == nil {
		return k == o
	}
	return k == o || (k.hash == o.hash && k.canonical == o.canonical)
}

// Hash returns a 64-bit hash of the canonical form, stable across runs.
func (k *Key) Hash() uint64 {
	if k == nil {
		return 0
	}
	return k.hash
}

// String returns the canonical text form. See Parse for the grammar.
func (k *Key) String() string {
	if k == nil {
		return ""
	}
	return k.canonical
}
