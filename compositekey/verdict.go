package compositekey

// Verdict is the evaluation of one node of a key against a set of keys.
//
// This is representation-only evidence; IsFulfilledBy is the authority.
// It exists so a caller can answer "why not fulfilled?" without re-walking
// the tree by hand.
type Verdict struct {
	Key       string
	Leaf      bool
	Weight    int
	Threshold int

	Observed  int
	Satisfied bool
	Reasons   []string

	Children []Verdict
}

// Explain evaluates every node of k against set, without short-circuiting.
// The root verdict carries weight 1.
func (k *Key) Explain(set KeySet) Verdict {
	if k == nil {
		return Verdict{Reasons: []string{"Missing key"}}
	}
	return k.explain(set, 1)
}

func (k *Key) explain(set KeySet, weight int) Verdict {
	v := Verdict{Key: k.canonical, Weight: weight, Threshold: k.threshold}
	if k.children == nil {
		v.Leaf = true
		if set.containsText(k.canonical) {
			v.Observed = 1
			v.Satisfied = true
			v.Reasons = []string{"Satisfied"}
		} else {
			v.Reasons = []string{"Missing signature"}
		}
		return v
	}

	v.Children = make([]Verdict, 0, len(k.children))
	for _, c := range k.children {
		cv := c.Key.explain(set, c.Weight)
		if cv.Satisfied {
			v.Observed += c.Weight
		}
		v.Children = append(v.Children, cv)
	}
	v.Satisfied = v.Observed >= k.threshold
	switch {
	case v.Satisfied:
		v.Reasons = []string{"Satisfied"}
	case v.Observed == 0:
		v.Reasons = []string{"Missing required evidence"}
	default:
		v.Reasons = []string{"Insufficient weight"}
	}
	return v
}
