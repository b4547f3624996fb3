package fixture

import (
	"fmt"
	"slices"
)

// Kind is the category of a generated node
type Kind string

const (
	KindDatacenter Kind = "datacenter"
	KindSecZone    Kind = "sec_zone"
	KindNetwork    Kind = "network"
	KindHost       Kind = "host"
)

// KindRule describes whether a kind may have children and which kinds they may be
type KindRule struct {
	CanHaveChildren bool
	ChildKinds      []Kind
}

// Adjacency is a read-only kind table. Build it with NewAdjacency or use
// DefaultAdjacency; it is never mutated after construction.
type Adjacency struct {
	rules map[Kind]KindRule
	kinds []Kind
}

var defaultAdjacency = mustAdjacency(map[Kind]KindRule{
	KindDatacenter: {CanHaveChildren: true, ChildKinds: []Kind{KindSecZone, KindDatacenter, KindNetwork}},
	KindSecZone:    {CanHaveChildren: true, ChildKinds: []Kind{KindNetwork}},
	KindNetwork:    {CanHaveChildren: true, ChildKinds: []Kind{KindHost}},
	KindHost:       {CanHaveChildren: false},
})

// DefaultAdjacency returns the datacenter/sec_zone/network/host table
func DefaultAdjacency() *Adjacency {
	return defaultAdjacency
}

// NewAdjacency copies rules into a new table. Every child kind must itself
// be present in the table.
func NewAdjacency(rules map[Kind]KindRule) (*Adjacency, error) {
	a := &Adjacency{rules: make(map[Kind]KindRule, len(rules))}
	for kind, rule := range rules {
		a.rules[kind] = KindRule{
			CanHaveChildren: rule.CanHaveChildren,
			ChildKinds:      slices.Clone(rule.ChildKinds),
		}
		a.kinds = append(a.kinds, kind)
	}
	slices.Sort(a.kinds)

	for kind, rule := range a.rules {
		for _, child := range rule.ChildKinds {
			if _, ok := a.rules[child]; !ok {
				return nil, fmt.Errorf("%w: kind %q lists unknown child kind %q", ErrInvalidArgument, kind, child)
			}
		}
	}
	return a, nil
}

func mustAdjacency(rules map[Kind]KindRule) *Adjacency {
	a, err := NewAdjacency(rules)
	if err != nil {
		panic(err)
	}
	return a
}

// Rule returns the rule for kind
func (a *Adjacency) Rule(kind Kind) (KindRule, bool) {
	rule, ok := a.rules[kind]
	if !ok {
		return KindRule{}, false
	}
	rule.ChildKinds = slices.Clone(rule.ChildKinds)
	return rule, true
}

// CanHaveChildren reports whether kind may have children. Unknown kinds cannot.
func (a *Adjacency) CanHaveChildren(kind Kind) bool {
	rule, ok := a.rules[kind]
	return ok && rule.CanHaveChildren && len(rule.ChildKinds) > 0
}

// ChildKinds returns the allowed child kinds of kind in draw order
func (a *Adjacency) ChildKinds(kind Kind) []Kind {
	return slices.Clone(a.rules[kind].ChildKinds)
}

// Allows reports whether child is a legal child kind of parent
func (a *Adjacency) Allows(parent, child Kind) bool {
	return a.CanHaveChildren(parent) && slices.Contains(a.rules[parent].ChildKinds, child)
}

// Kinds returns every kind in the table, sorted
func (a *Adjacency) Kinds() []Kind {
	return slices.Clone(a.kinds)
}

// childKinds is the non-copying accessor used on the generation hot path
func (a *Adjacency) childKinds(kind Kind) []Kind {
	return a.rules[kind].ChildKinds
}
