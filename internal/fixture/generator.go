// Package fixture generates synthetic datacenter hierarchies for test data.
//
// A Generator builds a forest of typed records (datacenter, sec_zone,
// network, host) level by level, then back-fills each record's
// immediate_children list. With a seed the output is fully reproducible,
// identifiers included.
package fixture

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTooManyRecords  = errors.New("record limit exceeded")
)

// Generator produces hierarchical fixture data.
//
// A Generator owns its random source and is not safe for concurrent use.
// Use one Generator per goroutine, or guard Generate with a mutex.
type Generator struct {
	src        rand.Source
	rng        *rand.Rand
	faker      *gofakeit.Faker
	ids        *sourceReader
	adjacency  *Adjacency
	maxRecords int
}

// Option configures a Generator
type Option func(*Generator)

// WithSeed makes every draw reproducible for the given seed
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.src = rand.NewPCG(uint64(seed), uint64(seed))
	}
}

// WithSource replaces the random source entirely
func WithSource(src rand.Source) Option {
	return func(g *Generator) {
		g.src = src
	}
}

// WithAdjacency replaces the default kind table
func WithAdjacency(a *Adjacency) Option {
	return func(g *Generator) {
		if a != nil {
			g.adjacency = a
		}
	}
}

// WithMaxRecords caps the size of a single forest. Zero means no cap.
func WithMaxRecords(n int) Option {
	return func(g *Generator) {
		g.maxRecords = n
	}
}

// NewGenerator creates a generator. Without WithSeed or WithSource the
// output is not reproducible.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{adjacency: DefaultAdjacency()}
	for _, opt := range opts {
		opt(g)
	}
	if g.src == nil {
		g.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	g.rng = rand.New(g.src)
	g.faker = gofakeit.NewFaker(g.src, false)
	g.ids = &sourceReader{rng: g.rng}
	return g
}

// Generate builds numRoots datacenter trees of at most maxDepth levels
// (maxDepth 1 yields roots only), each node receiving between 0 and
// maxChildren children. Records are returned roots first, then level by
// level, children grouped by parent in parent order.
func (g *Generator) Generate(numRoots, maxDepth, maxChildren int) ([]Record, error) {
	if err := ValidateParams(numRoots, maxDepth, maxChildren); err != nil {
		return nil, err
	}

	records := make([]Record, 0, numRoots)
	level := make([]int, 0, numRoots)

	for range numRoots {
		if err := g.checkLimit(len(records)); err != nil {
			return nil, err
		}
		rec, err := g.newRecord(KindDatacenter, nil)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		level = append(level, len(records)-1)
	}

	for remaining := maxDepth - 1; remaining > 0 && len(level) > 0; remaining-- {
		var next []int
		for _, idx := range level {
			parent := records[idx]
			if !g.adjacency.CanHaveChildren(parent.Kind) {
				continue
			}
			candidates := g.adjacency.childKinds(parent.Kind)
			count := g.rng.IntN(maxChildren + 1)
			for range count {
				if err := g.checkLimit(len(records)); err != nil {
					return nil, err
				}
				kind := candidates[g.rng.IntN(len(candidates))]
				parentID := parent.ObjectID
				rec, err := g.newRecord(kind, &parentID)
				if err != nil {
					return nil, err
				}
				records = append(records, rec)
				next = append(next, len(records)-1)
			}
		}
		level = next
	}

	linkChildren(records)
	return records, nil
}

// ValidateParams checks generation parameters without generating anything
func ValidateParams(numRoots, maxDepth, maxChildren int) error {
	if numRoots < 0 {
		return fmt.Errorf("%w: numRoots must be >= 0, got %d", ErrInvalidArgument, numRoots)
	}
	if maxDepth < 1 {
		return fmt.Errorf("%w: maxDepth must be >= 1, got %d", ErrInvalidArgument, maxDepth)
	}
	if maxChildren < 0 {
		return fmt.Errorf("%w: maxChildrenPerNode must be >= 0, got %d", ErrInvalidArgument, maxChildren)
	}
	return nil
}

func (g *Generator) checkLimit(n int) error {
	if g.maxRecords > 0 && n >= g.maxRecords {
		return fmt.Errorf("%w: more than %d records", ErrTooManyRecords, g.maxRecords)
	}
	return nil
}

// newRecord draws every field of a record. The draw order is part of the
// reproducibility contract.
func (g *Generator) newRecord(kind Kind, parentID *string) (Record, error) {
	id, err := uuid.NewRandomFromReader(g.ids)
	if err != nil {
		return Record{}, fmt.Errorf("generating object id: %w", err)
	}

	rec := Record{
		ObjectID:  id.String(),
		SecZone:   SecurityZones[g.rng.IntN(len(SecurityZones))],
		ConfigID:  fmt.Sprintf("CFG-%d", 10000+g.rng.IntN(90000)),
		ParentID:  parentID,
		IPAddress: g.faker.IPv4Address(),
		Kind:      kind,
	}
	if kind != KindHost {
		rec.Status = Statuses[g.rng.IntN(len(Statuses))]
		rec.PercentUtilized = math.Round(g.rng.Float64()*100*100) / 100
	}
	return rec, nil
}

// linkChildren fills ImmediateChildren from ParentID in two linear passes
func linkChildren(records []Record) {
	children := make(map[string][]string)
	for i := range records {
		if p := records[i].ParentID; p != nil {
			children[*p] = append(children[*p], records[i].ObjectID)
		}
	}
	for i := range records {
		if ids, ok := children[records[i].ObjectID]; ok {
			records[i].ImmediateChildren = ids
		} else {
			records[i].ImmediateChildren = []string{}
		}
	}
}

// sourceReader adapts the generator's rng to io.Reader for uuid
type sourceReader struct {
	rng *rand.Rand
}

func (r *sourceReader) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := r.rng.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}
