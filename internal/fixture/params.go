package fixture

import (
	"fmt"
	"strconv"
	"strings"
)

// Params is one generation request
type Params struct {
	Roots    int    `json:"roots" yaml:"roots"`
	Depth    int    `json:"depth" yaml:"depth"`
	Children int    `json:"children" yaml:"children"`
	Seed     *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultParams matches the generator's documented defaults
func DefaultParams() Params {
	return Params{Roots: 3, Depth: 4, Children: 5}
}

// Validate checks the numeric bounds
func (p Params) Validate() error {
	return ValidateParams(p.Roots, p.Depth, p.Children)
}

// WithSeed returns a copy of p seeded with seed
func (p Params) WithSeed(seed int64) Params {
	p.Seed = &seed
	return p
}

// Generate runs a fresh Generator for p. Extra options are applied after the
// seed.
func (p Params) Generate(opts ...Option) ([]Record, error) {
	if p.Seed != nil {
		opts = append([]Option{WithSeed(*p.Seed)}, opts...)
	}
	return NewGenerator(opts...).Generate(p.Roots, p.Depth, p.Children)
}

// ParseParams reads roots, depth, children and seed through lookup, keeping
// the defaults for names that are absent or blank. A blank seed means
// unseeded.
func ParseParams(lookup func(name string) string, defaults Params) (Params, error) {
	p := defaults

	fields := []struct {
		name string
		dst  *int
	}{
		{"roots", &p.Roots},
		{"depth", &p.Depth},
		{"children", &p.Children},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(lookup(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidArgument, f.name, raw)
		}
		*f.dst = v
	}

	if raw := strings.TrimSpace(lookup("seed")); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Params{}, fmt.Errorf("%w: seed must be an integer, got %q", ErrInvalidArgument, raw)
		}
		p.Seed = &seed
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}
