// Package ownership decides which virtual branch owns each uncommitted hunk.
package ownership

import (
	"fmt"
	"sort"
	"strings"

	"vbranch.dev/vbranch/internal/hunk"
)

// Claim assigns one hunk, identified by file and workspace line range, to a branch
type Claim struct {
	Path  string         `yaml:"path"`
	Range hunk.LineRange `yaml:"range"`
}

// ClaimOf returns the claim identifying h
func ClaimOf(h hunk.Hunk) Claim {
	return Claim{Path: h.Path, Range: h.OldRange()}
}

func (c Claim) String() string {
	return fmt.Sprintf("%s:%s", c.Path, c.Range)
}

// ParseClaim parses "path:start-end"
func ParseClaim(s string) (Claim, error) {
	idx := strings.LastIndex(s, ":")
	if idx <= 0 || idx == len(s)-1 {
		return Claim{}, fmt.Errorf("invalid ownership claim %q: expected path:start-end", s)
	}
	rng, err := hunk.ParseLineRange(s[idx+1:])
	if err != nil {
		return Claim{}, fmt.Errorf("invalid ownership claim %q: %w", s, err)
	}
	return Claim{Path: s[:idx], Range: rng}, nil
}

// SortClaims orders claims by path and start line
func SortClaims(claims []Claim) {
	sort.Slice(claims, func(i, j int) bool {
		if claims[i].Path != claims[j].Path {
			return claims[i].Path < claims[j].Path
		}
		return claims[i].Range.Start < claims[j].Range.Start
	})
}

// Remap translates claims through line changes per file
func Remap(claims []Claim, changes map[string][]hunk.Hunk) []Claim {
	if len(changes) == 0 {
		return claims
	}
	out := make([]Claim, 0, len(claims))
	for _, c := range claims {
		if ch, ok := changes[c.Path]; ok {
			c.Range = hunk.MapRange(c.Range, ch)
		}
		out = append(out, c)
	}
	return out
}

// Without returns claims minus the ones in remove
func Without(claims []Claim, remove []Claim) []Claim {
	if len(remove) == 0 {
		return claims
	}
	drop := make(map[Claim]struct{}, len(remove))
	for _, c := range remove {
		drop[c] = struct{}{}
	}
	out := make([]Claim, 0, len(claims))
	for _, c := range claims {
		if _, ok := drop[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
