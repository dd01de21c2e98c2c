package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/gobwas/glob"

	"github.com/Iron-Ham/superchat/internal/errors"
)

const maxSuggestions = 3

// Resolve maps a user query to exactly one model.
//
// Tiers are tried in order and the first non-empty tier decides:
//  1. exact identifier (case-sensitive, then case-insensitive)
//  2. alias: the query equals the display name, the model name,
//     "family model" or "family model release" (case-insensitive)
//  3. substring: every word of the query occurs in the model's
//     identifier, display name, company, family, model or release
//
// Several candidates in the deciding tier yield an *errors.AmbiguousError with
// identifiers sorted; no candidate yields an *errors.NotFoundError carrying
// edit-distance suggestions.
func (c *Catalog) Resolve(query string) (*Model, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, errors.NewValidationError("model query must not be empty")
	}

	if m, ok := c.byID[q]; ok {
		return m, nil
	}

	lower := strings.ToLower(q)
	tiers := []func(*Model) bool{
		func(m *Model) bool { return strings.ToLower(m.ID) == lower },
		func(m *Model) bool { return matchesAlias(m, lower) },
		func(m *Model) bool { return matchesWords(m, strings.Fields(lower)) },
	}

	for _, match := range tiers {
		var hits []*Model
		for _, m := range c.models {
			if match(m) {
				hits = append(hits, m)
			}
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			return hits[0], nil
		default:
			ids := make([]string, len(hits))
			for i, m := range hits {
				ids[i] = m.ID
			}
			sort.Strings(ids)
			return nil, errors.NewAmbiguousError(q, ids)
		}
	}

	return nil, errors.NewNotFoundError("model", q).WithSuggestions(c.suggest(lower))
}

func aliases(m *Model) []string {
	family := strings.TrimSpace(m.Family + " " + m.Name)
	out := []string{m.DisplayName(), m.Name, family}
	if m.Release != "" {
		out = append(out, family+" "+m.Release)
	}
	return out
}

func matchesAlias(m *Model, lower string) bool {
	for _, a := range aliases(m) {
		if a != "" && strings.ToLower(a) == lower {
			return true
		}
	}
	return false
}

func haystack(m *Model) string {
	return strings.ToLower(strings.Join([]string{
		m.ID, m.DisplayName(), m.Company, m.Family, m.Name, m.Release,
	}, " "))
}

func matchesWords(m *Model, words []string) bool {
	if len(words) == 0 {
		return false
	}
	h := haystack(m)
	for _, w := range words {
		if !strings.Contains(h, w) {
			return false
		}
	}
	return true
}

// suggest returns up to maxSuggestions identifiers close to the query by edit
// distance, compared against both identifier and display name.
func (c *Catalog) suggest(lower string) []string {
	type scored struct {
		id   string
		dist int
	}
	limit := len(lower)/2 + 1
	if limit < 2 {
		limit = 2
	}

	var candidates []scored
	for _, m := range c.models {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(m.ID))
		if dn := levenshtein.ComputeDistance(lower, strings.ToLower(m.DisplayName())); dn < d {
			d = dn
		}
		if d <= limit {
			candidates = append(candidates, scored{m.ID, d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})

	var out []string
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		out = append(out, candidates[i].id)
	}
	return out
}

// Filter returns the models whose identifier or display name matches a glob
// pattern, case-insensitively. A pattern without wildcards matches anywhere.
// An empty pattern returns every model.
func (c *Catalog) Filter(pattern string) ([]*Model, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return c.List(), nil
	}
	if !strings.ContainsAny(pattern, "*?[{") {
		pattern = "*" + pattern + "*"
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid pattern: %v", err)).WithValue(pattern)
	}

	var out []*Model
	for _, m := range c.models {
		if g.Match(strings.ToLower(m.ID)) || g.Match(strings.ToLower(m.DisplayName())) {
			out = append(out, m)
		}
	}
	return out, nil
}
