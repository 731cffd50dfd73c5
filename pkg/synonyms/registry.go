// pkg/synonyms/registry.go
package synonyms

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Registry) validate() error {
	for _, g := range r.Groups {
		if len(g.Terms) < 2 {
			return fmt.Errorf("synonym group %q needs at least two terms", g.ID)
		}
		for _, t := range g.Terms {
			if strings.TrimSpace(t) == "" {
				return fmt.Errorf("synonym group %q contains an empty term", g.ID)
			}
		}
	}
	return nil
}

// FilterLines renders the groups in the Solr synonym format consumed by the
// Elasticsearch synonym token filter, e.g. "scallion, green onion".
func (r *Registry) FilterLines() []string {
	lines := make([]string, 0, len(r.Groups))
	for _, g := range r.Groups {
		terms := make([]string, 0, len(g.Terms))
		for _, t := range g.Terms {
			terms = append(terms, strings.ToLower(strings.TrimSpace(t)))
		}
		lines = append(lines, strings.Join(terms, ", "))
	}
	return lines
}
