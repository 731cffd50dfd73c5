// pkg/synonyms/schema.go
package synonyms

// Registry is the declared ingredient synonym list. Aliases are maintained by
// hand; the engine never infers equivalences from data.
type Registry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Groups      []Group `json:"groups"`
}

// Group is one equivalence class of ingredient names. All terms in a group
// resolve to each other at search time.
type Group struct {
	ID    string   `json:"id"`
	Terms []string `json:"terms"`
}
