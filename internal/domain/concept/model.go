package concept

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Document is an edited concept exactly as the authoring system sent it.
// Its schema belongs to the authoring system; only the id is read here.
type Document = json.RawMessage

// Concept is one stored version of a document on a branch.
type Concept struct {
	ID         string          `json:"id"`
	BranchPath string          `json:"branch_path"`
	Body       json.RawMessage `json:"body"`
	Tick       int64           `json:"tick"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SearchResult represents a search hit with relevance
type SearchResult struct {
	Concept Concept `json:"concept"`
	Rank    float64 `json:"rank"`
	Snippet string  `json:"snippet,omitempty"`
}

// idFields are tried in order when reading a document's identifier.
var idFields = []string{"conceptId", "id"}

// DocumentID extracts the concept identifier from a document body.
func DocumentID(doc Document) (string, error) {
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return "", ErrInvalidDocument
	}
	for _, res := range gjson.GetManyBytes(doc, idFields...) {
		if res.Exists() && res.String() != "" {
			return res.String(), nil
		}
	}
	return "", ErrMissingID
}
