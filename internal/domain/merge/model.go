package merge

// Kind is the direction of a merge between a parent and a child branch.
type Kind string

const (
	// KindRebase brings parent changes down into a child.
	KindRebase Kind = "rebase"
	// KindPromotion brings child changes up into its parent.
	KindPromotion Kind = "promotion"
)

// Result describes an applied merge.
type Result struct {
	Kind    Kind   `json:"kind"`
	Source  string `json:"source"`
	Target  string `json:"target"`
	Tick    int64  `json:"tick"`
	Copied  int    `json:"copied"`
	Message string `json:"message"`
	// Forced is set when nothing new was found and the merge was recorded anyway.
	Forced bool `json:"forced"`
}
