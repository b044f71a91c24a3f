package journal

// ListOptions provides filtering options for listing journal entries.
type ListOptions struct {
	BranchPath string
	Outcome    *Outcome
	Limit      int
	Offset     int
}
