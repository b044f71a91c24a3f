package concept

// SearchOptions provides paging for concept search.
type SearchOptions struct {
	Limit  int
	Offset int
}
