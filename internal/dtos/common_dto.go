package dtos

// ListQuery is the shared search/sort query string of list endpoints.
type ListQuery struct {
	Search    string `form:"search"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// Order returns the sort order, defaulting to "desc".
func (q ListQuery) Order() string {
	if q.SortOrder == "" {
		return "desc"
	}
	return q.SortOrder
}

// ToggleResponse reports the outcome of a favorite toggle.
type ToggleResponse struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
}

const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)
