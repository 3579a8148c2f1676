package records

type recordRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type activeRequest struct {
	ID *string `json:"id"`
}

// ListResponse is the outward-facing collection view.
type ListResponse struct {
	Items    []Record `json:"items"`
	ActiveID *string  `json:"activeId"`
}

// ActiveResponse reports the active pointer after a change.
type ActiveResponse struct {
	ActiveID *string `json:"activeId"`
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
