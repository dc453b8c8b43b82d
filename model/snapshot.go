package model

// ResponseSnapshot is a plain, arena-independent copy of a response tree.
type ResponseSnapshot struct {
	Kind            string             `json:"kind"`
	Name            string             `json:"name"`
	ServiceID       string             `json:"service_id,omitempty"`
	NextPageToken   string             `json:"next_page_token,omitempty"`
	Metadata        map[string]any     `json:"metadata,omitempty"`
	Results         []ResultSnapshot   `json:"results,omitempty"`
	InternalResults []ResultSnapshot   `json:"internal_results,omitempty"`
	Children        []ResponseSnapshot `json:"children,omitempty"`
}

// ResultSnapshot is a plain copy of a result and its nested results.
type ResultSnapshot struct {
	Kind     string                    `json:"kind"`
	Name     string                    `json:"name"`
	Common   bool                      `json:"common,omitempty"`
	Fields   map[string]any            `json:"fields,omitempty"`
	Children map[string]ResultSnapshot `json:"children,omitempty"`
	Items    []ResultSnapshot          `json:"items,omitempty"`
}

// Snapshot copies the tree rooted at r. The snapshot stays valid after Free.
func (r *Response) Snapshot() ResponseSnapshot {
	s := ResponseSnapshot{
		Kind:      r.kind.String(),
		Name:      r.name,
		ServiceID: r.serviceID,
	}
	if r.hasNextPage {
		s.NextPageToken = r.nextPage
	}
	if r.meta.Len() > 0 {
		s.Metadata = r.meta.ToMap()
	}
	s.Results = snapshotResults(r.visible)
	s.InternalResults = snapshotResults(r.internal)
	for _, c := range r.children {
		s.Children = append(s.Children, c.Snapshot())
	}
	return s
}

func snapshotResults(list []*Result) []ResultSnapshot {
	if len(list) == 0 {
		return nil
	}
	out := make([]ResultSnapshot, len(list))
	for i, res := range list {
		out[i] = res.Snapshot()
	}
	return out
}

// Snapshot copies the result and everything nested in it.
func (r *Result) Snapshot() ResultSnapshot {
	s := ResultSnapshot{
		Kind:   r.kind.String(),
		Name:   r.name,
		Common: r.common,
		Items:  snapshotResults(r.items),
	}
	if r.fields.Len() > 0 {
		s.Fields = r.fields.ToMap()
	}
	if len(r.children) > 0 {
		s.Children = make(map[string]ResultSnapshot, len(r.children))
		for _, c := range r.children {
			s.Children[c.name] = c.child.Snapshot()
		}
	}
	return s
}
