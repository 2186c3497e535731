package requests

import "agri-api/internal/domain/thread"

// CreateThreadRequest creates a conversation thread.
type CreateThreadRequest struct {
	Title    *string        `json:"title,omitempty"`
	FarmID   *string        `json:"farm_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Params converts the request into service parameters.
func (r CreateThreadRequest) Params() thread.CreateParams {
	return thread.CreateParams{Title: r.Title, FarmID: r.FarmID, Metadata: r.Metadata}
}

// UpdateThreadRequest is a partial update. An empty farm_id unlinks the farm.
type UpdateThreadRequest struct {
	Title    *string        `json:"title,omitempty"`
	IsPinned *bool          `json:"is_pinned,omitempty"`
	FarmID   *string        `json:"farm_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Params converts the request into service parameters.
func (r UpdateThreadRequest) Params() thread.UpdateParams {
	return thread.UpdateParams{Title: r.Title, IsPinned: r.IsPinned, FarmID: r.FarmID, Metadata: r.Metadata}
}
