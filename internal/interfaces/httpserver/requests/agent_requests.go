package requests

// RunRequest starts an advisory run on a thread.
type RunRequest struct {
	Content string `json:"content" binding:"required"`
	// UserID is accepted for compatibility with older clients and ignored.
	UserID string `json:"user_id,omitempty"`
}
