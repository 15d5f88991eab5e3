package domain

import "time"

// Thread is the stable handle for one ordered (recipient, sender) pair.
type Thread struct {
	ID          int64      `json:"id"`
	RecipientID int64      `json:"recipientId"`
	SenderID    int64      `json:"senderId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// ActiveAt is the inbox ordering key.
func (t Thread) ActiveAt() time.Time {
	if t.UpdatedAt != nil && !t.UpdatedAt.IsZero() {
		return *t.UpdatedAt
	}
	return t.CreatedAt
}

// Report authorizes forwarding a complaint about a thread to the admin.
type Report struct {
	ThreadID    int64 `json:"threadId"`
	ReporterID  int64 `json:"reporterId"`
	RecipientID int64 `json:"recipientId"`
	SenderID    int64 `json:"senderId"`
	AdminID     int64 `json:"adminId"`
}
