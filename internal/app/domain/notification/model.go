package notification

import "time"

// Kind identifies what produced a notification.
type Kind string

const (
	KindFollow  Kind = "follow"
	KindComment Kind = "comment"
	KindLike    Kind = "like"
	KindMessage Kind = "message"
	KindInvite  Kind = "invite"
)

// Notification is delivered to a recipient when another user acts on their
// content. SubjectID references the acted-on entity (quiz, conversation,
// invitation) depending on Kind.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	ActorID     string    `json:"actor_id"`
	Kind        Kind      `json:"kind"`
	SubjectID   string    `json:"subject_id,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
