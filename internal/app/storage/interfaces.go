// Package storage defines the persistence interfaces consumed by the
// application services. Implementations translate driver-level errors to the
// domain sentinels: missing rows surface as domain.ErrNotFound and uniqueness
// violations as domain.ErrConflict.
package storage

import (
	"context"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/community"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/messaging"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/notification"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/social"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/user"
)

// Page bounds list queries. Zero values mean the store default (skip 0,
// take 20).
type Page struct {
	Skip int
	Take int
}

// QuizFilter narrows quiz listings. Zero fields are ignored. AuthorIDs is
// used for follower feeds; PublishedOnly restricts to published quizzes.
type QuizFilter struct {
	AuthorID      string
	AuthorIDs     []string
	Category      string
	Tag           string
	PublishedOnly bool
	Page          Page
}

// UserStore persists users, follow edges and blocks.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)

	CreateFollow(ctx context.Context, f user.Follow) error
	DeleteFollow(ctx context.Context, followerID, followeeID string) error
	FollowExists(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowers(ctx context.Context, userID string, page Page) ([]user.User, error)
	ListFollowing(ctx context.Context, userID string, page Page) ([]user.User, error)
	ListFollowingIDs(ctx context.Context, userID string) ([]string, error)

	// CreateBlock also removes the follow edges in both directions atomically.
	CreateBlock(ctx context.Context, b user.Block) error
	DeleteBlock(ctx context.Context, blockerID, blockedID string) error
	// BlockExists reports whether either user blocks the other.
	BlockExists(ctx context.Context, userA, userB string) (bool, error)
}

// QuizStore persists quizzes with their nested questions and options, plus
// responses, comments and likes.
type QuizStore interface {
	// CreateQuiz and UpdateQuiz write the quiz row and its questions/options
	// in one transaction; UpdateQuiz replaces the nested rows wholesale.
	CreateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error)
	UpdateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error)
	GetQuiz(ctx context.Context, id string) (quiz.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	SetQuizPublished(ctx context.Context, id string, published bool) (quiz.Quiz, error)
	// ListQuizzes returns matching quiz rows without nested questions.
	ListQuizzes(ctx context.Context, filter QuizFilter) ([]quiz.Quiz, error)

	// UpsertResponse replaces any previous response by the same user and
	// maintains the quiz response counter.
	UpsertResponse(ctx context.Context, r quiz.Response) (quiz.Response, error)
	GetResponse(ctx context.Context, quizID, userID string) (quiz.Response, error)
	ListResponses(ctx context.Context, quizID string, page Page) ([]quiz.Response, error)

	CreateComment(ctx context.Context, c quiz.Comment) (quiz.Comment, error)
	GetComment(ctx context.Context, id string) (quiz.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, quizID string, page Page) ([]quiz.Comment, error)

	// CreateLike and DeleteLike maintain the quiz like counter.
	CreateLike(ctx context.Context, l quiz.Like) error
	DeleteLike(ctx context.Context, quizID, userID string) error

	ListCategories(ctx context.Context) ([]string, error)
	ListTags(ctx context.Context) ([]string, error)
}

// CommunityStore persists communities, memberships and invitations.
type CommunityStore interface {
	// CreateCommunity inserts the community and its owner membership in one
	// transaction.
	CreateCommunity(ctx context.Context, c community.Community, owner community.Member) (community.Community, error)
	UpdateCommunity(ctx context.Context, c community.Community) (community.Community, error)
	GetCommunity(ctx context.Context, id string) (community.Community, error)
	DeleteCommunity(ctx context.Context, id string) error
	// ListCommunities returns public communities plus those the user belongs to.
	ListCommunities(ctx context.Context, userID string, page Page) ([]community.Community, error)

	AddMember(ctx context.Context, m community.Member) error
	RemoveMember(ctx context.Context, communityID, userID string) error
	GetMember(ctx context.Context, communityID, userID string) (community.Member, error)
	UpdateMemberRole(ctx context.Context, communityID, userID string, role community.Role) error
	// TransferOwnership promotes the new owner and demotes the previous owner
	// to moderator in one transaction.
	TransferOwnership(ctx context.Context, communityID, fromUserID, toUserID string) error
	ListMembers(ctx context.Context, communityID string, page Page) ([]community.Member, error)

	CreateInvitation(ctx context.Context, inv community.Invitation) (community.Invitation, error)
	GetInvitation(ctx context.Context, id string) (community.Invitation, error)
	UpdateInvitation(ctx context.Context, inv community.Invitation) (community.Invitation, error)
	ListInvitations(ctx context.Context, inviteeID string) ([]community.Invitation, error)
}

// MessageStore persists conversations and messages.
type MessageStore interface {
	CreateConversation(ctx context.Context, c messaging.Conversation) (messaging.Conversation, error)
	GetConversation(ctx context.Context, id string) (messaging.Conversation, error)
	GetConversationBetween(ctx context.Context, userA, userB string) (messaging.Conversation, error)
	ListConversations(ctx context.Context, userID string, page Page) ([]messaging.Conversation, error)

	// CreateMessage also advances the conversation's last-message timestamp.
	CreateMessage(ctx context.Context, m messaging.Message) (messaging.Message, error)
	ListMessages(ctx context.Context, conversationID string, page Page) ([]messaging.Message, error)
	// ListMessagesSince returns messages with CreatedAt strictly after since,
	// oldest first.
	ListMessagesSince(ctx context.Context, conversationID string, since time.Time) ([]messaging.Message, error)
	// MarkConversationRead sets ReadAt on unread messages sent by the peer.
	MarkConversationRead(ctx context.Context, conversationID, readerID string, at time.Time) error
}

// NotificationStore persists notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error)
	ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, page Page) ([]notification.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientID string) error
	MarkAllNotificationsRead(ctx context.Context, recipientID string) error
	CountUnreadNotifications(ctx context.Context, recipientID string) (int, error)
}

// SocialStore persists social-media connections and cross-posts.
type SocialStore interface {
	// UpsertConnection replaces any existing connection for (user, provider).
	UpsertConnection(ctx context.Context, c social.Connection) (social.Connection, error)
	GetConnection(ctx context.Context, userID string, provider social.Provider) (social.Connection, error)
	DeleteConnection(ctx context.Context, userID string, provider social.Provider) error
	ListConnections(ctx context.Context, userID string) ([]social.Connection, error)

	CreateSocialPost(ctx context.Context, p social.Post) (social.Post, error)
	UpdateSocialPost(ctx context.Context, p social.Post) (social.Post, error)
	GetSocialPost(ctx context.Context, id string) (social.Post, error)
	ListSocialPosts(ctx context.Context, userID string, page Page) ([]social.Post, error)
	// ListDuePosts returns pending posts whose ScheduledFor is at or before now.
	ListDuePosts(ctx context.Context, now time.Time) ([]social.Post, error)
}
