// Package memory is an in-memory implementation of the storage interfaces.
// It is safe for concurrent use and is primarily intended for tests and
// local development.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/community"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/messaging"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/notification"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/social"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/user"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// Store holds everything in maps guarded by one mutex. Insertion-order
// slices preserve creation order for listings.
type Store struct {
	mu sync.RWMutex

	users        map[string]user.User
	userIDByName map[string]string
	userIDByMail map[string]string

	follows     map[string]user.Follow
	followOrder []string
	blocks      map[string]user.Block

	quizzes        map[string]quiz.Quiz
	quizOrder      []string
	responses      map[string]map[string]quiz.Response
	responseOrder  map[string][]string
	comments       map[string]quiz.Comment
	commentsByQuiz map[string][]string
	likes          map[string]map[string]quiz.Like

	communities    map[string]community.Community
	communityOrder []string
	members        map[string]map[string]community.Member
	memberOrder    map[string][]string
	invitations    map[string]community.Invitation
	inviteOrder    []string

	conversations map[string]messaging.Conversation
	convByPair    map[string]string
	messages      map[string][]messaging.Message

	notifsByUser map[string][]notification.Notification

	connections map[string]social.Connection
	socialPosts map[string]social.Post
	postOrder   []string
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.QuizStore = (*Store)(nil)
var _ storage.CommunityStore = (*Store)(nil)
var _ storage.MessageStore = (*Store)(nil)
var _ storage.NotificationStore = (*Store)(nil)
var _ storage.SocialStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:          make(map[string]user.User),
		userIDByName:   make(map[string]string),
		userIDByMail:   make(map[string]string),
		follows:        make(map[string]user.Follow),
		blocks:         make(map[string]user.Block),
		quizzes:        make(map[string]quiz.Quiz),
		responses:      make(map[string]map[string]quiz.Response),
		responseOrder:  make(map[string][]string),
		comments:       make(map[string]quiz.Comment),
		commentsByQuiz: make(map[string][]string),
		likes:          make(map[string]map[string]quiz.Like),
		communities:    make(map[string]community.Community),
		members:        make(map[string]map[string]community.Member),
		memberOrder:    make(map[string][]string),
		invitations:    make(map[string]community.Invitation),
		conversations:  make(map[string]messaging.Conversation),
		convByPair:     make(map[string]string),
		messages:       make(map[string][]messaging.Message),
		notifsByUser:   make(map[string][]notification.Notification),
		connections:    make(map[string]social.Connection),
		socialPosts:    make(map[string]social.Post),
	}
}

func newID() string { return uuid.NewString() }

func pairKey(a, b string) string { return a + "|" + b }

// bounds applies pagination defaults to a slice length and returns the
// half-open range [lo, hi).
func bounds(page storage.Page, n int) (int, int) {
	skip, take := page.Skip, page.Take
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = 20
	}
	if skip > n {
		skip = n
	}
	hi := skip + take
	if hi > n {
		hi = n
	}
	return skip, hi
}
