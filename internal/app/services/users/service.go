// Package users implements registration, authentication and the social graph.
package users

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/notification"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/user"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// Service manages user accounts, follow edges and blocks.
type Service struct {
	store         storage.UserStore
	notifications storage.NotificationStore
	log           *logger.Logger
}

// New constructs a users service.
func New(store storage.UserStore, notifications storage.NotificationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, notifications: notifications, log: log}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, email, password string) (user.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if !usernamePattern.MatchString(username) {
		return user.User{}, fmt.Errorf("%w: username must be 3-30 word characters", domain.ErrInvalid)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return user.User{}, fmt.Errorf("%w: invalid email address", domain.ErrInvalid)
	}
	if len(password) < 8 {
		return user.User{}, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.CreateUser(ctx, user.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  username,
	})
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", created.ID).
		WithField("username", created.Username).
		Info("user registered")
	return created, nil
}

// Authenticate verifies credentials. The login may be a username or email.
func (s *Service) Authenticate(ctx context.Context, login, password string) (user.User, error) {
	login = strings.TrimSpace(login)

	var (
		u   user.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.store.GetUserByEmail(ctx, login)
	} else {
		u, err = s.store.GetUserByUsername(ctx, login)
	}
	if err != nil {
		// Uniform failure for unknown user and wrong password.
		return user.User{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return user.User{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	return u, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

// GetProfile returns a user as seen by the viewer. Private profiles are only
// fully visible to their owner and accepted followers; other viewers get the
// identity fields with bio and avatar cleared.
func (s *Service) GetProfile(ctx context.Context, viewerID, id string) (user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if !u.Private || viewerID == u.ID {
		return u, nil
	}
	follows, err := s.store.FollowExists(ctx, viewerID, u.ID)
	if err != nil {
		return user.User{}, err
	}
	if follows {
		return u, nil
	}
	u.Bio = ""
	u.AvatarURL = ""
	return u, nil
}

// UpdateProfile applies profile field changes for the caller.
func (s *Service) UpdateProfile(ctx context.Context, callerID string, displayName, bio, avatarURL *string, private *bool) (user.User, error) {
	u, err := s.store.GetUser(ctx, callerID)
	if err != nil {
		return user.User{}, err
	}
	if displayName != nil {
		u.DisplayName = strings.TrimSpace(*displayName)
	}
	if bio != nil {
		u.Bio = strings.TrimSpace(*bio)
	}
	if avatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*avatarURL)
	}
	if private != nil {
		u.Private = *private
	}
	return s.store.UpdateUser(ctx, u)
}

// Follow creates a follow edge and notifies the followee.
func (s *Service) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return fmt.Errorf("%w: cannot follow yourself", domain.ErrInvalid)
	}
	if _, err := s.store.GetUser(ctx, followeeID); err != nil {
		return err
	}
	blocked, err := s.store.BlockExists(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if blocked {
		return fmt.Errorf("%w: blocked", domain.ErrForbidden)
	}
	if err := s.store.CreateFollow(ctx, user.Follow{FollowerID: followerID, FolloweeID: followeeID}); err != nil {
		return err
	}

	if s.notifications != nil {
		if _, err := s.notifications.CreateNotification(ctx, notification.Notification{
			RecipientID: followeeID,
			ActorID:     followerID,
			Kind:        notification.KindFollow,
			SubjectID:   followerID,
		}); err != nil {
			s.log.WithError(err).Warn("follow notification")
		}
	}
	s.log.WithField("follower_id", followerID).
		WithField("followee_id", followeeID).
		Info("follow created")
	return nil
}

// Unfollow removes a follow edge.
func (s *Service) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return s.store.DeleteFollow(ctx, followerID, followeeID)
}

// Followers lists the users following userID.
func (s *Service) Followers(ctx context.Context, viewerID, userID string, page storage.Page) ([]user.User, error) {
	if err := s.requireVisible(ctx, viewerID, userID); err != nil {
		return nil, err
	}
	return s.store.ListFollowers(ctx, userID, page)
}

// Following lists the users userID follows.
func (s *Service) Following(ctx context.Context, viewerID, userID string, page storage.Page) ([]user.User, error) {
	if err := s.requireVisible(ctx, viewerID, userID); err != nil {
		return nil, err
	}
	return s.store.ListFollowing(ctx, userID, page)
}

// requireVisible enforces private-profile access to follow lists.
func (s *Service) requireVisible(ctx context.Context, viewerID, userID string) error {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !u.Private || viewerID == userID {
		return nil
	}
	follows, err := s.store.FollowExists(ctx, viewerID, userID)
	if err != nil {
		return err
	}
	if !follows {
		return fmt.Errorf("%w: private profile", domain.ErrForbidden)
	}
	return nil
}

// Block blocks a user, removing the follow edges in both directions.
func (s *Service) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return fmt.Errorf("%w: cannot block yourself", domain.ErrInvalid)
	}
	if _, err := s.store.GetUser(ctx, blockedID); err != nil {
		return err
	}
	if err := s.store.CreateBlock(ctx, user.Block{BlockerID: blockerID, BlockedID: blockedID}); err != nil {
		return err
	}
	s.log.WithField("blocker_id", blockerID).
		WithField("blocked_id", blockedID).
		Info("user blocked")
	return nil
}

// Unblock removes a block.
func (s *Service) Unblock(ctx context.Context, blockerID, blockedID string) error {
	return s.store.DeleteBlock(ctx, blockerID, blockedID)
}

// Blocked reports whether either user blocks the other.
func (s *Service) Blocked(ctx context.Context, userA, userB string) (bool, error) {
	return s.store.BlockExists(ctx, userA, userB)
}
