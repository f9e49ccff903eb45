package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/social"
	communitiessvc "github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/services/communities"
	messagingsvc "github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/services/messaging"
	notificationssvc "github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/services/notifications"
	quizzessvc "github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/services/quizzes"
	socialsvc "github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/services/social"
	taxonomysvc "github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/services/taxonomy"
	userssvc "github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/services/users"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage/memory"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/system"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/config"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users         storage.UserStore
	Quizzes       storage.QuizStore
	Communities   storage.CommunityStore
	Messages      storage.MessageStore
	Notifications storage.NotificationStore
	Social        storage.SocialStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users         *userssvc.Service
	Quizzes       *quizzessvc.Service
	Taxonomy      *taxonomysvc.Service
	Communities   *communitiessvc.Service
	Messaging     *messagingsvc.Service
	Notifications *notificationssvc.Service
	Social        *socialsvc.Service
}

// New builds a fully initialised application with the provided stores. The
// Redis client is optional; without it taxonomy caching is process-local.
func New(stores Stores, rdb *redis.Client, socialCfg config.SocialConfig, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Quizzes == nil {
		stores.Quizzes = mem
	}
	if stores.Communities == nil {
		stores.Communities = mem
	}
	if stores.Messages == nil {
		stores.Messages = mem
	}
	if stores.Notifications == nil {
		stores.Notifications = mem
	}
	if stores.Social == nil {
		stores.Social = mem
	}

	manager := system.NewManager()

	usersService := userssvc.New(stores.Users, stores.Notifications, log)
	quizzesService := quizzessvc.New(stores.Quizzes, stores.Users, stores.Notifications, log)
	taxonomyService := taxonomysvc.New(stores.Quizzes, rdb, log)
	communitiesService := communitiessvc.New(stores.Communities, stores.Users, stores.Notifications, log)
	messagingService := messagingsvc.New(stores.Messages, stores.Users, stores.Notifications, log)
	notificationsService := notificationssvc.New(stores.Notifications, log)
	socialService := socialsvc.New(stores.Social, stores.Quizzes, log)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	attachPublishers(socialService, httpClient, socialCfg, log)

	for _, name := range []string{"users", "quizzes", "communities", "messaging"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	scheduler := socialsvc.NewScheduler(socialService, log)
	if spec := strings.TrimSpace(socialCfg.PublishSchedule); spec != "" {
		scheduler.WithSchedule(spec)
	}
	if err := manager.Register(scheduler); err != nil {
		return nil, fmt.Errorf("register %s: %w", scheduler.Name(), err)
	}

	return &Application{
		manager:       manager,
		log:           log,
		Users:         usersService,
		Quizzes:       quizzesService,
		Taxonomy:      taxonomyService,
		Communities:   communitiesService,
		Messaging:     messagingService,
		Notifications: notificationsService,
		Social:        socialService,
	}, nil
}

// attachPublishers wires provider publishers from configuration. A provider
// without an endpoint stays unconfigured; cross-posts to it fail with a
// recorded error rather than at startup.
func attachPublishers(svc *socialsvc.Service, client *http.Client, cfg config.SocialConfig, log *logger.Logger) {
	baseURL := strings.TrimSpace(cfg.QuizBaseURL)
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	if endpoint := strings.TrimSpace(cfg.TumblrAPIURL); endpoint != "" {
		pub, err := socialsvc.NewTumblrPublisher(client, endpoint, baseURL, log)
		if err != nil {
			log.WithError(err).Warn("configure tumblr publisher")
		} else {
			svc.AttachPublisher(social.ProviderTumblr, pub)
		}
	} else {
		log.Warn("TUMBLR_API_URL not set; tumblr cross-posting disabled")
	}

	if endpoint := strings.TrimSpace(cfg.FacebookAPIURL); endpoint != "" {
		pub, err := socialsvc.NewFacebookPublisher(client, endpoint, baseURL, log)
		if err != nil {
			log.WithError(err).Warn("configure facebook publisher")
		} else {
			svc.AttachPublisher(social.ProviderFacebook, pub)
		}
	} else {
		log.Warn("FACEBOOK_API_URL not set; facebook cross-posting disabled")
	}
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
