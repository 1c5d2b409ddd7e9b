// Package service contains the business logic.
//
// It sits between the handler/trigger layer and the repositories:
// account sync, profile read/update, news notification and token
// verification all live here.
package service

import (
	"context"

	"github.com/deppfellow/app-functions/internal/lib/email"
	"github.com/deppfellow/app-functions/internal/lib/job"
	"github.com/deppfellow/app-functions/internal/lib/push"
	"github.com/deppfellow/app-functions/internal/repository"
	"github.com/deppfellow/app-functions/internal/server"
	"github.com/rs/zerolog"
)

// WelcomeSender delivers the welcome email. *email.Client satisfies it.
type WelcomeSender interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

type Services struct {
	Auth        *AuthService
	Profile     *ProfileService
	AccountSync *AccountSyncService
	NewsNotify  *NewsNotifyService

	// Email is nil when no Resend key is configured.
	Email WelcomeSender
	Job   *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService, err := NewAuthService(s)
	if err != nil {
		return nil, err
	}

	var (
		enqueuer job.Enqueuer
		sender   WelcomeSender
	)
	if s.Config.Integration.ResendAPIKey != "" {
		sender = email.NewClient(s.Config, s.Logger)
		if s.Job != nil {
			enqueuer = s.Job.Client
		}
	}

	return &Services{
		Auth:        authService,
		Profile:     NewProfileService(repos.Profiles, s.Logger),
		AccountSync: NewAccountSyncService(repos.Profiles, enqueuer, s.Logger),
		NewsNotify:  NewNewsNotifyService(push.NewClient(s.Redis), s.Config.Triggers.NewsTopic, s.Logger),
		Email:       sender,
		Job:         s.Job,
	}, nil
}

// loggerFrom prefers the request or task logger carried by ctx.
func loggerFrom(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
