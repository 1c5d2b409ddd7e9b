package trigger

import (
	"context"
	"errors"

	"github.com/deppfellow/app-functions/internal/lib/job"
	"github.com/deppfellow/app-functions/internal/model"
	"github.com/deppfellow/app-functions/internal/service"
	"github.com/hibiken/asynq"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// accountCreated syncs the profile. Failures are logged, never retried.
func accountCreated(svc *service.AccountSyncService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		evt, err := job.DecodePayload[model.AccountCreatedEvent](t)
		if err != nil {
			return err
		}

		result, err := svc.Sync(ctx, evt)
		if errors.Is(err, service.ErrMissingUID) {
			return pkgerrors.Wrap(asynq.SkipRetry, err.Error())
		}
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("uid", evt.UID).Msg("account sync failed")
			return nil
		}

		zerolog.Ctx(ctx).Debug().Stringer("result", result).Msg("account sync done")
		return nil
	}
}

// newsCreated broadcasts the notification. It never fails.
func newsCreated(svc *service.NewsNotifyService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		evt, err := job.DecodePayload[model.NewsCreatedEvent](t)
		if err != nil {
			return err
		}

		svc.Notify(ctx, evt)
		return nil
	}
}

// welcomeEmail sends the welcome email. Send errors are returned so the
// queue retries them.
func welcomeEmail(sender service.WelcomeSender) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		payload, err := job.DecodePayload[model.WelcomeEmail](t)
		if err != nil {
			return err
		}
		if payload.To == "" {
			return pkgerrors.Wrap(asynq.SkipRetry, "welcome email has no recipient")
		}

		if err := sender.SendWelcomeEmail(ctx, payload.To, payload.Name); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("to", payload.To).Msg("welcome email failed")
			return pkgerrors.Wrap(err, "send welcome email")
		}

		zerolog.Ctx(ctx).Info().Str("to", payload.To).Msg("welcome email sent")
		return nil
	}
}
