// Command functions runs the app's backend functions in one process: the
// "user" profile endpoint over HTTP and the account-sync, news-notify and
// welcome-email triggers as asynq workers.
//
// FUNCTIONS_PRIMARY.FUNCTION_NAME (or the platform's FUNCTION_NAME)
// restricts the process to a single function.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/app-functions/internal/config"
	"github.com/deppfellow/app-functions/internal/database"
	"github.com/deppfellow/app-functions/internal/handler"
	"github.com/deppfellow/app-functions/internal/lib/job"
	"github.com/deppfellow/app-functions/internal/logger"
	"github.com/deppfellow/app-functions/internal/model"
	"github.com/deppfellow/app-functions/internal/repository"
	"github.com/deppfellow/app-functions/internal/router"
	"github.com/deppfellow/app-functions/internal/server"
	"github.com/deppfellow/app-functions/internal/service"
	"github.com/deppfellow/app-functions/internal/trigger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)
	loggerService.LogStartup(&log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Storage.Driver == config.StoragePostgres {
		if err := database.Migrate(ctx, &log, cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	srv, err := server.Shared(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos, err := repository.NewRepositories(srv)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize repositories")
	}

	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	registry := trigger.NewRegistry(services, &log, loggerService)
	if len(registry.Select(cfg.Primary)) > 0 {
		if err := srv.Job.Start(registry.ServeMux(cfg.Primary)); err != nil {
			log.Fatal().Err(err).Msg("failed to start job server")
		}
	}

	if cfg.Triggers.WatchNews && repos.News != nil && cfg.Primary.Serves(config.FunctionNewsNotify) {
		go watchNews(ctx, repos.News, srv.Job, srv)
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers, services)
	srv.SetupHTTPServer(r)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// watchNews forwards inserted news documents to the news:created queue
// until ctx is cancelled.
func watchNews(ctx context.Context, news *repository.MongoNewsWatcher, jobs *job.JobService, srv *server.Server) {
	enqueue := func(ctx context.Context, evt model.NewsCreatedEvent) error {
		task, err := job.NewNewsCreatedTask(evt)
		if err != nil {
			return err
		}
		_, err = jobs.Client.EnqueueContext(ctx, task)
		return err
	}

	if err := news.Watch(ctx, enqueue); err != nil {
		srv.Logger.Error().Err(err).Msg("news watcher stopped")
	}
}
