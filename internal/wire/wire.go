package wire

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"account-service/internal/adaptor"
	"account-service/internal/data/repository"
	"account-service/internal/usecase"
	"account-service/pkg/clock"
	"account-service/pkg/middleware"
	"account-service/pkg/notifier"
	"account-service/pkg/utils"
)

const sessionCleanupInterval = time.Hour

// App holds the router and the background components it depends on.
type App struct {
	Router     *chi.Mux
	Dispatcher *notifier.Dispatcher

	repo   *repository.Repository
	config *utils.Config
	clock  clock.Clocker
	log    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Wiring builds every dependency. rdb may be nil unless the redis
// rate-limit driver is selected.
func Wiring(repo *repository.Repository, rdb *redis.Client, config *utils.Config, logger *zap.Logger) (*App, error) {
	clk := clock.New()

	sender, err := newSender(config, logger)
	if err != nil {
		return nil, err
	}
	dispatcher := newDispatcher(sender, config, logger)

	limiters, err := newLimiters(rdb, config, clk)
	if err != nil {
		_ = sender.Close()
		return nil, err
	}

	service := usecase.NewService(repo, dispatcher, config, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:     setupRouter(handler, service, limiters, config, clk, logger),
		Dispatcher: dispatcher,
		repo:       repo,
		config:     config,
		clock:      clk,
		log:        logger,
	}, nil
}

// Start launches notification workers, the OTP sweeper and session cleanup.
func (a *App) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Dispatcher.Start()

	sweeperDone := a.repo.OTP.StartSweeper(ctx, a.clock, a.config.OTP.SweepInterval)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-sweeperDone
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.cleanSessions(ctx)
	}()
}

// Shutdown stops background work and drains queued notifications until ctx
// expires.
func (a *App) Shutdown(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if err := a.Dispatcher.Close(ctx); err != nil {
		return err
	}

	stats := a.Dispatcher.Stats()
	a.log.Info("Notification dispatcher stopped",
		zap.Int64("sent", stats.Sent),
		zap.Int64("failed", stats.Failed),
		zap.Int64("dropped", stats.Dropped),
		zap.Int("pending_otps", a.repo.OTP.Len()),
	)
	return nil
}

func (a *App) cleanSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.repo.Session.CleanExpiredSessions(ctx, 24*time.Hour)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					a.log.Warn("Session cleanup failed", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				a.log.Info("Expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	limiters *limiters,
	config *utils.Config,
	clk clock.Clocker,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	auth := middleware.AuthSession(service.Auth, logger)

	wireAuth(r, handler.Auth, auth, limiters, config, clk, logger)
	wireUser(r, handler.User, auth, logger)
	wireOTP(r, handler.OTP, limiters, config, clk, logger)

	r.Get("/health", adaptor.Health)

	return r
}
