package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	cognitopkg "github.com/jaekwang-park/todolist/internal/cognito"
	"github.com/jaekwang-park/todolist/internal/config"
	todohttp "github.com/jaekwang-park/todolist/internal/http"
	"github.com/jaekwang-park/todolist/internal/middleware"
	"github.com/jaekwang-park/todolist/internal/repository"
	"github.com/jaekwang-park/todolist/internal/service"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

// stores bundles the repositories of the selected backend with the hook
// that releases its connections.
type stores struct {
	todos repository.TodoRepository
	users repository.UserRepository
	close func()
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store: data is lost on restart")
		return stores{
			todos: repository.NewMemoryTodo(),
			users: repository.NewMemoryUser(),
			close: func() {},
		}, nil

	case config.StoreMongo:
		client, db, err := repository.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return stores{}, err
		}
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return stores{}, err
		}
		logger.Info("mongo connected", "database", cfg.Mongo.Database)
		return stores{
			todos: repository.NewMongoTodo(db),
			users: repository.NewMongoUser(db),
			close: func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(disconnectCtx); err != nil {
					logger.Error("failed to disconnect mongo", "error", err)
				}
			},
		}, nil

	default:
		db, err := repository.NewDB(ctx, cfg.DB.DSN())
		if err != nil {
			return stores{}, err
		}
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return stores{}, err
		}
		logger.Info("database connected")
		return stores{
			todos: repository.NewPostgresTodo(db),
			users: repository.NewPostgresUser(db),
			close: func() { db.Close() },
		}, nil
	}
}

// buildAuth returns the account service and the gate for the configured
// mode. Both are nil when AUTH_MODE=none.
func buildAuth(ctx context.Context, cfg config.Config, users repository.UserRepository, logger *slog.Logger) (*service.AuthService, *middleware.Auth, error) {
	var (
		authSvc *service.AuthService
		authCfg middleware.AuthConfig
	)

	switch cfg.AuthMode {
	case config.AuthModeNone:
		logger.Warn("authentication disabled: all callers share one todo list")
		return nil, nil, nil

	case config.AuthModeDev:
		secret, err := devSecret(cfg.JWTSecret)
		if err != nil {
			return nil, nil, err
		}
		authSvc = service.NewLocalAuthService(users, service.NewTokenIssuer(secret, cfg.TokenTTL()))
		authCfg = middleware.AuthConfig{DevMode: true}
		logger.Warn("dev auth mode: X-User-ID header is trusted")

	case config.AuthModeCognito:
		cognitoClient, err := cognitopkg.NewAWSClient(
			ctx,
			cfg.Cognito.Region,
			cfg.Cognito.AppClientID,
			cfg.Cognito.AppClientSecret,
		)
		if err != nil {
			return nil, nil, err
		}
		authSvc = service.NewCognitoAuthService(users, cognitoClient)
		authCfg = middleware.AuthConfig{
			JWKSClient:   middleware.NewJWKSClient(middleware.CognitoJWKSURL(cfg.Cognito.Region, cfg.Cognito.UserPoolID)),
			Issuer:       middleware.CognitoIssuer(cfg.Cognito.Region, cfg.Cognito.UserPoolID),
			Audience:     cfg.Cognito.AppClientID,
			UserResolver: service.NewCognitoSubResolver(users),
		}
		logger.Info("cognito client initialized", "region", cfg.Cognito.Region)

	default:
		secret := []byte(cfg.JWTSecret)
		authSvc = service.NewLocalAuthService(users, service.NewTokenIssuer(secret, cfg.TokenTTL()))
		authCfg = middleware.AuthConfig{
			Secret:       secret,
			Issuer:       service.TokenIssuerName,
			Audience:     service.TokenAudience,
			UserResolver: service.NewUserIDResolver(users),
		}
	}

	gate, err := middleware.NewAuth(authCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}
	return authSvc, gate, nil
}

// devSecret signs tokens issued in dev mode. The gate ignores them there,
// so a per-process key is enough when JWT_SECRET is unset.
func devSecret(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate dev secret: %w", err)
	}
	return secret, nil
}

func run(ctx context.Context) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"auth_mode", cfg.AuthMode,
		"store", cfg.Store,
		"log_level", cfg.LogLevel,
	)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	authSvc, gate, err := buildAuth(ctx, cfg, st.users, logger)
	if err != nil {
		return err
	}

	policy := service.OwnerScoped
	routerCfg := todohttp.RouterConfig{Auth: authSvc}
	if gate == nil {
		policy = service.Open
	} else {
		routerCfg.Gate = gate.Middleware
	}
	routerCfg.Todos = service.NewTodoService(st.todos, policy)

	srv := todohttp.NewServer(cfg.ServerPort, logger, todohttp.NewRouter(routerCfg), cfg.ClientOrigins)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	logger.Info("server starting", "port", cfg.ServerPort)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
