package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"aeroapi.backend/internal/config"
	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/infrastructure/datasources"
	"aeroapi.backend/internal/usecases"
)

type adminAPIKeyRuntime interface {
	GetUserByExternalID(ctx context.Context, externalID string) (*entities.User, error)
	Status(ctx context.Context, userID uuid.UUID) (*entities.ModerationStatus, error)
	Issue(ctx context.Context, userID uuid.UUID, name string) (*entities.ApiKey, error)
}

type adminAPIKeyDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (adminAPIKeyRuntime, io.Closer, error)
	now     func() time.Time
	out     io.Writer
}

type adminAPIKeyRuntimeImpl struct {
	*usecases.ApiKeyUsecase
	*usecases.ModerationUsecase
	store *datasources.Store
}

func (r adminAPIKeyRuntimeImpl) GetUserByExternalID(ctx context.Context, externalID string) (*entities.User, error) {
	return r.store.GetUserByExternalID(ctx, externalID)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var openStore = datasources.Open

func prepareRuntime(cfg *config.Config) (adminAPIKeyRuntime, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	store, err := openStore(cfg.Store, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open record store: %w", err)
	}
	return adminAPIKeyRuntimeImpl{
		ApiKeyUsecase:     usecases.NewApiKeyUsecase(store, store),
		ModerationUsecase: usecases.NewModerationUsecase(store, store, nil),
		store:             store,
	}, closerFunc(store.Close), nil
}

func defaultAdminAPIKeyDeps() adminAPIKeyDeps {
	return adminAPIKeyDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: prepareRuntime,
		now:     time.Now,
		out:     os.Stdout,
	}
}

func resolveAPIKeyName(input string, now time.Time) string {
	if input = strings.TrimSpace(input); input != "" {
		return input
	}
	return fmt.Sprintf("cli-%s", now.UTC().Format("20060102-150405"))
}

func runAdminAPIKey(args []string, deps adminAPIKeyDeps) error {
	def := defaultAdminAPIKeyDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.now == nil {
		deps.now = def.now
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("admin-apikey", flag.ContinueOnError)
	externalIDFlag := fs.String("external-id", "", "identity provider id of the key owner (required)")
	nameFlag := fs.String("name", "", "api key display name (optional)")
	forceFlag := fs.Bool("force", false, "issue even when the owner is locked or disabled")
	if err := fs.Parse(args); err != nil {
		return err
	}

	externalID := strings.TrimSpace(*externalIDFlag)
	if externalID == "" {
		return errors.New("--external-id is required")
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	runtime, closer, err := deps.prepare(deps.loadCfg())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx := context.Background()
	user, err := runtime.GetUserByExternalID(ctx, externalID)
	if err != nil {
		if domainerrors.IsNotFound(err) {
			return fmt.Errorf("no user with external id %s; they must sign in once first", externalID)
		}
		return fmt.Errorf("failed to load user %s: %w", externalID, err)
	}

	status, err := runtime.Status(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load moderation status: %w", err)
	}
	if status.Restricted() && !*forceFlag {
		return fmt.Errorf("user %s is %s (%s); pass --force to issue anyway", externalID, status.Kind, status.Reason.String)
	}

	key, err := runtime.Issue(ctx, user.ID, resolveAPIKeyName(*nameFlag, deps.now()))
	if err != nil {
		return fmt.Errorf("failed creating api key: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Created API key")
	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", user.ID)
	_, _ = fmt.Fprintf(deps.out, "external_id=%s\n", user.ExternalID)
	_, _ = fmt.Fprintf(deps.out, "api_key_id=%s\n", key.ID)
	_, _ = fmt.Fprintf(deps.out, "name=%s\n", key.Name)
	_, _ = fmt.Fprintf(deps.out, "API_KEY=%s\n", key.Secret)
	return nil
}

func main() {
	if err := runAdminAPIKey(os.Args[1:], defaultAdminAPIKeyDeps()); err != nil {
		log.Fatal(err)
	}
}
