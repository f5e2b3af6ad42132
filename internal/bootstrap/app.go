package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/portfolio-site/portfolio-backend/config"
	httpapi "github.com/portfolio-site/portfolio-backend/internal/api/http"
	"github.com/portfolio-site/portfolio-backend/internal/auth"
	"github.com/portfolio-site/portfolio-backend/internal/auth/identity"
	"github.com/portfolio-site/portfolio-backend/internal/auth/repository"
	authservice "github.com/portfolio-site/portfolio-backend/internal/auth/service"
	"github.com/portfolio-site/portfolio-backend/internal/auth/sessions"
	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/entities/service"
	"github.com/portfolio-site/portfolio-backend/internal/entities/store"
	"github.com/portfolio-site/portfolio-backend/internal/entities/store/fsstore"
	"github.com/portfolio-site/portfolio-backend/internal/entities/store/kvstore"
	"github.com/portfolio-site/portfolio-backend/internal/entities/store/pgstore"
	"github.com/portfolio-site/portfolio-backend/internal/events"
	"github.com/portfolio-site/portfolio-backend/internal/mirror"
	"github.com/portfolio-site/portfolio-backend/internal/storage/kv"
	"github.com/portfolio-site/portfolio-backend/internal/synthesis"
)

// App holds every long-lived dependency of the service.
type App struct {
	Config *config.Config
	Log    *zap.Logger

	Firebase  *firebase.App
	Firestore *firestore.Client
	Redis     *redis.Client
	DB        *sql.DB
	Local     *kv.File

	Stores   store.Factory
	Catalogs service.Catalogs
	Bus      events.Bus
	RedisBus *events.RedisBus
	Gate     *authservice.Gate
	Admins   repository.AdminRepository
	Synth    synthesis.Synthesizer
	Mirror   *mirror.Mirror

	checks map[string]httpapi.Check
}

// NewApp connects the configured backends and assembles the services.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log, checks: make(map[string]httpapi.Check)}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	local, err := kv.NewFile(cfg.Store.DataDir)
	if err != nil {
		return err
	}
	a.Local = local

	if cfg.UsesFirebase() {
		app, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return err
		}
		a.Firebase = app
		if a.Firestore, err = app.Firestore(ctx); err != nil {
			return fmt.Errorf("failed to get Firestore client: %w", err)
		}
		fs := a.Firestore
		a.checks["firestore"] = func(ctx context.Context) error {
			_, err := fs.Collections(ctx).Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}
	}

	if a.Redis, err = OpenRedis(ctx, &cfg.Redis); err != nil {
		return err
	}
	if a.Redis != nil {
		rc := a.Redis
		a.checks["redis"] = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
	}

	if err := a.initStores(ctx); err != nil {
		return err
	}

	if a.Redis != nil {
		a.RedisBus = events.NewRedisBus(a.Redis, events.DefaultChannel)
		a.Bus = a.RedisBus
	} else {
		a.Bus = events.NewLocalBus()
	}
	a.Catalogs = service.NewCatalogs(a.Stores, a.Bus, a.Log)

	if err := a.initGate(ctx); err != nil {
		return err
	}

	if a.Synth, err = synthesis.New(&cfg.Synthesis, a.Log); err != nil {
		return err
	}
	a.Mirror = mirror.New(a.Stores, a.Local, a.Log)
	return nil
}

func (a *App) initStores(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Store.Backend {
	case config.BackendKV:
		var db kv.KV = a.Local
		if cfg.Store.KVDriver == config.KVDriverRedis {
			if a.Redis == nil {
				return fmt.Errorf("redis kv driver needs REDIS_ADDR")
			}
			db = kv.NewRedis(a.Redis)
		}
		a.Stores = kvstore.NewFactory(db)
		a.checks["kv"] = db.Ping
	case config.BackendFirestore:
		if a.Firestore == nil {
			return fmt.Errorf("firestore backend needs Firebase configuration")
		}
		a.Stores = fsstore.NewFactory(a.Firestore)
	case config.BackendPostgres:
		db, err := OpenDB(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		a.DB = db
		a.Stores = pgstore.NewFactory(db)
		a.checks["postgres"] = db.PingContext
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	return nil
}

func (a *App) initGate(ctx context.Context) error {
	cfg := a.Config

	// A configured hash wins over the Firestore record.
	if a.Firestore != nil && cfg.Auth.AdminPasswordHash == "" {
		a.Admins = repository.NewFirestoreAdminRepository(a.Firestore, cfg.Auth.AdminCollection, cfg.Auth.AdminDocID)
	} else {
		a.Admins = repository.NewStaticAdminRepository(cfg.Auth.AdminDocID, cfg.Auth.AdminEmail, cfg.Auth.AdminPasswordHash)
	}

	var idp identity.Provider = identity.Disabled{}
	if a.Firebase != nil && cfg.Firebase.WebAPIKey != "" {
		authClient, err := a.Firebase.Auth(ctx)
		if err != nil {
			return fmt.Errorf("failed to get Auth client: %w", err)
		}
		fb, err := identity.NewFirebase(ctx, authClient, cfg.Firebase.WebAPIKey)
		if err != nil {
			return err
		}
		idp = fb
	} else {
		a.Log.Warn("identity provider disabled, only admin login is available")
	}

	var sess sessions.Store = sessions.NewMemoryStore()
	if a.Redis != nil {
		sess = sessions.NewRedisStore(a.Redis)
	}

	a.Gate = authservice.NewGate(a.Admins, idp, sess, authservice.Options{
		SessionTTL:      cfg.Auth.SessionTTL,
		LoginRatePerMin: cfg.Auth.LoginRatePerMin,
	}, a.Log)
	return nil
}

// Catalog returns the catalog of kind.
func (a *App) Catalog(kind domain.Kind) *service.Catalog {
	c, _ := a.Catalogs.Get(kind)
	return c
}

// WatchLocal publishes an external change whenever another process rewrites
// a collection file. It is a no-op unless the file kv backs the store. Watcher
// failures are logged and never end the process; it returns when ctx is done.
func (a *App) WatchLocal(ctx context.Context) error {
	cfg := a.Config
	if cfg.Store.Backend != config.BackendKV || cfg.Store.KVDriver != config.KVDriverFile || !cfg.Store.Watch {
		<-ctx.Done()
		return nil
	}

	byKey := make(map[string]domain.Kind, len(domain.Kinds))
	for _, k := range domain.Kinds {
		byKey[k.StorageKey()] = k
	}

	err := a.Local.Watch(ctx, func(key string) {
		kind, ok := byKey[key]
		if !ok {
			return
		}
		a.Log.Info("collection changed on disk", zap.String("collection", kind.Collection()))
		if err := a.Bus.Publish(ctx, events.Change{Kind: kind, Op: events.OpExternal}); err != nil {
			a.Log.Warn("publish external change", zap.Error(err))
		}
	}, func(err error) {
		a.Log.Warn("file watcher error", zap.Error(err))
	})
	if err != nil {
		a.Log.Warn("file watcher disabled", zap.Error(err))
		<-ctx.Done()
	}
	return nil
}

func (a *App) Close() {
	if a.Firestore != nil {
		a.Firestore.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
}
