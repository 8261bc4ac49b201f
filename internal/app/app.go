package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/stash/internal/config"
	"github.com/five82/stash/internal/logging"
	"github.com/five82/stash/internal/nas"
	"github.com/five82/stash/internal/pager"
	"github.com/five82/stash/internal/prefs"
	"github.com/five82/stash/internal/session"
	"github.com/five82/stash/internal/state"
	"github.com/five82/stash/internal/tracing"
	"github.com/five82/stash/internal/ui"
)

const startupTimeout = 5 * time.Second

// Options configure the stash application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/stash/prefs.toml
	Version    string
	LogLevel   string // overrides the configured level when set
}

// Run boots the stash TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, OutputPath: cfg.LogPath()})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Close() }()
	log := logger.Logger

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: "stash",
		Version:     opts.Version,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open session backend: %w", err)
	}
	defer closeBackend()

	sess := session.New(backend)
	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := nas.NewClient(cfg.APIURL,
		nas.WithTokenSource(sess),
		nas.WithUserAgent(userAgent(opts.Version)),
	)
	if err != nil {
		return fmt.Errorf("init nas client: %w", err)
	}

	store := state.New(client, sess, log.Named("state"), state.WithPageSize(cfg.PageSize))
	if err := restore(ctx, sess, store, log); err != nil {
		log.Warn("session restore failed", zap.Error(err))
	}

	files := pager.New(
		func(ctx context.Context, page int) (int, error) {
			got, err := store.FetchFiles(ctx, page)
			return len(got), err
		},
		store.ResetFiles,
		pager.WithPageSize(cfg.PageSize),
		pager.WithThreshold(cfg.Scroll.Threshold),
		pager.WithThrottle(cfg.Scroll.Throttle),
		pager.WithLogger(log.Named("pager")),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	expired := make(chan struct{}, 1)
	StartRefresher(runCtx, store, cfg.RefreshInterval, log.Named("refresh"), func() {
		select {
		case expired <- struct{}{}:
		default:
		}
	})

	log.Info("stash starting",
		zap.String("version", opts.Version),
		zap.String("server", client.BaseURL()),
		zap.Bool("redis_session", cfg.Session.UseRedis()),
	)

	err = ui.Run(runCtx, ui.Options{
		Store:        store,
		Pager:        files,
		Logger:       log.Named("ui"),
		Prefs:        userPrefs,
		PrefsPath:    opts.PrefsPath,
		LogPath:      cfg.LogPath(),
		Server:       client.BaseURL(),
		Expired:      expired,
		RefreshEvery: time.Second,
	})

	persistCtx, cancelPersist := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelPersist()
	if perr := store.Persist(persistCtx); perr != nil {
		log.Warn("final snapshot write failed", zap.Error(perr))
	}
	return err
}

// openBackend picks redis when configured, else the per-user state dir.
func openBackend(ctx context.Context, cfg config.Config) (session.Backend, func(), error) {
	if cfg.Session.UseRedis() {
		dialCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		defer cancel()
		rb, err := session.NewRedisBackend(dialCtx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return rb, func() { _ = rb.Close() }, nil
	}
	return session.FileBackend{Dir: cfg.SessionDir()}, func() {}, nil
}

// restore reloads the persisted token and snapshot. An expired token is
// discarded before it is ever sent; a token the server rejects is cleared.
func restore(ctx context.Context, sess *session.Session, store *state.Store, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	tf, err := sess.Restore(ctx)
	if err != nil {
		return err
	}
	if tf.Token == "" {
		return nil
	}
	if sess.Expired(time.Now()) {
		log.Info("saved token expired, signing out", zap.String("username", tf.Username))
		return sess.Clear(ctx)
	}

	var snap state.Persisted
	found, err := sess.LoadSnapshot(ctx, &snap)
	if err != nil {
		log.Warn("snapshot unreadable, starting fresh", zap.Error(err))
	} else if found {
		store.Hydrate(snap)
	}

	if err := store.FetchUser(ctx); err != nil {
		if errors.Is(err, nas.ErrUnauthorized) {
			return store.Logout(ctx)
		}
		// Offline start keeps the hydrated user.
		return err
	}
	return nil
}

func userAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return "stash/" + version
}
