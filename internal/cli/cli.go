package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taskflow/pkg/buildinfo"
	"github.com/matzehuels/taskflow/pkg/cache"
	"github.com/matzehuels/taskflow/pkg/config"
	"github.com/matzehuels/taskflow/pkg/graph"
	"github.com/matzehuels/taskflow/pkg/layout"
	"github.com/matzehuels/taskflow/pkg/retry"
	"github.com/matzehuels/taskflow/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "taskflow"

	storeConnectAttempts = 5
	storeConnectDelay    = 500 * time.Millisecond
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug level also routes session,
// cache and store events to the logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		installLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Taskflow lays out and analyzes task dependency graphs",
		Long:         `Taskflow builds a dependency graph from task records, keeps it acyclic as dependencies are edited, computes its critical path and lays it out for drawing.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+config.FileName+" if present)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.criticalCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Input
// =============================================================================

// readTasks reads a task document from path, or from in when path is "-".
func readTasks(path string, in io.Reader) (graph.Document, error) {
	if path == "-" {
		return graph.ReadDocument(in)
	}
	return graph.ReadDocumentFile(path)
}

// layoutFlags are the per-command overrides of the [layout] config table.
type layoutFlags struct {
	strategy  string
	direction string
	noCache   bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "layout strategy: leveled, layered (default from config)")
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "flow direction: LR, RL, TB, BT (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the layout cache")
}

// sessionOptions resolves config and flags into session options. The
// returned cache must be closed by the caller.
func (c *CLI) sessionOptions(ctx context.Context, f layoutFlags) ([]session.Option, cache.Cache, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.LayoutOptions()
	if err != nil {
		return nil, nil, err
	}
	if f.direction != "" {
		if opts.Direction, err = layout.ParseDirection(f.direction); err != nil {
			return nil, nil, err
		}
	}
	name := cfg.Layout.Strategy
	if f.strategy != "" {
		name = f.strategy
	}
	strategy, err := layout.ByName(name)
	if err != nil {
		return nil, nil, err
	}

	ch, err := c.newCache(ctx, cfg, f.noCache)
	if err != nil {
		return nil, nil, err
	}
	return []session.Option{
		session.WithLogger(c.Logger),
		session.WithStrategy(layout.Cached{Inner: strategy, Cache: ch, TTL: cfg.Cache.TTL}),
		session.WithLayoutOptions(opts),
		session.WithAutoLayout(true),
	}, ch, nil
}

// =============================================================================
// Cache & Store Factories
// =============================================================================

// newCache opens the layout cache: Redis when configured, otherwise a file
// cache in the configured or default directory.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisAddr != "" {
		ch, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, "")
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return ch, nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Debug("layout cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// openStore opens the configured session store, instrumented with the
// observability store hooks. Network backends are dialed with retries so
// serve can start alongside its database.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	var connect func() (session.Store, error)
	switch cfg.Store.Backend {
	case config.BackendFile:
		connect = func() (session.Store, error) {
			return session.NewFileStore(cfg.Store.Path, cfg.Store.TTL)
		}
	case config.BackendRedis:
		connect = func() (session.Store, error) {
			s, err := session.NewRedisStore(ctx, session.RedisConfig{
				Addr:     cfg.Store.RedisAddr,
				Password: cfg.Store.RedisPassword,
				DB:       cfg.Store.RedisDB,
				TTL:      cfg.Store.TTL,
			})
			return s, retry.Transient(err)
		}
	case config.BackendMongo:
		connect = func() (session.Store, error) {
			s, err := session.NewMongoStore(ctx, session.MongoConfig{
				URI:      cfg.Store.MongoURI,
				Database: cfg.Store.MongoDatabase,
				TTL:      cfg.Store.TTL,
			})
			return s, retry.Transient(err)
		}
	default:
		connect = func() (session.Store, error) {
			return session.NewMemoryStore(cfg.Store.TTL), nil
		}
	}

	var store session.Store
	err := retry.Do(ctx, storeConnectAttempts, storeConnectDelay, func() error {
		s, err := connect()
		if err != nil {
			return err
		}
		store = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	return session.Instrument(store, cfg.Store.Backend), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/taskflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
