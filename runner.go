package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/maqibg/BaYin-sub000/config"
	"github.com/maqibg/BaYin-sub000/domain"
	"github.com/maqibg/BaYin-sub000/jellyfin"
	"github.com/maqibg/BaYin-sub000/store"
	"github.com/maqibg/BaYin-sub000/streaming"
	"github.com/maqibg/BaYin-sub000/subsonic"
)

// Runner provides a method per command action. Every action loads its own
// configuration from the --config flag, so invocations stay independent.
type Runner struct {
	output io.Writer
}

// NewRunner creates a Runner writing user-facing output to output.
func NewRunner(output io.Writer) *Runner {
	if output == nil {
		output = os.Stdout
	}
	return &Runner{output: output}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		playCommand, serversCommand, lyricsCommand, playlistsCommand, libraryCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// environment bundles the collaborators a command wires from one loaded
// configuration.
type environment struct {
	cfg      *config.Config
	logger   *log.Logger
	registry *config.Registry
	subsonic *subsonic.Client
	router   *streaming.Router
}

// setup loads configuration and wires the protocol clients.
func (r *Runner) setup(cmd *cli.Command) (*environment, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(cfg.Logging)

	servers, err := cfg.ServerConfigs()
	if err != nil {
		return nil, err
	}

	subsonicClient := subsonic.NewClient(cfg.Client.ID)
	subsonicClient.APIVersion = cfg.Client.APIVersion
	subsonicClient.HttpClient.Timeout = cfg.Player.GetHTTPTimeout()

	jellyfinClient := jellyfin.NewClient(cfg.Client.ID)
	jellyfinClient.HttpClient.Timeout = cfg.Player.GetHTTPTimeout()

	router := streaming.NewRouter()
	router.Register(domain.ServerSubsonic, subsonicClient)
	router.Register(domain.ServerJellyfin, jellyfinClient)

	return &environment{
		cfg:      cfg,
		logger:   logger,
		registry: config.NewRegistry(servers),
		subsonic: subsonicClient,
		router:   router,
	}, nil
}

// libraryServer picks the server the catalog syncs from: the preferred id
// when it names a Subsonic-family entry, else the first one configured.
// Jellyfin servers stream and serve lyrics but expose no listing API here.
func (e *environment) libraryServer(preferredID string) (*domain.ServerConfig, error) {
	if preferredID != "" {
		if server, ok := e.registry.ServerByID(preferredID); ok && server.Type == domain.ServerSubsonic {
			return server, nil
		}
	}
	for _, server := range e.registry.Servers() {
		if server.Type == domain.ServerSubsonic {
			return server, nil
		}
	}
	return nil, fmt.Errorf("library sync needs a subsonic-family server, none configured")
}

// openStore opens the preference and playlist store at the configured path.
func (r *Runner) openStore(env *environment) (*store.Store, error) {
	blobs, err := store.OpenSQLite(env.cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", env.cfg.Storage.Path, err)
	}
	return store.Open(blobs, env.logger.With("component", "store")), nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}
