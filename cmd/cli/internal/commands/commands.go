package commands

import (
	"context"
	"os/exec"
	"runtime"
	"time"

	"github.com/clarkmarket/marketctl/internal/api"
	"github.com/clarkmarket/marketctl/internal/config"
	"github.com/clarkmarket/marketctl/internal/payment"
	"github.com/clarkmarket/marketctl/internal/session"
)

type Globals struct {
	Debug   bool
	Version string
}

// clientFlags are the connection flags shared by every command that
// talks to the backend. Flag and env values override the config file.
type clientFlags struct {
	Server     string        `help:"Backend API base URL" env:"MARKETCTL_SERVER"`
	ConfigFile string        `help:"Path to the config file" type:"path" env:"MARKETCTL_CONFIG"`
	SessionDir string        `help:"Session state directory" env:"MARKETCTL_SESSION_DIR"`
	Timeout    time.Duration `help:"Request timeout" default:"0"`
}

// resolve merges flags over the config file.
func (f *clientFlags) resolve() (config.Config, error) {
	cfg, err := config.Load(f.ConfigFile)
	if err != nil {
		return cfg, err
	}

	if f.Server != "" {
		cfg.ServerURL = f.Server
	}
	if f.SessionDir != "" {
		cfg.SessionDir = f.SessionDir
	}
	if f.Timeout > 0 {
		cfg.Timeout = f.Timeout
	}

	return cfg, nil
}

// setup builds the API client and session manager for a command.
func (f *clientFlags) setup() (*api.Client, *session.Manager, error) {
	cfg, err := f.resolve()
	if err != nil {
		return nil, nil, err
	}

	client := api.New(api.Config{
		ServerURL: cfg.ServerURL,
		Timeout:   cfg.Timeout,
	})

	store, err := session.NewStore(cfg.SessionDir)
	if err != nil {
		return nil, nil, err
	}

	return client, session.NewManager(client, store), nil
}

// hydrated is setup plus session hydration, for commands that require a
// logged-in user.
func (f *clientFlags) hydrated(ctx context.Context) (*api.Client, *session.Manager, error) {
	client, manager, err := f.setup()
	if err != nil {
		return nil, nil, err
	}

	if err := manager.Hydrate(ctx); err != nil {
		return nil, nil, err
	}

	if !manager.Authenticated() {
		return nil, nil, session.ErrNotAuthenticated
	}

	return client, manager, nil
}

// statusChecker adapts the API client to the poller's StatusChecker.
// The poller deliberately uses the session's current token without
// renewing it; an expired token surfaces as a pending tick.
func statusChecker(client *api.Client, manager *session.Manager) payment.CheckFunc {
	return func(ctx context.Context, reference string) (payment.Status, error) {
		status, err := client.CheckPaymentStatus(ctx, manager.Token(), reference)
		if err != nil {
			return "", err
		}
		return payment.Status(status), nil
	}
}

// openURL opens url in the platform browser.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
