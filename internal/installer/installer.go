// Package installer installs the all-smi accelerator metrics exporter as a
// systemd service. Sequential glue: each step either succeeds or aborts the
// install with a wrapped error.
package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/user"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"resty.dev/v3"
)

// Config is the installation configuration.
type Config struct {
	Version     string
	Port        int
	ServiceUser string
}

// DefaultConfig returns the stock all-smi install settings.
func DefaultConfig() Config {
	return Config{
		Version:     "0.5.0",
		Port:        9401,
		ServiceUser: "all_smi",
	}
}

// Installer performs the install steps.
type Installer struct {
	cfg Config
	out io.Writer
	log zerolog.Logger

	// seams for tests
	runCommand func(ctx context.Context, name string, args ...string) error
	lookPath   func(file string) (string, error)
	geteuid    func() int
	httpClient *resty.Client
	unitPath   string

	binaryPath string
}

// New creates an Installer writing progress to out.
func New(cfg Config, out io.Writer, log zerolog.Logger) *Installer {
	return &Installer{
		cfg: cfg,
		out: out,
		log: log,
		runCommand: func(ctx context.Context, name string, args ...string) error {
			cmd := exec.CommandContext(ctx, name, args...)
			out, err := cmd.CombinedOutput()
			if err != nil {
				return fmt.Errorf("%s: %w (%s)", name, err, string(out))
			}
			return nil
		},
		lookPath:   exec.LookPath,
		geteuid:    os.Geteuid,
		httpClient: resty.New().SetTimeout(5 * time.Second),
		unitPath:   unitPath,
	}
}

// Install runs the full sequence: install the package, locate the binary,
// create the service user, write the unit, start the service and verify the
// metrics endpoint.
func (i *Installer) Install(ctx context.Context) error {
	if i.geteuid() != 0 {
		return fmt.Errorf("install-exporter must be run as root")
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"installing all-smi", i.installPackage},
		{"locating binary", i.findBinary},
		{"creating service user", i.ensureServiceUser},
		{"writing systemd unit", i.writeUnit},
		{"starting service", i.startService},
		{"verifying", i.verify},
	}

	for _, step := range steps {
		i.info(step.name)
		if err := step.fn(ctx); err != nil {
			i.errorf("%s: %v", step.name, err)
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	i.info(fmt.Sprintf("all-smi installed; metrics at http://localhost:%d/metrics", i.cfg.Port))
	return nil
}

func (i *Installer) installPackage(ctx context.Context) error {
	if _, err := i.lookPath("pip3"); err != nil {
		return fmt.Errorf("pip3 is required but not installed")
	}
	pinned := fmt.Sprintf("all-smi==%s", i.cfg.Version)
	if err := i.runCommand(ctx, "pip3", "install", pinned, "--quiet"); err != nil {
		i.warn("pinned version not found, installing latest")
		if err := i.runCommand(ctx, "pip3", "install", "all-smi", "--quiet"); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) findBinary(ctx context.Context) error {
	if path, err := i.lookPath("all-smi"); err == nil {
		i.binaryPath = path
		return nil
	}
	for _, candidate := range []string{"/usr/local/bin/all-smi", "/usr/bin/all-smi"} {
		if _, err := os.Stat(candidate); err == nil {
			i.binaryPath = candidate
			return nil
		}
	}
	return fmt.Errorf("all-smi binary not found after installation")
}

func (i *Installer) ensureServiceUser(ctx context.Context) error {
	if _, err := user.Lookup(i.cfg.ServiceUser); err == nil {
		i.info("service user already exists")
	} else {
		if err := i.runCommand(ctx, "useradd", "--no-create-home", "--shell", "/bin/false", "--system", i.cfg.ServiceUser); err != nil {
			return err
		}
	}

	// GPU device access requires membership in video/render where present.
	for _, group := range []string{"video", "render"} {
		if _, err := user.LookupGroup(group); err != nil {
			continue
		}
		if err := i.runCommand(ctx, "usermod", "-aG", group, i.cfg.ServiceUser); err != nil {
			i.warn(fmt.Sprintf("could not add %s to %s group", i.cfg.ServiceUser, group))
		}
	}
	return nil
}

func (i *Installer) startService(ctx context.Context) error {
	if err := i.runCommand(ctx, "systemctl", "daemon-reload"); err != nil {
		return err
	}
	if err := i.runCommand(ctx, "systemctl", "enable", "all-smi"); err != nil {
		return err
	}
	return i.runCommand(ctx, "systemctl", "start", "all-smi")
}

func (i *Installer) verify(ctx context.Context) error {
	if err := i.runCommand(ctx, "systemctl", "is-active", "--quiet", "all-smi"); err != nil {
		return fmt.Errorf("service failed to start; check: journalctl -u all-smi -f")
	}

	url := fmt.Sprintf("http://localhost:%d/metrics", i.cfg.Port)
	res, err := i.httpClient.R().SetContext(ctx).Get(url)
	if err != nil || !res.IsSuccess() {
		i.warn("metrics endpoint not responding yet; service may still be initializing")
		return nil
	}
	i.info("metrics endpoint is responding")
	return nil
}

func (i *Installer) info(msg string) {
	fmt.Fprintf(i.out, "%s %s\n", color.GreenString("[INFO]"), msg)
	i.log.Info().Msg(msg)
}

func (i *Installer) warn(msg string) {
	fmt.Fprintf(i.out, "%s %s\n", color.YellowString("[WARN]"), msg)
	i.log.Warn().Msg(msg)
}

func (i *Installer) errorf(format string, args ...any) {
	fmt.Fprintf(i.out, "%s %s\n", color.RedString("[ERROR]"), fmt.Sprintf(format, args...))
}
