package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mmcdole/mediadeck/internal/domain"
)

// Opener opens catalog pages in an external browser
type Opener struct {
	command string // configured browser command, empty for system default
	logger  *slog.Logger
	start   func(name string, args ...string) error
}

// NewOpener creates an Opener. An empty command uses the system default handler.
func NewOpener(command string, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command: command,
		logger:  logger,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// WebURL returns the public provider page for a catalog item
func WebURL(ref domain.MediaRef) (string, error) {
	switch ref.Kind {
	case domain.KindMovie:
		return fmt.Sprintf("https://www.themoviedb.org/movie/%d", ref.ID), nil
	case domain.KindSeries:
		return fmt.Sprintf("https://www.themoviedb.org/tv/%d", ref.ID), nil
	case domain.KindGame:
		return fmt.Sprintf("https://rawg.io/games/%d", ref.ID), nil
	default:
		return "", fmt.Errorf("%w: no web page for %s", domain.ErrInvalidInput, ref)
	}
}

// Open launches the provider page for ref
func (o *Opener) Open(ref domain.MediaRef) error {
	url, err := WebURL(ref)
	if err != nil {
		return err
	}

	if o.command != "" {
		fields := strings.Fields(o.command)
		args := append(fields[1:], url)
		o.logger.Info("opening with configured browser", "command", fields[0], "url", url)
		return o.start(fields[0], args...)
	}

	name, args := defaultOpenCommand(runtime.GOOS, url)
	o.logger.Info("opening with system default", "os", runtime.GOOS, "url", url)
	return o.start(name, args...)
}

func defaultOpenCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}
