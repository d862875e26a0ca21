package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/app"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/metrics"
	"github.com/mmcdole/mediadeck/internal/tui"
	"github.com/mmcdole/mediadeck/internal/tui/styles"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var showVersion, demo, clearCache bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&demo, "demo", false, "run with fixture data, no credentials needed")
	flag.BoolVar(&clearCache, "clear-cache", false, "remove the on-disk query cache and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("mediadeck %s\n", Version)
		return
	}

	if err := run(demo, clearCache); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(demo, clearCache bool) error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if demo {
		cfg.DemoMode = true
	}
	if clearCache {
		return adapter.ClearCache(cfg)
	}

	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting mediadeck", "version", Version, "demo", cfg.DemoMode, "backend", cfg.Store.Backend)

	a, err := app.New(cfg, logger)
	if errors.Is(err, domain.ErrMissingCredentials) {
		fmt.Fprintln(os.Stderr, "The store URL and anon key are not configured.")
		fmt.Fprintln(os.Stderr, "Set store.url and store.anon_key in the config file, export")
		fmt.Fprintln(os.Stderr, "MEDIADECK_STORE_URL and MEDIADECK_STORE_ANON_KEY, or run with -demo.")
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.Close()

	if cfg.Metrics.Listen != "" {
		go serveMetrics(cfg.Metrics.Listen, logger)
	}

	if !cfg.DemoMode {
		if err := ensureSignedIn(a); err != nil {
			return err
		}
	}

	model := tui.NewModel(tui.Services{
		Catalog:     a.Catalog,
		Watchlist:   a.Watchlist,
		Collections: a.Collections,
		Reviews:     a.Reviews,
		Account:     a.Account,
		Queries:     a.Queries,
		Opener:      a.Opener,
		Changes:     a.Changes,
		Demo:        cfg.DemoMode,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics listener failed", "error", err)
	}
}

// ensureSignedIn resumes a stored session or signs in with configured or
// prompted credentials, then starts realtime sync
func ensureSignedIn(a *app.App) error {
	ctx := context.Background()
	if _, err := a.Account.CurrentUser(ctx); err == nil {
		a.Account.StartSync(ctx)
		return nil
	} else if !errors.Is(err, domain.ErrNotAuthenticated) {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	email, password := a.Config.Store.Email, a.Config.Store.Password
	if email == "" || password == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("not signed in: set store.email and store.password or run interactively")
		}
		var err error
		email, password, err = promptCredentials(email)
		if err != nil {
			return err
		}
	}

	user, err := signInWithSpinner(a, email, password)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	fmt.Printf("✓ Signed in as %s\n", user.Email)
	return nil
}

func promptCredentials(email string) (string, string, error) {
	fmt.Println()
	fmt.Println("Welcome to mediadeck! Sign in to sync your watchlist.")
	fmt.Println()

	if email == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Email: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read input: %w", err)
		}
		email = strings.TrimSpace(input)
	}
	if email == "" {
		return "", "", fmt.Errorf("email cannot be empty")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	return email, string(raw), nil
}

// signInWithSpinner signs in with a visual spinner
func signInWithSpinner(a *app.App, email, password string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	type result struct {
		user domain.User
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		user, err := a.Account.SignIn(ctx, email, password)
		resultCh <- result{user, err}
	}()

	frame := 0
	fmt.Printf("\r%s Signing in...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			return res.user, res.err

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Signing in...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return domain.User{}, fmt.Errorf("sign-in timed out")
		}
	}
}
