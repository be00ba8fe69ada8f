package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	gameportal "github.com/goliatone/go-gameportal"
	"github.com/goliatone/go-gameportal/pkg/notify"
	"github.com/goliatone/go-gameportal/pkg/portal"
	"github.com/goliatone/go-gameportal/pkg/render"
	"github.com/goliatone/go-gameportal/pkg/renderers/tui"
)

const usage = `Usage: gameportal-cli [flags] <command>

Commands:
  render     render a portal page to HTML
  login      sign in to your account
  register   create an account
  logout     sign out and clear the stored session
  whoami     show the signed-in account
  stats      show the players-online counter
  download   download the game client for this platform

Flags:
`

func main() {
	// Missing .env is fine; the environment may be set by the shell.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "site configuration file (YAML)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	command := flag.Arg(0)
	if command == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command, flag.Args()[1:], *configPath, logger); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			os.Exit(130)
		}
		logger.Error(command+" failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, configPath string, logger *slog.Logger) error {
	cfg, err := gameportal.LoadConfig(configPath)
	if err != nil {
		return err
	}

	p := gameportal.New(cfg,
		portal.WithLogger(logger),
		portal.WithNotifier(consoleNotifier()),
	)
	defer p.Close()

	switch command {
	case "render":
		return runRender(ctx, p, args)
	case "login":
		return runLogin(ctx, p)
	case "register":
		return runRegister(ctx, p)
	case "logout":
		return p.Logout(ctx)
	case "whoami":
		return runWhoami(ctx, p)
	case "stats":
		return runStats(ctx, p, args)
	case "download":
		return runDownload(ctx, p, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// consoleNotifier prints user-facing notices to stdout so they are visible
// even when logging goes to a file.
func consoleNotifier() notify.Notifier {
	return notify.Func(func(_ context.Context, level notify.Level, message string) {
		switch level {
		case notify.LevelError:
			fmt.Fprintln(os.Stderr, "! "+message)
		default:
			fmt.Println(message)
		}
	})
}

func runRender(ctx context.Context, p *gameportal.Portal, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	page := fs.String("page", string(gameportal.PageIndex), "page to render: index, login, register, dashboard, download")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	html, err := p.RenderPage(ctx, gameportal.RenderRequest{Page: render.PageName(*page)})
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, html, 0o644); err != nil {
			return err
		}
		fmt.Printf("Page written to %s\n", *output)
		return nil
	}
	fmt.Println(string(html))
	return nil
}

func runLogin(ctx context.Context, p *gameportal.Portal) error {
	values, err := promptForm(ctx, p, gameportal.PageLogin)
	if err != nil {
		return err
	}
	_, err = p.Login(ctx, values)
	return describeValidation(err)
}

func runRegister(ctx context.Context, p *gameportal.Portal) error {
	values, err := promptForm(ctx, p, gameportal.PageRegister)
	if err != nil {
		return err
	}
	_, err = p.Register(ctx, values)
	return describeValidation(err)
}

func promptForm(ctx context.Context, p *gameportal.Portal, page render.PageName) (map[string]string, error) {
	form, err := p.Form(ctx, page)
	if err != nil {
		return nil, err
	}
	return tui.New().CollectValues(ctx, &form)
}

// describeValidation flattens field errors into a readable message. The
// interactive prompts validate as they go, so this mostly catches server-side
// rejections.
func describeValidation(err error) error {
	var vErr *gameportal.ValidationError
	if !errors.As(err, &vErr) {
		return err
	}
	names := make([]string, 0, len(vErr.Errors))
	for name := range vErr.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, vErr.Errors[name]))
	}
	return errors.New("validation failed\n  " + strings.Join(lines, "\n  "))
}

func runWhoami(ctx context.Context, p *gameportal.Portal) error {
	s, err := p.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	name := s.DisplayName
	if name == "" {
		name = s.Email
	}
	if profile, err := p.Profile(ctx); err == nil && profile.Username != "" {
		name = profile.Username
	}
	fmt.Printf("Signed in as %s <%s>\n", name, s.Email)
	if !s.ExpiresAt.IsZero() {
		fmt.Printf("Session valid until %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func runStats(ctx context.Context, p *gameportal.Portal, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	watch := fs.Bool("watch", false, "keep polling and print every update")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *watch {
		err := p.WatchStats(ctx, func(online int) {
			fmt.Printf("%d players online\n", online)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	p.RefreshStats(ctx)
	online := p.PlayersOnline()
	if online == nil {
		return errors.New("players-online counter is unavailable")
	}
	fmt.Printf("%d players online\n", *online)
	return nil
}

func runDownload(ctx context.Context, p *gameportal.Portal, args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	dir := fs.String("dir", "", "target directory (configured downloads dir if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := p.DownloadClient(ctx, *dir)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}
