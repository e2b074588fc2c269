package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/ontop/internal/config"
	"github.com/1broseidon/ontop/internal/host"
	"github.com/1broseidon/ontop/internal/ipc"
	"github.com/1broseidon/ontop/internal/platform"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runRun(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "clone":
		os.Exit(runClone(os.Args[2:]))
	case "unclone":
		os.Exit(runSimple("unclone", "Stop showing the thumbnail and end group mode.", os.Args[2:], (*ipc.Client).Unclone))
	case "group":
		os.Exit(runGroup(os.Args[2:]))
	case "mode":
		os.Exit(runMode(os.Args[2:]))
	case "fit":
		os.Exit(runFit(os.Args[2:]))
	case "region":
		os.Exit(runRegion(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reset":
		os.Exit(runSimple("reset", "Clear the thumbnail and every mode, and move the window home.", os.Args[2:], (*ipc.Client).Reset))
	case "toggle":
		os.Exit(runSimple("toggle", "Hide the window, or show it again when hidden.", os.Args[2:], (*ipc.Client).ToggleVisible))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ontop <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Open the thumbnail window (foreground)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list                List windows that can be cloned")
	fmt.Fprintln(w, "  clone               Clone a window into the running instance")
	fmt.Fprintln(w, "  unclone             Stop showing the thumbnail")
	fmt.Fprintln(w, "  group               Cycle the thumbnail among several windows")
	fmt.Fprintln(w, "  mode                Change fullscreen/click-through/click-forwarding")
	fmt.Fprintln(w, "  fit                 Resize to a multiple of the source size")
	fmt.Fprintln(w, "  region              Show only part of the source window")
	fmt.Fprintln(w, "  status              Show what the running instance displays")
	fmt.Fprintln(w, "  reset               Reset the window")
	fmt.Fprintln(w, "  toggle              Hide or show the window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'ontop <command> --help' for command-specific options.")
}

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/ontop/config.yaml)")
	clone := fs.String("clone", "", "Window id to clone at startup")
	region := fs.String("region", "", "Region of the cloned window as X,Y,W,H")
	group := fs.String("group", "", "Comma-separated window ids to cycle at startup")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ontop run [--config PATH] [--clone ID [--region X,Y,W,H]] [--group ID,ID,...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the always-on-top thumbnail window and serve remote commands until it")
		fmt.Fprintln(os.Stderr, "is closed or interrupted.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	opts := host.RunOptions{}
	if *clone != "" {
		id, err := parseWindowID(*clone)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		opts.Target = platform.WindowHandle(id)
	}
	if *region != "" {
		if opts.Target == 0 {
			fmt.Fprintln(os.Stderr, "--region needs --clone")
			return 2
		}
		r, err := parseRegion(*region)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		opts.Region = &platform.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	if *group != "" {
		ids, err := parseWindowIDList(*group)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		for _, id := range ids {
			opts.Group = append(opts.Group, platform.WindowHandle(id))
		}
	}

	cfg, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	opts.Config = cfg
	opts.Logger = newLogger(cfg.LogLevel)

	if err := ipc.NewClient().Ping(); err == nil {
		fmt.Fprintln(os.Stderr, "ontop is already running")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Configuration loaded (open: %s, clone: %s, seeker: %s)", cfg.OpenHotkey, cfg.CloneHotkey, cfg.Seeker)
	if err := host.Run(ctx, opts); err != nil {
		log.Printf("ontop: %v", err)
		return 1
	}
	log.Println("Shutting down ontop...")
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  ontop config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  ontop config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/ontop/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/ontop/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			var err error
			if cfg, err = loadConfig(*path); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}
