package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clubdesk/clubdesk/internal/app"
	"github.com/clubdesk/clubdesk/internal/prompt"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	pollSeconds := flag.Int("poll", 0, "list refresh interval in seconds (optional, defaults to 5s)")
	plain := flag.Bool("plain", false, "use line prompts instead of the full-screen UI")
	debug := flag.Bool("debug", false, "write debug logs")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: clubdesk [flags] [new | edit ID]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Plain:      *plain,
		Debug:      *debug,
		Args:       flag.Args(),
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			return 130
		}
		fmt.Fprintf(os.Stderr, "clubdesk: %v\n", err)
		return 1
	}
	return 0
}
