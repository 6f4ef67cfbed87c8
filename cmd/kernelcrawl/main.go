// Kernelcrawl is a turn-based text dungeon crawler.
// Usage: kernelcrawl [--version] [--plain] [--script <file>] [--seed <n>] [--env <file>] [game_directory]
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/kernelcrawl/cli"
	"github.com/nathoo/kernelcrawl/config"
	"github.com/nathoo/kernelcrawl/engine"
	"github.com/nathoo/kernelcrawl/loader"
	"github.com/nathoo/kernelcrawl/logging"
	"github.com/nathoo/kernelcrawl/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: kernelcrawl [--version] [--plain] [--script <file>] [--seed <n>] [--env <file>] [game_directory]"

// options are the command-line overrides.
type options struct {
	plain      bool
	scriptFile string
	envFile    string
	gameDir    string
	seed       int64
	seedSet    bool
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	if opts == nil {
		fmt.Printf("kernelcrawl %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if err := run(*opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs reads flags in order. It returns nil options for --version.
func parseArgs(args []string) (*options, error) {
	opts := &options{envFile: ".env"}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			return nil, nil
		case "--plain":
			opts.plain = true
		case "--script", "--seed", "--env":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", args[i])
			}
			flag := args[i]
			i++
			switch flag {
			case "--script":
				opts.scriptFile = args[i]
			case "--env":
				opts.envFile = args[i]
			case "--seed":
				seed, err := strconv.ParseInt(args[i], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("--seed: %w", err)
				}
				opts.seed, opts.seedSet = seed, true
			}
		default:
			if opts.gameDir != "" {
				return nil, fmt.Errorf("unexpected argument %q", args[i])
			}
			opts.gameDir = args[i]
		}
	}
	return opts, nil
}

func run(opts options) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.gameDir != "" {
		cfg.GameDir = opts.gameDir
	}
	if opts.seedSet {
		cfg.Seed = opts.seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	log, closer, err := logging.New(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	// Load and compile Lua world content.
	defs, err := loader.Load(cfg.GameDir)
	if err != nil {
		log.WithError(err).WithField("dir", cfg.GameDir).Error("loading world failed")
		return fmt.Errorf("loading game: %w", err)
	}
	for _, w := range defs.Warnings {
		log.WithField("dir", cfg.GameDir).Warn(w)
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	log.WithFields(logrus.Fields{
		"title": defs.Game.Title,
		"rooms": len(defs.Rooms),
		"items": len(defs.Items),
	}).Info("world loaded")

	rng := engine.NewRNG(cfg.Seed)

	// Script mode: read the file, force plain, echo commands.
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New()
		c.In = f
		c.EchoInput = true
		fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
		engine.New(defs, c, rng, log).Run()
		return nil
	}

	// Use the plain CLI if --plain was given or stdout is not a terminal.
	if opts.plain || !isTerminal() {
		c := cli.New()
		c.TypingDelay = cfg.TypingDelay
		fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
		engine.New(defs, c, rng, log).Run()
		return nil
	}

	return tui.Run(defs, rng, log, cfg.TypingDelay)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
