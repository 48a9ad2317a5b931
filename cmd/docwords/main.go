// Copyright 2025 The docwords Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the docwords completion server and its CLI [DBG] mode.

docwords completes words from the document being edited. Every change to the
text starts a background build that tokenizes the document, keeps the unique
words, sorts them with locale-aware collation and publishes an index for
prefix queries. A newer change cancels the build that is still running, so
completions always come from the latest text that finished indexing.

# Usage

Start the IPC server on stdin/stdout:

	docwords

Follow a file on disk and serve completions for it:

	docwords -watch notes.md

Run the interactive CLI for testing:

	docwords -c -d

# Configuration

Runtime configuration is read from a TOML file. It is created with defaults
in the user's config directory if missing:

	[index]
	max_tokens = 512
	min_word_len = 3
	locale = "en"

	[completion]
	max_results = 0
	strict = false

	[cli]
	prompt = "> "

	[watch]
	debounce_ms = 200

A file that fails to parse is recovered section by section and any value that
cannot be read falls back to its default.

# IPC Protocol

Requests and responses are msgpack maps, see the server package for the full
list of actions:

	{"id": "c1", "action": "complete", "cursor": 38}
	{"id": "c1", "status": "ok", "e": [{"i": "...", "l": "Doorway", "s": "d.square", "t": "doorway"}], "c": 1, "f": "do", "t": 12}

# Command Line Flags

	-version
	    Show current version
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-config string
	    Path to a config file
	-text string
	    File to load as the initial document
	-watch string
	    File to follow; its text replaces the document on every save
	-strict
	    Panic when a completion entry from another index is accepted

All logs go to stderr.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bastiangx/docwords/internal/cli"
	"github.com/bastiangx/docwords/internal/logger"
	"github.com/bastiangx/docwords/internal/utils"
	"github.com/bastiangx/docwords/internal/watch"
	"github.com/bastiangx/docwords/pkg/config"
	"github.com/bastiangx/docwords/pkg/server"
	"github.com/bastiangx/docwords/pkg/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = config.AppName
	gh      = "https://github.com/bastiangx/docwords"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only manages the flow between config, session and the front-ends.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configPath := flag.String("config", "", "Path to a custom config file")
	textFile := flag.String("text", "", "File to load as the initial document")
	watchFile := flag.String("watch", "", "File to follow; every save replaces the document")
	strict := flag.Bool("strict", false, "Panic when an entry from another index is accepted")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	cfg, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if usedPath != "" {
		log.Debugf("Using config file: (%s)", usedPath)
	}
	if *strict {
		cfg.Completion.Strict = true
	}

	initial := ""
	if *textFile != "" {
		initial, err = utils.ReadTextFile(*textFile)
		if err != nil {
			log.Fatalf("Failed to read initial text: %v", err)
		}
	}

	log.Debug("Init session",
		"maxTokens", cfg.Index.MaxTokens,
		"minWordLen", cfg.Index.MinWordLen,
		"locale", cfg.Index.Locale,
		"initialBytes", len(initial))
	sess := session.New(cfg, initial)
	defer sess.Close()

	if *watchFile != "" {
		debounce := time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond
		watcher, err := watch.NewFileWatcher(*watchFile, debounce, func(text string) {
			sess.SetText(text)
		})
		if err != nil {
			log.Fatalf("Failed to watch %s: %v", *watchFile, err)
		}
		if err := watcher.Load(); err != nil {
			log.Fatalf("Failed to read %s: %v", *watchFile, err)
		}
		watcher.Start()
		defer watcher.Stop()
		log.Debugf("Watching file: (%s)", watcher.Path())
	}

	// CLI is mainly for testing and dbg.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(sess, cfg.CLI, os.Stdin, os.Stderr)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(sess, cfg, os.Stdin, os.Stdout)

	showStartupInfo(usedPath, *watchFile)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ docwords ] Completes the words you already wrote")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(configPath, watchFile string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" " + AppName + " ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	if configPath != "" {
		log.Infof("config: ( %s )", configPath)
	}
	if watchFile != "" {
		log.Infof("watching: ( %s )", utils.GetAbsolutePath(watchFile))
	}
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
