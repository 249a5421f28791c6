package main

import (
	"fmt"

	"github.com/serkey/serkeyd-go/config"
	"github.com/serkey/serkeyd-go/core"
	"github.com/serkey/serkeyd-go/injector"
	"github.com/serkey/serkeyd-go/link"
	"github.com/serkey/serkeyd-go/provision"
	"github.com/serkey/serkeyd-go/server"
)

const version = "1.0.0"

func main() {
	options := parseFlags()

	if options.versionFlag {
		fmt.Printf("serkeyd version %s\n", version)
		return
	}

	stderrWriter, stderrLogger, shortMemoryWriter, longMemoryWriter := initLoggers(
		options.logfile, options.verbose)

	stderrLogger.Print("serkeyd is starting.")

	cfg := config.Load(options.configfile, stderrLogger)
	if err := cfg.Validate(); err != nil {
		stderrLogger.Fatalf("config: %s", err)
	}

	port, err := link.Resolve(cfg, longMemoryWriter)
	if err != nil {
		stderrLogger.Fatalf("link: %s", err)
	}
	stderrLogger.Printf("using device port %s", port)

	if err := provision.Run(cfg.PreviousCommand, port, stderrWriter, longMemoryWriter); err != nil {
		stderrLogger.Fatalf("provision: %s", err)
	}

	ch, err := link.Open(port, cfg)
	if err != nil {
		stderrLogger.Fatalf("link: %s", err)
	}
	defer ch.Close()

	inj, err := injector.New(longMemoryWriter)
	if err != nil {
		stderrLogger.Fatalf("injector: %s", err)
	}
	defer inj.Close()

	sess := core.New(ch, cfg, inj, options.verbose, longMemoryWriter)

	if options.withstatus {
		longMemoryWriter.Log("main - creating HTTP server")
		s := server.New(sess, cfg, port, options.statusaddr, version,
			stderrWriter, shortMemoryWriter, longMemoryWriter)
		go func() {
			if err := s.Run(); err != nil {
				stderrLogger.Printf("https: %s", err)
			}
		}()
		defer s.Close()
	}

	// Run blocks for the life of the connection and only returns on error.
	if err := sess.Run(); err != nil {
		stderrLogger.Fatalf("session: %s", err)
	}
}
