package main

import (
	"flag"
)

type initOptions struct {
	configfile  string
	logfile     string
	statusaddr  string
	withstatus  bool
	verbose     bool
	versionFlag bool
}

func parseFlags() initOptions {
	var options initOptions
	flag.StringVar(
		&(options.configfile),
		"c",
		"serkeyd.toml",
		"Path to the configuration file. Created with defaults if missing.",
	)
	flag.StringVar(
		&(options.logfile),
		"l",
		"",
		"Log into a file, rotating after 20MB",
	)
	flag.StringVar(
		&(options.statusaddr),
		"a",
		"127.0.0.1:21325",
		"Loopback address for the status server",
	)
	flag.BoolVar(
		&(options.withstatus),
		"s",
		true,
		"Serve the status page. Can be disabled for headless use. Example: serkeyd -s=false",
	)
	flag.BoolVar(
		&(options.verbose),
		"v",
		false,
		"Write verbose logs to either stderr or logfile",
	)
	flag.BoolVar(
		&(options.versionFlag),
		"version",
		false,
		"Write version",
	)
	flag.Parse()
	return options
}
