package pacaur

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// multiFlag collects repeatable, comma-separated list flags.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*m = append(*m, part)
		}
	}
	return nil
}

// Main is the CLI entry point. It prints exactly one JSON document on stdout
// and exits non-zero on failure.
func Main() {
	// Context and signal setup: first signal cancels gracefully, a second
	// one forces immediate exit.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		fmt.Fprintf(os.Stderr, "\nReceived %v, cancelling...\n", sig)
		cancel()
		<-sigs
		os.Exit(130)
	}()

	fs := flag.NewFlagSet("pacaur", flag.ExitOnError)
	var names multiFlag
	fs.Var(&names, "name", "package name(s) or local archive path(s), comma separated, repeatable")
	fs.Var(&names, "package", "alias for -name")
	fs.Var(&names, "pkg", "alias for -name")
	stateFlag := fs.String("state", "present", "desired package state: absent, present or latest")
	upgrade := fs.Bool("upgrade", false, "upgrade every outdated package on the system")
	updateCache := fs.Bool("update-cache", false, "refresh the master package databases")
	force := fs.Bool("force", false, "force the requested action")
	extraArgs := fs.String("extra-args", "", "additional arguments appended to the handler command")
	check := fs.Bool("check", false, "report what would change without changing anything")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println("pacaur", version)
		return
	}

	cfg, err := loadConfig(ConfigFile)
	if err != nil {
		failJSON(fmt.Errorf("failed to read %s: %w", ConfigFile, err))
	}
	initConfig(cfg)

	state, err := ParseState(*stateFlag)
	if err != nil {
		failJSON(err)
	}

	run := NewExecutor()
	pacman, err := run.LookPath(pacmanBin)
	if err != nil {
		failJSON(fmt.Errorf("%s is required: %w", pacmanBin, err))
	}

	req := &Request{
		Names:       names,
		State:       state,
		Upgrade:     *upgrade,
		UpdateCache: *updateCache,
		Force:       *force,
		ExtraArgs:   *extraArgs,
		CheckMode:   *check,
	}

	rec := &Reconciler{
		Pacman: pacman,
		Run:    run,
		AUR:    NewAURClient(aurBaseURL),
	}

	out, err := rec.Apply(ctx, req)
	if err != nil {
		failJSON(err)
	}

	if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// failJSON reports a failed run: one JSON document on stdout, the message on
// stderr, exit code 1.
func failJSON(err error) {
	cPrintf(colError, "Error: %v\n", err)
	doc := struct {
		Changed bool   `json:"changed"`
		Msg     string `json:"msg"`
		Failed  bool   `json:"failed"`
	}{Msg: err.Error(), Failed: true}
	json.NewEncoder(os.Stdout).Encode(doc)
	os.Exit(1)
}
