// Command deadbolt is the operator front end for the tamper-response guard.
// It loads a YAML guard configuration and exposes three subcommands:
//
//	deadbolt -config deadbolt.yaml status            show config and path state
//	deadbolt -config deadbolt.yaml verify <image>    verify a firmware image
//	deadbolt -config deadbolt.yaml destruct          wipe all protected paths now
//
// verify and destruct are destructive on failure: a digest mismatch locks
// the guard and wipes every protected path.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/fatih/color"

	"github.com/grey-heron/Deadbolt/internal/shared"
	"github.com/grey-heron/Deadbolt/pkg/config"
	"github.com/grey-heron/Deadbolt/pkg/guard"
	"github.com/grey-heron/Deadbolt/pkg/version"
)

// The flasher may still be writing the firmware image when verify is
// invoked, so wait for it to appear with a capped backoff.
const (
	waitAttempts = 5
	waitDelay    = 500 * time.Millisecond
	waitMaxDelay = 5 * time.Second
)

func main() {
	cfgPath := flag.String("config", "deadbolt.yaml", "path to the guard configuration")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("deadbolt " + version.String())
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("deadbolt: %v", err)
	}
	cfg.OnDestruct = func(wiped []string) {
		color.Red("TAMPER RESPONSE TRIGGERED — %d path(s) wiped", len(wiped))
		for _, p := range wiped {
			color.Red("  wiped: %s", p)
		}
	}

	g, err := guard.New(cfg)
	if err != nil {
		log.Fatalf("deadbolt: %v", err)
	}

	switch args[0] {
	case "status":
		runStatus(g, cfg)
	case "verify":
		if len(args) != 2 {
			usage()
		}
		runVerify(g, args[1])
	case "destruct":
		runDestruct(g)
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: deadbolt [-config file] [-version] status | verify <image> | destruct")
	os.Exit(2)
}

func runStatus(g *guard.Guard, cfg *config.GuardConfig) {
	fmt.Printf("host:            %s (operator %s)\n", shared.GetHostname(), shared.GetUsername())
	fmt.Printf("max attempts:    %d\n", cfg.MaxAttempts)
	fmt.Printf("window:          %v\n", cfg.Window())
	if cfg.ExpectedDigest != "" {
		fmt.Printf("expected digest: %s\n", cfg.ExpectedDigest)
	} else {
		fmt.Println("expected digest: (verification disabled)")
	}

	if g.IsLocked() {
		color.Red("state:           LOCKED")
	} else {
		color.Green("state:           active")
	}

	for _, p := range cfg.ProtectedPaths {
		if _, err := os.Stat(p); err != nil {
			color.Yellow("  protected: %s (absent)", p)
		} else {
			fmt.Printf("  protected: %s\n", p)
		}
	}
}

func runVerify(g *guard.Guard, image string) {
	// Wait for the image to land on disk before digesting it.
	err := retry.Do(func() error {
		_, err := os.Stat(image)
		return err
	}, retry.Attempts(waitAttempts), retry.Delay(waitDelay), retry.MaxDelay(waitMaxDelay))
	if err != nil {
		log.Fatalf("deadbolt: firmware image never appeared at %s: %v", image, err)
	}

	ok, err := g.VerifyFirmware(image)
	if err != nil {
		if errors.Is(err, guard.ErrNoExpectedDigest) {
			log.Fatalf("deadbolt: %v (set expected_digest in the config)", err)
		}
		log.Fatalf("deadbolt: %v", err)
	}

	if ok {
		color.Green("PASS: %s matches the expected digest", image)
		return
	}

	color.Red("FAIL: %s does not match the expected digest", image)
	reportIncident(g)
	os.Exit(1)
}

func runDestruct(g *guard.Guard) {
	log.Printf("deadbolt: manual destruct invoked by %s@%s", shared.GetUsername(), shared.GetHostname())

	res, err := g.DestructNow()
	for _, p := range res.Wiped {
		color.Green("wiped:   %s", p)
	}
	for _, p := range res.Skipped {
		color.Yellow("skipped: %s (not present)", p)
	}
	for _, p := range res.Failed {
		color.Red("FAILED:  %s (still on disk)", p)
	}

	if err != nil {
		log.Fatalf("deadbolt: %v", err)
	}
}

func reportIncident(g *guard.Guard) {
	inc := g.Incident()
	if inc == nil {
		return
	}
	log.Printf("incident %s at %s: %s", inc.ID, inc.At.Format(time.RFC3339), inc.Reason)
	for _, p := range inc.Failed {
		color.Red("FAILED:  %s (still on disk)", p)
	}
}
