// Command ledctl sends one command to the LED controller and prints the
// reply, for bench-testing the wiring without a camera.
//
//	ledctl [-controller URL] index/on
//	ledctl all/off
//	ledctl status
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/link"
	"github.com/ayusman/mudra/internal/log"
)

func main() {
	controller := flag.String("controller", "", "LED controller base URL")
	timeout := flag.Duration("timeout", config.DefaultRequestTimeout, "request timeout")
	retries := flag.Int("retries", config.DefaultMaxRetries, "attempts for a timed-out command")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ledctl [flags] <finger>/<on|off> | all/off | status\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log.Init(level)

	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "ledctl: %v\n", err)
		os.Exit(2)
	}
	if *controller != "" {
		cfg.ControllerURL = *controller
	}

	client := link.NewClient(cfg.ControllerURL, nil, *timeout)

	arg := flag.Arg(0)
	if arg == "status" {
		resp, err := client.Get(context.Background(), link.StatusPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ledctl: %s: %v\n", link.Classify(err), err)
			os.Exit(1)
		}
		fmt.Println(resp.Body)
		return
	}

	path, err := link.ParseCommand(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledctl: %v\n", err)
		os.Exit(2)
	}

	d := link.NewDispatcher(client, link.DispatcherConfig{
		MaxAttempts: *retries,
		RetryPause:  config.DefaultRetryPause,
	})

	start := time.Now()
	del := d.Deliver(context.Background(), path)
	if del.Outcome != link.OutcomeDelivered {
		fmt.Fprintf(os.Stderr, "ledctl: %s %s after %d attempt(s): %v\n", path, del.Outcome, del.Attempts, del.Err)
		os.Exit(1)
	}
	fmt.Printf("%s ok (%d attempt(s), %s): %s\n", path, del.Attempts, time.Since(start).Round(time.Millisecond), del.Reply)
}
