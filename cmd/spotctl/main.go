// Command spotctl is a terminal client for SpotFinder.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"spotfinder/spotclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path := sessionPath()
	session, err := spotclient.LoadSession(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	a := &app{
		client:      spotclient.New(endpointsFromEnv(), session, nil),
		sessionPath: path,
		out:         os.Stdout,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func sessionPath() string {
	if p := os.Getenv("SPOTCTL_SESSION"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spotfinder-session.json"
	}
	return filepath.Join(home, ".spotfinder", "session.json")
}

func endpointsFromEnv() spotclient.Endpoints {
	e := spotclient.DefaultEndpoints()
	for env, field := range map[string]*string{
		"SPOTFINDER_IDENTITY_URL":     &e.Identity,
		"SPOTFINDER_CATALOGUE_URL":    &e.Catalogue,
		"SPOTFINDER_MEDIA_URL":        &e.Media,
		"SPOTFINDER_NOTIFICATION_URL": &e.Notification,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
	return e
}
