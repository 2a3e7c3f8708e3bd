package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"spotfinder/spotclient"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

// readPassword is swapped out in tests.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

const usage = `usage: spotctl <command> [flags] [args]

commands:
  register -username NAME -email EMAIL   create an account
  login -email EMAIL                     sign in and save the session
  logout                                 forget the saved session
  me                                     show your points and status
  profile USERNAME                       show a user's public status
  spots                                  list spots, newest first
  spot ID                                show one spot
  add-spot -name N -description D -lat LAT -lng LNG -type T [-tips T]
  delete-spot ID                         delete a spot you created
  upload -spot ID FILE                   upload an image for a spot
  media SPOT_ID                          list a spot's images
  delete-media ID                        delete an image you uploaded
  notifications                          list your notifications
  read ID                                mark a notification as read
`

type app struct {
	client      *spotclient.Client
	sessionPath string
	out         io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(a.out, usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		a.client.Logout()
		return a.client.Session().Save(a.sessionPath)
	case "me":
		return a.me(ctx)
	case "profile":
		return a.profile(ctx, rest)
	case "spots":
		return a.spots(ctx)
	case "spot":
		return a.spot(ctx, rest)
	case "add-spot":
		return a.addSpot(ctx, rest)
	case "delete-spot":
		return withID(rest, func(id int64) error {
			if err := a.client.DeleteSpot(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Spot deleted")
			return nil
		})
	case "upload":
		return a.upload(ctx, rest)
	case "media":
		return a.media(ctx, rest)
	case "delete-media":
		return withID(rest, func(id int64) error {
			if err := a.client.DeleteMedia(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Media deleted")
			return nil
		})
	case "notifications":
		return a.notifications(ctx)
	case "read":
		return withID(rest, func(id int64) error {
			return a.client.MarkRead(ctx, id)
		})
	default:
		return fmt.Errorf("unknown command %q (see spotctl help)", cmd)
	}
}

func withID(args []string, fn func(id int64) error) error {
	if len(args) != 1 {
		return errors.New("expected exactly one ID argument")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid ID %q", args[0])
	}
	return fn(id)
}

func (a *app) password() (string, error) {
	fmt.Fprint(a.out, "Password: ")
	pw, err := readPassword()
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.out)
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return errors.New("-username and -email are required")
	}

	pw, err := a.password()
	if err != nil {
		return err
	}
	u, err := a.client.Register(ctx, *username, *email, pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s (id %d). Log in with: spotctl login -email %s\n", u.Username, u.ID, u.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	pw, err := a.password()
	if err != nil {
		return err
	}
	u, err := a.client.Login(ctx, *email, pw)
	if err != nil {
		return err
	}
	if err := a.client.Session().Save(a.sessionPath); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s [%s, %d points]\n", u.Username, u.Status, u.Points)
	return nil
}

func (a *app) me(ctx context.Context) error {
	u, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	if err := a.client.Session().Save(a.sessionPath); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\nStatus: %s\nPoints: %d\n", u.Username, u.Email, u.Status, u.Points)
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("expected a username")
	}
	p, err := a.client.PublicProfile(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", p.Username, p.Status)
	return nil
}

func (a *app) spots(ctx context.Context) error {
	spots, err := a.client.ListSpots(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tLAT\tLNG")
	for _, s := range spots {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.5f\t%.5f\n", s.ID, s.Name, s.SpotType, s.Latitude, s.Longitude)
	}
	return tw.Flush()
}

func (a *app) spot(ctx context.Context, args []string) error {
	return withID(args, func(id int64) error {
		s, err := a.client.GetSpot(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s (%s)\n%s\nLocation: %.5f, %.5f\n", s.Name, s.SpotType, s.Description, s.Latitude, s.Longitude)
		if s.Tips != nil {
			fmt.Fprintf(a.out, "Tips: %s\n", *s.Tips)
		}
		if s.CreatorName != nil {
			fmt.Fprintf(a.out, "Added by: %s\n", *s.CreatorName)
		}
		return nil
	})
}

func (a *app) addSpot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-spot", flag.ContinueOnError)
	fs.SetOutput(a.out)
	name := fs.String("name", "", "spot name")
	description := fs.String("description", "", "description")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	spotType := fs.String("type", "", "spot type (park, street, plaza, ...)")
	tips := fs.String("tips", "", "optional tips")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *description == "" || *spotType == "" {
		return errors.New("-name, -description and -type are required")
	}

	in := spotclient.SpotInput{
		Name:        name,
		Description: description,
		Latitude:    lat,
		Longitude:   lng,
		SpotType:    spotType,
	}
	if *tips != "" {
		in.Tips = tips
	}

	s, err := a.client.CreateSpot(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created spot %d: %s\n", s.ID, s.Name)
	return nil
}

func (a *app) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(a.out)
	spotID := fs.Int64("spot", 0, "spot ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *spotID <= 0 || fs.NArg() != 1 {
		return errors.New("usage: spotctl upload -spot ID FILE")
	}

	path := fs.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := a.client.UploadImage(ctx, *spotID, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded media %d: %s\n", m.ID, m.ImageURL)
	return nil
}

func (a *app) media(ctx context.Context, args []string) error {
	return withID(args, func(id int64) error {
		media, err := a.client.ListMedia(ctx, id)
		if err != nil {
			return err
		}
		for _, m := range media {
			fmt.Fprintf(a.out, "%d\t%s\n", m.ID, m.ImageURL)
		}
		return nil
	})
}

func (a *app) notifications(ctx context.Context) error {
	list, err := a.client.Notifications(ctx)
	if err != nil {
		return err
	}
	unread := 0
	for _, n := range list {
		marker := " "
		if !n.IsRead {
			marker = "*"
			unread++
		}
		fmt.Fprintf(a.out, "%s %d [%s] %s\n", marker, n.ID, n.Type, strings.TrimSpace(n.Message))
	}
	fmt.Fprintf(a.out, "%d unread\n", unread)
	return nil
}
