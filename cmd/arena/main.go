package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/openjudge/arena/api"
	"github.com/openjudge/arena/internal/contest"
	"github.com/openjudge/arena/internal/environment"
	"github.com/openjudge/arena/internal/judge"
	"github.com/openjudge/arena/internal/session"
	"github.com/openjudge/arena/internal/termview"
)

const appName = "arena"

func main() {
	cmd := &cli.Command{
		Name:  appName,
		Usage: "contest session client for the online judge",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Commands: []*cli.Command{
			joinCmd(),
			problemsCmd(),
			submitCmd(),
			historyCmd(),
			boardCmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setup(cmd *cli.Command) (*environment.Config, *judge.Client, *slog.Logger, error) {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(log)

	cfg, err := environment.Read()
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, judge.New(cfg.JudgeBaseURL), log, nil
}

func loadIdentity() (session.Identity, error) {
	id, err := session.NewStore(appName).Load()
	if err != nil {
		return session.Identity{}, err
	}
	if !id.Valid() {
		return session.Identity{}, errors.New("no active session, run `arena join` first")
	}
	return id, nil
}

func joinCmd() *cli.Command {
	return &cli.Command{
		Name:  "join",
		Usage: "join a contest under a display name",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "contest", Aliases: []string{"c"}, Required: true, Usage: "contest id"},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "display name"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, jc, _, err := setup(cmd)
			if err != nil {
				return err
			}
			contestID, err := strconv.ParseInt(cmd.String("contest"), 10, 64)
			if err != nil {
				return fmt.Errorf("contest id must be a number: %q", cmd.String("contest"))
			}

			id, err := session.Join(ctx, jc, session.NewStore(appName), contestID, cmd.String("user"))
			if errors.Is(err, judge.ErrNotFound) {
				return fmt.Errorf("contest %d does not exist", contestID)
			}
			if err != nil {
				return err
			}
			fmt.Printf("joined contest %d as %s\n", id.ContestID, id.Username)
			return nil
		},
	}
}

func problemsCmd() *cli.Command {
	return &cli.Command{
		Name:  "problems",
		Usage: "list the problems of the joined contest",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, jc, _, err := setup(cmd)
			if err != nil {
				return err
			}
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			c, err := jc.Contest(ctx, id.ContestID)
			if err != nil {
				return err
			}
			termview.New().Problems(c)
			return nil
		},
	}
}

func boardCmd() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "print the current leaderboard",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, jc, _, err := setup(cmd)
			if err != nil {
				return err
			}
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			entries, err := jc.Leaderboard(ctx, id.ContestID)
			if err != nil {
				return err
			}
			termview.New().Snapshot(id.ContestID, entries)
			return nil
		},
	}
}

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "print your submissions for one problem",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problem", Aliases: []string{"p"}, Required: true, Usage: "problem id"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, jc, log, err := setup(cmd)
			if err != nil {
				return err
			}
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			problemID, err := strconv.ParseInt(cmd.String("problem"), 10, 64)
			if err != nil {
				return fmt.Errorf("problem id must be a number: %q", cmd.String("problem"))
			}

			view := termview.New()
			ctrl := contest.NewController(jc, id, view, log)
			defer ctrl.Close()
			subms, err := ctrl.UserSubmissionsForProblem(ctx, problemID)
			if err != nil {
				return err
			}
			view.History(subms)
			return nil
		},
	}
}

func submitCmd() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "submit code and track the verdict to completion",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problem", Aliases: []string{"p"}, Usage: "problem id (default: first in contest)"},
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Value: "java", Usage: "java, python or cpp"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "source file; stdin when omitted"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, jc, log, err := setup(cmd)
			if err != nil {
				return err
			}
			id, err := loadIdentity()
			if err != nil {
				return err
			}

			code, err := readSource(cmd.String("file"))
			if err != nil {
				return err
			}

			obs := &watchObserver{View: termview.New(), settled: make(chan struct{})}
			ctrl := contest.NewController(jc, id, obs, log).
				WithCadence(cfg.PollInterval, cfg.PollMaxWait, cfg.BoardInterval)
			defer ctrl.Close()

			if cfg.NatsURL != "" {
				nc, err := nats.Connect(cfg.NatsURL,
					nats.Name(appName),
					nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
						log.Warn("verdict stream disconnected", slog.Any("error", err))
					}),
					nats.ReconnectHandler(func(_ *nats.Conn) {
						log.Info("verdict stream reconnected")
					}),
					nats.ClosedHandler(func(_ *nats.Conn) {
						log.Warn("verdict stream closed")
					}))
				if err != nil {
					return fmt.Errorf("connect to verdict stream: %w", err)
				}
				defer nc.Close()
				ctrl = ctrl.WithPush(nc)
			}

			if err := ctrl.LoadContest(ctx); err != nil {
				return err
			}
			if p := cmd.String("problem"); p != "" {
				problemID, err := strconv.ParseInt(p, 10, 64)
				if err != nil {
					return fmt.Errorf("problem id must be a number: %q", p)
				}
				if err := ctrl.SelectProblem(ctx, problemID); err != nil {
					return err
				}
			}
			if err := ctrl.SetLanguage(contest.Language(cmd.String("lang"))); err != nil {
				return err
			}
			ctrl.SetCode(code)

			subm, err := ctrl.Submit(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("submission %d created\n", subm.ID)

			select {
			case <-obs.settled:
			case <-ctx.Done():
				return ctx.Err()
			}

			obs.History(ctrl.History())
			return nil
		},
	}
}

// watchObserver closes settled once the tracked submission reached a
// terminal verdict or its outcome became unconfirmable.
type watchObserver struct {
	*termview.View
	settled chan struct{}
}

func (w *watchObserver) Resolved(subm *api.Submission) {
	w.View.Resolved(subm)
	close(w.settled)
}

func (w *watchObserver) TrackingLost(submissionID int64, err error) {
	w.View.TrackingLost(submissionID, err)
	close(w.settled)
}

func readSource(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source file: %w", err)
	}
	return string(data), nil
}
