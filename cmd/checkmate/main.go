package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bettersg/checkmate/verdict/store"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "checkmate",
		Usage:   "crowdsourced message-checking daemon",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"MAX_DB_CONNECTIONS"},
			Value:   40,
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Value:   "sqlite://data/checkmate/checkmate.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for counters and caches; in-memory stores when empty",
			EnvVars: []string{"CHECKMATE_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":3984",
			EnvVars: []string{"CHECKMATE_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3985",
			EnvVars: []string{"CHECKMATE_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "responses-file-json",
			Usage:   "JSON file of per-locale response text overrides",
			EnvVars: []string{"CHECKMATE_RESPONSES_FILE_JSON"},
		},
		&cli.IntFlag{
			Name:    "send-rate-limit",
			Usage:   "max follow-up messages per second to the outbound transport",
			Value:   10,
			EnvVars: []string{"CHECKMATE_SEND_RATE_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "min-valid-votes",
			Usage:   "votes required before any consensus decision",
			Value:   1,
			EnvVars: []string{"CHECKMATE_MIN_VALID_VOTES"},
		},
		&cli.Float64Flag{
			Name:    "survey-likelihood",
			Usage:   "probability of offering the satisfaction survey after a reply",
			Value:   0.25,
			EnvVars: []string{"CHECKMATE_SURVEY_LIKELIHOOD"},
		},
		&cli.IntFlag{
			Name:    "survey-quota-day",
			Usage:   "daily ceiling on satisfaction survey offers",
			Value:   50,
			EnvVars: []string{"CHECKMATE_SURVEY_QUOTA_DAY"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		db, err := store.SetupDatabase(cctx.String("database-url"), cctx.Int("max-db-connections"))
		if err != nil {
			return err
		}

		srv, err := NewServer(db, Config{
			Logger:            logger,
			Bind:              cctx.String("bind"),
			RedisURL:          cctx.String("redis-url"),
			ResponsesFileJSON: cctx.String("responses-file-json"),
			SendRateLimit:     cctx.Int("send-rate-limit"),
			MinValidVotes:     cctx.Int("min-valid-votes"),
			SurveyLikelihood:  cctx.Float64("survey-likelihood"),
			SurveyQuotaDay:    cctx.Int("survey-quota-day"),
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.RunAPI(); err != nil {
			return fmt.Errorf("failed to run checkmate service: %w", err)
		}
		return nil
	},
}
