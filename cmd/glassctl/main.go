// glassctl is a small console remote control: it connects to a console and
// launches titles, records clips, or watches status events.
//
// Usage:
//
//	glassctl -config glassctl.toml status
//	glassctl -addr 10.0.0.5 launch 0x2ed4f51c
//	glassctl -addr 10.0.0.5 record 30
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	smartglass "github.com/smartglass/go-sdk"
)

func main() {
	configPath := flag.String("config", "", "path to glassctl config.toml")
	addr := flag.String("addr", "", "console address (overrides config)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("app", "glassctl").Logger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	if *addr != "" {
		cfg.client.Address = *addr
	}

	if flag.NArg() < 1 {
		logger.Fatal().Msg("usage: glassctl [flags] status|launch <title-id>|record [seconds]")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []smartglass.DialOption{}
	if cfg.displayName != "" {
		opts = append(opts, smartglass.WithDisplayName(cfg.displayName))
	}
	if cfg.verbose {
		opts = append(opts, smartglass.WithLogger(logger.Level(zerolog.TraceLevel)))
	}

	client, err := smartglass.Dial(ctx, cfg.client, smartglass.LogErrors(logger), opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect")
	}
	defer client.Close()
	logger.Info().Uint32("participant_id", client.ParticipantID()).Msg("connected")

	switch flag.Arg(0) {
	case "status":
		client.OnConsoleStatus(func(s *smartglass.ConsoleStatus) {
			for _, title := range s.ActiveTitles {
				logger.Info().
					Uint32("title_id", title.TitleID).
					Bool("focused", title.Focused).
					Str("name", title.TitleName).
					Msg("active title")
			}
		})
		logger.Info().Msg("watching console status; ctrl-c to stop")
		<-ctx.Done()

	case "launch":
		if flag.NArg() < 2 {
			logger.Fatal().Msg("launch needs a title id")
		}
		titleID, err := parseTitleID(flag.Arg(1))
		if err != nil {
			logger.Fatal().Err(err).Msg("title id")
		}
		if err := client.LaunchTitle(titleID); err != nil {
			logger.Fatal().Err(err).Msg("launch")
		}
		logger.Info().Uint32("title_id", titleID).Msg("launch sent")

	case "record":
		seconds := int64(0)
		if flag.NArg() > 1 {
			if seconds, err = strconv.ParseInt(flag.Arg(1), 10, 32); err != nil {
				logger.Fatal().Err(err).Msg("seconds")
			}
		}
		if err := client.StartDvrRecording(int32(seconds)); err != nil {
			logger.Fatal().Err(err).Msg("record")
		}
		logger.Info().Msg("recording requested")

	default:
		logger.Fatal().Str("command", flag.Arg(0)).Msg("unknown command")
	}
}

func parseTitleID(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("title id %q is not hex: %w", s, err)
	}
	return uint32(v), nil
}
