package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kitescreener/config"
	"kitescreener/internal/cache"
	"kitescreener/internal/kite"
	"kitescreener/internal/notify"
	"kitescreener/internal/scan"
	"kitescreener/models"
)

const digestSize = 10

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	session := config.EnvSession{}
	client := kite.NewClient(kite.ClientOptions{
		APIKey:  cfg.KiteAPIKey,
		Session: session,
		Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
	})

	store := cache.New(nil)
	orchestrator := scan.New(client, store, scan.Options{HistoryDays: cfg.HistoryDays})

	go func() {
		for ev := range orchestrator.Events() {
			switch ev.Stage {
			case models.StageFetchingHistory:
				log.Info().Int("current", ev.Current).Int("total", ev.Total).Str("symbol", ev.Message).Msg("fetching history")
			case models.StageError:
				log.Error().Str("message", ev.Message).Msg("scan error")
			default:
				log.Info().Str("stage", string(ev.Stage)).Msg("scan progress")
			}
		}
	}()

	results, err := orchestrator.Scan(context.Background(), cfg.Thresholds)
	if err != nil {
		log.Fatal().Err(err).Msg("scan failed")
	}

	fmt.Printf("%-6s %-16s %8s %6s %10s %s\n", "RANK", "SYMBOL", "PRICE", "SCORE", "VOL x", "SETUPS")
	rank := 0
	for _, r := range results {
		if r.Score == 0 {
			continue
		}
		rank++
		fmt.Printf("%-6d %-16s %8.2f %6d %10.1f %s\n",
			rank, r.Instrument.Symbol, r.Quote.LastPrice, r.Score, r.Volume.Multiplier, setups(r))
	}
	if rank == 0 {
		fmt.Println("no instruments scored above zero")
	}

	telegram, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Warn().Err(err).Msg("telegram notifier unavailable")
		return
	}
	if err := telegram.SendDigest(results, digestSize); err != nil {
		log.Warn().Err(err).Msg("telegram digest failed")
	}
}

func setups(r models.ScanResult) string {
	out := ""
	if r.Confluence.Detected {
		out += "confluence "
	}
	if r.High52W.Above {
		out += "52w-breakout "
	} else if r.High52W.Near {
		out += "near-52w "
	}
	if r.High20D.Above {
		out += "20d-breakout "
	}
	if r.Volume.Spike {
		out += "vol-spike "
	}
	return out
}
