package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"vaultEnvelopes/internal/config"
	"vaultEnvelopes/internal/database"
	"vaultEnvelopes/internal/fixtures"
	"vaultEnvelopes/internal/seed"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		envelopesPath = flag.String("envelopes", "", "信封数组 JSON 文件（默认使用内置数据）")
		tarotPath     = flag.String("tarot", "", "以 id 为键的塔罗牌 JSON 文件（默认使用内置数据）")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config failed", slog.Any("error", err))
		return 1
	}

	envs, err := fixtures.LoadEnvelopes(*envelopesPath)
	if err != nil {
		logger.Error("load envelopes failed", slog.Any("error", err))
		return 1
	}
	cards, err := fixtures.LoadTarotCards(*tarotPath)
	if err != nil {
		logger.Error("load tarot cards failed", slog.Any("error", err))
		return 1
	}

	db, err := database.InitDatabase(cfg.Database, cfg.App.IsDevelopment())
	if err != nil {
		logger.Error("init database failed", slog.Any("error", err))
		return 1
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("auto migrate failed", slog.Any("error", err))
		return 1
	}

	res, err := seed.Run(context.Background(), db, seed.Data{
		Envelopes:  envs,
		TarotCards: cards,
		Admin: seed.Credentials{
			Username: cfg.Auth.AdminUsername,
			Password: cfg.Auth.AdminPassword,
		},
	}, logger)
	if err != nil {
		logger.Error("seeding failed", slog.Any("error", err))
		return 1
	}

	logger.Info("database seeding completed",
		slog.Int("envelopes", res.Envelopes),
		slog.Int("tarot_cards", res.TarotCards),
		slog.String("admin", res.Admin),
	)
	return 0
}
