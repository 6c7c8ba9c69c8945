package main

import (
	"CallService/bot"
	"CallService/bot/chat"
	"CallService/bot/chat/commands"
	"CallService/bot/chat/flow"
	"CallService/bot/whatsapp"
	"CallService/impl/core"
	"CallService/internal/cache"
	"CallService/internal/config"
	repository "CallService/internal/database"
	"CallService/internal/http-server/api"
	"CallService/internal/lib/logger"
	"CallService/internal/lib/sl"
	"CallService/internal/ws"
	"context"
	"flag"
	"log/slog"
	"time"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Warnings and errors also reach the admin Telegram chat when the
	// alert bot is enabled.
	if conf.Telegram.Enabled {
		tgBot, err := bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelWarn)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting callservice", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.Error("mongo client", sl.Err(err))
		return
	}
	lg.With(
		slog.String("host", conf.Mongo.Host),
		slog.String("port", conf.Mongo.Port),
		slog.String("database", conf.Mongo.Database),
	).Info("mongo client initialized")

	if err := db.Seed(context.Background(), conf.WhatsApp.BotNumber); err != nil {
		lg.Error("call center seed", sl.Err(err))
		return
	}

	cacheService := cache.NewService(db, cache.Intervals{
		Attendant: time.Duration(conf.Cache.AttendantRefreshSec) * time.Second,
		Sector:    time.Duration(conf.Cache.SectorRefreshSec) * time.Second,
	}, lg)
	defer cacheService.Stop()

	waBot := whatsapp.NewWhatsAppBot(conf.WhatsApp, lg)

	cmds := commands.New(cacheService, db, waBot, lg)
	filter := chat.NewFilter(nil, nil)
	manager := flow.NewManager(cacheService, waBot, cmds, filter, conf.WhatsApp.BotNumber, lg)
	waBot.SetHandler(manager)

	hub := ws.NewHub(lg)
	go hub.Run()
	manager.SetEventSink(hub)

	handler := core.New(db, cacheService, conf.Env, conf.WhatsApp.BotNumber, lg)

	// *** blocking start with http server ***
	if err := api.New(conf, lg, handler, waBot, hub); err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
