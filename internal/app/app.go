// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot плюс HTTP API.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/bot"
	"healthrocket.app/rocket-bot/internal/bot/filters"
	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/config"
	"healthrocket.app/rocket-bot/internal/db/postgres"
	"healthrocket.app/rocket-bot/internal/events"
	"healthrocket.app/rocket-bot/internal/features/admin"
	"healthrocket.app/rocket-bot/internal/features/boosts"
	"healthrocket.app/rocket-bot/internal/features/economy"
	"healthrocket.app/rocket-bot/internal/features/members"
	"healthrocket.app/rocket-bot/internal/features/streak"
	"healthrocket.app/rocket-bot/internal/httpapi"
	"healthrocket.app/rocket-bot/internal/jobs"
	"healthrocket.app/rocket-bot/internal/metrics"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	HTTP      *httpapi.Server // nil, если FEATURE_HTTP_ENABLED=false
	DB        *pgxpool.Pool
	BotAPI    *telego.Bot
	Bus       *events.Bus

	unsubscribe []func()
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	cal := common.NewCalendar(loc)

	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool, migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	var opts []telego.BotOption
	if cfg.AppEnv == "development" {
		opts = append(opts, telego.WithDefaultDebugLogger())
	}
	botAPI, err := telego.NewBot(cfg.TelegramBotToken, opts...)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	me, err := botAPI.GetMe(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка авторизации бота: %w", err)
	}
	log.Infof("Авторизован как @%s", me.Username)
	msg := bot.NewMessenger(botAPI)

	// === 3. Репозитории ===
	memberRepo := members.NewRepository(pool)
	economyRepo := economy.NewRepository(pool)
	boostRepo := boosts.NewRepository(pool, economyRepo)
	streakRepo := streak.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 4. Сервисы ===
	bus := events.NewBus()
	m := metrics.New()
	catalog := boosts.DefaultCatalog()

	economyService := economy.NewService(economyRepo, loc)
	memberService := members.NewService(memberRepo, economyService.CreateBalance)
	streakService := streak.NewService(streakRepo, cal, cfg.StreakReminderThreshold)
	adminService := admin.NewService(adminRepo, cfg.AdminPasswordHash, cfg.IsAdmin)

	daily := boosts.NewDailyTracker(boostRepo, cal)
	weekly := boosts.NewWeeklyTracker(boostRepo, cal)
	weekly.OnReset(func(win boosts.WeeklyWindow) {
		log.WithField("week_start", common.FormatDate(win.StartDate)).Info("Недельное окно бустов сброшено")
	})
	coordinator := boosts.NewCoordinator(catalog, boostRepo, cal, memberService, bus)
	coordinator.ObserveRejections(m)

	a := &App{DB: pool, BotAPI: botAPI, Bus: bus}
	a.unsubscribe = append(a.unsubscribe, weekly.Attach(bus), m.Attach(bus))
	if cfg.FeatureAnnounceEnabled && cfg.CommunityChatID != 0 {
		announcer := bot.NewAnnouncer(cfg.CommunityChatID, memberService, msg)
		a.unsubscribe = append(a.unsubscribe, announcer.Attach(bus))
	}

	// === 5. Обработчики ===
	handlers := bot.Handlers{
		Members: members.NewHandler(memberService),
		Boosts:  boosts.NewHandler(coordinator, daily, weekly, catalog, cal, msg),
		Streak:  streak.NewHandler(streakService, msg),
		Economy: economy.NewHandler(economyService, msg),
		Admin:   admin.NewHandler(adminService, memberService, economyService, daily, catalog, cal, msg),
	}

	// === 6. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.CommunityChatID, memberService)

	// === 7. Собираем бота ===
	a.Bot = bot.New(botAPI, cfg, msg, memberService, handlers, chatFilter)

	// === 8. Планировщик задач ===
	reminderSpec := ""
	if cfg.FeatureRemindersEnabled {
		reminderSpec = cfg.StreakReminderCron
	}
	a.Scheduler = jobs.NewScheduler(cal, weekly, streakService, reminderSpec, a.Bot.SendMessageToUser)

	// === 9. HTTP API ===
	if cfg.FeatureHTTPEnabled {
		a.HTTP = httpapi.NewServer(httpapi.Deps{
			Catalog:     catalog,
			Coordinator: coordinator,
			Daily:       daily,
			Weekly:      weekly,
			Streaks:     streakService,
			Calendar:    cal,
			Metrics:     m,
			Token:       cfg.HTTPAPIToken,
		})
	}

	return a, nil
}

// Close отписывает слушателей шины и закрывает пул.
func (a *App) Close() {
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.DB.Close()
}
