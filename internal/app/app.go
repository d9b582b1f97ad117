package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wedding-site/internal/config"
	"wedding-site/internal/database"
	"wedding-site/internal/domain"
	"wedding-site/internal/handler"
	"wedding-site/internal/mailer"
	"wedding-site/internal/repository"
	"wedding-site/internal/seed"
	"wedding-site/internal/service"
	"wedding-site/internal/storage"
)

// Repositories groups the SQLite repositories
type Repositories struct {
	RSVPs     *repository.RSVPRepository
	Guestbook *repository.GuestbookRepository
	FAQs      *repository.FAQRepository
	Settings  *repository.SettingsRepository
	Users     *repository.UserRepository
}

// App is the wired application shared by the server and the CLI
type App struct {
	Config       *config.Config
	Logger       domain.Logger
	DB           *database.DB
	Storage      domain.RateLimiterStorage
	Repositories Repositories
	Services     handler.Services
}

// New opens the database and the counter store and builds every service.
// Close must be called to release them.
func New(ctx context.Context, cfg *config.Config, log domain.Logger) (*App, error) {
	db, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	factory := storage.NewStorageFactory()
	store, err := factory.CreateStorage(storage.BuildStorageConfig(
		cfg.StorageType,
		cfg.RedisHost,
		cfg.RedisPort,
		cfg.RedisPassword,
		cfg.RedisDB,
		cfg.CleanupInterval,
	), log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create rate limit storage: %w", err)
	}

	repos := Repositories{
		RSVPs:     repository.NewRSVPRepository(db.DB),
		Guestbook: repository.NewGuestbookRepository(db.DB),
		FAQs:      repository.NewFAQRepository(db.DB),
		Settings:  repository.NewSettingsRepository(db.DB),
		Users:     repository.NewUserRepository(db.DB),
	}

	mail, err := newMailer(cfg, log)
	if err != nil {
		store.Close()
		db.Close()
		return nil, err
	}

	tokens := service.NewEditTokenService(repos.RSVPs, cfg.EditTokenTTL, log)

	return &App{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		Storage:      store,
		Repositories: repos,
		Services: handler.Services{
			RateLimiter: service.NewRateLimiterService(store, cfg.RateLimitRules(), log),
			EditTokens:  tokens,
			RSVPs:       service.NewRSVPService(repos.RSVPs, tokens, mail, log, cfg.IPHashSalt),
			Guestbook:   service.NewGuestbookService(repos.Guestbook, log, cfg.IPHashSalt),
			FAQs:        service.NewFAQService(repos.FAQs, log),
			Settings:    service.NewSettingsService(repos.Settings, log, cfg.SettingsCacheTTL),
			Auth:        service.NewAuthService(repos.Users, cfg.SessionSecret, cfg.SessionTTL, log),
			Dashboard:   service.NewDashboardService(repos.RSVPs, repos.Guestbook, repos.Settings),
		},
	}, nil
}

// Handlers builds the HTTP layer. The session cookie is marked Secure when
// the public site is served over HTTPS.
func (a *App) Handlers() *handler.Handlers {
	secure := strings.HasPrefix(a.Config.SiteURL, "https://")
	return handler.NewHandlers(a.Services, a.DB, a.Storage, a.Logger, secure)
}

// Seed loads the configured seed file, or the embedded default, and applies it
func (a *App) Seed(ctx context.Context) (*seed.Result, error) {
	data, err := seed.Load(a.Config.SeedFile)
	if err != nil {
		return nil, err
	}
	seeder := seed.NewSeeder(a.Repositories.Users, a.Repositories.Settings, a.Repositories.FAQs, a.Logger)
	return seeder.Run(ctx, data)
}

// Close releases the counter store and the database
func (a *App) Close() error {
	return errors.Join(a.Storage.Close(), a.DB.Close())
}

func newMailer(cfg *config.Config, log domain.Logger) (domain.Mailer, error) {
	if !cfg.SMTPEnabled() {
		log.Warn("SMTP not configured, confirmation emails will only be logged", nil)
		return mailer.NewLogMailer(cfg.SiteURL, log), nil
	}

	m, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		TLS:      cfg.SMTPTLS,
		From:     cfg.EmailFrom,
		SiteURL:  cfg.SiteURL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}
	return m, nil
}
