package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"wedding-site/internal/domain"
	"wedding-site/internal/service"
)

//go:embed default.yaml
var defaultSeed []byte

// Data is the content of a seed file
type Data struct {
	Admin    AdminSeed     `yaml:"admin"`
	Settings []SettingSeed `yaml:"settings"`
	FAQs     []FAQSeed     `yaml:"faqs"`
}

type AdminSeed struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type SettingSeed struct {
	Key         string `yaml:"key"`
	Value       string `yaml:"value"`
	Description string `yaml:"description"`
}

type FAQSeed struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Order    int    `yaml:"order"`
}

// Load reads the seed file at path, or the embedded default when path is empty
func Load(path string) (*Data, error) {
	if path == "" {
		return Parse(defaultSeed)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates seed YAML
func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	return &data, nil
}

// Validate checks the seed before anything is written
func (d *Data) Validate() error {
	if d.Admin.Email != "" && d.Admin.Password == "" {
		return errors.New("admin password is required when an admin email is set")
	}

	seen := make(map[string]bool, len(d.Settings))
	for i, s := range d.Settings {
		if strings.TrimSpace(s.Key) == "" {
			return fmt.Errorf("settings[%d]: key is required", i)
		}
		if seen[s.Key] {
			return fmt.Errorf("settings[%d]: duplicate key %q", i, s.Key)
		}
		seen[s.Key] = true
	}

	for i, f := range d.FAQs {
		if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
			return fmt.Errorf("faqs[%d]: question and answer are required", i)
		}
	}
	return nil
}

// Result summarises what a seeding run wrote
type Result struct {
	AdminEmail   string
	AdminCreated bool
	Settings     int
	FAQs         int
}

// Seeder writes seed data into the repositories
type Seeder struct {
	users    domain.UserRepository
	settings domain.SettingsRepository
	faqs     domain.FAQRepository
	logger   domain.Logger
	now      func() time.Time
}

func NewSeeder(users domain.UserRepository, settings domain.SettingsRepository, faqs domain.FAQRepository, logger domain.Logger) *Seeder {
	return &Seeder{
		users:    users,
		settings: settings,
		faqs:     faqs,
		logger:   logger,
		now:      time.Now,
	}
}

// Run creates the admin account when missing, upserts every setting with its
// description and replaces the FAQ list. An existing admin keeps its password.
func (s *Seeder) Run(ctx context.Context, data *Data) (*Result, error) {
	result := &Result{}
	now := s.now().UTC()

	if data.Admin.Email != "" {
		created, err := s.seedAdmin(ctx, data.Admin, now)
		if err != nil {
			return nil, err
		}
		result.AdminEmail = strings.ToLower(strings.TrimSpace(data.Admin.Email))
		result.AdminCreated = created
	}

	for _, setting := range data.Settings {
		err := s.settings.UpsertWithDescription(ctx, &domain.Setting{
			Key:         setting.Key,
			Value:       setting.Value,
			Description: setting.Description,
		})
		if err != nil {
			return nil, err
		}
		result.Settings++
	}

	if data.FAQs != nil {
		faqs := make([]*domain.FAQ, 0, len(data.FAQs))
		for _, f := range data.FAQs {
			faqs = append(faqs, &domain.FAQ{
				ID:        uuid.NewString(),
				Question:  f.Question,
				Answer:    f.Answer,
				Order:     f.Order,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if err := s.faqs.ReplaceAll(ctx, faqs); err != nil {
			return nil, fmt.Errorf("failed to replace faqs: %w", err)
		}
		result.FAQs = len(faqs)
	}

	s.logger.WithContext(ctx).Info("Seed completed", map[string]interface{}{
		"admin":         result.AdminEmail,
		"admin_created": result.AdminCreated,
		"settings":      result.Settings,
		"faqs":          result.FAQs,
	})

	return result, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, admin AdminSeed, now time.Time) (bool, error) {
	_, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(admin.Email)))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	user, err := service.NewAdminUser(admin.Email, admin.Password, admin.Name, now)
	if err != nil {
		return false, err
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}
