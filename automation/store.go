package automation

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ziraweb/models"
)

// Store provides the pipeline's persistence needs behind an interface so
// tests can substitute in-memory fakes for the database.
type Store interface {
	ActiveRules(ctx context.Context) ([]models.AutomationRule, error)
	Template(ctx context.Context, id uint) (*models.EmailTemplate, error)

	// ActiveSenders returns active senders with defaults first (lowest id
	// wins among multiple defaults).
	ActiveSenders(ctx context.Context) ([]models.EmailSender, error)

	// Setting reads a value from the settings store; ok is false when the
	// key is absent.
	Setting(ctx context.Context, key string) (value string, ok bool)

	CreateEvent(ctx context.Context, ev *models.EmailEvent) error
	UpdateEvent(ctx context.Context, ev *models.EmailEvent) error

	// MarkRuleSent bumps the rule's sent counter and last-sent timestamp.
	MarkRuleSent(ctx context.Context, ruleID uint) error
}

// GormStore is the production Store backed by the service database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ActiveRules(ctx context.Context) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&rules).Error
	return rules, err
}

func (s *GormStore) Template(ctx context.Context, id uint) (*models.EmailTemplate, error) {
	var tpl models.EmailTemplate
	if err := s.db.WithContext(ctx).First(&tpl, id).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (s *GormStore) ActiveSenders(ctx context.Context) ([]models.EmailSender, error) {
	var senders []models.EmailSender
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("is_default DESC, id ASC").
		Find(&senders).Error
	return senders, err
}

func (s *GormStore) Setting(ctx context.Context, key string) (string, bool) {
	var setting models.SiteSetting
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return "", false
	}
	return setting.Value, true
}

func (s *GormStore) CreateEvent(ctx context.Context, ev *models.EmailEvent) error {
	return s.db.WithContext(ctx).Create(ev).Error
}

func (s *GormStore) UpdateEvent(ctx context.Context, ev *models.EmailEvent) error {
	return s.db.WithContext(ctx).Save(ev).Error
}

func (s *GormStore) MarkRuleSent(ctx context.Context, ruleID uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.AutomationRule{}).
		Where("id = ?", ruleID).
		Updates(map[string]interface{}{
			"sent_count":   gorm.Expr("sent_count + ?", 1),
			"last_sent_at": now,
		}).Error
}
