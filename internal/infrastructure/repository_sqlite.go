package infrastructure

import (
	"fmt"
	"time"

	"github.com/yourusername/yt-courier-go/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteUserRepository implements domain.UserRepository using SQLite
type SQLiteUserRepository struct {
	db *gorm.DB
}

// NewSQLiteUserRepository creates a new SQLite user repository
func NewSQLiteUserRepository(dbPath string) (*SQLiteUserRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.UserProfile{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteUserRepository{db: db}, nil
}

// SaveContact upserts profile fields from a message sender. The
// registration timestamp is preserved on conflict.
func (r *SQLiteUserRepository) SaveContact(contact domain.ContactSnapshot) error {
	now := time.Now()
	profile := domain.UserProfile{
		TelegramID:   contact.TelegramID,
		Username:     contact.Username,
		FirstName:    contact.FirstName,
		LastName:     contact.LastName,
		LanguageCode: contact.LanguageCode,
		RegisteredAt: now,
		LastSeenAt:   now,
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "first_name", "last_name", "language_code", "last_seen_at",
		}),
	}).Create(&profile).Error
}

// SetConsent records the marketing consent decision and, when shared,
// the phone number
func (r *SQLiteUserRepository) SetConsent(telegramID int64, consent bool, phone string) error {
	updates := map[string]interface{}{
		"consent_marketing": consent,
		"last_seen_at":      time.Now(),
	}
	if phone != "" {
		updates["phone_number"] = phone
	}

	return r.db.Model(&domain.UserProfile{}).
		Where("telegram_id = ?", telegramID).
		Updates(updates).Error
}

// SetPreferredFormat records the user's last chosen format
func (r *SQLiteUserRepository) SetPreferredFormat(telegramID int64, format domain.Format) error {
	return r.db.Model(&domain.UserProfile{}).
		Where("telegram_id = ?", telegramID).
		Update("preferred_format", string(format)).Error
}

// IncrementDownloads bumps the delivered-download counter
func (r *SQLiteUserRepository) IncrementDownloads(telegramID int64) error {
	return r.db.Model(&domain.UserProfile{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]interface{}{
			"total_downloads": gorm.Expr("total_downloads + 1"),
			"last_seen_at":    time.Now(),
		}).Error
}

// MarketingUsers lists users opted in for marketing with at least
// minDownloads delivered downloads
func (r *SQLiteUserRepository) MarketingUsers(minDownloads int) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&domain.UserProfile{}).
		Where("consent_marketing = ? AND total_downloads >= ?", true, minDownloads).
		Pluck("telegram_id", &ids).Error
	return ids, err
}

// Stats returns aggregate user statistics
func (r *SQLiteUserRepository) Stats() (*domain.UserStats, error) {
	stats := &domain.UserStats{}

	if err := r.db.Model(&domain.UserProfile{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&domain.UserProfile{}).
		Where("consent_marketing = ?", true).
		Count(&stats.MarketingOptIn).Error; err != nil {
		return nil, err
	}

	var result struct{ Total int64 }
	if err := r.db.Model(&domain.UserProfile{}).
		Select("coalesce(sum(total_downloads), 0) as total").
		Scan(&result).Error; err != nil {
		return nil, err
	}
	stats.TotalDownloads = result.Total

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteUserRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
