package domain

import "time"

// UserProfile is a persisted user contact record
type UserProfile struct {
	ID               uint   `json:"-" gorm:"primaryKey"`
	TelegramID       int64  `json:"telegram_id" gorm:"uniqueIndex;not null"`
	Username         string `json:"username,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	LanguageCode     string `json:"language_code,omitempty"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	Email            string `json:"email,omitempty"`
	ConsentMarketing bool   `json:"consent_marketing" gorm:"default:false"`
	TotalDownloads   int    `json:"total_downloads" gorm:"default:0"`
	PreferredFormat  string `json:"preferred_format,omitempty"`

	RegisteredAt time.Time `json:"registered_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

// UserStats represents aggregate user statistics
type UserStats struct {
	Total          int64 `json:"total"`
	MarketingOptIn int64 `json:"marketing_opt_in"`
	TotalDownloads int64 `json:"total_downloads"`
}
