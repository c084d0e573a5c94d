package models

import "time"

// User: müşteri paneli kullanıcısı.
// TC/VKN hiçbir zaman açık halde saklanmaz, sadece SHA-256 hash'i tutulur.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	TCVKNHash    string `gorm:"size:64;index;not null"` // SHA-256 hex
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
