package models

import "time"

// AccountingFee: muhasebe ücret takibi, Excel'den yüklenir.
// Ay kolonları nullable: NULL = o ay için veri girilmemiş, 0 = ödenmemiş.
type AccountingFee struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    *uint  `gorm:"index"` // eşleşen kullanıcı yoksa NULL (geriye uyumluluk)
	TCVKNHash string `gorm:"size:64;not null;uniqueIndex:idx_fee_hash_year"`
	Year      int    `gorm:"not null;uniqueIndex:idx_fee_hash_year"`

	MonthlyFee float64 `gorm:"default:0"`

	JanPaid *float64
	FebPaid *float64
	MarPaid *float64
	AprPaid *float64
	MayPaid *float64
	JunPaid *float64
	JulPaid *float64
	AugPaid *float64
	SepPaid *float64
	OctPaid *float64
	NovPaid *float64
	DecPaid *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}
