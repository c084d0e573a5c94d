package models

import "time"

// FinancialStatement: KDV-1 beyannamesinden çıkarılan dönemlik mali veri.
// Kayıt anahtarı (tc_vkn_hash, period) ikilisidir; aynı döneme yeniden
// yükleme yapılırsa kayıt güncellenir.
type FinancialStatement struct {
	ID        uint   `gorm:"primaryKey"`
	TCVKNHash string `gorm:"size:64;not null;uniqueIndex:idx_statement_hash_period"`
	Period    string `gorm:"size:7;not null;uniqueIndex:idx_statement_hash_period"` // "YYYY-MM"

	Ciro        float64 `gorm:"default:0"` // Matrah Toplamı + Özel Matrah Dahil Olmayan Bedel
	Gider       float64 `gorm:"default:0"` // Alış bedelleri + istisna alışları
	DevredenKDV float64 `gorm:"default:0"` // Sonraki döneme devreden KDV
	POSTahsilat float64 `gorm:"default:0"` // Kredi kartı ile tahsil edilen

	PDFFilename string `gorm:"size:255"`
	ProcessedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
