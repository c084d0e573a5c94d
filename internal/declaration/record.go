package declaration

import (
	"fmt"
	"regexp"
	"strings"
)

// KDV oranları: alış bedelleri bu oranlara göre ayrı satırlarda beyan edilir.
// Uzun önekler önce denenmeli, yoksa "1" hem "10" hem "18" içinde eşleşir.
var KDVRates = []int{20, 18, 10, 8, 1}

// RawFields: tek bir beyannameden, hesaplama yapılmadan okunan ham alanlar.
// Her extractor stratejisi aynı şekli üretir; toplama işlemleri Assembler'da.
type RawFields struct {
	TCVKN string `json:"tc_vkn"` // mükellefin kimliği, mali müşavirin DEĞİL
	Year  string `json:"yil"`
	Month string `json:"ay"` // "01".."12"

	MatrahToplami    float64 `json:"matrah_toplami"`
	OzelMatrahBedeli float64 `json:"ozel_matrah_bedeli"` // özel matraha tabi işlemlerde matraha dahil olmayan bedel

	AlisBedelleri map[int]float64 `json:"alis_bedelleri"` // KDV oranı -> alınan mal ve hizmete ait bedel
	IstisnaAlis   float64         `json:"istisna_alis"`   // KDV ödenmeksizin temin edilen mal bedeli

	DevredenKDV float64 `json:"devreden_kdv"`
	POSTahsilat float64 `json:"pos_tahsilat"`

	// Güvenilmez eşleşme uyarıları: pozisyon tahminiyle bulunan değerler
	// burada işaretlenir ki operatör sonucu kontrol etmeden güvenmesin.
	Notes []string `json:"notes,omitempty"`
}

// Note: ham alan setine belirsizlik uyarısı ekler.
func (r *RawFields) Note(format string, args ...interface{}) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// Period: yıl + ay'dan dönem token'ı üretir, ikisinden biri eksikse "".
func (r *RawFields) Period() string {
	if r.Year == "" || r.Month == "" {
		return ""
	}
	return r.Year + "-" + r.Month
}

// Record: bir beyannameden çıkarılan nihai mali kayıt.
type Record struct {
	TCVKN       string  `json:"tc"`
	Period      string  `json:"period"`     // "YYYY-MM"
	PeriodLabel string  `json:"periodName"` // "Kasım 2025"
	Ciro        float64 `json:"ciro"`       // matrah toplamı + özel matrah bedeli
	Gider       float64 `json:"gider"`      // alış bedelleri + istisna alışları
	NetKalan    float64 `json:"netKalan"`   // ciro - gider, negatif olabilir
	DevredenKDV float64 `json:"devredenKDV"`
	POSTahsilat float64 `json:"pos"`
}

var tcVKNLenRe = regexp.MustCompile(`^\d{10}$|^\d{11}$`)

// Validate: kaydın tüm kurallarını kontrol eder ve ihlal edilen HER
// kuralı tek bir hata içinde listeler (sadece ilkini değil).
func (rec *Record) Validate() error {
	var violations []string

	if !tcVKNLenRe.MatchString(rec.TCVKN) {
		violations = append(violations, fmt.Sprintf("TC/VKN 10 veya 11 haneli olmalı: %q", rec.TCVKN))
	}
	if !ValidPeriod(rec.Period) {
		violations = append(violations, fmt.Sprintf("dönem 'YYYY-MM' formatında olmalı: %q", rec.Period))
	}
	if rec.Ciro < 0 {
		violations = append(violations, fmt.Sprintf("ciro negatif olamaz: %v", rec.Ciro))
	}
	if rec.Gider < 0 {
		violations = append(violations, fmt.Sprintf("gider negatif olamaz: %v", rec.Gider))
	}
	if rec.DevredenKDV < 0 {
		violations = append(violations, fmt.Sprintf("devreden KDV negatif olamaz: %v", rec.DevredenKDV))
	}
	if rec.POSTahsilat < 0 {
		violations = append(violations, fmt.Sprintf("POS tahsilat negatif olamaz: %v", rec.POSTahsilat))
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// MissingFieldError: TC/VKN veya dönem hiçbir yöntemle bulunamadı.
// Belge düzeltilmeden tekrar denemenin anlamı yok.
type MissingFieldError struct {
	Field string // "TC/VKN" veya "dönem"
}

func (e *MissingFieldError) Error() string {
	return e.Field + " bulunamadı"
}

// ValidationError: kayıt bir veya daha fazla doğrulama kuralını ihlal etti.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "geçersiz kayıt: " + strings.Join(e.Violations, "; ")
}

// ProviderError: harici model sağlayıcısından dönen hata (ağ, HTTP,
// parse edilemeyen cevap). Çağıran tarafça tekrar denenebilir.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "sağlayıcı hatası: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
