package accounting

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

var (
	ErrSheetEmpty         = errors.New("Excel boş")
	ErrNoTCVKNColumn      = errors.New("TC/VKN sütunu bulunamadı")
	ErrNoMonthlyFeeColumn = errors.New("Aylık ücret sütunu bulunamadı")
)

// Ay sütunları başlıkta bu sırayla tam adla aranır (index 0 = Ocak)
var monthHeaders = []string{
	"OCAK", "ŞUBAT", "MART", "NİSAN", "MAYIS", "HAZİRAN",
	"TEMMUZ", "AĞUSTOS", "EYLÜL", "EKİM", "KASIM", "ARALIK",
}

var headerYearRe = regexp.MustCompile(`(\d{4})`)

// FeeRow: muhasebe ücret tablosundan bir mükellef satırı.
// Months[0]=Ocak .. Months[11]=Aralık; boş hücre nil kalır
// (ödenmemiş ile 0 TL ödenmiş ayrımı korunur).
type FeeRow struct {
	TCVKN      string
	MonthlyFee float64
	Months     [12]*float64
}

// FeeSheet: başlıktan keşfedilen yıl ve mükellef satırları
type FeeSheet struct {
	Year int
	Rows []FeeRow
}

func upperTurkish(s string) string {
	return strings.ToUpperSpecial(unicode.TurkishCase, strings.TrimSpace(s))
}

// ParseFeeSheet: muhasebe ücret Excel'inin ilk sayfasını okur. Sütunlar
// sabit pozisyonda değil, başlık satırından keşfedilir: TC/VKN sütunu
// adında "TC" veya "VKN" geçen; ücret sütunu "2026 (AYLIK)" kalıbında
// olup yılı da taşıyan; ay sütunları tam ay adıyla eşleşen.
func ParseFeeSheet(r io.Reader) (*FeeSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("Excel dosyası okunamadı: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrSheetEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("satırlar okunamadı: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrSheetEmpty
	}

	tcVKNIndex := -1
	monthlyFeeIndex := -1
	year := time.Now().Year()
	monthIndex := map[int]int{} // ay (0..11) -> sütun

	for idx, header := range rows[0] {
		h := upperTurkish(header)
		if h == "" {
			continue
		}

		if strings.Contains(h, "TC") || strings.Contains(h, "VKN") {
			tcVKNIndex = idx
		}
		if strings.Contains(h, "AYLIK") {
			monthlyFeeIndex = idx
			if m := headerYearRe.FindStringSubmatch(h); m != nil {
				year, _ = strconv.Atoi(m[1])
			}
		}
		for ay, name := range monthHeaders {
			if h == name {
				monthIndex[ay] = idx
			}
		}
	}

	if tcVKNIndex == -1 {
		return nil, ErrNoTCVKNColumn
	}
	if monthlyFeeIndex == -1 {
		return nil, ErrNoMonthlyFeeColumn
	}

	sheet := &FeeSheet{Year: year}
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		tcVKN := strings.TrimSpace(cell(row, tcVKNIndex))
		if tcVKN == "" {
			continue
		}

		fr := FeeRow{TCVKN: tcVKN}
		fr.MonthlyFee = parseCellFloat(cell(row, monthlyFeeIndex))

		for ay, idx := range monthIndex {
			raw := strings.TrimSpace(cell(row, idx))
			if raw == "" {
				continue
			}
			v := parseCellFloat(raw)
			fr.Months[ay] = &v
		}

		sheet.Rows = append(sheet.Rows, fr)
	}

	return sheet, nil
}

// cell: kısa satırlarda indeks taşmasın
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseCellFloat: "1500", "1500.50" veya "1.500,50"; bozuk hücre 0
func parseCellFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	// Türkçe biçimlenmiş hücre
	clean := strings.ReplaceAll(s, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	if v, err := strconv.ParseFloat(clean, 64); err == nil {
		return v
	}
	return 0
}
