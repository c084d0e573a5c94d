package declaration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Ay numarası -> Türkçe ay adı
var monthNames = map[string]string{
	"01": "Ocak", "02": "Şubat", "03": "Mart", "04": "Nisan",
	"05": "Mayıs", "06": "Haziran", "07": "Temmuz", "08": "Ağustos",
	"09": "Eylül", "10": "Ekim", "11": "Kasım", "12": "Aralık",
}

// Küçük harf ay adları, takvim sırasında. Metin taramaları bu sırayla
// dener ki aynı belge her çalıştırmada aynı ayı versin.
var monthNamesOrdered = []string{
	"ocak", "şubat", "mart", "nisan", "mayıs", "haziran",
	"temmuz", "ağustos", "eylül", "ekim", "kasım", "aralık",
}

// Küçük harf ay adı -> ay numarası (parse yönü)
var monthNumbers = map[string]string{
	"ocak": "01", "şubat": "02", "mart": "03", "nisan": "04",
	"mayıs": "05", "haziran": "06", "temmuz": "07", "ağustos": "08",
	"eylül": "09", "ekim": "10", "kasım": "11", "aralık": "12",
}

var periodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod: dönem token'ı "YYYY-MM" kalıbına uyuyor mu?
func ValidPeriod(period string) bool {
	return periodRe.MatchString(period)
}

// FormatPeriodLabel: "2025-11" -> "Kasım 2025".
// Tanınmayan ay kodu için token olduğu gibi döner (bozuk veri
// görüntülemede patlamasın).
func FormatPeriodLabel(period string) string {
	parts := strings.Split(period, "-")
	if len(parts) != 2 {
		return period
	}
	name, ok := monthNames[parts[1]]
	if !ok {
		return period
	}
	return name + " " + parts[0]
}

// PreviousPeriod: önceki dönemi hesaplar.
// "2025-11" -> "2025-10", "2025-01" -> "2024-12"
func PreviousPeriod(period string) string {
	parts := strings.Split(period, "-")
	if len(parts) != 2 {
		return period
	}
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])

	if month == 1 {
		return fmt.Sprintf("%d-12", year-1)
	}
	return fmt.Sprintf("%d-%02d", year, month-1)
}

// monthNumberFromName: "Kasım" / "KASIM" / "kasım" -> "11", yoksa "".
// Türkçe I/ı dönüşümü için ToLowerSpecial şart; strings.ToLower
// "KASIM"ı "kasim" yapar ve eşleşme kaçar.
func monthNumberFromName(name string) string {
	return monthNumbers[lowerTurkish(strings.TrimSpace(name))]
}

func lowerTurkish(s string) string {
	return strings.ToLowerSpecial(unicode.TurkishCase, s)
}
