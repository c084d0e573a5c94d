package declaration

import (
	"regexp"
	"strconv"
	"strings"
)

var nonDecimalRe = regexp.MustCompile(`[^\d.,]`)

// ParseDecimal: Türk para formatındaki string'i float'a çevirir.
// "1.234.567,89" -> 1234567.89, "15.727.732,74" -> 15727732.74
// Noktalar binlik ayracı, virgül ondalık ayracı. Parse edilemeyen
// girdi için hata yerine 0 döner; beyannamede bulunamayan alanlar
// zaten 0 kabul edilir.
func ParseDecimal(s string) float64 {
	clean := nonDecimalRe.ReplaceAllString(s, "")
	if clean == "" {
		return 0
	}

	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}
