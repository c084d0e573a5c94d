package declaration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"binlik ayraçlı", "1.234.567,89", 1234567.89},
		{"kuyumcu cirosu", "15.727.732,74", 15727732.74},
		{"küçük tutar", "26.572,80", 26572.80},
		{"ayraçsız", "500,00", 500.00},
		{"tam sayı", "1500", 1500},
		{"para birimli", "1.500,00 TL", 1500.00},
		{"boş", "", 0},
		{"sadece harf", "abc", 0},
		{"sadece ayraç", ".,", 0},
		{"boşluklu", "  213.894,65  ", 213894.65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDecimal(tt.in))
		})
	}
}

func TestParseDecimalNeverPanics(t *testing.T) {
	for _, s := range []string{"", "abc", ",,,", "1.2.3,4,5", "TL₺%", "\x00\xff"} {
		assert.NotPanics(t, func() { ParseDecimal(s) }, "girdi: %q", s)
	}
}
