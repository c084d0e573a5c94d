package accounting

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestParseFeeSheet(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		{"ADI SOYADI", "TC/VKN", "2026 (AYLIK)", "OCAK", "ŞUBAT", "ARALIK"},
		{"Ahmet Yılmaz", "12345678901", 1500, 1500, "", 1500},
		{"Örnek Ltd", "1234567890", 2000, "", 2000, ""},
	})

	sheet, err := ParseFeeSheet(r)
	require.NoError(t, err)

	assert.Equal(t, 2026, sheet.Year)
	require.Len(t, sheet.Rows, 2)

	first := sheet.Rows[0]
	assert.Equal(t, "12345678901", first.TCVKN)
	assert.Equal(t, 1500.0, first.MonthlyFee)
	require.NotNil(t, first.Months[0])
	assert.Equal(t, 1500.0, *first.Months[0])
	assert.Nil(t, first.Months[1]) // boş hücre nil kalır
	require.NotNil(t, first.Months[11])
	assert.Equal(t, 1500.0, *first.Months[11])

	second := sheet.Rows[1]
	assert.Equal(t, "1234567890", second.TCVKN)
	assert.Equal(t, 2000.0, second.MonthlyFee)
	assert.Nil(t, second.Months[0])
	require.NotNil(t, second.Months[1])
	assert.Equal(t, 2000.0, *second.Months[1])
}

func TestParseFeeSheetSkipsBlankTCVKN(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		{"TC KİMLİK NO", "2025 (AYLIK)", "OCAK"},
		{"", 1500, 1500},
		{"12345678901", 1500, 1500},
	})

	sheet, err := ParseFeeSheet(r)
	require.NoError(t, err)
	assert.Equal(t, 2025, sheet.Year)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "12345678901", sheet.Rows[0].TCVKN)
}

func TestParseFeeSheetLowercaseHeaders(t *testing.T) {
	// Başlık küçük harfle gelse de Türkçe büyütmeyle eşleşir
	r := buildSheet(t, [][]interface{}{
		{"tc/vkn", "2025 (aylık)", "nisan"},
		{"12345678901", 1000, 750},
	})

	sheet, err := ParseFeeSheet(r)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	require.NotNil(t, sheet.Rows[0].Months[3])
	assert.Equal(t, 750.0, *sheet.Rows[0].Months[3])
}

func TestParseFeeSheetMissingColumns(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		{"ADI SOYADI", "2025 (AYLIK)"},
		{"Ahmet", 1500},
	})
	_, err := ParseFeeSheet(r)
	assert.ErrorIs(t, err, ErrNoTCVKNColumn)

	r = buildSheet(t, [][]interface{}{
		{"TC/VKN", "OCAK"},
		{"12345678901", 1500},
	})
	_, err = ParseFeeSheet(r)
	assert.ErrorIs(t, err, ErrNoMonthlyFeeColumn)
}

func TestParseFeeSheetEmpty(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		{"TC/VKN", "2025 (AYLIK)"},
	})
	_, err := ParseFeeSheet(r)
	assert.ErrorIs(t, err, ErrSheetEmpty)
}

func TestParseCellFloat(t *testing.T) {
	assert.Equal(t, 1500.0, parseCellFloat("1500"))
	assert.Equal(t, 1500.5, parseCellFloat("1500.5"))
	assert.Equal(t, 1500.5, parseCellFloat("1.500,50"))
	assert.Equal(t, 0.0, parseCellFloat(""))
	assert.Equal(t, 0.0, parseCellFloat("yok"))
}
