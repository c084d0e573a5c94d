package declaration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Standart bir beyannamenin konumlu fragment temsili. Y aşağı doğru büyür.
func sampleFragments() []Fragment {
	return []Fragment{
		{Text: "KATMA DEĞER VERGİSİ BEYANNAMESİ", X: 100, Y: 20, Page: 1},
		{Text: "Yıl", X: 50, Y: 60, Page: 1},
		{Text: "2025", X: 150, Y: 60, Page: 1},
		{Text: "Ay", X: 50, Y: 75, Page: 1},
		{Text: "Kasım", X: 150, Y: 75, Page: 1},
		{Text: "T.C. Kimlik No", X: 50, Y: 95, Page: 1},
		{Text: "12345678901", X: 180, Y: 95, Page: 1},
		{Text: "Matrah Toplamı", X: 50, Y: 200, Page: 1},
		{Text: "213.894,65", X: 300, Y: 200, Page: 1},
		{Text: "Alınan Mal ve Hizmete Ait Bedel", X: 50, Y: 300, Page: 1},
		{Text: "10", X: 50, Y: 320, Page: 1},
		{Text: "26.572,80", X: 150, Y: 320, Page: 1},
		{Text: "2.657,28", X: 300, Y: 320, Page: 1},
		{Text: "20", X: 50, Y: 340, Page: 1},
		{Text: "233.220,55", X: 150, Y: 340, Page: 1},
		{Text: "46.644,11", X: 300, Y: 340, Page: 1},
		{Text: "Tecil Edilecek Katma Değer Vergisi", X: 50, Y: 360, Page: 1},
		{Text: "Sonraki Döneme Devreden Katma Değer Vergisi", X: 50, Y: 400, Page: 1},
		{Text: "18.500,25", X: 350, Y: 400, Page: 1},
		{Text: "Kredi Kartı İle Tahsil Edilen", X: 50, Y: 430, Page: 1},
		{Text: "45.000,00", X: 350, Y: 430, Page: 1},
		{Text: "BEYANNAMEYİ DÜZENLEYEN", X: 50, Y: 500, Page: 1},
		{Text: "98765432109", X: 180, Y: 520, Page: 1},
	}
}

func extractLayout(t *testing.T, frags []Fragment) *RawFields {
	t.Helper()
	rf, err := NewLayoutExtractor().Extract(context.Background(), Document{Fragments: frags})
	require.NoError(t, err)
	return rf
}

func TestLayoutFullDeclaration(t *testing.T) {
	rf := extractLayout(t, sampleFragments())

	assert.Equal(t, "12345678901", rf.TCVKN)
	assert.Equal(t, "2025", rf.Year)
	assert.Equal(t, "11", rf.Month)
	assert.Equal(t, 213894.65, rf.MatrahToplami)
	assert.Equal(t, 26572.80, rf.AlisBedelleri[10])
	assert.Equal(t, 233220.55, rf.AlisBedelleri[20])
	assert.Equal(t, 18500.25, rf.DevredenKDV)
	assert.Equal(t, 45000.00, rf.POSTahsilat)
}

func TestLayoutTCVKNAbovePreparer(t *testing.T) {
	// Müşavirin numarası DÜZENLEYEN anchor'ının altında, alınmamalı
	rf := extractLayout(t, sampleFragments())
	assert.Equal(t, "12345678901", rf.TCVKN)
	assert.NotEqual(t, "98765432109", rf.TCVKN)
}

func TestLayoutScrambledStreamOrder(t *testing.T) {
	// Metin akış sırası karışık olsa da konum eşleşmesi etkilenmez
	frags := sampleFragments()
	for i, j := 0, len(frags)-1; i < j; i, j = i+1, j-1 {
		frags[i], frags[j] = frags[j], frags[i]
	}
	// TC araması orijinal sırayla tarar, mükellef fragment'ı müşavirinkinden
	// önce gelmeli; geri kalan alanlar sıradan bağımsız
	rf := extractLayout(t, frags)
	assert.Equal(t, 213894.65, rf.MatrahToplami)
	assert.Equal(t, 26572.80, rf.AlisBedelleri[10])
	assert.Equal(t, 18500.25, rf.DevredenKDV)
}

func TestLayoutValueBelowLabel(t *testing.T) {
	frags := []Fragment{
		{Text: "T.C. Kimlik No 12345678901", X: 50, Y: 20, Page: 1},
		{Text: "Yıl", X: 50, Y: 40, Page: 1},
		{Text: "2025", X: 55, Y: 55, Page: 1},
		{Text: "Ay", X: 50, Y: 70, Page: 1},
		{Text: "Kasım", X: 55, Y: 85, Page: 1},
		{Text: "Matrah Toplamı", X: 50, Y: 120, Page: 1},
		{Text: "213.894,65", X: 60, Y: 135, Page: 1},
	}
	rf := extractLayout(t, frags)

	assert.Equal(t, "2025", rf.Year)
	assert.Equal(t, "11", rf.Month)
	assert.Equal(t, 213894.65, rf.MatrahToplami)
}

func TestLayoutExemptionRowLastOfThree(t *testing.T) {
	// Satırda en az üç sayı varsa kolon düzeni
	// kategori / bedel / tevkif edilen / istisna tutarı kabul edilir
	frags := append(sampleFragments(),
		Fragment{Text: "325 - Yem Teslimleri", X: 50, Y: 450, Page: 1},
		Fragment{Text: "165.279,00", X: 200, Y: 450, Page: 1},
		Fragment{Text: "0,00", X: 300, Y: 450, Page: 1},
		Fragment{Text: "165.279,00", X: 400, Y: 450, Page: 1},
	)
	rf := extractLayout(t, frags)
	assert.Equal(t, 165279.00, rf.IstisnaAlis)
}

func TestLayoutDevredenSplitAnchor(t *testing.T) {
	frags := []Fragment{
		{Text: "T.C. Kimlik No 12345678901", X: 50, Y: 20, Page: 1},
		{Text: "Sonraki", X: 50, Y: 100, Page: 1},
		{Text: "Döneme Devreden", X: 90, Y: 100, Page: 1},
		{Text: "7.250,10", X: 300, Y: 100, Page: 1},
	}
	rf := extractLayout(t, frags)
	assert.Equal(t, 7250.10, rf.DevredenKDV)
	assert.Empty(t, rf.Notes)
}

func TestLayoutDevredenPositionalGuessFlagged(t *testing.T) {
	// Anchor kelimesi eşleşmedi, satırda iki sayı var: ikincisi konumsal
	// tahmin olarak alınır ve kayda uyarı düşülür
	frags := []Fragment{
		{Text: "T.C. Kimlik No 12345678901", X: 50, Y: 20, Page: 1},
		{Text: "Sonraki", X: 50, Y: 100, Page: 1},
		{Text: "2.000,00", X: 200, Y: 100, Page: 1},
		{Text: "7.250,10", X: 300, Y: 100, Page: 1},
	}
	rf := extractLayout(t, frags)
	assert.Equal(t, 7250.10, rf.DevredenKDV)
	assert.NotEmpty(t, rf.Notes)
}

func TestGroupRows(t *testing.T) {
	frags := []Fragment{
		{Text: "b", X: 200, Y: 10.5, Page: 1},
		{Text: "a", X: 50, Y: 10, Page: 1},
		{Text: "c", X: 50, Y: 30, Page: 1},
	}
	rows := groupRows(frags)

	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0][0].Text)
	assert.Equal(t, "b", rows[0][1].Text)
	assert.Equal(t, "c", rows[1][0].Text)
}
