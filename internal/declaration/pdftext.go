package declaration

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPlainText: PDF byte'larından düz metin transkripti üretir.
// Satır yapısı korunur (aynı satırdaki kelimeler boşlukla birleşir),
// çünkü text extractor satır satır tarama yapar. Kolonlu tablolarda
// metin akış sırası görsel sırayla birebir aynı olmayabilir; text
// extractor'ın fallback zincirleri bu yüzden var.
func ExtractPlainText(data []byte) (text string, err error) {
	// ledongthuc/pdf bozuk dosyalarda panic atabiliyor
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF okunurken panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("PDF açılamadı: %w", err)
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= reader.NumPage(); pageNr++ {
		page := reader.Page(pageNr)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

// ExtractFragments: PDF byte'larından konumlu metin parçaları üretir.
// Y ekseni normalize edilir: değer büyüdükçe sayfada aşağı iner
// (PDF'in kendi koordinat sistemi sol-alt orijinlidir).
func ExtractFragments(data []byte) (frags []Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF okunurken panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("PDF açılamadı: %w", err)
	}

	for pageNr := 1; pageNr <= reader.NumPage(); pageNr++ {
		page := reader.Page(pageNr)
		if page.V.IsNull() {
			continue
		}

		texts := page.Content().Text
		if len(texts) == 0 {
			continue
		}

		// Sayfadaki en yüksek Y'yi bul, yönü çevirmek için
		maxY := texts[0].Y
		for _, t := range texts {
			if t.Y > maxY {
				maxY = t.Y
			}
		}

		// Aynı satırdaki karakterleri/kelimeleri tek fragment'a birleştirmeden
		// önce kelime bazında grupla: ledongthuc karakter karakter dönebilir.
		frags = append(frags, groupWords(texts, maxY, pageNr)...)
	}

	return frags, nil
}

// groupWords: aynı baseline'da bitişik duran karakterleri kelime/hücre
// bazında tek Fragment'a toplar.
func groupWords(texts []pdf.Text, maxY float64, pageNr int) []Fragment {
	var out []Fragment

	var cur strings.Builder
	var curX, curY, lastEnd float64
	flush := func() {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			out = append(out, Fragment{
				Text: s,
				X:    curX,
				Y:    maxY - curY,
				Page: pageNr,
			})
		}
		cur.Reset()
	}

	for _, t := range texts {
		if cur.Len() == 0 {
			curX, curY = t.X, t.Y
			cur.WriteString(t.S)
			lastEnd = t.X + t.W
			continue
		}

		sameLine := t.Y == curY
		// Karakterler arası boşluk font genişliğine göre değişir;
		// 2.5 punto üstü kopukluk yeni hücre sayılır.
		adjacent := t.X-lastEnd < 2.5

		if sameLine && adjacent {
			cur.WriteString(t.S)
			lastEnd = t.X + t.W
			continue
		}

		flush()
		curX, curY = t.X, t.Y
		cur.WriteString(t.S)
		lastEnd = t.X + t.W
	}
	flush()

	return out
}
