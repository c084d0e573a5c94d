package declaration

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// TextExtractor: KDV-1 beyannamesinin düz metin transkriptinden alan
// çıkarır. Her alan için birden fazla yöntem sırayla denenir, GİB
// çıktılarının satır düzeni PDF üreticisine göre değiştiği için tek
// pattern'a güvenilmez.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

var (
	// Mali müşavir bölümünün başlangıcını işaretleyen ifadeler.
	// TC/VKN araması bu noktadan öncesiyle sınırlanır.
	cutoffPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)BEYANNAME[Yİ]*\s*D[ÜU]ZENLEYEN`),
		regexp.MustCompile(`(?i)DÜZENLEYEN`),
		regexp.MustCompile(`(?i)Beyannamenin Hangi S[ıi]fatla`),
	}

	tc11Re  = regexp.MustCompile(`\b(\d{11})\b`)
	vkn10Re = regexp.MustCompile(`\b(\d{10})\b`)

	yearRe = regexp.MustCompile(`\b(202[4-9])\b`)

	yilLineRe = regexp.MustCompile(`(?i)^Y[ıi]l$`)
	ayLineRe  = regexp.MustCompile(`(?i)^Ay$`)

	yilInlinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Y[ıi]l\s*[:\s]\s*(\d{4})`),
		regexp.MustCompile(`(?i)Y[ıi]l\s+(\d{4})`),
	}

	matrahPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Matrah Toplam[ıi]\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Matrah Toplami\s*([\d.,]+)`),
	}

	ozelMatrahPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[ÖO]zel Maht?rah [SŞ]ekline\s*Tabi [İI][şs]lemlerde Matraha\s*Dahil Olmayan Bedel\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Matraha\s*Dahil Olmayan Bedel\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Dahil Olmayan Bedel\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Tabi İşlemlerde Matraha Dahil Olmayan Bedel\s*([\d.,]+)`),
	}

	istisnaPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)KDV [ÖO]denmeksizin Temin Edilen Mal\s*Bedeli\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)[ÖO]denmeksizin Temin Edilen Mal Bedeli\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)KDV Ödenmeksizin Temin Edilen\s*Mal Bedeli\s*([\d.,]+)`),
	}

	devredenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Sonraki D[öo]neme Devreden Katma De[ğg]er Vergisi\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)Sonraki Döneme Devreden\s*[\n\r]?\s*([\d.,]+)`),
	}

	posPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Kredi Kart[ıi] [İI]le Tahsil Edilen[^\d]*([\d.,]+)`),
		regexp.MustCompile(`(?i)Kredi Kart[ıi] [İI]le Tahsil[^\d]*([\d.,]+)`),
	}

	alisSectionStartRe = regexp.MustCompile(`(?i)Al[ıi]nan Mal ve Hizmete Ait Bedel`)
	alisSectionEndRe   = regexp.MustCompile(`(?i)Tecil|İhracat|Yurtiçi ve Yurtdışı KDV`)

	// Türk para formatı: 26.572,80
	turkishAmountRe = regexp.MustCompile(`(\d{1,3}(?:\.\d{3})*,\d{2})`)

	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// oran satırı pattern'ları, noSpace satır üzerinde çalışır.
// Format: ORAN + BEDEL + KDV_TUTARI bitişik, ör. "1026.572,802.657,28".
// Uzun oranlar önce denenir, "20..." satırı "2" ile karışmasın diye.
var rateRowPatterns = map[int]*regexp.Regexp{}

func init() {
	amount := `(\d{1,3}(?:\.\d{3})*,\d{2})`
	for _, rate := range KDVRates {
		rateRowPatterns[rate] = regexp.MustCompile(fmt.Sprintf(`^(%d)%s%s`, rate, amount, amount))
	}
}

func (e *TextExtractor) Extract(ctx context.Context, doc Document) (*RawFields, error) {
	rawText := doc.Text
	if rawText == "" {
		var err error
		rawText, err = ExtractPlainText(doc.PDF)
		if err != nil {
			return nil, err
		}
	}
	cleanText := multiSpaceRe.ReplaceAllString(rawText, " ")

	rf := &RawFields{AlisBedelleri: map[int]float64{}}

	rf.TCVKN = extractTCVKN(rawText)
	rf.Year, rf.Month = extractPeriodParts(rawText)
	rf.MatrahToplami, rf.OzelMatrahBedeli = extractMatrah(rawText, cleanText)
	extractAlisBedelleri(rawText, cleanText, rf)
	rf.IstisnaAlis = extractIstisnaAlis(rawText, cleanText)
	rf.DevredenKDV = extractDevredenKDV(rawText, cleanText)
	rf.POSTahsilat = extractPOS(cleanText)

	return rf, nil
}

// extractTCVKN: mükellefin TC/VKN'sini bulur, mali müşavirinkini değil.
// Beyannamenin son sayfasındaki "BEYANNAMEYİ DÜZENLEYEN" bloğu müşavire
// ait, o yüzden arama o bloktan önceki alanla sınırlı tutulur.
// Önce 11 haneli TC aranır, yoksa 10 haneli VKN.
func extractTCVKN(rawText string) string {
	cutIndex := len(rawText)
	for _, p := range cutoffPatterns {
		loc := p.FindStringIndex(rawText)
		if loc != nil && loc[0] > 0 && loc[0] < cutIndex {
			cutIndex = loc[0]
		}
	}
	searchArea := rawText[:cutIndex]

	if m := tc11Re.FindStringSubmatch(searchArea); m != nil {
		return m[1]
	}
	if m := vkn10Re.FindStringSubmatch(searchArea); m != nil {
		return m[1]
	}
	return ""
}

// extractPeriodParts: dönem yılını ve ayını bulur. PDF üreticisine göre
// "Yıl 2025" aynı satırda olabilir ya da etiketle değer ayrı satırlara
// düşebilir, beş yöntem sırayla denenir.
func extractPeriodParts(rawText string) (yil, ay string) {
	var lines []string
	for _, l := range strings.Split(rawText, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}

	// Yöntem 1: "Yıl" / "Ay" etiket satırından sonraki 5 satırda değer ara
	for i, line := range lines {
		if yil == "" && yilLineRe.MatchString(line) {
			for j := i + 1; j < i+6 && j < len(lines); j++ {
				if m := yearRe.FindStringSubmatch(lines[j]); m != nil {
					yil = m[1]
					break
				}
			}
		}
		if ay == "" && ayLineRe.MatchString(line) {
			for j := i + 1; j < i+6 && j < len(lines); j++ {
				if no := monthNumberFromName(lines[j]); no != "" {
					ay = no
					break
				}
			}
		}
	}

	// Yöntem 2: aynı satırda "Yıl 2025" veya "Yıl: 2025"
	if yil == "" {
		for _, p := range yilInlinePatterns {
			if m := p.FindStringSubmatch(rawText); m != nil {
				yil = m[1]
				break
			}
		}
	}

	// Yöntem 3: aynı satırda "Ay Kasım" veya "Ay: Kasım".
	// Aylar takvim sırasıyla denenir, map sırası belirleyici olmasın.
	if ay == "" {
		for _, name := range monthNamesOrdered {
			p := regexp.MustCompile(`(?i)\bAy\s*[:\s]\s*` + name)
			if p.MatchString(rawText) {
				ay = monthNumbers[name]
				break
			}
		}
	}

	// Yöntem 4: ay adını metnin herhangi bir yerinde ara (son çare)
	if ay == "" {
		textLower := lowerTurkish(rawText)
		for _, name := range monthNamesOrdered {
			if regexp.MustCompile(`\b` + name + `\b`).MatchString(textLower) {
				ay = monthNumbers[name]
				break
			}
		}
	}

	// Yöntem 5: yılı DÖNEM TİPİ bölümünden, olmazsa ilk 202X eşleşmesinden al
	if yil == "" {
		if idx := strings.Index(rawText, "DÖNEM TİPİ"); idx != -1 {
			end := idx + 200
			if end > len(rawText) {
				end = len(rawText)
			}
			if m := yearRe.FindStringSubmatch(rawText[idx:end]); m != nil {
				yil = m[1]
			}
		}
	}
	if yil == "" {
		if m := yearRe.FindStringSubmatch(rawText); m != nil {
			yil = m[1]
		}
	}

	return yil, ay
}

// extractMatrah: Matrah Toplamı ve Özel Matraha Tabi İşlemlerde Matraha
// Dahil Olmayan Bedel. İkincisi kuyumcu ve yem satıcılarında ciroyu
// katlayabilir, üç yöntem denenir.
func extractMatrah(rawText, cleanText string) (matrahToplami, ozelMatrahBedeli float64) {
	for _, p := range matrahPatterns {
		if m := p.FindStringSubmatch(cleanText); m != nil {
			matrahToplami = ParseDecimal(m[1])
			break
		}
	}

	// Yöntem A: tek satıra indirgenmiş metinde etiket+değer
	for _, p := range ozelMatrahPatterns {
		if m := p.FindStringSubmatch(cleanText); m != nil {
			if bedel := ParseDecimal(m[1]); bedel > 0 {
				ozelMatrahBedeli = bedel
				break
			}
		}
	}

	// Yöntem B: ham metinde satır satır; etiket satırında değer yoksa
	// sonraki 3 satıra bakılır. Matrah Toplamı ile aynı değer tablo
	// hizasından kaymış başka bir hücredir, atlanır.
	if ozelMatrahBedeli == 0 {
		lines := strings.Split(rawText, "\n")
		for i, raw := range lines {
			line := strings.TrimSpace(raw)
			if !strings.Contains(line, "Dahil Olmayan Bedel") &&
				!strings.Contains(line, "Matraha Dahil Olmayan") &&
				!strings.Contains(line, "Tabi İşlemlerde Matraha") {
				continue
			}

			if m := turkishAmountRe.FindStringSubmatch(line); m != nil {
				if bedel := ParseDecimal(m[1]); bedel > 0 {
					ozelMatrahBedeli = bedel
					break
				}
			}
			for j := i + 1; j < i+4 && j < len(lines); j++ {
				if m := turkishAmountRe.FindStringSubmatch(strings.TrimSpace(lines[j])); m != nil {
					bedel := ParseDecimal(m[1])
					if bedel > 0 && bedel != matrahToplami {
						ozelMatrahBedeli = bedel
						break
					}
				}
			}
			if ozelMatrahBedeli > 0 {
				break
			}
		}
	}

	// Yöntem C: "ÖZEL MATRAH" tablosunun ilk 1000 karakterindeki en
	// büyük sayı (Matrah Toplamı hariç)
	if ozelMatrahBedeli == 0 {
		if idx := strings.Index(rawText, "ÖZEL MATRAH"); idx != -1 {
			end := idx + 1000
			if end > len(rawText) {
				end = len(rawText)
			}
			for _, numStr := range turkishAmountRe.FindAllString(rawText[idx:end], -1) {
				num := ParseDecimal(numStr)
				if num > ozelMatrahBedeli && num != matrahToplami {
					ozelMatrahBedeli = num
				}
			}
		}
	}

	return matrahToplami, ozelMatrahBedeli
}

// extractAlisBedelleri: "BU DÖNEME AİT İNDİRİLECEK KDV" tablosundaki
// oran satırlarını toplar. Satır formatı ORAN BEDEL KDV_TUTARI, ör.
// "10 26.572,80 2.657,28". Tecil/İhracat satırı tablonun bittiğini
// gösterir.
func extractAlisBedelleri(rawText, cleanText string, rf *RawFields) {
	alisIdx := strings.Index(rawText, "Alınan Mal ve Hizmete Ait Bedel")
	if alisIdx != -1 {
		end := alisIdx + 2000
		if end > len(rawText) {
			end = len(rawText)
		}
		for _, raw := range strings.Split(rawText[alisIdx:end], "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			if strings.Contains(line, "Tecil") || strings.Contains(line, "İhracat") {
				break
			}

			noSpace := multiSpaceRe.ReplaceAllString(line, "")
			for _, rate := range KDVRates {
				if m := rateRowPatterns[rate].FindStringSubmatch(noSpace); m != nil {
					if bedel := ParseDecimal(m[2]); bedel > 0 {
						rf.AlisBedelleri[rate] += bedel
					}
					break
				}
			}
		}
	}

	// Alternatif: tek satıra indirgenmiş metinde bölümü yakala, sayı
	// çiftlerinin ilkini bedel say. Oran bilgisi bu yolda kaybolur,
	// toplam %20 altında kaydedilir.
	if len(rf.AlisBedelleri) == 0 {
		if loc := alisSectionStartRe.FindStringIndex(cleanText); loc != nil {
			window := cleanText[loc[1]:]
			if len(window) > 1500 {
				window = window[:1500]
			}
			end := alisSectionEndRe.FindStringIndex(window)
			if end == nil {
				return
			}
			numbers := turkishAmountRe.FindAllString(window[:end[0]], -1)
			for i := 0; i+1 < len(numbers); i += 2 {
				if bedel := ParseDecimal(numbers[i]); bedel > 0 {
					rf.AlisBedelleri[20] += bedel
				}
			}
			if len(rf.AlisBedelleri) > 0 {
				rf.Note("alış tablosu oran bazında okunamadı, toplam tek kalemde")
			}
		}
	}
}

// extractIstisnaAlis: KDV ödenmeksizin temin edilen mal bedeli
// (istisna alışları, ör. 325 kodlu yem satıcıları).
func extractIstisnaAlis(rawText, cleanText string) float64 {
	for _, p := range istisnaPatterns {
		if m := p.FindStringSubmatch(cleanText); m != nil {
			if bedel := ParseDecimal(m[1]); bedel > 0 {
				return bedel
			}
		}
	}

	if idx := strings.Index(rawText, "KDV Ödenmeksizin Temin Edilen"); idx != -1 {
		end := idx + 200
		if end > len(rawText) {
			end = len(rawText)
		}
		if m := turkishAmountRe.FindStringSubmatch(rawText[idx:end]); m != nil {
			return ParseDecimal(m[1])
		}
	}

	return 0
}

// extractDevredenKDV: "Sonraki Döneme Devreden Katma Değer Vergisi".
func extractDevredenKDV(rawText, cleanText string) float64 {
	for _, p := range devredenPatterns {
		if m := p.FindStringSubmatch(cleanText); m != nil {
			return ParseDecimal(m[1])
		}
	}

	lines := strings.Split(rawText, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "Sonraki Döneme Devreden") {
			continue
		}
		for j := i; j < i+3 && j < len(lines); j++ {
			if m := turkishAmountRe.FindStringSubmatch(lines[j]); m != nil {
				return ParseDecimal(m[1])
			}
		}
	}

	return 0
}

// extractPOS: "Kredi Kartı İle Tahsil Edilen" tutarı.
func extractPOS(cleanText string) float64 {
	for _, p := range posPatterns {
		if m := p.FindStringSubmatch(cleanText); m != nil {
			return ParseDecimal(m[1])
		}
	}
	return 0
}
