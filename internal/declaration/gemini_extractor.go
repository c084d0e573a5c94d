package declaration

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiExtractor: beyannameyi harici modele gönderir, modelden SADECE
// sayfada okunan ham etiket değerlerini ister. Toplamlar modele
// yaptırılmaz, tüm aritmetik assembler tarafında yapılır.
type GeminiExtractor struct {
	model string
}

func NewGeminiExtractor(model string) *GeminiExtractor {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiExtractor{model: model}
}

const geminiPrompt = `Sen bir Türk KDV-1 beyannamesi okuyucususun. Ekteki PDF'ten SADECE sayfada birebir yazan ham değerleri oku.

Kurallar:
- HİÇBİR toplama, çıkarma veya hesaplama YAPMA. Sadece etiketlerin yanında yazan değerleri aynen aktar.
- Bulamadığın alana 0 yaz (vkn/yil/ay için boş string).
- Mükellefin TC/VKN'sini al, "BEYANNAMEYİ DÜZENLEYEN" bölümündeki mali müşavirinkini DEĞİL.
- Yanıt SADECE geçerli ham JSON olsun. Kod bloğu (markdown fence) KULLANMA. Yanıt "{" ile başlayıp "}" ile bitsin.

Şu alanları döndür:
{
  "vkn": "mükellefin 10 veya 11 haneli numarası",
  "yil": "dönem yılı, örn 2025",
  "ay": "dönem ayı, ay adı veya numarası",
  "matrah_toplami": Matrah Toplamı alanındaki değer,
  "ozel_matrah_bedeli": Özel Matrah Şekline Tabi İşlemlerde Matraha Dahil Olmayan Bedel,
  "alis_1": %1 oranındaki Alınan Mal ve Hizmete Ait Bedel,
  "alis_8": %8 oranındaki bedel,
  "alis_10": %10 oranındaki bedel,
  "alis_18": %18 oranındaki bedel,
  "alis_20": %20 oranındaki bedel,
  "istisna_alis": KDV Ödenmeksizin Temin Edilen Mal Bedeli,
  "devreden_kdv": Sonraki Döneme Devreden Katma Değer Vergisi,
  "pos_tahsilat": Kredi Kartı İle Tahsil Edilen tutar
}`

// geminiFields: modelin döndürdüğü yük. Değerler sayı da string de
// gelebildiği için json.RawMessage üzerinden coerce edilir.
type geminiFields struct {
	VKN           json.RawMessage `json:"vkn"`
	Yil           json.RawMessage `json:"yil"`
	Ay            json.RawMessage `json:"ay"`
	MatrahToplami json.RawMessage `json:"matrah_toplami"`
	OzelMatrah    json.RawMessage `json:"ozel_matrah_bedeli"`
	Alis1         json.RawMessage `json:"alis_1"`
	Alis8         json.RawMessage `json:"alis_8"`
	Alis10        json.RawMessage `json:"alis_10"`
	Alis18        json.RawMessage `json:"alis_18"`
	Alis20        json.RawMessage `json:"alis_20"`
	IstisnaAlis   json.RawMessage `json:"istisna_alis"`
	DevredenKDV   json.RawMessage `json:"devreden_kdv"`
	POSTahsilat   json.RawMessage `json:"pos_tahsilat"`
}

func (e *GeminiExtractor) Extract(ctx context.Context, doc Document) (*RawFields, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, &ProviderError{Err: fmt.Errorf("genai istemcisi oluşturulamadı: %w", err)}
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: geminiPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     doc.PDF,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, &ProviderError{Err: fmt.Errorf("model çağrısı başarısız: %w", err)}
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, &ProviderError{Err: fmt.Errorf("modelden boş yanıt")}
	}

	return parseGeminiResponse(rawText)
}

// parseGeminiResponse: model çıktısını (varsa çevresindeki kod bloğunu
// soyarak) çözer ve tüm skalerleri sayıya/string'e coerce eder.
func parseGeminiResponse(rawText string) (*RawFields, error) {
	clean := stripCodeFence(rawText)

	var gf geminiFields
	if err := json.Unmarshal([]byte(clean), &gf); err != nil {
		return nil, fmt.Errorf("model yanıtı çözülemedi: %w", err)
	}

	rf := &RawFields{AlisBedelleri: map[int]float64{}}
	rf.TCVKN = coerceString(gf.VKN)
	rf.Year = coerceString(gf.Yil)
	rf.Month = normalizeMonth(coerceString(gf.Ay))
	rf.MatrahToplami = coerceFloat(gf.MatrahToplami)
	rf.OzelMatrahBedeli = coerceFloat(gf.OzelMatrah)

	for rate, raw := range map[int]json.RawMessage{
		1: gf.Alis1, 8: gf.Alis8, 10: gf.Alis10, 18: gf.Alis18, 20: gf.Alis20,
	} {
		if v := coerceFloat(raw); v > 0 {
			rf.AlisBedelleri[rate] = v
		}
	}

	rf.IstisnaAlis = coerceFloat(gf.IstisnaAlis)
	rf.DevredenKDV = coerceFloat(gf.DevredenKDV)
	rf.POSTahsilat = coerceFloat(gf.POSTahsilat)

	return rf, nil
}

// stripCodeFence: model talimata uymayıp yanıtı ``` bloğuna sararsa
// bloğu soyar.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}

// coerceString: "2025", 2025 veya null → "2025" / ""
func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return fmt.Sprintf("%.0f", n)
	}
	return ""
}

// coerceFloat: 123.45, "123.45" veya "1.234,56" → 123.45; çözülemeyen 0
func coerceFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0
		}
		// Model bazen Türk formatında string döndürür
		if strings.Contains(s, ",") {
			return ParseDecimal(s)
		}
		var v float64
		if _, err := fmt.Sscanf(s, "%f", &v); err == nil {
			return v
		}
	}
	return 0
}

// normalizeMonth: "Kasım", "kasım", "11" veya "3" → "11" / "03"
func normalizeMonth(s string) string {
	if s == "" {
		return ""
	}
	if no := monthNumberFromName(s); no != "" {
		return no
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && n >= 1 && n <= 12 {
		return fmt.Sprintf("%02d", n)
	}
	return s
}
