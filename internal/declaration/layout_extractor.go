package declaration

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Fragment: PDF'ten çıkarılmış konumlu metin parçası. Y normalize
// edilmiştir, değer büyüdükçe sayfada aşağı iner.
type Fragment struct {
	Text string
	X    float64
	Y    float64
	Page int
}

// LayoutExtractor: alanları etiket fragment'larına uzamsal yakınlıkla
// bulur. Düz metin akışı çok kolonlu tablolarda karışabildiği için
// 2 boyutlu konum üzerinden eşleştirme daha dayanıklı.
type LayoutExtractor struct{}

func NewLayoutExtractor() *LayoutExtractor {
	return &LayoutExtractor{}
}

const (
	// Aynı satır sayılan dikey tolerans
	sameRowTolerance = 3.0
	// Etiketin altında aranan dikey pencere
	belowRange = 40.0
	// Terminatör bulunamazsa alış tablosu için varsayılan dikey açıklık
	purchaseTableSpan = 150.0
)

var (
	decimalTokenRe = regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}`)
	digits11Re     = regexp.MustCompile(`\b\d{11}\b`)
	digits10Re     = regexp.MustCompile(`\b\d{10}\b`)

	exemptionRowLabels = []string{
		"Yem Teslimleri",
		"Kıymetli Taş Teslimleri",
		"KDV Ödenmeksizin",
	}
)

func (e *LayoutExtractor) Extract(ctx context.Context, doc Document) (*RawFields, error) {
	frags := doc.Fragments
	if len(frags) == 0 {
		var err error
		frags, err = ExtractFragments(doc.PDF)
		if err != nil {
			return nil, err
		}
	}

	rf := &RawFields{AlisBedelleri: map[int]float64{}}

	rf.TCVKN = layoutTCVKN(frags)
	rf.Year, rf.Month = layoutPeriod(frags)

	if v, ok := findLabelValue(frags, "Matrah Toplamı"); ok {
		rf.MatrahToplami = v
	}
	if v, ok := findLabelValue(frags, "Dahil Olmayan Bedel"); ok {
		rf.OzelMatrahBedeli = v
	} else if v, ok := findLabelValue(frags, "Özel Matrah"); ok {
		rf.OzelMatrahBedeli = v
	}

	layoutAlisBedelleri(frags, rf)
	layoutIstisna(frags, rf)
	layoutDevreden(frags, rf)

	if v, ok := findLabelValue(frags, "Kredi Kartı İle Tahsil Edilen"); ok {
		rf.POSTahsilat = v
	}

	return rf, nil
}

// findLabelValue: metni etikete eşit (tercihen) veya etiketi içeren
// fragment'ı bulur; önce aynı satırda etiketin sağındaki en soldaki
// ondalık değere, bulunamazsa etiketin altındaki sınırlı pencerede
// yukarıdan aşağıya ilk ondalık değere bakar.
func findLabelValue(frags []Fragment, label string) (float64, bool) {
	var anchor *Fragment
	for i := range frags {
		if frags[i].Text == label {
			anchor = &frags[i]
			break
		}
	}
	if anchor == nil {
		for i := range frags {
			if strings.Contains(frags[i].Text, label) {
				anchor = &frags[i]
				break
			}
		}
	}
	if anchor == nil {
		return 0, false
	}

	// Aynı satırda sağda
	var sameRow []Fragment
	for _, f := range frags {
		if f.Page != anchor.Page {
			continue
		}
		if math.Abs(f.Y-anchor.Y) <= sameRowTolerance && f.X > anchor.X {
			if decimalTokenRe.MatchString(f.Text) {
				sameRow = append(sameRow, f)
			}
		}
	}
	if len(sameRow) > 0 {
		sort.Slice(sameRow, func(i, j int) bool { return sameRow[i].X < sameRow[j].X })
		return ParseDecimal(decimalTokenRe.FindString(sameRow[0].Text)), true
	}

	// Etiketin altında
	var below []Fragment
	for _, f := range frags {
		if f.Page != anchor.Page {
			continue
		}
		dy := f.Y - anchor.Y
		if dy > sameRowTolerance && dy <= belowRange && math.Abs(f.X-anchor.X) <= 120 {
			if decimalTokenRe.MatchString(f.Text) {
				below = append(below, f)
			}
		}
	}
	if len(below) > 0 {
		sort.Slice(below, func(i, j int) bool { return below[i].Y < below[j].Y })
		return ParseDecimal(decimalTokenRe.FindString(below[0].Text)), true
	}

	return 0, false
}

// layoutTCVKN: ilk sayfada, müşavir bölümü anchor'ının üstünde kalan
// fragment'larda önce 11, sonra 10 haneli numara arar.
func layoutTCVKN(frags []Fragment) string {
	cutY := math.MaxFloat64
	for _, f := range frags {
		if f.Page != 1 {
			continue
		}
		if strings.Contains(f.Text, "DÜZENLEYEN") || strings.Contains(f.Text, "Hangi Sıfatla") {
			if f.Y < cutY {
				cutY = f.Y
			}
		}
	}

	var area []Fragment
	for _, f := range frags {
		if f.Page == 1 && f.Y < cutY {
			area = append(area, f)
		}
	}

	for _, f := range area {
		if m := digits11Re.FindString(f.Text); m != "" {
			return m
		}
	}
	for _, f := range area {
		if m := digits10Re.FindString(f.Text); m != "" {
			return m
		}
	}
	return ""
}

// layoutPeriod: "Yıl" ve "Ay" etiket fragment'larını ayrı ayrı bulup
// aynı satır sağındaki ya da alttaki değeri okur.
func layoutPeriod(frags []Fragment) (yil, ay string) {
	readNear := func(anchor Fragment, accept func(string) string) string {
		var cands []Fragment
		for _, f := range frags {
			if f.Page != anchor.Page {
				continue
			}
			sameRow := math.Abs(f.Y-anchor.Y) <= sameRowTolerance && f.X > anchor.X
			under := f.Y-anchor.Y > sameRowTolerance && f.Y-anchor.Y <= belowRange && math.Abs(f.X-anchor.X) <= 120
			if sameRow || under {
				cands = append(cands, f)
			}
		}
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].Y != cands[j].Y {
				return cands[i].Y < cands[j].Y
			}
			return cands[i].X < cands[j].X
		})
		for _, f := range cands {
			if v := accept(f.Text); v != "" {
				return v
			}
		}
		return ""
	}

	for _, f := range frags {
		if yil == "" && (f.Text == "Yıl" || f.Text == "YIL") {
			yil = readNear(f, func(s string) string {
				return yearRe.FindString(s)
			})
		}
		if ay == "" && (f.Text == "Ay" || f.Text == "AY") {
			ay = readNear(f, func(s string) string {
				return monthNumberFromName(strings.TrimSpace(s))
			})
		}
	}

	return yil, ay
}

// layoutAlisBedelleri: alış tablosu başlığı ile terminatör arasındaki
// fragment'ları satır satır gruplar; satırın ilk hücresi oran koduysa
// satırdaki ilk sayısal hücre o oranın alış bedelidir.
func layoutAlisBedelleri(frags []Fragment, rf *RawFields) {
	var header *Fragment
	for i := range frags {
		if strings.Contains(frags[i].Text, "Alınan Mal ve Hizmete Ait Bedel") {
			header = &frags[i]
			break
		}
	}
	if header == nil {
		return
	}

	endY := header.Y + purchaseTableSpan
	for _, f := range frags {
		if f.Page != header.Page || f.Y <= header.Y {
			continue
		}
		if (strings.Contains(f.Text, "Tecil") || strings.Contains(f.Text, "İhracat")) && f.Y < endY {
			endY = f.Y
		}
	}

	var table []Fragment
	for _, f := range frags {
		if f.Page == header.Page && f.Y > header.Y+sameRowTolerance && f.Y < endY {
			table = append(table, f)
		}
	}

	for _, row := range groupRows(table) {
		rate, ok := rateCode(row[0].Text)
		if !ok {
			continue
		}
		for _, cell := range row[1:] {
			if m := decimalTokenRe.FindString(cell.Text); m != "" {
				if bedel := ParseDecimal(m); bedel > 0 {
					rf.AlisBedelleri[rate] += bedel
				}
				break
			}
		}
	}
}

// layoutIstisna: bilinen istisna kategori etiketlerinden birini içeren
// satırdaki ondalık hücreleri toplar. Satırda en az üç sayı varsa
// kolon düzeni "kategori / bedel / tevkif edilen / istisna tutarı"
// kabul edilir ve sonuncusu istisna bedelidir.
func layoutIstisna(frags []Fragment, rf *RawFields) {
	for _, label := range exemptionRowLabels {
		for _, f := range frags {
			if !strings.Contains(f.Text, label) {
				continue
			}

			var nums []Fragment
			for _, g := range frags {
				if g.Page == f.Page && math.Abs(g.Y-f.Y) <= sameRowTolerance {
					if decimalTokenRe.MatchString(g.Text) {
						nums = append(nums, g)
					}
				}
			}
			if len(nums) < 3 {
				continue
			}
			sort.Slice(nums, func(i, j int) bool { return nums[i].X < nums[j].X })
			rf.IstisnaAlis = ParseDecimal(decimalTokenRe.FindString(nums[len(nums)-1].Text))
			return
		}
	}

	if v, ok := findLabelValue(frags, "KDV Ödenmeksizin Temin Edilen"); ok {
		rf.IstisnaAlis = v
	}
}

// layoutDevreden: devreden KDV. Anchor tek fragment'ta bulunamazsa
// bölünmüş anchor denenir: "Sonraki" ile başlayan fragment'ın
// satırında "Devreden" geçen ikinci fragment aranır, değeri onun
// sağındaki ilk sayıdır. O da yoksa ve satırda en az iki sayı varsa
// ikincisi konumsal tahmin olarak alınır ve kayda not düşülür.
func layoutDevreden(frags []Fragment, rf *RawFields) {
	if v, ok := findLabelValue(frags, "Sonraki Döneme Devreden Katma Değer Vergisi"); ok {
		rf.DevredenKDV = v
		return
	}

	for _, f := range frags {
		if !strings.HasPrefix(f.Text, "Sonraki") {
			continue
		}

		var row []Fragment
		for _, g := range frags {
			if g.Page == f.Page && math.Abs(g.Y-f.Y) <= sameRowTolerance {
				row = append(row, g)
			}
		}
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })

		var devredenFrag *Fragment
		for i := range row {
			if strings.Contains(row[i].Text, "Devreden") {
				devredenFrag = &row[i]
				break
			}
		}

		if devredenFrag != nil {
			for _, g := range row {
				if g.X > devredenFrag.X {
					if m := decimalTokenRe.FindString(g.Text); m != "" {
						rf.DevredenKDV = ParseDecimal(m)
						return
					}
				}
			}
		}

		var nums []string
		for _, g := range row {
			if m := decimalTokenRe.FindString(g.Text); m != "" {
				nums = append(nums, m)
			}
		}
		if len(nums) >= 2 {
			rf.DevredenKDV = ParseDecimal(nums[1])
			rf.Note("devreden KDV satırdaki ikinci sayıdan konumsal tahminle alındı, doğrulanmalı")
			return
		}
	}
}

// groupRows: fragment'ları dikey yakınlığa göre satır gruplarına ayırır;
// her grup soldan sağa sıralı döner.
func groupRows(frags []Fragment) [][]Fragment {
	if len(frags) == 0 {
		return nil
	}

	sorted := make([]Fragment, len(frags))
	copy(sorted, frags)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]Fragment
	cur := []Fragment{sorted[0]}
	for _, f := range sorted[1:] {
		if f.Y-cur[0].Y <= sameRowTolerance {
			cur = append(cur, f)
			continue
		}
		rows = append(rows, cur)
		cur = []Fragment{f}
	}
	rows = append(rows, cur)

	for _, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// rateCode: hücre metni tam olarak bilinen oran kodlarından biri mi
func rateCode(s string) (int, bool) {
	switch strings.TrimSpace(s) {
	case "1":
		return 1, true
	case "8":
		return 8, true
	case "10":
		return 10, true
	case "18":
		return 18, true
	case "20":
		return 20, true
	}
	return 0, false
}
