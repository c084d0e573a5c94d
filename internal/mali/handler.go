package mali

import (
	"fmt"
	"io"
	"log"
	"math"
	"mime/multipart"
	"regexp"
	"time"

	"yavuzel-backend/internal/auth"
	"yavuzel-backend/internal/config"
	"yavuzel-backend/internal/database"
	"yavuzel-backend/internal/declaration"
	"yavuzel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"
)

const maxBatchSize = 200

var (
	periodParamRe = regexp.MustCompile(`^\d{4}-\d{2}$`)
	yearParamRe   = regexp.MustCompile(`^\d{4}$`)
)

// -----------------------------------
// Yardımcı: userId veya tc'den hash çöz
// -----------------------------------

func resolveTCHash(c *fiber.Ctx) (string, error) {
	if userID := c.Query("userId"); userID != "" {
		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			return "", fiber.NewError(fiber.StatusBadRequest, "Kullanıcı bulunamadı")
		}
		return user.TCVKNHash, nil
	}
	if tc := c.Query("tc"); tc != "" {
		return auth.HashTCVKN(tc), nil
	}
	return "", fiber.NewError(fiber.StatusBadRequest, "userId veya tc gerekli")
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// round1: yüzde değişimleri tek ondalıkla raporlanır
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

type statementView struct {
	Period      string   `json:"period"`
	PeriodName  string   `json:"periodName"`
	Ciro        float64  `json:"ciro"`
	Gider       float64  `json:"gider"`
	NetKalan    float64  `json:"netKalan"`
	DevredenKDV float64  `json:"devredenKDV"`
	POS         float64  `json:"pos"`
	CiroChange  *float64 `json:"ciroChange,omitempty"`
	GiderChange *float64 `json:"giderChange,omitempty"`
}

func viewOf(st *models.FinancialStatement) statementView {
	return statementView{
		Period:      st.Period,
		PeriodName:  declaration.FormatPeriodLabel(st.Period),
		Ciro:        st.Ciro,
		Gider:       st.Gider,
		NetKalan:    st.Ciro - st.Gider,
		DevredenKDV: st.DevredenKDV,
		POS:         st.POSTahsilat,
	}
}

// -----------------------------------
// GET /api/mali/financial-periods
// ?userId=1 veya ?tc=12345678901
// -----------------------------------
func FinancialPeriodsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tcHash, err := resolveTCHash(c)
		if err != nil {
			return err
		}

		var statements []models.FinancialStatement
		if err := database.DB.
			Select("period").
			Where("tc_vkn_hash = ?", tcHash).
			Order("period desc").
			Find(&statements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dönemler okunamadı")
		}

		type periodDetail struct {
			Value string `json:"value"`
			Label string `json:"label"`
		}
		periods := make([]periodDetail, 0, len(statements))
		yearSet := map[string]bool{}
		var years []string
		for _, st := range statements {
			periods = append(periods, periodDetail{
				Value: st.Period,
				Label: declaration.FormatPeriodLabel(st.Period),
			})
			y := st.Period[:4]
			if !yearSet[y] {
				yearSet[y] = true
				years = append(years, y)
			}
		}

		return c.JSON(fiber.Map{"success": true, "periods": periods, "years": years})
	}
}

// -----------------------------------
// GET /api/mali/financial-data
// En son dönem + önceki dönemle değişim yüzdeleri
// -----------------------------------
func LatestFinancialDataHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tcHash, err := resolveTCHash(c)
		if err != nil {
			return err
		}

		var latest models.FinancialStatement
		if err := database.DB.
			Where("tc_vkn_hash = ?", tcHash).
			Order("period desc").
			First(&latest).Error; err != nil {
			return c.JSON(fiber.Map{"success": false, "message": "Veri yok"})
		}

		view := viewOf(&latest)

		var prev models.FinancialStatement
		prevPeriod := declaration.PreviousPeriod(latest.Period)
		if err := database.DB.
			Where("tc_vkn_hash = ? AND period = ?", tcHash, prevPeriod).
			First(&prev).Error; err == nil {
			if prev.Ciro > 0 {
				ch := round1((latest.Ciro - prev.Ciro) / prev.Ciro * 100)
				view.CiroChange = &ch
			}
			if prev.Gider > 0 {
				ch := round1((latest.Gider - prev.Gider) / prev.Gider * 100)
				view.GiderChange = &ch
			}
		}

		return c.JSON(fiber.Map{"success": true, "data": view})
	}
}

// -----------------------------------
// GET /api/mali/financial-data/:period
// -----------------------------------
func FinancialDataByPeriodHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := c.Params("period")
		if !periodParamRe.MatchString(period) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz dönem formatı")
		}

		tcHash, err := resolveTCHash(c)
		if err != nil {
			return err
		}

		var st models.FinancialStatement
		if err := database.DB.
			Where("tc_vkn_hash = ? AND period = ?", tcHash, period).
			First(&st).Error; err != nil {
			return c.JSON(fiber.Map{"success": false, "message": "Bu dönem için veri yok"})
		}

		return c.JSON(fiber.Map{"success": true, "data": viewOf(&st)})
	}
}

// -----------------------------------
// GET /api/mali/financial-yearly/:year
// Yıllık özet + aylık detaylar
// -----------------------------------
func FinancialYearlyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := c.Params("year")
		if !yearParamRe.MatchString(year) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz yıl formatı")
		}

		tcHash, err := resolveTCHash(c)
		if err != nil {
			return err
		}

		var statements []models.FinancialStatement
		if err := database.DB.
			Where("tc_vkn_hash = ? AND period >= ? AND period <= ?", tcHash, year+"-01", year+"-12").
			Order("period asc").
			Find(&statements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri okunamadı")
		}
		if len(statements) == 0 {
			return c.JSON(fiber.Map{"success": false, "message": year + " yılı için veri yok"})
		}

		var toplamCiro, toplamGider, toplamPOS float64
		monthly := make([]statementView, 0, len(statements))
		for i := range statements {
			st := &statements[i]
			toplamCiro += st.Ciro
			toplamGider += st.Gider
			toplamPOS += st.POSTahsilat

			view := viewOf(st)
			if i > 0 {
				prev := &statements[i-1]
				if prev.Ciro > 0 {
					ch := round1((st.Ciro - prev.Ciro) / prev.Ciro * 100)
					view.CiroChange = &ch
				}
				if prev.Gider > 0 {
					ch := round1((st.Gider - prev.Gider) / prev.Gider * 100)
					view.GiderChange = &ch
				}
			}
			monthly = append(monthly, view)
		}

		netKalan := toplamCiro - toplamGider
		karMarji := 0.0
		if toplamCiro > 0 {
			karMarji = round1(netKalan / toplamCiro * 100)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"year":    year,
			"summary": fiber.Map{
				"toplamCiro":         toplamCiro,
				"toplamGider":        toplamGider,
				"netKalan":           netKalan,
				"toplamPOS":          toplamPOS,
				"karMarji":           karMarji,
				"aylikOrtalamaCiro":  math.Round(toplamCiro / float64(len(statements))),
				"aylikOrtalamaGider": math.Round(toplamGider / float64(len(statements))),
				"kayitliAySayisi":    len(statements),
			},
			"monthly": monthly,
		})
	}
}

// -----------------------------------
// POST /api/mali/admin/test-parse
// PDF'i parse et, sonucu göster, DB'ye KAYDETME
// -----------------------------------
func TestParseHandler(cfg *config.Config, asm *declaration.Assembler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.CheckAdminPassword(cfg, c.FormValue("password")); err != nil {
			return err
		}

		file, err := c.FormFile("pdf")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "PDF dosyası yok!")
		}
		data, err := readUpload(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya okunamadı")
		}

		res, err := asm.ParseDocument(c.Context(), declaration.Document{
			Filename: file.Filename,
			PDF:      data,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		// Hata ayıklama için metnin ilk kısmını da döndür
		text, _ := declaration.ExtractPlainText(data)
		sample := []rune(text)
		if len(sample) > 500 {
			sample = sample[:500]
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"filename":   file.Filename,
			"parsed":     res.Record,
			"raw":        res.Raw,
			"textSample": string(sample),
		})
	}
}

// upsertRecord: kaydı (tc_vkn_hash, period) anahtarıyla günceller veya ekler
func upsertRecord(rec *declaration.Record, filename string) error {
	st := models.FinancialStatement{
		TCVKNHash:   auth.HashTCVKN(rec.TCVKN),
		Period:      rec.Period,
		Ciro:        rec.Ciro,
		Gider:       rec.Gider,
		DevredenKDV: rec.DevredenKDV,
		POSTahsilat: rec.POSTahsilat,
		PDFFilename: filename,
		ProcessedAt: time.Now(),
	}
	return database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tc_vkn_hash"}, {Name: "period"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ciro", "gider", "devreden_kdv", "pos_tahsilat", "pdf_filename", "processed_at",
		}),
	}).Create(&st).Error
}

// -----------------------------------
// POST /api/mali/admin/upload-pdf
// Tek PDF parse edilip kaydedilir
// -----------------------------------
func UploadPDFHandler(cfg *config.Config, asm *declaration.Assembler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.CheckAdminPassword(cfg, c.FormValue("password")); err != nil {
			return err
		}

		file, err := c.FormFile("pdf")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yok")
		}
		data, err := readUpload(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya okunamadı")
		}

		res, err := asm.ParseDocument(c.Context(), declaration.Document{
			Filename: file.Filename,
			PDF:      data,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := upsertRecord(res.Record, file.Filename); err != nil {
			log.Printf("Beyanname kaydedilemedi (%s): %v", file.Filename, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt başarısız")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"file":    file.Filename,
			"parsed":  res.Record,
		})
	}
}

// -----------------------------------
// POST /api/mali/admin/upload-pdfs
// Toplu yükleme, 200 dosyaya kadar. Bir dosyanın hatası partiyi
// düşürmez, dosya bazında raporlanır.
// -----------------------------------
func UploadPDFBatchHandler(cfg *config.Config, asm *declaration.Assembler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.CheckAdminPassword(cfg, c.FormValue("password")); err != nil {
			return err
		}

		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "PDF yok!")
		}
		files := form.File["pdfs"]
		if len(files) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "PDF yok!")
		}
		if len(files) > maxBatchSize {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("En fazla %d dosya yüklenebilir", maxBatchSize))
		}

		log.Printf("%d PDF yükleniyor...", len(files))

		docs := make([]declaration.Document, 0, len(files))
		type fileError struct {
			File  string `json:"file"`
			Error string `json:"error"`
		}
		var readErrors []fileError
		for _, file := range files {
			data, err := readUpload(file)
			if err != nil {
				readErrors = append(readErrors, fileError{File: file.Filename, Error: "Dosya okunamadı"})
				continue
			}
			docs = append(docs, declaration.Document{Filename: file.Filename, PDF: data})
		}

		batch := asm.ParseBatch(c.Context(), docs)

		type fileSuccess struct {
			File   string  `json:"file"`
			Period string  `json:"period"`
			TC     string  `json:"tc"`
			Ciro   float64 `json:"ciro"`
			Gider  float64 `json:"gider"`
		}
		successes := make([]fileSuccess, 0, len(batch.Success))
		errors := append([]fileError{}, readErrors...)

		for _, s := range batch.Success {
			if err := upsertRecord(s.Record, s.Filename); err != nil {
				log.Printf("Beyanname kaydedilemedi (%s): %v", s.Filename, err)
				errors = append(errors, fileError{File: s.Filename, Error: "Kayıt başarısız"})
				continue
			}
			successes = append(successes, fileSuccess{
				File:   s.Filename,
				Period: s.Record.PeriodLabel,
				TC:     s.Record.TCVKN,
				Ciro:   s.Record.Ciro,
				Gider:  s.Record.Gider,
			})
		}
		for _, e := range batch.Errors {
			errors = append(errors, fileError{File: e.Filename, Error: e.Reason})
		}

		log.Printf("Sonuç: %d başarılı, %d hatalı", len(successes), len(errors))

		return c.JSON(fiber.Map{
			"success": true,
			"results": fiber.Map{"success": successes, "errors": errors},
		})
	}
}
