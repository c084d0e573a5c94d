package accounting

import (
	"errors"
	"fmt"
	"log"

	"yavuzel-backend/internal/auth"
	"yavuzel-backend/internal/config"
	"yavuzel-backend/internal/database"
	"yavuzel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// feeToModel: satırı DB kaydına çevirir; user_id hash'ten çözülebilirse
// bağlanır, çözülemese de kayıt tutulur (kullanıcı sonradan kayıt
// olduğunda hash üzerinden eşleşir).
func feeToModel(fr *FeeRow, year int) models.AccountingFee {
	tcHash := auth.HashTCVKN(fr.TCVKN)

	fee := models.AccountingFee{
		TCVKNHash:  tcHash,
		Year:       year,
		MonthlyFee: fr.MonthlyFee,
	}

	var user models.User
	if err := database.DB.First(&user, "tc_vkn_hash = ?", tcHash).Error; err == nil {
		fee.UserID = &user.ID
	} else {
		masked := fr.TCVKN
		if len(masked) > 3 {
			masked = masked[:3]
		}
		log.Printf("Kullanıcı bulunamadı ama kayıt eklendi: TC %s***", masked)
	}

	fee.JanPaid, fee.FebPaid, fee.MarPaid = fr.Months[0], fr.Months[1], fr.Months[2]
	fee.AprPaid, fee.MayPaid, fee.JunPaid = fr.Months[3], fr.Months[4], fr.Months[5]
	fee.JulPaid, fee.AugPaid, fee.SepPaid = fr.Months[6], fr.Months[7], fr.Months[8]
	fee.OctPaid, fee.NovPaid, fee.DecPaid = fr.Months[9], fr.Months[10], fr.Months[11]

	return fee
}

// -----------------------------------
// POST /api/accounting/upload
// Ücret tablosu Excel'i, admin şifresiyle
// -----------------------------------
func UploadFeeSheetHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.CheckAdminPassword(cfg, c.FormValue("password")); err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yok")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya açılamadı")
		}
		defer file.Close()

		sheet, err := ParseFeeSheet(file)
		if err != nil {
			if errors.Is(err, ErrSheetEmpty) || errors.Is(err, ErrNoTCVKNColumn) || errors.Is(err, ErrNoMonthlyFeeColumn) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı")
		}

		var inserted, updated, skipped int
		var importErrors []string

		for i := range sheet.Rows {
			fee := feeToModel(&sheet.Rows[i], sheet.Year)

			var existing models.AccountingFee
			err := database.DB.
				Where("tc_vkn_hash = ? AND year = ?", fee.TCVKNHash, fee.Year).
				First(&existing).Error
			if err == nil {
				fee.ID = existing.ID
				if err := database.DB.Save(&fee).Error; err != nil {
					importErrors = append(importErrors, err.Error())
					skipped++
					continue
				}
				updated++
			} else {
				if err := database.DB.Create(&fee).Error; err != nil {
					importErrors = append(importErrors, err.Error())
					skipped++
					continue
				}
				inserted++
			}
		}

		if len(importErrors) > 10 {
			importErrors = importErrors[:10]
		}

		log.Printf("Excel yüklendi: %d eklendi, %d güncellendi, %d atlandı", inserted, updated, skipped)

		return c.JSON(fiber.Map{
			"success":  true,
			"message":  fmt.Sprintf("%d eklendi, %d güncellendi, %d atlandı", inserted, updated, skipped),
			"inserted": inserted,
			"updated":  updated,
			"skipped":  skipped,
			"errors":   importErrors,
		})
	}
}

// -----------------------------------
// GET /api/accounting/user/:userId
// ?year=2025 (yoksa en güncel yıl)
// -----------------------------------
func UserFeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := database.DB.First(&user, "id = ?", c.Params("userId")).Error; err != nil {
			return c.JSON(fiber.Map{"success": true, "data": nil})
		}

		query := database.DB.Where("tc_vkn_hash = ?", user.TCVKNHash)
		if year := c.Query("year"); year != "" {
			query = query.Where("year = ?", year)
		} else {
			query = query.Order("year desc")
		}

		var fee models.AccountingFee
		if err := query.First(&fee).Error; err != nil {
			return c.JSON(fiber.Map{"success": true, "data": nil})
		}

		return c.JSON(fiber.Map{"success": true, "data": fee})
	}
}

// -----------------------------------
// GET /api/accounting/user/:userId/all
// Tüm yıllar
// -----------------------------------
func UserFeeAllHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := database.DB.First(&user, "id = ?", c.Params("userId")).Error; err != nil {
			return c.JSON(fiber.Map{"success": true, "data": []models.AccountingFee{}, "years": []int{}})
		}

		var fees []models.AccountingFee
		if err := database.DB.
			Where("tc_vkn_hash = ?", user.TCVKNHash).
			Order("year desc").
			Find(&fees).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri okunamadı")
		}

		years := make([]int, 0, len(fees))
		for _, f := range fees {
			years = append(years, f.Year)
		}

		return c.JSON(fiber.Map{"success": true, "data": fees, "years": years})
	}
}
