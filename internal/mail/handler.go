package mail

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type sendCodeRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// -----------------------------------
// POST /api/mail/send-code
// -----------------------------------
func SendCodeHandler(store *OTPStore, sender EmailSender) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body sendCodeRequest
		if err := c.BodyParser(&body); err != nil || !strings.Contains(body.Email, "@") {
			return fiber.NewError(fiber.StatusBadRequest, "Geçerli bir e-posta adresi girin")
		}

		code, err := store.GenerateCode(body.Email)
		if err != nil {
			log.Printf("OTP üretilemedi: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Kod oluşturulamadı")
		}

		if err := sender.SendVerificationCode(body.Email, code); err != nil {
			log.Printf("OTP e-postası gönderilemedi: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError,
				"E-posta gönderilemedi. Lütfen tekrar deneyin.")
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"message":   "Doğrulama kodu e-posta adresinize gönderildi",
			"expiresIn": int(otpTTL.Seconds()),
		})
	}
}

// -----------------------------------
// POST /api/mail/verify-otp (ve /verify-code)
// -----------------------------------
func VerifyCodeHandler(store *OTPStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body verifyRequest
		if err := c.BodyParser(&body); err != nil || body.Email == "" || body.Code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "E-posta ve kod gereklidir")
		}

		err := store.Verify(body.Email, body.Code)
		if err == nil {
			return c.JSON(fiber.Map{"success": true, "message": "E-posta doğrulandı"})
		}

		var wrong *WrongCodeError
		switch {
		case errors.Is(err, ErrCodeNotFound):
			return fiber.NewError(fiber.StatusNotFound,
				"Doğrulama kodu bulunamadı. Lütfen yeni kod gönderin.")
		case errors.Is(err, ErrCodeExpired):
			return fiber.NewError(fiber.StatusGone,
				"Kodun süresi doldu. Lütfen yeni kod gönderin.")
		case errors.Is(err, ErrTooManyAttempts):
			return fiber.NewError(fiber.StatusTooManyRequests,
				"Çok fazla hatalı deneme. Lütfen yeni kod gönderin.")
		case errors.As(err, &wrong):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success":           false,
				"message":           wrong.Error(),
				"remainingAttempts": wrong.Remaining,
			})
		}

		log.Printf("OTP doğrulama hatası: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Doğrulama başarısız")
	}
}
