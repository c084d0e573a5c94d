package main

import (
	"log"
	"strings"

	"yavuzel-backend/internal/accounting"
	"yavuzel-backend/internal/auth"
	"yavuzel-backend/internal/config"
	"yavuzel-backend/internal/database"
	"yavuzel-backend/internal/declaration"
	"yavuzel-backend/internal/mail"
	"yavuzel-backend/internal/mali"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	// Parse stratejisi konfigürasyonda bir kez seçilir, çalışma
	// anında değişmez
	extractor, err := declaration.NewExtractor(cfg.ParseStrategy, cfg.GeminiModel)
	if err != nil {
		log.Fatal(err)
	}
	assembler := declaration.NewAssembler(extractor, cfg.ParseTimeout, cfg.BatchWorkers)
	log.Println("Parse stratejisi:", cfg.ParseStrategy)

	otpStore := mail.NewOTPStore()
	rateLimiter := mail.NewRateLimiter()
	sender := mail.NewSMTPSender(cfg)

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024, // toplu PDF yüklemeleri için
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"error":   e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// E-posta doğrulama (public, IP bazlı rate limit)
	mailRoutes := api.Group("/mail")
	mailRoutes.Post("/send-code", rateLimiter.Middleware(), mail.SendCodeHandler(otpStore, sender))
	mailRoutes.Post("/verify-otp", mail.VerifyCodeHandler(otpStore))
	mailRoutes.Post("/verify-code", mail.VerifyCodeHandler(otpStore)) // eski istemci uyumluluğu

	// Admin yüklemeleri: form'daki admin şifresiyle korunur
	maliRoutes := api.Group("/mali")
	maliRoutes.Post("/admin/test-parse", mali.TestParseHandler(cfg, assembler))
	maliRoutes.Post("/admin/upload-pdf", mali.UploadPDFHandler(cfg, assembler))
	maliRoutes.Post("/admin/upload-pdfs", mali.UploadPDFBatchHandler(cfg, assembler))

	accountingRoutes := api.Group("/accounting")
	accountingRoutes.Post("/upload", accounting.UploadFeeSheetHandler(cfg))

	// Mükellef sorguları: JWT ister
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/mali/financial-periods", mali.FinancialPeriodsHandler())
	protected.Get("/mali/financial-data", mali.LatestFinancialDataHandler())
	protected.Get("/mali/financial-data/:period", mali.FinancialDataByPeriodHandler())
	protected.Get("/mali/financial-yearly/:year", mali.FinancialYearlyHandler())

	protected.Get("/accounting/user/:userId", accounting.UserFeeHandler())
	protected.Get("/accounting/user/:userId/all", accounting.UserFeeAllHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
