package mali

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"yavuzel-backend/internal/config"
	"yavuzel-backend/internal/declaration"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	fields declaration.RawFields
}

func (s *stubExtractor) Extract(ctx context.Context, doc declaration.Document) (*declaration.RawFields, error) {
	f := s.fields
	return &f, nil
}

func multipartPDF(t *testing.T, password string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("pdf", "beyanname.pdf")
	require.NoError(t, err)
	fw.Write([]byte("gecersiz pdf icerigi"))
	w.WriteField("password", password)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestTestParseHandler(t *testing.T) {
	cfg := &config.Config{AdminPassword: "s3cret"}
	asm := declaration.NewAssembler(&stubExtractor{fields: declaration.RawFields{
		TCVKN:         "1234567890",
		Year:          "2025",
		Month:         "11",
		MatrahToplami: 351428.83,
		AlisBedelleri: map[int]float64{20: 1000},
		DevredenKDV:   15727732.74,
		POSTahsilat:   120858.65,
	}}, time.Second, 1)

	app := fiber.New()
	app.Post("/api/mali/admin/test-parse", TestParseHandler(cfg, asm))

	body, contentType := multipartPDF(t, "s3cret")
	req := httptest.NewRequest("POST", "/api/mali/admin/test-parse", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))

	assert.Equal(t, true, parsed["success"])
	assert.Equal(t, "beyanname.pdf", parsed["filename"])

	rec := parsed["parsed"].(map[string]interface{})
	assert.Equal(t, "1234567890", rec["tc"])
	assert.Equal(t, "2025-11", rec["period"])
	assert.Equal(t, 351428.83, rec["ciro"])

	// metin örneği her zaman yanıtın parçası; bozuk PDF'te boş kalır
	sample, ok := parsed["textSample"]
	require.True(t, ok)
	assert.Equal(t, "", sample)
}

func TestTestParseHandlerWrongPassword(t *testing.T) {
	cfg := &config.Config{AdminPassword: "s3cret"}
	asm := declaration.NewAssembler(&stubExtractor{}, time.Second, 1)

	app := fiber.New()
	app.Post("/api/mali/admin/test-parse", TestParseHandler(cfg, asm))

	body, contentType := multipartPDF(t, "yanlis")
	req := httptest.NewRequest("POST", "/api/mali/admin/test-parse", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
