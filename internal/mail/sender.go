package mail

import (
	"fmt"
	"net/smtp"

	"yavuzel-backend/internal/config"
)

// EmailSender: doğrulama kodunu e-postayla iletir. Testlerde mock ile
// değiştirilir.
type EmailSender interface {
	SendVerificationCode(toEmail, code string) error
}

type SMTPSender struct {
	host       string
	port       int
	user       string
	pass       string
	senderName string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		user:       cfg.SMTPUser,
		pass:       cfg.SMTPPass,
		senderName: cfg.SenderName,
	}
}

const verificationBodyTmpl = `<div style="font-family: Arial; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #E4380D;">E-posta Doğrulama</h2>
  <p>Hesabınızı oluşturmak için aşağıdaki doğrulama kodunu kullanın:</p>
  <div style="background: #f5f5f5; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #E4380D; border-radius: 8px; margin: 20px 0;">
    %s
  </div>
  <p style="color: #666;">Bu kod <strong>2 dakika</strong> boyunca geçerlidir.</p>
  <p style="color: #999; font-size: 12px;">%s</p>
</div>`

func (s *SMTPSender) SendVerificationCode(toEmail, code string) error {
	message := fmt.Sprintf("From: %q <%s>\r\n", s.senderName, s.user)
	message += fmt.Sprintf("To: %s\r\n", toEmail)
	// "E-posta Doğrulama Kodu" — başlıkta Türkçe karakter için RFC 2047
	message += "Subject: =?UTF-8?B?RS1wb3N0YSBEb8SfcnVsYW1hIEtvZHU=?=\r\n"
	message += "MIME-version: 1.0\r\n"
	message += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	message += "\r\n" + fmt.Sprintf(verificationBodyTmpl, code, s.senderName)

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.user, []string{toEmail}, []byte(message)); err != nil {
		return fmt.Errorf("e-posta gönderilemedi: %w", err)
	}
	return nil
}
