// Package sender отправляет письма клиентам: код подтверждения при создании
// заявки и уведомление об автоподтверждении из очереди RabbitMQ.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rephome/repair-booking/internal/lib/sl"
	"github.com/rephome/repair-booking/internal/lib/smtp"
	"github.com/rephome/repair-booking/internal/models"
)

// SenderService собирает и отправляет письма через SMTP-транспорт.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendBookingOTP отправляет код подтверждения заявки. Одна попытка,
// решение о повторе остается за вызывающим.
func (s *SenderService) SendBookingOTP(to, bookingNumber, code string) error {
	subject := fmt.Sprintf("Код подтверждения заявки %s", bookingNumber)
	body := fmt.Sprintf(
		"Здравствуйте!\n\nВаш код подтверждения заявки %s: %s\n\nКод действует 10 минут. Если вы не оформляли заявку, просто проигнорируйте это письмо.",
		bookingNumber, code)
	return s.sendEmail(to, subject, body)
}

// SendBookingConfirmed обрабатывает сообщение из очереди подтвержденных
// заявок и отправляет письмо владельцу.
func (s *SenderService) SendBookingConfirmed(body []byte) error {
	var notice models.ConfirmedNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := fmt.Sprintf("Заявка %s подтверждена", notice.BookingNumber)
	text := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВаша заявка на ремонт %s подтверждена. Мастер приедет в выбранное вами время.",
		notice.Name, notice.BookingNumber)
	return s.sendEmail(notice.Email, subject, text)
}

func (s *SenderService) sendEmail(to, subject, body string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Debug("failed to close SMTP client", sl.Err(closeErr))
		}
	}()

	if err = client.Mail(from); err != nil {
		s.log.Error("failed to set mail sender", sl.Err(err))
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		s.log.Error("failed to set recipient", sl.Err(err))
		return fmt.Errorf("failed to set recipient %s: %w", to, err)
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get write closer", sl.Err(err))
		return fmt.Errorf("failed to get write closer: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message", sl.Err(err))
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close write closer", sl.Err(err))
		return fmt.Errorf("failed to close write closer: %w", err)
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}

	s.log.Info("email sent successfully", slog.String("to", to))
	return nil
}
