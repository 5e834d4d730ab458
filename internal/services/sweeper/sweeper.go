// Package sweeper содержит фоновую задачу автоподтверждения заявок:
// заявки, остающиеся в pending дольше порога, переводятся в confirmed
// одним условным обновлением, а уведомления о них уходят в RabbitMQ.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/rephome/repair-booking/internal/lib/rabbitmq"
	"github.com/rephome/repair-booking/internal/lib/sl"
	"github.com/rephome/repair-booking/internal/metrics"
	"github.com/rephome/repair-booking/internal/models"
)

// Repository определяет метод хранилища для массового подтверждения заявок.
type Repository interface {
	// ConfirmStalePending переводит в confirmed все pending-заявки,
	// созданные не позже cutoff, и возвращает данные для уведомлений.
	ConfirmStalePending(ctx context.Context, cutoff time.Time) ([]models.ConfirmedNotice, error)
}

// Publisher отправляет уведомление о подтвержденной заявке.
type Publisher interface {
	PublishConfirmed(notice models.ConfirmedNotice) error
}

// AMQPPublisher публикует уведомления в exchange notifications.
type AMQPPublisher struct {
	ch *amqp.Channel
}

// NewAMQPPublisher создает новый экземпляр AMQPPublisher.
func NewAMQPPublisher(ch *amqp.Channel) *AMQPPublisher {
	return &AMQPPublisher{ch: ch}
}

// PublishConfirmed отправляет уведомление с ключом confirmed.
func (p *AMQPPublisher) PublishConfirmed(notice models.ConfirmedNotice) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.NotificationExchange, rabbitmq.BookingConfirmedKey, notice)
}

// Service периодически подтверждает залежавшиеся заявки.
type Service struct {
	repo       Repository
	pub        Publisher
	log        *slog.Logger
	staleAfter time.Duration
	interval   time.Duration
	now        func() time.Time
}

// New создает новый Service. nowFn позволяет подменять часы в тестах,
// nil означает time.Now.
func New(repo Repository, pub Publisher, log *slog.Logger, staleAfter, interval time.Duration, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		repo:       repo,
		pub:        pub,
		log:        log,
		staleAfter: staleAfter,
		interval:   interval,
		now:        nowFn,
	}
}

// Run крутит цикл подтверждения до отмены контекста. Первый проход
// выполняется сразу, не дожидаясь первого тика.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("stopping booking sweeper")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep выполняет один проход: подтверждает заявки старше порога и
// публикует уведомления. Ошибка публикации одного уведомления не
// мешает остальным: заявка уже подтверждена в базе.
func (s *Service) Sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.staleAfter)
	notices, err := s.repo.ConfirmStalePending(ctx, cutoff)
	if err != nil {
		s.log.Error("failed to confirm stale bookings", sl.Err(err))
		return
	}
	if len(notices) == 0 {
		return
	}

	metrics.SweepConfirmed.Add(float64(len(notices)))
	s.log.Info("auto-confirmed stale bookings", slog.Int("count", len(notices)))

	for _, notice := range notices {
		if err := s.pub.PublishConfirmed(notice); err != nil {
			s.log.Error("failed to publish confirmation notice",
				slog.String("booking_number", notice.BookingNumber), sl.Err(err))
		}
	}
}
