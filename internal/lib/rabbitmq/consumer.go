package rabbitmq

import (
	"context"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// ConsumerMessage создает потребителя сообщений из очереди RabbitMQ.
// Обработчик вызывается на каждое сообщение, не более 10 одновременно.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, 10)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					processDelivery(delivery, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// processDelivery подтверждает обработанное сообщение либо возвращает его
// в очередь. Сообщение, не обработанное и после повторной доставки,
// в очередь не возвращается: нечитаемое сообщение крутилось бы бесконечно.
func processDelivery(delivery amqp.Delivery, handler func([]byte) error) {
	if err := handler(delivery.Body); err != nil {
		requeue := !delivery.Redelivered
		if !requeue {
			log.Printf("dropping message after redelivery: %v", err)
		}
		if nackErr := delivery.Nack(false, requeue); nackErr != nil {
			log.Printf("failed to nack message: %v", nackErr)
		}
		return
	}
	if ackErr := delivery.Ack(false); ackErr != nil {
		log.Printf("failed to ack message: %v", ackErr)
	}
}
