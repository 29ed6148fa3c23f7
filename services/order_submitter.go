package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"storefront/models"
)

// OrderSubmitter is the order-submission collaborator behind checkout.
type OrderSubmitter interface {
	Submit(ctx context.Context, order models.Order) error
}

// NoopOrderSubmitter accepts every order without sending it anywhere.
type NoopOrderSubmitter struct{}

func (NoopOrderSubmitter) Submit(ctx context.Context, order models.Order) error {
	return nil
}

type KafkaOrderSubmitter struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewKafkaOrderSubmitter(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaOrderSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaOrderSubmitter{producer: producer, topic: topic, logger: logger}
}

func (k *KafkaOrderSubmitter) Submit(ctx context.Context, order models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(order.VisitorID),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish %s: %w", k.topic, err)
	}

	k.logger.Info("order published",
		zap.String("topic", k.topic),
		zap.String("order_id", order.ID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailOrderSubmitter struct {
	sender   MailSender
	from     string
	to       string
	currency string
}

func NewEmailOrderSubmitter(sender MailSender, from, to, currency string) *EmailOrderSubmitter {
	return &EmailOrderSubmitter{sender: sender, from: from, to: to, currency: currency}
}

func (e *EmailOrderSubmitter) Submit(ctx context.Context, order models.Order) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.to)
	m.SetHeader("Subject", fmt.Sprintf("Новый заказ %s", order.ID))
	m.SetBody("text/plain", e.body(order))

	if err := e.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send order email: %w", err)
	}
	return nil
}

func (e *EmailOrderSubmitter) body(order models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Заказ: %s\n", order.ID)
	fmt.Fprintf(&b, "Покупатель: %s\n", order.VisitorID)
	fmt.Fprintf(&b, "Дата: %s\n\n", order.PlacedAt.Format("2006-01-02 15:04:05"))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%s x%d: %d %s\n", item.Title, item.Quantity, item.Subtotal(), e.currency)
	}
	fmt.Fprintf(&b, "\nТоваров: %d\nИтого: %d %s\n", order.ItemCount, order.Total, e.currency)
	return b.String()
}

// MultiOrderSubmitter submits to each submitter in turn and stops at the
// first error.
type MultiOrderSubmitter []OrderSubmitter

func (m MultiOrderSubmitter) Submit(ctx context.Context, order models.Order) error {
	for _, s := range m {
		if err := s.Submit(ctx, order); err != nil {
			return err
		}
	}
	return nil
}
