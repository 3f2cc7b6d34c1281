// Package notify delivers invitation messages. Mail is never sent from this
// process: invitations are published to kafka for a mailer to consume, or
// only logged when no broker is configured.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type Invitation struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Link      string    `json:"link"`
	InvitedBy int64     `json:"invited_by"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Notifier interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}

// LogNotifier writes the invitation to the log.
type LogNotifier struct{}

func (LogNotifier) SendInvitation(ctx context.Context, inv Invitation) error {
	log.Info().
		Str("email", inv.Email).
		Str("role", inv.Role).
		Str("link", inv.Link).
		Msg("invitation created")
	return nil
}

// KafkaNotifier publishes invitations keyed by email.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// New picks kafka when brokers are configured and the log otherwise.
func New(brokers []string, topic string) Notifier {
	if len(brokers) == 0 {
		return LogNotifier{}
	}
	return NewKafkaNotifier(brokers, topic)
}

func (n *KafkaNotifier) SendInvitation(ctx context.Context, inv Invitation) error {
	if n == nil || n.writer == nil {
		return LogNotifier{}.SendInvitation(ctx, inv)
	}
	msg, err := invitationMessage(inv)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	log.Info().Str("email", inv.Email).Str("topic", n.writer.Topic).Msg("invitation published")
	return nil
}

func (n *KafkaNotifier) Close() error {
	if n == nil || n.writer == nil {
		return nil
	}
	return n.writer.Close()
}

func invitationMessage(inv Invitation) (kafka.Message, error) {
	value, err := json.Marshal(inv)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(inv.Email),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte("user.invited")},
		},
	}, nil
}
