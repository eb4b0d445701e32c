package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finance_service/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	appID         = "finance_service"
	headerPurpose = "purpose"
)

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

// New connects and declares the notification queue together with its
// dead-letter queue, which collects messages that failed twice.
func New(urlForConn string, queueName string) (*RabbitMQClient, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(urlForConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	closeAll := func() {
		_ = ch.Close()
		_ = conn.Close()
	}

	if _, err := ch.QueueDeclare(DeadLetterQueue(queueName), true, false, false, false, nil); err != nil {
		closeAll()
		return nil, fmt.Errorf("%s: declare dead-letter queue: %w", op, err)
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, queueArgs(queueName))
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

func DeadLetterQueue(queueName string) string {
	return queueName + ".dead"
}

// queueArgs routes rejected deliveries through the default exchange to the
// dead-letter queue.
func queueArgs(queueName string) amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DeadLetterQueue(queueName),
	}
}

func (r *RabbitMQClient) SendMessage(ctx context.Context, msg models.Message) error {
	const op = "rabbitmq.SendMessage"

	p, err := publishing(msg, time.Now())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.channel.PublishWithContext(ctx, "", r.queue.Name, false, false, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// publishing tags the message with its purpose so consumers and the
// management UI can tell welcome mail from other traffic without decoding it.
func publishing(msg models.Message, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, err
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		AppId:        appID,
		Type:         msg.Purpose,
		Headers:      amqp.Table{headerPurpose: msg.Purpose},
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}

// StartReading consumes the queue until ctx is cancelled or the channel closes.
func (r *RabbitMQClient) StartReading(ctx context.Context, handle func(body []byte) error) error {
	const op = "rabbitmq.StartReading"

	if err := r.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	deliveries, err := r.channel.ConsumeWithContext(ctx, r.queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("%s: delivery channel closed", op)
			}

			_ = settle(d, handle(d.Body))
		}
	}
}

// settle acks a handled delivery. A failed delivery is requeued once, and a
// second failure rejects it into the dead-letter queue.
func settle(d amqp.Delivery, handleErr error) error {
	switch {
	case handleErr == nil:
		return d.Ack(false)
	case !d.Redelivered:
		return d.Nack(false, true)
	default:
		return d.Reject(false)
	}
}

func (r *RabbitMQClient) Close() {
	_ = r.channel.Close()
	_ = r.conn.Close()
}
