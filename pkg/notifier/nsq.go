package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	nsq "github.com/nsqio/go-nsq"
)

var (
	ErrNSQAddrRequired  = errors.New("nsq producer address is required")
	ErrNSQTopicRequired = errors.New("nsq topic is required")
)

// NSQSender hands messages to a mail worker through an NSQ topic.
type NSQSender struct {
	producer *nsq.Producer
	topic    string
}

func NewNSQSender(addr, topic string) (*NSQSender, error) {
	if addr == "" {
		return nil, ErrNSQAddrRequired
	}
	if topic == "" {
		return nil, ErrNSQTopicRequired
	}

	p, err := nsq.NewProducer(addr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("nsq new producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)

	return &NSQSender{producer: p, topic: topic}, nil
}

func (s *NSQSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification %s: %w", msg.ID, err)
	}

	done := make(chan *nsq.ProducerTransaction, 1)
	if err := s.producer.PublishAsync(s.topic, body, done); err != nil {
		return fmt.Errorf("nsq publish %s: %w", s.topic, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case tx := <-done:
		if tx.Error != nil {
			return fmt.Errorf("nsq publish %s: %w", s.topic, tx.Error)
		}
		return nil
	}
}

func (s *NSQSender) Close() error {
	s.producer.Stop()
	return nil
}
