package wire

import (
	"fmt"

	"go.uber.org/zap"

	"account-service/pkg/notifier"
	"account-service/pkg/utils"
)

func newSender(config *utils.Config, log *zap.Logger) (notifier.Sender, error) {
	switch config.Notify.Driver {
	case "", "log":
		log.Warn("Notifications are logged and discarded (NOTIFY_DRIVER=log)")
		return notifier.NewLogSender(log), nil
	case "smtp":
		return notifier.NewSMTPSender(notifier.SMTPConfig{
			Host:     config.Email.Host,
			Port:     config.Email.Port,
			Username: config.Email.User,
			Password: config.Email.Password,
			From:     config.Email.From,
		})
	case "nsq":
		return notifier.NewNSQSender(config.NSQ.Addr, config.NSQ.Topic)
	default:
		return nil, fmt.Errorf("unknown notify driver %q", config.Notify.Driver)
	}
}

func newDispatcher(sender notifier.Sender, config *utils.Config, log *zap.Logger) *notifier.Dispatcher {
	return notifier.NewDispatcher(sender, log, notifier.DispatcherOptions{
		Workers:    config.Notify.Workers,
		QueueSize:  config.Notify.QueueSize,
		MaxRetries: config.Notify.MaxRetries,
		Timeout:    config.Notify.Timeout,
	})
}
