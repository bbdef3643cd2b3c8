package kafka

import "log/slog"

type MessageWriter = messageWriter

func NewPublisherWithWriter(w MessageWriter, topic string, logger *slog.Logger) *Publisher {
	return newPublisher(w, topic, logger)
}
