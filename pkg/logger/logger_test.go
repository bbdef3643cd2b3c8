package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Teeticode/LLM-EMB/pkg/logger"
)

var errSinkFull = errors.New("sink full")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errSinkFull }

func decodeLine(line string) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal([]byte(strings.TrimSpace(line)), &parsed)).To(Succeed())
	return parsed
}

var _ = Describe("NewFromFormat", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	It("writes one JSON object per record for json", func() {
		l := logger.NewFromFormat(logger.FormatJSON, false, logger.WithWriter(&buf))
		l.Info("request", "path", "/v1/embeddings", "status", 200)

		parsed := decodeLine(buf.String())
		Expect(parsed["msg"]).To(Equal("request"))
		Expect(parsed["path"]).To(Equal("/v1/embeddings"))
		Expect(parsed["status"]).To(BeNumerically("==", 200))
	})

	It("ignores case and surrounding space in the format name", func() {
		l := logger.NewFromFormat(" JSON ", false, logger.WithWriter(&buf))
		_, ok := l.Handler().(*slog.JSONHandler)
		Expect(ok).To(BeTrue())
	})

	It("writes key=value pairs for text", func() {
		l := logger.NewFromFormat(logger.FormatText, false, logger.WithWriter(&buf))
		l.Info("backends configured", "chat_provider", "ollama")

		Expect(buf.String()).To(ContainSubstring("msg=\"backends configured\""))
		Expect(buf.String()).To(ContainSubstring("chat_provider=ollama"))
	})

	It("falls back to text for unknown formats", func() {
		l := logger.NewFromFormat("yaml", false, logger.WithWriter(&buf))
		_, ok := l.Handler().(*slog.TextHandler)
		Expect(ok).To(BeTrue())
	})

	It("uses the charm handler for pretty", func() {
		l := logger.NewFromFormat(logger.FormatPretty, false, logger.WithWriter(&buf))
		l.Info("starting proxy server", "listen", ":8787")

		Expect(buf.String()).To(ContainSubstring("starting proxy server"))
		Expect(buf.String()).To(ContainSubstring(":8787"))
		Expect(json.Valid(buf.Bytes())).To(BeFalse())
	})

	It("only emits debug records when debug is set", func() {
		quiet := logger.NewFromFormat(logger.FormatText, false, logger.WithWriter(&buf))
		quiet.Debug("vectorize query")
		Expect(buf.String()).To(BeEmpty())

		loud := logger.NewFromFormat(logger.FormatText, true, logger.WithWriter(&buf))
		loud.Debug("vectorize query")
		Expect(buf.String()).To(ContainSubstring("vectorize query"))
	})

	It("writes to every writer given", func() {
		var other bytes.Buffer
		l := logger.NewFromFormat(logger.FormatText, false, logger.WithWriters(&buf, &other))
		l.Info("twice")

		Expect(buf.String()).To(ContainSubstring("twice"))
		Expect(other.String()).To(ContainSubstring("twice"))
	})
})

var _ = Describe("Tee", func() {
	var console, file bytes.Buffer

	BeforeEach(func() {
		console.Reset()
		file.Reset()
	})

	It("keeps the console format and appends JSON to the file", func() {
		base := logger.NewFromFormat(logger.FormatText, false, logger.WithWriter(&console))
		l := logger.Tee(base, &file, false)

		l.Info("request", "method", "POST", "path", "/vectorize")

		Expect(console.String()).To(ContainSubstring("path=/vectorize"))
		parsed := decodeLine(file.String())
		Expect(parsed["msg"]).To(Equal("request"))
		Expect(parsed["method"]).To(Equal("POST"))
	})

	It("carries bound attributes and groups to both sinks", func() {
		base := logger.NewFromFormat(logger.FormatText, false, logger.WithWriter(&console))
		l := logger.Tee(base, &file, false).With("component", "worker").WithGroup("event")

		l.Info("event published", "id", "e-1")

		Expect(console.String()).To(ContainSubstring("component=worker"))
		Expect(console.String()).To(ContainSubstring("event.id=e-1"))

		parsed := decodeLine(file.String())
		Expect(parsed["component"]).To(Equal("worker"))
		group, ok := parsed["event"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(group["id"]).To(Equal("e-1"))
	})

	It("applies the debug level to the file", func() {
		base := logger.NewFromFormat(logger.FormatText, true, logger.WithWriter(&console))

		logger.Tee(base, &file, false).Debug("hidden from file")
		Expect(console.String()).To(ContainSubstring("hidden from file"))
		Expect(file.String()).To(BeEmpty())

		logger.Tee(base, &file, true).Debug("in file")
		Expect(file.String()).To(ContainSubstring("in file"))
	})
})

var _ = Describe("Multi", func() {
	It("keeps writing to later handlers when one fails", func() {
		var buf bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(failingWriter{})),
			logger.New(logger.WithWriter(&buf)),
		)

		err := l.Handler().Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still delivered", 0))
		Expect(errors.Is(err, errSinkFull)).To(BeTrue())
		Expect(buf.String()).To(ContainSubstring("still delivered"))
	})

	It("is enabled when any handler is", func() {
		var info, debug bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&info)),
			logger.New(logger.WithWriter(&debug), logger.WithDebug(true)),
		)

		l.Debug("debug only")
		Expect(info.String()).To(BeEmpty())
		Expect(debug.String()).To(ContainSubstring("debug only"))
	})

	It("is disabled when built from Nop loggers", func() {
		l := logger.Multi(logger.Nop(), logger.Nop())
		Expect(l.Enabled(context.Background(), slog.LevelError)).To(BeFalse())
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level and survives derivation", func() {
		l := logger.Nop()
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			Expect(l.Enabled(context.Background(), level)).To(BeFalse())
		}

		Expect(func() {
			l.With("key", "value").WithGroup("group").Error("msg")
		}).NotTo(Panic())
	})
})
