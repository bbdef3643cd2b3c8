package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Teeticode/LLM-EMB/pkg/eventstream"
	llmemblogger "github.com/Teeticode/LLM-EMB/pkg/logger"
	testutils "github.com/Teeticode/LLM-EMB/pkg/utils/test"
)

func newEvent(path string) *eventstream.RequestEvent {
	now := time.Now()
	return eventstream.NewRequestEvent("POST", path, 200, now, now)
}

// blockingPublisher holds every Publish until release is closed.
type blockingPublisher struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingPublisher) Publish(_ context.Context, _ *eventstream.RequestEvent) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return nil
}

func (b *blockingPublisher) Close() error { return nil }

var _ = Describe("Worker Pool", func() {
	var publisher *testutils.MockPublisher

	BeforeEach(func() {
		publisher = testutils.NewMockPublisher()
	})

	Describe("NewPool", func() {
		It("requires a publisher", func() {
			_, err := NewPool(&Config{Logger: llmemblogger.Nop()})
			Expect(err).To(MatchError("publisher is required"))
		})

		It("applies defaults", func() {
			c := &Config{Publisher: publisher, Logger: llmemblogger.Nop()}
			wp, err := NewPool(c)
			Expect(err).NotTo(HaveOccurred())
			defer wp.Close()

			Expect(c.NumWorkers).To(Equal(defaultNumWorkers))
			Expect(c.QueueSize).To(Equal(defaultJobQueueSize))
			Expect(c.PublishTimeout).To(Equal(defaultPublishTimeout))
		})
	})

	Describe("Enqueue", func() {
		It("publishes every queued event before Close returns", func() {
			wp, err := NewPool(&Config{Publisher: publisher, Logger: llmemblogger.Nop()})
			Expect(err).NotTo(HaveOccurred())

			for i := range 10 {
				Expect(wp.Enqueue(Job{Event: newEvent(fmt.Sprintf("/p/%d", i))})).To(BeTrue())
			}
			wp.Close()

			Expect(publisher.Events()).To(HaveLen(10))
		})

		It("drops nil events", func() {
			wp, err := NewPool(&Config{Publisher: publisher, Logger: llmemblogger.Nop()})
			Expect(err).NotTo(HaveOccurred())

			Expect(wp.Enqueue(Job{})).To(BeFalse())
			wp.Close()
			Expect(publisher.Events()).To(BeEmpty())
		})

		It("drops instead of blocking when the queue is full", func() {
			blocker := &blockingPublisher{release: make(chan struct{}), started: make(chan struct{})}
			wp, err := NewPool(&Config{
				Publisher:  blocker,
				NumWorkers: 1,
				QueueSize:  1,
				Logger:     llmemblogger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())

			// First job occupies the only worker.
			Expect(wp.Enqueue(Job{Event: newEvent("/a")})).To(BeTrue())
			Eventually(blocker.started).Should(BeClosed())

			// Second fills the queue, third is dropped.
			Expect(wp.Enqueue(Job{Event: newEvent("/b")})).To(BeTrue())
			Expect(wp.Enqueue(Job{Event: newEvent("/c")})).To(BeFalse())

			close(blocker.release)
			wp.Close()
		})

		It("keeps draining after a publish failure", func() {
			publisher.Err = errors.New("broker down")
			wp, err := NewPool(&Config{Publisher: publisher, NumWorkers: 1, Logger: llmemblogger.Nop()})
			Expect(err).NotTo(HaveOccurred())

			Expect(wp.Enqueue(Job{Event: newEvent("/a")})).To(BeTrue())
			Expect(wp.Enqueue(Job{Event: newEvent("/b")})).To(BeTrue())
			wp.Close()

			Expect(publisher.Attempts()).To(Equal(2))
		})
	})

	Describe("Close", func() {
		It("is safe to call twice", func() {
			wp, err := NewPool(&Config{Publisher: publisher, Logger: llmemblogger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			wp.Close()
			wp.Close()
		})
	})
})
