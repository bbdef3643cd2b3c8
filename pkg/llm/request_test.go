package llm_test

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Teeticode/LLM-EMB/pkg/llm"
)

var _ = Describe("ChatInput", func() {
	Describe("UnmarshalJSON", func() {
		It("selects prompt mode when a prompt key is present", func() {
			var in llm.ChatInput
			Expect(json.Unmarshal([]byte(`{"prompt":"tell me a joke"}`), &in)).To(Succeed())
			Expect(in.Kind).To(Equal(llm.KindPrompt))
			Expect(in.Prompt).To(Equal("tell me a joke"))
			Expect(in.Messages).To(BeNil())
		})

		It("prefers prompt over messages when both are present", func() {
			var in llm.ChatInput
			err := json.Unmarshal([]byte(`{"prompt":"p","messages":[{"role":"user","content":"m"}]}`), &in)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Kind).To(Equal(llm.KindPrompt))
		})

		It("treats an empty prompt as prompt mode", func() {
			var in llm.ChatInput
			Expect(json.Unmarshal([]byte(`{"prompt":""}`), &in)).To(Succeed())
			Expect(in.Kind).To(Equal(llm.KindPrompt))
			Expect(in.Prompt).To(BeEmpty())
		})

		It("selects messages mode otherwise", func() {
			var in llm.ChatInput
			err := json.Unmarshal([]byte(`{"messages":[{"role":"system","content":"be brief"},{"role":"user","content":"hi"}]}`), &in)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Kind).To(Equal(llm.KindMessages))
			Expect(in.Messages).To(Equal([]llm.Message{
				llm.NewTextMessage("system", "be brief"),
				llm.NewTextMessage("user", "hi"),
			}))
		})

		It("rejects a null prompt", func() {
			var in llm.ChatInput
			err := json.Unmarshal([]byte(`{"prompt":null}`), &in)
			Expect(errors.Is(err, llm.ErrInvalidInput)).To(BeTrue())
		})

		It("rejects a non-string prompt", func() {
			var in llm.ChatInput
			err := json.Unmarshal([]byte(`{"prompt":42}`), &in)
			Expect(errors.Is(err, llm.ErrInvalidInput)).To(BeTrue())
		})

		It("rejects a body with neither prompt nor messages", func() {
			var in llm.ChatInput
			err := json.Unmarshal([]byte(`{"model":"x"}`), &in)
			Expect(errors.Is(err, llm.ErrInvalidInput)).To(BeTrue())
		})

		It("rejects a message without content", func() {
			var in llm.ChatInput
			err := json.Unmarshal([]byte(`{"messages":[{"role":"user"}]}`), &in)
			Expect(errors.Is(err, llm.ErrMissingContent)).To(BeTrue())
		})

		It("rejects non-string message content", func() {
			var in llm.ChatInput
			err := json.Unmarshal([]byte(`{"messages":[{"role":"user","content":[{"type":"text"}]}]}`), &in)
			Expect(errors.Is(err, llm.ErrInvalidInput)).To(BeTrue())
		})

		It("rejects malformed JSON", func() {
			var in llm.ChatInput
			Expect(json.Unmarshal([]byte(`{"prompt":`), &in)).NotTo(Succeed())
		})
	})

	Describe("MarshalJSON", func() {
		It("emits only the prompt field in prompt mode", func() {
			data, err := json.Marshal(llm.NewPromptInput("hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{"prompt":"hello"}`))
		})

		It("emits only the messages field in messages mode", func() {
			data, err := json.Marshal(llm.NewMessagesInput([]llm.Message{llm.NewTextMessage("user", "hi")}))
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{"messages":[{"role":"user","content":"hi"}]}`))
		})

		It("emits an empty list rather than null for no messages", func() {
			data, err := json.Marshal(llm.NewMessagesInput(nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{"messages":[]}`))
		})
	})

	Describe("Texts", func() {
		It("returns the prompt in prompt mode", func() {
			Expect(llm.NewPromptInput("a b").Texts()).To(Equal([]string{"a b"}))
		})

		It("returns each message content in order", func() {
			in := llm.NewMessagesInput([]llm.Message{
				llm.NewTextMessage("user", "a b"),
				llm.NewTextMessage("assistant", "c"),
			})
			Expect(in.Texts()).To(Equal([]string{"a b", "c"}))
		})
	})

	It("names its kinds", func() {
		Expect(llm.KindPrompt.String()).To(Equal("prompt"))
		Expect(llm.KindMessages.String()).To(Equal("messages"))
	})
})
