package llm_test

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Teeticode/LLM-EMB/pkg/llm"
)

var _ = Describe("Generation", func() {
	Describe("Content", func() {
		It("returns the string for a text result", func() {
			Expect(llm.TextGeneration("plain answer").Content()).To(Equal("plain answer"))
		})

		It("returns the response field for an object result", func() {
			Expect(llm.ObjectGeneration("object answer", nil).Content()).To(Equal("object answer"))
		})

		It("returns empty for a nil generation", func() {
			var g *llm.Generation
			Expect(g.Content()).To(BeEmpty())
		})
	})

	Describe("HasUsage", func() {
		It("is false for text results", func() {
			Expect(llm.TextGeneration("x").HasUsage()).To(BeFalse())
		})

		It("is false for a null usage", func() {
			Expect(llm.ObjectGeneration("x", json.RawMessage("null")).HasUsage()).To(BeFalse())
		})

		It("is true when a usage object is present", func() {
			g := llm.ObjectGeneration("x", json.RawMessage(`{"prompt_tokens":1}`))
			Expect(g.HasUsage()).To(BeTrue())
		})
	})

	Describe("UnmarshalJSON", func() {
		It("decodes a JSON string as a text result", func() {
			var g llm.Generation
			Expect(json.Unmarshal([]byte(`"hi there"`), &g)).To(Succeed())
			Expect(g.Kind).To(Equal(llm.GenerationText))
			Expect(g.Content()).To(Equal("hi there"))
		})

		It("decodes an object with response and usage", func() {
			var g llm.Generation
			err := json.Unmarshal([]byte(`{"response":"ok","usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`), &g)
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Kind).To(Equal(llm.GenerationObject))
			Expect(g.Content()).To(Equal("ok"))
			Expect(g.HasUsage()).To(BeTrue())
			Expect([]byte(g.Usage)).To(MatchJSON(`{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}`))
		})

		It("rejects an object without a response field", func() {
			var g llm.Generation
			err := json.Unmarshal([]byte(`{"tool_calls":[]}`), &g)
			Expect(errors.Is(err, llm.ErrGeneration)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("no response field")))
		})

		It("keeps an empty response string", func() {
			var g llm.Generation
			Expect(json.Unmarshal([]byte(`{"response":""}`), &g)).To(Succeed())
			Expect(g.Kind).To(Equal(llm.GenerationObject))
			Expect(g.Content()).To(BeEmpty())
		})

		It("rejects a non-string response field", func() {
			var g llm.Generation
			Expect(json.Unmarshal([]byte(`{"response":12}`), &g)).NotTo(Succeed())
		})

		It("rejects arrays", func() {
			var g llm.Generation
			Expect(json.Unmarshal([]byte(`[1,2]`), &g)).NotTo(Succeed())
		})
	})
})
