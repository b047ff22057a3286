package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"voiceki.app/catalog/common/llm"
)

type schemaProbe struct {
	Name  string   `json:"name"`
	Sites []string `json:"sites"`
}

var _ = Describe("GenerateSchema", func() {
	It("produces a strict object schema without references", func() {
		schema := llm.GenerateSchema[schemaProbe]()

		data, err := json.Marshal(schema)
		Expect(err).NotTo(HaveOccurred())

		var raw map[string]any
		Expect(json.Unmarshal(data, &raw)).To(Succeed())
		Expect(raw["type"]).To(Equal("object"))
		Expect(raw["additionalProperties"]).To(Equal(false))
		Expect(raw).NotTo(HaveKey("$defs"))

		props, ok := raw["properties"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(props).To(HaveKey("name"))
		Expect(props).To(HaveKey("sites"))
	})
})

var _ = Describe("Temp", func() {
	It("returns a pointer to the given temperature", func() {
		t := llm.Temp(0.2)
		Expect(t).NotTo(BeNil())
		Expect(*t).To(Equal(0.2))
	})
})

var _ = Describe("IsRetryable", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("returns false for nil errors", func() {
		Expect(llm.IsRetryable(ctx, nil)).To(BeFalse())
	})

	It("returns false for context cancellation", func() {
		Expect(llm.IsRetryable(ctx, context.Canceled)).To(BeFalse())
		Expect(llm.IsRetryable(ctx, fmt.Errorf("wrapped: %w", context.DeadlineExceeded))).To(BeFalse())
	})

	It("retries rate limits", func() {
		err := &openai.Error{StatusCode: 429}
		Expect(llm.IsRetryable(ctx, err)).To(BeTrue())
	})

	It("retries server errors", func() {
		err := &openai.Error{StatusCode: 503}
		Expect(llm.IsRetryable(ctx, err)).To(BeTrue())
	})

	It("does not retry client errors", func() {
		err := &openai.Error{StatusCode: 400}
		Expect(llm.IsRetryable(ctx, err)).To(BeFalse())
	})

	It("retries plain network errors", func() {
		Expect(llm.IsRetryable(ctx, errors.New("connection refused"))).To(BeTrue())
	})
})

var _ = Describe("New", func() {
	It("rejects an empty API key", func() {
		_, err := llm.New(llm.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown providers", func() {
		_, err := llm.New(llm.Config{Provider: "cohere", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	It("defaults to the OpenAI provider", func() {
		client, err := llm.New(llm.Config{APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Model()).To(Equal("gpt-4o-mini"))
	})

	It("builds an Anthropic client when requested", func() {
		client, err := llm.New(llm.Config{Provider: llm.ProviderAnthropic, APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Model()).To(Equal("claude-sonnet-4-5-20250514"))
	})
})
