package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lecternhq/lectern/pkg/llm"
	"github.com/lecternhq/lectern/pkg/usage"
)

var _ = Describe("GET /api/health", func() {
	It("reports ok when the model probe succeeds", func() {
		var seen *llm.ChatRequest
		model := &fakeModel{
			converse: func(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
				seen = req
				return &llm.ChatResponse{Response: "Hello!", ModelID: "test-model"}, nil
			},
		}
		s := newTestServer(model, nil)

		resp := doJSON(s, http.MethodGet, "/api/health", "")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var out map[string]string
		Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
		Expect(out["status"]).To(Equal("ok"))
		Expect(out["bedrock"]).To(Equal("connected"))

		// The probe is a tiny bounded invocation, not a full completion.
		Expect(seen.Messages).To(HaveLen(1))
		Expect(seen.Messages[0].Content).To(Equal("Hello"))
		Expect(*seen.MaxTokens).To(Equal(10))
	})

	It("reports degraded when the model probe fails", func() {
		model := &fakeModel{
			converse: func(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
				return nil, errors.New("no credentials")
			},
		}
		s := newTestServer(model, nil)

		resp := doJSON(s, http.MethodGet, "/api/health", "")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var out map[string]string
		Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
		Expect(out["status"]).To(Equal("degraded"))
		Expect(out["bedrock"]).To(Equal("unreachable"))
	})
})

var _ = Describe("GET /api/usage", func() {
	It("returns accumulated totals keyed by model", func() {
		s := newTestServer(echoModel("hi"), nil)
		s.totals.Record("test-model", llm.Usage{InputTokens: 3, OutputTokens: 5, TotalTokens: 8})
		s.totals.Record("test-model", llm.Usage{InputTokens: 1, OutputTokens: 1, TotalTokens: 2})

		resp := doJSON(s, http.MethodGet, "/api/usage", "")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var out map[string]usage.Totals
		Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
		Expect(out["test-model"].Requests).To(Equal(2))
		Expect(out["test-model"].TotalTokens).To(Equal(10))
	})

	It("returns an empty object before any requests", func() {
		s := newTestServer(echoModel("hi"), nil)

		resp := doJSON(s, http.MethodGet, "/api/usage", "")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var out map[string]usage.Totals
		Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
		Expect(out).To(BeEmpty())
	})
})
