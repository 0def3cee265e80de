package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lecternhq/lectern/pkg/llm"
	"github.com/lecternhq/lectern/pkg/sse"
)

// streamFrame decodes any relay frame shape.
type streamFrame struct {
	Text  *string `json:"text"`
	Done  bool    `json:"done"`
	Usage struct {
		StopReason string `json:"stopReason"`
	} `json:"usage"`
	Error string `json:"error"`
}

// readFrames consumes all SSE frames from an HTTP response body.
func readFrames(resp *http.Response) []streamFrame {
	defer resp.Body.Close()

	var frames []streamFrame
	r := sse.NewReader(resp.Body)
	for {
		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if ev == nil {
			return frames
		}

		var f streamFrame
		Expect(json.Unmarshal([]byte(ev.Data), &f)).To(Succeed())
		frames = append(frames, f)
	}
}

var _ = Describe("POST /api/streaming/chats", func() {
	const chatBody = `{"messages":[{"role":"user","content":"hello"}]}`

	Context("with a normally completing stream", func() {
		It("streams one frame per delta followed by a done frame", func() {
			model := &fakeModel{
				stream: scriptedStream(
					llm.ContentDelta{Text: "Hel"},
					llm.ContentDelta{Text: "lo"},
					llm.ContentDelta{Text: "!"},
					llm.StreamStop{StopReason: "end_turn"},
				),
			}
			s := newTestServer(model, nil)

			resp := doJSON(s, http.MethodPost, "/api/streaming/chats", chatBody)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/event-stream"))
			Expect(resp.Header.Get("Cache-Control")).To(Equal("no-cache"))

			frames := readFrames(resp)
			Expect(frames).To(HaveLen(4))
			Expect(*frames[0].Text).To(Equal("Hel"))
			Expect(*frames[1].Text).To(Equal("lo"))
			Expect(*frames[2].Text).To(Equal("!"))
			Expect(frames[3].Done).To(BeTrue())
			Expect(frames[3].Usage.StopReason).To(Equal("end_turn"))
		})

		It("streams a done frame for an immediately stopping model", func() {
			model := &fakeModel{
				stream: scriptedStream(llm.StreamStop{StopReason: "end_turn"}),
			}
			s := newTestServer(model, nil)

			resp := doJSON(s, http.MethodPost, "/api/streaming/chats", chatBody)
			frames := readFrames(resp)
			Expect(frames).To(HaveLen(1))
			Expect(frames[0].Done).To(BeTrue())
		})
	})

	Context("with a failing stream", func() {
		It("emits partial deltas then an error frame", func() {
			model := &fakeModel{
				stream: scriptedStream(
					llm.ContentDelta{Text: "par"},
					llm.ContentDelta{Text: "tial"},
					llm.StreamError{Err: errors.New("throttled")},
				),
			}
			s := newTestServer(model, nil)

			resp := doJSON(s, http.MethodPost, "/api/streaming/chats", chatBody)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			frames := readFrames(resp)
			Expect(frames).To(HaveLen(3))
			Expect(*frames[0].Text).To(Equal("par"))
			Expect(frames[2].Error).To(Equal("throttled"))
		})

		It("emits an error frame when the vendor channel closes without a stop", func() {
			model := &fakeModel{
				stream: scriptedStream(llm.ContentDelta{Text: "lost"}),
			}
			s := newTestServer(model, nil)

			resp := doJSON(s, http.MethodPost, "/api/streaming/chats", chatBody)
			frames := readFrames(resp)
			Expect(frames).To(HaveLen(2))
			Expect(frames[1].Error).To(Equal("stream ended unexpectedly"))
		})
	})

	Context("when the stream fails to open", func() {
		It("answers 502 with a JSON error instead of an SSE stream", func() {
			model := &fakeModel{
				stream: func(context.Context, *llm.ChatRequest) (<-chan llm.StreamEvent, error) {
					return nil, errors.New("no such model")
				},
			}
			s := newTestServer(model, nil)

			resp := doJSON(s, http.MethodPost, "/api/streaming/chats", chatBody)
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("application/json"))

			var out llm.ErrorResponse
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out.Error).To(Equal("model invocation failed"))
		})
	})

	Context("with an invalid request", func() {
		It("rejects an empty message list before opening a stream", func() {
			opened := false
			model := &fakeModel{
				stream: func(context.Context, *llm.ChatRequest) (<-chan llm.StreamEvent, error) {
					opened = true
					return nil, nil
				},
			}
			s := newTestServer(model, nil)

			resp := doJSON(s, http.MethodPost, "/api/streaming/chats", `{"messages":[]}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(opened).To(BeFalse())
		})
	})

	Context("with concurrent streams", func() {
		It("keeps each client's frames isolated", func() {
			model := &fakeModel{
				stream: func(_ context.Context, req *llm.ChatRequest) (<-chan llm.StreamEvent, error) {
					// Echo the request content back as deltas so responses are
					// distinguishable per client.
					text := req.Messages[0].Content
					ch := make(chan llm.StreamEvent, 2)
					ch <- llm.ContentDelta{Text: text}
					ch <- llm.StreamStop{StopReason: "end_turn"}
					close(ch)
					return ch, nil
				},
			}
			s := newTestServer(model, nil)

			var wg sync.WaitGroup
			results := make([]string, 4)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					defer GinkgoRecover()

					body := `{"messages":[{"role":"user","content":"client-` +
						string(rune('a'+i)) + `"}]}`
					resp := doJSON(s, http.MethodPost, "/api/streaming/chats", body)
					frames := readFrames(resp)
					Expect(frames).To(HaveLen(2))
					results[i] = *frames[0].Text
				}(i)
			}
			wg.Wait()

			Expect(results).To(ConsistOf("client-a", "client-b", "client-c", "client-d"))
		})
	})
})
