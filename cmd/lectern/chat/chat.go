// Package chatcmder provides the chat command for interactive streamed chat
// against a running lectern server.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lecternhq/lectern/pkg/cliui"
	"github.com/lecternhq/lectern/pkg/config"
	"github.com/lecternhq/lectern/pkg/llm"
	"github.com/lecternhq/lectern/pkg/logger"
	"github.com/lecternhq/lectern/pkg/sse"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

type chatCommander struct {
	target string
	model  string
	system string
	debug  bool

	logger *zap.Logger
}

// frame mirrors the server's SSE payloads. Exactly one field group is set
// per frame: Text for a delta, Done plus Usage for the terminal frame, or
// Error for a mid-stream failure.
type frame struct {
	Text  string `json:"text"`
	Done  bool   `json:"done"`
	Usage struct {
		StopReason string `json:"stopReason"`
	} `json:"usage"`
	Error string `json:"error"`
}

const chatLongDesc string = `Start an interactive chat session against a running lectern server.

Messages stream back token by token over the server's SSE endpoint, so
responses render as the model produces them.

Examples:
  lectern chat
  lectern chat --target http://localhost:8000
  lectern chat --model us.amazon.nova-lite-v1:0 --system "Answer briefly."`

const chatShortDesc string = "Interactive streamed chat against a lectern server"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("target") {
				cmder.target = cfg.Client.Target
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.target, "target", "t", defaults.Client.Target, "Lectern server URL")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model id (default: the server's configured model)")
	cmd.Flags().StringVarP(&cmder.system, "system", "s", "", "System prompt for the conversation")

	return cmd
}

func (c *chatCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	var messages []llm.Message

	fmt.Println()
	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Server:"),
		cliui.ValueStyle.Render(c.target),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		messages = append(messages, llm.Message{
			Role:    llm.RoleUser,
			Content: input,
		})

		start := time.Now()
		assistantContent, err := c.sendAndStream(messages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			// Remove the failed user message so we can retry
			messages = messages[:len(messages)-1]
			continue
		}

		messages = append(messages, llm.Message{
			Role:    llm.RoleAssistant,
			Content: assistantContent,
		})

		fmt.Println()
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render(cliui.FormatDuration(time.Since(start))))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// sendAndStream sends a chat request to the server and streams the response
// to stdout. Returns the full assistant response text.
func (c *chatCommander) sendAndStream(messages []llm.Message) (string, error) {
	reqBody := llm.ChatRequest{
		Messages: messages,
		System:   c.system,
		ModelID:  c.model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		zap.String("target", c.target),
		zap.Int("message_count", len(messages)),
	)

	url := c.target + "/api/streaming/chats"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		// Model responses can be slow
		Timeout: 5 * time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	fmt.Print(assistantPrompt)

	var fullContent strings.Builder
	reader := sse.NewReader(resp.Body)

	for {
		ev, err := reader.Next()
		if err != nil {
			return "", fmt.Errorf("reading stream: %w", err)
		}
		if ev == nil {
			break
		}

		var f frame
		if err := json.Unmarshal([]byte(ev.Data), &f); err != nil {
			c.logger.Debug("skipping unparseable frame", zap.String("data", ev.Data))
			continue
		}

		switch {
		case f.Error != "":
			fmt.Println()
			return "", fmt.Errorf("stream error: %s", f.Error)
		case f.Done:
			return fullContent.String(), nil
		default:
			fmt.Print(f.Text)
			fullContent.WriteString(f.Text)
		}
	}

	// Stream ended without a done frame; keep whatever content arrived.
	return fullContent.String(), nil
}
