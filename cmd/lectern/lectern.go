// Package lecterncmder
package lecterncmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/lecternhq/lectern/cmd/lectern/chat"
	configcmder "github.com/lecternhq/lectern/cmd/lectern/config"
	servecmder "github.com/lecternhq/lectern/cmd/lectern/serve"
	versioncmder "github.com/lecternhq/lectern/cmd/version"
)

const lecternLongDesc string = `Lectern is an AI workshop backend for Canvas LMS.

It fronts AWS Bedrock for chat completions (including streamed responses)
and proxies a small set of Canvas LMS endpoints for workshop clients.

Run the server using:
  lectern serve        Run the API server

Try it from the terminal using:
  lectern chat         Interactive streamed chat against a running server`

const lecternShortDesc string = "Lectern - Canvas AI workshop backend"

func NewLecternCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lectern",
		Short: lecternShortDesc,
		Long:  lecternLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ~/.lectern)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
