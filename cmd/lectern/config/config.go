// Package configcmder provides the config command for managing persistent
// lectern configuration stored in the .lectern/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent lectern configuration.

Configuration is stored as config.toml in the .lectern/ directory and provides
default values for command flags. CLI flags and environment variables always
take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen, server.request_timeout,
  bedrock.region, bedrock.model_id, bedrock.temperature, bedrock.max_tokens,
  canvas.domain, canvas.api_key,
  client.target

Use subcommands to get, set, or list configuration values:
  lectern config set <key> <value>    Set a configuration value
  lectern config get <key>            Get a configuration value
  lectern config list                 List all configuration values

Examples:
  lectern config set bedrock.region us-west-2
  lectern config set canvas.domain canvas.example.edu
  lectern config get bedrock.model_id
  lectern config list`

const configShortDesc string = "Manage persistent lectern configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
