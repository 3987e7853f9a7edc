package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")
	cmd.PersistentFlags().String("base-url", "", "Portal base URL (default: LionPath public class search)")
	cmd.PersistentFlags().String("proxy", "", "HTTP/SOCKS5 proxies, comma-separated for rotation")
	cmd.PersistentFlags().String("timeout", "30s", "Hard timeout per request")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("session", "", "Name of a saved portal session to use")
	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file (optional)")
}
