// Vbox-bridge exposes a Vitrea vBox controller over WebSocket for web
// dashboards and home-automation integrations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitrealabs/vbox/internal/bridge"
	"github.com/vitrealabs/vbox/internal/client"
	"github.com/vitrealabs/vbox/internal/config"
	"github.com/vitrealabs/vbox/internal/logging"
	"github.com/vitrealabs/vbox/internal/protocol"
	"github.com/vitrealabs/vbox/internal/version"
)

var (
	listenAddr   string
	flagHost     string
	flagPort     int
	flagUsername string
	flagPassword string
	flagProtocol string
)

var rootCmd = &cobra.Command{
	Use:     "vbox-bridge",
	Short:   "WebSocket bridge for Vitrea vBox controllers",
	Version: version.Version,
	Long: `Vbox-bridge connects to a Vitrea vBox smart home controller and
re-exposes its key statuses and switching commands as JSON over a
WebSocket endpoint at /ws.

Configuration is read from VITREA_VBOX_* environment variables and can
be overridden with flags. The underlying connection reconnects with
exponential backoff when the box drops the link.`,
	Example: `  # Bridge the box at the default address on port 8520
  vbox-bridge --listen :8520

  # Explicit box address and credentials
  vbox-bridge --host 192.168.1.23 --username admin --password secret`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runBridge,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&listenAddr, "listen", ":8520", "HTTP listen address for the WebSocket endpoint")
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "vBox IP address (default from VITREA_VBOX_HOST or 192.168.1.23)")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "vBox control port (default 11501)")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "Login username")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "Login password")
	rootCmd.PersistentFlags().StringVar(&flagProtocol, "protocol", "", "Protocol generation: v1 or v2 (default v2)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vbox-bridge %s\n", version.Full())
	},
}

func runBridge(cmd *cobra.Command, args []string) error {
	conn := config.ConnectionFromEnv()
	if flagHost != "" {
		conn.Host = flagHost
	}
	if flagPort != 0 {
		conn.Port = flagPort
	}
	if flagUsername != "" {
		conn.Username = flagUsername
	}
	if flagPassword != "" {
		conn.Password = flagPassword
	}
	if flagProtocol != "" {
		conn.Version = protocol.ParseVersion(flagProtocol)
	}

	sock := config.SocketFromEnv()
	sock.ShouldReconnect = true

	c := client.New(conn, sock)
	dialCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	if err := c.Connect(dialCtx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", conn.Addr(), err)
	}
	defer c.Disconnect()

	srv := bridge.New(c)
	defer srv.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(listenAddr) }()

	fmt.Printf("Bridging %s on ws://%s/ws\n", conn.Addr(), listenAddr)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
