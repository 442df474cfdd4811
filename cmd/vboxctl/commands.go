package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vitrealabs/vbox/internal/client"
	"github.com/vitrealabs/vbox/internal/config"
	"github.com/vitrealabs/vbox/internal/discovery"
	"github.com/vitrealabs/vbox/internal/protocol"
	"github.com/vitrealabs/vbox/internal/ui"
)

// Connection flags
var (
	flagHost     string
	flagPort     int
	flagUsername string
	flagPassword string
	flagProtocol string

	scanTimeout int
	toggleState string
	dimmerRatio int
	timerSec    int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "vBox IP address (default from VITREA_VBOX_HOST or 192.168.1.23)")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "vBox control port (default 11501)")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "Login username")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "Login password (prompted when username is set and this is empty)")
	rootCmd.PersistentFlags().StringVar(&flagProtocol, "protocol", "", "Protocol generation: v1 or v2 (default v2)")

	rootCmd.AddCommand(roomsCmd)
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(labelCmd)
}

// connSettings assembles connection settings from env defaults plus flags,
// prompting for a password when needed.
func connSettings() (config.Connection, error) {
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

	if conn.Username != "" && conn.Password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return conn, fmt.Errorf("failed to read password: %w", err)
		}
		conn.Password = string(pw)
	}
	return conn, nil
}

// targetHost resolves the box address without touching credentials.
func targetHost() string {
	if flagHost != "" {
		return flagHost
	}
	return config.ConnectionFromEnv().Host
}

// connect opens a session for one command invocation.
func connect(ctx context.Context) (*client.Client, error) {
	conn, err := connSettings()
	if err != nil {
		return nil, err
	}
	c := client.New(conn, config.SocketFromEnv())

	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := c.Connect(dialCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", conn.Addr(), err)
	}
	return c, nil
}

func parseNodeKey(args []string) (byte, byte, error) {
	node, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid node id %q", args[0])
	}
	key, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid key id %q", args[1])
	}
	return byte(node), byte(key), nil
}

// roomsCmd lists the rooms configured on the box
var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List rooms configured on the vBox",
	Example: `  # List all rooms
  vboxctl rooms --host 192.168.1.23`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Disconnect()

		rc, err := c.GetRoomCount(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to query rooms: %w", err)
		}

		p := ui.NewPrinter(nil)
		p.PrintTitle(fmt.Sprintf("%d room(s)", rc.Total()))
		for _, id := range rc.Rooms() {
			name := ""
			if rm, err := c.GetRoomMetaData(cmd.Context(), id); err == nil {
				name = rm.Name()
			}
			p.PrintRow(fmt.Sprintf("room %d", id), name)
		}
		return nil
	},
}

// nodesCmd lists the nodes (wall panels) configured on the box
var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List nodes configured on the vBox",
	Long: `List every node (wall panel) the vBox knows about.

With protocol v1 the node metadata is decoded into MAC address, firmware
version, lock state and key count. Protocol v2 metadata is shown raw.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Disconnect()

		nc, err := c.GetNodeCount(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to query nodes: %w", err)
		}

		p := ui.NewPrinter(nil)
		p.PrintTitle(fmt.Sprintf("%d node(s)", nc.Total()))
		for _, id := range nc.Nodes() {
			meta, err := c.GetNodeMetaData(cmd.Context(), id)
			if err != nil {
				p.PrintRow(fmt.Sprintf("node %d", id), "metadata unavailable")
				continue
			}
			switch m := meta.(type) {
			case *protocol.NodeMetaDataResponse:
				detail := fmt.Sprintf("%d keys, mac %s, fw %s", m.TotalKeys(), m.MACAddress(), m.FirmwareVersion())
				if m.IsLocked() {
					detail += ", locked"
				}
				p.PrintRow(fmt.Sprintf("node %d", id), detail)
			default:
				p.PrintRow(fmt.Sprintf("node %d", id), fmt.Sprint(meta))
			}
		}
		return nil
	},
}

// statusCmd shows one key's power state
var statusCmd = &cobra.Command{
	Use:   "status <node> <key>",
	Short: "Show the power state of one key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		node, key, err := parseNodeKey(args)
		if err != nil {
			return err
		}
		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Disconnect()

		ks, err := c.GetKeyStatus(cmd.Context(), node, key)
		if err != nil {
			return fmt.Errorf("failed to query key status: %w", err)
		}
		fmt.Printf("node %d key %d: %s\n", ks.NodeID(), ks.KeyID(), ks.Power())
		return nil
	},
}

var onCmd = &cobra.Command{
	Use:   "on <node> <key>",
	Short: "Turn a key on",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return actuate(cmd, args, protocol.PowerOn)
	},
}

var offCmd = &cobra.Command{
	Use:   "off <node> <key>",
	Short: "Turn a key off",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return actuate(cmd, args, protocol.PowerOff)
	},
}

// toggleCmd actuates a key with explicit state, dimmer and timer
var toggleCmd = &cobra.Command{
	Use:   "toggle <node> <key>",
	Short: "Actuate a key with explicit state, dimmer and timer",
	Example: `  # Dim the kitchen ceiling light to 40%
  vboxctl toggle 3 1 --state on --dimmer 40

  # Boiler on for 30 minutes
  vboxctl toggle 7 1 --state on --timer 1800`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		node, key, err := parseNodeKey(args)
		if err != nil {
			return err
		}
		var power protocol.KeyPowerStatus
		switch toggleState {
		case "on":
			power = protocol.PowerOn
		case "off":
			power = protocol.PowerOff
		case "released":
			power = protocol.PowerReleased
		default:
			return fmt.Errorf("invalid --state %q (on, off, released)", toggleState)
		}
		if dimmerRatio < 0 || dimmerRatio > 100 {
			return fmt.Errorf("--dimmer must be 0-100")
		}

		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Disconnect()

		if err := c.ToggleKey(cmd.Context(), node, key, power, byte(dimmerRatio), uint16(timerSec)); err != nil {
			return fmt.Errorf("failed to toggle key: %w", err)
		}
		fmt.Printf("node %d key %d set to %s\n", node, key, power)
		return nil
	},
}

func init() {
	toggleCmd.Flags().StringVar(&toggleState, "state", "on", "Target state: on, off or released")
	toggleCmd.Flags().IntVar(&dimmerRatio, "dimmer", 100, "Dimmer ratio 0-100")
	toggleCmd.Flags().IntVar(&timerSec, "timer", 0, "Auto-off timer in seconds, 0 for none")
}

func actuate(cmd *cobra.Command, args []string, power protocol.KeyPowerStatus) error {
	node, key, err := parseNodeKey(args)
	if err != nil {
		return err
	}
	c, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Disconnect()

	dimmer := byte(0)
	if power == protocol.PowerOn {
		dimmer = 100
	}
	if err := c.ToggleKey(cmd.Context(), node, key, power, dimmer, 0); err != nil {
		return fmt.Errorf("failed to switch key: %w", err)
	}
	fmt.Printf("node %d key %d set to %s\n", node, key, power)
	return nil
}

// watchCmd streams unsolicited key status updates to stdout
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live key status updates",
	Long: `Stream unsolicited key status updates to stdout until interrupted.

The vBox pushes an update whenever a wall switch is pressed or a timer
expires. Useful for debugging installations and for piping into other
tools.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		c, err := connect(ctx)
		if err != nil {
			return err
		}
		defer c.Disconnect()

		cancel := c.OnKeyStatus(func(ks *protocol.KeyStatusResponse) {
			fmt.Printf("%s  node %3d key %2d  %s\n",
				time.Now().Format("15:04:05"), ks.NodeID(), ks.KeyID(), ks.Power())
		})
		defer cancel()

		fmt.Fprintf(os.Stderr, "Watching %s, press Ctrl-C to stop.\n", c.Addr())
		<-ctx.Done()
		return nil
	},
}

// monitorCmd launches the interactive key monitor
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive live view of every key",
	Long: `Open an interactive monitor listing every key on the box with its
current state. Unsolicited updates are applied live; enter toggles the
selected key.

Key names come from protocol v1 key parameters when available, with
labels from the local registry as fallback.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Disconnect()

		loadCtx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		rows, err := loadKeyRows(loadCtx, c)
		if err != nil {
			return fmt.Errorf("failed to load key inventory: %w", err)
		}
		return ui.RunMonitor(c, c.Addr(), rows)
	},
}

// loadKeyRows walks the box inventory: rooms for names, nodes for keys,
// key parameters and current status per key. Protocol v2 node metadata is
// opaque, so v2 falls back to labels stored in the local registry.
func loadKeyRows(ctx context.Context, c *client.Client) ([]ui.KeyRow, error) {
	reg, err := config.LoadRegistry()
	if err != nil {
		reg = config.NewRegistry()
	}
	host := targetHost()

	roomNames := make(map[byte]string)
	rc, err := c.GetRoomCount(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range rc.Rooms() {
		if rm, err := c.GetRoomMetaData(ctx, id); err == nil {
			roomNames[id] = rm.Name()
		}
	}

	nc, err := c.GetNodeCount(ctx)
	if err != nil {
		return nil, err
	}

	var rows []ui.KeyRow
	for _, nodeID := range nc.Nodes() {
		meta, err := c.GetNodeMetaData(ctx, nodeID)
		if err != nil {
			continue
		}
		v1, ok := meta.(*protocol.NodeMetaDataResponse)
		if !ok {
			rows = append(rows, registryRows(reg, host, nodeID)...)
			continue
		}

		room := roomNames[v1.RoomID()]
		for i := 0; i < v1.TotalKeys(); i++ {
			keyID := byte(i)
			name := reg.KeyLabel(host, nodeID, keyID)
			if name == "" {
				name = fmt.Sprintf("key %d", keyID)
				if kp, err := c.GetKeyParameters(ctx, nodeID, keyID); err == nil {
					if p, ok := kp.(*protocol.KeyParametersResponse); ok && p.Name() != "" {
						name = p.Name()
					}
				}
			}
			row := ui.KeyRow{Node: nodeID, Key: keyID, Room: room, Name: name, Power: protocol.PowerOff}
			if ks, err := c.GetKeyStatus(ctx, nodeID, keyID); err == nil {
				row.Power = ks.Power()
			}
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Node != rows[j].Node {
			return rows[i].Node < rows[j].Node
		}
		return rows[i].Key < rows[j].Key
	})
	return rows, nil
}

// registryRows builds monitor rows for one node from stored labels.
func registryRows(reg *config.Registry, host string, nodeID byte) []ui.KeyRow {
	box := reg.Boxes[host]
	if box == nil {
		return nil
	}
	var rows []ui.KeyRow
	for ref, meta := range box.Keys {
		var n, k byte
		if _, err := fmt.Sscanf(ref, "%d/%d", &n, &k); err != nil || n != nodeID {
			continue
		}
		rows = append(rows, ui.KeyRow{Node: n, Key: k, Name: meta.Label, Power: protocol.PowerOff})
	}
	return rows
}

// scanCmd discovers controllers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for vBox controllers on the network",
	Long: `Scan for vBox controllers using mDNS/DNS-SD discovery.

Controllers advertise their web interface over mDNS; the control channel
itself always listens on port 11501.`,
	Example: `  # Scan for 10 seconds (default)
  vboxctl scan

  # Quick 3-second scan
  vboxctl scan --timeout 3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Scanning for vBox controllers (timeout: %ds)...\n\n", scanTimeout)

		devices, err := discovery.Scan(time.Duration(scanTimeout) * time.Second)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if len(devices) == 0 {
			fmt.Println("No controllers found.")
			fmt.Println("\nTroubleshooting:")
			fmt.Println("  - Ensure the vBox is powered on and on the same network segment")
			fmt.Println("  - Check that your firewall allows mDNS (UDP port 5353)")
			fmt.Println("  - Try increasing --timeout for slower networks")
			fmt.Println("  - Use --host to specify the address manually")
			return nil
		}

		fmt.Printf("Found %d controller(s):\n\n", len(devices))
		for i, device := range devices {
			fmt.Printf("%d. %s\n", i+1, device.Hostname)
			fmt.Printf("   Serial:  %s\n", device.Serial)
			fmt.Printf("   Control: %s\n", device.ControlAddr())
			fmt.Printf("   Web:     %s\n", device.WebURL())
			fmt.Println()
		}
		fmt.Println("Use 'vboxctl rooms --host <ip>' to inspect a controller")
		return nil
	},
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

// labelCmd stores a human-readable key label in the local registry
var labelCmd = &cobra.Command{
	Use:   "label <node> <key> <name>",
	Short: "Store a display label for a key",
	Long: `Store a display label for a key in the local registry file.

Labels are purely local; nothing is written to the box. The monitor and
other commands use them wherever the box itself has no usable name.`,
	Example: `  vboxctl label 3 1 "Kitchen Ceiling"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		node, key, err := parseNodeKey(args[:2])
		if err != nil {
			return err
		}
		host := targetHost()
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		reg.SetKeyLabel(host, node, key, args[2], "")
		reg.TouchBox(host)
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Printf("node %d key %d labelled %q\n", node, key, args[2])
		return nil
	},
}
