package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popkit/internal/adapter/output"
	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/dbus"
)

// serverStatus is what "popkit server" reports.
type serverStatus struct {
	dbus.ServerInfo `yaml:",inline"`
	Capabilities    []string `json:"capabilities" yaml:"capabilities"`
	Popkit          bool     `json:"popkit" yaml:"popkit"`
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Show the running notification server",
	Long: `Query the notification server on the session bus and print its name,
vendor, version and capabilities. popkit-specific features (button colours,
custom classes, dismiss reasons) need popkitd; other servers show popups
with their own styling.`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print notifications sent on the session bus",
	Long: `Watch Notify calls on the session bus without claiming the service
name and print each one as the popup record popkitd would show. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(serverCmd, watchCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	client, err := dbus.NewClient(dbus.WithAppName(cfg.Backend.AppName), dbus.WithClientLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	info, err := client.ServerInformation(ctx)
	if err != nil {
		return err
	}
	caps, err := client.Capabilities(ctx)
	if err != nil {
		return err
	}

	status := serverStatus{
		ServerInfo:   info,
		Capabilities: caps,
		Popkit:       dbus.HasCapability(caps, dbus.CapabilityPopkit),
	}

	switch globalOpts.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(status)
	default:
		fmt.Printf("%s %s (%s), spec %s\n", info.Name, info.Version, info.Vendor, info.SpecVersion)
		fmt.Printf("capabilities: %s\n", strings.Join(caps, ", "))
		return nil
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	f, err := newFormatter(output.FormatPlain)
	if err != nil {
		return err
	}
	policy := alert.PolicyFromConfig(cfg)

	var mu sync.Mutex
	monitor := dbus.NewMonitor(func(n *dbus.DBusNotification) {
		mu.Lock()
		defer mu.Unlock()
		if err := output.Preview(os.Stdout, f, n.ToRequest(policy)); err != nil {
			logger.Warn("failed to print notification", "error", err)
		}
	}, logger)

	if err := monitor.Start(); err != nil {
		return err
	}
	defer func() { _ = monitor.Stop() }()

	<-ctx.Done()
	return nil
}
