// Command quickdeliver is the terminal storefront: it browses the catalog,
// places orders and tracks them live against a QuickDeliver server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"quickDeliver/internal/client"
	"quickDeliver/internal/config"
	"quickDeliver/internal/logging"
)

// app is shared by every subcommand and built lazily in PersistentPreRunE.
type app struct {
	cfg    *config.Client
	conn   *grpc.ClientConn
	remote *client.Remote
}

func main() {
	a := &app{}
	var (
		server string
		near   []float64
	)
	root := &cobra.Command{
		Use:           "quickdeliver",
		Short:         "Order food from QuickDeliver restaurants",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if server != "" {
				cfg.ServerAddr = server
			}
			a.cfg = cfg
			logging.Init(logging.Options{
				Component: "cli",
				File:      cfg.Log.File,
				Level:     cfg.Log.Level,
				Stdout:    cfg.Log.Stdout,
			})
			conn, err := client.Dial(*cfg)
			if err != nil {
				return fmt.Errorf("dial %s: %w", cfg.ServerAddr, err)
			}
			a.conn = conn
			a.remote = client.NewRemote(conn, client.TokenFile{Path: cfg.TokenFile}, cfg.Timeout, logging.New("client"))
			if len(near) == 2 {
				a.remote.SetOrigin(near[0], near[1])
			} else if len(near) != 0 {
				return fmt.Errorf("--near takes lat,lng")
			}
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.conn != nil {
				return a.conn.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&server, "server", "", "backend gRPC address (overrides client.server_addr)")
	root.PersistentFlags().Float64SliceVar(&near, "near", nil, "lat,lng used to compute restaurant distances")

	root.AddCommand(
		a.signUpCmd(),
		a.signInCmd(),
		a.signOutCmd(),
		a.whoamiCmd(),
		a.restaurantsCmd(),
		a.ordersCmd(),
		a.trackCmd(),
		a.shellCmd(),
		a.adminCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
