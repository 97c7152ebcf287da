package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/changefeed"
	"github.com/ziadkadry99/labelkit/internal/editor"
	"github.com/ziadkadry99/labelkit/internal/fill"
	"github.com/ziadkadry99/labelkit/internal/popup"
	"github.com/ziadkadry99/labelkit/internal/printer"
	"github.com/ziadkadry99/labelkit/internal/server"
	"github.com/ziadkadry99/labelkit/internal/sites"
	"github.com/ziadkadry99/labelkit/internal/templates"
)

var serverPort int

// externalPollInterval is how often the daemon looks for document writes
// made by other labelkit processes.
const externalPollInterval = time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the local labelkit daemon",
	Long:  `Starts the daemon that serves the popup and options pages of the browser extension over HTTP and pushes storage changes over WebSocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()
		if cmd.Flags().Changed("port") {
			b.cfg.Server.Port = serverPort
		}

		p, err := printer.FromConfig(b.cfg.Printer, b.log)
		if err != nil {
			return fmt.Errorf("configuring printer: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(b.cfg.Server, b.db, b.log)
		registerAllRoutes(ctx, srv, b, printer.NewManager(b.db, p, b.log))

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "labelkit daemon v%s starting on %s\n", Version, b.cfg.Addr())
		fmt.Fprintf(os.Stderr, "  Database: %s\n", b.db.Path())
		fmt.Fprintf(os.Stderr, "  Printer: %s (%s)\n", p.Name(), p.Type())

		if err := srv.Start(b.cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// registerAllRoutes builds the controllers, mounts their routes and keeps
// them in step with storage until ctx is done.
func registerAllRoutes(ctx context.Context, srv *server.Server, b *backend, pm *printer.Manager) {
	api := srv.API()

	// Pick up writes made by CLI commands against the same database.
	if err := b.kv.MarkSeen(ctx); err != nil {
		b.log.Warn("reading document versions", zap.Error(err))
	}
	go b.kv.PollExternal(ctx, externalPollInterval)

	// Template store (read-only listing and export)
	templates.RegisterRoutes(api, b.templates)

	// Options page: template editor
	ed := editor.New(b.templates, b.log)
	ed.Reload(ctx)
	editor.RegisterRoutes(api, ed)

	// Popup: site registry and live fill view
	reg := sites.NewRegistry(b.templates, b.sites, b.log)
	reg.Reload(ctx)
	sites.RegisterRoutes(api, reg)

	fc := fill.New(b.templates, b.sites, nil, pm, b.log)
	fill.RegisterRoutes(api, fc)

	optionsURL := fmt.Sprintf("http://%s/api/editor", b.cfg.Addr())
	pop := popup.New(fc, reg, popup.OpenerFunc(func(context.Context) error {
		b.log.Info("options page requested", zap.String("url", optionsURL))
		return nil
	}), b.log)
	popup.RegisterRoutes(api, pop)

	// Printing history
	printer.RegisterRoutes(api, pm)

	// Storage change feed for extension pages
	changefeed.RegisterRoutes(srv.Router(), changefeed.New(b.kv, b.log))

	go ed.Watch(ctx, b.kv.Subscribe(ctx))
	go pop.Watch(ctx, b.kv.Subscribe(ctx))
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 7311, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
