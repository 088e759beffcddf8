package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"bexmcp/internal/bexio"
	"bexmcp/internal/completion"
	"bexmcp/internal/config"
	"bexmcp/internal/server"
	"bexmcp/internal/tools"
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "bexmcp",
	Short: "MCP server exposing the Bexio business API as tools",
	Long: `bexmcp speaks the Model Context Protocol over stdio and exposes the
Bexio API (contacts, invoices, quotes, projects, items, accounting,
time tracking) as callable tools.

Write tools validate and complete their payloads before anything is
sent: required fields are checked up front, safe defaults are filled
in, and values like tax ids and reference numbers are looked up from
the live system.

The access token comes from BEXIO_ACCESS_TOKEN, a .env file, or
'bexmcp config set token <token>'.`,
	Run: runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	log := newLogger()

	client := bexio.New(bexio.Options{
		Token:      config.GetToken(),
		BaseURL:    config.GetAPIURL(),
		Timeout:    config.GetTimeout(),
		MaxRetries: config.GetMaxRetries(),
	})
	engine := completion.NewEngine(completion.NewBexioLookup(client, nil))
	registry := tools.NewBexioRegistry(client, engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("tools", len(registry.List())).Info("serving MCP over stdio")

	srv := server.New(registry, os.Stdin, os.Stdout, log)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// newLogger builds a logger writing to stderr; stdout belongs to the
// protocol stream.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verboseFlag {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging on stderr")
}
