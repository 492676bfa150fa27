package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/bootstrap"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/config"
)

type globalFlags struct {
	backend     string
	pebblePath  string
	databaseURL string
	as          string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "syncctl",
		Short: "Inspect and repair conversation indexes and message logs",
		Long: `syncctl works directly against the document store used by the
convsync server. It lists what a participant's index and a conversation's
log hold and rebuilds summaries lost to interrupted sends.`,
		SilenceUsage: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&flags.backend, "backend", config.BackendPebble, "store backend: memory, pebble or postgres")
	pf.StringVar(&flags.pebblePath, "pebble-path", "./data/convsync", "pebble database directory")
	pf.StringVar(&flags.databaseURL, "database-url", "", "postgres connection string")
	pf.StringVar(&flags.as, "as", "operator@syncctl", "email to act as when reading a conversation")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log store activity to stderr")

	root.AddCommand(
		newConversationsCmd(flags),
		newMessagesCmd(flags),
		newRepairCmd(flags),
		newUsersCmd(flags),
	)
	return root
}

// withService opens the store for the duration of fn.
func withService(ctx context.Context, flags *globalFlags, fn func(svc *application.Service) error) error {
	log := zap.NewNop()
	if flags.verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			log = l
		}
	}

	store, err := bootstrap.OpenStore(ctx, flags.backend, flags.pebblePath, flags.databaseURL, log)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, _ := bootstrap.NewService(store, bootstrap.Options{Backend: flags.backend}, log)
	return fn(svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
