package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spec-kit/history-importer/internal/bindings"
	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/internal/service"
)

func importCmd() *cobra.Command {
	var (
		manifestPath  string
		bindingsPath  string
		dumpDir       string
		redisBindings bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replay the entities of a manifest into the target history",
		Long: `Replay the vendor history of every entity listed in a manifest.

Events are fetched from the vendor API unless --dump-dir points at exported
feeds (<dump-dir>/<external id>.json). The run stops at the first error.

Examples:
  importer import --manifest jira.yaml --bindings jira-users.yaml
  importer import --manifest trello.yaml --dump-dir ./dumps --redis-bindings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if manifestPath == "" {
				manifestPath = a.cfg.Importer.ManifestPath
			}
			if dumpDir == "" {
				dumpDir = a.cfg.Importer.DumpDir
			}
			if bindingsPath == "" && !redisBindings && fileExists(a.cfg.Importer.BindingsPath) {
				bindingsPath = a.cfg.Importer.BindingsPath
			}

			manifest, err := bindings.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			table, err := loadBindingsFile(bindingsPath, manifest.Vendor)
			if err != nil {
				return err
			}

			svc, err := a.importService(redisBindings)
			if err != nil {
				return err
			}
			result, err := svc.Run(ctx, service.Request{
				Manifest: manifest,
				Bindings: table,
				DumpDir:  dumpDir,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file (default $IMPORT_MANIFEST)")
	cmd.Flags().StringVarP(&bindingsPath, "bindings", "b", "", "user binding file (default $IMPORT_BINDINGS when present)")
	cmd.Flags().StringVar(&dumpDir, "dump-dir", "", "read exported feeds instead of calling the vendor API")
	cmd.Flags().BoolVar(&redisBindings, "redis-bindings", false, "load the binding table pushed to Redis")

	return cmd
}

func loadBindingsFile(path, vendorName string) (history.UserTable, error) {
	if path == "" {
		return nil, nil
	}
	file, err := bindings.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if file.Vendor != vendorName {
		return nil, bindingsVendorMismatch(file.Vendor, vendorName)
	}
	return file.Table(), nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
