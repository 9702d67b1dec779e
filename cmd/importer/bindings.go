package main

import (
	"context"
	"sort"

	"github.com/spf13/cobra"

	"github.com/spec-kit/history-importer/internal/bindings"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

func bindingsVendorMismatch(fileVendor, manifestVendor string) error {
	return errorutil.NewValidationError("bindings file belongs to another vendor", map[string]any{
		"bindings": fileVendor,
		"manifest": manifestVendor,
	})
}

func bindingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bindings",
		Short: "Manage vendor user binding tables stored in Redis",
	}
	cmd.AddCommand(bindingsPushCmd())
	cmd.AddCommand(bindingsShowCmd())
	return cmd
}

func bindingsPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push [file]",
		Short: "Replace the stored binding table of a vendor with a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			file, err := bindings.LoadFile(args[0])
			if err != nil {
				return err
			}

			a, store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if err := store.Push(ctx, file.Vendor, file.Table()); err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"vendor": file.Vendor, "users": len(file.Users)})
		},
	}
}

func bindingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [vendor]",
		Short: "Print the stored binding table of a vendor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			table, err := store.Load(ctx, args[0])
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(table))
			for id := range table {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			rows := make([]map[string]any, 0, len(ids))
			for _, id := range ids {
				rows = append(rows, map[string]any{"vendor_id": id, "user": table[id]})
			}
			return printJSON(cmd, rows)
		},
	}
}

func openStore(ctx context.Context) (*app, *bindings.RedisStore, error) {
	a, err := bootstrap(ctx)
	if err != nil {
		return nil, nil, err
	}
	store := a.bindingStore()
	if store == nil {
		a.close()
		return nil, nil, errorutil.NewValidationError("REDIS_ADDR is not configured", nil)
	}
	return a, store, nil
}
