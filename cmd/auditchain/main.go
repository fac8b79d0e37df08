// Package main is the offline audit chain tool: it verifies and exports
// the audit log straight from the database file, without a running
// server or a session.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	internaldb "fundcrm/internal/db"
	"fundcrm/internal/db/repository"
	"fundcrm/internal/domain"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var dbPath string

	rootCmd := &cobra.Command{
		Use:           "auditchain",
		Short:         "Audit chain verification and export",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "fundcrm.sqlite", "path to the SQLite database")

	rootCmd.AddCommand(newVerifyCmd(&dbPath))
	rootCmd.AddCommand(newExportCmd(&dbPath))
	return rootCmd
}

func openAuditRepo(dbPath string) (*repository.AuditRepo, func(), error) {
	writeDB, readDB, err := internaldb.OpenSQLitePair(dbPath, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeAll := func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	}
	return repository.NewAuditRepo(writeDB), closeAll, nil
}

func newVerifyCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Walk the full audit chain and recompute every hash",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeAll, err := openAuditRepo(*dbPath)
			if err != nil {
				return err
			}
			defer closeAll()

			entries, err := repo.ListAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("load audit chain: %w", err)
			}

			res := domain.VerifyChain(entries)
			if res.Valid {
				fmt.Printf("chain intact: %d entries verified\n", res.EntriesChecked)
				return nil
			}
			return fmt.Errorf("chain BROKEN at sequence_id %d (%d entries checked)",
				*res.FirstBrokenSequenceID, res.EntriesChecked)
		},
	}
}

func newExportCmd(dbPath *string) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full audit chain as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeAll, err := openAuditRepo(*dbPath)
			if err != nil {
				return err
			}
			defer closeAll()

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}

			n, err := exportCSV(cmd.Context(), repo, out)
			if err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(os.Stderr, "exported %d entries to %s\n", n, outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "f", "", "output file (default stdout)")
	return cmd
}

func exportCSV(ctx context.Context, repo *repository.AuditRepo, out *os.File) (int, error) {
	entries, err := repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load audit chain: %w", err)
	}

	w := csv.NewWriter(out)
	header := []string{"sequence_id", "timestamp", "actor_id", "actor_name", "action",
		"entity_type", "entity_id", "entity_name", "details", "ip_address",
		"previous_hash", "entry_hash"}
	if err := w.Write(header); err != nil {
		return 0, err
	}
	for _, e := range entries {
		rec := []string{
			strconv.FormatInt(e.SequenceID, 10),
			e.Timestamp,
			strconv.FormatInt(e.ActorID, 10),
			e.ActorName,
			e.Action,
			e.EntityType,
			deref(e.EntityID),
			derefStr(e.EntityName),
			derefStr(e.Details),
			derefStr(e.IP),
			derefStr(e.PreviousHash),
			e.EntryHash,
		}
		if err := w.Write(rec); err != nil {
			return 0, err
		}
	}
	w.Flush()
	return len(entries), w.Error()
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func deref(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}
