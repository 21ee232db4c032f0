package client

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	config "github.com/mwantia/toolvault/internal/config/server"
	"github.com/mwantia/toolvault/pkg/db/models"
	"github.com/mwantia/toolvault/pkg/db/store"
	"github.com/mwantia/toolvault/pkg/log"
	"github.com/mwantia/toolvault/pkg/storage"
	"github.com/mwantia/toolvault/pkg/vault"
)

func NewDocsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage machine documents",
		Long:  "Import, list, export, recall and deactivate versioned program and print documents.",
	}

	cmd.AddCommand(NewDocsListCommand())
	cmd.AddCommand(NewDocsRevisionsCommand())
	cmd.AddCommand(NewDocsImportCommand())
	cmd.AddCommand(NewDocsExportCommand())
	cmd.AddCommand(NewDocsRecallCommand())
	cmd.AddCommand(NewDocsDeactivateCommand())
	cmd.AddCommand(NewDocsLinesCommand())

	return cmd
}

// openVault builds the vault stack from the loaded configuration. The
// returned cleanup closes the metadata store.
func openVault(ctx context.Context) (*vault.Vault, *config.BaseServerConfig, func(), error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load server configuration: %w", err)
	}

	metadata, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: cfg.Metadata.SQLite.Path,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if err := metadata.Connect(ctx); err != nil {
		return nil, nil, nil, err
	}
	if err := metadata.Migrate(ctx); err != nil {
		metadata.Close()
		return nil, nil, nil, err
	}

	backend, err := storage.NewLocalBackend(cfg.Storage.Root)
	if err != nil {
		metadata.Close()
		return nil, nil, nil, err
	}

	logger := log.NewLoggerService("toolvault", cfg.Log)
	cleanup := func() {
		metadata.Close()
	}

	return vault.New(metadata, backend, logger), cfg, cleanup, nil
}

// currentUser resolves the acting username, preferring the --user flag.
func currentUser(flag string) string {
	if flag != "" {
		return flag
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "Unknown"
}

func parseDocumentID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", arg)
	}
	return uint(id), nil
}

func parseDocType(value string) (models.DocType, error) {
	docType := models.DocType(value)
	if value != "" && !docType.Valid() {
		return "", fmt.Errorf("invalid document type %q (expected program or print)", value)
	}
	return docType, nil
}

func NewDocsListCommand() *cobra.Command {
	var line string
	var machine string
	var docType string
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents for a machine",
		Long:  "List the active documents of a (line, machine) pair with their current revision.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			parsedType, err := parseDocType(docType)
			if err != nil {
				return err
			}

			v, _, cleanup, err := openVault(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			docs, err := v.Catalog().List(ctx, line, machine, parsedType, search)
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tNAME\tTYPE\tREV\tUPDATED\tUPDATED BY")
			for _, doc := range docs {
				updated := ""
				if doc.CurrentRevision > 0 {
					updated = doc.RevisionCreatedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(writer, "%d\t%s\t%s\t%d\t%s\t%s\n",
					doc.ID, doc.Name, doc.DocType, doc.CurrentRevision, updated, doc.RevisionCreatedBy)
			}

			return writer.Flush()
		},
	}

	cmd.Flags().StringVar(&line, "line", "", "production line (required)")
	cmd.Flags().StringVar(&machine, "machine", "", "machine name (required)")
	cmd.Flags().StringVar(&docType, "type", "", "filter by document type (program, print)")
	cmd.Flags().StringVar(&search, "search", "", "filter by document name")
	cmd.MarkFlagRequired("line")
	cmd.MarkFlagRequired("machine")

	return cmd
}

func NewDocsRevisionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revisions <document-id>",
		Short: "Show a document's revision history",
		Long:  "List all revisions of a document, most recent first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseDocumentID(args[0])
			if err != nil {
				return err
			}

			v, _, cleanup, err := openVault(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			revisions, err := v.Ledger().List(ctx, id)
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "REV\tDATE\tUSER\tFILENAME\tHASH\tNOTES")
			for _, rev := range revisions {
				fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%.12s\t%s\n",
					rev.RevisionNumber, rev.CreatedAt.Format("2006-01-02 15:04:05"),
					rev.CreatedBy, rev.OriginalFilename, rev.ContentHash, rev.Notes)
			}

			return writer.Flush()
		},
	}

	return cmd
}

func NewDocsLinesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines",
		Short: "List configured lines and machines",
		Long:  "List the production lines and machines known from the master data configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return err
			}

			masterdata := vault.NewStaticMasterData(cfg.Lines)
			for _, line := range masterdata.Lines() {
				fmt.Println(line)
				for _, machine := range masterdata.MachinesForLine(line) {
					fmt.Printf("  %s\n", machine)
				}
			}

			return nil
		},
	}

	return cmd
}
