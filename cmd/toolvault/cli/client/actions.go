package client

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func NewDocsImportCommand() *cobra.Command {
	var line string
	var machine string
	var docType string
	var actor string

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import documents for a machine",
		Long:  "Import one or more program or print files. Files are deduplicated by name and content; each import adds a revision to the matching document or creates a new one.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			parsedType, err := parseDocType(docType)
			if err != nil {
				return err
			}
			if parsedType == "" {
				return fmt.Errorf("document type is required (program, print)")
			}

			v, _, cleanup, err := openVault(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			failures := 0
			for _, result := range v.ImportBatch(ctx, args, line, machine, parsedType, currentUser(actor)) {
				if result.Err != nil {
					failures++
					fmt.Printf("FAILED  %s: %v\n", result.Source, result.Err)
					continue
				}
				fmt.Printf("OK      %s -> document %d revision %d\n",
					result.Source, result.Revision.DocumentID, result.Revision.RevisionNumber)
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d imports failed", failures, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&line, "line", "", "production line (required)")
	cmd.Flags().StringVar(&machine, "machine", "", "machine name (required)")
	cmd.Flags().StringVar(&docType, "type", "", "document type (program, print)")
	cmd.Flags().StringVar(&actor, "user", "", "acting username (default is the OS user)")
	cmd.MarkFlagRequired("line")
	cmd.MarkFlagRequired("machine")
	cmd.MarkFlagRequired("type")

	return cmd
}

func NewDocsExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <document-id> [revision]",
		Short: "Export a document revision",
		Long:  "Copy a revision's stored content into the output directory. Without a revision argument the current revision is exported.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseDocumentID(args[0])
			if err != nil {
				return err
			}

			revision := 0
			if len(args) == 2 {
				revision, err = strconv.Atoi(args[1])
				if err != nil || revision < 1 {
					return fmt.Errorf("invalid revision number %q", args[1])
				}
			}

			v, _, cleanup, err := openVault(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			target, err := v.Export(ctx, id, revision, output)
			if err != nil {
				return err
			}

			fmt.Printf("Exported to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", ".", "destination directory")

	return cmd
}

func NewDocsRecallCommand() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "recall <document-id> <revision>",
		Short: "Recall an older revision",
		Long:  "Restore an older revision's content as the document's new current revision. History is never rewritten; recall is purely additive.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseDocumentID(args[0])
			if err != nil {
				return err
			}

			revision, err := strconv.Atoi(args[1])
			if err != nil || revision < 1 {
				return fmt.Errorf("invalid revision number %q", args[1])
			}

			v, _, cleanup, err := openVault(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rev, err := v.Recall(ctx, id, revision, currentUser(actor))
			if err != nil {
				return err
			}

			fmt.Printf("Recalled revision %d as revision %d\n", revision, rev.RevisionNumber)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "user", "", "acting username (default is the OS user)")

	return cmd
}

func NewDocsDeactivateCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "deactivate <document-id>",
		Short: "Deactivate a document",
		Long:  "Mark a document as inactive. Revisions and stored files are kept; there is no reactivation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !confirm {
				return fmt.Errorf("deactivation is permanent, rerun with --confirm")
			}

			id, err := parseDocumentID(args[0])
			if err != nil {
				return err
			}

			v, _, cleanup, err := openVault(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := v.Catalog().Deactivate(ctx, id); err != nil {
				return err
			}

			fmt.Printf("Deactivated document %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirm, "confirm", "c", false, "Confirms the deactivation")

	return cmd
}
