package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alfredjeanlab/quotewidget/internal/backup"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:     "backup",
	Short:   "Export or restore widget preferences",
	GroupID: "system",
	Long: `Export or restore widget preferences.

These commands open the store configured by QW_STORE directly. Restart the
server after a restore so it re-renders the restored widgets.`,
	PersistentPreRunE: localPreRun,
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every widget and preference as JSONL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		var w io.Writer = os.Stdout
		if out != "" && out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return backup.ExportJSONL(context.Background(), st, w)
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Restore widgets and preferences from a JSONL export",
	Long: `Restore widgets and preferences from a JSONL export.

The export is read from the file argument, from stdin when the argument is
"-", or from the S3 backup object (QW_BACKUP_S3_BUCKET / QW_BACKUP_S3_KEY)
when --s3 is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fromS3, _ := cmd.Flags().GetBool("s3")
		if fromS3 == (len(args) == 1) {
			return fmt.Errorf("pass either a file or --s3")
		}

		ctx := context.Background()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var r io.Reader
		switch {
		case fromS3:
			if cfg.BackupS3Bucket == "" {
				return fmt.Errorf("QW_BACKUP_S3_BUCKET is not set")
			}
			dest, err := backup.NewS3Destination(ctx, cfg.BackupS3Bucket, cfg.BackupS3Key, cfg.S3Region, cfg.S3Endpoint)
			if err != nil {
				return err
			}
			data, err := dest.Read(ctx)
			if err != nil {
				return err
			}
			r = bytes.NewReader(data)
		case args[0] == "-":
			r = os.Stdin
		default:
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := backup.ImportJSONL(ctx, st, r)
		if err != nil {
			return fmt.Errorf("restoring backup: %w", err)
		}
		if jsonOutput {
			printJSON(stats)
			return nil
		}
		fmt.Printf("Restored %d widget(s) and %d preference(s)\n", stats.Widgets, stats.Prefs)
		return nil
	},
}

func init() {
	backupExportCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
	backupRestoreCmd.Flags().Bool("s3", false, "restore from the configured S3 backup object")

	backupCmd.AddCommand(backupExportCmd, backupRestoreCmd)
}
