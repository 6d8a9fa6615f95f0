package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dukerupert/grocer/internal/backup"
	"github.com/spf13/cobra"
)

const passphraseEnv = "GROCER_BACKUP_PASSPHRASE"

func (a *app) passphrase(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue == "" {
		flagValue = os.Getenv(passphraseEnv)
	}
	pass, err := a.secret(cmd, flagValue, "Passphrase: ")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", errors.New("a passphrase is required")
	}
	return pass, nil
}

func newExportCmd(a *app) *cobra.Command {
	var pass string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write an encrypted copy of all accounts and lists to FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.passphrase(cmd, pass)
			if err != nil {
				return err
			}
			f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := backup.Export(a.kv, f, p); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&pass, "passphrase", "", "Encryption passphrase (or "+passphraseEnv+")")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var pass string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all accounts and lists with the contents of an export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.passphrase(cmd, pass)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open export file: %w", err)
			}
			defer f.Close()
			if err := backup.Import(a.kv, f, p); err != nil {
				return err
			}
			keys, err := a.kv.Keys()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d keys)\n", args[0], len(keys))
			return nil
		},
	}
	cmd.Flags().StringVar(&pass, "passphrase", "", "Encryption passphrase (or "+passphraseEnv+")")
	return cmd
}

func newBackupCmd(a *app) *cobra.Command {
	var pass string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Store encrypted backups in an S3-compatible bucket",
	}
	cmd.PersistentFlags().StringVar(&pass, "passphrase", "", "Encryption passphrase (or "+passphraseEnv+")")

	manager := func() (*backup.Manager, error) {
		if !a.cfg.BackupEnabled() {
			return nil, backup.ErrNotConfigured
		}
		b := a.cfg.Backup
		return backup.NewManager(backup.S3Config{
			Endpoint:  b.Endpoint,
			Bucket:    b.Bucket,
			Region:    b.Region,
			AccessKey: b.AccessKey,
			SecretKey: b.SecretKey,
			Prefix:    b.Prefix,
		}, a.kv, a.logger), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Upload a new backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			p, err := a.passphrase(cmd, pass)
			if err != nil {
				return err
			}
			key, err := m.Push(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}, &cobra.Command{
		Use:   "pull KEY",
		Short: "Download a backup and replace local data with it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			p, err := a.passphrase(cmd, pass)
			if err != nil {
				return err
			}
			if err := m.Pull(cmd.Context(), args[0], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
			return nil
		},
	})
	return cmd
}
