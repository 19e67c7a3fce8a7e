package terminal

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/sec-atlas/pkg/models/domain"
	"github.com/de-tools/sec-atlas/pkg/services/compliance"
)

// CLI represents the command-line interface
type CLI struct {
	service  compliance.Service
	reporter *Reporter
	output   io.Writer
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Service compliance.Service
	Output  io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		service:  opts.Service,
		reporter: NewReporter(opts.Output),
		output:   opts.Output,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secatlas",
		Short: "Database project compliance tool",
	}

	cmd.AddCommand(cli.newCheckCmd())
	cmd.AddCommand(cli.newFixCmd())

	return cmd
}

func (cli *CLI) newCheckCmd() *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the MFA, RLS and PITR compliance checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := cli.service.RunChecks(cmd.Context(), creds.toDomain())
			if err != nil {
				return err
			}
			return cli.reporter.Handle(report)
		},
	}

	creds.register(cmd)
	return cmd
}

func (cli *CLI) newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Apply a one-shot remediation",
	}

	cmd.AddCommand(cli.newFixRLSCmd())
	cmd.AddCommand(cli.newFixMFACmd())
	cmd.AddCommand(cli.newFixPITRCmd())
	return cmd
}

func (cli *CLI) newFixRLSCmd() *cobra.Command {
	var creds credentialFlags
	var table string

	cmd := &cobra.Command{
		Use:   "rls",
		Short: "Enable row level security on a table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fix, err := cli.service.FixRLS(cmd.Context(), creds.toDomain(), table)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cli.output, fix.Message)
			return err
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVar(&table, "table", "", "Table name in the public schema")
	return cmd
}

func (cli *CLI) newFixMFACmd() *cobra.Command {
	var creds credentialFlags
	var userID string

	cmd := &cobra.Command{
		Use:   "mfa",
		Short: "Trigger second-factor enrollment for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fix, err := cli.service.FixMFA(cmd.Context(), creds.toDomain(), userID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cli.output, fix.Message)
			return err
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVar(&userID, "user-id", "", "User ID to enroll")
	return cmd
}

func (cli *CLI) newFixPITRCmd() *cobra.Command {
	var creds credentialFlags
	var projectRef string

	cmd := &cobra.Command{
		Use:   "pitr",
		Short: "Enable point in time recovery for a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fix, err := cli.service.FixPITR(cmd.Context(), creds.toDomain(), projectRef)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cli.output, fix.Message)
			return err
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVar(&projectRef, "project-ref", "", "Project ref (first label of the project host)")
	return cmd
}

type credentialFlags struct {
	projectURL string
	serviceKey string
	dbURL      string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.projectURL, "project-url", "", "Project endpoint URL (https://<ref>.supabase.co)")
	cmd.Flags().StringVar(&f.serviceKey, "service-key", "", "Service role key")
	cmd.Flags().StringVar(&f.dbURL, "db-url", "", "Postgres connection string (RLS check and fix only)")
}

func (f *credentialFlags) toDomain() domain.Credentials {
	return domain.Credentials{
		ProjectURL: f.projectURL,
		ServiceKey: f.serviceKey,
		DBURL:      f.dbURL,
	}
}
