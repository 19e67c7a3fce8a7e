package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/de-tools/sec-atlas/pkg/runtime/terminal"
	"github.com/de-tools/sec-atlas/pkg/services/compliance"
	"github.com/de-tools/sec-atlas/pkg/services/config"
	"github.com/de-tools/sec-atlas/pkg/store/audit"
	"github.com/de-tools/sec-atlas/pkg/store/authapi"
	"github.com/de-tools/sec-atlas/pkg/store/mgmtapi"
)

func main() {
	_ = godotenv.Load()

	settings, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	recorder, err := audit.NewFileRecorder(settings.Audit.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: audit log unavailable (%v), continuing without it\n", err)
		recorder = audit.NewNopRecorder()
	}

	cli := terminal.NewCLI(terminal.Options{
		Service: compliance.NewService(compliance.Dependencies{
			Auth:                 authapi.NewClient(),
			Mgmt:                 mgmtapi.NewClient(settings.Management.BaseURL, settings.Management.Token),
			ManagementConfigured: settings.Management.Token != "",
			Audit:                recorder,
		}),
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
