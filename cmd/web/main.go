package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/sec-atlas/pkg/server"
	"github.com/de-tools/sec-atlas/pkg/services/assistant"
	"github.com/de-tools/sec-atlas/pkg/services/compliance"
	"github.com/de-tools/sec-atlas/pkg/services/config"
	"github.com/de-tools/sec-atlas/pkg/store/audit"
	"github.com/de-tools/sec-atlas/pkg/store/authapi"
	"github.com/de-tools/sec-atlas/pkg/store/mgmtapi"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Sec Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the sec-atlas config file (optional, env vars take precedence)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	recorder, err := audit.NewFileRecorder(settings.Audit.Dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", settings.Audit.Dir).
			Msg("audit log unavailable, continuing without it")
		recorder = audit.NewNopRecorder()
	}

	if settings.Management.Token == "" {
		logger.Warn().Msg("management token not set; the PITR check will report MANUAL_CHECK_REQUIRED")
	}

	svc := compliance.NewService(compliance.Dependencies{
		Auth:                 authapi.NewClient(),
		Mgmt:                 mgmtapi.NewClient(settings.Management.BaseURL, settings.Management.Token),
		ManagementConfigured: settings.Management.Token != "",
		Audit:                recorder,
	})

	bridge := assistant.NewBridge(assistant.Config{
		BaseURL: settings.Assistant.BaseURL,
		Model:   settings.Assistant.Model,
		APIKey:  settings.Assistant.APIKey,
	})

	addr := net.JoinHostPort(settings.Server.Host, settings.Server.Port)
	api := server.NewWebAPI(server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Compliance: svc,
			Assistant:  bridge,
			Logger:     logger,
		},
	})

	return api.Start()
}
