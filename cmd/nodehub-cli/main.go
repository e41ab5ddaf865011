// nodehub CLI — инструмент командной строки для каталога nodes
// и прокси n8n через HTTP API.
//
// Использование:
//
//	nodehub [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	node        Каталог nodes
//	credential  Имена, схемы и создание credentials
//	workflow    Workflows n8n
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/nodehub/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "nodehub",
		Short:         "nodehub CLI — node catalog and n8n proxy client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := "http://localhost:8080"
	if v := os.Getenv("NODEHUB_API_URL"); v != "" {
		defaultURL = v
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL (env NODEHUB_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewNodeCmd(clientFn, outputFn),
		cli.NewCredentialCmd(clientFn, outputFn),
		cli.NewWorkflowCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		outputFn().Error(err)
		os.Exit(1)
	}
}
