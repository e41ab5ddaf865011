package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewCredentialCmd создаёт группу команд для credentials.
func NewCredentialCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Credential names, schemas and creation",
	}

	cmd.AddCommand(
		newCredentialNamesCmd(clientFn, outputFn),
		newCredentialSchemaCmd(clientFn, outputFn),
		newCredentialCreateCmd(clientFn, outputFn),
	)

	return cmd
}

func newCredentialNamesCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var opts PageOpts

	cmd := &cobra.Command{
		Use:   "names",
		Short: "List unique credential names used by nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			names, err := client.ListCredentialNames(cmd.Context(), opts)
			if err != nil {
				return err
			}

			table := NewTable("#", "NAME")
			for i, n := range names {
				table.Add(strconv.Itoa(i+1), n)
			}

			return out.Print(table, names)
		},
	}

	addPageFlags(cmd, &opts)

	return cmd
}

func newCredentialSchemaCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "schema TYPE",
		Short: "Show the JSON schema of a credential type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := clientFn().CredentialSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			// Схема произвольная, таблицы для неё нет.
			return outputFn().JSON(schema)
		},
	}
}

func newCredentialCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a credential from a JSON file (- for stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			body, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			created, err := client.CreateCredential(cmd.Context(), body)
			if err != nil {
				return err
			}

			out.Notef("Credential created")
			return out.JSON(created)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the credential (required, - for stdin)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}
