package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewWorkflowCmd создаёт группу команд для workflows n8n.
func NewWorkflowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage n8n workflows",
	}

	cmd.AddCommand(
		newWorkflowListCmd(clientFn, outputFn),
		newWorkflowActivateCmd(clientFn, outputFn),
	)

	return cmd
}

func newWorkflowListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			workflows, err := client.ListWorkflows(cmd.Context())
			if err != nil {
				return err
			}

			table := NewTable("ID", "NAME", "ACTIVE")
			for _, wf := range workflows {
				table.Add(wf.ID, wf.Name, strconv.FormatBool(wf.Active))
			}

			return out.Print(table, workflows)
		},
	}
}

func newWorkflowActivateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "activate ID",
		Short: "Activate a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			resp, err := client.ActivateWorkflow(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if out.jsonMode {
				return out.JSON(resp)
			}
			out.Notef("Workflow activated: %s", args[0])
			return nil
		},
	}
}
