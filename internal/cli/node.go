package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewNodeCmd создаёт группу команд для каталога nodes.
func NewNodeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Browse the node catalog",
	}

	cmd.AddCommand(
		newNodeListCmd(clientFn, outputFn),
		newNodeNamesCmd(clientFn, outputFn),
		newNodeShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newNodeListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List full node records",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			nodes, err := client.ListNodes(cmd.Context(), displayName)
			if err != nil {
				return err
			}

			table := NewTable("ID", "DISPLAY NAME", "CREDENTIALS")
			raw := make([]map[string]any, len(nodes))
			for i, n := range nodes {
				names := make([]string, len(n.Credentials))
				for j, c := range n.Credentials {
					names[j] = c.Name
				}
				table.Add(n.ID, n.DisplayName, strings.Join(names, ", "))
				raw[i] = n.Raw
			}

			return out.Print(table, raw)
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "Exact display name to match")

	return cmd
}

func newNodeNamesCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var opts PageOpts

	cmd := &cobra.Command{
		Use:   "names",
		Short: "Search node names (paginated)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			page, err := client.ListNodeNames(cmd.Context(), opts)
			if err != nil {
				return err
			}

			table := NewTable("ID", "DISPLAY NAME", "ICON")
			for _, n := range page.Data {
				table.Add(n.ID, n.DisplayName, n.IconURL)
			}

			if err := out.Print(table, page); err != nil {
				return err
			}
			out.Notef("page %d of %d (%d items)", page.CurrentPage, page.TotalPages, page.TotalItems)
			return nil
		},
	}

	addPageFlags(cmd, &opts)

	return cmd
}

func newNodeShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a node summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			node, err := client.GetNode(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			table := NewTable("ID", "DISPLAY NAME", "ICON")
			table.Add(node.ID, node.DisplayName, node.IconURL)
			return out.Print(table, node)
		},
	}
}

// addPageFlags добавляет --search, --page, --limit.
// Нулевые значения не отправляются, сервер подставит свои умолчания.
func addPageFlags(cmd *cobra.Command, opts *PageOpts) {
	cmd.Flags().StringVar(&opts.Search, "search", "", "Case-insensitive substring to search for")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "Page number (1-based)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Page size")
}
