package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"scorecard/internal/checks"
)

func newChecksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List and describe checks",
		Long: `List and describe the checks compiled into this build.

Checks are evaluated by "scorecard run" (see "scorecard run --help").

Examples:
  scorecard checks list
  scorecard checks list -q
  scorecard checks show license
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var quiet bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List available checks",
		Long: `List all checks registered in this build, sorted by ID.

Output:
  A table of ID, title and option names; with -q only the IDs.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if quiet {
				for _, c := range checks.List() {
					fmt.Fprintln(cmd.OutOrStdout(), c.ID())
				}
				return nil
			}
			return printCheckTable(cmd.OutOrStdout(), checks.List())
		},
	}
	list.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print check IDs")

	show := &cobra.Command{
		Use:   "show <check-id>",
		Short: "Show details of a check",
		Long: `Show the title, description and options of a check.

Examples:
  scorecard checks show codeowners
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := checks.Lookup(args[0])
			if !ok {
				return fmt.Errorf("check not found: %s", args[0])
			}
			printCheck(cmd.OutOrStdout(), c)
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func optionNames(c checks.Check) []string {
	cc, ok := c.(checks.ConfigurableCheck)
	if !ok {
		return nil
	}
	var names []string
	for _, opt := range cc.Options() {
		names = append(names, opt.Name)
	}
	return names
}

func printCheckTable(w io.Writer, list []checks.Check) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Title", "Options"})

	var data [][]string
	for _, c := range list {
		data = append(data, []string{c.ID(), c.Title(), strings.Join(optionNames(c), ", ")})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func printCheck(w io.Writer, c checks.Check) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "CHECK: %s\n", c.ID())
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, c.Title())
	fmt.Fprintln(w, c.Description())

	if cc, ok := c.(checks.ConfigurableCheck); ok {
		opts := cc.Options()
		if len(opts) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Options:")
			for _, opt := range opts {
				def := opt.Default
				if def == "" {
					def = "\"\""
				}
				fmt.Fprintf(w, "  %s\n", opt.Name)
				fmt.Fprintf(w, "    Description: %s\n", opt.Description)
				fmt.Fprintf(w, "    Default:     %s\n", def)
			}
		}
	}
	fmt.Fprintln(w)
}
