package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/mdispatch/pkg/dispatch"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates <function> [args...]",
	Short: "List the registrations matching a call, best first",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCandidates,
}

func init() {
	candidatesCmd.Flags().StringArrayVar(&keywordArgs, "kw", nil, "keyword argument name=value, repeatable")
	rootCmd.AddCommand(candidatesCmd)
}

func runCandidates(cmd *cobra.Command, args []string) error {
	built, err := loadManifests()
	if err != nil {
		return err
	}
	call, err := callArgs(built, args[1:], keywordArgs)
	if err != nil {
		return err
	}

	cands, err := built.Registry.Lookup().All(args[0], call)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(args[0]+call.String()))
	if len(cands) == 0 {
		fmt.Fprintln(out, subtitleStyle.Render("no registration matches"))
		return nil
	}

	rows := make([][]string, 0, len(cands))
	for i, c := range cands {
		spec := make([]string, len(c.Specificity))
		for j, s := range c.Specificity {
			spec[j] = describeSpecificity(s)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			dispatch.FormatKeys(c.Registration.Keys),
			strings.Join(spec, ", "),
			strconv.Itoa(c.Registration.Priority),
			c.Registration.Doc,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "KEYS", "MATCH", "PRIORITY", "DOC"}, rows))
	return nil
}
