package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/mdispatch/pkg/dispatch"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the classes, functions and registrations of the manifests",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	built, err := loadManifests()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render("Classes"))
	classRows := [][]string{}
	for _, name := range built.ClassNames() {
		c, _ := built.Class(name)
		mro := make([]string, 0, len(c.MRO()))
		for _, a := range c.MRO() {
			mro = append(mro, a.Name())
		}
		classRows = append(classRows, []string{name, strings.Join(mro, " > ")})
	}
	fmt.Fprintln(out, renderTable([]string{"CLASS", "RESOLUTION ORDER"}, classRows))

	for _, name := range built.Registry.Names() {
		gf, err := built.Registry.Function(name)
		if err != nil {
			return err
		}
		preds := make([]string, 0, gf.Arity())
		for _, p := range gf.Predicates() {
			preds = append(preds, p.Name())
		}
		stats := gf.Stats()

		fmt.Fprintln(out)
		fmt.Fprintln(out, titleStyle.Render(name+"("+strings.Join(preds, ", ")+")"))
		if stats.Sealed {
			fmt.Fprintln(out, subtitleStyle.Render("sealed"))
		}

		rows := [][]string{}
		for _, r := range gf.Registrations() {
			rows = append(rows, []string{
				dispatch.FormatKeys(r.Keys),
				strconv.Itoa(r.Priority),
				r.ID.String()[:8],
				r.Doc,
			})
		}
		fmt.Fprintln(out, renderTable([]string{"KEYS", "PRIORITY", "ID", "DOC"}, rows))
	}
	return nil
}
