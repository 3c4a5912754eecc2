package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"irforge/internal/fixtures"
)

var listCmd = &cobra.Command{
	Use:   "list [suite]",
	Short: "List fixture suites, or the files of one suite",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().Bool("json", false, "print JSON")
}

type suiteListing struct {
	Name    string   `json:"name"`
	Dir     string   `json:"dir"`
	Summary string   `json:"summary"`
	Files   []string `json:"files,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	suites := fixtures.All()
	withFiles := len(args) == 1
	if withFiles {
		suites, err = fixtures.Select(args)
		if err != nil {
			return err
		}
	}

	listings := make([]suiteListing, len(suites))
	for i, s := range suites {
		listings[i] = suiteListing{Name: s.Name, Dir: s.Dir, Summary: s.Summary}
		if withFiles {
			for _, c := range s.Cases() {
				listings[i].Files = append(listings[i].Files, c.File)
			}
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}
	for _, l := range listings {
		fmt.Fprintf(out, "%-20s %-22s %s\n", l.Name, l.Dir, dimColor.Sprint(l.Summary))
		for _, f := range l.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
	}
	return nil
}
