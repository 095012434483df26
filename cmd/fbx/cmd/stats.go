/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haxelion/fbx3d/pkg/catalog"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Summarize a file",
	Long: `Decode a binary FBX file and print its version, node and property counts,
maximum depth and most frequent node names.

Example:
  fbx stats scene.fbx
  fbx stats scene.fbx --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
			return err
		}

		_, report, err := decodeFile(args[0])
		if err != nil {
			return err
		}

		if format != formatText {
			return render(cmd.OutOrStdout(), format, report)
		}
		return printReport(cmd.OutOrStdout(), report)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("format", "f", formatText, "Output format (text, json, yaml)")
}

// printReport writes a human readable report
func printReport(out io.Writer, r *catalog.Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if !r.ID.IsNil() {
		fmt.Fprintf(w, "ID:\t%s\n", r.ID)
	}
	fmt.Fprintf(w, "Source:\t%s\n", r.Source)
	fmt.Fprintf(w, "Size:\t%d bytes\n", r.Size)
	fmt.Fprintf(w, "Version:\t%d\n", r.Version)
	fmt.Fprintf(w, "Decode time:\t%s\n", r.DecodeTime)
	fmt.Fprintf(w, "Roots:\t%d\n", r.Stats.Roots)
	fmt.Fprintf(w, "Nodes:\t%d\n", r.Stats.Nodes)
	fmt.Fprintf(w, "Max depth:\t%d\n", r.Stats.MaxDepth)
	fmt.Fprintf(w, "Properties:\t%d\n", r.Stats.Properties)
	fmt.Fprintf(w, "Array elements:\t%d\n", r.Stats.ArrayElements)

	types := make([]string, 0, len(r.Stats.PropertiesByType))
	for t := range r.Stats.PropertiesByType {
		types = append(types, t)
	}
	slices.Sort(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %s:\t%d\n", t, r.Stats.PropertiesByType[t])
	}

	if len(r.Stats.TopNames) > 0 {
		fmt.Fprintf(w, "Top names:\t\n")
		for _, nc := range r.Stats.TopNames {
			fmt.Fprintf(w, "  %s:\t%d\n", nc.Name, nc.Count)
		}
	}
	return w.Flush()
}
