/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/haxelion/fbx3d/pkg/fbx"
	"github.com/haxelion/fbx3d/pkg/query"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the node tree of a file",
	Long: `Decode a binary FBX file and print its node tree as JSON or YAML.

Large arrays are truncated to --max-array elements; the original length is kept
in the output. Use --path to print only the nodes under a name path.

Examples:
  fbx dump scene.fbx
  fbx dump scene.fbx --format yaml --max-array 8
  fbx dump scene.fbx --path Objects/Geometry`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		maxArray, _ := cmd.Flags().GetInt("max-array")
		pathFlag, _ := cmd.Flags().GetString("path")

		if err := checkFormat(format, formatJSON, formatYAML); err != nil {
			return err
		}

		doc, _, err := decodeFile(args[0])
		if err != nil {
			return err
		}

		nodes := doc.Nodes
		if pathFlag != "" {
			path, err := query.ParsePath(pathFlag)
			if err != nil {
				return err
			}
			matches := query.Select(doc.Nodes, path)
			nodes = make([]fbx.Node, 0, len(matches))
			for _, n := range matches {
				nodes = append(nodes, *n)
			}
		}

		tree := query.BuildTree(nodes, query.TreeOptions{MaxArray: maxArray})
		if tree == nil {
			tree = []query.TreeNode{}
		}
		return render(cmd.OutOrStdout(), format, tree)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringP("format", "f", formatJSON, "Output format (json, yaml)")
	dumpCmd.Flags().Int("max-array", 16, "Array elements printed per property (0 prints all)")
	dumpCmd.Flags().String("path", "", "Only print nodes matching this slash separated path")
}
