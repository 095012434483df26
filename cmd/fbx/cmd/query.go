/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haxelion/fbx3d/pkg/fbx"
	"github.com/haxelion/fbx3d/pkg/query"
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <file> <path>",
	Short: "Find nodes by name path",
	Long: `Decode a binary FBX file and print the nodes whose name chain matches a
slash separated path. A * segment matches any name. --where filters on a property
by index, e.g. --where 2=Mesh or --where "0>=100"; conditions are combined with AND.

Examples:
  fbx query scene.fbx Objects/Model
  fbx query scene.fbx 'Objects/*' --where 2=Mesh
  fbx query scene.fbx Objects/Geometry --format json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		where, _ := cmd.Flags().GetStringArray("where")
		maxArray, _ := cmd.Flags().GetInt("max-array")

		if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
			return err
		}

		path, err := query.ParsePath(args[1])
		if err != nil {
			return err
		}
		q := query.Query{Path: path}
		for _, w := range where {
			cond, err := query.ParsePropertyQuery(w)
			if err != nil {
				return err
			}
			q.Where = append(q.Where, cond)
		}

		doc, _, err := decodeFile(args[0])
		if err != nil {
			return err
		}
		matches, err := query.Execute(doc.Nodes, q)
		if err != nil {
			return err
		}

		if format != formatText {
			nodes := make([]fbx.Node, 0, len(matches))
			for _, n := range matches {
				nodes = append(nodes, *n)
			}
			tree := query.BuildTree(nodes, query.TreeOptions{MaxArray: maxArray})
			if tree == nil {
				tree = []query.TreeNode{}
			}
			return render(cmd.OutOrStdout(), format, tree)
		}

		out := cmd.OutOrStdout()
		for _, n := range matches {
			fmt.Fprintln(out, summarizeNode(n, maxArray))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d match(es)\n", len(matches))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringP("format", "f", formatText, "Output format (text, json, yaml)")
	queryCmd.Flags().StringArray("where", nil, "Property condition <index><op><value> (repeatable)")
	queryCmd.Flags().Int("max-array", 8, "Array elements printed per property (0 prints all)")
}

// summarizeNode renders one line: the node name, its properties and child count
func summarizeNode(n *fbx.Node, maxArray int) string {
	var b strings.Builder
	b.WriteString(n.Name)
	b.WriteString(":")
	for _, p := range n.Properties {
		v := query.ViewProperty(p, maxArray)
		switch {
		case p.Type().IsArray():
			fmt.Fprintf(&b, " %s(len=%d)%v", v.Type, v.Length, v.Value)
		case p.Type() == fbx.TypeString:
			fmt.Fprintf(&b, " %q", v.Value)
		default:
			fmt.Fprintf(&b, " %v", v.Value)
		}
	}
	if len(n.Children) > 0 {
		fmt.Fprintf(&b, " {%d children}", len(n.Children))
	}
	return b.String()
}
