/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haxelion/fbx3d/pkg/catalog"
)

// catalogCmd groups the report catalog commands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage stored decode reports",
	Long: `Decode files and keep their reports in the catalog, then list, show or
delete them. The catalog directory comes from the catalog.dir setting.`,
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Decode files and store their reports",
	Example: `  fbx catalog add scene.fbx
  fbx catalog add models/*.fbx`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := container.Catalog()
		if err != nil {
			return err
		}

		failed := 0
		for _, path := range args {
			_, report, err := decodeFile(path)
			if err != nil {
				cmd.PrintErrf("Error: %v\n", err)
				failed++
				continue
			}
			id, err := cat.Put(report)
			if err != nil {
				return fmt.Errorf("failed to store report for %s: %w", path, err)
			}
			container.Logger().Info("report stored", zap.Stringer("id", id), zap.String("file", path))
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed to decode", failed, len(args))
		}
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		source, _ := cmd.Flags().GetString("source")
		if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
			return err
		}

		cat, err := container.Catalog()
		if err != nil {
			return err
		}
		var reports []*catalog.Report
		if source != "" {
			reports, err = cat.FindBySource(source)
			if limit > 0 && len(reports) > limit {
				reports = reports[:limit]
			}
		} else {
			reports, err = cat.List(limit)
		}
		if err != nil {
			return err
		}

		if format != formatText {
			if reports == nil {
				reports = []*catalog.Report{}
			}
			return render(cmd.OutOrStdout(), format, reports)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tVERSION\tNODES\tSIZE\tSOURCE")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Version, r.Stats.Nodes, r.Size, r.Source)
		}
		return w.Flush()
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
			return err
		}
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid report id %q: %w", args[0], err)
		}

		cat, err := container.Catalog()
		if err != nil {
			return err
		}
		report, err := cat.Get(id)
		if err != nil {
			return err
		}

		if format != formatText {
			return render(cmd.OutOrStdout(), format, report)
		}
		return printReport(cmd.OutOrStdout(), report)
	},
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid report id %q: %w", args[0], err)
		}

		cat, err := container.Catalog()
		if err != nil {
			return err
		}
		if err := cat.Delete(id); err != nil {
			return err
		}
		cmd.Printf("Deleted %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogAddCmd, catalogListCmd, catalogShowCmd, catalogDeleteCmd)

	catalogListCmd.Flags().IntP("limit", "n", 20, "Maximum number of reports (0 lists all)")
	catalogListCmd.Flags().StringP("format", "f", formatText, "Output format (text, json, yaml)")
	catalogListCmd.Flags().String("source", "", "Only list reports for this source file")
	catalogShowCmd.Flags().StringP("format", "f", formatText, "Output format (text, json, yaml)")
}
