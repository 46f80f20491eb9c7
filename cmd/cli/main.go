package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"leadboard/app"
	"leadboard/domain/leads"
	"leadboard/internal/config"
	"leadboard/internal/container"
	"leadboard/internal/dataset"
	"leadboard/internal/errors"
	"leadboard/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	var dataFile string

	rootCmd := &cobra.Command{
		Use:   "leadboard-cli",
		Short: "Inspect, export and replace the WhatsApp lead dataset",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if dataFile != "" {
				os.Setenv("DATA_FILE", dataFile)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataFile, "file", "", "Dataset file (overrides DATA_FILE)")

	rootCmd.AddCommand(
		newSummaryCmd(),
		newExportCmd(),
		newImportCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if details := errors.GetDetails(err); len(details) > 0 {
			fmt.Fprintf(os.Stderr, "missing: %s\n", strings.Join(details, ", "))
		}
		os.Exit(1)
	}
}

func loadContainer() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

type filterFlags struct {
	groups   []string
	statuses []string
	dispatch []string
	from     string
	to       string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.groups, "group", nil, "Interest groups to keep (repeatable)")
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "Lead statuses to keep (repeatable)")
	cmd.Flags().StringSliceVar(&f.dispatch, "dispatch", nil, "Dispatch statuses to keep: Dispatched, NotDispatched, Other")
	cmd.Flags().StringVar(&f.from, "from", "", "First creation day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "Last creation day, YYYY-MM-DD")
}

// spec builds the filter; a flag given with no values selects nothing
func (f *filterFlags) spec(cmd *cobra.Command) (leads.FilterSpec, error) {
	var opts []leads.FilterOption
	if cmd.Flags().Changed("group") {
		opts = append(opts, leads.WithInterestGroups(leads.Only(nonEmpty(f.groups)...)))
	}
	if cmd.Flags().Changed("status") {
		opts = append(opts, leads.WithLeadStatuses(leads.Only(nonEmpty(f.statuses)...)))
	}
	if cmd.Flags().Changed("dispatch") {
		var statuses []leads.DispatchStatus
		for _, v := range nonEmpty(f.dispatch) {
			statuses = append(statuses, leads.ParseDispatchStatus(v))
		}
		opts = append(opts, leads.WithDispatchStatuses(leads.Only(statuses...)))
	}

	if f.from != "" || f.to != "" {
		start := leads.Date{Year: 1, Month: time.January, Day: 1}
		end := leads.Date{Year: 9999, Month: time.December, Day: 31}
		var err error
		if f.from != "" {
			if start, err = leads.ParseDate(f.from); err != nil {
				return leads.FilterSpec{}, err
			}
		}
		if f.to != "" {
			if end, err = leads.ParseDate(f.to); err != nil {
				return leads.FilterSpec{}, err
			}
		}
		r, err := leads.NewDateRange(start, end)
		if err != nil {
			return leads.FilterSpec{}, err
		}
		opts = append(opts, leads.WithDateRange(r))
	}
	return leads.NewFilterSpec(opts...), nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func newSummaryCmd() *cobra.Command {
	var filters filterFlags
	var top int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print dispatch metrics and rankings for the filtered leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := filters.spec(cmd)
			if err != nil {
				return err
			}
			c, err := loadContainer()
			if err != nil {
				return err
			}

			result, err := c.Dashboard.Dashboard(context.Background(), app.DashboardQuery{Spec: spec, Top: top, Limit: -1})
			if err != nil {
				return err
			}
			if asJSON {
				result.Table.Rows = nil
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printSummary(cmd, result)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVar(&top, "top", 0, "Interest groups to rank (0 uses TOP_GROUPS)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func printSummary(cmd *cobra.Command, r *app.DashboardResult) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total de Leads\t%d\n", r.Metrics.TotalLeads)
	fmt.Fprintf(w, "Disparados\t%d\n", r.Metrics.DispatchedCount)
	fmt.Fprintf(w, "Não Disparados\t%d\n", r.Metrics.NotDispatchedCount)
	fmt.Fprintf(w, "Taxa de Disparo\t%.1f%% (%s)\n", r.Metrics.DispatchRatePercent, r.RateBand)
	if r.Timeline.Days > 0 {
		fmt.Fprintf(w, "Período\t%s .. %s (%d dias, média %.2f/dia)\n", r.Timeline.FirstDay, r.Timeline.LastDay, r.Timeline.Days, r.Timeline.MeanPerDay)
	}
	fmt.Fprintln(w, "\nColégio de Interesse\tLeads")
	for _, g := range r.ByInterestGroup {
		fmt.Fprintf(w, "%s\t%d\n", g.Key, g.Count)
	}
	if len(r.NotDispatchedByLeadStatus) > 0 {
		fmt.Fprintln(w, "\nStatus (não disparados)\tLeads")
		for _, g := range r.NotDispatchedByLeadStatus {
			fmt.Fprintf(w, "%s\t%d\n", g.Key, g.Count)
		}
	}
	w.Flush()
}

func newExportCmd() *cobra.Command {
	var filters filterFlags
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered leads and summary to a new xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := filters.spec(cmd)
			if err != nil {
				return err
			}
			c, err := loadContainer()
			if err != nil {
				return err
			}

			name, raw, err := c.Dashboard.Export(context.Background(), spec, time.Now())
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, raw, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(raw))
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory for the export file")
	return cmd
}

func newImportCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "import [spreadsheet]",
		Short: "Replace the dataset with a spreadsheet (admin password required)",
		Long: `Validate a spreadsheet and make it the dataset served to viewers.

Example: leadboard-cli import leads_marco.xlsx --password "$ADMIN_PASSWORD"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			c, err := loadContainer()
			if err != nil {
				return err
			}
			sess, _, err := c.Gate.Login(password)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			result, err := c.Admin.Replace(context.Background(), sess, filepath.Base(args[0]), raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d leads with %d columns into %s\n", result.Rows, result.Columns, c.Config.Data.File)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Admin password (defaults to ADMIN_PASSWORD)")
	return cmd
}

func newDemoCmd() *cobra.Command {
	var out string
	var count int
	var seed int64

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write a synthetic lead spreadsheet for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultLeadConfig()
			cfg.LeadCount = count
			cfg.Seed = seed

			ds, err := testkit.NewLeadGenerator(cfg).GenerateDataset()
			if err != nil {
				return err
			}
			if err := dataset.NewFileStore(out).Save(context.Background(), ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d synthetic leads to %s\n", ds.Len(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "demo_leads.xlsx", "Spreadsheet to write")
	cmd.Flags().IntVar(&count, "leads", 500, "Number of leads")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	return cmd
}
