package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-restdocs/framework/app"
	"github.com/km-arc/go-restdocs/framework/condition"

	// Drivers register their modules when linked.
	_ "github.com/km-arc/go-restdocs/restdocs/fluent"
	_ "github.com/km-arc/go-restdocs/restdocs/mockhttp"
	_ "github.com/km-arc/go-restdocs/restdocs/webclient"
)

var (
	matchStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	noMatchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	messageStyle = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

func newConditionsCommand(root *rootOptions) *cobra.Command {
	var (
		appType   string
		libraries []string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "conditions",
		Short: "Evaluate the auto-configuration and print the condition report",
		Long: `Evaluate every documentation module against the configured capabilities
and print which services were published and why the others were not.

Examples:
  # Report for the linked drivers
  restdocs conditions

  # Pretend only the fluent client is on the classpath
  restdocs conditions --libraries restdocs/fluent,resty

  # Machine-readable
  restdocs conditions -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "text" && output != "yaml" {
				return fmt.Errorf("unknown output %q (want text or yaml)", output)
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("app-type") {
				cfg.Capabilities.AppType = appType
			}
			if cmd.Flags().Changed("libraries") {
				cfg.Capabilities.Libraries = append([]string{}, libraries...)
			}

			opts, done, err := root.appOptions(cmd)
			if err != nil {
				return err
			}
			defer done()

			application, err := app.New(append(opts, app.WithConfig(cfg))...)
			if err != nil {
				return err
			}
			if err := application.Boot(); err != nil {
				return err
			}

			entries := application.Report().Entries()
			if output == "yaml" {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(entries)
			}
			printReport(cmd.OutOrStdout(), application.Capabilities().String(), entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&appType, "app-type", "", "application type: none, request-response or reactive")
	cmd.Flags().StringSliceVar(&libraries, "libraries", nil, "libraries to report as present (replaces detection)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or yaml")
	return cmd
}

func printReport(w io.Writer, caps string, entries []condition.Entry) {
	fmt.Fprintln(w, headerStyle.Render("Capabilities"))
	fmt.Fprintf(w, "  %s\n\n", caps)
	fmt.Fprintln(w, headerStyle.Render("Conditions"))
	for _, e := range entries {
		verdict := matchStyle.Render("MATCH")
		if !e.Match {
			verdict = noMatchStyle.Render("NO MATCH")
		}
		fmt.Fprintf(w, "  %s %s\n", verdict, e.Source)
		for _, m := range e.Messages {
			fmt.Fprintf(w, "      %s\n", messageStyle.Render(m))
		}
	}
}
