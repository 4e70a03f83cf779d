package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-restdocs/framework/app"
	"github.com/km-arc/go-restdocs/framework/capability"
	"github.com/km-arc/go-restdocs/framework/container"
	"github.com/km-arc/go-restdocs/internal/sample"
	"github.com/km-arc/go-restdocs/restdocs"
	"github.com/km-arc/go-restdocs/restdocs/mockhttp"
)

var formats = map[string]restdocs.TemplateFormat{
	restdocs.Asciidoctor.ID: restdocs.Asciidoctor,
	restdocs.Markdown.ID:    restdocs.Markdown,
}

// sampleProvider customizes the auto-configured configurer the way a test
// suite would.
type sampleProvider struct {
	container.BaseProvider
	format restdocs.TemplateFormat
}

func (p *sampleProvider) Register(c *container.Container) error {
	c.Instance(mockhttp.CustomizerKey, mockhttp.CustomizerFunc(func(cfg *mockhttp.Configurer) {
		cfg.WithTemplateFormat(p.format).WithPreprocessors(restdocs.PrettyPrint())
	}))
	return nil
}

func newSampleCommand(root *rootOptions) *cobra.Command {
	var (
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Document the bundled users API",
		Long: `Serve a small in-memory users API through the auto-configured in-process
harness and write a snippet directory per request.

The documented URI follows the test.restdocs.uri-scheme, uri-host and
uri-port configuration keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tf, ok := formats[format]
			if !ok {
				return fmt.Errorf("unknown format %q (want asciidoctor or markdown)", format)
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.Docs.OutputDir
			}

			opts, done, err := root.appOptions(cmd)
			if err != nil {
				return err
			}
			defer done()

			docs := restdocs.NewManual(out)
			application, err := app.New(append(opts,
				app.WithConfig(cfg),
				app.WithCapabilities(capability.New(capability.RequestResponse, mockhttp.Library)),
				app.WithContextProvider(docs),
				app.WithProviders(&sampleProvider{format: tf}),
			)...)
			if err != nil {
				return err
			}
			if err := application.Boot(); err != nil {
				return err
			}
			bc, err := container.Resolve[*mockhttp.BuilderCustomizer](application.Container, mockhttp.BuilderCustomizerKey)
			if err != nil {
				return err
			}

			b := mockhttp.NewBuilder(sample.API(sample.NewUsers(sample.Seed)))
			bc.Customize(b)

			docs.BeforeTest("Sample")
			defer docs.AfterTest()
			documented, err := sample.Run(b.Build(), sample.Tour())
			for _, d := range documented {
				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %d\n", d.Identifier, d.Status)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nwrote %d operations to %s\n", len(documented), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "snippet directory (default: docs.output-dir)")
	cmd.Flags().StringVarP(&format, "format", "f", restdocs.Asciidoctor.ID, "snippet format: asciidoctor or markdown")
	return cmd
}
