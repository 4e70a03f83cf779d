package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newShowCommand() *cobra.Command {
	var (
		style string
		width int
	)
	cmd := &cobra.Command{
		Use:   "show DIR",
		Short: "Render generated snippets in the terminal",
		Long: `Print every snippet under DIR in path order. Markdown snippets are
rendered, Asciidoctor snippets are printed as written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := newRenderer(style, width)
			if err != nil {
				return err
			}
			root := args[0]
			var paths []string
			err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				switch filepath.Ext(path) {
				case ".md", ".adoc":
					if !d.IsDir() {
						paths = append(paths, path)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no snippets under %s", root)
			}

			w := cmd.OutOrStdout()
			for _, path := range paths {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				rel, _ := filepath.Rel(root, path)
				fmt.Fprintln(w, headerStyle.Render(filepath.ToSlash(rel)))
				body := string(raw)
				if strings.HasSuffix(path, ".md") {
					if body, err = renderer.Render(body); err != nil {
						return fmt.Errorf("rendering %s: %w", rel, err)
					}
				}
				fmt.Fprintln(w, body)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light, notty or ascii")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width for markdown")
	return cmd
}

func newRenderer(style string, width int) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithStandardStyle(style)
	if style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	return r, nil
}
