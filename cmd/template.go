package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/labelkit/internal/editor"
	"github.com/ziadkadry99/labelkit/internal/model"
	"github.com/ziadkadry99/labelkit/internal/progress"
	"github.com/ziadkadry99/labelkit/internal/prompt"
	"github.com/ziadkadry99/labelkit/internal/templates"
)

var (
	assumeYes    bool
	exportFormat string
	exportOutput string
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"templates"},
	Short:   "Inspect, import and export label templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplateList,
}

var templateShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one template as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateShow,
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a template; sites keep their reference to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateDelete,
}

var templateExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all templates as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE:  runTemplateExport,
}

var templateImportCmd = &cobra.Command{
	Use:   "import <glob>...",
	Short: "Import templates from JSON or YAML files matching the given globs",
	Long: `Imports templates from every file matching the given patterns. Patterns
support ** (e.g. labels/**/*.yaml). A template whose id is already stored
replaces it; others are appended.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTemplateImport,
}

func init() {
	templateDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
	templateImportCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask before replacing templates")
	templateExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "json or yaml (default from --output extension, else json)")
	templateExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateDeleteCmd)
	templateCmd.AddCommand(templateExportCmd)
	templateCmd.AddCommand(templateImportCmd)
	rootCmd.AddCommand(templateCmd)
}

// confirmer answers prompts on the terminal unless --yes was given.
func confirmer() prompt.Confirmer {
	if assumeYes {
		return prompt.Always(true)
	}
	return prompt.Terminal{}
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	list := b.templates.Load(cmd.Context())
	if len(list) == 0 {
		fmt.Println("No templates defined. Import some with `labelkit template import`.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tELEMENTS\tDESCRIPTION")
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t.ID, t.Name, t.SizeLabel(), len(t.Elements), truncate(t.Description, 60))
	}
	return w.Flush()
}

func runTemplateShow(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	t, ok := b.templates.Get(cmd.Context(), args[0])
	if !ok {
		return fmt.Errorf("template %q not found", args[0])
	}
	return templates.Encode(os.Stdout, []model.Template{t}, templates.FormatYAML)
}

func runTemplateDelete(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := cmd.Context()
	ed := editor.New(b.templates, b.log)
	ed.Reload(ctx)
	err = ed.Delete(ctx, args[0], confirmer())
	if errors.Is(err, prompt.ErrDeclined) {
		fmt.Println("Aborted.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Deleted template %s\n", args[0])
	return nil
}

func runTemplateExport(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	format := templates.Format(exportFormat)
	if format == "" {
		format = templates.FormatForPath(exportOutput)
	}

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOutput, err)
		}
		defer f.Close()
		out = f
	}
	return b.templates.Export(cmd.Context(), out, format)
}

func runTemplateImport(cmd *cobra.Command, args []string) error {
	var paths []string
	for _, pattern := range args {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files match %v", args)
	}

	incoming, err := readTemplateFiles(paths, progress.NewReporter("Importing templates"))
	if err != nil {
		return err
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := cmd.Context()
	if n := countExisting(ctx, b.templates, incoming); n > 0 {
		if !confirmer().Confirm(fmt.Sprintf("Replace %d existing template(s)?", n)) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	added, replaced, err := b.templates.Import(ctx, incoming)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d template(s) from %d file(s): %d added, %d replaced\n",
		added+replaced, len(paths), added, replaced)
	return nil
}

// readTemplateFiles decodes every file, reporting progress per file.
func readTemplateFiles(paths []string, rep progress.Reporter) ([]model.Template, error) {
	rep.Start(len(paths))
	defer rep.Finish()

	var out []model.Template
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		list, err := templates.Decode(data, templates.FormatForPath(path))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, list...)
		rep.Update(i+1, filepath.Base(path))
	}
	return out, nil
}

func countExisting(ctx context.Context, store *templates.Store, incoming []model.Template) int {
	stored := store.Load(ctx)
	n := 0
	for _, t := range incoming {
		if t.ID == "" {
			continue
		}
		if _, ok := model.FindTemplate(stored, t.ID); ok {
			n++
		}
	}
	return n
}
