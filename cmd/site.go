package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/labelkit/internal/model"
	"github.com/ziadkadry99/labelkit/internal/prompt"
	"github.com/ziadkadry99/labelkit/internal/sites"
	"github.com/ziadkadry99/labelkit/internal/urlmatch"
)

var siteCmd = &cobra.Command{
	Use:     "site",
	Aliases: []string{"sites"},
	Short:   "Inspect the site rules that offer templates on web pages",
}

var siteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List site rules",
	Args:  cobra.NoArgs,
	RunE:  runSiteList,
}

var siteDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a site rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runSiteDelete,
}

var siteMatchCmd = &cobra.Command{
	Use:   "match [url]",
	Short: "Show which site and templates a URL would get",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSiteMatch,
}

func init() {
	siteDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")

	siteCmd.AddCommand(siteListCmd)
	siteCmd.AddCommand(siteDeleteCmd)
	siteCmd.AddCommand(siteMatchCmd)
	rootCmd.AddCommand(siteCmd)
}

func runSiteList(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	reg := sites.NewRegistry(b.templates, b.sites, b.log)
	reg.Reload(cmd.Context())
	view := reg.Render()
	if len(view.Sites) == 0 {
		fmt.Println("No sites defined.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPATTERN\tTEMPLATES\tMISSING")
	for _, s := range view.Sites {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Name, s.URIPattern, s.Templates, s.Missing)
	}
	return w.Flush()
}

func runSiteDelete(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := cmd.Context()
	reg := sites.NewRegistry(b.templates, b.sites, b.log)
	reg.Reload(ctx)
	err = reg.Remove(ctx, args[0], confirmer())
	if errors.Is(err, prompt.ErrDeclined) {
		fmt.Println("Aborted.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Deleted site %s\n", args[0])
	return nil
}

func runSiteMatch(cmd *cobra.Command, args []string) error {
	var url string
	if len(args) == 1 {
		url = args[0]
	} else {
		answer, err := prompt.Ask("URL", "https://")
		if err != nil {
			return err
		}
		url = strings.TrimSpace(answer)
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := cmd.Context()
	site, ok := urlmatch.FirstMatch(b.sites.Load(ctx), url, b.log)
	if !ok {
		fmt.Printf("No site matches %s\n", url)
		return nil
	}
	found, missing := model.ResolveTemplates(site.TemplateIDs, b.templates.Load(ctx))
	fmt.Printf("Site matched: %s (%s)\n", site.Name, site.ID)
	fmt.Printf("  Pattern: %s\n", site.URIPattern)
	for i, t := range found {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Printf("  %s %s (%s, %s)\n", marker, t.Name, t.ID, t.SizeLabel())
	}
	if len(missing) > 0 {
		fmt.Printf("  Missing templates: %s\n", strings.Join(missing, ", "))
	}
	return nil
}
