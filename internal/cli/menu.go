package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// menuCmd represents the menu command
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive menu: search, analyze or batch-process businesses",
	Args:  cobra.NoArgs,
	RunE:  runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

// prompter reads trimmed answers from an input stream
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p prompter) ask(question string) string {
	_, _ = fmt.Fprint(p.out, question)
	line, _ := p.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func runMenu(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ds, err := a.dataset(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	in := prompter{in: bufio.NewReader(cmd.InOrStdin()), out: a.out}

	a.printf("Choose an option:\n")
	a.printf("1. Search for a business by name\n")
	a.printf("2. Analyze business by exact name\n")
	a.printf("3. Analyze business by business_id\n")
	a.printf("4. Process ALL businesses and save summary CSV (takes several hours)\n")

	switch in.ask("\nEnter choice (1/2/3/4): ") {
	case "1":
		term := in.ask("\nEnter business name to search: ")
		matches, err := ds.Search(term)
		a.renderer.RenderSearch(term, matches, a.cfg.Analysis.SearchDisplay)
		if err != nil {
			return nil
		}
		if strings.ToLower(in.ask("\nAnalyze one of these businesses? (y/n): ")) == "y" {
			name := in.ask("Enter exact business name from list above: ")
			return a.analyze(ctx, ds, name, "", "")
		}
	case "2":
		return a.analyze(ctx, ds, in.ask("\nEnter exact business name: "), "", "")
	case "3":
		return a.analyze(ctx, ds, "", in.ask("\nEnter business_id: "), "")
	case "4":
		if strings.ToLower(in.ask("\nThis will take several hours. Continue? (y/n): ")) != "y" {
			a.printf("Cancelled.\n")
			return nil
		}
		out := in.ask(fmt.Sprintf("Enter output filename (default: %s): ", a.cfg.Output.BatchFile))
		if out == "" {
			out = a.cfg.Output.BatchFile
		}
		return a.batch(ctx, ds.Businesses(), out, a.cfg.Output.SQLitePath, false)
	default:
		a.printf("Invalid choice.\n")
	}
	return nil
}
