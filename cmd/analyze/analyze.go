// Package analyze implements the analyze command.
package analyze

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/analysis"
	"github.com/tphakala/prodcon/internal/report"
)

// Command creates a command that prints the report for one product.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <k|product>",
		Short: "Print the report for a single product",
		Long: "Analyze a product without starting a run. The argument is either the " +
			"centre letter k or the full three-letter product, e.g. \"m\" or \"lmn\".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ParseArg(args[0])
			if err != nil {
				return err
			}
			r := analysis.ProductAnalyzer{}.Analyze(p)
			return report.NewConsole(cmd.OutOrStdout()).Analysis(&r)
		},
	}

	return cmd
}

// ParseArg accepts a single letter k or a three-letter product.
func ParseArg(arg string) (alphabet.Product, error) {
	if len(arg) == 1 {
		return alphabet.StopSequence(arg)
	}
	return alphabet.ParseProduct(arg)
}
