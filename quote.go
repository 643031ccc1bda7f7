package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"selection/logic"
)

// quoteFile is the offline product list format:
//
//	guests: 3
//	products:
//	  - name: Cerveza
//	    precio: 1500
//	    cantidad: 4
type quoteFile struct {
	Guests   int   `yaml:"guests"`
	Products []any `yaml:"products"`
}

var (
	quoteGuests int
	quotePath   string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute the per-guest quota for a YAML product list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := loadQuoteFile(quotePath)
		if err != nil {
			return err
		}
		guests := f.Guests
		if cmd.Flags().Changed("guests") {
			guests = quoteGuests
		}
		return writeQuote(cmd.OutOrStdout(), f.Products, guests)
	},
}

func init() {
	quoteCmd.Flags().IntVarP(&quoteGuests, "guests", "g", 0, "Number of guests (overrides the file)")
	quoteCmd.Flags().StringVarP(&quotePath, "file", "f", "", "YAML file with the product list")
	_ = quoteCmd.MarkFlagRequired("file")
}

func loadQuoteFile(path string) (*quoteFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read product list: %w", err)
	}
	var f quoteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse product list: %w", err)
	}
	return &f, nil
}

// writeQuote loads products into a throwaway session and prints the result.
func writeQuote(w io.Writer, products []any, guests int) error {
	form := logic.NewFormState()
	s := logic.NewSession("quote", form)
	s.Reconcile(products, logic.OriginExternal)
	s.SetGuests(guests)

	for _, inst := range s.Instances() {
		p := inst.Product
		fmt.Fprintf(w, "%-30s %4d x %10.2f\n", p.Name, p.Quantity, p.Price)
	}
	summary := s.Quota()
	fmt.Fprintf(w, "total:     %.2f\n", summary.TotalProducts)
	fmt.Fprintf(w, "guests:    %d\n", summary.GuestCount)
	fmt.Fprintf(w, "per guest: %.2f\n", summary.PerGuest)
	_, err := fmt.Fprintf(w, "quota:     %s\n", s.Display())
	return err
}
