package cmd

import (
	"fmt"
	"strings"

	"github.com/matthieukhl/shopcore/internal/auth"
	"github.com/matthieukhl/shopcore/internal/pricing"
	"github.com/spf13/cobra"
)

var showOrders bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print revenue, top product and out-of-stock listings",
	Long: `Load the current store state and print the administrative dashboard:
order count, total revenue, the best-selling product and every product
that is out of stock.`,
	RunE: printReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&showOrders, "orders", false, "List every order with its customer")
}

func printReport(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 Building report...")

	_, a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.Reports.Dashboard(auth.System())
	if err != nil {
		return err
	}

	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("📦 Products: %d\n", len(d.Products))
	fmt.Printf("🛒 Orders:   %d\n", d.OrderCount)
	fmt.Printf("💰 Revenue:  %s\n", d.Revenue.StringFixed(pricing.Places))

	if d.TopProduct == nil {
		fmt.Println("🏆 Top product: none yet")
	} else {
		name := "(deleted)"
		if d.TopProduct.Product != nil {
			name = d.TopProduct.Product.Name
		}
		fmt.Printf("🏆 Top product: %s %s (%d sold)\n", d.TopProduct.ProductID, name, d.TopProduct.Quantity)
	}

	if len(d.OutOfStock) == 0 {
		fmt.Println("✅ Nothing is out of stock")
	} else {
		fmt.Printf("\n⚠️  %d product%s out of stock:\n", len(d.OutOfStock), plural(len(d.OutOfStock)))
		for _, p := range d.OutOfStock {
			fmt.Printf("   • [%s] %s\n", p.ID, truncate(p.Name, 50))
		}
	}

	if showOrders {
		r, err := a.Reports.RevenueReport(auth.System())
		if err != nil {
			return err
		}
		fmt.Printf("\n📋 %d order%s:\n", len(r.Orders), plural(len(r.Orders)))
		for _, o := range r.Orders {
			fmt.Printf("   %s  %s  %-20s %10s  %s\n",
				o.ID, o.CreatedAt.Format("2006-01-02 15:04"), truncate(o.CustomerName, 20),
				o.Total.StringFixed(pricing.Places), o.Status)
		}
	}

	return nil
}

func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
