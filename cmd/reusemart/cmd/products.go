package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/service"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalog",
	Args:  cobra.NoArgs,
	RunE:  runApp(runProductsList),
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE:  runApp(runProductsList),
}

var productsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one product with its discussion",
	Args:  cobra.ExactArgs(1),
	RunE:  runApp(runProductsShow),
}

var topSellersCmd = &cobra.Command{
	Use:   "top-sellers",
	Short: "Show the current top-seller badges",
	Args:  cobra.NoArgs,
	RunE:  runApp(runTopSellers),
}

func init() {
	productsCmd.AddCommand(productsListCmd, productsShowCmd)
	rootCmd.AddCommand(productsCmd, topSellersCmd)
}

// The catalog is open to guests and logged-out users.

func runProductsList(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	screen := traced(a.logger, "products", service.NewListScreen[market.Product]())
	screen.Load(ctx, a.clients.Catalog.Products, "products")
	return show(cmd, screen, "No products.", func(w io.Writer, ps []market.Product) {
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tRATING")
		for _, p := range ps {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\n", p.ID, p.Name, orDash(p.Category), orDash(p.Price), p.Rating)
		}
	})
}

// productPage is the product screen: the product and its discussion.
type productPage struct {
	Product     market.Product      `json:"product" yaml:"product"`
	Discussions []market.Discussion `json:"discussions" yaml:"discussions"`
}

func runProductsShow(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	id, err := parseID("product id", args[0])
	if err != nil {
		return err
	}
	screen := traced(a.logger, "product", service.NewScreen[productPage](nil))
	screen.Load(ctx, func(ctx context.Context) (productPage, error) {
		p, err := a.clients.Catalog.Product(ctx, id)
		if err != nil {
			return productPage{}, err
		}
		ds, err := a.clients.Catalog.Discussions(ctx, id)
		if err != nil {
			return productPage{}, err
		}
		return productPage{Product: p, Discussions: ds}, nil
	}, "product", args[0])
	return show(cmd, screen, "", func(w io.Writer, pg productPage) {
		p := pg.Product
		fmt.Fprintf(w, "%s\n\n", p.Name)
		fmt.Fprintf(w, "Price:\t%s\n", orDash(p.Price))
		fmt.Fprintf(w, "Category:\t%s\n", orDash(p.Category))
		fmt.Fprintf(w, "Status:\t%s\n", orDash(p.Status))
		fmt.Fprintf(w, "Warranty:\t%s\n", orDash(p.Warranty))
		fmt.Fprintf(w, "Weight:\t%s\n", orDash(p.Weight))
		fmt.Fprintf(w, "Rating:\t%.1f\n", p.Rating)
		if p.SellerName != "" {
			fmt.Fprintf(w, "Seller:\t%s (%.1f, since %s)\n", p.SellerName, p.SellerRating, orDash(p.SellerSince))
		}
		if p.Description != "" {
			fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(p.Description))
		}
		if len(pg.Discussions) == 0 {
			return
		}
		fmt.Fprintln(w, "\nDiscussion:")
		for _, d := range pg.Discussions {
			fmt.Fprintf(w, "  %s\t%s:\t%s\n", date(d.CreatedAt), orDash(d.Author), d.Question)
			if d.Answer != "" {
				fmt.Fprintf(w, "  \tReuseMart:\t%s\n", d.Answer)
			}
		}
	})
}

func runTopSellers(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	screen := traced(a.logger, "top-sellers", service.NewListScreen[market.TopSeller]())
	screen.Load(ctx, a.clients.Catalog.TopSellers, "top-sellers")
	return show(cmd, screen, "No top sellers this period.", func(w io.Writer, ts []market.TopSeller) {
		fmt.Fprintln(w, "CONSIGNOR\tNAME\tFROM\tTO")
		for _, t := range ts {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ConsignorID, t.ConsignorName, orDash(t.From), orDash(t.To))
		}
	})
}
