package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/reusemart/reusemart-mobile/internal/domain/dispatch"
	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/service"
)

var claimYes bool

var merchCmd = &cobra.Command{
	Use:   "merch",
	Short: "Browse and claim merchandise with loyalty points",
}

var merchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List merchandise with your point balance",
	Args:  cobra.NoArgs,
	RunE:  runApp(runMerchList),
}

var merchClaimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "List your merchandise claims",
	Args:  cobra.NoArgs,
	RunE:  runApp(runMerchClaims),
}

var merchClaimCmd = &cobra.Command{
	Use:   "claim <merchandise-id>",
	Short: "Claim a merchandise item",
	Long: `Claim a merchandise item with loyalty points.

The claim is refused without asking the backend when the item is out of
stock or your balance is too low. You are asked to confirm unless --yes is
given.`,
	Args: cobra.ExactArgs(1),
	RunE: runApp(runMerchClaim),
}

func init() {
	merchClaimCmd.Flags().BoolVarP(&claimYes, "yes", "y", false, "skip the confirmation prompt")
	merchCmd.AddCommand(merchListCmd, merchClaimsCmd, merchClaimCmd)
	rootCmd.AddCommand(merchCmd)
}

// requireBuyer allows only sessions that dispatch to the buyer view.
func requireBuyer(ctx context.Context, a *app) error {
	_, _, view := a.session(ctx)
	if err := requireLogin(view); err != nil {
		return err
	}
	if view != dispatch.BuyerView {
		return fmt.Errorf("merchandise is only available to buyers (you are %s)", view)
	}
	return nil
}

func runMerchList(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if err := requireBuyer(ctx, a); err != nil {
		return err
	}
	screen := traced(a.logger, "merch", service.NewScreen(func(c service.Catalog) bool { return len(c.Items) == 0 }))
	screen.Load(ctx, a.merch.Refresh, "merch")
	return show(cmd, screen, "No merchandise available.", func(w io.Writer, c service.Catalog) {
		fmt.Fprintf(w, "Your points:\t%d\n\n", c.Points)
		fmt.Fprintln(w, "ID\tNAME\tPOINTS\tSTOCK\t")
		for _, m := range c.Items {
			note := ""
			switch {
			case m.Stock <= 0:
				note = "out of stock"
			case m.PointCost > c.Points:
				note = "not enough points"
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", m.ID, m.Name, m.PointCost, m.Stock, note)
		}
	})
}

func runMerchClaims(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if err := requireBuyer(ctx, a); err != nil {
		return err
	}
	screen := traced(a.logger, "claims", service.NewListScreen[market.ClaimRecord]())
	screen.Load(ctx, a.merch.Claims, "claims")
	return show(cmd, screen, "No claims yet.", func(w io.Writer, claims []market.ClaimRecord) {
		fmt.Fprintln(w, "ID\tDATE\tMERCHANDISE\tSTATUS")
		for _, c := range claims {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", c.ID, date(c.ClaimedAt), c.MerchandiseID, orDash(c.Status))
		}
	})
}

func runMerchClaim(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	id, err := parseID("merchandise id", args[0])
	if err != nil {
		return err
	}
	if err := requireBuyer(ctx, a); err != nil {
		return err
	}
	rec, err := a.merch.Claim(ctx, id, newConfirmer(cmd, claimYes))
	switch {
	case errors.Is(err, market.ErrNotConfirmed):
		return message(cmd, map[string]any{"merchandise_id": id, "claimed": false}, "Cancelled.")
	case errors.Is(err, market.ErrInsufficientPoints):
		return fmt.Errorf("%w (balance: %d points)", err, a.merch.Catalog().Points)
	case err != nil:
		return err
	}
	return emit(cmd, rec, func(w io.Writer) {
		fmt.Fprintf(w, "Claimed merchandise %d (claim %d, %s).\n", rec.MerchandiseID, rec.ID, orDash(rec.Status))
		fmt.Fprintf(w, "Remaining points:\t%d\n", a.merch.Catalog().Points)
	})
}
