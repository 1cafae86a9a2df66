package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/reusemart/reusemart-mobile/internal/domain/dispatch"
	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/service"
)

var (
	historyFrom string
	historyTo   string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the profile screen for your role",
	RunE:  runApp(runProfile),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your history: orders, consignments, deliveries or commissions",
	Long: `Show the history screen for your role.

Buyers see orders, consignors see consignment transactions, couriers see
finished deliveries and hunters see commissions. --from and --to filter
buyer and consignor history by date (YYYY-MM-DD); omit both for all time.`,
	Args: cobra.NoArgs,
	RunE: runApp(runHistory),
}

var orderCmd = &cobra.Command{
	Use:   "order <id>",
	Short: "Show one order with its items",
	Args:  cobra.ExactArgs(1),
	RunE:  runApp(runOrder),
}

var rateCmd = &cobra.Command{
	Use:   "rate <item-id> <1-5>",
	Short: "Rate an item you bought",
	Args:  cobra.ExactArgs(2),
	RunE:  runApp(runRate),
}

func init() {
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "start date, YYYY-MM-DD")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "end date, YYYY-MM-DD")
	rootCmd.AddCommand(profileCmd, historyCmd, orderCmd, rateCmd)
}

func runProfile(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	sess, _, view := a.session(ctx)
	if err := requireLogin(view); err != nil {
		return err
	}
	screen := traced(a.logger, "profile", service.NewScreen[service.Profile](nil))
	screen.Load(ctx, func(ctx context.Context) (service.Profile, error) {
		return a.account.Profile(ctx, view, sess)
	}, string(view), sess.ActorID)
	return show(cmd, screen, "", func(w io.Writer, p service.Profile) {
		switch {
		case p.Buyer != nil:
			fmt.Fprintf(w, "Name:\t%s\n", p.Buyer.Name)
			fmt.Fprintf(w, "Email:\t%s\n", p.Buyer.Email)
			fmt.Fprintf(w, "Points:\t%d\n", p.Buyer.Points)
		case p.Consignor != nil:
			fmt.Fprintf(w, "Name:\t%s\n", p.Consignor.Name)
			fmt.Fprintf(w, "Email:\t%s\n", p.Consignor.Email)
			fmt.Fprintf(w, "Balance:\t%s\n", rupiah(p.Consignor.Balance))
			fmt.Fprintf(w, "Points:\t%d\n", p.Consignor.Points)
		case p.Staff != nil:
			fmt.Fprintf(w, "Name:\t%s\n", p.Staff.Name)
			fmt.Fprintf(w, "Position:\t%s\n", orDash(p.Staff.Position))
			fmt.Fprintf(w, "Email:\t%s\n", p.Staff.Email)
			fmt.Fprintf(w, "Phone:\t%s\n", orDash(p.Staff.Phone))
			if p.View == dispatch.HunterView || p.Staff.Commission > 0 {
				fmt.Fprintf(w, "Commission:\t%s\n", rupiah(p.Staff.Commission))
			}
		}
	})
}

// parseRange reads --from/--to. Either bound may be omitted.
func parseRange(from, to string) (market.DateRange, error) {
	var rng market.DateRange
	var err error
	if from != "" {
		if rng.Start, err = time.Parse(market.DateLayout, from); err != nil {
			return rng, fmt.Errorf("--from: want YYYY-MM-DD, got %q", from)
		}
	}
	if to != "" {
		if rng.End, err = time.Parse(market.DateLayout, to); err != nil {
			return rng, fmt.Errorf("--to: want YYYY-MM-DD, got %q", to)
		}
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		return rng, fmt.Errorf("--to (%s) is before --from (%s)", to, from)
	}
	return rng, nil
}

func runHistory(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	rng, err := parseRange(historyFrom, historyTo)
	if err != nil {
		return err
	}
	sess, _, view := a.session(ctx)
	if err := requireLogin(view); err != nil {
		return err
	}
	screen := traced(a.logger, "history", service.NewScreen(func(h service.History) bool { return h.Len() == 0 }))
	screen.Load(ctx, func(ctx context.Context) (service.History, error) {
		return a.account.History(ctx, view, sess, rng)
	}, string(view), rng.StartParam(), rng.EndParam())
	return show(cmd, screen, "No history yet.", func(w io.Writer, h service.History) {
		switch h.View {
		case dispatch.ConsignorView:
			fmt.Fprintln(w, "ID\tDATE\tITEM\tSTATUS\tPRICE")
			for _, c := range h.Consignments {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, date(c.Date), c.ItemName, orDash(c.Status), rupiah(c.Price))
			}
		case dispatch.CourierView:
			writeTasks(w, h.Tasks)
		case dispatch.HunterView:
			writeCommissions(w, h.Commissions)
		default:
			fmt.Fprintln(w, "ID\tDATE\tCODE\tSTATUS\tITEMS\tTOTAL")
			for _, o := range h.Orders {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n", o.ID, date(o.Date), orDash(o.Code), orDash(o.Status), o.ItemCount, rupiah(o.Total))
			}
		}
	})
}

// parseID parses a positive id argument.
func parseID(name, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, s)
	}
	return id, nil
}

func runOrder(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	id, err := parseID("order id", args[0])
	if err != nil {
		return err
	}
	if _, _, view := a.session(ctx); view != dispatch.BuyerView {
		if err := requireLogin(view); err != nil {
			return err
		}
		return fmt.Errorf("orders are only available to buyers (you are %s)", view)
	}
	screen := traced(a.logger, "order", service.NewScreen[market.OrderDetail](nil))
	screen.Load(ctx, func(ctx context.Context) (market.OrderDetail, error) {
		return a.clients.Buyer.OrderDetail(ctx, id)
	}, "order", args[0])
	return show(cmd, screen, "", func(w io.Writer, o market.OrderDetail) {
		fmt.Fprintf(w, "Order:\t%d %s\n", o.ID, o.Code)
		fmt.Fprintf(w, "Date:\t%s\n", date(o.Date))
		fmt.Fprintf(w, "Status:\t%s\n", orDash(o.Status))
		fmt.Fprintf(w, "Payment:\t%s\n", orDash(o.PaymentMethod))
		fmt.Fprintf(w, "Delivery:\t%s\n", orDash(o.DeliveryMethod))
		if o.Address != "" {
			fmt.Fprintf(w, "Address:\t%s\n", o.Address)
		}
		fmt.Fprintf(w, "Points:\t+%d / -%d\n", o.PointsEarned, o.PointsUsed)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "ITEM\tNAME\tQTY\tPRICE\tSUBTOTAL")
		for _, it := range o.Items {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", it.ItemID, it.Name, it.Quantity, rupiah(it.UnitPrice), rupiah(it.Subtotal))
		}
		fmt.Fprintf(w, "\t\t\tTOTAL\t%s\n", rupiah(o.Total))
	})
}

func runRate(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	itemID, err := parseID("item id", args[0])
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rating must be a number from 1 to 5, got %q", args[1])
	}
	if _, _, view := a.session(ctx); view != dispatch.BuyerView {
		if err := requireLogin(view); err != nil {
			return err
		}
		return fmt.Errorf("only buyers can rate items (you are %s)", view)
	}
	// Out-of-range ratings are rejected by the client before any request.
	if err := a.clients.Buyer.SubmitRating(ctx, itemID, rating); err != nil {
		return err
	}
	return message(cmd, map[string]int{"item_id": itemID, "rating": rating}, "Rated item %d with %d/5.", itemID, rating)
}
