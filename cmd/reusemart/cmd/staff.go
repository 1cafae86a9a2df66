package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reusemart/reusemart-mobile/internal/domain/dispatch"
	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/domain/session"
	"github.com/reusemart/reusemart-mobile/internal/service"
)

var (
	tasksDone   bool
	completeYes bool
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List your delivery tasks (couriers)",
	Args:  cobra.NoArgs,
	RunE:  runApp(runTasks),
}

var completeCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a delivery task as done (couriers)",
	Long: `Mark a delivery task as done.

You are asked to confirm unless --yes is given. A task that is already done,
or whose completion is still in progress, cannot be completed again.`,
	Args: cobra.ExactArgs(1),
	RunE: runApp(runComplete),
}

var commissionsCmd = &cobra.Command{
	Use:   "commissions",
	Short: "List your commissions (hunters)",
	Args:  cobra.NoArgs,
	RunE:  runApp(runCommissions),
}

func init() {
	tasksCmd.Flags().BoolVar(&tasksDone, "done", false, "show finished deliveries instead of open tasks")
	completeCmd.Flags().BoolVarP(&completeYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(tasksCmd, completeCmd, commissionsCmd)
}

// staffID returns the stored pegawai id when the session dispatches to want.
func staffID(ctx context.Context, a *app, want dispatch.View) (int, error) {
	sess, _, view := a.session(ctx)
	if err := requireLogin(view); err != nil {
		return 0, err
	}
	if view != want {
		return 0, fmt.Errorf("this command is for the %s view (you are %s)", want, view)
	}
	return pegawaiID(sess)
}

func pegawaiID(sess session.Session) (int, error) {
	id, err := strconv.Atoi(sess.ActorID)
	if err != nil || id <= 0 {
		return 0, errors.New("no staff id stored for this session, log in again")
	}
	return id, nil
}

func runTasks(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	id, err := staffID(ctx, a, dispatch.CourierView)
	if err != nil {
		return err
	}
	fetch, empty, kind := a.delivery.Tasks, "No open delivery tasks.", "open"
	if tasksDone {
		fetch, empty, kind = a.delivery.History, "No finished deliveries yet.", "done"
	}
	screen := traced(a.logger, "tasks", service.NewListScreen[market.DeliveryTask]())
	screen.Load(ctx, func(ctx context.Context) ([]market.DeliveryTask, error) {
		return fetch(ctx, id)
	}, kind, strconv.Itoa(id))
	return show(cmd, screen, empty, writeTasks)
}

func writeTasks(w io.Writer, tasks []market.DeliveryTask) {
	fmt.Fprintln(w, "ID\tCREATED\tMETHOD\tSTATUS")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, date(t.CreatedAt), orDash(t.DeliveryMethod), orDash(t.Status))
	}
}

func runComplete(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	taskID, err := parseID("task id", args[0])
	if err != nil {
		return err
	}
	id, err := staffID(ctx, a, dispatch.CourierView)
	if err != nil {
		return err
	}
	// Learn the task's status first so a finished task is refused locally.
	if _, err := a.delivery.Tasks(ctx, id); err != nil {
		a.logger.Warn("failed to load delivery tasks before completing", "task_id", taskID, "error", err)
	}
	if err := a.delivery.Complete(ctx, taskID, newConfirmer(cmd, completeYes)); err != nil {
		if errors.Is(err, market.ErrNotConfirmed) {
			return message(cmd, map[string]any{"task_id": taskID, "completed": false}, "Cancelled.")
		}
		return err
	}
	return message(cmd, map[string]any{"task_id": taskID, "completed": true}, "Task %d marked as %s.", taskID, market.StatusCompleted)
}

func runCommissions(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	id, err := staffID(ctx, a, dispatch.HunterView)
	if err != nil {
		return err
	}
	screen := traced(a.logger, "commissions", service.NewListScreen[market.Commission]())
	screen.Load(ctx, func(ctx context.Context) ([]market.Commission, error) {
		return a.clients.Hunter.Commissions(ctx, id)
	}, "commissions", strconv.Itoa(id))
	return show(cmd, screen, "No commissions yet.", writeCommissions)
}

func writeCommissions(w io.Writer, cs []market.Commission) {
	total := 0
	fmt.Fprintln(w, "ID\tDATE\tKIND\tTRANSACTION\tITEM STATUS\tAMOUNT")
	for _, c := range cs {
		total += c.Amount
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", c.ID, date(c.CreatedAt), orDash(c.Kind), c.TransactionID, orDash(c.ItemStatus), rupiah(c.Amount))
	}
	fmt.Fprintf(w, "\t\t\t\tTOTAL\t%s\n", rupiah(total))
}
