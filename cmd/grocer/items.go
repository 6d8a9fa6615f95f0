package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dukerupert/grocer/internal/auth"
	"github.com/dukerupert/grocer/internal/grocery"
	"github.com/dukerupert/grocer/internal/model"
	"github.com/spf13/cobra"
)

var errNoSuchItem = errors.New("no such item")

func newAddCmd(a *app) *cobra.Command {
	var quantity, priority string
	var days int
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an item to the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd); err != nil {
				return err
			}
			p, err := grocery.ParsePriority(priority)
			if err != nil {
				return err
			}
			d := grocery.Draft{
				Name:     strings.Join(args, " "),
				Quantity: quantity,
				Priority: p,
			}
			if p == model.PriorityMedium {
				d.DaysUntilCritical = &days
			}
			d, err = d.Normalize()
			if err != nil {
				return err
			}

			item, events := a.list.AddItem(d)
			printEvents(cmd.ErrOrStderr(), events)
			fmt.Fprintln(cmd.OutOrStdout(), item.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&quantity, "qty", "q", "", "Quantity, e.g. \"2 lbs\"")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(model.PriorityMedium), "high, medium or low")
	cmd.Flags().IntVarP(&days, "days", "d", grocery.DefaultDaysUntilCritical, "Days until a medium item becomes high priority")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the list, most urgent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd); err != nil {
				return err
			}
			writeList(cmd.OutOrStdout(), auth.Username(cmd.Context()), a.list.Items(), time.Now())
			return nil
		},
	}
}

func writeList(w io.Writer, username string, items []model.GroceryItem, now time.Time) {
	sum := grocery.Summarize(items)
	fmt.Fprintf(w, "%s's list: %d items (%d high, %d medium, %d low), %d purchased\n",
		username, sum.Total, sum.High, sum.Medium, sum.Low, sum.Purchased)
	if sum.Total == 0 {
		fmt.Fprintln(w, "Your list is empty. Add something with `grocer add`.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tQTY\tPRIORITY\tNOTE")
	for _, item := range grocery.DisplayOrder(items) {
		mark := "[ ]"
		if item.IsPurchased {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, item.ID, item.Name, item.Quantity, item.Priority, escalationNote(item, now))
	}
	tw.Flush()
}

func escalationNote(item model.GroceryItem, now time.Time) string {
	if item.IsPurchased || item.Priority != model.PriorityMedium {
		return ""
	}
	days, ok := grocery.DaysLeft(item, now)
	switch {
	case !ok:
		return ""
	case days <= 0:
		return "due for high priority"
	case days == 1:
		return "high priority in 1 day"
	default:
		return fmt.Sprintf("high priority in %d days", days)
	}
}

func newEditCmd(a *app) *cobra.Command {
	var name, quantity, priority string
	var days int
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd); err != nil {
				return err
			}
			var u grocery.Update
			flags := cmd.Flags()
			if flags.Changed("name") {
				n := strings.TrimSpace(name)
				if n == "" {
					return grocery.ErrEmptyName
				}
				u.Name = &n
			}
			if flags.Changed("qty") {
				q := strings.TrimSpace(quantity)
				u.Quantity = &q
			}
			if flags.Changed("priority") {
				p, err := grocery.ParsePriority(priority)
				if err != nil {
					return err
				}
				u.Priority = &p
			}
			if flags.Changed("days") {
				if days < 1 {
					return grocery.ErrInvalidDays
				}
				u.DaysUntilCritical = &days
			}

			found, events := a.list.UpdateItem(args[0], u)
			if !found {
				return fmt.Errorf("%w: %s", errNoSuchItem, args[0])
			}
			printEvents(cmd.ErrOrStderr(), events)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "New name")
	cmd.Flags().StringVarP(&quantity, "qty", "q", "", "New quantity")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "New escalation delay (the deadline is not moved)")
	return cmd
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Mark an item purchased, or not purchased",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd); err != nil {
				return err
			}
			found, events := a.list.TogglePurchased(args[0])
			if !found {
				return fmt.Errorf("%w: %s", errNoSuchItem, args[0])
			}
			printEvents(cmd.ErrOrStderr(), events)
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Remove an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd); err != nil {
				return err
			}
			found, events := a.list.DeleteItem(args[0])
			if !found {
				return fmt.Errorf("%w: %s", errNoSuchItem, args[0])
			}
			printEvents(cmd.ErrOrStderr(), events)
			return nil
		},
	}
}

func newSweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Promote medium items whose escalation time has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd); err != nil {
				return err
			}
			n, events := a.list.SweepPriorities()
			printEvents(cmd.ErrOrStderr(), events)
			fmt.Fprintf(cmd.OutOrStdout(), "%d item(s) escalated\n", n)
			return nil
		},
	}
}
