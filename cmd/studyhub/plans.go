package main

import (
	"fmt"

	"github.com/MarcoPoloResearchLab/studyhub/internal/plans"
	"github.com/MarcoPoloResearchLab/studyhub/internal/ui"
	"github.com/MarcoPoloResearchLab/studyhub/internal/views"
	"github.com/spf13/cobra"
)

func newPlansCommand(state *cli) *cobra.Command {
	plansCmd := &cobra.Command{
		Use:   "plans",
		Short: "Manage study plans",
	}
	plansCmd.AddCommand(
		newPlansListCommand(state),
		newPlansAddCommand(state),
		newPlansDoneCommand(state),
		newPlansRemoveCommand(state),
	)
	return plansCmd
}

func (s *cli) findPlan(arg string) (plans.Plan, error) {
	items := s.app.Plans.All()
	ids := make([]string, 0, len(items))
	for _, plan := range items {
		ids = append(ids, plan.ID)
	}
	id, err := resolveID(ids, arg)
	if err != nil {
		return plans.Plan{}, err
	}
	plan, _ := s.app.Plans.FindByID(id)
	return plan, nil
}

func newPlansListCommand(state *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans by deadline",
		Args:  cobra.NoArgs,
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			var filter views.PlanFilter
			filter.Subject, _ = cmd.Flags().GetString("subject")
			filter.Priority, _ = cmd.Flags().GetString("priority")
			filter.Status, _ = cmd.Flags().GetString("status")

			items := views.FilterAndSortPlans(state.app.Plans.All(), filter)
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No plans match.")
				return nil
			}
			for _, plan := range items {
				fmt.Fprint(out, ui.FormatPlanListItem(plan))
			}
			return nil
		}),
	}
	cmd.Flags().String("subject", views.FilterAll, "subject to show")
	cmd.Flags().String("priority", views.FilterAll, "priority to show (low, medium, high)")
	cmd.Flags().String("status", views.FilterAll, "status to show (active, completed)")
	return cmd
}

func newPlansAddCommand(state *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a plan",
		Args:  cobra.ExactArgs(1),
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			input := plans.PlanInput{Title: args[0]}
			input.Subject, _ = cmd.Flags().GetString("subject")
			input.Description, _ = cmd.Flags().GetString("description")
			input.Deadline, _ = cmd.Flags().GetString("deadline")
			input.Priority, _ = cmd.Flags().GetString("priority")
			if _, ok := plans.ParsePriority(input.Priority); !ok {
				return fmt.Errorf("unknown priority %q", input.Priority)
			}

			plan, err := state.app.Plans.Save(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("failed to save plan: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Created plan %s", ui.ShortID(plan.ID))))
			return nil
		}),
	}
	cmd.Flags().StringP("subject", "s", "", "subject the plan belongs to")
	cmd.Flags().StringP("description", "d", "", "details")
	cmd.Flags().String("deadline", "", "deadline date (YYYY-MM-DD)")
	cmd.Flags().StringP("priority", "p", string(plans.PriorityMedium), "low, medium or high")
	return cmd
}

func newPlansDoneCommand(state *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a plan completed",
		Args:  cobra.ExactArgs(1),
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			plan, err := state.findPlan(args[0])
			if err != nil {
				return err
			}
			undo, _ := cmd.Flags().GetBool("undo")
			if _, _, err := state.app.Plans.SetCompleted(cmd.Context(), plan.ID, !undo); err != nil {
				return fmt.Errorf("failed to update plan: %w", err)
			}
			verb := "Completed"
			if undo {
				verb = "Reopened"
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s plan %s", verb, ui.ShortID(plan.ID))))
			return nil
		}),
	}
	cmd.Flags().Bool("undo", false, "mark the plan active again")
	return cmd
}

func newPlansRemoveCommand(state *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a plan",
		Args:  cobra.ExactArgs(1),
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			plan, err := state.findPlan(args[0])
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			out := cmd.OutOrStdout()
			if !force && !ui.Confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete plan %q (%s)?", plan.Title, ui.ShortID(plan.ID))) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			if _, err := state.app.Plans.Delete(cmd.Context(), plan.ID); err != nil {
				return fmt.Errorf("failed to delete plan: %w", err)
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Deleted plan %s", ui.ShortID(plan.ID))))
			return nil
		}),
	}
	cmd.Flags().BoolP("force", "f", false, "skip confirmation")
	return cmd
}
