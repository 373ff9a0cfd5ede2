package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchlist/internal/cli"
	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/service"
)

func workOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workorders",
		Aliases: []string{"wo"},
		Short:   "List and update builder work orders",
	}

	cmd.AddCommand(listWorkOrdersCmd())
	cmd.AddCommand(updateWorkOrderCmd())

	return cmd
}

func listWorkOrdersCmd() *cobra.Command {
	var filter service.WorkOrderFilter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work orders by urgency and planned date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if status != "" {
				parsed, err := parseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = parsed
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			orders, err := store.GetWorkOrders(ctx, filter)
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No work orders found"))
				return nil
			}
			return cli.WriteWorkOrders(cmd.OutOrStdout(), orders)
		},
	}

	cmd.Flags().StringVar(&filter.InspectionID, "inspection", "", "only work orders of this inspection")
	cmd.Flags().StringVar(&filter.Trade, "trade", "", "only work orders for this trade")
	cmd.Flags().StringVar(&status, "status", "", "only work orders in this status")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of work orders (0 for all)")

	return cmd
}

func updateWorkOrderCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "update <work-order-id> <status>",
		Short: "Move a work order to a new status",
		Long: fmt.Sprintf(`Move a work order to a new status.

Valid statuses: %s`, statusList()),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			status, err := parseStatus(args[1])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.UpdateWorkOrderStatus(ctx, args[0], status, notes); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Work order %s is now %s", args[0], status)))
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "replace the work order notes")

	return cmd
}

func parseStatus(raw string) (model.WorkOrderStatus, error) {
	status := model.WorkOrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", common.NewUserError(
			fmt.Sprintf("unknown status %q (valid: %s)", raw, statusList()), common.ErrInvalidStatus)
	}
	return status, nil
}

func statusList() string {
	names := make([]string, len(model.WorkOrderStatuses))
	for i, s := range model.WorkOrderStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
