package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

func newCustomerCmd(s *session) *cobra.Command {
	customerCmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage customers",
	}

	var name, email string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.engine.CreateCustomer(name, email)
			if err != nil {
				return err
			}
			if s.printer.JSONMode() {
				return s.printer.JSON(map[string]int{"id": id})
			}
			s.printer.Success("Customer %d created", id)
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Customer name (required)")
	createCmd.Flags().StringVar(&email, "email", "", "Customer email (required)")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("email")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			customer, err := s.engine.GetCustomer(id)
			if err != nil {
				return err
			}
			return s.printCustomers([]domain.Customer{customer}, true)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.printCustomers(s.engine.ListCustomers(), false)
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change customer name and/or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var upd domain.CustomerUpdate
			if upd.Name, err = optionalString(cmd, "name"); err != nil {
				return err
			}
			if upd.Email, err = optionalString(cmd, "email"); err != nil {
				return err
			}
			updated, err := s.engine.UpdateCustomer(id, upd)
			if err != nil {
				return err
			}
			return s.reportChange("Customer", id, "updated", updated)
		},
	}
	updateCmd.Flags().String("name", "", "New customer name")
	updateCmd.Flags().String("email", "", "New customer email")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			deleted, err := s.engine.DeleteCustomer(id)
			if err != nil {
				return err
			}
			return s.reportChange("Customer", id, "deleted", deleted)
		},
	}

	customerCmd.AddCommand(createCmd, getCmd, listCmd, updateCmd, deleteCmd)
	return customerCmd
}

func (s *session) printCustomers(customers []domain.Customer, single bool) error {
	if s.printer.JSONMode() {
		if single && len(customers) == 1 {
			return s.printer.JSON(customers[0])
		}
		return s.printer.JSON(customers)
	}
	if len(customers) == 0 {
		s.printer.Muted("No customers")
		return nil
	}

	rows := make([][]string, 0, len(customers))
	for _, customer := range customers {
		rows = append(rows, []string{strconv.Itoa(customer.ID()), customer.Name(), customer.Email()})
	}
	return s.printer.Table([]string{"ID", "NAME", "EMAIL"}, rows)
}
