package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/hotelres/cmd/hotelctl/output"
	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

func newReservationCmd(s *session) *cobra.Command {
	reservationCmd := &cobra.Command{
		Use:     "reservation",
		Aliases: []string{"res"},
		Short:   "Book and cancel reservations",
	}

	var req domain.ReservationRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Book rooms in a hotel",
		Long: `Book rooms in a hotel for a customer.

The hotel's available rooms are debited immediately. Dates are stored as given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.engine.CreateReservation(req)
			if err != nil {
				return err
			}
			if s.printer.JSONMode() {
				return s.printer.JSON(map[string]int{"id": id})
			}
			s.printer.Success("Reservation %d created", id)
			return nil
		},
	}
	createCmd.Flags().IntVar(&req.CustomerID, "customer", 0, "Customer id (required)")
	createCmd.Flags().IntVar(&req.HotelID, "hotel", 0, "Hotel id (required)")
	createCmd.Flags().IntVar(&req.Rooms, "rooms", 0, "Rooms to book (required)")
	createCmd.Flags().StringVar(&req.StartDate, "start", "", "Start date (required)")
	createCmd.Flags().StringVar(&req.EndDate, "end", "", "End date (required)")
	for _, name := range []string{"customer", "hotel", "rooms", "start", "end"} {
		_ = createCmd.MarkFlagRequired(name)
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			reservation, err := s.engine.GetReservation(id)
			if err != nil {
				return err
			}
			return s.printReservations([]domain.Reservation{reservation}, true)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List reservations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.printReservations(s.engine.ListReservations(), false)
		},
	}

	cancelCmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an active reservation and return its rooms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cancelled, err := s.engine.CancelReservation(id)
			if err != nil {
				return err
			}
			return s.reportChange("Reservation", id, "cancelled", cancelled)
		},
	}

	reservationCmd.AddCommand(createCmd, getCmd, listCmd, cancelCmd)
	return reservationCmd
}

func (s *session) printReservations(reservations []domain.Reservation, single bool) error {
	if s.printer.JSONMode() {
		if single && len(reservations) == 1 {
			return s.printer.JSON(reservations[0])
		}
		return s.printer.JSON(reservations)
	}
	if len(reservations) == 0 {
		s.printer.Muted("No reservations")
		return nil
	}

	rows := make([][]string, 0, len(reservations))
	for _, r := range reservations {
		status := string(r.Status())
		rows = append(rows, []string{
			output.StatusIcon(status) + " " + strconv.Itoa(r.ID()),
			strconv.Itoa(r.HotelID()),
			strconv.Itoa(r.CustomerID()),
			strconv.Itoa(r.Rooms()),
			r.StartDate(),
			r.EndDate(),
			status,
		})
	}
	return s.printer.Table([]string{"ID", "HOTEL", "CUSTOMER", "ROOMS", "START", "END", "STATUS"}, rows)
}
