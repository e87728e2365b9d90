package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/hotelres/cmd/hotelctl/output"
)

func newAuditCmd(s *session) *cobra.Command {
	var strict bool

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare hotel availability with active reservations",
		Long: `Compare each hotel's available rooms with its total minus rooms held by
active reservations. The store is not modified.

With --strict the command fails when drift or orphan reservations are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := s.engine.AuditInventory()

			if s.printer.JSONMode() {
				if err := s.printer.JSON(report); err != nil {
					return err
				}
			} else {
				s.printer.Section("Inventory")
				rows := make([][]string, 0, len(report.Hotels))
				for _, item := range report.Hotels {
					state := "ok"
					if item.Drift != 0 {
						state = "drift"
					}
					rows = append(rows, []string{
						output.StatusIcon(state) + " " + strconv.Itoa(item.HotelID),
						item.Name,
						strconv.Itoa(item.TotalRooms),
						strconv.Itoa(item.AvailableRooms),
						strconv.Itoa(item.ExpectedAvailable),
						fmt.Sprintf("%+d", item.Drift),
					})
				}
				if err := s.printer.Table([]string{"HOTEL", "NAME", "TOTAL", "AVAILABLE", "EXPECTED", "DRIFT"}, rows); err != nil {
					return err
				}
				if len(report.OrphanReservations) > 0 {
					s.printer.Warning("Orphan reservations: %v", report.OrphanReservations)
				}
				if report.DriftedHotels == 0 && len(report.OrphanReservations) == 0 {
					s.printer.Success("Inventory is consistent")
				}
			}

			if strict && (report.DriftedHotels > 0 || len(report.OrphanReservations) > 0) {
				return fmt.Errorf("inventory drift in %d hotel(s), %d orphan reservation(s)",
					report.DriftedHotels, len(report.OrphanReservations))
			}
			return nil
		},
	}
	auditCmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when inconsistencies are found")
	return auditCmd
}
