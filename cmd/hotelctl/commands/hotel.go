package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

func newHotelCmd(s *session) *cobra.Command {
	hotelCmd := &cobra.Command{
		Use:   "hotel",
		Short: "Manage hotels",
	}

	var (
		name     string
		location string
		rooms    int
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a hotel with all rooms available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.engine.CreateHotel(name, location, rooms)
			if err != nil {
				return err
			}
			if s.printer.JSONMode() {
				return s.printer.JSON(map[string]int{"id": id})
			}
			s.printer.Success("Hotel %d created", id)
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Hotel name (required)")
	createCmd.Flags().StringVar(&location, "location", "", "Hotel location (required)")
	createCmd.Flags().IntVar(&rooms, "rooms", 0, "Total rooms (required)")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("location")
	_ = createCmd.MarkFlagRequired("rooms")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a hotel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			hotel, err := s.engine.GetHotel(id)
			if err != nil {
				return err
			}
			return s.printHotels([]domain.Hotel{hotel}, true)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List hotels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.printHotels(s.engine.ListHotels(), false)
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change hotel name and/or location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var upd domain.HotelUpdate
			if upd.Name, err = optionalString(cmd, "name"); err != nil {
				return err
			}
			if upd.Location, err = optionalString(cmd, "location"); err != nil {
				return err
			}
			updated, err := s.engine.UpdateHotel(id, upd)
			if err != nil {
				return err
			}
			return s.reportChange("Hotel", id, "updated", updated)
		},
	}
	updateCmd.Flags().String("name", "", "New hotel name")
	updateCmd.Flags().String("location", "", "New hotel location")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a hotel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			deleted, err := s.engine.DeleteHotel(id)
			if err != nil {
				return err
			}
			return s.reportChange("Hotel", id, "deleted", deleted)
		},
	}

	hotelCmd.AddCommand(createCmd, getCmd, listCmd, updateCmd, deleteCmd)
	return hotelCmd
}

func (s *session) printHotels(hotels []domain.Hotel, single bool) error {
	if s.printer.JSONMode() {
		if single && len(hotels) == 1 {
			return s.printer.JSON(hotels[0])
		}
		return s.printer.JSON(hotels)
	}
	if len(hotels) == 0 {
		s.printer.Muted("No hotels")
		return nil
	}

	rows := make([][]string, 0, len(hotels))
	for _, hotel := range hotels {
		rows = append(rows, []string{
			strconv.Itoa(hotel.ID()),
			hotel.Name(),
			hotel.Location(),
			fmt.Sprintf("%d/%d", hotel.AvailableRooms(), hotel.TotalRooms()),
		})
	}
	return s.printer.Table([]string{"ID", "NAME", "LOCATION", "AVAILABLE"}, rows)
}

// reportChange печатает результат операции, которая возвращает флаг изменения.
func (s *session) reportChange(entity string, id int, action string, changed bool) error {
	if s.printer.JSONMode() {
		return s.printer.JSON(map[string]bool{action: changed})
	}
	if changed {
		s.printer.Success("%s %d %s", entity, id, action)
	} else {
		s.printer.Warning("%s %d not %s", entity, id, action)
	}
	return nil
}
