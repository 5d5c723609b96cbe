package main

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"quickDeliver/internal/storefront"
	"quickDeliver/models"
)

func (a *app) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator commands; the signed-in account needs the admin role",
	}
	cmd.AddCommand(a.adminStatusCmd(), a.adminDriverCmd(), a.adminRestaurantCmd(), a.adminMenuItemCmd())
	return cmd
}

func (a *app) adminStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Move an order to pending, confirmed, preparing, out_for_delivery, delivered or cancelled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd); err != nil {
				return err
			}
			o, err := a.remote.UpdateOrderStatus(cmd.Context(), args[0], models.OrderStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), storefront.RenderTracker(*o))
			return nil
		},
	}
}

func (a *app) adminDriverCmd() *cobra.Command {
	var eta string
	cmd := &cobra.Command{
		Use:   "driver <order-id> <driver-name>",
		Short: "Assign a driver to an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd); err != nil {
				return err
			}
			o, err := a.remote.AssignDriver(cmd.Context(), args[0], args[1], eta)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), storefront.RenderTracker(*o))
			return nil
		},
	}
	cmd.Flags().StringVar(&eta, "eta", "", "estimated delivery label, e.g. \"15 mins\"")
	return cmd
}

func (a *app) adminRestaurantCmd() *cobra.Command {
	var (
		rest     models.Restaurant
		lat, lng float64
	)
	cmd := &cobra.Command{
		Use:   "restaurant <name>",
		Short: "Add a restaurant to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd); err != nil {
				return err
			}
			rest.Name = args[0]
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				rest.Lat, rest.Lng = &lat, &lng
			}
			out, err := a.remote.CreateRestaurant(cmd.Context(), rest)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), storefront.RenderRestaurantCard(*out))
			return nil
		},
	}
	cmd.Flags().StringVar(&rest.CuisineType, "cuisine", "", "cuisine type")
	cmd.Flags().IntVar(&rest.DeliveryTime, "delivery-time", 30, "typical delivery time in minutes")
	cmd.Flags().StringVar(&rest.Distance, "distance", "", "distance label shown when no origin is given")
	cmd.Flags().StringVar(&rest.Icon, "icon", "", "emoji icon")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	return cmd
}

func (a *app) adminMenuItemCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "menu-item <restaurant-id> <name> <price>",
		Short: "Add a menu item to a restaurant",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd); err != nil {
				return err
			}
			rid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("restaurant id: %w", err)
			}
			price, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("price: %w", err)
			}
			it, err := a.remote.AddMenuItem(cmd.Context(), models.MenuItem{
				RestaurantID: rid,
				Name:         args[1],
				Description:  description,
				Price:        price,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added [%d] %s $%s to restaurant %d\n", it.ID, it.Name, it.Price.StringFixed(2), it.RestaurantID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "item description")
	return cmd
}
