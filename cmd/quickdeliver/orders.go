package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"quickDeliver/internal/logging"
	"quickDeliver/internal/storefront"
	"quickDeliver/models"
)

func (a *app) restaurantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "restaurants",
		Aliases: []string{"menu"},
		Short:   "List restaurants and their menus",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.remote.ListRestaurants(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No restaurants yet")
				return nil
			}
			for _, r := range list {
				fmt.Fprintln(out, storefront.RenderRestaurantCard(r))
			}
			return nil
		},
	}
}

func (a *app) ordersCmd() *cobra.Command {
	var (
		pageSize  int
		pageToken string
	)
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List your orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(cmd); err != nil {
				return err
			}
			list, next, err := a.remote.ListOrders(cmd.Context(), pageSize, pageToken)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, o := range list {
				fmt.Fprintf(out, "%s  %-16s  $%s  %s\n", o.ID, o.Status, o.ChargedTotal().StringFixed(2), o.CreatedAt)
			}
			if next != "" {
				fmt.Fprintf(out, "more: --page-token %s\n", next)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "orders per page")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "continue from a previous page")
	return cmd
}

func (a *app) trackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track <order-id>",
		Short: "Follow an order until it is delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var (
				mu       sync.Mutex
				once     sync.Once
				finished = make(chan struct{})
			)
			onUpdate := func(o models.Order) {
				mu.Lock()
				fmt.Fprintln(out, storefront.RenderTracker(o))
				mu.Unlock()
				if o.Status == models.OrderStatusDelivered || o.Status == models.OrderStatusCancelled {
					once.Do(func() { close(finished) })
				}
			}
			t, err := storefront.OpenTracker(cmd.Context(), a.remote, args[0], onUpdate, logging.New("tracker"))
			if err != nil {
				return err
			}
			defer t.Close()

			snap, _ := t.Snapshot()
			onUpdate(snap)
			select {
			case <-finished:
			case <-t.Done():
				if err := t.Err(); err != nil {
					return err
				}
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
}

func (a *app) requireSession(cmd *cobra.Command) error {
	sess, err := a.remote.CurrentSession(cmd.Context())
	if err != nil {
		return err
	}
	if sess == nil {
		return errors.New("not signed in, run: quickdeliver signin")
	}
	return nil
}
