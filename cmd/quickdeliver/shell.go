package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"quickDeliver/internal/logging"
	"quickDeliver/internal/storefront"
	"quickDeliver/models"
)

const shellHelp = `Commands:
  menu                      show restaurants and menus
  add <restaurant> <item>   put a menu item in the cart
  remove <n>                drop cart line n
  cart                      show the cart
  order                     place the cart as an order
  track <order-id>          follow an order
  close                     stop tracking
  signin <email> <password> sign in
  signout                   sign out
  help                      this text
  quit                      leave`

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive storefront: browse, fill a cart, order and track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sh := &shell{out: cmd.OutOrStdout()}
			sh.sf = storefront.New(a.remote, a.remote, storefront.Options{
				Notify:   sh.notice,
				OnUpdate: sh.update,
				Logger:   logging.New("storefront"),
			})
			defer sh.sf.Close()

			if _, err := a.remote.CurrentSession(cmd.Context()); err != nil {
				return err
			}
			// catalog failures arrive as notices
			_ = sh.sf.Start(cmd.Context())
			sh.println(storefront.RenderHeader(sh.sf.Session.Current()))
			sh.println(shellHelp)
			return sh.loop(cmd, cmd.InOrStdin())
		},
	}
}

// shell serializes output between the prompt loop and the tracker goroutine.
type shell struct {
	sf  *storefront.Storefront
	mu  sync.Mutex
	out io.Writer
}

func (s *shell) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *shell) println(text string) { s.printf("%s\n", text) }

func (s *shell) notice(n storefront.Notice) {
	prefix := "ℹ️ "
	switch n.Kind {
	case storefront.NoticeSuccess:
		prefix = "✅ "
	case storefront.NoticeError:
		prefix = "❌ "
	}
	s.println(prefix + n.Message)
}

func (s *shell) update(o models.Order) { s.println(storefront.RenderTracker(o)) }

func (s *shell) loop(cmd *cobra.Command, in io.Reader) error {
	ctx := cmd.Context()
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		s.printf("> ")
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		quit, err := s.run(cmd, fields)
		if err != nil {
			s.printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (s *shell) run(cmd *cobra.Command, f []string) (quit bool, err error) {
	ctx := cmd.Context()
	switch f[0] {
	case "quit", "exit":
		return true, nil
	case "help":
		s.println(shellHelp)
	case "menu":
		if err := s.sf.Catalog.Load(ctx); err != nil {
			return false, err
		}
		for _, r := range s.sf.Catalog.Restaurants() {
			s.println(storefront.RenderRestaurantCard(r))
		}
	case "add":
		if len(f) != 3 {
			return false, errors.New("usage: add <restaurant> <item>")
		}
		rid, err1 := strconv.ParseInt(f[1], 10, 64)
		iid, err2 := strconv.ParseInt(f[2], 10, 64)
		if err := errors.Join(err1, err2); err != nil {
			return false, err
		}
		if err := s.sf.AddToCart(rid, iid); err != nil {
			return false, err
		}
		s.println(storefront.RenderCart(s.sf.Cart.Snapshot(), s.sf.Session.SignedIn()))
	case "remove":
		if len(f) != 2 {
			return false, errors.New("usage: remove <n>")
		}
		n, err := strconv.Atoi(f[1])
		if err != nil {
			return false, err
		}
		if !s.sf.Cart.Remove(n) {
			return false, fmt.Errorf("no cart line %d", n)
		}
		s.println(storefront.RenderCart(s.sf.Cart.Snapshot(), s.sf.Session.SignedIn()))
	case "cart":
		s.println(storefront.RenderCart(s.sf.Cart.Snapshot(), s.sf.Session.SignedIn()))
	case "order":
		o, err := s.sf.Submit(ctx)
		if err != nil {
			var se *storefront.SubmitError
			if errors.Is(err, storefront.ErrNotSignedIn) || errors.Is(err, storefront.ErrMixedRestaurants) || errors.As(err, &se) {
				return false, nil // reported as a notice
			}
			return false, err
		}
		s.printf("order %s placed\n", o.ID)
	case "track":
		if len(f) != 2 {
			return false, errors.New("usage: track <order-id>")
		}
		t, err := s.sf.OpenTracker(ctx, f[1])
		if err != nil {
			return false, err
		}
		if snap, ok := t.Snapshot(); ok {
			s.update(snap)
		}
	case "close":
		return false, s.sf.CloseTracker()
	case "signin":
		if len(f) != 3 {
			return false, errors.New("usage: signin <email> <password>")
		}
		if err := s.sf.SignIn(ctx, f[1], f[2]); err != nil {
			return false, err
		}
		s.println(storefront.RenderHeader(s.sf.Session.Current()))
	case "signout":
		if err := s.sf.SignOut(ctx); err != nil {
			return false, err
		}
		s.println(storefront.RenderHeader(nil))
	default:
		return false, fmt.Errorf("unknown command %q, try help", f[0])
	}
	return false, nil
}
