package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/payment"
	"storefront/internal/state"
)

const usage = `usage: storefront <command> [flags]

session:   otp -phone P | login -phone P -otp C | logout | whoami
location:  location [-q QUERY | -lat LAT -lng LNG | -clear]
browse:    stores [-radius KM] | popular | store -id ID | products -store ID | search -q Q | recent [-clear]
           reviews -store ID | review -store ID -rating N [-comment C]
session:   enter (-store ID | -link URL) | leave
cart:      cart | add -product ID [-qty N] | qty -product ID -qty N | remove -product ID | clear
           coupon (-code C | -remove) | coupons | fulfillment -mode delivery|pickup [-address ID]
orders:    checkout | orders | receipt -id ID
profile:   addresses | address-add -house H -street S -city C -pincode P [-type home|work|other]
           wishlist | wish -product ID | favs | fav -store ID -name N | unfav -id ID
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	applog.SetOutput(os.Stderr)

	cfg := config.Load()
	applog.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	a.Navigate = func(screen string) { fmt.Fprintf(os.Stderr, "-> %s\n", screen) }

	if err := a.Restore(ctx); err != nil {
		log.Printf("[warn] restore: %v", err)
	}
	err = run(ctx, a, os.Args[1], os.Args[2:])
	if cerr := a.Close(); cerr != nil {
		log.Printf("[warn] close: %v", cerr)
	}
	if err != nil {
		var pe *payment.Error
		if errors.As(err, &pe) {
			fmt.Fprintf(os.Stderr, "payment failed: %s (%s)\n", pe.Reason, pe.Code)
			os.Exit(3)
		}
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func run(ctx context.Context, a *app.App, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var (
		phone   = fs.String("phone", "", "mobile number")
		otp     = fs.String("otp", "", "one-time password")
		id      = fs.String("id", "", "id")
		storeID = fs.String("store", "", "store id")
		product = fs.String("product", "", "product id")
		qty     = fs.Int("qty", 1, "quantity")
		code    = fs.String("code", "", "coupon code")
		remove  = fs.Bool("remove", false, "remove instead of apply")
		mode    = fs.String("mode", "", "delivery or pickup")
		address = fs.String("address", "", "address id")
		q       = fs.String("q", "", "query")
		lat     = fs.Float64("lat", 0, "latitude")
		lng     = fs.Float64("lng", 0, "longitude")
		radius  = fs.Float64("radius", 0, "radius in km")
		wipe    = fs.Bool("clear", false, "clear")
		link    = fs.String("link", "", "app:// link")
		name    = fs.String("name", "", "name")
		rating  = fs.Int("rating", 0, "rating 1-5")
		comment = fs.String("comment", "", "comment")
		house   = fs.String("house", "", "house / flat")
		street  = fs.String("street", "", "street")
		city    = fs.String("city", "", "city")
		pincode = fs.String("pincode", "", "pincode")
		kind    = fs.String("type", domain.AddressHome, "home, work or other")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch cmd {
	case "otp":
		p, err := a.Auth.RequestOTP(ctx, *phone)
		if err != nil {
			return err
		}
		fmt.Printf("code sent to %s\n", p)
		return nil
	case "login":
		u, err := a.SignIn(ctx, *phone, *otp)
		if err != nil {
			return err
		}
		return printJSON(u)
	case "logout":
		return a.Auth.Logout(ctx)
	case "whoami":
		u, ok := a.Auth.User()
		if !ok {
			return errors.New("not signed in")
		}
		return printJSON(u)

	case "location":
		switch {
		case *wipe:
			return a.Location.Clear(ctx)
		case *q != "":
			loc, err := a.UseSearchedPlace(ctx, *q)
			if err != nil {
				return err
			}
			return printJSON(loc)
		case *lat != 0 || *lng != 0:
			loc, err := a.UseCurrentPosition(ctx, *lat, *lng)
			if err != nil {
				return err
			}
			return printJSON(loc)
		}
		loc, ok := a.Location.Current()
		if !ok {
			return app.ErrLocationRequired
		}
		return printJSON(loc)

	case "stores":
		stores, err := a.NearbyStores(ctx, *radius)
		if err != nil {
			return err
		}
		return printJSON(stores)
	case "popular":
		if err := a.Search.LoadPopularStores(ctx); err != nil {
			return err
		}
		return printJSON(a.Search.PopularStores())
	case "store":
		st, err := a.API.Store(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(st)
	case "products":
		prods, err := a.API.Products(ctx, *storeID, 1, 50)
		if err != nil {
			return err
		}
		return printJSON(prods)
	case "search":
		return search(ctx, a, *q)
	case "recent":
		if *wipe {
			return a.Search.ClearRecentSearches(ctx)
		}
		return printJSON(a.Search.RecentSearches())
	case "reviews":
		list, err := a.API.Reviews(ctx, *storeID)
		if err != nil {
			return err
		}
		return printJSON(list)
	case "review":
		rv, err := a.API.AddReview(ctx, *storeID, *rating, *comment)
		if err != nil {
			return err
		}
		return printJSON(rv)

	case "enter":
		if *link != "" {
			l, ok, err := a.Active.EnterFromLink(ctx, *link)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("unsupported link %q", *link)
			}
			return printJSON(l)
		}
		return a.Active.Enter(ctx, *storeID, state.SourceNavigation)
	case "leave":
		return a.Active.Leave(ctx)

	case "cart":
		return printCart(a.Cart.Refresh(ctx))
	case "add":
		return printCart(a.Cart.AddItem(ctx, *product, *qty))
	case "qty":
		return printCart(a.Cart.UpdateQuantity(ctx, *product, *qty))
	case "remove":
		return printCart(a.Cart.RemoveItem(ctx, *product))
	case "clear":
		return printCart(a.Cart.Clear(ctx))
	case "coupon":
		if *remove {
			return printCart(a.Cart.RemoveCoupon(ctx))
		}
		return printCart(a.Cart.ApplyCoupon(ctx, *code))
	case "coupons":
		list, err := a.API.Coupons(ctx, a.Active.ID())
		if err != nil {
			return err
		}
		return printJSON(list)
	case "fulfillment":
		return printCart(a.Cart.SetFulfillment(ctx, *mode, *address))

	case "checkout":
		o, err := a.Checkout(ctx)
		if err != nil {
			return err
		}
		return printJSON(o)
	case "orders":
		list, err := a.API.Orders(ctx)
		if err != nil {
			return err
		}
		return printJSON(list)
	case "receipt":
		page, err := a.API.Receipt(ctx, *id)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(page)
		return err

	case "addresses":
		list, err := a.API.Addresses(ctx)
		if err != nil {
			return err
		}
		return printJSON(list)
	case "address-add":
		ad, err := a.API.CreateAddress(ctx, domain.Address{Type: *kind, House: *house, Street: *street, City: *city, Pincode: *pincode})
		if err != nil {
			return err
		}
		return printJSON(ad)
	case "wishlist":
		if err := a.Wishlist.Load(ctx); err != nil {
			return err
		}
		return printJSON(a.Wishlist.Items())
	case "wish":
		if err := a.Wishlist.Load(ctx); err != nil {
			return err
		}
		saved, err := a.Wishlist.Toggle(ctx, *product)
		if err != nil {
			return err
		}
		fmt.Printf("saved=%t\n", saved)
		return nil
	case "favs":
		return printJSON(a.Favs.List())
	case "fav":
		r, _, err := a.Favs.Add(ctx, *storeID, *name, "")
		if err != nil {
			return err
		}
		return printJSON(r)
	case "unfav":
		return a.Favs.Remove(ctx, *id)
	}

	fmt.Fprint(os.Stderr, usage)
	return flag.ErrHelp
}

func printCart(c *domain.Cart, err error) error {
	if err != nil {
		return err
	}
	return printJSON(c)
}

// search runs one debounced search and records the top hit as a recent search.
func search(ctx context.Context, a *app.App, q string) error {
	done := make(chan state.SearchResults, 1)
	a.Search.OnResults(func(r state.SearchResults) {
		select {
		case done <- r:
		default:
		}
	})
	a.Search.PerformSearch(q)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return errors.New("search timed out")
	case r := <-done:
		if r.Err != nil {
			return r.Err
		}
		if len(r.Items) > 0 {
			if err := a.Search.AddToRecentSearches(ctx, r.Items[0]); err != nil {
				return err
			}
		}
		return printJSON(r.Items)
	}
}
