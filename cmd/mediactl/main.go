// Command mediactl is a scriptable client for the mediadeck watchlist,
// collections and reviews.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/app"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/service"
	"golang.org/x/term"
)

const usage = `Usage: mediactl [-demo] <command> [arguments]

Catalog:
  lists                          list the browsable catalog lists
  list <name> [-page N]          show one page of a catalog list
  search <query>                 search movies, series and games
  show <kind:id>                 show one item, e.g. movie:550

Library:
  watchlist [-filter q]          list the watchlist
  watchlist add <kind:id>        add an item
  watchlist rm <kind:id>         remove an item
  collections                    list collections
  collections create <name> [description]
  collections items <id>         list the items of a collection
  collections add <id> <kind:id> add an item to a collection
  reviews                        list your reviews
  review <kind:id> <1-10> [comment]

Account:
  signin [email]                 sign in (prompts for the password)
  signout                        end the session
  whoami                         show the signed-in user
`

const commandTimeout = 30 * time.Second

func main() {
	var demo bool
	flags := flag.NewFlagSet("mediactl", flag.ExitOnError)
	flags.BoolVar(&demo, "demo", false, "use fixture data")
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flags.Parse(os.Args[1:])

	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	if err := run(demo, flags.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(demo bool, args []string) error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if demo {
		cfg.DemoMode = true
	}

	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cli := &cli{app: a, out: os.Stdout, readPassword: readPassword}
	return cli.execute(ctx, args)
}

func readPassword() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("password prompt needs a terminal; set store.password instead")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

type cli struct {
	app          *app.App
	out          io.Writer
	readPassword func() (string, error)
}

func (c *cli) execute(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "lists":
		for _, l := range service.Lists {
			fmt.Fprintln(c.out, l)
		}
		return nil
	case "list":
		return c.list(ctx, rest)
	case "search":
		return c.search(ctx, rest)
	case "show":
		return c.show(ctx, rest)
	case "watchlist":
		return c.watchlist(ctx, rest)
	case "collections":
		return c.collections(ctx, rest)
	case "reviews":
		return c.reviews(ctx)
	case "review":
		return c.review(ctx, rest)
	case "signin":
		return c.signIn(ctx, rest)
	case "signout":
		return c.app.Account.SignOut(ctx)
	case "whoami":
		user, err := c.app.Account.CurrentUser(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s\t%s\n", user.ID, user.Email)
		return nil
	default:
		return fmt.Errorf("unknown command %q (run mediactl -h)", cmd)
	}
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(reorder(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: list <name> [-page N]")
	}
	name := service.List(fs.Arg(0))
	if !knownList(name) {
		return fmt.Errorf("%w: unknown list %q", domain.ErrInvalidInput, name)
	}

	p, err := c.app.Catalog.Cards(ctx, name, *page)
	if err != nil {
		return err
	}
	c.printCards(p.Results)
	fmt.Fprintf(c.out, "page %d of %d\n", p.Page, max(p.TotalPages, 1))
	return nil
}

func knownList(name service.List) bool {
	for _, l := range service.Lists {
		if l == name {
			return true
		}
	}
	return false
}

func (c *cli) search(ctx context.Context, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("usage: search <query>")
	}
	results := c.app.Catalog.Search(ctx, query)
	c.printCards(results.Cards)
	for kind, err := range results.Errs {
		fmt.Fprintf(os.Stderr, "warning: %s search failed: %v\n", kind.Label(), err)
	}
	return nil
}

func (c *cli) show(ctx context.Context, args []string) error {
	ref, err := refArg(args, "show <kind:id>")
	if err != nil {
		return err
	}
	card, err := c.app.Catalog.Card(ctx, ref)
	if err != nil {
		return err
	}
	c.printCards([]domain.Card{card})
	if card.Overview != "" {
		fmt.Fprintf(c.out, "\n%s\n", card.Overview)
	}

	in, err := c.app.Watchlist.IsInWatchlist(ctx, ref)
	if err == nil && in {
		fmt.Fprintln(c.out, "\n● on your watchlist")
	}
	if review, err := c.app.Reviews.MyReview(ctx, ref); err == nil && review != nil {
		fmt.Fprintf(c.out, "★ rated %d/10 %s\n", review.Rating, review.Comment)
	}
	return nil
}

func (c *cli) watchlist(ctx context.Context, args []string) error {
	if len(args) > 0 && (args[0] == "add" || args[0] == "rm") {
		ref, err := refArg(args[1:], "watchlist "+args[0]+" <kind:id>")
		if err != nil {
			return err
		}
		if args[0] == "rm" {
			if err := c.app.Watchlist.Remove(ctx, ref); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "removed %s\n", ref)
			return nil
		}
		card, err := c.app.Catalog.Card(ctx, ref)
		if err != nil {
			return err
		}
		err = c.app.Watchlist.Add(ctx, service.AddToWatchlist{
			Ref:    ref,
			Title:  card.Title,
			Poster: card.PosterURL,
			Rating: normalizedRating(card),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added %s\n", card.Title)
		return nil
	}

	fs := flag.NewFlagSet("watchlist", flag.ContinueOnError)
	filter := fs.String("filter", "", "fuzzy filter on titles")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := c.app.Watchlist.List(ctx)
	if err != nil {
		return err
	}
	cards := make([]domain.Card, len(entries))
	for i, e := range entries {
		cards[i] = domain.Card{Ref: e.Ref(), Title: e.Title, Rating: e.Rating, RatingScale: 10}
	}
	c.printCards(filtered(*filter, cards))
	return nil
}

// normalizedRating stores every provider rating on a 0-10 scale
func normalizedRating(card domain.Card) float64 {
	if card.RatingScale <= 0 {
		return 0
	}
	return min(card.Rating*10/card.RatingScale, 10)
}

func filtered(query string, cards []domain.Card) []domain.Card {
	if query == "" {
		return cards
	}
	matches := service.FilterCards(query, cards)
	out := make([]domain.Card, len(matches))
	for i, m := range matches {
		out[i] = cards[m.Index]
	}
	return out
}

func (c *cli) collections(ctx context.Context, args []string) error {
	if len(args) == 0 {
		collections, err := c.app.Collections.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		for _, col := range collections {
			fmt.Fprintf(w, "%s\t%s\t%d items\t%s\n", col.ID, col.Name, col.ItemCount, col.Description)
		}
		return w.Flush()
	}

	switch args[0] {
	case "create":
		if len(args) < 2 {
			return errors.New("usage: collections create <name> [description]")
		}
		col, err := c.app.Collections.Create(ctx, service.CreateCollection{
			Name:        args[1],
			Description: strings.Join(args[2:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "created %s (%s)\n", col.Name, col.ID)
		return nil
	case "items":
		if len(args) != 2 {
			return errors.New("usage: collections items <id>")
		}
		items, err := c.app.Collections.Items(ctx, args[1])
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", it.Ref(), it.Title, it.AddedAt.Format(time.DateOnly))
		}
		return w.Flush()
	case "add":
		if len(args) != 3 {
			return errors.New("usage: collections add <id> <kind:id>")
		}
		ref, err := domain.ParseMediaRef(args[2])
		if err != nil {
			return err
		}
		card, err := c.app.Catalog.Card(ctx, ref)
		if err != nil {
			return err
		}
		err = c.app.Collections.AddItem(ctx, service.AddToCollection{
			CollectionID: args[1],
			Ref:          ref,
			Title:        card.Title,
			Poster:       card.PosterURL,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added %s\n", card.Title)
		return nil
	default:
		return fmt.Errorf("unknown collections command %q", args[0])
	}
}

func (c *cli) reviews(ctx context.Context) error {
	reviews, err := c.app.Reviews.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, r := range reviews {
		fmt.Fprintf(w, "%s\t%d/10\t%s\n", r.Ref(), r.Rating, r.Comment)
	}
	return w.Flush()
}

func (c *cli) review(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: review <kind:id> <1-10> [comment]")
	}
	ref, err := domain.ParseMediaRef(args[0])
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: rating must be a number", domain.ErrInvalidInput)
	}
	err = c.app.Reviews.Submit(ctx, service.SubmitReview{
		Ref:     ref,
		Rating:  rating,
		Comment: strings.Join(args[2:], " "),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "rated %s %d/10\n", ref, rating)
	return nil
}

func (c *cli) signIn(ctx context.Context, args []string) error {
	if c.app.Config.DemoMode {
		return errors.New("demo mode has no account")
	}
	email := c.app.Config.Store.Email
	if len(args) > 0 {
		email = args[0]
	}
	if email == "" {
		return errors.New("usage: signin <email>")
	}
	password := c.app.Config.Store.Password
	if password == "" {
		var err error
		if password, err = c.readPassword(); err != nil {
			return err
		}
	}
	user, err := c.app.Account.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "signed in as %s\n", user.Email)
	return nil
}

func (c *cli) printCards(cards []domain.Card) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, card := range cards {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", card.Ref, card.Title, card.Year(), card.FormattedRating())
	}
	w.Flush()
}

func refArg(args []string, use string) (domain.MediaRef, error) {
	if len(args) != 1 {
		return domain.MediaRef{}, errors.New("usage: " + use)
	}
	return domain.ParseMediaRef(args[0])
}

// reorder moves flags ahead of positional arguments so "list popular-movies
// -page 2" parses
func reorder(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			if !strings.Contains(args[i], "=") && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positional = append(positional, args[i])
	}
	return append(flags, positional...)
}
