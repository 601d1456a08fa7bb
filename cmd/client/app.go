package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/config"
	"github.com/HammerMeetNail/barberbook/internal/engagement"
	"github.com/HammerMeetNail/barberbook/internal/gateway"
	"github.com/HammerMeetNail/barberbook/internal/logging"
	"github.com/HammerMeetNail/barberbook/internal/models"
	"github.com/HammerMeetNail/barberbook/internal/views"
)

// account is the part of the API client that the engagement core does not
// cover: credentials and the static catalogue.
type account interface {
	SignUp(ctx context.Context, params gateway.SignUpParams) (models.Identity, error)
	SignIn(ctx context.Context, phone, password string) (models.Identity, error)
	UseToken(ctx context.Context, token string) (models.Identity, error)
	SignOut(ctx context.Context) error
	Catalogue(ctx context.Context) ([]models.CatalogueItem, error)
}

type app struct {
	console *console
	account account

	session  *engagement.SessionTracker
	reviews  *engagement.ReviewRepository
	likes    *engagement.LikeEngine
	carousel *views.Carousel
	feed     *views.Feed

	mu        sync.RWMutex
	catalogue []models.CatalogueItem

	unsubscribe []func()
	cancelRun   context.CancelFunc
	runDone     chan struct{}
}

func newApp(out io.Writer, acct account, gw engagement.Gateway, auth engagement.AuthSource, cfg config.ClientConfig, logger *logging.Logger) *app {
	session := engagement.NewSessionTracker(auth, logger)
	carousel := views.NewCarousel(views.CarouselConfig{
		Viewport:    views.ParseViewport(cfg.Viewport),
		Orientation: views.ParseOrientation(cfg.Orientation),
		Interval:    cfg.AutoplayInterval,
	})

	a := &app{
		console:  newConsole(out),
		account:  acct,
		session:  session,
		reviews:  engagement.NewReviewRepository(gw, session, logger),
		likes:    engagement.NewLikeEngine(gw, session, logger),
		carousel: carousel,
		feed:     views.NewFeed(carousel),
		runDone:  make(chan struct{}),
	}

	a.unsubscribe = append(a.unsubscribe,
		a.reviews.OnChange(a.feed.Update),
		a.carousel.OnChange(func(p views.Page) {
			a.console.print(renderPage(p, a.reviews.CanEdit))
		}),
		a.likes.OnChange(func(s models.LikeState) {
			a.console.print(renderLikeState(a.itemName(s.ItemID), s, a.likes.Pending(s.ItemID)))
		}),
		a.session.OnChange(func(id models.Identity) {
			a.console.print(renderIdentity(id))
		}),
	)
	return a
}

// Start loads the initial state and begins autoplay.
func (a *app) Start(ctx context.Context) {
	a.session.Refresh(ctx)

	if items, err := a.account.Catalogue(ctx); err != nil {
		a.console.print(renderError(err))
	} else {
		a.mu.Lock()
		a.catalogue = items
		a.mu.Unlock()
	}
	if err := a.likes.Load(ctx); err != nil {
		a.console.print(renderError(err))
	}
	if err := a.reviews.Load(ctx); err != nil {
		a.console.print(renderError(err))
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancelRun = cancel
	go func() {
		defer close(a.runDone)
		a.carousel.Run(runCtx)
	}()
}

func (a *app) Close() {
	if a.cancelRun != nil {
		a.cancelRun()
		<-a.runDone
	}
	a.likes.Wait()
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.reviews.Close()
	a.session.Close()
}

// Loop reads commands until EOF, "quit" or ctx is done.
func (a *app) Loop(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.console.print(helpText)
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		a.console.prompt()
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if quit := a.Exec(ctx, line); quit {
				return nil
			}
		}
	}
}

// Exec runs one command line. It reports whether the user asked to quit.
func (a *app) Exec(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		a.console.print(helpText)
	case "signup":
		err = a.signup(ctx, args)
	case "login":
		err = a.login(ctx, args)
	case "token":
		err = a.useToken(ctx, args)
	case "logout":
		err = a.account.SignOut(ctx)
	case "whoami":
		a.console.print(renderIdentity(a.session.Current()))
	case "reviews", "page":
		a.console.print(renderPage(a.carousel.Current(), a.reviews.CanEdit))
	case "next":
		a.carousel.Next()
	case "prev":
		a.carousel.Prev()
	case "filter":
		err = a.filter(args)
	case "stats":
		a.console.print(renderSummary(a.feed.Summary()))
	case "list":
		a.console.print(renderList(a.feed.Visible(), a.reviews.CanEdit))
	case "review":
		err = a.create(ctx, args)
	case "edit":
		err = a.edit(ctx, args)
	case "delete":
		err = a.remove(ctx, args)
	case "reload":
		err = a.reload(ctx)
	case "items":
		a.console.print(a.renderItems())
	case "like":
		err = a.toggleLike(ctx, args)
	case "viewport":
		err = a.viewport(args)
	case "orientation":
		err = a.orientation(args)
	default:
		err = fmt.Errorf("unknown command %q, try help", cmd)
	}
	if err != nil {
		a.console.print(renderError(err))
	}
	return false
}

func (a *app) signup(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return errors.New("usage: signup <phone> <password> <first name> <last name>")
	}
	_, err := a.account.SignUp(ctx, gateway.SignUpParams{
		Phone:     args[0],
		Password:  args[1],
		FirstName: args[2],
		LastName:  strings.Join(args[3:], " "),
	})
	return err
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <phone> <password>")
	}
	_, err := a.account.SignIn(ctx, args[0], args[1])
	return err
}

func (a *app) useToken(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: token <session token>")
	}
	_, err := a.account.UseToken(ctx, args[0])
	return err
}

func (a *app) filter(args []string) error {
	value := "all"
	if len(args) > 0 {
		value = args[0]
	}
	f, err := views.ParseRatingFilter(value)
	if err != nil {
		return err
	}
	a.feed.SetFilter(f)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	rating, comment, err := parseDraft(args)
	if err != nil {
		return fmt.Errorf("%w (usage: review <1-5> <comment>)", err)
	}
	if _, err := a.reviews.Create(ctx, rating, comment); err != nil {
		return err
	}
	a.console.print(renderNotice("Review published"))
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: edit <n> <1-5> <comment>")
	}
	id, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	rating, comment, err := parseDraft(args[1:])
	if err != nil {
		return fmt.Errorf("%w (usage: edit <n> <1-5> <comment>)", err)
	}
	if err := a.reviews.Update(ctx, id, rating, comment); err != nil {
		return err
	}
	a.console.print(renderNotice("Review updated"))
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <n>")
	}
	id, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	if err := a.reviews.Delete(ctx, id); err != nil {
		return err
	}
	a.console.print(renderNotice("Review deleted"))
	return nil
}

func (a *app) reload(ctx context.Context) error {
	if err := a.likes.Load(ctx); err != nil {
		return err
	}
	return a.reviews.Load(ctx)
}

func (a *app) toggleLike(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: like <item id>")
	}
	if _, ok := models.FindCatalogueItem(args[0]); !ok {
		return fmt.Errorf("no catalogue item %q", args[0])
	}
	_, err := a.likes.Toggle(ctx, args[0])
	return err
}

func (a *app) viewport(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: viewport <narrow|wide>")
	}
	a.carousel.SetViewport(views.ParseViewport(args[0]))
	return nil
}

func (a *app) orientation(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: orientation <horizontal|vertical>")
	}
	a.carousel.SetOrientation(views.ParseOrientation(args[0]))
	return nil
}

// resolve maps a 1-based position in the filtered list to a review id.
func (a *app) resolve(arg string) (uuid.UUID, error) {
	visible := a.feed.Visible()
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || n < 1 || n > len(visible) {
		return uuid.Nil, fmt.Errorf("no review #%s, see list", strings.TrimPrefix(arg, "#"))
	}
	return visible[n-1].ID, nil
}

func (a *app) itemName(id string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, item := range a.catalogue {
		if item.ID == id {
			return item.Name
		}
	}
	if item, ok := models.FindCatalogueItem(id); ok {
		return item.Name
	}
	return id
}

func (a *app) renderItems() string {
	a.mu.RLock()
	items := a.catalogue
	a.mu.RUnlock()
	if len(items) == 0 {
		items = models.Catalogue
	}
	states := make([]models.LikeState, len(items))
	for i, item := range items {
		states[i] = a.likes.State(item.ID)
	}
	return renderCatalogue(items, states)
}

func parseDraft(args []string) (int, string, error) {
	if len(args) < 1 {
		return 0, "", errors.New("missing rating")
	}
	rating, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, "", fmt.Errorf("rating %q is not a number", args[0])
	}
	return rating, strings.Join(args[1:], " "), nil
}
