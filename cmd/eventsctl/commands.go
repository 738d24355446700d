package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-events-client/auth"
	"github.com/jrsteele09/go-events-client/events"
	"github.com/jrsteele09/go-events-client/filters"
	"github.com/jrsteele09/go-events-client/internal/app"
	"github.com/jrsteele09/go-events-client/internal/utils"
	"github.com/jrsteele09/go-events-client/taste"
	"github.com/jrsteele09/go-events-client/users"
	"github.com/rs/zerolog"
)

type env struct {
	app *app.App
	out io.Writer
	log zerolog.Logger
}

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commandOrder = []string{
	"login", "register", "logout", "whoami", "profile",
	"discover", "show", "review", "saved", "toggle", "check", "vibe", "foryou",
}

var commands = map[string]command{
	"login":    {"sign in: -email -password", cmdLogin},
	"register": {"create an account: -email -password [-name]", cmdRegister},
	"logout":   {"sign out and forget local tokens", cmdLogout},
	"whoami":   {"show the signed-in user", cmdWhoami},
	"profile":  {"update profile: [-name] [-avatar] [-password -new-password]", cmdProfile},
	"discover": {"list events: [-category -tag -date -min-rating -sort -price -feature -audience -near lat,lng]", cmdDiscover},
	"show":     {"show one event: <id>", cmdShow},
	"review":   {"review an event: -rating 1..5 [-comment] <id>", cmdReview},
	"saved":    {"list saved events", cmdSaved},
	"toggle":   {"save or unsave an event: <id>", cmdToggle},
	"check":    {"ask the server whether an event is saved: <id>", cmdCheck},
	"vibe":     {"seed the taste profile: <vibe>", cmdVibe},
	"foryou":   {"rank events for you: [-near lat,lng] [-all]", cmdForYou},
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return &usageError{fmt.Sprintf("%s: %v", fs.Name(), err)}
	}
	return nil
}

func oneID(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return "", &usageError{fmt.Sprintf("%s: expected one event id", fs.Name())}
	}
	return strings.TrimSpace(fs.Arg(0)), nil
}

func cmdLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := parse(fs, args); err != nil {
		return err
	}
	u, err := e.app.Session.SignIn(ctx, auth.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "signed in as %s\n", u.Name())
	return nil
}

func cmdRegister(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("register")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name")
	if err := parse(fs, args); err != nil {
		return err
	}
	u, err := e.app.Session.SignUp(ctx, auth.Registration{Email: *email, Password: *password, DisplayName: *name})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "registered %s\n", u.Name())
	return nil
}

func cmdLogout(ctx context.Context, e *env, _ []string) error {
	if err := e.app.Session.SignOut(ctx); err != nil {
		return err
	}
	if err := e.app.Taste.Clear(ctx); err != nil {
		e.log.Warn().Err(err).Msg("clear taste profile")
	}
	fmt.Fprintln(e.out, "signed out")
	return nil
}

func cmdWhoami(_ context.Context, e *env, _ []string) error {
	u := e.app.Session.User()
	if u == nil {
		fmt.Fprintln(e.out, "not signed in")
		return nil
	}
	fmt.Fprintf(e.out, "%s <%s>\n", u.Name(), u.Email)
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(e.out, "member since %s\n", u.CreatedAt.Format("2 Jan 2006"))
	}
	return nil
}

func cmdProfile(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("profile")
	var update users.ProfileUpdate
	fs.StringVar(&update.DisplayName, "name", "", "display name")
	fs.StringVar(&update.AvatarURL, "avatar", "", "avatar URL")
	fs.StringVar(&update.PasswordCurrent, "password", "", "current password")
	fs.StringVar(&update.PasswordNew, "new-password", "", "new password")
	if err := parse(fs, args); err != nil {
		return err
	}
	u, err := e.app.Session.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "profile updated: %s\n", u.Name())
	return nil
}

type discoverFlags struct {
	filters  filters.DiscoverFilters
	sort     string
	price    string
	audience string
	features listFlag
	near     pointFlag
}

func (d *discoverFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.filters.CategoryID, "category", "", "category")
	fs.StringVar(&d.filters.SubcategoryID, "subcategory", "", "subcategory")
	fs.StringVar(&d.filters.TagID, "tag", "", "tag")
	fs.StringVar(&d.filters.Date, "date", "", "day, YYYY-MM-DD")
	fs.Var(optionalFloat{&d.filters.MinRating}, "min-rating", "minimum average rating")
	fs.Var(optionalFloat{&d.filters.RadiusKm}, "radius", "radius in km")
	fs.StringVar(&d.sort, "sort", "", "soonest, toprated or price")
	fs.StringVar(&d.price, "price", "", "any, free, lt25, btw25and50 or gt50")
	fs.StringVar(&d.audience, "audience", "", "family, nightlife or professional")
	fs.Var(&d.features, "feature", "required venue feature (repeatable)")
	fs.Var(&d.near, "near", "your position as lat,lng")
}

func (d *discoverFlags) resolve() error {
	var err error
	if d.filters.PriceBand, err = filters.ParsePriceBand(d.price); err != nil {
		return &usageError{err.Error()}
	}
	if d.filters.Audience, err = filters.ParseAudience(d.audience); err != nil {
		return &usageError{err.Error()}
	}
	d.filters.VenueFeatures = d.features
	return nil
}

func (d *discoverFlags) list(ctx context.Context, e *env) ([]events.Event, error) {
	q := d.filters.Query()
	q.Sort = events.Sort(strings.ToLower(d.sort))
	list, err := e.app.Events.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if d.near.set {
		events.AnnotateDistance(list, d.near.point)
	}
	return filters.Apply(list, d.filters), nil
}

func cmdDiscover(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("discover")
	var d discoverFlags
	d.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := d.resolve(); err != nil {
		return err
	}
	list, err := d.list(ctx, e)
	if err != nil {
		return err
	}
	printEvents(e.out, list, e.app.Saved.IsSaved)
	return nil
}

func cmdShow(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("show")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneID(fs)
	if err != nil {
		return err
	}
	d, err := e.app.Events.Get(ctx, id)
	if err != nil {
		return err
	}
	printDetail(e.out, d, e.app.Saved.IsSaved(d.ID))

	if e.app.Session.IsAuthenticated() {
		if _, err := e.app.Taste.Record(ctx, taste.Interaction{Kind: taste.InteractionOpen, Event: &d.Event}); err != nil {
			e.log.Warn().Err(err).Msg("record open")
		}
	}
	return nil
}

func cmdReview(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("review")
	rating := fs.Int("rating", 0, "rating from 1 to 5")
	comment := fs.String("comment", "", "comment")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneID(fs)
	if err != nil {
		return err
	}
	if err := e.app.Events.CreateReview(ctx, id, events.NewReview{Rating: *rating, Comment: *comment}); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "review posted")
	return nil
}

func cmdSaved(_ context.Context, e *env, _ []string) error {
	if !e.app.Session.IsAuthenticated() {
		return auth.ErrNotAuthenticated
	}
	snap := e.app.Saved.Snapshot()
	if snap.Err != nil {
		return snap.Err
	}
	printEvents(e.out, snap.Events, func(string) bool { return true })
	return nil
}

// eventFor returns the local copy of a saved event, or fetches it.
func eventFor(ctx context.Context, e *env, id string) (events.Event, error) {
	for _, ev := range e.app.Saved.Saved() {
		if ev.ID == id {
			return ev, nil
		}
	}
	d, err := e.app.Events.Get(ctx, id)
	if err != nil {
		return events.Event{}, err
	}
	return d.Event, nil
}

func cmdToggle(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("toggle")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneID(fs)
	if err != nil {
		return err
	}
	if !e.app.Session.IsAuthenticated() {
		return auth.ErrNotAuthenticated
	}
	ev, err := eventFor(ctx, e, id)
	if err != nil {
		return err
	}
	now, err := e.app.Saved.ToggleSave(ctx, ev)
	if err != nil {
		return err
	}
	if now {
		if _, err := e.app.Taste.Record(ctx, taste.Interaction{Kind: taste.InteractionSave, Event: &ev}); err != nil {
			e.log.Warn().Err(err).Msg("record save")
		}
		fmt.Fprintf(e.out, "saved %s\n", ev.Title)
		return nil
	}
	fmt.Fprintf(e.out, "removed %s\n", ev.Title)
	return nil
}

func cmdCheck(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("check")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneID(fs)
	if err != nil {
		return err
	}
	ev, err := eventFor(ctx, e, id)
	if err != nil {
		return err
	}
	ok, err := e.app.Saved.CheckSaved(ctx, ev)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s saved: %t\n", id, ok)
	return nil
}

func cmdVibe(ctx context.Context, e *env, args []string) error {
	vibe := strings.TrimSpace(strings.Join(args, " "))
	if vibe == "" {
		return &usageError{"vibe: expected a vibe, e.g. live music"}
	}
	p, err := e.app.Taste.Record(ctx, taste.Interaction{Kind: taste.InteractionVibe, Vibe: vibe})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "vibe set to %s\n", p.SeededVibe)
	return nil
}

func cmdForYou(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("foryou")
	var d discoverFlags
	d.register(fs)
	all := fs.Bool("all", false, "include events with no matching signal")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := d.resolve(); err != nil {
		return err
	}
	list, err := d.list(ctx, e)
	if err != nil {
		return err
	}
	p, err := e.app.Taste.Profile(ctx)
	if err != nil {
		return err
	}

	ranked := taste.RankForYou(list, p, time.Now())
	if !*all {
		personalized := ranked[:0]
		for _, r := range ranked {
			if r.Score.Personalized() {
				personalized = append(personalized, r)
			}
		}
		ranked = personalized
	}
	printRanked(e.out, ranked)
	return nil
}

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// optionalFloat leaves the target nil unless the flag is given.
type optionalFloat struct{ target **float64 }

func (o optionalFloat) String() string {
	if o.target == nil || *o.target == nil {
		return ""
	}
	return strconv.FormatFloat(**o.target, 'f', -1, 64)
}

func (o optionalFloat) Set(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*o.target = utils.Ptr(f)
	return nil
}

// pointFlag parses "lat,lng".
type pointFlag struct {
	point events.Point
	set   bool
}

func (p *pointFlag) String() string {
	if !p.set {
		return ""
	}
	return fmt.Sprintf("%g,%g", p.point.Lat, p.point.Lng)
}

func (p *pointFlag) Set(v string) error {
	lat, lng, ok := strings.Cut(v, ",")
	if !ok {
		return fmt.Errorf("want lat,lng")
	}
	var err error
	if p.point.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return err
	}
	if p.point.Lng, err = strconv.ParseFloat(strings.TrimSpace(lng), 64); err != nil {
		return err
	}
	p.set = true
	return nil
}
