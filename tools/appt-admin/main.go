package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cruiserex/site/libs/config"
	"github.com/cruiserex/site/services/booking-service/client"
)

const usage = `usage: appt-admin [-base-url URL] [-token-file PATH] <command> [args]

commands:
  login [-secret S]     start an admin session (secret from -secret, ADMIN_SECRET or stdin)
  logout                end the stored session
  list                  list appointments by date and time
  confirm <id>          mark an appointment confirmed
  cancel <id>           mark an appointment cancelled
  delete <id>           delete an appointment
  book [flags]          submit a booking through the public form endpoint
`

func main() {
	_ = config.LoadDotEnv()

	var (
		baseURL   = flag.String("base-url", config.String("BOOKING_BASE_URL", "http://localhost:8080"), "booking service base url")
		tokenPath = flag.String("token-file", "", "session token file (default ~/.appt-admin-token)")
		timeout   = flag.Duration("timeout", 30*time.Second, "request timeout")
	)
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	tokens, err := tokenFile(*tokenPath)
	if err != nil {
		fatal(err.Error())
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	app := &app{api: client.New(*baseURL, nil), tokens: tokens, out: os.Stdout}
	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fatal(err.Error())
	}
}

type app struct {
	api    *client.Client
	tokens client.TokenFile
	out    io.Writer
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "list":
		return a.list(ctx)
	case "confirm", "cancel", "delete":
		return a.change(ctx, cmd, args)
	case "book":
		return a.book(ctx, args)
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	secret := fs.String("secret", config.String("ADMIN_SECRET", ""), "admin secret")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*secret) == "" {
		fmt.Fprint(os.Stderr, "admin secret: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		*secret = strings.TrimSpace(line)
	}

	s, err := a.api.Login(ctx, *secret)
	if err != nil {
		return err
	}
	if err := a.tokens.Save(s.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintf(a.out, "logged in until %s\n", s.ExpiresAt.Local().Format("02/01/2006 15:04"))
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.authenticate(); err != nil {
		return err
	}
	err := a.api.Logout(ctx)
	if clearErr := a.tokens.Clear(); clearErr != nil {
		return clearErr
	}
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *app) list(ctx context.Context) error {
	if err := a.authenticate(); err != nil {
		return err
	}
	list, err := a.api.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "no appointments")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tREQUESTER\tCOMPANY\tLOCATION\tPHONE\tEMAIL\tSTATUS")
	for _, appt := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			appt.ID,
			client.FormatDate(appt.Date),
			client.FormatTime(appt.Time),
			appt.RequesterName,
			appt.CompanyName,
			appt.CompanyLocation,
			appt.Phone,
			appt.Email,
			appt.Status,
		)
	}
	return tw.Flush()
}

func (a *app) change(ctx context.Context, cmd string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: appt-admin %s <id>", cmd)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}
	if err := a.authenticate(); err != nil {
		return err
	}

	switch cmd {
	case "confirm":
		appt, err := a.api.Confirm(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "appointment %d is %s\n", appt.ID, appt.Status)
	case "cancel":
		appt, err := a.api.Cancel(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "appointment %d is %s\n", appt.ID, appt.Status)
	case "delete":
		if err := a.api.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "appointment %d deleted\n", id)
	}
	return nil
}

func (a *app) book(ctx context.Context, args []string) error {
	var b client.Booking
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	fs.StringVar(&b.Date, "date", "", "date, YYYY-MM-DD")
	fs.StringVar(&b.Time, "time", "", "time, HH:MM")
	fs.StringVar(&b.RequesterName, "name", "", "requester name")
	fs.StringVar(&b.CompanyName, "company", "", "company name")
	fs.StringVar(&b.CompanyLocation, "location", "", "company location")
	fs.StringVar(&b.Phone, "phone", "", "phone, digits only")
	fs.StringVar(&b.Email, "email", "", "contact email")
	fs.StringVar(&b.Reason, "reason", "", "reason for the appointment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	b.Phone = client.DigitsOnly(b.Phone)

	res, err := a.api.Book(ctx, b, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "appointment %d booked for %s %s\n",
		res.Appointment.ID, client.FormatDate(res.Appointment.Date), client.FormatTime(res.Appointment.Time))
	if res.Warning != "" {
		fmt.Fprintf(a.out, "warning: %s\n", res.Warning)
	}
	return nil
}

// authenticate prefers APPT_ADMIN_TOKEN over the stored session token.
func (a *app) authenticate() error {
	if tok := config.String("APPT_ADMIN_TOKEN", ""); tok != "" {
		a.api.SetToken(tok)
		return nil
	}
	tok, err := a.tokens.Load()
	if err != nil {
		return err
	}
	if tok == "" {
		return errors.New("not logged in: run appt-admin login")
	}
	a.api.SetToken(tok)
	return nil
}

func tokenFile(path string) (client.TokenFile, error) {
	if path != "" {
		return client.TokenFile{Path: path}, nil
	}
	return client.DefaultTokenFile()
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
