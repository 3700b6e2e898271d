package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/cardvault/go-cardvault-client/cards"
	"github.com/cardvault/go-cardvault-client/internal/format"
	"github.com/cardvault/go-cardvault-client/internal/utils"
	"github.com/cardvault/go-cardvault-client/payments"
	"github.com/cardvault/go-cardvault-client/session"
	"github.com/cardvault/go-cardvault-client/tokens"
	"github.com/cardvault/go-cardvault-client/transactions"
	"github.com/cardvault/go-cardvault-client/users"
)

func (a *app) cmdLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	totp := fs.String("totp", "", "one-time code, if enabled on the account")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		*email = prompt("Email: ")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	ctx := context.Background()
	if !a.sess.Login(ctx, session.Credentials{Email: *email, Password: password, TotpCode: *totp}) {
		return fmt.Errorf("login failed: %s", a.sess.State().Err())
	}

	user := a.sess.State().User()
	fmt.Printf("Logged in as %s\n", user.Email)
	return nil
}

func (a *app) cmdRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	phone := fs.String("phone", "", "phone number")
	country := fs.String("country", "", "country")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		*email = prompt("Email: ")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords don't match")
	}

	data := session.RegisterData{
		Email:     *email,
		Password:  password,
		FirstName: *firstName,
		LastName:  *lastName,
		Phone:     *phone,
		Country:   *country,
	}
	if !a.sess.Register(context.Background(), data) {
		return fmt.Errorf("registration failed: %s", a.sess.State().Err())
	}

	fmt.Println("Account created. Check your inbox for a verification email.")
	return nil
}

func (a *app) cmdSocialLogin(args []string) error {
	fs := flag.NewFlagSet("social-login", flag.ExitOnError)
	provider := fs.String("provider", "google", "google or microsoft")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := session.Provider(*provider)
	clientID := a.cfg.GetGoogleClientID()
	if p == session.ProviderMicrosoft {
		clientID = a.cfg.GetMicrosoftClientID()
	}

	url, err := session.AuthCodeURL(p, clientID, a.cfg.GetOAuthRedirectURL(), "cardvault-cli")
	if err != nil {
		return err
	}

	fmt.Printf("Open this URL in your browser and sign in:\n\n  %s\n\n", url)
	code := prompt("Paste the authorization code: ")

	if !a.sess.LoginWithProvider(context.Background(), p, code) {
		return fmt.Errorf("sign-in failed: %s", a.sess.State().Err())
	}
	fmt.Printf("Logged in as %s\n", a.sess.State().User().Email)
	return nil
}

func (a *app) cmdLogout(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.sess.Logout(ctx)
	fmt.Println("Logged out.")
	return nil
}

func (a *app) cmdStatus(args []string) error {
	snap := a.sess.State().Snapshot()

	if snap.User == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("Account:       %s (%s)\n", snap.User.Email, snap.User.FullName())
	fmt.Printf("Status:        %s  KYC: %s\n", format.Title(string(snap.User.Status)), format.Title(string(snap.User.KycStatus)))

	switch {
	case snap.IsAuthenticated:
		fmt.Println("Session:       active")
		if exp, err := tokens.Expiry(snap.AccessToken); err == nil {
			fmt.Printf("Token expires: %s\n", format.DateTime(exp.Local()))
		}
	case snap.RefreshToken != "":
		fmt.Println("Session:       will refresh on next request")
	default:
		fmt.Println("Session:       expired")
	}
	return nil
}

func (a *app) cmdProfile(args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	user, err := a.sess.RefreshProfile(context.Background())
	if err != nil {
		return fmt.Errorf("fetching profile (session cleared): %w", err)
	}

	fmt.Printf("Email:     %s (verified: %t)\n", user.Email, user.EmailVerified)
	fmt.Printf("Name:      %s\n", user.FullName())
	if user.Country != "" {
		fmt.Printf("Country:   %s\n", user.Country)
	}
	fmt.Printf("Status:    %s\n", format.Title(string(user.Status)))
	fmt.Printf("KYC:       %s\n", format.Title(string(user.KycStatus)))
	fmt.Printf("Joined:    %s\n", format.Date(user.CreatedAt))
	if last := utils.Value(user.LastLoginAt); !last.IsZero() {
		fmt.Printf("Last seen: %s\n", format.DateTime(last.Local()))
	}
	return nil
}

func (a *app) cmdUpdateProfile(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	city := fs.String("city", "", "city")
	country := fs.String("country", "", "country")
	timezone := fs.String("timezone", "", "IANA timezone")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	partial := users.Partial{}
	set := func(dst **string, v *string) {
		if *v != "" {
			*dst = v
		}
	}
	set(&partial.FirstName, firstName)
	set(&partial.LastName, lastName)
	set(&partial.City, city)
	set(&partial.Country, country)
	set(&partial.Timezone, timezone)

	a.sess.UpdateUser(partial)
	fmt.Println("Profile updated locally; it syncs on the next profile fetch.")
	return nil
}

func (a *app) cmdCards(args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	list, err := a.cards.List(context.Background())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No cards yet. Run 'cardvault create-card'.")
		return nil
	}

	for _, c := range list {
		fmt.Printf("%s  %s  %-10s %-8s exp %s  %s\n",
			c.ID,
			format.CardNumber(c.Last4),
			format.Title(string(c.Network)),
			format.Title(string(c.Type)),
			format.Expiry(c.ExpiryMonth, c.ExpiryYear),
			format.Title(string(c.Status)),
		)
	}
	return nil
}

func (a *app) cmdCard(args []string) error {
	fs := flag.NewFlagSet("card", flag.ExitOnError)
	id := fs.String("id", "", "card ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	ctx := context.Background()
	card, err := a.cards.Get(ctx, *id)
	if err != nil {
		return err
	}
	balance, err := a.cards.Balance(ctx, *id)
	if err != nil {
		return err
	}

	fmt.Printf("Card:      %s (%s %s)\n", format.CardNumber(card.Last4), format.Title(string(card.Network)), format.Title(string(card.Type)))
	fmt.Printf("Status:    %s\n", format.Title(string(card.Status)))
	fmt.Printf("Expiry:    %s\n", format.Expiry(card.ExpiryMonth, card.ExpiryYear))
	fmt.Printf("Available: %s\n", format.Currency(balance.AvailableBalance, balance.Currency))
	fmt.Printf("Pending:   %s\n", format.Currency(balance.PendingBalance, balance.Currency))
	fmt.Printf("Limits:    %s/day  %s/month\n",
		format.Currency(card.DailyLimit, balance.Currency),
		format.Currency(card.MonthlyLimit, balance.Currency),
	)
	return nil
}

func (a *app) cmdCreateCard(args []string) error {
	fs := flag.NewFlagSet("create-card", flag.ExitOnError)
	cardType := fs.String("type", "virtual", "virtual or physical")
	name := fs.String("name", "", "cardholder name")
	amount := fs.Int64("amount", 0, "initial funding amount in cents")
	currency := fs.String("currency", "USD", "funding currency")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	if *amount <= 0 {
		return fmt.Errorf("-amount (in cents) is required")
	}

	ctx := context.Background()
	checkout, err := a.pay.CreateCheckoutSession(ctx, *amount, *currency, strings.ToLower(*cardType))
	if err != nil {
		return err
	}

	fmt.Printf("Complete the payment in your browser:\n\n  %s\n\n", checkout.URL)

	listener, err := payments.NewListener(a.cfg.GetCheckoutCallbackAddr(), payments.WithListenerLogger(a.log))
	if err != nil {
		return fmt.Errorf("callback listener: %w", err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, a.cfg.GetCheckoutTimeout())
	defer cancel()
	result, err := listener.Await(waitCtx)
	if err != nil {
		return fmt.Errorf("waiting for checkout: %w", err)
	}
	if !result.Completed() {
		return fmt.Errorf("payment cancelled")
	}
	if result.SessionID != checkout.SessionID {
		a.log.Warn().Msg("checkout callback session mismatch")
	}

	card, err := a.cards.Create(ctx, cards.CreateRequest{
		Type:           cards.Type(strings.ToLower(*cardType)),
		CardholderName: *name,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Card ordered: %s (%s)\n", format.CardNumber(card.Last4), format.Title(string(card.Status)))
	return nil
}

func (a *app) cmdBlock(args []string) error {
	return a.cardAction(args, "block", func(ctx context.Context, id, reason string) (*cards.Card, error) {
		return a.cards.Block(ctx, id, reason)
	})
}

func (a *app) cmdUnblock(args []string) error {
	return a.cardAction(args, "unblock", func(ctx context.Context, id, _ string) (*cards.Card, error) {
		return a.cards.Unblock(ctx, id)
	})
}

func (a *app) cmdActivate(args []string) error {
	return a.cardAction(args, "activate", func(ctx context.Context, id, _ string) (*cards.Card, error) {
		return a.cards.Activate(ctx, id)
	})
}

func (a *app) cardAction(args []string, verb string, action func(context.Context, string, string) (*cards.Card, error)) error {
	fs := flag.NewFlagSet(verb, flag.ExitOnError)
	id := fs.String("id", "", "card ID")
	reason := fs.String("reason", "", "reason (block only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	card, err := action(context.Background(), *id, *reason)
	if err != nil {
		return err
	}
	fmt.Printf("Card %s is now %s\n", format.CardNumber(card.Last4), format.Title(string(card.Status)))
	return nil
}

func (a *app) cmdTopUp(args []string) error {
	fs := flag.NewFlagSet("topup", flag.ExitOnError)
	id := fs.String("id", "", "card ID")
	amount := fs.Int64("amount", 0, "amount in cents")
	currency := fs.String("currency", "USD", "currency")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *amount <= 0 {
		return fmt.Errorf("-id and a positive -amount are required")
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	ctx := context.Background()
	checkout, err := a.cards.TopUp(ctx, *id, *amount, *currency)
	if err != nil {
		return err
	}

	fmt.Printf("Complete the payment in your browser:\n\n  %s\n\n", checkout.URL)

	listener, err := payments.NewListener(a.cfg.GetCheckoutCallbackAddr(), payments.WithListenerLogger(a.log))
	if err != nil {
		return fmt.Errorf("callback listener: %w", err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, a.cfg.GetCheckoutTimeout())
	defer cancel()
	result, err := listener.Await(waitCtx)
	if err != nil {
		return fmt.Errorf("waiting for checkout: %w", err)
	}
	if !result.Completed() {
		return fmt.Errorf("payment cancelled")
	}

	fmt.Printf("Top-up of %s confirmed.\n", format.Currency(*amount, *currency))
	return nil
}

func (a *app) cmdTransactions(args []string) error {
	fs := flag.NewFlagSet("tx", flag.ExitOnError)
	cardID := fs.String("card", "", "filter by card ID")
	category := fs.String("category", "", "filter by category")
	search := fs.String("search", "", "free-text search")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	filters := transactions.Filters{Page: *page, Limit: *limit}
	ctx := context.Background()

	var (
		result *transactions.Page
		err    error
	)
	switch {
	case *search != "":
		result, err = a.tx.Search(ctx, *search, filters)
	case *cardID != "":
		result, err = a.tx.ByCard(ctx, *cardID, filters)
	case *category != "":
		result, err = a.tx.ByCategory(ctx, transactions.Category(*category), filters)
	default:
		result, err = a.tx.List(ctx, filters)
	}
	if err != nil {
		return err
	}

	if len(result.Items) == 0 {
		fmt.Println("No transactions.")
		return nil
	}
	for _, t := range result.Items {
		merchant := t.MerchantName
		if merchant == "" {
			merchant = t.Description
		}
		fmt.Printf("%s  %-10s %-30s %12s  %s\n",
			format.Date(t.CreatedAt),
			format.Title(string(t.Type)),
			format.Truncate(merchant, 30),
			format.Currency(t.Amount, t.Currency),
			format.Title(string(t.Status)),
		)
	}
	fmt.Printf("\nPage %d of %d (%d total)\n", result.PageNumber, result.TotalPages, result.Total)
	return nil
}

func (a *app) cmdTransactionStats(args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	stats, err := a.tx.Stats(context.Background(), transactions.Filters{})
	if err != nil {
		return err
	}

	fmt.Printf("Transactions: %d\n", stats.TotalTransactions)
	fmt.Printf("Total spent:  %s\n", format.Currency(stats.TotalAmount, "USD"))
	fmt.Printf("This month:   %s\n", format.Currency(stats.MonthlySpent, "USD"))
	fmt.Printf("Today:        %s\n", format.Currency(stats.DailySpent, "USD"))
	if len(stats.TopCategories) > 0 {
		fmt.Println("\nTop categories:")
		for _, c := range stats.TopCategories {
			fmt.Printf("  %-20s %12s (%d)\n", format.Title(string(c.Category)), format.Currency(c.Amount, "USD"), c.Count)
		}
	}
	return nil
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
