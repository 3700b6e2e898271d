package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cardvault/go-cardvault-client/cards"
	"github.com/cardvault/go-cardvault-client/gateway"
	"github.com/cardvault/go-cardvault-client/internal/config"
	apperrors "github.com/cardvault/go-cardvault-client/internal/errors"
	"github.com/cardvault/go-cardvault-client/payments"
	"github.com/cardvault/go-cardvault-client/session"
	"github.com/cardvault/go-cardvault-client/tokens"
	"github.com/cardvault/go-cardvault-client/transactions"
	"github.com/cardvault/go-cardvault-client/usercache"
)

// app is the composition root: every layer is constructed here and passed
// down explicitly, so there is exactly one session context per process and
// no package-level state.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	tokens tokens.Store
	cache  *usercache.Store
	sess   *session.Controller
	cards  *cards.Service
	tx     *transactions.Service
	pay    *payments.Service
}

func newApp(cfg config.Config, log zerolog.Logger) (*app, error) {
	tokenStore, err := tokens.NewFileStore(
		cfg.GetRuntimeDir(),
		cfg.GetConfigDir(),
		tokens.WithRefreshTokenTTL(cfg.GetRefreshTokenTTL()),
		tokens.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("token store: %w", err)
	}

	cache, err := usercache.NewStore(cfg.GetConfigDir(), usercache.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("user cache: %w", err)
	}

	gw, err := gateway.New(
		cfg.GetAPIBaseURL(),
		tokenStore,
		gateway.WithTimeout(cfg.GetRequestTimeout()),
		gateway.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}

	state := session.NewState()
	sess, err := session.NewController(state, gw, session.Stores{
		Tokens: tokenStore,
		Users:  cache,
	}, session.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("session controller: %w", err)
	}

	cardSvc, err := cards.NewService(gw)
	if err != nil {
		return nil, err
	}
	txSvc, err := transactions.NewService(gw)
	if err != nil {
		return nil, err
	}
	paySvc, err := payments.NewService(gw)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    log,
		tokens: tokenStore,
		cache:  cache,
		sess:   sess,
		cards:  cardSvc,
		tx:     txSvc,
		pay:    paySvc,
	}, nil
}

func (a *app) dispatch(command string, args []string) error {
	// Hydrate the session before any command runs; commands that need an
	// authenticated session check the state themselves.
	a.sess.Initialize()

	switch command {
	case "login":
		return a.cmdLogin(args)
	case "register":
		return a.cmdRegister(args)
	case "social-login":
		return a.cmdSocialLogin(args)
	case "logout":
		return a.cmdLogout(args)
	case "status":
		return a.cmdStatus(args)
	case "profile":
		return a.cmdProfile(args)
	case "update":
		return a.cmdUpdateProfile(args)
	case "cards":
		return a.cmdCards(args)
	case "card":
		return a.cmdCard(args)
	case "create-card":
		return a.cmdCreateCard(args)
	case "block":
		return a.cmdBlock(args)
	case "unblock":
		return a.cmdUnblock(args)
	case "activate":
		return a.cmdActivate(args)
	case "topup":
		return a.cmdTopUp(args)
	case "tx":
		return a.cmdTransactions(args)
	case "tx-stats":
		return a.cmdTransactionStats(args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// requireSession fails fast when no usable session exists, pointing the
// user at the re-authentication entry point.
func (a *app) requireSession() error {
	snap := a.sess.State().Snapshot()
	if snap.User == nil || (snap.AccessToken == "" && snap.RefreshToken == "") {
		return apperrors.Wrapf(apperrors.ErrNotAuthenticated, "run 'cardvault login' first")
	}
	return nil
}
