package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/cardvault/go-cardvault-client/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logger := newLogger(c)

	args := os.Args[1:]
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		displayAppname(c.GetAppName())
		usage()
		return nil
	}

	app, err := newApp(c, logger)
	if err != nil {
		return fmt.Errorf("initialising client: %w", err)
	}

	return app.dispatch(args[0], args[1:])
}

func newLogger(c config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func usage() {
	fmt.Println(`Usage: cardvault <command> [flags]

Session:
  login          Sign in with email and password
  register       Create an account
  social-login   Sign in through Google or Microsoft
  logout         End the session
  status         Show the current session state

Account:
  profile        Show the account profile
  update         Update profile fields

Cards:
  cards          List cards
  card           Show one card (with balance)
  create-card    Order a new card (funds it through hosted checkout)
  block          Block a card
  unblock        Unblock a card
  activate       Activate a pending card
  topup          Fund a card through hosted checkout

Transactions:
  tx             List transactions
  tx-stats       Spending statistics

Run 'cardvault <command> -h' for the flags of a command.`)
}
