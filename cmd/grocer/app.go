package main

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dukerupert/grocer/internal/auth"
	"github.com/dukerupert/grocer/internal/config"
	"github.com/dukerupert/grocer/internal/database"
	"github.com/dukerupert/grocer/internal/grocery"
	"github.com/dukerupert/grocer/internal/logging"
	"github.com/dukerupert/grocer/internal/model"
	"github.com/dukerupert/grocer/internal/notify"
	"github.com/dukerupert/grocer/internal/store"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in; run `grocer login --remember` first")

// app wires the stores for one CLI invocation.
type app struct {
	configPath string

	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	kv     *store.KVStore
	hub    *notify.Hub
	creds  *auth.CredentialStore
	list   *grocery.ListStore
	stdin  *bufio.Reader
}

func (a *app) open(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.kv = store.NewKVStore(db)

	hasher, err := auth.NewHasher(cfg.Hasher)
	if err != nil {
		return err
	}
	a.hub = notify.NewHub(a.logger)
	a.creds = auth.NewCredentialStore(a.kv, hasher, a.logger)
	a.list = grocery.NewListStore(a.kv, a.logger, grocery.WithPublisher(a.hub))

	a.creds.Initialize()
	a.list.Initialize()

	// Each invocation is a start-up, so overdue items escalate before any
	// command reads or changes the list.
	_, events := a.list.SweepPriorities()
	printEvents(stderr, events)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// requireUser gates list commands behind a restored session and returns a
// command context carrying the user.
func (a *app) requireUser(cmd *cobra.Command) (model.User, error) {
	u, ok := a.creds.CurrentUser()
	if !ok {
		return model.User{}, errNotSignedIn
	}
	cmd.SetContext(auth.WithUser(cmd.Context(), u))
	if msg := a.list.Err(); msg != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s; starting with an empty list\n", msg)
	}
	return u, nil
}

// printEvents shows notifications the way a toast would: one line each.
func printEvents(w io.Writer, events []notify.Event) {
	for _, e := range events {
		fmt.Fprintf(w, "%s: %s\n", e.Title, e.Description)
	}
}

// secret returns flagValue or reads one line from stdin.
func (a *app) secret(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if a.stdin == nil {
		a.stdin = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := a.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(prompt), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
