// Package cmd implements the CLI application to manage a personal expense ledger.
package cmd

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/moola"
	"github.com/etnz/moola/date"
	"github.com/etnz/moola/lock"
	"github.com/etnz/moola/store"
	"github.com/etnz/moola/store/postgres"
	"github.com/etnz/moola/store/sqlite"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Environment variables providing the defaults of the global flags.
const (
	EnvDataDir     = "MOOLA_DATA_DIR"
	EnvStore       = "MOOLA_STORE"
	EnvPostgresURL = "MOOLA_POSTGRES_URL"
	EnvSecureKey   = "MOOLA_SECURE_KEY"
	EnvCurrency    = "MOOLA_CURRENCY"
	EnvVerbose     = "MOOLA_VERBOSE"
	EnvTestingNow  = "MOOLA_TESTING_NOW"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.
// Empty flags fall back to their environment variable, see LoadEnv.

var dataDir = flag.String("data-dir", "", "Folder holding the data files (default $"+EnvDataDir+" or ~/.moola)")
var storeKind = flag.String("store", "", "Storage backend: file, sqlite or postgres (default $"+EnvStore+" or file)")
var currency = flag.String("currency", "", "Display currency code, overrides the preferences (default $"+EnvCurrency+")")
var euFormat = flag.Bool("eu", false, "Display amounts with a decimal comma")
var pin = flag.String("pin", "", "PIN to unlock the app when the app lock is on")
var rawMarkdown = flag.Bool("raw", false, "Print markdown without terminal rendering")

// Verbose enables debug logs.
var Verbose = flag.Bool("v", false, "Verbose logging (default $"+EnvVerbose+")")

// out is where commands print.
var out io.Writer = os.Stdout

// LoadEnv reads the .env file of the working directory, if any, into the environment.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load .env: %w", err)
	}
	if v, err := parseBool(os.Getenv(EnvVerbose)); err == nil && v {
		*Verbose = true
	}
	if _, _, err := testingNow(); err != nil {
		return err
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "1", "true", "TRUE", "yes":
		return true, nil
	case "", "0", "false", "FALSE", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// DataDir returns the folder holding the data files.
func DataDir() string {
	if d := cmp.Or(*dataDir, os.Getenv(EnvDataDir)); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".moola"
	}
	return filepath.Join(home, ".moola")
}

// Logger returns the application logger, writing to stderr.
func Logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if *Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

// Now is the current time used by commands.
// It can be pinned with $MOOLA_TESTING_NOW for documentation tests.
// An invalid value is reported by LoadEnv and otherwise ignored.
func Now() time.Time {
	if t, ok, err := testingNow(); ok && err == nil {
		return t
	}
	return time.Now()
}

// testingNow parses $MOOLA_TESTING_NOW, ok is false when it is not set.
func testingNow() (t time.Time, ok bool, err error) {
	v := os.Getenv(EnvTestingNow)
	if v == "" {
		return time.Time{}, false, nil
	}
	t, err = time.ParseInLocation("2006-01-02 15:04:05", v, time.Local)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("invalid $%s %q, want YYYY-MM-DD HH:MM:SS", EnvTestingNow, v)
	}
	return t, true, nil
}

// Today is the current date used by commands.
func Today() date.Date { return date.Of(Now()) }

// stores holds the opened general and secure stores.
type stores struct {
	general moola.Store
	secure  lock.SecureStore
	closers []func()
}

func (s *stores) Close() {
	for _, c := range s.closers {
		c()
	}
}

// openStores opens the storage backend selected by -store.
//
// The secure store always stays on the local disk, sealed when $MOOLA_SECURE_KEY is set.
func openStores(ctx context.Context) (*stores, error) {
	dir := DataDir()
	s := &stores{}
	switch kind := cmp.Or(*storeKind, os.Getenv(EnvStore), "file"); kind {
	case "file":
		f, err := store.OpenFile(filepath.Join(dir, "moola.json"))
		if err != nil {
			return nil, err
		}
		s.general = f
	case "sqlite":
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := sqlite.Open(ctx, filepath.Join(dir, "moola.db"), "general")
		if err != nil {
			return nil, err
		}
		s.general = db
		s.closers = append(s.closers, func() { db.Close() })
	case "postgres":
		url := os.Getenv(EnvPostgresURL)
		if url == "" {
			return nil, fmt.Errorf("$%s is required by the postgres store", EnvPostgresURL)
		}
		db, err := postgres.Open(ctx, url, "moola_general")
		if err != nil {
			return nil, err
		}
		s.general = db
		s.closers = append(s.closers, db.Close)
	default:
		return nil, fmt.Errorf("unknown store %q, want file, sqlite or postgres", kind)
	}

	secure, err := store.OpenFile(filepath.Join(dir, "secure.json"))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.secure = secure
	if key := os.Getenv(EnvSecureKey); key != "" {
		sealed, err := store.OpenSealed(ctx, secure, key)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.secure = sealed
	}
	return s, nil
}

// app holds everything a command works with.
type app struct {
	*stores
	log    zerolog.Logger
	ledger *moola.Ledger
	lock   *lock.Machine
	load   lock.LoadResult
	prefs  *moola.Preferences
}

// openApp opens the stores and loads the ledger, the app lock and the preferences.
func openApp(ctx context.Context) (*app, error) {
	s, err := openStores(ctx)
	if err != nil {
		return nil, err
	}
	log := Logger()
	a := &app{
		stores: s,
		log:    log,
		ledger: moola.NewLedger(s.general, moola.WithLogger(log)),
		lock:   lock.New(s.secure, lock.WithLogger(log)),
	}
	a.load = a.lock.Load(ctx)
	if err := a.ledger.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	if a.prefs, err = moola.LoadPreferences(ctx, s.general); err != nil {
		s.Close()
		return nil, err
	}
	return a, nil
}

// unlock unlocks the app with the -pin flag when the app lock is on.
func (a *app) unlock(ctx context.Context) error {
	if !a.lock.Locked() {
		return nil
	}
	if a.lock.Method() == lock.Biometric {
		return fmt.Errorf("the app is locked with biometrics, which are not available here")
	}
	if *pin == "" {
		return fmt.Errorf("the app is locked, use -pin")
	}
	ok, err := a.lock.Unlock(ctx, *pin)
	if err != nil && !ok {
		return err
	}
	if !ok {
		return lock.ErrWrongPIN
	}
	return nil
}

// formatOptions returns the display options, -currency and -eu override the preferences.
func (a *app) formatOptions() moola.FormatOptions {
	opts := a.prefs.FormatOptions()
	opts.Currency = cmp.Or(*currency, os.Getenv(EnvCurrency), opts.Currency)
	opts.EU = opts.EU || *euFormat
	return opts
}

// openUnlocked opens the app and unlocks it, reporting errors on stderr.
func openUnlocked(ctx context.Context) (*app, bool) {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data: %v\n", err)
		return nil, false
	}
	if err := a.unlock(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error unlocking: %v\n", err)
		a.Close()
		return nil, false
	}
	return a, true
}

// printMarkdown renders markdown for the terminal.
func printMarkdown(md string) {
	if *rawMarkdown {
		fmt.Fprint(out, md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Fprint(out, md)
		return
	}
	rendered, err := r.Render(md)
	if err != nil {
		fmt.Fprint(out, md)
		return
	}
	fmt.Fprint(out, rendered)
}
