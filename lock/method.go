// Package lock gates access to the app behind a PIN or a biometric check.
//
// The lock configuration lives in a secure key-value store. It is checked at
// every load and an inconsistent configuration is healed to "no lock", so that
// a corrupted or partial state never locks the user out. For the same reason
// any secure store failure fails open.
package lock

import (
	"context"
	"fmt"
	"strings"
)

// Keys of the secure store.
const (
	KeyPIN    = "moola_pin"
	KeyMethod = "moola_lock_method"
)

// SecureStore is the key-value store holding the lock configuration.
//
// Get returns ok=false for a missing key. Remove ignores missing keys.
type SecureStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Biometrics is the device capability to authenticate the user.
type Biometrics interface {
	// Available reports whether biometric hardware is present and enrolled.
	Available(ctx context.Context) bool
	// Authenticate challenges the user, it returns false if the user failed or cancelled.
	Authenticate(ctx context.Context, prompt string) (bool, error)
}

// noBiometrics is a device without biometric hardware.
type noBiometrics struct{}

func (noBiometrics) Available(context.Context) bool { return false }
func (noBiometrics) Authenticate(context.Context, string) (bool, error) {
	return false, ErrBiometricUnavailable
}

// Method is how the app is locked.
type Method string

const (
	None      Method = "none"
	PIN       Method = "pin"
	Biometric Method = "biometric"
	Both      Method = "both" // biometric first, PIN as fallback
)

// Methods lists all lock methods.
var Methods = []Method{None, PIN, Biometric, Both}

// ParseMethod parses a lock method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case None, PIN, Biometric, Both:
		return m, nil
	default:
		return "", fmt.Errorf("unknown lock method %q, want none, pin, biometric or both", s)
	}
}

func (m Method) String() string { return string(m) }

// NeedsPIN reports whether the method requires a stored PIN.
func (m Method) NeedsPIN() bool { return m == PIN || m == Both }

// UsesBiometrics reports whether the method challenges biometrics.
func (m Method) UsesBiometrics() bool { return m == Biometric || m == Both }

// State is the lifecycle state of a Machine.
type State int

const (
	Unconfigured State = iota // no lock
	Configuring               // a PIN method was chosen, waiting for the PIN
	Armed                     // a method is set and the app is unlocked
	Locked                    // a method is set and the app is locked
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configuring:
		return "configuring"
	case Armed:
		return "armed"
	case Locked:
		return "locked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome tells how a load went.
type Outcome int

const (
	Consistent Outcome = iota // the stored configuration was used as is
	Healed                    // the stored configuration was inconsistent and reset
	FailedOpen                // the secure store failed, the app is not locked
)

func (o Outcome) String() string {
	switch o {
	case Consistent:
		return "consistent"
	case Healed:
		return "healed"
	case FailedOpen:
		return "failed open"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Config is the effective lock configuration.
type Config struct {
	Method Method
	HasPIN bool
}

// LoadResult is the result of Machine.Load.
type LoadResult struct {
	Config  Config
	Outcome Outcome
	Reason  string // why the configuration was healed
	Err     error  // store error, if any
}

// Prompt is what the app must show when it comes back to the foreground.
type Prompt int

const (
	PromptNone      Prompt = iota // the app is unlocked
	PromptPIN                     // ask for the PIN
	PromptBiometric               // offer to retry the biometric challenge
)

func (p Prompt) String() string {
	switch p {
	case PromptNone:
		return "none"
	case PromptPIN:
		return "pin"
	case PromptBiometric:
		return "biometric"
	default:
		return fmt.Sprintf("Prompt(%d)", int(p))
	}
}
