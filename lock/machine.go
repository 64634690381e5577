package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTimeout bounds every secure store call.
const DefaultTimeout = 2 * time.Second

// minPIN is the minimal number of digits of a PIN.
const minPIN = 4

// unlockPrompt is shown by the biometric challenge.
const unlockPrompt = "Unlock moola"

// Machine is the app lock state machine.
//
// Every transition increments a counter, an unlock whose verification
// started before a newer transition is discarded. A Machine is safe for
// concurrent use.
type Machine struct {
	store   SecureStore
	bio     Biometrics
	log     zerolog.Logger
	timeout time.Duration
	cost    int

	mu     sync.Mutex
	method Method
	state  State
	seq    uint64
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger reporting heals and fail-opens.
func WithLogger(log zerolog.Logger) Option { return func(m *Machine) { m.log = log } }

// WithBiometrics sets the device biometric capability. The default device has none.
func WithBiometrics(b Biometrics) Option { return func(m *Machine) { m.bio = b } }

// WithTimeout bounds secure store calls, a timeout fails open.
func WithTimeout(d time.Duration) Option { return func(m *Machine) { m.timeout = d } }

// WithCost sets the bcrypt cost of new PIN hashes.
func WithCost(cost int) Option { return func(m *Machine) { m.cost = cost } }

// New returns an unconfigured Machine. Call Load to read the stored configuration.
func New(store SecureStore, opts ...Option) *Machine {
	m := &Machine{
		store:   store,
		bio:     noBiometrics{},
		log:     zerolog.Nop(),
		timeout: DefaultTimeout,
		cost:    bcrypt.DefaultCost,
		method:  None,
		state:   Unconfigured,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Method returns the effective lock method.
func (m *Machine) Method() Method {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.method
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Locked reports whether the app must be unlocked before use.
func (m *Machine) Locked() bool { return m.State() == Locked }

// unlocked returns ErrLocked while the app is locked.
func (m *Machine) unlocked() error {
	if m.Locked() {
		return ErrLocked
	}
	return nil
}

// set moves to a new method and state. Callers hold mu.
func (m *Machine) set(method Method, state State) {
	m.method, m.state = method, state
	m.seq++
}

// bounded returns ctx limited by the store timeout.
func (m *Machine) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

// failOpen drops the lock after a secure store failure.
func (m *Machine) failOpen(err error, msg string) {
	m.mu.Lock()
	m.set(None, Unconfigured)
	m.mu.Unlock()
	m.log.Warn().Err(err).Msg(msg)
}

// validHash reports whether the stored credential is usable.
func validHash(hash string) bool {
	if len(hash) < minPIN {
		return false
	}
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}

// Load reads the stored configuration and heals it when inconsistent.
//
// A method requiring a PIN without a usable PIN, an unknown method, or a
// biometric method on a device without biometrics are reset to None. A
// configured method starts Locked.
func (m *Machine) Load(ctx context.Context) LoadResult {
	ctx, cancel := m.bounded(ctx)
	defer cancel()

	raw, hasMethod, err := m.store.Get(ctx, KeyMethod)
	var hash string
	var hasPIN bool
	if err == nil {
		hash, hasPIN, err = m.store.Get(ctx, KeyPIN)
	}
	if err != nil {
		err = fmt.Errorf("cannot read lock configuration: %w", err)
		m.failOpen(err, "app lock disabled")
		return LoadResult{Config: Config{Method: None}, Outcome: FailedOpen, Err: err}
	}
	hasPIN = hasPIN && validHash(hash)

	heal := func(reason string, keys ...string) LoadResult {
		err := m.store.Remove(ctx, keys...)
		if err != nil {
			err = fmt.Errorf("cannot reset lock configuration: %w", err)
			m.log.Warn().Err(err).Msg("app lock reset not saved")
		}
		m.mu.Lock()
		m.set(None, Unconfigured)
		m.mu.Unlock()
		m.log.Info().Str("reason", reason).Msg("app lock reset")
		return LoadResult{Config: Config{Method: None, HasPIN: hasPIN}, Outcome: Healed, Reason: reason, Err: err}
	}

	if !hasMethod {
		m.mu.Lock()
		m.set(None, Unconfigured)
		m.mu.Unlock()
		return LoadResult{Config: Config{Method: None, HasPIN: hasPIN}}
	}
	method, perr := ParseMethod(raw)
	switch {
	case perr != nil:
		return heal(perr.Error(), KeyMethod)
	case method.NeedsPIN() && !hasPIN:
		return heal(fmt.Sprintf("lock method %q without a valid PIN", method), KeyMethod, KeyPIN)
	case method == Biometric && !m.bio.Available(ctx):
		return heal("biometric lock on a device without biometrics", KeyMethod)
	}

	m.mu.Lock()
	if method == None {
		m.set(None, Unconfigured)
	} else {
		m.set(method, Locked)
	}
	m.mu.Unlock()
	return LoadResult{Config: Config{Method: method, HasPIN: hasPIN}}
}

// hasPIN reads whether a usable PIN is stored.
func (m *Machine) hasPIN(ctx context.Context) (bool, error) {
	ctx, cancel := m.bounded(ctx)
	defer cancel()
	hash, ok, err := m.store.Get(ctx, KeyPIN)
	if err != nil {
		return false, fmt.Errorf("cannot read PIN: %w", err)
	}
	return ok && validHash(hash), nil
}

// SetMethod changes the lock method.
//
// None disables the lock. PIN and Both require a stored PIN: without one
// the machine moves to Configuring and ErrNeedsCredential is returned, the
// caller must then call SetPIN. Biometric and Both require biometrics.
// Switching to Biometric drops the stored PIN.
// It returns ErrLocked while the app is locked.
func (m *Machine) SetMethod(ctx context.Context, method Method) error {
	if _, err := ParseMethod(string(method)); err != nil {
		return err
	}
	if err := m.unlocked(); err != nil {
		return err
	}
	if method == None {
		return m.Disable(ctx)
	}
	if method.UsesBiometrics() && !m.bio.Available(ctx) {
		return ErrBiometricUnavailable
	}
	if method.NeedsPIN() {
		ok, err := m.hasPIN(ctx)
		if err != nil {
			return err
		}
		if !ok {
			m.mu.Lock()
			m.set(m.method, Configuring)
			m.mu.Unlock()
			return ErrNeedsCredential
		}
	}
	if err := m.save(ctx, method); err != nil {
		return err
	}
	if method == Biometric {
		rctx, cancel := m.bounded(ctx)
		defer cancel()
		if err := m.store.Remove(rctx, KeyPIN); err != nil {
			m.log.Warn().Err(err).Msg("unused PIN not removed")
		}
	}
	return nil
}

// save persists the method and arms it.
func (m *Machine) save(ctx context.Context, method Method) error {
	sctx, cancel := m.bounded(ctx)
	defer cancel()
	if err := m.store.Set(sctx, KeyMethod, string(method)); err != nil {
		m.mu.Lock()
		if m.state == Configuring {
			m.set(m.method, m.previous())
		}
		m.mu.Unlock()
		return fmt.Errorf("cannot save lock method: %w", err)
	}
	m.mu.Lock()
	m.set(method, Armed)
	m.mu.Unlock()
	m.log.Info().Stringer("method", method).Msg("app lock enabled")
	return nil
}

// previous is the state matching the current method outside of configuration. Callers hold mu.
func (m *Machine) previous() State {
	if m.method == None {
		return Unconfigured
	}
	return Armed
}

// SetPIN stores a new PIN and arms method, PIN or Both.
//
// The PIN is written before the method, so that an interrupted call never
// leaves a method without its PIN. It returns ErrLocked while the app is locked.
func (m *Machine) SetPIN(ctx context.Context, pin string, method Method) error {
	if err := m.unlocked(); err != nil {
		return err
	}
	return m.setPIN(ctx, pin, method)
}

func (m *Machine) setPIN(ctx context.Context, pin string, method Method) error {
	if !method.NeedsPIN() {
		return fmt.Errorf("lock method %q does not use a PIN", method)
	}
	if !validPIN(pin) {
		return ErrInvalidPIN
	}
	if method.UsesBiometrics() && !m.bio.Available(ctx) {
		return ErrBiometricUnavailable
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), m.cost)
	if err != nil {
		return fmt.Errorf("cannot hash PIN: %w", err)
	}
	sctx, cancel := m.bounded(ctx)
	defer cancel()
	if err := m.store.Set(sctx, KeyPIN, string(hash)); err != nil {
		return fmt.Errorf("cannot save PIN: %w", err)
	}
	return m.save(ctx, method)
}

// ChangePIN replaces the PIN after checking the current one, locked or not.
func (m *Machine) ChangePIN(ctx context.Context, current, pin string) error {
	ok, err := m.Verify(ctx, current)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPIN
	}
	method := m.Method()
	if !method.NeedsPIN() {
		method = PIN
	}
	return m.setPIN(ctx, pin, method)
}

func validPIN(pin string) bool {
	if len(pin) < minPIN {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// dummyHash is compared against when no PIN is stored.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("dummy-pin"), bcrypt.DefaultCost)
	return h
})

// Verify checks pin against the stored PIN.
//
// Every candidate goes through the hash comparison, whatever its length.
// A secure store failure fails open and is returned.
func (m *Machine) Verify(ctx context.Context, pin string) (bool, error) {
	ctx, cancel := m.bounded(ctx)
	defer cancel()
	hash, ok, err := m.store.Get(ctx, KeyPIN)
	if err != nil {
		err = fmt.Errorf("cannot read PIN: %w", err)
		m.failOpen(err, "app lock disabled")
		return false, err
	}
	stored := []byte(hash)
	if !ok {
		stored = dummyHash()
	}
	match := bcrypt.CompareHashAndPassword(stored, []byte(pin)) == nil
	return ok && match, nil
}

// ticket returns the current transition counter.
func (m *Machine) ticket() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq
}

// resolve applies a successful challenge started at ticket t.
func (m *Machine) resolve(t uint64, ok bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq != t {
		m.log.Debug().Uint64("ticket", t).Uint64("seq", m.seq).Msg("stale unlock discarded")
		return ErrStale
	}
	if ok && m.state == Locked {
		m.set(m.method, Armed)
	}
	return nil
}

// Unlock unlocks the app with a PIN. It reports whether the app is unlocked.
//
// A verification overtaken by a newer transition returns ErrStale. A secure
// store failure unlocks the app and returns the error. A locked method
// without PIN returns ErrNoPIN.
func (m *Machine) Unlock(ctx context.Context, pin string) (bool, error) {
	if method := m.Method(); m.Locked() && !method.NeedsPIN() {
		return false, ErrNoPIN
	}
	t := m.ticket()
	ok, err := m.Verify(ctx, pin)
	if err != nil {
		return !m.Locked(), err
	}
	if err := m.resolve(t, ok); err != nil {
		return false, err
	}
	return !m.Locked(), nil
}

// UnlockBiometric unlocks the app with a biometric challenge.
func (m *Machine) UnlockBiometric(ctx context.Context) (bool, error) {
	if !m.Method().UsesBiometrics() {
		return !m.Locked(), ErrBiometricUnavailable
	}
	t := m.ticket()
	ok, err := m.bio.Authenticate(ctx, unlockPrompt)
	if err != nil {
		m.log.Debug().Err(err).Msg("biometric challenge failed")
		ok = false
	}
	if err := m.resolve(t, ok); err != nil {
		return false, err
	}
	return !m.Locked(), nil
}

// OnBackground locks the app when a method is set.
func (m *Machine) OnBackground() {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Armed, Locked:
		m.set(m.method, Locked)
	}
}

// OnForeground challenges the user when the app is locked.
//
// Biometric methods are challenged right away, Both falls back to the PIN
// on failure. A PIN is never asked for automatically.
func (m *Machine) OnForeground(ctx context.Context) Prompt {
	m.mu.Lock()
	method, state := m.method, m.state
	m.mu.Unlock()
	if state != Locked {
		return PromptNone
	}
	if !method.UsesBiometrics() {
		return PromptPIN
	}
	unlocked, err := m.UnlockBiometric(ctx)
	switch {
	case errors.Is(err, ErrStale):
		// a newer transition owns the state
		if !m.Locked() {
			return PromptNone
		}
	case unlocked:
		return PromptNone
	}
	if method == Both {
		return PromptPIN
	}
	return PromptBiometric
}

// Disable removes the lock method and the PIN together.
//
// The lock is dropped even if the store fails. It returns ErrLocked while
// the app is locked.
func (m *Machine) Disable(ctx context.Context) error {
	if err := m.unlocked(); err != nil {
		return err
	}
	ctx, cancel := m.bounded(ctx)
	defer cancel()
	err := m.store.Remove(ctx, KeyMethod, KeyPIN)
	m.mu.Lock()
	m.set(None, Unconfigured)
	m.mu.Unlock()
	if err != nil {
		err = fmt.Errorf("cannot remove lock configuration: %w", err)
		m.log.Warn().Err(err).Msg("app lock removal not saved")
		return err
	}
	m.log.Info().Msg("app lock disabled")
	return nil
}
