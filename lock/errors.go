package lock

import "errors"

var (
	// ErrNeedsCredential is returned when a PIN method is chosen before a PIN is set.
	ErrNeedsCredential = errors.New("a PIN must be set first")
	// ErrBiometricUnavailable is returned when biometrics are required but the device has none.
	ErrBiometricUnavailable = errors.New("biometric authentication is not available")
	// ErrInvalidPIN is returned for a PIN that is not at least 4 digits.
	ErrInvalidPIN = errors.New("PIN must be at least 4 digits")
	// ErrWrongPIN is returned when the PIN does not match the stored one.
	ErrWrongPIN = errors.New("incorrect PIN")
	// ErrLocked is returned by configuration changes while the app is locked.
	ErrLocked = errors.New("the app is locked")
	// ErrNoPIN is returned by a PIN unlock of a method that does not use a PIN.
	ErrNoPIN = errors.New("the lock method does not use a PIN")
	// ErrStale is returned by an unlock that was overtaken by a newer lock transition.
	ErrStale = errors.New("unlock discarded by a newer transition")
)
