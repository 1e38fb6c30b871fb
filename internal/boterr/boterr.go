// Package boterr defines the typed error taxonomy the supervision engine
// raises internally. Each kind carries enough context for the supervisor
// to decide whether it is surfaced synchronously to the caller or only
// logged.
package boterr

import "fmt"

// Kind identifies which failure category an error belongs to.
type Kind string

const (
	KindValidation Kind = "validation"
	KindRiskVeto   Kind = "risk_veto"
	KindWorkspace  Kind = "workspace"
	KindInstaller  Kind = "installer"
	KindSpawn      Kind = "spawn"
	KindRuntime    Kind = "runtime_failure"
	KindAbuse      Kind = "abuse_veto"
	KindStopTimeout Kind = "stop_timeout"
)

// Error is the concrete error type for every kind above.
type Error struct {
	Kind  Kind
	BotID string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, botID, msg string) *Error {
	return &Error{Kind: kind, BotID: botID, Msg: msg}
}

func Wrap(kind Kind, botID, msg string, err error) *Error {
	return &Error{Kind: kind, BotID: botID, Msg: msg, Err: err}
}

// Validation reports a missing credential or runtime tag at start time.
func Validation(botID, msg string) *Error { return New(KindValidation, botID, msg) }

// RiskVeto reports a static risk-analysis veto.
func RiskVeto(botID, msg string) *Error { return New(KindRiskVeto, botID, msg) }

// Workspace reports a materialization I/O failure.
func Workspace(botID, msg string, err error) *Error {
	return Wrap(KindWorkspace, botID, msg, err)
}

// Installer reports a non-fatal dependency install failure.
func Installer(botID, msg string, err error) *Error {
	return Wrap(KindInstaller, botID, msg, err)
}

// Spawn reports a fatal exec failure.
func Spawn(botID, msg string, err error) *Error {
	return Wrap(KindSpawn, botID, msg, err)
}

// Runtime reports a non-zero exit or a stderr token-failure match.
func Runtime(botID, msg string) *Error { return New(KindRuntime, botID, msg) }

// Abuse reports a runtime resource-quota breach.
func Abuse(botID, msg string) *Error { return New(KindAbuse, botID, msg) }

// StopTimeout reports a graceful-stop escalation to forceful kill; this is
// not surfaced as a caller-facing error, it exists for logging.
func StopTimeout(botID string) *Error {
	return New(KindStopTimeout, botID, "graceful termination timed out, escalated to forceful kill")
}

// Surfaced reports whether errors of this kind are returned synchronously
// to the facade caller (true) or only logged (false, InstallerError/StopTimeout).
func (k Kind) Surfaced() bool {
	return k != KindInstaller && k != KindStopTimeout
}
