package providers

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// CodeMissingToken marks a source that cannot run for lack of credentials.
const CodeMissingToken = "MISSING_TOKEN"

// ErrMissingCredential matches every MissingCredentialError via errors.Is.
var ErrMissingCredential = errors.New("missing credential")

// MissingCredentialError is returned when none of a source's credential
// variables is set. Aggregation reports such sources as skipped.
type MissingCredentialError struct {
	ProviderID string
	EnvVars    []string
}

func (e *MissingCredentialError) Error() string {
	if len(e.EnvVars) == 0 {
		return fmt.Sprintf("missing credential for %s", e.ProviderID)
	}
	return fmt.Sprintf("missing credential for %s: set %s", e.ProviderID, strings.Join(e.EnvVars, " or "))
}

func (e *MissingCredentialError) Code() string { return CodeMissingToken }

func (e *MissingCredentialError) Is(target error) bool { return target == ErrMissingCredential }

// Credential returns the first non-empty value among cfg.CredentialEnv.
func Credential(cfg Provider, lookup EnvLookup) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, name := range cfg.CredentialEnv {
		if v, ok := lookup(name); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, nil
			}
		}
	}
	return "", &MissingCredentialError{ProviderID: cfg.ID, EnvVars: cfg.CredentialEnv}
}
