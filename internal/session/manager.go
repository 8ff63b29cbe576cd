// Package session obtains and persists the remote session credential.
package session

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/greghernandez/docsync/internal/api"
	"github.com/greghernandez/docsync/internal/logging"
	"github.com/greghernandez/docsync/internal/state"
	"github.com/greghernandez/docsync/internal/utils"
)

// State is the session lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Credentials are optional pre-supplied login credentials. When set, no
// interactive prompt appears.
type Credentials struct {
	Username string
	Password string
}

// PromptFunc asks the operator for credentials. Swappable for tests.
type PromptFunc func() (username, password string, err error)

// Manager drives the Unauthenticated -> Authenticating -> Authenticated
// transition and persists the resulting credential in the state store.
type Manager struct {
	svc     api.Service
	store   *state.Store
	logger  logging.Logger
	prompt  PromptFunc
	state   State
	invalid bool
}

// NewManager creates a session manager.
func NewManager(svc api.Service, store *state.Store, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Manager{
		svc:    svc,
		store:  store,
		logger: logger,
		prompt: promptForCredentials,
	}
}

// SetPrompt replaces the interactive credential prompt.
func (m *Manager) SetPrompt(prompt PromptFunc) {
	m.prompt = prompt
}

// State returns the current session state.
func (m *Manager) State() State {
	return m.state
}

// Invalidate marks the stored credential as rejected. The next Ensure call
// performs a fresh login even though a credential is stored.
func (m *Manager) Invalidate() {
	m.invalid = true
	m.state = Unauthenticated
}

// Ensure moves the session to Authenticated. A stored credential is loaded
// and installed directly unless an invalidation is pending or force is set;
// otherwise a login exchange runs with the supplied (or prompted)
// credentials and the new token is persisted.
func (m *Manager) Ensure(ctx context.Context, creds Credentials, force bool) error {
	m.state = Authenticating

	if !force && !m.invalid {
		token, ok, err := m.store.GetCredential(ctx)
		if err != nil {
			return err
		}
		if ok {
			m.svc.SetToken(token)
			m.state = Authenticated
			m.logger.Debug("using stored credential")
			return nil
		}
	}

	username, password := creds.Username, creds.Password
	if username == "" || password == "" {
		var err error
		username, password, err = m.prompt()
		if err != nil {
			m.state = Unauthenticated
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired,
				fmt.Sprintf("cannot read credentials: %v", err)).Build())
		}
	}

	token, err := m.svc.Login(ctx, username, password)
	if err != nil {
		m.state = Unauthenticated
		return err
	}
	if err := m.store.SaveCredential(ctx, token); err != nil {
		m.state = Unauthenticated
		return err
	}

	m.svc.SetToken(token)
	m.invalid = false
	m.state = Authenticated
	m.logger.Info("authenticated", logging.F("username", username))
	return nil
}

// promptForCredentials reads a username from stdin and a password without
// echo.
func promptForCredentials() (string, string, error) {
	fmt.Fprint(os.Stderr, "Username: ")
	reader := bufio.NewReader(os.Stdin)
	username, err := reader.ReadString('\n')
	if err != nil {
		return "", "", err
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", "", err
	}

	return strings.TrimSpace(username), string(passwordBytes), nil
}
