package okta

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	promptutils "github.com/oktatools/oktaws/utils/prompt"
)

// Phase tracks where a login attempt stands. Transitions only move
// forward or to PhaseFailed; a session is never re-entered.
type Phase int

const (
	PhaseUnauthenticated Phase = iota
	PhasePasswordWarn
	PhaseMfaRequired
	PhaseMfaChallengeIssued
	PhaseSuccess
	PhaseFailed
)

var (
	ErrNoFactors = errors.New("MFA required, and no available factors")

	// ErrProtocolViolation marks a structurally invalid provider
	// response, e.g. a success without a session token.
	ErrProtocolViolation = errors.New("protocol violation")
)

// StatusError is a terminal, explicitly non-successful login status
// (PASSWORD_EXPIRED, LOCKED_OUT, ...). The raw response is carried for
// diagnostics; no recovery flow is attempted.
type StatusError struct {
	Status   AuthStatus
	Response *AuthResponse
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("login failed with status %s", e.Status)
}

// Authenticator drives the multi-step login protocol. The prompter is
// the injected interactive capability: it is consulted when several
// factors are available and again for the challenge passcode.
type Authenticator struct {
	client   AuthnAPI
	prompter promptutils.Prompter
}

func NewAuthenticator(client AuthnAPI, prompter promptutils.Prompter) *Authenticator {
	return &Authenticator{client: client, prompter: prompter}
}

// session is the mutable state of one login attempt.
type session struct {
	phase        Phase
	stateToken   string
	sessionToken string
	factors      []Factor
}

func (s *session) fail(err error) error {
	s.phase = PhaseFailed
	return err
}

// GetSessionToken runs the login protocol to completion and returns
// the provider's session token. The flow is strictly linear with two
// interactive suspension points (factor choice, passcode); any failed
// verification is terminal for this invocation.
func (a *Authenticator) GetSessionToken(ctx context.Context, req AuthRequest) (string, error) {
	s := &session{phase: PhaseUnauthenticated}

	response, err := a.client.Authn(ctx, req)
	if err != nil {
		return "", s.fail(err)
	}

	logrus.Tracef("Login response: %+v", response)

	switch response.Status {
	case StatusSuccess:
		return a.succeed(s, response)

	case StatusMfaRequired:
		logrus.Info("MFA required")
		s.phase = PhaseMfaRequired
		s.factors = response.Embedded.Factors
		s.stateToken = response.StateToken
		return a.verifyMfa(ctx, s)

	default:
		return "", s.fail(&StatusError{Status: response.Status, Response: response})
	}
}

func (a *Authenticator) succeed(s *session, response *AuthResponse) (string, error) {
	if response.SessionToken == "" {
		return "", s.fail(fmt.Errorf("%w: no session token in response", ErrProtocolViolation))
	}
	s.phase = PhaseSuccess
	s.sessionToken = response.SessionToken
	return s.sessionToken, nil
}

func (a *Authenticator) verifyMfa(ctx context.Context, s *session) (string, error) {
	factor, err := a.selectFactor(s.factors)
	if err != nil {
		return "", s.fail(err)
	}

	logrus.Debugf("Factor: %+v", factor)

	if s.stateToken == "" {
		return "", s.fail(fmt.Errorf("%w: no state token in response", ErrProtocolViolation))
	}

	// First verification primes challenge factors (SMS, push); no
	// passcode yet.
	prompted, err := a.client.VerifyFactor(ctx, factor, VerifyRequest{StateToken: s.stateToken})
	if err != nil {
		return "", s.fail(err)
	}

	logrus.Tracef("Factor prompt response: %+v", prompted)

	if prompted.StateToken == "" {
		return "", s.fail(fmt.Errorf("%w: no state token in factor prompt response", ErrProtocolViolation))
	}
	s.phase = PhaseMfaChallengeIssued
	s.stateToken = prompted.StateToken

	passCode, err := a.prompter.PromptForInput("MFA response", "")
	if err != nil {
		return "", s.fail(err)
	}

	verified, err := a.client.VerifyFactor(ctx, factor, VerifyRequest{StateToken: s.stateToken, PassCode: passCode})
	if err != nil {
		return "", s.fail(err)
	}

	logrus.Tracef("Factor verification response: %+v", verified)

	if verified.Status != StatusSuccess {
		return "", s.fail(&StatusError{Status: verified.Status, Response: verified})
	}

	return a.succeed(s, verified)
}

// selectFactor picks the MFA factor to challenge: the only one when
// exactly one is enrolled, otherwise the operator chooses.
func (a *Authenticator) selectFactor(factors []Factor) (Factor, error) {
	switch len(factors) {
	case 0:
		return Factor{}, ErrNoFactors
	case 1:
		logrus.Info("Only one factor available, using it")
		return factors[0], nil
	default:
		labels := make([]string, len(factors))
		for i, factor := range factors {
			labels[i] = factor.Label()
		}

		selected, err := a.prompter.PromptForSelection("Select MFA factor", labels)
		if err != nil {
			return Factor{}, err
		}
		for i, label := range labels {
			if label == selected {
				return factors[i], nil
			}
		}
		return Factor{}, fmt.Errorf("unexpected selection: %s", selected)
	}
}
