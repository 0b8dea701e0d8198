package okta

import "fmt"

// Factor is one MFA mechanism enrolled for the user, as embedded in an
// MFA_REQUIRED authentication response. Read-only once received.
type Factor struct {
	ID         string          `json:"id"`
	FactorType string          `json:"factorType"`
	Provider   string          `json:"provider"`
	Links      map[string]Link `json:"_links"`
}

// Link is an Okta HAL-style link object.
type Link struct {
	Href string `json:"href"`
}

// Label renders the factor for interactive selection, e.g.
// "sms (OKTA)".
func (f Factor) Label() string {
	if f.Provider == "" {
		return f.FactorType
	}
	return fmt.Sprintf("%s (%s)", f.FactorType, f.Provider)
}

// VerifyURL is the factor's verification endpoint as advertised by the
// provider.
func (f Factor) VerifyURL() (string, error) {
	link, ok := f.Links["verify"]
	if !ok || link.Href == "" {
		return "", fmt.Errorf("factor %s has no verify link", f.ID)
	}
	return link.Href, nil
}

// VerifyRequest is the body of a factor verification call. An empty
// PassCode primes challenge factors (SMS, push); a populated one
// completes the challenge.
type VerifyRequest struct {
	StateToken string `json:"stateToken"`
	PassCode   string `json:"passCode,omitempty"`
}
