package okta

import "context"

// AuthnAPI is the slice of the Okta API the login state machine needs.
type AuthnAPI interface {
	Authn(ctx context.Context, req AuthRequest) (*AuthResponse, error)
	VerifyFactor(ctx context.Context, factor Factor, req VerifyRequest) (*AuthResponse, error)
}

// API is the full client surface consumed by the pipeline.
type API interface {
	AuthnAPI
	CreateSession(ctx context.Context, sessionToken string) error
	AppLinks(ctx context.Context) ([]AppLink, error)
	FetchAssertion(ctx context.Context, linkURL string) (string, error)
}
