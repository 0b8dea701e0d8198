package oktaws

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oktatools/oktaws/internal/awsrole"
	"github.com/oktatools/oktaws/internal/config"
	"github.com/oktatools/oktaws/internal/credentials"
	"github.com/oktatools/oktaws/internal/okta"
	"github.com/oktatools/oktaws/internal/saml"
	"github.com/oktatools/oktaws/models"
	promptutils "github.com/oktatools/oktaws/utils/prompt"
)

// amazonAWSAppName is the Okta application type for AWS role
// federation.
const amazonAWSAppName = "amazon_aws"

// Options selects what one run resolves and how.
type Options struct {
	ProfilePattern      string
	OrganizationPattern string
	Concurrent          bool
	Verify              bool
}

// Runner wires the login, parsing, exchange and store components into
// the per-profile pipeline. It owns the one credentials store of the
// process; the mutex serializes upserts when profiles resolve
// concurrently.
type Runner struct {
	Config   *config.Config
	Store    *credentials.Store
	STS      awsrole.STSAPI
	Prompter promptutils.Prompter

	// NewOktaClient builds the client for one organization. Replaced
	// in tests.
	NewOktaClient func(organization string) okta.API

	// VerifySession confirms fresh credentials against STS when the
	// verify option is set.
	VerifySession func(ctx context.Context, creds models.ProfileCredentials) (string, error)

	storeMu sync.Mutex
}

func NewRunner(cfg *config.Config, store *credentials.Store, stsClient awsrole.STSAPI, prompter promptutils.Prompter) *Runner {
	return &Runner{
		Config:   cfg,
		Store:    store,
		STS:      stsClient,
		Prompter: prompter,
		NewOktaClient: func(organization string) okta.API {
			return okta.NewClient(organization, nil)
		},
		VerifySession: awsrole.VerifySession,
	}
}

// Run resolves credentials for every profile matched in every matched
// organization, then persists the store exactly once. Any per-profile
// failure aborts the run with the store untouched on disk.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	organizations, err := r.Config.MatchOrganizations(opts.OrganizationPattern)
	if err != nil {
		return err
	}
	if len(organizations) == 0 {
		return fmt.Errorf("no organizations found called %s", opts.OrganizationPattern)
	}

	for _, organization := range organizations {
		if err := r.runOrganization(ctx, organization, opts); err != nil {
			return err
		}
	}

	return r.Store.Save()
}

func (r *Runner) runOrganization(ctx context.Context, organization config.Organization, opts Options) error {
	logrus.Infof("Evaluating profiles in %s", organization.Name)

	profiles, err := organization.MatchProfiles(opts.ProfilePattern)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		logrus.Warnf("No profiles found matching %s in %s", opts.ProfilePattern, organization.Name)
		return nil
	}

	client, err := r.login(ctx, organization)
	if err != nil {
		return fmt.Errorf("logging in to %s: %w", organization.Name, err)
	}

	if opts.Concurrent {
		group, groupCtx := errgroup.WithContext(ctx)
		for _, profile := range profiles {
			profile := profile
			group.Go(func() error {
				return r.resolveProfile(groupCtx, client, organization, profile, opts)
			})
		}
		return group.Wait()
	}

	for _, profile := range profiles {
		if err := r.resolveProfile(ctx, client, organization, profile, opts); err != nil {
			return err
		}
	}
	return nil
}

// login authenticates against the organization once; the resulting
// session is shared by all of its profiles.
func (r *Runner) login(ctx context.Context, organization config.Organization) (okta.API, error) {
	client := r.NewOktaClient(organization.Name)

	password, err := r.Prompter.PromptForPassword(fmt.Sprintf("Password for %s", organization.Username))
	if err != nil {
		return nil, err
	}

	authenticator := okta.NewAuthenticator(client, r.Prompter)
	sessionToken, err := authenticator.GetSessionToken(ctx, okta.NewCredentialsRequest(organization.Username, password))
	if err != nil {
		return nil, err
	}

	if err := client.CreateSession(ctx, sessionToken); err != nil {
		return nil, err
	}

	return client, nil
}

func (r *Runner) resolveProfile(ctx context.Context, client okta.API, organization config.Organization, profile config.Profile, opts Options) error {
	creds, err := r.fetchCredentials(ctx, client, organization, profile, opts)
	if err != nil {
		return fmt.Errorf("organization %s, profile %s: %w", organization.Name, profile.Name, err)
	}

	r.storeMu.Lock()
	defer r.storeMu.Unlock()
	return r.Store.Upsert(profile.Name, creds)
}

func (r *Runner) fetchCredentials(ctx context.Context, client okta.API, organization config.Organization, profile config.Profile, opts Options) (models.ProfileCredentials, error) {
	logrus.Infof("Requesting tokens for %s/%s", organization.Name, profile.Name)

	appLinks, err := client.AppLinks(ctx)
	if err != nil {
		return models.ProfileCredentials{}, err
	}

	appLink, found := findAppLink(appLinks, profile.Application)
	if !found {
		return models.ProfileCredentials{}, fmt.Errorf("could not find Okta application %q", profile.Application)
	}

	logrus.Debugf("Application link: %+v", appLink)

	encoded, err := client.FetchAssertion(ctx, appLink.LinkURL)
	if err != nil {
		return models.ProfileCredentials{}, fmt.Errorf("getting assertion: %w", err)
	}

	assertion, err := saml.Parse(encoded)
	if err != nil {
		return models.ProfileCredentials{}, err
	}

	logrus.Debugf("Assertion roles: %v", assertion.Roles)

	role, found := findRole(assertion.Roles, profile.Role)
	if !found {
		return models.ProfileCredentials{}, fmt.Errorf("no matching role (%s) found", profile.Role)
	}

	logrus.Tracef("Found role %s", role.RoleARN)

	creds, err := awsrole.AssumeRole(ctx, r.STS, role, assertion.Raw, profile.DurationSeconds)
	if err != nil {
		return models.ProfileCredentials{}, err
	}

	if opts.Verify {
		identity, err := r.VerifySession(ctx, creds)
		if err != nil {
			return models.ProfileCredentials{}, fmt.Errorf("verifying session: %w", err)
		}
		logrus.Infof("Verified session for %s as %s", profile.Name, identity)
	}

	return creds, nil
}

func findAppLink(links []okta.AppLink, application string) (okta.AppLink, bool) {
	for _, link := range links {
		if link.AppName == amazonAWSAppName && link.Label == application {
			return link, true
		}
	}
	return okta.AppLink{}, false
}

func findRole(roles map[awsrole.Role]struct{}, name string) (awsrole.Role, bool) {
	for role := range roles {
		roleName, err := role.RoleName()
		if err != nil {
			continue
		}
		if roleName == name {
			return role, true
		}
	}
	return awsrole.Role{}, false
}
