package oktaws_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/golang/mock/gomock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oktatools/oktaws/internal/config"
	"github.com/oktatools/oktaws/internal/credentials"
	"github.com/oktatools/oktaws/internal/okta"
	"github.com/oktatools/oktaws/internal/oktaws"
	"github.com/oktatools/oktaws/models"
	mock_oktaws "github.com/oktatools/oktaws/tests/mock"
)

const (
	credentialsPath = "/home/user/.aws/credentials"
	providerARN     = "arn:aws:iam::123456789012:saml-provider/okta-idp"
	adminARN        = "arn:aws:iam::123456789012:role/admin"
	poweruserARN    = "arn:aws:iam::123456789012:role/poweruser"
)

func encodedAssertion(roleValues ...string) string {
	var values string
	for _, value := range roleValues {
		values += "<saml2:AttributeValue>" + value + "</saml2:AttributeValue>"
	}

	doc := `<?xml version="1.0" encoding="UTF-8"?>
<saml2:Assertion xmlns:saml2="urn:oasis:names:tc:SAML:2.0:assertion">
  <saml2:AttributeStatement>
    <saml2:Attribute Name="https://aws.amazon.com/SAML/Attributes/Role">` + values + `</saml2:Attribute>
  </saml2:AttributeStatement>
</saml2:Assertion>`

	return base64.StdEncoding.EncodeToString([]byte(doc))
}

func testConfig(profiles ...config.Profile) *config.Config {
	return &config.Config{
		Organizations: []config.Organization{
			{
				Name:     "acme",
				Username: "jane.doe@acme.com",
				Profiles: profiles,
			},
		},
	}
}

func productionProfile() config.Profile {
	return config.Profile{
		Name:            "production",
		Application:     "AWS Production",
		Role:            "admin",
		DurationSeconds: 3600,
	}
}

type runnerFixture struct {
	runner *oktaws.Runner
	fs     afero.Fs
	client *mock_oktaws.MockAPI
	sts    *mock_oktaws.MockSTSAPI
	prompt *mock_oktaws.MockPrompter
}

func newFixture(t *testing.T, ctrl *gomock.Controller, cfg *config.Config, existingFile string) *runnerFixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	if existingFile != "" {
		require.NoError(t, afero.WriteFile(fs, credentialsPath, []byte(existingFile), 0o600))
	}

	store, err := credentials.Load(fs, credentialsPath)
	require.NoError(t, err)

	client := mock_oktaws.NewMockAPI(ctrl)
	stsMock := mock_oktaws.NewMockSTSAPI(ctrl)
	prompter := mock_oktaws.NewMockPrompter(ctrl)

	runner := oktaws.NewRunner(cfg, store, stsMock, prompter)
	runner.NewOktaClient = func(organization string) okta.API {
		assert.Equal(t, "acme", organization)
		return client
	}

	return &runnerFixture{runner: runner, fs: fs, client: client, sts: stsMock, prompt: prompter}
}

func (f *runnerFixture) expectLogin() {
	f.prompt.EXPECT().PromptForPassword("Password for jane.doe@acme.com").Return("hunter2", nil)
	f.client.EXPECT().
		Authn(gomock.Any(), okta.NewCredentialsRequest("jane.doe@acme.com", "hunter2")).
		Return(&okta.AuthResponse{Status: okta.StatusSuccess, SessionToken: "session-token"}, nil)
	f.client.EXPECT().CreateSession(gomock.Any(), "session-token").Return(nil)
}

func TestRunSequential(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl, testConfig(productionProfile()), "")
	f.expectLogin()

	assertion := encodedAssertion(providerARN + "," + adminARN)

	f.client.EXPECT().AppLinks(gomock.Any()).Return([]okta.AppLink{
		{AppName: "amazon_aws", Label: "AWS Production", LinkURL: "https://acme.okta.com/app/1"},
		{AppName: "amazon_aws", Label: "AWS Staging", LinkURL: "https://acme.okta.com/app/2"},
	}, nil)
	f.client.EXPECT().FetchAssertion(gomock.Any(), "https://acme.okta.com/app/1").Return(assertion, nil)

	f.sts.EXPECT().AssumeRoleWithSAML(gomock.Any(), &sts.AssumeRoleWithSAMLInput{
		PrincipalArn:    aws.String(providerARN),
		RoleArn:         aws.String(adminARN),
		SAMLAssertion:   aws.String(assertion),
		DurationSeconds: aws.Int32(3600),
	}).Return(&sts.AssumeRoleWithSAMLOutput{
		Credentials: &types.Credentials{
			AccessKeyId:     aws.String("ACCESS_KEY"),
			SecretAccessKey: aws.String("SECRET_ACCESS_KEY"),
			SessionToken:    aws.String("SESSION_TOKEN"),
		},
	}, nil)

	err := f.runner.Run(context.Background(), oktaws.Options{ProfilePattern: "*", OrganizationPattern: "*"})
	require.NoError(t, err)

	written, err := afero.ReadFile(f.fs, credentialsPath)
	require.NoError(t, err)
	assert.Equal(t,
		"[production]\r\naws_access_key_id=ACCESS_KEY\r\naws_secret_access_key=SECRET_ACCESS_KEY\r\naws_session_token=SESSION_TOKEN\r\n",
		string(written))
}

func TestRunPreservesExistingIamEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existing := "[existing]\naws_access_key_id=IAM_KEY\naws_secret_access_key=IAM_SECRET\n"

	f := newFixture(t, ctrl, testConfig(productionProfile()), existing)
	f.expectLogin()

	assertion := encodedAssertion(providerARN + "," + adminARN)
	f.client.EXPECT().AppLinks(gomock.Any()).Return([]okta.AppLink{
		{AppName: "amazon_aws", Label: "AWS Production", LinkURL: "https://acme.okta.com/app/1"},
	}, nil)
	f.client.EXPECT().FetchAssertion(gomock.Any(), gomock.Any()).Return(assertion, nil)
	f.sts.EXPECT().AssumeRoleWithSAML(gomock.Any(), gomock.Any()).Return(&sts.AssumeRoleWithSAMLOutput{
		Credentials: &types.Credentials{
			AccessKeyId:     aws.String("ACCESS_KEY"),
			SecretAccessKey: aws.String("SECRET_ACCESS_KEY"),
			SessionToken:    aws.String("SESSION_TOKEN"),
		},
	}, nil)

	err := f.runner.Run(context.Background(), oktaws.Options{ProfilePattern: "*", OrganizationPattern: "*"})
	require.NoError(t, err)

	written, err := afero.ReadFile(f.fs, credentialsPath)
	require.NoError(t, err)
	assert.Equal(t,
		"[existing]\r\naws_access_key_id=IAM_KEY\r\naws_secret_access_key=IAM_SECRET\r\n"+
			"[production]\r\naws_access_key_id=ACCESS_KEY\r\naws_secret_access_key=SECRET_ACCESS_KEY\r\naws_session_token=SESSION_TOKEN\r\n",
		string(written))
}

func TestRunNoOrganizations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl, testConfig(productionProfile()), "")

	err := f.runner.Run(context.Background(), oktaws.Options{ProfilePattern: "*", OrganizationPattern: "globex"})
	assert.ErrorContains(t, err, "no organizations found called globex")
}

func TestRunNoMatchingProfiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No login, no prompts: the organization is skipped with a warning
	// and the (empty) store is still saved.
	f := newFixture(t, ctrl, testConfig(productionProfile()), "")

	err := f.runner.Run(context.Background(), oktaws.Options{ProfilePattern: "nonexistent", OrganizationPattern: "*"})
	require.NoError(t, err)
}

func TestRunMissingApplication(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl, testConfig(productionProfile()), "")
	f.expectLogin()

	f.client.EXPECT().AppLinks(gomock.Any()).Return([]okta.AppLink{
		{AppName: "amazon_aws", Label: "Some Other App", LinkURL: "https://acme.okta.com/app/9"},
	}, nil)

	err := f.runner.Run(context.Background(), oktaws.Options{ProfilePattern: "*", OrganizationPattern: "*"})
	assert.ErrorContains(t, err, "organization acme, profile production")
	assert.ErrorContains(t, err, `could not find Okta application "AWS Production"`)
}

func TestRunMissingRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl, testConfig(productionProfile()), "")
	f.expectLogin()

	f.client.EXPECT().AppLinks(gomock.Any()).Return([]okta.AppLink{
		{AppName: "amazon_aws", Label: "AWS Production", LinkURL: "https://acme.okta.com/app/1"},
	}, nil)
	f.client.EXPECT().FetchAssertion(gomock.Any(), gomock.Any()).
		Return(encodedAssertion(providerARN+","+poweruserARN), nil)

	err := f.runner.Run(context.Background(), oktaws.Options{ProfilePattern: "*", OrganizationPattern: "*"})
	assert.ErrorContains(t, err, "no matching role (admin) found")

	// Nothing was persisted.
	exists, err := afero.Exists(f.fs, credentialsPath)
	require.NoError(t, err)
	if exists {
		written, err := afero.ReadFile(f.fs, credentialsPath)
		require.NoError(t, err)
		assert.Empty(t, written)
	}
}

func TestRunConflictAbortsBeforeSave(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// "production" already exists as a long-lived IAM entry.
	existing := "[production]\naws_access_key_id=IAM_KEY\naws_secret_access_key=IAM_SECRET\n"

	f := newFixture(t, ctrl, testConfig(productionProfile()), existing)
	f.expectLogin()

	assertion := encodedAssertion(providerARN + "," + adminARN)
	f.client.EXPECT().AppLinks(gomock.Any()).Return([]okta.AppLink{
		{AppName: "amazon_aws", Label: "AWS Production", LinkURL: "https://acme.okta.com/app/1"},
	}, nil)
	f.client.EXPECT().FetchAssertion(gomock.Any(), gomock.Any()).Return(assertion, nil)
	f.sts.EXPECT().AssumeRoleWithSAML(gomock.Any(), gomock.Any()).Return(&sts.AssumeRoleWithSAMLOutput{
		Credentials: &types.Credentials{
			AccessKeyId:     aws.String("ACCESS_KEY"),
			SecretAccessKey: aws.String("SECRET_ACCESS_KEY"),
			SessionToken:    aws.String("SESSION_TOKEN"),
		},
	}, nil)

	err := f.runner.Run(context.Background(), oktaws.Options{ProfilePattern: "*", OrganizationPattern: "*"})

	var conflict *credentials.ConflictError
	require.ErrorAs(t, err, &conflict)

	// The run aborted before Save; the file is exactly as before.
	written, readErr := afero.ReadFile(f.fs, credentialsPath)
	require.NoError(t, readErr)
	assert.Equal(t, existing, string(written))
}

func TestRunConcurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	staging := config.Profile{
		Name:            "staging",
		Application:     "AWS Staging",
		Role:            "poweruser",
		DurationSeconds: 7200,
	}

	f := newFixture(t, ctrl, testConfig(productionProfile(), staging), "")
	f.expectLogin()

	links := []okta.AppLink{
		{AppName: "amazon_aws", Label: "AWS Production", LinkURL: "https://acme.okta.com/app/1"},
		{AppName: "amazon_aws", Label: "AWS Staging", LinkURL: "https://acme.okta.com/app/2"},
	}
	f.client.EXPECT().AppLinks(gomock.Any()).Return(links, nil).Times(2)

	f.client.EXPECT().FetchAssertion(gomock.Any(), "https://acme.okta.com/app/1").
		Return(encodedAssertion(providerARN+","+adminARN), nil)
	f.client.EXPECT().FetchAssertion(gomock.Any(), "https://acme.okta.com/app/2").
		Return(encodedAssertion(providerARN+","+poweruserARN, providerARN+","+adminARN), nil)

	f.sts.EXPECT().AssumeRoleWithSAML(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params *sts.AssumeRoleWithSAMLInput, _ ...func(*sts.Options)) (*sts.AssumeRoleWithSAMLOutput, error) {
			suffix := "ADMIN"
			if aws.ToString(params.RoleArn) == poweruserARN {
				suffix = "POWERUSER"
			}
			return &sts.AssumeRoleWithSAMLOutput{
				Credentials: &types.Credentials{
					AccessKeyId:     aws.String("KEY_" + suffix),
					SecretAccessKey: aws.String("SECRET_" + suffix),
					SessionToken:    aws.String("TOKEN_" + suffix),
				},
			}, nil
		}).Times(2)

	err := f.runner.Run(context.Background(), oktaws.Options{
		ProfilePattern:      "*",
		OrganizationPattern: "*",
		Concurrent:          true,
	})
	require.NoError(t, err)

	written, err := afero.ReadFile(f.fs, credentialsPath)
	require.NoError(t, err)
	assert.Equal(t,
		"[production]\r\naws_access_key_id=KEY_ADMIN\r\naws_secret_access_key=SECRET_ADMIN\r\naws_session_token=TOKEN_ADMIN\r\n"+
			"[staging]\r\naws_access_key_id=KEY_POWERUSER\r\naws_secret_access_key=SECRET_POWERUSER\r\naws_session_token=TOKEN_POWERUSER\r\n",
		string(written))
}

func TestRunVerify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl, testConfig(productionProfile()), "")
	f.expectLogin()

	assertion := encodedAssertion(providerARN + "," + adminARN)
	f.client.EXPECT().AppLinks(gomock.Any()).Return([]okta.AppLink{
		{AppName: "amazon_aws", Label: "AWS Production", LinkURL: "https://acme.okta.com/app/1"},
	}, nil)
	f.client.EXPECT().FetchAssertion(gomock.Any(), gomock.Any()).Return(assertion, nil)
	f.sts.EXPECT().AssumeRoleWithSAML(gomock.Any(), gomock.Any()).Return(&sts.AssumeRoleWithSAMLOutput{
		Credentials: &types.Credentials{
			AccessKeyId:     aws.String("ACCESS_KEY"),
			SecretAccessKey: aws.String("SECRET_ACCESS_KEY"),
			SessionToken:    aws.String("SESSION_TOKEN"),
		},
	}, nil)

	verified := false
	f.runner.VerifySession = func(ctx context.Context, creds models.ProfileCredentials) (string, error) {
		verified = true
		assert.Equal(t, "ACCESS_KEY", creds.AccessKeyID)
		return "arn:aws:sts::123456789012:assumed-role/admin/session", nil
	}

	err := f.runner.Run(context.Background(), oktaws.Options{
		ProfilePattern:      "*",
		OrganizationPattern: "*",
		Verify:              true,
	})
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestRunVerifyFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, ctrl, testConfig(productionProfile()), "")
	f.expectLogin()

	assertion := encodedAssertion(providerARN + "," + adminARN)
	f.client.EXPECT().AppLinks(gomock.Any()).Return([]okta.AppLink{
		{AppName: "amazon_aws", Label: "AWS Production", LinkURL: "https://acme.okta.com/app/1"},
	}, nil)
	f.client.EXPECT().FetchAssertion(gomock.Any(), gomock.Any()).Return(assertion, nil)
	f.sts.EXPECT().AssumeRoleWithSAML(gomock.Any(), gomock.Any()).Return(&sts.AssumeRoleWithSAMLOutput{
		Credentials: &types.Credentials{
			AccessKeyId:     aws.String("ACCESS_KEY"),
			SecretAccessKey: aws.String("SECRET_ACCESS_KEY"),
			SessionToken:    aws.String("SESSION_TOKEN"),
		},
	}, nil)

	f.runner.VerifySession = func(ctx context.Context, creds models.ProfileCredentials) (string, error) {
		return "", fmt.Errorf("expired")
	}

	err := f.runner.Run(context.Background(), oktaws.Options{
		ProfilePattern:      "*",
		OrganizationPattern: "*",
		Verify:              true,
	})
	assert.ErrorContains(t, err, "verifying session")
}
