package awsrole

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"github.com/oktatools/oktaws/models"
)

// STSAPI is the slice of the STS client used by the pipeline.
type STSAPI interface {
	AssumeRoleWithSAML(ctx context.Context, params *sts.AssumeRoleWithSAMLInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleWithSAMLOutput, error)
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// NewSTSClient builds an STS client with anonymous credentials.
// AssumeRoleWithSAML is an unsigned call; the assertion itself is the
// proof of identity.
func NewSTSClient(ctx context.Context) (*sts.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	return sts.NewFromConfig(cfg), nil
}

// AssumeRole exchanges a role and the raw base64 assertion for
// temporary credentials. The assertion must be passed exactly as
// received from the identity provider.
func AssumeRole(ctx context.Context, client STSAPI, role Role, rawAssertion string, durationSeconds int32) (models.ProfileCredentials, error) {
	logrus.Debugf("Assuming role %s", role.RoleARN)

	out, err := client.AssumeRoleWithSAML(ctx, &sts.AssumeRoleWithSAMLInput{
		PrincipalArn:    aws.String(role.ProviderARN),
		RoleArn:         aws.String(role.RoleARN),
		SAMLAssertion:   aws.String(rawAssertion),
		DurationSeconds: aws.Int32(durationSeconds),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return models.ProfileCredentials{}, fmt.Errorf("assuming role %s: %s: %s",
				role.RoleARN, apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return models.ProfileCredentials{}, fmt.Errorf("assuming role %s: %w", role.RoleARN, err)
	}

	if out.Credentials == nil {
		return models.ProfileCredentials{}, fmt.Errorf("no credentials in assume-role response for %s", role.RoleARN)
	}

	return models.NewStsCredentials(
		aws.ToString(out.Credentials.AccessKeyId),
		aws.ToString(out.Credentials.SecretAccessKey),
		aws.ToString(out.Credentials.SessionToken),
	), nil
}

// VerifySession calls GetCallerIdentity with freshly minted
// credentials and returns the assumed-role ARN. Used to confirm a new
// session actually works before it is reported to the operator.
func VerifySession(ctx context.Context, creds models.ProfileCredentials) (string, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken,
		)),
	)
	if err != nil {
		return "", fmt.Errorf("loading AWS configuration: %w", err)
	}

	return CallerIdentity(ctx, sts.NewFromConfig(cfg))
}

// CallerIdentity returns the ARN of the identity the client's
// credentials resolve to.
func CallerIdentity(ctx context.Context, client STSAPI) (string, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("getting caller identity: %w", err)
	}

	return aws.ToString(out.Arn), nil
}
