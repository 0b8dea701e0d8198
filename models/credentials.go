package models

// ProfileCredentials is one entry of the shared AWS credentials file.
// STS entries carry a session token and are owned by this tool; IAM
// entries are long-lived key pairs managed by hand and are only ever
// round-tripped, never overwritten.
type ProfileCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// IsSts reports whether the entry carries a session token, i.e. was
// written by a federation flow rather than configured manually.
func (c ProfileCredentials) IsSts() bool {
	return c.SessionToken != ""
}

// NewStsCredentials builds an STS-managed entry. All three fields are
// required by the credentials-file format.
func NewStsCredentials(accessKeyID, secretAccessKey, sessionToken string) ProfileCredentials {
	return ProfileCredentials{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		SessionToken:    sessionToken,
	}
}

// NewIamCredentials builds a long-lived key pair entry.
func NewIamCredentials(accessKeyID, secretAccessKey string) ProfileCredentials {
	return ProfileCredentials{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
	}
}
