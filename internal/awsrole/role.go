package awsrole

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

// Role pairs the SAML identity provider ARN with the IAM role ARN, as
// delivered in the assertion's role attribute. The zero value is not a
// valid role; construct via ParseRole.
type Role struct {
	ProviderARN string
	RoleARN     string
}

// ParseRole parses the "provider-arn,role-arn" form used by the
// https://aws.amazon.com/SAML/Attributes/Role assertion attribute.
// Both components must be present and must be well-formed ARNs;
// malformed input never yields a partial role.
func ParseRole(s string) (Role, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Role{}, fmt.Errorf("not enough elements in %s", s)
	}

	providerARN := strings.TrimSpace(parts[0])
	roleARN := strings.TrimSpace(parts[1])

	if !arn.IsARN(providerARN) {
		return Role{}, fmt.Errorf("invalid provider ARN %q", providerARN)
	}
	if !arn.IsARN(roleARN) {
		return Role{}, fmt.Errorf("invalid role ARN %q", roleARN)
	}

	return Role{ProviderARN: providerARN, RoleARN: roleARN}, nil
}

// String renders the role back into its two-part attribute form.
func (r Role) String() string {
	return r.ProviderARN + "," + r.RoleARN
}

// RoleName returns the friendly name of the role, i.e. the part after
// the resource-type separator in "arn:aws:iam::123456789012:role/Name".
func (r Role) RoleName() (string, error) {
	parsed, err := arn.Parse(r.RoleARN)
	if err != nil {
		return "", fmt.Errorf("parsing role ARN %q: %w", r.RoleARN, err)
	}

	resource := parsed.Resource
	idx := strings.Index(resource, "/")
	if idx < 0 || idx == len(resource)-1 {
		return "", fmt.Errorf("no role name in ARN %q", r.RoleARN)
	}

	return resource[idx+1:], nil
}
