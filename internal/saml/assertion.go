package saml

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/oktatools/oktaws/internal/awsrole"
)

const (
	// AssertionNamespace is the canonical SAML 2.0 assertion namespace;
	// elements are matched by URI, not by whatever prefix the document
	// happens to bind.
	AssertionNamespace = "urn:oasis:names:tc:SAML:2.0:assertion"

	// RoleAttributeName identifies the attribute carrying the
	// "provider-arn,role-arn" pairs the user may assume.
	RoleAttributeName = "https://aws.amazon.com/SAML/Attributes/Role"
)

var (
	ErrEncoding = errors.New("assertion is not valid base64")
	ErrDocument = errors.New("assertion is not a well-formed XML document")
)

// RoleError reports a single malformed role attribute value. One bad
// value fails the whole parse; partial role sets are never returned.
type RoleError struct {
	Value string
	Err   error
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("malformed role %q: %v", e.Value, e.Err)
}

func (e *RoleError) Unwrap() error { return e.Err }

// Assertion is the decoded identity assertion. Raw keeps the original
// base64 form verbatim; STS requires the exact bytes Okta produced,
// not a re-serialization.
type Assertion struct {
	Raw   string
	Roles map[awsrole.Role]struct{}
}

// Parse decodes a base64 SAML response and extracts the set of
// assumable roles. A document without role attributes yields an empty
// set, not an error; the caller decides whether that is fatal.
func Parse(encoded string) (*Assertion, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocument, err)
	}

	roles := make(map[awsrole.Role]struct{})
	for _, value := range roleAttributeValues(doc.Root()) {
		role, err := awsrole.ParseRole(value)
		if err != nil {
			return nil, &RoleError{Value: value, Err: err}
		}
		roles[role] = struct{}{}
	}

	return &Assertion{Raw: encoded, Roles: roles}, nil
}

// roleAttributeValues walks the document for
// saml:Attribute[@Name=RoleAttributeName]/saml:AttributeValue text
// nodes, matching elements by namespace URI.
func roleAttributeValues(root *etree.Element) []string {
	if root == nil {
		return nil
	}

	var values []string
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if isAssertionElement(e, "Attribute") && e.SelectAttrValue("Name", "") == RoleAttributeName {
			for _, child := range e.ChildElements() {
				if isAssertionElement(child, "AttributeValue") {
					values = append(values, child.Text())
				}
			}
			return
		}
		for _, child := range e.ChildElements() {
			walk(child)
		}
	}
	walk(root)

	return values
}

func isAssertionElement(e *etree.Element, tag string) bool {
	return e.Tag == tag && e.NamespaceURI() == AssertionNamespace
}
