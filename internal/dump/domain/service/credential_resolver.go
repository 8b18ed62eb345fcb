package service

import (
	"strings"

	"cosmosdump/internal/dump/domain/model"
	"cosmosdump/internal/shared/errors"
)

const (
	endpointKey   = "accountendpoint"
	accountKeyKey = "accountkey"

	httpsScheme    = "https://"
	endpointSuffix = ".documents.azure.com:443"
)

// CredentialInput carries the raw, optional authentication inputs
type CredentialInput struct {
	ConnectionString string
	Account          string
	Key              string
}

// ResolveCredentials picks exactly one complete credential form. A connection
// string holding both AccountEndpoint and AccountKey wins over discrete
// account/key inputs; otherwise both discrete inputs are required.
func ResolveCredentials(in CredentialInput) (model.Credentials, error) {
	if in.ConnectionString != "" {
		if endpoint, key, ok := ParseConnectionString(in.ConnectionString); ok {
			return model.Credentials{Account: NormalizeAccount(endpoint), Key: key}, nil
		}
	}

	if in.Account != "" && in.Key != "" {
		return model.Credentials{Account: NormalizeAccount(in.Account), Key: in.Key}, nil
	}

	err := errors.NewConfigurationError("cannot resolve credentials").
		WithCause(errors.ErrMissingCredentials).
		WithComponent("credentials")
	if in.ConnectionString != "" {
		err.WithDetail("connection_string", "missing AccountEndpoint or AccountKey")
	}
	return model.Credentials{}, err
}

// ParseConnectionString extracts AccountEndpoint and AccountKey from a
// `;`-separated list of key=value segments. Keys match case-insensitively,
// values are split on the first `=` only and segments without `=` are ignored.
func ParseConnectionString(s string) (endpoint, key string, ok bool) {
	for _, segment := range strings.Split(s, ";") {
		name, value, found := strings.Cut(segment, "=")
		if !found {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case endpointKey:
			endpoint = value
		case accountKeyKey:
			key = value
		}
	}
	return endpoint, key, endpoint != "" && key != ""
}

// NormalizeAccount reduces an endpoint URL to the bare account name:
// "https://foo.documents.azure.com:443/" becomes "foo". Applying it to an
// already bare name is a no-op.
func NormalizeAccount(account string) string {
	account = strings.TrimSpace(account)
	account = strings.TrimPrefix(account, httpsScheme)
	account = strings.ReplaceAll(account, "/", "")
	account = strings.TrimSuffix(account, endpointSuffix)
	return account
}
