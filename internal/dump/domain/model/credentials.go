package model

import "fmt"

// Credentials is a resolved account/key pair. It only exists long enough to
// build the remote client and is never written anywhere.
type Credentials struct {
	Account string
	Key     string
}

// Endpoint is the public HTTPS endpoint of the account
func (c Credentials) Endpoint() string {
	return fmt.Sprintf("https://%s.documents.azure.com:443/", c.Account)
}

// String hides the key so credentials can be logged safely
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Account: %q, Key: <redacted>}", c.Account)
}
