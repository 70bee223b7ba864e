package clarinet

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingAccount is returned when a role is not in the account map.
var ErrMissingAccount = errors.New("missing account")

// Account is a chain identity. Keys are optional.
type Account struct {
	Address    string `json:"address"`
	PublicKey  string `json:"public_key,omitempty"`
	PrivateKey string `json:"-"`
}

// AccountMap maps role names (e.g. "deployer") to accounts.
// It is read-only once constructed.
type AccountMap struct {
	accounts map[string]Account
}

// NewAccountMap builds an AccountMap. The input map is copied.
func NewAccountMap(accounts map[string]Account) AccountMap {
	m := make(map[string]Account, len(accounts))
	for name, acct := range accounts {
		m[name] = acct
	}
	return AccountMap{accounts: m}
}

// Get returns the account for a role.
func (m AccountMap) Get(name string) (Account, bool) {
	acct, ok := m.accounts[name]
	return acct, ok
}

// Require returns the account for a role or an error wrapping
// ErrMissingAccount.
func (m AccountMap) Require(name string) (Account, error) {
	acct, ok := m.accounts[name]
	if !ok {
		return Account{}, fmt.Errorf("%w: %q", ErrMissingAccount, name)
	}
	return acct, nil
}

// Names returns the role names in sorted order.
func (m AccountMap) Names() []string {
	names := make([]string, 0, len(m.accounts))
	for name := range m.accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of accounts.
func (m AccountMap) Len() int {
	return len(m.accounts)
}
