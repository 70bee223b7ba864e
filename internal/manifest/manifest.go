// Package manifest loads devnet manifests: the accounts known to a
// simulated chain and the contracts deployed in its genesis block.
//
// Manifests are CUE. They are unified with an embedded schema, so typos
// and malformed addresses fail at load time with a source position.
package manifest

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/clartest/internal/clarinet"
	"github.com/roach88/clartest/internal/simnet"
)

//go:embed schema.cue
var schemaSrc string

//go:embed devnet.cue
var devnetSrc []byte

// Manifest is a decoded devnet manifest.
type Manifest struct {
	Network   string              `json:"network"`
	Accounts  map[string]Account  `json:"accounts"`
	Contracts map[string]Contract `json:"contracts"`

	// Dir is the directory scenario paths are relative to. Empty for the
	// embedded default.
	Dir string `json:"-"`
}

// Account is a manifest account entry.
type Account struct {
	Address    string `json:"address"`
	PublicKey  string `json:"public_key,omitempty"`
	PrivateKey string `json:"private_key,omitempty"`
}

// Contract is a manifest contract entry.
type Contract struct {
	Deployer  string   `json:"deployer"`
	Scenarios []string `json:"scenarios,omitempty"`
}

// Error is a manifest error with a source position when available.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the embedded devnet manifest.
func Default() (*Manifest, error) {
	return Parse("devnet.cue", devnetSrc)
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Parse validates data against the schema and decodes it.
func Parse(filename string, data []byte) (*Manifest, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var m Manifest
	if err := unified.Decode(&m); err != nil {
		return nil, formatCUEError(err)
	}

	for name, c := range m.Contracts {
		if _, ok := m.Accounts[c.Deployer]; !ok {
			return nil, &Error{
				Field:   "contracts." + name + ".deployer",
				Message: fmt.Sprintf("unknown account %q", c.Deployer),
				Pos:     unified.LookupPath(cue.MakePath(cue.Str("contracts"), cue.Str(name))).Pos(),
			}
		}
	}
	return &m, nil
}

// AccountMap returns the manifest's accounts keyed by role.
func (m *Manifest) AccountMap() clarinet.AccountMap {
	accounts := make(map[string]clarinet.Account, len(m.Accounts))
	for name, a := range m.Accounts {
		accounts[name] = clarinet.Account{
			Address:    a.Address,
			PublicKey:  a.PublicKey,
			PrivateKey: a.PrivateKey,
		}
	}
	return clarinet.NewAccountMap(accounts)
}

// ContractNames returns the contract names in sorted order.
func (m *Manifest) ContractNames() []string {
	names := make([]string, 0, len(m.Contracts))
	for name := range m.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Deployments returns the genesis deployments in contract name order.
func (m *Manifest) Deployments() []simnet.Deployment {
	names := m.ContractNames()
	out := make([]simnet.Deployment, 0, len(names))
	for _, name := range names {
		out = append(out, simnet.Deployment{
			Contract: name,
			Deployer: m.Accounts[m.Contracts[name].Deployer].Address,
		})
	}
	return out
}

// ScenarioFiles returns the scenario paths of every contract, resolved
// against Dir, in contract name order.
func (m *Manifest) ScenarioFiles() []string {
	var files []string
	for _, name := range m.ContractNames() {
		files = append(files, m.ContractScenarios(name)...)
	}
	return files
}

// ContractScenarios returns the scenario paths of one contract, resolved
// against Dir.
func (m *Manifest) ContractScenarios(contract string) []string {
	var files []string
	for _, f := range m.Contracts[contract].Scenarios {
		files = append(files, m.Resolve(f))
	}
	return files
}

// Resolve returns path relative to Dir unless it is absolute.
func (m *Manifest) Resolve(path string) string {
	if filepath.IsAbs(path) || m.Dir == "" {
		return path
	}
	return filepath.Join(m.Dir, path)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &Error{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
