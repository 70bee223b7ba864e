package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/clartest/internal/simnet"
)

// AccountInfo is one account as printed by the accounts command.
type AccountInfo struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	PublicKey string `json:"public_key,omitempty"`
}

// AccountsResult is the accounts command output.
type AccountsResult struct {
	Network    string        `json:"network"`
	Accounts   []AccountInfo `json:"accounts"`
	Contracts  []string      `json:"contracts"`
	Registered []string      `json:"registered"` // implementations built into this binary
}

// NewAccountsCommand creates the accounts command.
func NewAccountsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the manifest's accounts and contracts",
		Long: `List the accounts a simulated chain knows and the contracts its
genesis block deploys. Private keys are never printed.

Examples:
  clartest accounts
  clartest accounts --manifest ./Clarinet.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccounts(rootOpts, cmd)
		},
	}
}

func runAccounts(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	m, err := loadManifest(opts)
	if err != nil {
		return formatter.Fail(ErrCodeManifest, err)
	}

	accounts := m.AccountMap()
	result := AccountsResult{
		Network:    m.Network,
		Accounts:   make([]AccountInfo, 0, accounts.Len()),
		Contracts:  m.ContractNames(),
		Registered: simnet.Contracts(),
	}
	for _, name := range accounts.Names() {
		acct, _ := accounts.Get(name)
		result.Accounts = append(result.Accounts, AccountInfo{
			Name:      name,
			Address:   acct.Address,
			PublicKey: acct.PublicKey,
		})
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Network: %s\n\n", result.Network)
	fmt.Fprintln(w, "ROLE\tADDRESS")
	for _, a := range result.Accounts {
		fmt.Fprintf(w, "%s\t%s\n", a.Name, a.Address)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONTRACT\tDEPLOYER\tIMPLEMENTATION")
	for _, name := range result.Contracts {
		impl := "missing"
		if slices.Contains(result.Registered, name) {
			impl = "registered"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, m.Contracts[name].Deployer, impl)
	}
	return w.Flush()
}
