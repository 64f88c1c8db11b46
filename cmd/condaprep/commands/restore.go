package commands

import (
	"git.home.luguber.info/inful/condaprep/internal/ledger"
)

// RestoreCmd implements the 'restore' command.
type RestoreCmd struct {
	Ledger string `help:"Ledger file listing the commented out configuration files" placeholder:"FILE"`
}

func (r *RestoreCmd) Run(_ *Global, _ *CLI) error {
	return ledger.New(r.Ledger).Restore()
}
