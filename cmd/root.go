package cmd

import (
	"io"

	"github.com/spf13/cobra"
)

// NewRootCommand wires the claims and qualifiers subcommands under the
// wd_migrate root. There is no other configuration surface: everything a
// run needs arrives as positionals and flags.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "wd_migrate",
		Short: "wd_migrate - normalize Wikidata dump exports for bulk loading",
		Long: `Parses tab-separated claim and qualifier exports, types every
datavalue payload, and writes normalized tab-separated output for COPY
into a relational database.`,
	}
	rc.AddCommand(newClaimsCommand(stdin, stdout, stderr))
	rc.AddCommand(newQualifiersCommand(stdin, stdout, stderr))
	rc.SetOutput(stderr)
	return rc
}
