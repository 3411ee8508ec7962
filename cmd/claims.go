package cmd

import (
	"io"

	"github.com/spf13/cobra"
)

func newClaimsCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	m := NewMain()
	m.Variant = "claims"
	cc := &cobra.Command{
		Use:   "claims <input> <output>",
		Short: "claims - normalize a claims export",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m.Input = args[0]
			m.Output = args[1]
			return m.Run()
		},
	}
	addMigrateFlags(cc, m)
	cc.Flags().BoolVar(&m.EntityCounts, "entity-counts", false, "Track per-entity degree counts.")
	cc.Flags().StringVar(&m.LevelDBDir, "leveldb-dir", "", "Directory for a disk-backed entity count store.")
	cc.SetOutput(stderr)
	return cc
}
