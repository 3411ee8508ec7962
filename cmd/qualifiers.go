package cmd

import (
	"io"

	"github.com/spf13/cobra"
)

// addMigrateFlags declares the flags shared by both file variants.
func addMigrateFlags(cc *cobra.Command, m *Main) {
	cc.Flags().BoolVar(&m.PrintIllegalValues, "print-illegal-values", false, "Log the raw payload of every unparsable timestamp.")
	cc.Flags().BoolVar(&m.CoordCounts, "coord-counts", false, "Track geohash cell occupancy for coordinates.")
	cc.Flags().StringVar(&m.Postgres, "postgres", "", "Postgres DSN; COPY normalized rows directly.")
	cc.Flags().StringVar(&m.PGTable, "pg-table", "", "Postgres table to COPY into (default wd_<variant>).")
	cc.Flags().StringVar(&m.S3Bucket, "s3-bucket", "", "Read input objects from this S3 bucket.")
	cc.Flags().StringVar(&m.S3Region, "s3-region", m.S3Region, "AWS region for --s3-bucket.")
}

func newQualifiersCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	m := NewMain()
	m.Variant = "qualifiers"
	cc := &cobra.Command{
		Use:   "qualifiers <input> <output>",
		Short: "qualifiers - normalize a qualifiers export",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m.Input = args[0]
			m.Output = args[1]
			return m.Run()
		},
	}
	addMigrateFlags(cc, m)
	cc.SetOutput(stderr)
	return cc
}
