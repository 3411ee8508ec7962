package cmd

import (
	"context"
	"log"
	"os"

	"github.com/pilosa/wdmigrate"
	"github.com/pilosa/wdmigrate/aws/s3"
	"github.com/pilosa/wdmigrate/file"
	"github.com/pilosa/wdmigrate/leveldb"
	"github.com/pilosa/wdmigrate/pgload"
	"github.com/pkg/errors"
)

// Main contains the configuration for one migration run. The wd_migrate
// subcommands fill it from positionals and flags; the wdparse binary runs
// it through commandeer, turning every field into a flag.
type Main struct {
	Variant string `help:"Dump variant to parse: claims or qualifiers."`
	Input   string `help:"Input TSV path, or object key prefix with -s3-bucket."`
	Output  string `help:"Output TSV path."`

	PrintIllegalValues bool   `help:"Log the raw payload of every unparsable timestamp."`
	EntityCounts       bool   `help:"Track per-entity degree counts (claims only)."`
	LevelDBDir         string `help:"Directory for a disk-backed entity count store."`
	CoordCounts        bool   `help:"Track geohash cell occupancy for coordinates."`
	Postgres           string `help:"Postgres DSN; COPY normalized rows directly."`
	PGTable            string `help:"Postgres table to COPY into (default wd_<variant>)."`
	S3Bucket           string `help:"Read input objects from this S3 bucket."`
	S3Region           string `help:"AWS region for -s3-bucket."`
}

// NewMain returns a Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Variant:  "qualifiers",
		S3Region: "us-east-1",
	}
}

// Run builds the handler stack and source this configuration describes and
// streams the whole input through it.
func (m *Main) Run() error {
	variant, err := wdmigrate.ParseVariant(m.Variant)
	if err != nil {
		return err
	}
	if m.Input == "" || m.Output == "" {
		return errors.New("both an input and an output path are required")
	}
	diag := wdmigrate.StdLogger{Logger: log.New(os.Stderr, "", log.LstdFlags)}

	stack := wdmigrate.Stack{
		wdmigrate.NewStats(os.Stdout, diag, wdmigrate.StatsOptions{PrintIllegalValues: m.PrintIllegalValues}),
		wdmigrate.NewQuantityScale(os.Stdout),
	}
	if m.EntityCounts {
		if variant != wdmigrate.Claims {
			return errors.New("entity counts need the entity_id column, which only claims bind")
		}
		var store wdmigrate.CountStore
		if m.LevelDBDir != "" {
			store, err = leveldb.NewCountStore(m.LevelDBDir)
			if err != nil {
				return err
			}
		}
		stack = append(stack, wdmigrate.NewEntityCount(os.Stdout, store))
	}
	if m.CoordCounts {
		stack = append(stack, wdmigrate.NewCoordCount(os.Stdout))
	}
	emitter, err := wdmigrate.NewEmitter(variant, m.Output)
	if err != nil {
		return err
	}
	stack = append(stack, emitter)
	if m.Postgres != "" {
		table := m.PGTable
		if table == "" {
			table = "wd_" + variant.String()
		}
		loader, err := pgload.NewLoader(context.Background(), m.Postgres, table, variant)
		if err != nil {
			return err
		}
		stack = append(stack, loader)
	}

	var src wdmigrate.RawSource
	if m.S3Bucket != "" {
		src, err = s3.NewRawSource(m.S3Region, m.S3Bucket, m.Input)
	} else {
		src, err = file.NewRawSource(m.Input)
	}
	if err != nil {
		return err
	}

	runner := &wdmigrate.Runner{Variant: variant, Handler: stack}
	return runner.RunSource(src)
}
