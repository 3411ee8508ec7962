// wdmigrate turns tab-separated Wikidata claim and qualifier exports into
// normalized tables suitable for bulk loading into a relational database.
//
// The pieces fit together as a small, strictly serial pipeline:
//
// 1. RawSource
//
//    A wdmigrate.RawSource is at the beginning of every migration. Dumps live
//    in different places - a local file, a directory of parts, an S3 bucket -
//    and the RawSource hides that behind a sequence of named byte streams.
//    Implementations for local paths and S3 are in the file and aws/s3
//    sub-packages. It is not the job of the RawSource to interpret bytes in
//    any way; that falls to the tokenizer and the column binding below.
//
// 2. Columns
//
//    Each file variant (claims or qualifiers) declares a fixed, ordered
//    column schema. A Columns row buffer binds that schema to a stream of
//    delimited records (package tsv) and exposes every column as a typed,
//    named field. One buffer is reused for the whole stream; its fields are
//    valid until the next read.
//
// 3. Value parsers
//
//    The datavalue payload column is an opaque textual encoding whose shape
//    is selected by the datavalue_type column. One ValueParser per concrete
//    type knows how to recognize and decode its encoding; the chain tries
//    them in a fixed order and an unknown discriminator aborts the run,
//    since it means the dump schema has drifted.
//
// 4. Handlers
//
//    Every decoded value is fanned out to a Stack of Handlers: counters,
//    scale trackers, the normalized TSV emitter, an optional Postgres
//    loader. Handlers see each row's value in declaration order and report
//    whatever they accumulated when Summary is called at end of stream.

package wdmigrate
