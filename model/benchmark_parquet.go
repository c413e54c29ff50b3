package model

import (
	"context"

	"github.com/benchwatch/benchwatch"
	goparquet "github.com/fraugster/parquet-go"
	"github.com/fraugster/parquet-go/floor"
	"github.com/fraugster/parquet-go/parquet"
	"github.com/fraugster/parquet-go/parquetschema"
	"github.com/pkg/errors"
)

// One row per sample, flattened for columnar analysis tooling.
const benchmarkParquetSchema = `message benchmark_sample {
	required binary project (STRING);
	required binary suite (STRING);
	required binary tool (STRING);
	required binary commit_id (STRING);
	required int64 date;
	required binary bench_name (STRING);
	required double value;
	optional binary unit (STRING);
	optional binary extra (STRING);
}`

// ParquetBenchSample is the flattened row form of one benchmark sample.
type ParquetBenchSample struct {
	Project   string  `parquet:"project"`
	Suite     string  `parquet:"suite"`
	Tool      string  `parquet:"tool"`
	CommitID  string  `parquet:"commit_id"`
	Date      int64   `parquet:"date"`
	BenchName string  `parquet:"bench_name"`
	Value     float64 `parquet:"value"`
	Unit      *string `parquet:"unit"`
	Extra     *string `parquet:"extra"`
}

// ConvertToParquetSamples flattens the benchmark entry into one parquet row
// per sample.
func (e *BenchmarkEntry) ConvertToParquetSamples() []ParquetBenchSample {
	rows := make([]ParquetBenchSample, 0, len(e.Benches))
	for _, bench := range e.Benches {
		row := ParquetBenchSample{
			Project:   e.Info.Project,
			Suite:     e.Info.Suite,
			Tool:      e.Info.Tool,
			CommitID:  e.Info.CommitID,
			Date:      e.Date,
			BenchName: bench.Name,
			Value:     bench.Value,
		}
		if bench.Unit != "" {
			unit := bench.Unit
			row.Unit = &unit
		}
		if bench.Extra != "" {
			extra := bench.Extra
			row.Extra = &extra
		}
		rows = append(rows, row)
	}

	return rows
}

// ExportParquet writes the full history of the given suite to a parquet file
// at the given path, one row per sample, and returns the number of rows
// written.
func ExportParquet(ctx context.Context, env benchwatch.Environment, project, suite, path string) (int, error) {
	entries := &BenchmarkEntries{}
	entries.Setup(env)
	if err := entries.Find(ctx, BenchmarkFindOptions{Project: project, Suite: suite}); err != nil {
		return 0, errors.WithStack(err)
	}
	if len(entries.Entries) == 0 {
		return 0, errors.Errorf("no benchmark entries for suite %s/%s", project, suite)
	}

	sd, err := parquetschema.ParseSchemaDefinition(benchmarkParquetSchema)
	if err != nil {
		return 0, errors.Wrap(err, "problem parsing parquet schema definition")
	}

	fw, err := floor.NewFileWriter(path,
		goparquet.WithSchemaDefinition(sd),
		goparquet.WithCompressionCodec(parquet.CompressionCodec_SNAPPY),
	)
	if err != nil {
		return 0, errors.Wrap(err, "problem creating parquet file writer")
	}

	count := 0
	for i := range entries.Entries {
		for _, row := range entries.Entries[i].ConvertToParquetSamples() {
			if err = fw.Write(row); err != nil {
				_ = fw.Close()
				return count, errors.Wrap(err, "problem writing parquet row")
			}
			count++
		}
	}

	return count, errors.Wrap(fw.Close(), "problem closing parquet file writer")
}
