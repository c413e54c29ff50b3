package model

import (
	"context"
	"crypto/sha1"
	"fmt"
	"hash"
	"io"
	"strings"
	"time"

	"github.com/benchwatch/benchwatch"
	"github.com/benchwatch/benchwatch/util"
	"github.com/mongodb/anser/bsonutil"
	"github.com/mongodb/anser/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const benchmarkEntryCollection = "benchmark_entries"

// BenchmarkEntry describes the results of a single benchmark run recorded by
// a CI job: the commit under test plus the set of metric samples the run
// produced. Entries are accumulation-only, one per run, ordered by date.
type BenchmarkEntry struct {
	ID        string             `bson:"_id,omitempty"`
	Info      BenchmarkEntryInfo `bson:"info,omitempty"`
	Commit    CommitInfo         `bson:"commit"`
	Date      int64              `bson:"date"`
	Benches   []BenchSample      `bson:"benches"`
	CreatedAt time.Time          `bson:"created_at"`

	env       benchwatch.Environment
	populated bool
}

var (
	benchmarkEntryIDKey        = bsonutil.MustHaveTag(BenchmarkEntry{}, "ID")
	benchmarkEntryInfoKey      = bsonutil.MustHaveTag(BenchmarkEntry{}, "Info")
	benchmarkEntryCommitKey    = bsonutil.MustHaveTag(BenchmarkEntry{}, "Commit")
	benchmarkEntryDateKey      = bsonutil.MustHaveTag(BenchmarkEntry{}, "Date")
	benchmarkEntryBenchesKey   = bsonutil.MustHaveTag(BenchmarkEntry{}, "Benches")
	benchmarkEntryCreatedAtKey = bsonutil.MustHaveTag(BenchmarkEntry{}, "CreatedAt")
)

// CreateBenchmarkEntry is the entry point for recording a benchmark run. The
// entry date defaults to the current time in epoch milliseconds, matching
// what the dashboard renderer expects.
func CreateBenchmarkEntry(info BenchmarkEntryInfo, commit CommitInfo, benches []BenchSample) *BenchmarkEntry {
	if info.CommitID == "" {
		info.CommitID = commit.ID
	}

	now := time.Now()
	return &BenchmarkEntry{
		ID:        info.ID(),
		Info:      info,
		Commit:    commit,
		Date:      util.UnixMilli(now),
		Benches:   append([]BenchSample{}, benches...),
		CreatedAt: now,
		populated: true,
	}
}

// Setup sets the environment for the benchmark entry. The environment is
// required for all database operations on BenchmarkEntry.
func (e *BenchmarkEntry) Setup(env benchwatch.Environment) { e.env = env }

// IsNil returns if the benchmark entry is populated or not.
func (e *BenchmarkEntry) IsNil() bool { return !e.populated }

// Find searches the database for the benchmark entry. The environment should
// not be nil. Either the ID or the full Info of the entry must be specified.
func (e *BenchmarkEntry) Find(ctx context.Context) error {
	if e.env == nil {
		return errors.New("cannot find with a nil environment")
	}

	if e.ID == "" {
		e.ID = e.Info.ID()
	}

	e.populated = false
	err := e.env.GetDB().Collection(benchmarkEntryCollection).FindOne(ctx, bson.M{"_id": e.ID}).Decode(e)
	if db.ResultsNotFound(err) {
		return errors.Wrapf(err, "could not find benchmark entry record with id %s in the database", e.ID)
	} else if err != nil {
		return errors.Wrapf(err, "problem finding benchmark entry with id %s", e.ID)
	}

	e.populated = true

	return nil
}

// SaveNew saves a new benchmark entry to the database. If an entry with the
// same ID already exists an error is returned, nothing is overwritten. The
// entry should be populated and the environment should not be nil.
func (e *BenchmarkEntry) SaveNew(ctx context.Context) error {
	if !e.populated {
		return errors.New("cannot save unpopulated benchmark entry")
	}
	if e.env == nil {
		return errors.New("cannot save with a nil environment")
	}

	if e.ID == "" {
		e.ID = e.Info.ID()
	}

	insertResult, err := e.env.GetDB().Collection(benchmarkEntryCollection).InsertOne(ctx, e)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Errorf("benchmark entry %s already exists", e.ID)
	}
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   benchmarkEntryCollection,
		"id":           e.ID,
		"insertResult": insertResult,
		"project":      e.Info.Project,
		"suite":        e.Info.Suite,
		"commit":       e.Info.CommitID,
		"op":           "save new benchmark entry",
	})

	return errors.Wrapf(err, "problem saving new benchmark entry %s", e.ID)
}

// Remove removes the benchmark entry from the database. The environment
// should not be nil.
func (e *BenchmarkEntry) Remove(ctx context.Context) (int, error) {
	if e.env == nil {
		return -1, errors.New("cannot remove a benchmark entry with a nil environment")
	}

	if e.ID == "" {
		e.ID = e.Info.ID()
	}

	deleteResult, err := e.env.GetDB().Collection(benchmarkEntryCollection).DeleteOne(ctx, bson.M{"_id": e.ID})
	if err != nil {
		return -1, errors.Wrapf(err, "problem removing benchmark entry with _id %s", e.ID)
	}

	return int(deleteResult.DeletedCount), nil
}

////////////////////////////////////////////////////////////////////////
//
// Component Types

// BenchmarkEntryInfo describes the information unique to a single benchmark
// entry.
type BenchmarkEntryInfo struct {
	Project  string `bson:"project,omitempty"`
	Suite    string `bson:"suite,omitempty"`
	Tool     string `bson:"tool,omitempty"`
	CommitID string `bson:"commit_id,omitempty"`
	Schema   int    `bson:"schema,omitempty"`
}

var (
	benchmarkEntryInfoProjectKey  = bsonutil.MustHaveTag(BenchmarkEntryInfo{}, "Project")
	benchmarkEntryInfoSuiteKey    = bsonutil.MustHaveTag(BenchmarkEntryInfo{}, "Suite")
	benchmarkEntryInfoToolKey     = bsonutil.MustHaveTag(BenchmarkEntryInfo{}, "Tool")
	benchmarkEntryInfoCommitIDKey = bsonutil.MustHaveTag(BenchmarkEntryInfo{}, "CommitID")
	benchmarkEntryInfoSchemaKey   = bsonutil.MustHaveTag(BenchmarkEntryInfo{}, "Schema")
)

// ID creates a unique hash for a benchmark entry.
func (id *BenchmarkEntryInfo) ID() string {
	var hash hash.Hash

	if id.Schema == 0 {
		hash = sha1.New()
		_, _ = io.WriteString(hash, id.Project)
		_, _ = io.WriteString(hash, id.Suite)
		_, _ = io.WriteString(hash, id.Tool)
		_, _ = io.WriteString(hash, id.CommitID)
	} else {
		panic("unsupported schema")
	}

	return fmt.Sprintf("%x", hash.Sum(nil))
}

// GitUser identifies the author or committer of a commit.
type GitUser struct {
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	Username string `bson:"username,omitempty" json:"username,omitempty"`
}

// CommitInfo describes the commit a benchmark entry was recorded for. The
// json tags match the dashboard data contract and are not negotiable.
type CommitInfo struct {
	Author    GitUser   `bson:"author" json:"author"`
	Committer GitUser   `bson:"committer" json:"committer"`
	Distinct  bool      `bson:"distinct" json:"distinct"`
	ID        string    `bson:"id" json:"id"`
	Message   string    `bson:"message" json:"message"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	TreeID    string    `bson:"tree_id" json:"tree_id"`
	URL       string    `bson:"url" json:"url"`
}

// RepoURL derives the repository URL from the commit URL, which has the form
// <repo>/commit/<sha>.
func (c *CommitInfo) RepoURL() string {
	idx := strings.LastIndex(c.URL, "/commit/")
	if idx < 0 {
		return c.URL
	}
	return c.URL[:idx]
}

// BenchSample is a single named metric sample of a benchmark run. The json
// tags match the dashboard data contract.
type BenchSample struct {
	Name           string  `bson:"name" json:"name"`
	Value          float64 `bson:"value" json:"value"`
	Unit           string  `bson:"unit" json:"unit"`
	Extra          string  `bson:"extra,omitempty" json:"extra,omitempty"`
	Range          string  `bson:"range,omitempty" json:"range,omitempty"`
	BiggerIsBetter bool    `bson:"bigger_is_better,omitempty" json:"bigger_is_better,omitempty"`
}

var (
	benchSampleNameKey  = bsonutil.MustHaveTag(BenchSample{}, "Name")
	benchSampleValueKey = bsonutil.MustHaveTag(BenchSample{}, "Value")
	benchSampleUnitKey  = bsonutil.MustHaveTag(BenchSample{}, "Unit")
)

// BenchmarkEntries describes a set of benchmark entries, typically the
// history of one suite.
type BenchmarkEntries struct {
	Entries []BenchmarkEntry `bson:"entries"`

	env       benchwatch.Environment
	populated bool
}

// BenchmarkFindOptions describe the search criteria for the Find function on
// BenchmarkEntries.
type BenchmarkFindOptions struct {
	Project  string
	Suite    string
	CommitID string
	Interval util.TimeRange
	Limit    int
}

// Setup sets the environment for the benchmark entries. The environment is
// required for all database operations on BenchmarkEntries.
func (r *BenchmarkEntries) Setup(env benchwatch.Environment) { r.env = env }

// IsNil returns if the benchmark entries are populated or not.
func (r *BenchmarkEntries) IsNil() bool { return !r.populated }

// Find returns the benchmark entries matching the given criteria, ascending
// by date with insertion-order tiebreak. This is the order the dashboard
// renders entries in.
func (r *BenchmarkEntries) Find(ctx context.Context, opts BenchmarkFindOptions) error {
	if r.env == nil {
		return errors.New("cannot find with a nil environment")
	}

	search := createEntriesFindQuery(opts)
	findOpts := options.Find().SetSort(bson.D{
		{Key: benchmarkEntryDateKey, Value: 1},
		{Key: benchmarkEntryIDKey, Value: 1},
	})
	if opts.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(opts.Limit))
	}

	r.populated = false
	cursor, err := r.env.GetDB().Collection(benchmarkEntryCollection).Find(ctx, search, findOpts)
	if err != nil {
		return errors.Wrap(err, "problem finding benchmark entries")
	}
	if err = cursor.All(ctx, &r.Entries); err != nil {
		return errors.Wrap(err, "problem decoding benchmark entries")
	}
	r.populated = true

	return nil
}

func createEntriesFindQuery(opts BenchmarkFindOptions) map[string]interface{} {
	search := bson.M{}

	if opts.Project != "" {
		search[bsonutil.GetDottedKeyName(benchmarkEntryInfoKey, benchmarkEntryInfoProjectKey)] = opts.Project
	}
	if opts.Suite != "" {
		search[bsonutil.GetDottedKeyName(benchmarkEntryInfoKey, benchmarkEntryInfoSuiteKey)] = opts.Suite
	}
	if opts.CommitID != "" {
		search[bsonutil.GetDottedKeyName(benchmarkEntryInfoKey, benchmarkEntryInfoCommitIDKey)] = opts.CommitID
	}
	if !opts.Interval.IsZero() {
		search[benchmarkEntryDateKey] = bson.M{
			"$gte": util.UnixMilli(opts.Interval.StartAt),
			"$lte": util.UnixMilli(opts.Interval.EndAt),
		}
	}

	return search
}

// FindLatest returns the newest benchmark entry of the given suite, or an
// error when the suite has no entries.
func (r *BenchmarkEntries) FindLatest(ctx context.Context, project, suite string) (*BenchmarkEntry, error) {
	if r.env == nil {
		return nil, errors.New("cannot find with a nil environment")
	}

	search := createEntriesFindQuery(BenchmarkFindOptions{Project: project, Suite: suite})
	findOpts := options.FindOne().SetSort(bson.D{
		{Key: benchmarkEntryDateKey, Value: -1},
		{Key: benchmarkEntryIDKey, Value: -1},
	})

	entry := &BenchmarkEntry{}
	err := r.env.GetDB().Collection(benchmarkEntryCollection).FindOne(ctx, search, findOpts).Decode(entry)
	if db.ResultsNotFound(err) {
		return nil, errors.Errorf("no benchmark entries for suite %s/%s", project, suite)
	} else if err != nil {
		return nil, errors.Wrapf(err, "problem finding latest benchmark entry for suite %s/%s", project, suite)
	}

	entry.populated = true
	entry.env = r.env

	return entry, nil
}

// FindPrevious returns the entry immediately preceding the given entry in
// the same suite, or nil when the given entry is the oldest.
func (r *BenchmarkEntries) FindPrevious(ctx context.Context, entry *BenchmarkEntry) (*BenchmarkEntry, error) {
	if r.env == nil {
		return nil, errors.New("cannot find with a nil environment")
	}

	search := createEntriesFindQuery(BenchmarkFindOptions{
		Project: entry.Info.Project,
		Suite:   entry.Info.Suite,
	})
	search[benchmarkEntryDateKey] = bson.M{"$lt": entry.Date}
	findOpts := options.FindOne().SetSort(bson.D{
		{Key: benchmarkEntryDateKey, Value: -1},
		{Key: benchmarkEntryIDKey, Value: -1},
	})

	previous := &BenchmarkEntry{}
	err := r.env.GetDB().Collection(benchmarkEntryCollection).FindOne(ctx, search, findOpts).Decode(previous)
	if db.ResultsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "problem finding previous benchmark entry for %s", entry.ID)
	}

	previous.populated = true
	previous.env = r.env

	return previous, nil
}

// RemoveOldest deletes the oldest entries of the given suite beyond the keep
// count and returns the number deleted. This implements the retention cap on
// dashboard history length.
func (r *BenchmarkEntries) RemoveOldest(ctx context.Context, project, suite string, keep int) (int, error) {
	if r.env == nil {
		return -1, errors.New("cannot remove with a nil environment")
	}
	if keep <= 0 {
		return 0, nil
	}

	search := createEntriesFindQuery(BenchmarkFindOptions{Project: project, Suite: suite})
	findOpts := options.Find().
		SetSort(bson.D{
			{Key: benchmarkEntryDateKey, Value: -1},
			{Key: benchmarkEntryIDKey, Value: -1},
		}).
		SetSkip(int64(keep)).
		SetProjection(bson.M{benchmarkEntryIDKey: 1})

	cursor, err := r.env.GetDB().Collection(benchmarkEntryCollection).Find(ctx, search, findOpts)
	if err != nil {
		return -1, errors.Wrap(err, "problem finding entries to prune")
	}

	ids := []string{}
	doc := struct {
		ID string `bson:"_id"`
	}{}
	for cursor.Next(ctx) {
		if err = cursor.Decode(&doc); err != nil {
			return -1, errors.Wrap(err, "problem decoding entry id")
		}
		ids = append(ids, doc.ID)
	}
	if err = cursor.Err(); err != nil {
		return -1, errors.Wrap(err, "problem iterating entries to prune")
	}
	if len(ids) == 0 {
		return 0, nil
	}

	deleteResult, err := r.env.GetDB().Collection(benchmarkEntryCollection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return -1, errors.Wrapf(err, "problem pruning benchmark entries for suite %s/%s", project, suite)
	}

	grip.Info(message.Fields{
		"collection": benchmarkEntryCollection,
		"project":    project,
		"suite":      suite,
		"keep":       keep,
		"deleted":    deleteResult.DeletedCount,
		"op":         "prune oldest benchmark entries",
	})

	return int(deleteResult.DeletedCount), nil
}
