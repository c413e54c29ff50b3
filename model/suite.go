package model

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"time"

	"github.com/benchwatch/benchwatch"
	"github.com/benchwatch/benchwatch/util"
	"github.com/mongodb/anser/bsonutil"
	"github.com/mongodb/anser/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const benchmarkSuiteCollection = "benchmark_suites"

// Default alert threshold, matching the reference dashboard tooling: a
// sample regresses when it is worse than twice the previous value.
const defaultAlertThreshold = 2.0

// BenchmarkSuite tracks the metadata of one named series of benchmark
// entries: the dashboard groups entries under entries[<suite name>], and the
// suite document carries the bookkeeping and policy for that series.
type BenchmarkSuite struct {
	ID         string      `bson:"_id,omitempty"`
	Project    string      `bson:"project,omitempty"`
	Suite      string      `bson:"suite,omitempty"`
	RepoURL    string      `bson:"repo_url,omitempty"`
	EntryCount int         `bson:"entry_count"`
	LastUpdate int64       `bson:"last_update"`
	Policy     SuitePolicy `bson:"policy"`

	env       benchwatch.Environment
	populated bool
}

var (
	benchmarkSuiteIDKey         = bsonutil.MustHaveTag(BenchmarkSuite{}, "ID")
	benchmarkSuiteProjectKey    = bsonutil.MustHaveTag(BenchmarkSuite{}, "Project")
	benchmarkSuiteSuiteKey      = bsonutil.MustHaveTag(BenchmarkSuite{}, "Suite")
	benchmarkSuiteRepoURLKey    = bsonutil.MustHaveTag(BenchmarkSuite{}, "RepoURL")
	benchmarkSuiteEntryCountKey = bsonutil.MustHaveTag(BenchmarkSuite{}, "EntryCount")
	benchmarkSuiteLastUpdateKey = bsonutil.MustHaveTag(BenchmarkSuite{}, "LastUpdate")
	benchmarkSuitePolicyKey     = bsonutil.MustHaveTag(BenchmarkSuite{}, "Policy")
)

// SuitePolicy holds the retention and regression alerting configuration of a
// suite.
type SuitePolicy struct {
	// MaxEntries caps the suite history length; the oldest entries
	// beyond the cap are pruned. Zero or negative means unlimited.
	MaxEntries int `bson:"max_entries" json:"max_entries" yaml:"max_entries"`
	// AlertThreshold is the ratio of the current to the previous value
	// beyond which a regression alert is recorded.
	AlertThreshold float64 `bson:"alert_threshold" json:"alert_threshold" yaml:"alert_threshold"`
	// NotifyOnAlert enables sending a notification for each recorded
	// alert, using the notification settings of the application
	// configuration.
	NotifyOnAlert bool `bson:"notify_on_alert" json:"notify_on_alert" yaml:"notify_on_alert"`
	// BiggerIsBetter names the benchmarks for which a larger value is an
	// improvement rather than a regression (e.g. throughput).
	BiggerIsBetter []string `bson:"bigger_is_better,omitempty" json:"bigger_is_better,omitempty" yaml:"bigger_is_better,omitempty"`
}

var (
	suitePolicyMaxEntriesKey     = bsonutil.MustHaveTag(SuitePolicy{}, "MaxEntries")
	suitePolicyAlertThresholdKey = bsonutil.MustHaveTag(SuitePolicy{}, "AlertThreshold")
	suitePolicyNotifyOnAlertKey  = bsonutil.MustHaveTag(SuitePolicy{}, "NotifyOnAlert")
	suitePolicyBiggerIsBetterKey = bsonutil.MustHaveTag(SuitePolicy{}, "BiggerIsBetter")
)

// Threshold returns the configured alert threshold, falling back to the
// default when unset.
func (p SuitePolicy) Threshold() float64 {
	if p.AlertThreshold <= 0 {
		return defaultAlertThreshold
	}
	return p.AlertThreshold
}

// IsBiggerBetter returns whether a larger value is an improvement for the
// benchmark with the given name.
func (p SuitePolicy) IsBiggerBetter(name string) bool {
	for _, n := range p.BiggerIsBetter {
		if n == name {
			return true
		}
	}
	return false
}

// SuiteID creates a unique hash for a project/suite pair.
func SuiteID(project, suite string) string {
	hash := sha1.New()
	_, _ = io.WriteString(hash, project)
	_, _ = io.WriteString(hash, suite)
	return fmt.Sprintf("%x", hash.Sum(nil))
}

// Setup sets the environment for the benchmark suite. The environment is
// required for all database operations on BenchmarkSuite.
func (s *BenchmarkSuite) Setup(env benchwatch.Environment) { s.env = env }

// IsNil returns if the benchmark suite is populated or not.
func (s *BenchmarkSuite) IsNil() bool { return !s.populated }

// Find searches the database for the benchmark suite. The environment should
// not be nil. Either the ID or the project and suite names must be specified.
func (s *BenchmarkSuite) Find(ctx context.Context) error {
	if s.env == nil {
		return errors.New("cannot find with a nil environment")
	}

	if s.ID == "" {
		s.ID = SuiteID(s.Project, s.Suite)
	}

	s.populated = false
	err := s.env.GetDB().Collection(benchmarkSuiteCollection).FindOne(ctx, bson.M{"_id": s.ID}).Decode(s)
	if db.ResultsNotFound(err) {
		return errors.Errorf("could not find benchmark suite %s/%s in the database", s.Project, s.Suite)
	} else if err != nil {
		return errors.Wrapf(err, "problem finding benchmark suite %s/%s", s.Project, s.Suite)
	}

	s.populated = true

	return nil
}

/// RecordEntry upserts the suite bookkeeping for a newly appended entry:
// incrementing the entry count, advancing the last update time, and seeding
// the policy and repo url on first insert. The environment should not be
// nil.
func (s *BenchmarkSuite) RecordEntry(ctx context.Context, entry *BenchmarkEntry) error {
	if s.env == nil {
		return errors.New("cannot record an entry with a nil environment")
	}

	s.Project = entry.Info.Project
	s.Suite = entry.Info.Suite
	s.ID = SuiteID(s.Project, s.Suite)

	updateResult, err := s.env.GetDB().Collection(benchmarkSuiteCollection).UpdateOne(
		ctx,
		bson.M{"_id": s.ID},
		bson.M{
			"$inc": bson.M{benchmarkSuiteEntryCountKey: 1},
			"$set": bson.M{benchmarkSuiteLastUpdateKey: util.UnixMilli(time.Now())},
			"$setOnInsert": bson.M{
				benchmarkSuiteProjectKey: s.Project,
				benchmarkSuiteSuiteKey:   s.Suite,
				benchmarkSuiteRepoURLKey: entry.Commit.RepoURL(),
				benchmarkSuitePolicyKey: SuitePolicy{
					AlertThreshold: defaultAlertThreshold,
				},
			},
		},
		options.Update().SetUpsert(true),
	)
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   benchmarkSuiteCollection,
		"id":           s.ID,
		"project":      s.Project,
		"suite":        s.Suite,
		"updateResult": updateResult,
		"op":           "record benchmark entry in suite",
	})
	if err != nil {
		return errors.Wrapf(err, "problem recording entry in suite %s/%s", s.Project, s.Suite)
	}

	return errors.Wrap(s.Find(ctx), "problem refreshing suite after recording entry")
}

// RecordRemoval decrements the suite entry count by the given number of
// removed entries. The environment should not be nil.
func (s *BenchmarkSuite) RecordRemoval(ctx context.Context, removed int) error {
	if s.env == nil {
		return errors.New("cannot record a removal with a nil environment")
	}
	if removed <= 0 {
		return nil
	}

	if s.ID == "" {
		s.ID = SuiteID(s.Project, s.Suite)
	}

	updateResult, err := s.env.GetDB().Collection(benchmarkSuiteCollection).UpdateOne(
		ctx,
		bson.M{"_id": s.ID},
		bson.M{"$inc": bson.M{benchmarkSuiteEntryCountKey: -removed}},
	)
	if err == nil && updateResult.MatchedCount == 0 {
		err = errors.Errorf("could not find benchmark suite record with id %s in the database", s.ID)
	}

	return errors.Wrapf(err, "problem recording removal in suite %s/%s", s.Project, s.Suite)
}

// SetPolicy replaces the retention and alerting policy of the suite. The
// environment should not be nil.
func (s *BenchmarkSuite) SetPolicy(ctx context.Context, policy SuitePolicy) error {
	if s.env == nil {
		return errors.New("cannot set a policy with a nil environment")
	}

	if s.ID == "" {
		s.ID = SuiteID(s.Project, s.Suite)
	}

	updateResult, err := s.env.GetDB().Collection(benchmarkSuiteCollection).UpdateOne(
		ctx,
		bson.M{"_id": s.ID},
		bson.M{"$set": bson.M{benchmarkSuitePolicyKey: policy}},
	)
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   benchmarkSuiteCollection,
		"id":           s.ID,
		"project":      s.Project,
		"suite":        s.Suite,
		"policy":       fmt.Sprintf("%+v", policy),
		"updateResult": updateResult,
		"op":           "set suite policy",
	})
	if err == nil && updateResult.MatchedCount == 0 {
		err = errors.Errorf("could not find benchmark suite record with id %s in the database", s.ID)
	}
	if err == nil {
		s.Policy = policy
	}

	return errors.Wrapf(err, "problem setting policy for suite %s/%s", s.Project, s.Suite)
}

// BenchmarkSuites describes a set of benchmark suites, typically all suites
// of one project.
type BenchmarkSuites struct {
	Suites []BenchmarkSuite `bson:"suites"`

	env       benchwatch.Environment
	populated bool
}

// Setup sets the environment for the benchmark suites.
func (r *BenchmarkSuites) Setup(env benchwatch.Environment) { r.env = env }

// IsNil returns if the benchmark suites are populated or not.
func (r *BenchmarkSuites) IsNil() bool { return !r.populated }

// FindAll returns every known suite, sorted by project and suite name. Used
// by the background pruning and publishing sweeps.
func (r *BenchmarkSuites) FindAll(ctx context.Context) error {
	if r.env == nil {
		return errors.New("cannot find with a nil environment")
	}

	findOpts := options.Find().SetSort(bson.D{
		{Key: benchmarkSuiteProjectKey, Value: 1},
		{Key: benchmarkSuiteSuiteKey, Value: 1},
	})

	r.populated = false
	cursor, err := r.env.GetDB().Collection(benchmarkSuiteCollection).Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return errors.Wrap(err, "problem finding benchmark suites")
	}
	if err = cursor.All(ctx, &r.Suites); err != nil {
		return errors.Wrap(err, "problem decoding benchmark suites")
	}
	r.populated = true

	return nil
}

// FindByProject returns all suites of the given project, sorted by suite
// name.
func (r *BenchmarkSuites) FindByProject(ctx context.Context, project string) error {
	if r.env == nil {
		return errors.New("cannot find with a nil environment")
	}

	findOpts := options.Find().SetSort(bson.D{{Key: benchmarkSuiteSuiteKey, Value: 1}})

	r.populated = false
	cursor, err := r.env.GetDB().Collection(benchmarkSuiteCollection).Find(ctx, bson.M{benchmarkSuiteProjectKey: project}, findOpts)
	if err != nil {
		return errors.Wrapf(err, "problem finding benchmark suites for project %s", project)
	}
	if err = cursor.All(ctx, &r.Suites); err != nil {
		return errors.Wrap(err, "problem decoding benchmark suites")
	}
	r.populated = true

	return nil
}
