package model

import (
	"context"
	"crypto/sha1"
	"fmt"
	"hash"
	"io"
	"time"

	"github.com/benchwatch/benchwatch"
	"github.com/mongodb/anser/bsonutil"
	"github.com/mongodb/anser/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const regressionAlertCollection = "regression_alerts"

// RegressionAlert records a benchmark sample that regressed past the suite
// alert threshold relative to the previous entry of the same suite.
type RegressionAlert struct {
	ID        string              `bson:"_id,omitempty"`
	Info      RegressionAlertInfo `bson:"info,omitempty"`
	Previous  float64             `bson:"previous"`
	Current   float64             `bson:"current"`
	Ratio     float64             `bson:"ratio"`
	Unit      string              `bson:"unit,omitempty"`
	CreatedAt time.Time           `bson:"created_at"`

	env       benchwatch.Environment
	populated bool
}

var (
	regressionAlertIDKey        = bsonutil.MustHaveTag(RegressionAlert{}, "ID")
	regressionAlertInfoKey      = bsonutil.MustHaveTag(RegressionAlert{}, "Info")
	regressionAlertPreviousKey  = bsonutil.MustHaveTag(RegressionAlert{}, "Previous")
	regressionAlertCurrentKey   = bsonutil.MustHaveTag(RegressionAlert{}, "Current")
	regressionAlertRatioKey     = bsonutil.MustHaveTag(RegressionAlert{}, "Ratio")
	regressionAlertCreatedAtKey = bsonutil.MustHaveTag(RegressionAlert{}, "CreatedAt")
)

// RegressionAlertInfo describes the information unique to a single
// regression alert.
type RegressionAlertInfo struct {
	Project        string `bson:"project,omitempty"`
	Suite          string `bson:"suite,omitempty"`
	CommitID       string `bson:"commit_id,omitempty"`
	PreviousCommit string `bson:"previous_commit,omitempty"`
	BenchName      string `bson:"bench_name,omitempty"`
	Schema         int    `bson:"schema,omitempty"`
}

var (
	regressionAlertInfoProjectKey   = bsonutil.MustHaveTag(RegressionAlertInfo{}, "Project")
	regressionAlertInfoSuiteKey     = bsonutil.MustHaveTag(RegressionAlertInfo{}, "Suite")
	regressionAlertInfoCommitIDKey  = bsonutil.MustHaveTag(RegressionAlertInfo{}, "CommitID")
	regressionAlertInfoBenchNameKey = bsonutil.MustHaveTag(RegressionAlertInfo{}, "BenchName")
)

// ID creates a unique hash for a regression alert.
func (id *RegressionAlertInfo) ID() string {
	var hash hash.Hash

	if id.Schema == 0 {
		hash = sha1.New()
		_, _ = io.WriteString(hash, id.Project)
		_, _ = io.WriteString(hash, id.Suite)
		_, _ = io.WriteString(hash, id.CommitID)
		_, _ = io.WriteString(hash, id.BenchName)
	} else {
		panic("unsupported schema")
	}

	return fmt.Sprintf("%x", hash.Sum(nil))
}

// CreateRegressionAlert is the entry point for recording a regression.
func CreateRegressionAlert(info RegressionAlertInfo, previous, current, ratio float64, unit string) *RegressionAlert {
	return &RegressionAlert{
		ID:        info.ID(),
		Info:      info,
		Previous:  previous,
		Current:   current,
		Ratio:     ratio,
		Unit:      unit,
		CreatedAt: time.Now(),
		populated: true,
	}
}

// Setup sets the environment for the regression alert.
func (a *RegressionAlert) Setup(env benchwatch.Environment) { a.env = env }

// IsNil returns if the regression alert is populated or not.
func (a *RegressionAlert) IsNil() bool { return !a.populated }

// Find searches the database for the regression alert. The environment
// should not be nil.
func (a *RegressionAlert) Find(ctx context.Context) error {
	if a.env == nil {
		return errors.New("cannot find with a nil environment")
	}

	if a.ID == "" {
		a.ID = a.Info.ID()
	}

	a.populated = false
	err := a.env.GetDB().Collection(regressionAlertCollection).FindOne(ctx, bson.M{"_id": a.ID}).Decode(a)
	if db.ResultsNotFound(err) {
		return errors.Errorf("could not find regression alert record with id %s in the database", a.ID)
	} else if err != nil {
		return errors.Wrapf(err, "problem finding regression alert with id %s", a.ID)
	}

	a.populated = true

	return nil
}

// SaveNew saves a new regression alert to the database. Re-running the
// regression check for the same commit is idempotent: an alert that already
// exists is left untouched. The environment should not be nil.
func (a *RegressionAlert) SaveNew(ctx context.Context) error {
	if !a.populated {
		return errors.New("cannot save unpopulated regression alert")
	}
	if a.env == nil {
		return errors.New("cannot save with a nil environment")
	}

	if a.ID == "" {
		a.ID = a.Info.ID()
	}

	insertResult, err := a.env.GetDB().Collection(regressionAlertCollection).InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   regressionAlertCollection,
		"id":           a.ID,
		"insertResult": insertResult,
		"project":      a.Info.Project,
		"suite":        a.Info.Suite,
		"bench":        a.Info.BenchName,
		"op":           "save new regression alert",
	})

	return errors.Wrapf(err, "problem saving new regression alert %s", a.ID)
}

// RegressionAlerts describes a set of regression alerts, typically those of
// one suite.
type RegressionAlerts struct {
	Alerts []RegressionAlert `bson:"alerts"`

	env       benchwatch.Environment
	populated bool
}

// Setup sets the environment for the regression alerts.
func (r *RegressionAlerts) Setup(env benchwatch.Environment) { r.env = env }

// IsNil returns if the regression alerts are populated or not.
func (r *RegressionAlerts) IsNil() bool { return !r.populated }

// Find returns the regression alerts of the given suite, newest first.
func (r *RegressionAlerts) Find(ctx context.Context, project, suite string, limit int) error {
	if r.env == nil {
		return errors.New("cannot find with a nil environment")
	}

	search := bson.M{
		bsonutil.GetDottedKeyName(regressionAlertInfoKey, regressionAlertInfoProjectKey): project,
		bsonutil.GetDottedKeyName(regressionAlertInfoKey, regressionAlertInfoSuiteKey):   suite,
	}
	findOpts := options.Find().SetSort(bson.D{{Key: regressionAlertCreatedAtKey, Value: -1}})
	if limit > 0 {
		findOpts = findOpts.SetLimit(int64(limit))
	}

	r.populated = false
	cursor, err := r.env.GetDB().Collection(regressionAlertCollection).Find(ctx, search, findOpts)
	if err != nil {
		return errors.Wrapf(err, "problem finding regression alerts for suite %s/%s", project, suite)
	}
	if err = cursor.All(ctx, &r.Alerts); err != nil {
		return errors.Wrap(err, "problem decoding regression alerts")
	}
	r.populated = true

	return nil
}
