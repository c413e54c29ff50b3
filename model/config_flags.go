package model

import (
	"context"

	"github.com/benchwatch/benchwatch"
	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// OperationalFlags are runtime feature flags that toggle background
// processing without a redeploy.
type OperationalFlags struct {
	DisableRegressionChecks         bool `bson:"disable_regression_checks" json:"disable_regression_checks" yaml:"disable_regression_checks"`
	DisableDashboardPublish         bool `bson:"disable_dashboard_publish" json:"disable_dashboard_publish" yaml:"disable_dashboard_publish"`
	DisableSuitePruning             bool `bson:"disable_suite_pruning" json:"disable_suite_pruning" yaml:"disable_suite_pruning"`
	DisableInternalMetricsReporting bool `bson:"disable_internal_metrics_reporting" json:"disable_internal_metrics_reporting" yaml:"disable_internal_metrics_reporting"`

	env benchwatch.Environment
}

var (
	opsFlagsDisableRegressionChecks         = bsonutil.MustHaveTag(OperationalFlags{}, "DisableRegressionChecks")
	opsFlagsDisableDashboardPublish         = bsonutil.MustHaveTag(OperationalFlags{}, "DisableDashboardPublish")
	opsFlagsDisableSuitePruning             = bsonutil.MustHaveTag(OperationalFlags{}, "DisableSuitePruning")
	opsFlagsDisableInternalMetricsReporting = bsonutil.MustHaveTag(OperationalFlags{}, "DisableInternalMetricsReporting")
)

func (f *OperationalFlags) findAndSet(ctx context.Context, name string, v bool) error {
	switch name {
	case opsFlagsDisableRegressionChecks:
		return f.SetDisableRegressionChecks(ctx, v)
	case opsFlagsDisableDashboardPublish:
		return f.SetDisableDashboardPublish(ctx, v)
	case opsFlagsDisableSuitePruning:
		return f.SetDisableSuitePruning(ctx, v)
	case opsFlagsDisableInternalMetricsReporting:
		return f.SetDisableInternalMetricsReporting(ctx, v)
	default:
		return errors.Errorf("%s is not a known feature flag name", name)
	}
}

func (f *OperationalFlags) SetTrue(ctx context.Context, name string) error {
	return errors.WithStack(f.findAndSet(ctx, name, true))
}

func (f *OperationalFlags) SetFalse(ctx context.Context, name string) error {
	return errors.WithStack(f.findAndSet(ctx, name, false))
}

func (f *OperationalFlags) SetDisableRegressionChecks(ctx context.Context, v bool) error {
	if err := f.update(ctx, opsFlagsDisableRegressionChecks, v); err != nil {
		return errors.WithStack(err)
	}
	f.DisableRegressionChecks = v
	return nil
}

func (f *OperationalFlags) SetDisableDashboardPublish(ctx context.Context, v bool) error {
	if err := f.update(ctx, opsFlagsDisableDashboardPublish, v); err != nil {
		return errors.WithStack(err)
	}
	f.DisableDashboardPublish = v
	return nil
}

func (f *OperationalFlags) SetDisableSuitePruning(ctx context.Context, v bool) error {
	if err := f.update(ctx, opsFlagsDisableSuitePruning, v); err != nil {
		return errors.WithStack(err)
	}
	f.DisableSuitePruning = v
	return nil
}

func (f *OperationalFlags) SetDisableInternalMetricsReporting(ctx context.Context, v bool) error {
	if err := f.update(ctx, opsFlagsDisableInternalMetricsReporting, v); err != nil {
		return errors.WithStack(err)
	}
	f.DisableInternalMetricsReporting = v
	return nil
}

func (f *OperationalFlags) update(ctx context.Context, key string, value bool) error {
	if f.env == nil {
		return errors.New("cannot set a flag with a nil environment")
	}

	key = bsonutil.GetDottedKeyName(benchwatchConfigFlagsKey, key)
	_, err := f.env.GetDB().Collection(configurationCollection).UpdateOne(
		ctx,
		bson.M{"_id": benchwatchConfigID},
		bson.M{"$set": bson.M{key: value}},
	)

	return errors.Wrapf(err, "problem setting %s to %t", key, value)
}
