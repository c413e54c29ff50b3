package model

import (
	"context"

	"github.com/benchwatch/benchwatch"
	"github.com/benchwatch/benchwatch/util"
	"github.com/mongodb/anser/bsonutil"
	"github.com/mongodb/anser/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	configurationCollection = "configuration"
	benchwatchConfigID      = "benchwatch-system-configuration"
)

// BenchwatchConfig is the application level configuration document, stored in
// the database under a fixed ID so that all service processes share it.
type BenchwatchConfig struct {
	ID        string           `bson:"_id" json:"id" yaml:"id"`
	Flags     OperationalFlags `bson:"flags" json:"flags" yaml:"flags"`
	Slack     SlackConfig      `bson:"slack" json:"slack" yaml:"slack"`
	Dashboard DashboardConfig  `bson:"dashboard" json:"dashboard" yaml:"dashboard"`

	populated bool
	env       benchwatch.Environment
}

var (
	benchwatchConfigIDKey        = bsonutil.MustHaveTag(BenchwatchConfig{}, "ID")
	benchwatchConfigFlagsKey     = bsonutil.MustHaveTag(BenchwatchConfig{}, "Flags")
	benchwatchConfigSlackKey     = bsonutil.MustHaveTag(BenchwatchConfig{}, "Slack")
	benchwatchConfigDashboardKey = bsonutil.MustHaveTag(BenchwatchConfig{}, "Dashboard")
)

// SlackConfig holds the settings for sending regression alert notifications
// to Slack.
type SlackConfig struct {
	Options *send.SlackOptions `bson:"options" json:"options" yaml:"options"`
	Token   string             `bson:"token" json:"token" yaml:"token"`
	Level   string             `bson:"level" json:"level" yaml:"level"`
}

var (
	slackConfigOptionsKey = bsonutil.MustHaveTag(SlackConfig{}, "Options")
	slackConfigTokenKey   = bsonutil.MustHaveTag(SlackConfig{}, "Token")
	slackConfigLevelKey   = bsonutil.MustHaveTag(SlackConfig{}, "Level")
)

// DashboardConfig holds the settings for publishing rendered dashboard
// snapshots to blob storage.
type DashboardConfig struct {
	Type      PailType `bson:"type" json:"type" yaml:"type"`
	Bucket    string   `bson:"bucket" json:"bucket" yaml:"bucket"`
	Prefix    string   `bson:"prefix" json:"prefix" yaml:"prefix"`
	AWSKey    string   `bson:"aws_key" json:"aws_key" yaml:"aws_key"`
	AWSSecret string   `bson:"aws_secret" json:"aws_secret" yaml:"aws_secret"`
}

var (
	dashboardConfigTypeKey   = bsonutil.MustHaveTag(DashboardConfig{}, "Type")
	dashboardConfigBucketKey = bsonutil.MustHaveTag(DashboardConfig{}, "Bucket")
	dashboardConfigPrefixKey = bsonutil.MustHaveTag(DashboardConfig{}, "Prefix")
)

// NewBenchwatchConfig constructs an unpopulated configuration with the given
// environment attached.
func NewBenchwatchConfig(env benchwatch.Environment) *BenchwatchConfig {
	return &BenchwatchConfig{
		ID:  benchwatchConfigID,
		env: env,
	}
}

// LoadBenchwatchConfig parses an application configuration from a yaml file
// on disk.
func LoadBenchwatchConfig(file string) (*BenchwatchConfig, error) {
	newConfig := &BenchwatchConfig{}

	if err := util.ReadFileYAML(file, newConfig); err != nil {
		return nil, errors.WithStack(err)
	}

	newConfig.ID = benchwatchConfigID
	newConfig.populated = true

	return newConfig, nil
}

// Setup sets the environment for the configuration.
func (c *BenchwatchConfig) Setup(env benchwatch.Environment) { c.env = env }

// IsNil returns if the configuration is populated or not.
func (c *BenchwatchConfig) IsNil() bool { return !c.populated }

// Find searches the database for the application configuration document. The
// environment should not be nil.
func (c *BenchwatchConfig) Find(ctx context.Context) error {
	if c.env == nil {
		return errors.New("cannot find with a nil environment")
	}

	c.populated = false
	err := c.env.GetDB().Collection(configurationCollection).FindOne(ctx, bson.M{"_id": benchwatchConfigID}).Decode(c)
	if db.ResultsNotFound(err) {
		return errors.New("could not find application configuration in the database")
	} else if err != nil {
		return errors.Wrap(err, "problem finding application configuration")
	}

	c.Flags.env = c.env
	c.populated = true

	return nil
}

// SetDashboard upserts the dashboard subdocument of the stored application
// configuration. The environment should not be nil.
func (c *BenchwatchConfig) SetDashboard(ctx context.Context, dashboard DashboardConfig) error {
	if c.env == nil {
		return errors.New("cannot set the dashboard configuration with a nil environment")
	}

	_, err := c.env.GetDB().Collection(configurationCollection).UpdateOne(
		ctx,
		bson.M{"_id": benchwatchConfigID},
		bson.M{"$set": bson.M{benchwatchConfigDashboardKey: dashboard}},
		options.Update().SetUpsert(true),
	)
	if err == nil {
		c.Dashboard = dashboard
	}

	return errors.Wrap(err, "problem setting dashboard configuration")
}

// Save upserts the application configuration document. The configuration
// should be populated and the environment should not be nil.
func (c *BenchwatchConfig) Save(ctx context.Context) error {
	if !c.populated {
		return errors.New("cannot save unpopulated application configuration")
	}
	if c.env == nil {
		return errors.New("cannot save with a nil environment")
	}

	c.ID = benchwatchConfigID

	updateResult, err := c.env.GetDB().Collection(configurationCollection).ReplaceOne(
		ctx,
		bson.M{"_id": benchwatchConfigID},
		c,
		options.Replace().SetUpsert(true),
	)
	grip.DebugWhen(err == nil, message.Fields{
		"collection":   configurationCollection,
		"id":           benchwatchConfigID,
		"updateResult": updateResult,
		"op":           "save application configuration",
	})

	return errors.Wrap(err, "problem saving application configuration")
}
