package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/benchwatch/benchwatch"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// The file names the chart frontend loads. The data.js form assigns the
// document to a global so it can be loaded with a plain script tag.
const (
	DashboardScriptName = "data.js"
	DashboardDataName   = "data.json"

	dashboardWindowAssignment = "window.BENCHMARK_DATA = "
)

// DashboardData is the document the client-side chart renderer consumes.
// The field names are the fixed third-party contract and are not
// negotiable.
type DashboardData struct {
	LastUpdate int64                       `json:"lastUpdate"`
	RepoURL    string                      `json:"repoUrl"`
	Entries    map[string][]DashboardEntry `json:"entries"`
}

// DashboardEntry is the wire form of one benchmark entry in the dashboard
// document.
type DashboardEntry struct {
	Commit  CommitInfo    `json:"commit"`
	Date    int64         `json:"date"`
	Tool    string        `json:"tool"`
	Benches []BenchSample `json:"benches"`
}

// BuildDashboard assembles the dashboard document for the given suite from
// the stored benchmark entries, ascending by date. Unknown suites are an
// error rather than an empty document.
func BuildDashboard(ctx context.Context, env benchwatch.Environment, project, suite string) (*DashboardData, error) {
	s := &BenchmarkSuite{Project: project, Suite: suite}
	s.Setup(env)
	if err := s.Find(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	entries := &BenchmarkEntries{}
	entries.Setup(env)
	if err := entries.Find(ctx, BenchmarkFindOptions{Project: project, Suite: suite}); err != nil {
		return nil, errors.WithStack(err)
	}

	data := &DashboardData{
		LastUpdate: s.LastUpdate,
		RepoURL:    s.RepoURL,
		Entries:    map[string][]DashboardEntry{},
	}
	series := make([]DashboardEntry, 0, len(entries.Entries))
	for _, entry := range entries.Entries {
		series = append(series, DashboardEntry{
			Commit:  entry.Commit,
			Date:    entry.Date,
			Tool:    entry.Info.Tool,
			Benches: entry.Benches,
		})
	}
	data.Entries[suite] = series

	return data, nil
}

// RenderJSON returns the dashboard document as indented JSON.
func (d *DashboardData) RenderJSON() ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	return out, errors.Wrap(err, "problem rendering dashboard data")
}

// RenderJS returns the dashboard document as a javascript assignment to the
// global the chart renderer reads.
func (d *DashboardData) RenderJS() ([]byte, error) {
	out, err := d.RenderJSON()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	js := make([]byte, 0, len(dashboardWindowAssignment)+len(out)+1)
	js = append(js, []byte(dashboardWindowAssignment)...)
	js = append(js, out...)
	js = append(js, '\n')

	return js, nil
}

// PublishDashboard renders the dashboard document for the given suite and
// writes the data.js and data.json snapshots to the bucket named in the
// application configuration, so a static dashboard can be served straight
// from blob storage.
func PublishDashboard(ctx context.Context, env benchwatch.Environment, project, suite string) error {
	conf := NewBenchwatchConfig(env)
	if err := conf.Find(ctx); err != nil {
		return errors.Wrap(err, "problem getting application configuration")
	}
	if conf.Dashboard.Bucket == "" {
		return errors.New("no dashboard bucket configured")
	}

	data, err := BuildDashboard(ctx, env, project, suite)
	if err != nil {
		return errors.WithStack(err)
	}

	prefix := conf.Dashboard.Prefix
	if prefix == "" {
		prefix = fmt.Sprintf("%s/%s", project, suite)
	} else {
		prefix = fmt.Sprintf("%s/%s/%s", prefix, project, suite)
	}

	bucket, err := conf.Dashboard.Type.Create(ctx, conf.Dashboard, conf.Dashboard.Bucket, prefix)
	if err != nil {
		return errors.Wrap(err, "problem creating dashboard bucket")
	}

	js, err := data.RenderJS()
	if err != nil {
		return errors.WithStack(err)
	}
	if err = bucket.Put(ctx, DashboardScriptName, bytes.NewReader(js)); err != nil {
		return errors.Wrap(err, "problem uploading dashboard script")
	}

	raw, err := data.RenderJSON()
	if err != nil {
		return errors.WithStack(err)
	}
	if err = bucket.Put(ctx, DashboardDataName, bytes.NewReader(raw)); err != nil {
		return errors.Wrap(err, "problem uploading dashboard data")
	}

	grip.Info(message.Fields{
		"message": "published dashboard snapshot",
		"project": project,
		"suite":   suite,
		"bucket":  conf.Dashboard.Bucket,
		"prefix":  prefix,
		"entries": len(data.Entries[suite]),
	})

	return nil
}
