package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/benchwatch/benchwatch/rest/model"
	"github.com/pkg/errors"
)

const (
	defaultClientPort int = 3000
	maxClientPort         = 65535
)

// Client provides an interface for interacting with a remote benchwatch
// service.
type Client struct {
	host   string
	prefix string
	port   int
	client *http.Client
}

// NewClient takes host, port, and URI prefix information and constructs a
// new Client.
func NewClient(host string, port int, prefix string) (*Client, error) {
	c := &Client{client: &http.Client{}}

	return c.initClient(host, port, prefix)
}

// NewClientFromExisting takes an existing http.Client object and produces a
// new Client object.
func NewClientFromExisting(client *http.Client, host string, port int, prefix string) (*Client, error) {
	if client == nil {
		return nil, errors.New("must use a non-nil existing client")
	}

	c := &Client{client: client}

	return c.initClient(host, port, prefix)
}

func (c *Client) initClient(host string, port int, prefix string) (*Client, error) {
	var err error

	if err = c.SetHost(host); err != nil {
		return nil, err
	}

	if err = c.SetPort(port); err != nil {
		return nil, err
	}

	if err = c.SetPrefix(prefix); err != nil {
		return nil, err
	}

	return c, nil
}

// Client returns a pointer to embedded http.Client object.
func (c *Client) Client() *http.Client {
	return c.client
}

// SetHost allows callers to change the hostname (including leading
// "http(s)") for the Client. Returns an error if the specified host does not
// start with "http".
func (c *Client) SetHost(h string) error {
	if !strings.HasPrefix(h, "http") {
		return errors.Errorf("host '%s' is malformed. must start with 'http'", h)
	}

	c.host = strings.TrimSuffix(h, "/")

	return nil
}

// Host returns the current host.
func (c *Client) Host() string {
	return c.host
}

// SetPort allows callers to change the port used for the client. If the port
// is invalid, returns an error and sets the port to the default value.
func (c *Client) SetPort(p int) error {
	if p <= 0 || p >= maxClientPort {
		c.port = defaultClientPort
		return errors.Errorf("cannot set the port to %d, using %d instead", p, defaultClientPort)
	}

	c.port = p
	return nil
}

// Port returns the current port value for the Client.
func (c *Client) Port() int {
	return c.port
}

// SetPrefix allows callers to modify the prefix for this client.
func (c *Client) SetPrefix(p string) error {
	c.prefix = strings.Trim(p, "/")
	return nil
}

// Prefix accesses the prefix for the client, the part of the URI between the
// end-point and the hostname of the API.
func (c *Client) Prefix() string {
	return c.prefix
}

func (c *Client) getURL(endpoint string) string {
	var url []string

	if c.port == 80 || c.port == 0 {
		url = append(url, c.host)
	} else {
		url = append(url, fmt.Sprintf("%s:%d", c.host, c.port))
	}

	if c.prefix != "" {
		url = append(url, c.prefix)
	}

	if endpoint = strings.Trim(endpoint, "/"); endpoint != "" {
		url = append(url, endpoint)
	}

	return strings.Join(url, "/")
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "problem marshalling request body")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.getURL(endpoint), body)
	if err != nil {
		return errors.Wrap(err, "problem building request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "problem with request to %s", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return errors.Errorf("request to %s returned status %s: %s", endpoint, resp.Status, string(payload))
	}

	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrapf(err, "problem decoding response from %s", endpoint)
		}
	}

	return nil
}

// AppendBenchmarkEntry posts a new benchmark entry and returns the stored
// form, including its generated id.
func (c *Client) AppendBenchmarkEntry(ctx context.Context, entry *model.APIBenchmarkEntry) (*model.APIBenchmarkEntry, error) {
	out := &model.APIBenchmarkEntry{}
	if err := c.doRequest(ctx, http.MethodPost, "/v1/benchmarks", entry, out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// GetBenchmarkEntry fetches the benchmark entry with the given id.
func (c *Client) GetBenchmarkEntry(ctx context.Context, id string) (*model.APIBenchmarkEntry, error) {
	out := &model.APIBenchmarkEntry{}
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/benchmarks/%s", id), nil, out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// RemoveBenchmarkEntry removes the benchmark entry with the given id.
func (c *Client) RemoveBenchmarkEntry(ctx context.Context, id string) error {
	return errors.WithStack(c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/v1/benchmarks/%s", id), nil, nil))
}

// GetSuiteHistory fetches the history of the given suite, ascending by
// date.
func (c *Client) GetSuiteHistory(ctx context.Context, project, suite string) ([]model.APIBenchmarkEntry, error) {
	out := []model.APIBenchmarkEntry{}
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/benchmarks/suite/%s/%s", project, suite), nil, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// GetLatestBenchmarkEntry fetches the newest entry of the given suite.
func (c *Client) GetLatestBenchmarkEntry(ctx context.Context, project, suite string) (*model.APIBenchmarkEntry, error) {
	out := &model.APIBenchmarkEntry{}
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/benchmarks/suite/%s/%s/latest", project, suite), nil, out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// GetSuites fetches the suite metadata of the given project.
func (c *Client) GetSuites(ctx context.Context, project string) ([]model.APIBenchmarkSuite, error) {
	out := []model.APIBenchmarkSuite{}
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/suites/%s", project), nil, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// SetSuitePolicy replaces the retention and alerting policy of the given
// suite.
func (c *Client) SetSuitePolicy(ctx context.Context, project, suite string, policy model.APISuitePolicy) (*model.APIBenchmarkSuite, error) {
	out := &model.APIBenchmarkSuite{}
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/suites/%s/%s/policy", project, suite), policy, out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// GetRegressionAlerts fetches the recorded regression alerts of the given
// suite, newest first.
func (c *Client) GetRegressionAlerts(ctx context.Context, project, suite string) ([]model.APIRegressionAlert, error) {
	out := []model.APIRegressionAlert{}
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/alerts/%s/%s", project, suite), nil, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// GetDashboardScript fetches the raw data.js document of the given suite.
func (c *Client) GetDashboardScript(ctx context.Context, project, suite string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.getURL(fmt.Sprintf("/v1/dashboard/%s/%s/data.js", project, suite)), nil)
	if err != nil {
		return nil, errors.Wrap(err, "problem building request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "problem fetching dashboard script")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching dashboard script returned status %s", resp.Status)
	}

	out, err := io.ReadAll(resp.Body)
	return out, errors.Wrap(err, "problem reading dashboard script")
}

// EnableFeatureFlag sets the named feature flag on the remote service and
// returns the resulting state.
func (c *Client) EnableFeatureFlag(ctx context.Context, flag string) (bool, error) {
	out := serviceFlagResponse{}
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/admin/flags/%s/enabled", flag), nil, &out); err != nil {
		return out.State, errors.WithStack(err)
	}
	if out.Error != "" {
		return out.State, errors.New(out.Error)
	}
	return out.State, nil
}

// DisableFeatureFlag unsets the named feature flag on the remote service and
// returns the resulting state.
func (c *Client) DisableFeatureFlag(ctx context.Context, flag string) (bool, error) {
	out := serviceFlagResponse{}
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/admin/flags/%s/disabled", flag), nil, &out); err != nil {
		return out.State, errors.WithStack(err)
	}
	if out.Error != "" {
		return out.State, errors.New(out.Error)
	}
	return out.State, nil
}

// GetStatus fetches the service status.
func (c *Client) GetStatus(ctx context.Context) (*StatusResponse, error) {
	out := &StatusResponse{}
	if err := c.doRequest(ctx, http.MethodGet, "/v1/status", nil, out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}
