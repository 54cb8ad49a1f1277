// Package spot implements a minimal client for the Spot elastigroup API,
// covering the calls the CLI needs: group listing and lookup, capacity
// updates, rolls, scaling adjustments and process or scaling policy
// suspension.
package spot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	multierror "github.com/hashicorp/go-multierror"

	errHelper "github.com/supersonicads/spotcli/sdk/helper/error"
)

const (
	// DefaultAddress is the public endpoint of the Spot API.
	DefaultAddress = "https://api.spotinst.io"

	// DefaultRateLimit is the number of requests per second the client
	// allows before throttling locally.
	DefaultRateLimit = 20

	// groupPathPrefix is the base path of the elastigroup endpoints.
	groupPathPrefix = "/aws/ec2/group"
)

// Config holds the values required to instantiate a Client.
type Config struct {

	// Address is the base URL of the Spot API. Defaults to DefaultAddress.
	Address string

	// Account is the Spot account the client operates on, e.g. act-1a2b3c4d.
	// It is sent as a query parameter on every request.
	Account string

	// Token is the personal access token used to authenticate requests.
	Token string

	// RateLimit caps outbound requests per second. Zero picks
	// DefaultRateLimit, -1 disables throttling.
	RateLimit int

	// HTTPClient overrides the default instrumented client when non-nil,
	// which is useful for testing.
	HTTPClient *http.Client

	// Logger is the logger to use. Defaults to a null logger.
	Logger hclog.Logger
}

// Client is a Spot API client scoped to a single account.
type Client struct {
	address string
	account string
	token   string
	http    *http.Client
	logger  hclog.Logger
}

// NewClient validates the configuration and builds a ready to use client.
func NewClient(cfg *Config) (*Client, error) {

	var mErr *multierror.Error
	if cfg.Account == "" {
		mErr = multierror.Append(mErr, errors.New("spot account is required"))
	}
	if cfg.Token == "" {
		mErr = multierror.Append(mErr, errors.New("spot token is required"))
	}
	if err := errHelper.FormattedMultiError(mErr); err != nil {
		return nil, fmt.Errorf("invalid spot configuration: %v", err)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultAddress
	}
	address = strings.TrimSuffix(address, "/")

	rateLimit := cfg.RateLimit
	if rateLimit == 0 {
		rateLimit = DefaultRateLimit
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(rateLimit)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Client{
		address: address,
		account: cfg.Account,
		token:   cfg.Token,
		http:    httpClient,
		logger:  logger.Named("spot"),
	}, nil
}

// ListGroups returns every elastigroup visible to the account.
func (c *Client) ListGroups(ctx context.Context) ([]*Group, error) {
	items, err := c.do(ctx, http.MethodGet, groupPathPrefix, nil, nil)
	if err != nil {
		return nil, err
	}

	groups := make([]*Group, 0, len(items))
	for _, item := range items {
		group := &Group{}
		if err := json.Unmarshal(item, group); err != nil {
			return nil, fmt.Errorf("failed to decode group listing: %v", err)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// GetGroup returns the configuration of a single elastigroup.
func (c *Client) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	items, err := c.do(ctx, http.MethodGet, c.groupPath(groupID), nil, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("group %s not found", groupID)}
	}

	group := &Group{}
	if err := json.Unmarshal(items[0], group); err != nil {
		return nil, fmt.Errorf("failed to decode group %s: %v", groupID, err)
	}
	return group, nil
}

// UpdateCapacity sends the provided capacity fields to the API. Fields left
// nil keep their remote value; the remote performs range validation.
func (c *Client) UpdateCapacity(ctx context.Context, groupID string, capacity *Capacity) error {
	body := map[string]*Capacity{"capacity": capacity}
	_, err := c.do(ctx, http.MethodPut, c.groupPath(groupID, "capacity"), nil, body)
	return err
}

// Roll starts a batched redeployment of the group and returns the created
// deployment record.
func (c *Client) Roll(ctx context.Context, groupID string, spec *RollSpec) (*RollStatus, error) {
	items, err := c.do(ctx, http.MethodPut, c.groupPath(groupID, "roll"), nil, spec)
	if err != nil {
		return nil, err
	}

	status := &RollStatus{}
	if len(items) > 0 {
		if err := json.Unmarshal(items[0], status); err != nil {
			return nil, fmt.Errorf("failed to decode roll status: %v", err)
		}
	}
	return status, nil
}

// SuspendProcesses stops the named background processes on the group.
func (c *Client) SuspendProcesses(ctx context.Context, groupID string, processes []string) error {
	body := map[string][]string{"processes": processes}
	_, err := c.do(ctx, http.MethodPost, c.groupPath(groupID, "suspension"), nil, body)
	return err
}

// ResumeProcesses removes the suspension of the named background processes.
func (c *Client) ResumeProcesses(ctx context.Context, groupID string, processes []string) error {
	body := map[string][]string{"processes": processes}
	_, err := c.do(ctx, http.MethodDelete, c.groupPath(groupID, "suspension"), nil, body)
	return err
}

// ListSuspendedProcesses returns the names of the currently suspended
// background processes of the group.
func (c *Client) ListSuspendedProcesses(ctx context.Context, groupID string) ([]string, error) {
	items, err := c.do(ctx, http.MethodGet, c.groupPath(groupID, "suspension"), nil, nil)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		suspension := processSuspension{}
		if err := json.Unmarshal(item, &suspension); err != nil {
			return nil, fmt.Errorf("failed to decode process suspension: %v", err)
		}
		names = append(names, suspension.Name)
	}
	return names, nil
}

// SuspendScalingPolicy stops a single scaling policy, addressed by name.
func (c *Client) SuspendScalingPolicy(ctx context.Context, groupID, policyName string) error {
	body := map[string]string{"policyName": policyName}
	_, err := c.do(ctx, http.MethodPost, c.groupPath(groupID, "scalingPolicy", "suspension"), nil, body)
	return err
}

// ResumeScalingPolicy removes the suspension of a single scaling policy.
func (c *Client) ResumeScalingPolicy(ctx context.Context, groupID, policyName string) error {
	body := map[string]string{"policyName": policyName}
	_, err := c.do(ctx, http.MethodDelete, c.groupPath(groupID, "scalingPolicy", "suspension"), nil, body)
	return err
}

// ListSuspendedScalingPolicies returns the names of the currently suspended
// scaling policies of the group.
func (c *Client) ListSuspendedScalingPolicies(ctx context.Context, groupID string) ([]string, error) {
	items, err := c.do(ctx, http.MethodGet, c.groupPath(groupID, "scalingPolicy", "suspension"), nil, nil)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		suspension := policySuspension{}
		if err := json.Unmarshal(item, &suspension); err != nil {
			return nil, fmt.Errorf("failed to decode policy suspension: %v", err)
		}
		names = append(names, suspension.PolicyName)
	}
	return names, nil
}

// ScaleUp grows the group by adjustment instances.
func (c *Client) ScaleUp(ctx context.Context, groupID string, adjustment int) error {
	query := url.Values{"adjustment": []string{strconv.Itoa(adjustment)}}
	_, err := c.do(ctx, http.MethodPut, c.groupPath(groupID, "scale", "up"), query, nil)
	return err
}

// ScaleDown shrinks the group by adjustment instances.
func (c *Client) ScaleDown(ctx context.Context, groupID string, adjustment int) error {
	query := url.Values{"adjustment": []string{strconv.Itoa(adjustment)}}
	_, err := c.do(ctx, http.MethodPut, c.groupPath(groupID, "scale", "down"), query, nil)
	return err
}

func (c *Client) groupPath(groupID string, elem ...string) string {
	return strings.Join(append([]string{groupPathPrefix, groupID}, elem...), "/")
}

// envelope is the wrapper the Spot API puts around every response payload.
type envelope struct {
	Response struct {
		Status struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"status"`
		Errors []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
		Items []json.RawMessage `json:"items"`
	} `json:"response"`
}

// do performs a single API call and unwraps the response envelope, returning
// the raw items for the caller to decode.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, reqBody interface{}) ([]json.RawMessage, error) {

	if query == nil {
		query = url.Values{}
	}
	query.Set("accountId", c.account)

	var body io.Reader
	if reqBody != nil {
		buf, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %v", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.address+path, body)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Trace("calling spot api", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call spot api: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read spot api response: %v", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeError(resp.StatusCode, raw)
	}

	if len(raw) == 0 {
		return nil, nil
	}

	env := envelope{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode spot api response: %v", err)
	}
	return env.Response.Items, nil
}

// Error is a failure response from the Spot API.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("spot api error (status %d, code %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("spot api error (status %d): %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status of the failed call.
func (e *Error) StatusCode() int { return e.Status }

func (e *Error) Unwrap() error { return nil }

// decodeError lifts the failure payload out of the response envelope, falling
// back to the raw body when the envelope cannot be parsed.
func decodeError(status int, raw []byte) *Error {
	apiErr := &Error{Status: status, Message: strings.TrimSpace(string(raw))}

	env := envelope{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return apiErr
	}

	if env.Response.Status.Message != "" {
		apiErr.Message = env.Response.Status.Message
	}
	if len(env.Response.Errors) > 0 {
		apiErr.Code = env.Response.Errors[0].Code
		apiErr.Message = env.Response.Errors[0].Message
	}
	return apiErr
}
