package spot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supersonicads/spotcli/sdk/helper/ptr"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{
		Address:   srv.URL,
		Account:   "act-12345678",
		Token:     "test-token",
		RateLimit: -1,
	})
	require.NoError(t, err)
	return client
}

func writeItems(t *testing.T, w http.ResponseWriter, items ...interface{}) {
	env := map[string]interface{}{
		"response": map[string]interface{}{
			"status": map[string]interface{}{"code": 200, "message": "OK"},
			"items":  items,
		},
	}
	require.NoError(t, json.NewEncoder(w).Encode(env))
}

func TestNewClient(t *testing.T) {
	testCases := []struct {
		inputConfig     *Config
		expectedError   string
		expectedAddress string
		name            string
	}{
		{
			inputConfig:     &Config{Account: "act-12345678", Token: "test-token"},
			expectedError:   "",
			expectedAddress: DefaultAddress,
			name:            "default address",
		},
		{
			inputConfig:     &Config{Account: "act-12345678", Token: "test-token", Address: "https://api.example.com/"},
			expectedError:   "",
			expectedAddress: "https://api.example.com",
			name:            "custom address trailing slash trimmed",
		},
		{
			inputConfig:   &Config{Token: "test-token"},
			expectedError: "invalid spot configuration: spot account is required",
			name:          "missing account",
		},
		{
			inputConfig:   &Config{Account: "act-12345678"},
			expectedError: "invalid spot configuration: spot token is required",
			name:          "missing token",
		},
		{
			inputConfig:   &Config{},
			expectedError: "invalid spot configuration: spot account is required, spot token is required",
			name:          "missing account and token",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(tc.inputConfig)
			if tc.expectedError != "" {
				assert.Nil(t, client, tc.name)
				assert.EqualError(t, err, tc.expectedError, tc.name)
				return
			}
			require.NoError(t, err, tc.name)
			assert.Equal(t, tc.expectedAddress, client.address, tc.name)
		})
	}
}

func TestClient_ListGroups(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/aws/ec2/group", r.URL.Path)
		assert.Equal(t, "act-12345678", r.URL.Query().Get("accountId"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		writeItems(t, w,
			map[string]interface{}{"id": "sig-1a2b3c4d", "name": "web-production"},
			map[string]interface{}{"id": "sig-5e6f7a8b", "name": "worker-production"},
		)
	}))

	groups, err := client.ListGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "sig-1a2b3c4d", groups[0].ID)
	assert.Equal(t, "web-production", groups[0].Name)
	assert.Equal(t, "worker-production", groups[1].Name)
}

func TestClient_GetGroup(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/aws/ec2/group/sig-1a2b3c4d", r.URL.Path)

		writeItems(t, w, map[string]interface{}{
			"id":   "sig-1a2b3c4d",
			"name": "web-production",
			"capacity": map[string]interface{}{
				"minimum": 2, "maximum": 20, "target": 10,
			},
			"scaling": map[string]interface{}{
				"up": []map[string]interface{}{{"policyName": "scale-up-cpu"}},
			},
		})
	}))

	group, err := client.GetGroup(context.Background(), "sig-1a2b3c4d")
	require.NoError(t, err)
	assert.Equal(t, "web-production", group.Name)
	assert.Equal(t, 10, ptr.PtrToInt(group.Capacity.Target))
	assert.Equal(t, 2, ptr.PtrToInt(group.Capacity.Minimum))
	require.Len(t, group.Scaling.Up, 1)
	assert.Equal(t, "scale-up-cpu", group.Scaling.Up[0].PolicyName)
}

func TestClient_GetGroup_notFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w)
	}))

	group, err := client.GetGroup(context.Background(), "sig-00000000")
	assert.Nil(t, group)

	apiErr := &Error{}
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode())
	assert.Contains(t, apiErr.Message, "sig-00000000")
}

func TestClient_apiError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"response":{"status":{"code":400,"message":"Bad Request"},"errors":[{"code":"GROUP_LOCKED","message":"Group is locked by another deployment"}]}}`)
	}))

	_, err := client.ListGroups(context.Background())

	apiErr := &Error{}
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "GROUP_LOCKED", apiErr.Code)
	assert.EqualError(t, apiErr, "spot api error (status 400, code GROUP_LOCKED): Group is locked by another deployment")
}

func TestClient_Roll(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/aws/ec2/group/sig-1a2b3c4d/roll", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"batchSizePercentage":20,"gracePeriod":300}`, string(body))

		writeItems(t, w, map[string]interface{}{"id": "sbgd-87654321", "status": "in_progress"})
	}))

	status, err := client.Roll(context.Background(), "sig-1a2b3c4d", &RollSpec{
		BatchSizePercentage: 20,
		GracePeriod:         300,
	})
	require.NoError(t, err)
	assert.Equal(t, "sbgd-87654321", status.ID)
	assert.Equal(t, "in_progress", status.Status)
}

func TestClient_SuspendProcesses(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/aws/ec2/group/sig-1a2b3c4d/suspension", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"processes":["AUTO_HEALING","OUT_OF_STRATEGY"]}`, string(body))

		writeItems(t, w)
	}))

	err := client.SuspendProcesses(context.Background(), "sig-1a2b3c4d", []string{"AUTO_HEALING", "OUT_OF_STRATEGY"})
	require.NoError(t, err)
}

func TestClient_ListSuspendedProcesses(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeItems(t, w,
			map[string]interface{}{"name": "AUTO_HEALING"},
			map[string]interface{}{"name": "SCHEDULING"},
		)
	}))

	names, err := client.ListSuspendedProcesses(context.Background(), "sig-1a2b3c4d")
	require.NoError(t, err)
	assert.Equal(t, []string{"AUTO_HEALING", "SCHEDULING"}, names)
}

func TestClient_SuspendScalingPolicy(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/aws/ec2/group/sig-1a2b3c4d/scalingPolicy/suspension", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"policyName":"scale-up-cpu"}`, string(body))

		writeItems(t, w)
	}))

	err := client.SuspendScalingPolicy(context.Background(), "sig-1a2b3c4d", "scale-up-cpu")
	require.NoError(t, err)
}

func TestClient_ScaleUp(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/aws/ec2/group/sig-1a2b3c4d/scale/up", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("adjustment"))
		writeItems(t, w)
	}))

	err := client.ScaleUp(context.Background(), "sig-1a2b3c4d", 3)
	require.NoError(t, err)
}

func TestClient_UpdateCapacity(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/aws/ec2/group/sig-1a2b3c4d/capacity", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"capacity":{"target":15}}`, string(body))

		writeItems(t, w)
	}))

	err := client.UpdateCapacity(context.Background(), "sig-1a2b3c4d", &Capacity{Target: ptr.IntToPtr(15)})
	require.NoError(t, err)
}
