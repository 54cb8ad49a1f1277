// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package spot

import (
	"fmt"
	"net/http"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/time/rate"
)

// instrumentedRoundTripper wraps http.RoundTripper to observe metrics and
// rate limit if necessary.
type instrumentedRoundTripper struct {
	rateLimiter *rate.Limiter
	rt          http.RoundTripper
}

func (irt *instrumentedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if irt.rateLimiter != nil {
		err := irt.rateLimiter.Wait(req.Context())
		if err != nil {
			return nil, fmt.Errorf("transport: unable to ratelimit: %w", err)
		}
	}

	labels := []metrics.Label{
		{
			Name:  "method",
			Value: req.Method,
		},
	}

	defer metrics.MeasureSinceWithLabels([]string{"spot", "api", "dur"}, time.Now(), labels)

	resp, err := irt.rt.RoundTrip(req)
	if err == nil && resp != nil {
		metrics.IncrCounterWithLabels([]string{"spot", "api", "req"}, 1, labels)
	}

	return resp, err
}

// newHTTPClient returns a pooled client built with
// github.com/hashicorp/go-cleanhttp whose transport throttles and measures
// every request. To disable rate limiting, set ratePerSec to -1. Setting it
// to 0 blocks all requests.
func newHTTPClient(ratePerSec int) *http.Client {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Transport.(*http.Transport).MaxConnsPerHost = 50

	irt := &instrumentedRoundTripper{
		rt: httpClient.Transport,
	}

	if ratePerSec != -1 {
		irt.rateLimiter = rate.NewLimiter(rate.Every(time.Second), ratePerSec)
	}

	httpClient.Transport = irt

	return httpClient
}
