// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Match returns the candidates selected by at least one of the supplied
// queries. A query selects a candidate when it equals it, when the candidate
// contains it as a substring, or when the query compiled as a
// case-insensitive regular expression finds a match anywhere within the
// candidate. Candidate order is preserved and each candidate appears at most
// once, however many queries select it.
func Match(candidates, queries []string) ([]string, error) {

	exprs := make([]*regexp.Regexp, len(queries))
	for i, query := range queries {
		expr, err := regexp.Compile("(?i)" + query)
		if err != nil {
			return nil, fmt.Errorf("invalid target pattern %q: %v", query, err)
		}
		exprs[i] = expr
	}

	var matched []string
	for _, candidate := range candidates {
		for i, query := range queries {
			if candidate == query || strings.Contains(candidate, query) || exprs[i].MatchString(candidate) {
				matched = append(matched, candidate)
				break
			}
		}
	}
	return matched, nil
}
