package task

import "fmt"

// Aliases maps short names to lists of target patterns or further aliases.
type Aliases map[string][]string

// Flatten expands the tokens into a flat pattern list, resolving aliases
// recursively in order. A token that is not an alias passes through as a
// pattern. Aliases may share sub-aliases; a cycle is an error.
func (a Aliases) Flatten(tokens []string) ([]string, error) {
	return a.flatten(tokens, make(map[string]bool))
}

func (a Aliases) flatten(tokens []string, seen map[string]bool) ([]string, error) {
	var patterns []string
	for _, token := range tokens {
		nested, ok := a[token]
		if !ok {
			patterns = append(patterns, token)
			continue
		}
		if seen[token] {
			return nil, fmt.Errorf("alias cycle detected at %q", token)
		}

		seen[token] = true
		expanded, err := a.flatten(nested, seen)
		if err != nil {
			return nil, err
		}
		delete(seen, token)

		patterns = append(patterns, expanded...)
	}
	return patterns, nil
}
