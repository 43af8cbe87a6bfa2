// Package selection implements the message-selection sub-language modules
// use to pick which conversation-tree turn(s) to operate on, plus the
// matches_filter utility used for model-catalog filtering.
package selection

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/harborlabs/boost/internal/boost/chat"
)

// Strategy names, matching the source's selection_strategies keys.
const (
	All        = "all"
	First      = "first"
	Last       = "last"
	Any        = "any"
	User       = "user"
	Percentage = "percentage"
	Match      = "match"
)

// Params carries the optional filters a "match" strategy (or Percentage)
// consumes. Zero values mean "not set" except Index, which uses a pointer
// to distinguish 0 from unset.
type Params struct {
	Role       string
	Substring  string
	Index      *int
	Percentage float64
}

func allNodes(c *chat.Chat) []*chat.Node {
	return c.Plain()
}

// ApplyStrategy dispatches to the named strategy, mirroring the source's
// apply_strategy(chat, strategy, params) dispatcher.
func ApplyStrategy(c *chat.Chat, strategy string, p Params) ([]*chat.Node, error) {
	switch strategy {
	case All, "":
		return allNodes(c), nil
	case First:
		return matchNodes(c, Params{Index: intPtr(0)}), nil
	case Last:
		return matchNodes(c, Params{Index: intPtr(-1)}), nil
	case Any:
		nodes := allNodes(c)
		if len(nodes) == 0 {
			return nil, nil
		}
		return []*chat.Node{nodes[rand.Intn(len(nodes))]}, nil
	case User:
		return matchNodes(c, Params{Role: "user"}), nil
	case Percentage:
		return percentageNodes(c, p.Percentage), nil
	case Match:
		return matchNodes(c, p), nil
	default:
		return nil, fmt.Errorf("selection: unknown strategy %q", strategy)
	}
}

// percentageNodes returns the first ceil(N*p/100) nodes, p in [0, 100].
// percentage(c, 0) still returns exactly 1 node (matching the source's
// max(1, ...) floor), and percentage(c, 100) returns every node.
func percentageNodes(c *chat.Chat, p float64) []*chat.Node {
	nodes := allNodes(c)
	if len(nodes) == 0 {
		return nil
	}
	n := int(math.Ceil(float64(len(nodes)) * p / 100))
	if n < 1 {
		n = 1
	}
	if n > len(nodes) {
		n = len(nodes)
	}
	return nodes[:n]
}

// matchNodes filters by role, then substring, then index, each applied only
// if set — matching the source's match() filter ordering.
func matchNodes(c *chat.Chat, p Params) []*chat.Node {
	nodes := allNodes(c)

	if p.Role != "" {
		filtered := nodes[:0:0]
		for _, n := range nodes {
			if n.Role() == p.Role {
				filtered = append(filtered, n)
			}
		}
		nodes = filtered
	}

	if p.Substring != "" {
		filtered := nodes[:0:0]
		for _, n := range nodes {
			if n.Contains(p.Substring) {
				filtered = append(filtered, n)
			}
		}
		nodes = filtered
	}

	if p.Index != nil {
		idx := *p.Index
		if idx < 0 {
			idx += len(nodes)
		}
		if idx < 0 || idx >= len(nodes) {
			return nil
		}
		return []*chat.Node{nodes[idx]}
	}

	return nodes
}

func intPtr(i int) *int { return &i }

// FilterOp is the comparison used by a MatchesFilter clause.
type FilterOp string

const (
	OpExact    FilterOp = "exact"
	OpContains FilterOp = "contains"
	OpRegex    FilterOp = "regex"
)

// Clause is one parsed "field[.op]=value" filter term.
type Clause struct {
	Field string
	Op    FilterOp
	Value string
}

// ParseFilter parses a comma-separated "field[.op]=value,..." expression,
// the same grammar HARBOR_BOOST_MODEL_FILTER and MatchesFilter callers use.
func ParseFilter(expr string) []Clause {
	var clauses []Clause
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		field, op := kv[0], OpExact
		if dot := strings.LastIndex(field, "."); dot >= 0 {
			switch FilterOp(field[dot+1:]) {
			case OpExact, OpContains, OpRegex:
				op = FilterOp(field[dot+1:])
				field = field[:dot]
			}
		}
		clauses = append(clauses, Clause{Field: field, Op: op, Value: kv[1]})
	}
	return clauses
}

// MatchesFilter reports whether every clause holds against obj, a flat
// string-keyed map (e.g. a model catalog entry).
func MatchesFilter(obj map[string]string, clauses []Clause) bool {
	for _, cl := range clauses {
		val, ok := obj[cl.Field]
		if !ok {
			return false
		}
		switch cl.Op {
		case OpContains:
			if !strings.Contains(val, cl.Value) {
				return false
			}
		case OpRegex:
			// Anchored at the start only (not the end), matching Python's
			// re.match semantics the source's filter clauses rely on —
			// unlike Go's unanchored regexp.MatchString.
			re, err := regexp.Compile(cl.Value)
			if err != nil {
				return false
			}
			loc := re.FindStringIndex(val)
			if loc == nil || loc[0] != 0 {
				return false
			}
		default:
			if val != cl.Value {
				return false
			}
		}
	}
	return true
}

// ParsePercentage parses the "percentage" param out of a module's raw
// params map, tolerating both numeric and string-encoded values.
func ParsePercentage(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}
