package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envExpander rewrites ${VAR} references in config values and remembers
// which variables were not set, so the loader can report them. It operates
// on the parsed node tree: mapping keys are never rewritten, and a plain
// scalar that expands to a number or bool keeps its native type so fields
// like catalog.timeoutSeconds can be sourced from the environment.
type envExpander struct {
	lookup  func(string) (string, bool)
	missing map[string]struct{}
}

func expandConfigEnv(raw []byte) (string, []string, error) {
	return newEnvExpander(os.LookupEnv).expand(raw)
}

func newEnvExpander(lookup func(string) (string, bool)) *envExpander {
	return &envExpander{
		lookup:  lookup,
		missing: make(map[string]struct{}),
	}
}

func (x *envExpander) expand(raw []byte) (string, []string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", nil, fmt.Errorf("parse config: %w", err)
	}

	x.visit(&doc)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", nil, fmt.Errorf("encode expanded config: %w", err)
	}
	return string(out), x.unresolved(), nil
}

func (x *envExpander) visit(node *yaml.Node) {
	switch node.Kind {
	case yaml.ScalarNode:
		x.rewriteScalar(node)
	case yaml.MappingNode:
		// Content alternates key, value; keys keep their spelling.
		for i := 1; i < len(node.Content); i += 2 {
			x.visit(node.Content[i])
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			x.visit(node.Alias)
		}
	default:
		for _, child := range node.Content {
			x.visit(child)
		}
	}
}

func (x *envExpander) rewriteScalar(node *yaml.Node) {
	if node.Tag != "" && node.Tag != "!!str" {
		return
	}
	expanded := os.Expand(node.Value, x.resolve)
	if expanded == node.Value {
		return
	}

	node.Value = expanded
	if node.Style != 0 {
		// Quoted values stay strings regardless of what they expanded to.
		node.Tag = "!!str"
		return
	}
	node.Tag = scalarTag(expanded)
}

func (x *envExpander) resolve(name string) string {
	if value, ok := x.lookup(name); ok {
		return value
	}
	x.missing[name] = struct{}{}
	return ""
}

func (x *envExpander) unresolved() []string {
	if len(x.missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(x.missing))
	for name := range x.missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// scalarTag picks the tag for an expanded plain scalar. Only unambiguous
// numeric and boolean spellings are retagged; everything else stays a
// string so values like version identifiers never get mangled.
func scalarTag(value string) string {
	switch value {
	case "":
		return "!!str"
	case "null", "~":
		return "!!null"
	case "true", "false":
		return "!!bool"
	}
	if !looksNumeric(value) {
		return "!!str"
	}
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return "!!int"
	}
	if _, err := strconv.ParseUint(value, 10, 64); err == nil {
		return "!!int"
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		if strings.ContainsAny(value, ".eE") {
			return "!!float"
		}
	}
	return "!!str"
}

func looksNumeric(value string) bool {
	c := value[0]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}
