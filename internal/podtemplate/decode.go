// Package podtemplate decodes the user-supplied sync-job pod template.
package podtemplate

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	sigsyaml "sigs.k8s.io/yaml"

	"apprepo/internal/api"
)

var lineRe = regexp.MustCompile(`line (\d+)`)

// Decode turns pod template YAML into a PodTemplateSpec.
// Blank input yields an empty template. Unknown fields are ignored.
func Decode(text string) (corev1.PodTemplateSpec, error) {
	var tmpl corev1.PodTemplateSpec
	if strings.TrimSpace(text) == "" {
		return tmpl, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return tmpl, newParseError(err)
	}
	if doc := documentRoot(&node); doc != nil && doc.Kind != yaml.MappingNode {
		return tmpl, &api.ParseError{Line: doc.Line, Msg: "pod template must be a mapping"}
	}

	if err := sigsyaml.Unmarshal([]byte(text), &tmpl); err != nil {
		return corev1.PodTemplateSpec{}, newParseError(err)
	}
	return tmpl, nil
}

func documentRoot(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return node.Content[0]
	}
	return nil
}

func newParseError(err error) *api.ParseError {
	pe := &api.ParseError{Msg: strings.TrimPrefix(err.Error(), "yaml: "), Err: err}
	if m := lineRe.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}
