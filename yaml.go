package goproblem

import (
	"encoding/json"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders p as a mapping with the same member order as the JSON
// encoding.
func (p *Problem) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	appendProblemNodes(n, p)
	if err := appendExtensionNodes(n, &p.Extensions); err != nil {
		return nil, err
	}
	return n, nil
}

// MarshalYAML renders p with errors between the base members and extensions.
func (p *ValidationProblem) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	appendProblemNodes(n, &p.Problem)
	if p.Errors.Len() > 0 {
		errs := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for field, msgs := range p.Errors.All() {
			seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for _, m := range msgs {
				seq.Content = append(seq.Content, strNode(m))
			}
			errs.Content = append(errs.Content, strNode(field), seq)
		}
		n.Content = append(n.Content, strNode(KeyErrors), errs)
	}
	if err := appendExtensionNodes(n, &p.Extensions, KeyErrors); err != nil {
		return nil, err
	}
	return n, nil
}

func appendProblemNodes(n *yaml.Node, p *Problem) {
	add := func(k, v string) {
		if v != "" {
			n.Content = append(n.Content, strNode(k), strNode(v))
		}
	}
	add(KeyType, p.Type)
	add(KeyTitle, p.Title)
	if p.Status != nil {
		n.Content = append(n.Content, strNode(KeyStatus),
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(*p.Status)})
	}
	add(KeyDetail, p.Detail)
	add(KeyInstance, p.Instance)
}

func appendExtensionNodes(n *yaml.Node, ext *Extensions, reserved ...string) error {
	for k, v := range ext.All() {
		if isWellKnown(k) || slices.Contains(reserved, k) {
			return newIssue(CodeDuplicateKey, joinPointer("", k), "extension collides with member '"+k+"'", -1)
		}
		vn, err := valueNode(v)
		if err != nil {
			return err
		}
		n.Content = append(n.Content, strNode(k), vn)
	}
	return nil
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func valueNode(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case *Extensions:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, e := range x.All() {
			en, err := valueNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, strNode(k), en)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range x {
			en, err := valueNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	case json.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: string(x)}, nil
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

// UnmarshalYAML reads a mapping into p. Unknown keys land in Extensions.
func (p *Problem) UnmarshalYAML(n *yaml.Node) error {
	if isYAMLNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return yamlMismatch("/", n, "mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := readProblemNode(p, n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalYAML reads a mapping into p, merging errors per field.
func (p *ValidationProblem) UnmarshalYAML(n *yaml.Node) error {
	if isYAMLNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return yamlMismatch("/", n, "mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, v := n.Content[i].Value, n.Content[i+1]
		if key != KeyErrors {
			if err := readProblemNode(&p.Problem, key, v); err != nil {
				return err
			}
			continue
		}
		if isYAMLNull(v) {
			continue
		}
		if v.Kind != yaml.MappingNode {
			return yamlMismatch(joinPointer("", KeyErrors), v, "mapping")
		}
		for j := 0; j+1 < len(v.Content); j += 2 {
			field := v.Content[j].Value
			var msgs []string
			if err := v.Content[j+1].Decode(&msgs); err != nil {
				iss := yamlMismatch(joinPointer(joinPointer("", KeyErrors), field), v.Content[j+1], "string sequence")
				iss.Cause = err
				return iss
			}
			if msgs == nil {
				msgs = []string{}
			}
			p.Errors.Set(field, msgs)
		}
	}
	return nil
}

func readProblemNode(p *Problem, key string, v *yaml.Node) error {
	path := joinPointer("", key)
	switch key {
	case KeyType:
		return yamlString(path, v, &p.Type)
	case KeyTitle:
		return yamlString(path, v, &p.Title)
	case KeyDetail:
		return yamlString(path, v, &p.Detail)
	case KeyInstance:
		return yamlString(path, v, &p.Instance)
	case KeyStatus:
		if isYAMLNull(v) {
			p.Status = nil
			return nil
		}
		var n int32
		if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!int" {
			return yamlMismatch(path, v, "integer")
		}
		if err := v.Decode(&n); err != nil {
			iss := yamlMismatch(path, v, "32-bit integer")
			iss.Cause = err
			return iss
		}
		p.Status = StatusCode(int(n))
		return nil
	}
	val, err := nodeValue(path, v)
	if err != nil {
		return err
	}
	if p.Extensions.Has(key) {
		return duplicateKey(path, key)
	}
	p.Extensions.insert(key, val)
	return nil
}

func yamlString(path string, v *yaml.Node, dst *string) error {
	if isYAMLNull(v) {
		*dst = ""
		return nil
	}
	if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!str" {
		return yamlMismatch(path, v, "string")
	}
	*dst = v.Value
	return nil
}

func nodeValue(path string, v *yaml.Node) (any, error) {
	if v.Kind == yaml.AliasNode && v.Alias != nil {
		v = v.Alias
	}
	switch v.Kind {
	case yaml.MappingNode:
		obj := NewExtensions()
		for i := 0; i+1 < len(v.Content); i += 2 {
			k := v.Content[i].Value
			kpath := joinPointer(path, k)
			e, err := nodeValue(kpath, v.Content[i+1])
			if err != nil {
				return nil, err
			}
			if obj.Has(k) {
				return nil, duplicateKey(kpath, k)
			}
			obj.insert(k, e)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(v.Content))
		for i, c := range v.Content {
			e, err := nodeValue(joinPointer(path, strconv.Itoa(i)), c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, e)
		}
		return arr, nil
	}
	var out any
	switch v.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!int":
		var n int64
		if err := v.Decode(&n); err == nil {
			return n, nil
		}
	}
	if err := v.Decode(&out); err != nil {
		iss := yamlMismatch(path, v, "scalar")
		iss.Cause = err
		return nil, iss
	}
	return out, nil
}

func isYAMLNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func yamlMismatch(path string, n *yaml.Node, expected string) *Issue {
	got := n.ShortTag()
	if got == "" {
		got = "node"
	}
	return newIssue(CodeInvalidType, path, "expected "+expected+", got "+got, -1)
}
