package recipe

import (
	"fmt"
	"iter"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the structured form of a recipe: an order-preserving mapping
// tree. Duplicate keys are tolerated on load; lookups are first-wins.
type Document struct {
	// Root is the top-level mapping node.
	Root *yaml.Node
}

// Parse loads expanded recipe text into a Document. Quote characters are
// stripped first: the recipe dialect allows selector annotations like
// [linux] right after quoted strings, which plain YAML rejects, and quotes
// carry no semantic value at this stage.
func Parse(text string) (*Document, error) {
	return ParseYAML(strings.ReplaceAll(text, `"`, ""))
}

// ParseYAML loads recipe text that needs no quote stripping, such as the
// output of an external render step.
func ParseYAML(text string) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("recipe is not a mapping document")
	}
	return &Document{Root: node.Content[0]}, nil
}

// Get returns the value node for key inside a mapping node, or nil. With
// duplicate keys the first occurrence wins.
func Get(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// Lookup walks a key path from the document root.
func (d *Document) Lookup(keys ...string) *yaml.Node {
	node := d.Root
	for _, key := range keys {
		node = Get(node, key)
		if node == nil {
			return nil
		}
	}
	return node
}

// FindKey yields every value stored under key anywhere in the tree below n,
// depth-first. Mappings are searched pair by pair; sequences are searched
// through their mapping elements. The sequence is lazy and restartable.
func FindKey(n *yaml.Node, key string) iter.Seq[*yaml.Node] {
	return func(yield func(*yaml.Node) bool) {
		walkKey(n, key, yield)
	}
}

func walkKey(n *yaml.Node, key string, yield func(*yaml.Node) bool) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Value == key {
				if !yield(v) {
					return false
				}
				continue
			}
			switch v.Kind {
			case yaml.MappingNode:
				if !walkKey(v, key, yield) {
					return false
				}
			case yaml.SequenceNode:
				for _, item := range v.Content {
					if item.Kind == yaml.MappingNode && !walkKey(item, key, yield) {
						return false
					}
				}
			}
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind == yaml.MappingNode && !walkKey(item, key, yield) {
				return false
			}
		}
	}
	return true
}

// Sources returns the recipe's source declarations as mapping nodes. A
// single mapping source is wrapped into a one-element list.
func (d *Document) Sources() []*yaml.Node {
	node := d.Lookup("source")
	switch {
	case node == nil:
		return nil
	case node.Kind == yaml.SequenceNode:
		return node.Content
	default:
		return []*yaml.Node{node}
	}
}

// HasGitSources reports whether any git_url appears anywhere in the recipe.
func (d *Document) HasGitSources() bool {
	for range FindKey(d.Root, "git_url") {
		return true
	}
	return false
}

// Marshal serializes the document with the package section emitted first;
// at least one downstream consumer depends on that ordering.
func (d *Document) Marshal() ([]byte, error) {
	root := d.Root
	ordered := &yaml.Node{Kind: yaml.MappingNode, Tag: root.Tag}
	var rest []*yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "package" {
			ordered.Content = append(ordered.Content, root.Content[i], root.Content[i+1])
		} else {
			rest = append(rest, root.Content[i], root.Content[i+1])
		}
	}
	ordered.Content = append(ordered.Content, rest...)

	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(ordered); err != nil {
		return nil, fmt.Errorf("failed to serialize recipe: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to serialize recipe: %w", err)
	}
	return []byte(b.String()), nil
}

// SetScalar replaces the value of key in mapping with a string scalar,
// appending the pair when the key is absent.
func SetScalar(mapping *yaml.Node, key, value string) {
	if existing := Get(mapping, key); existing != nil {
		setString(existing, value)
		return
	}
	k, v := &yaml.Node{}, &yaml.Node{}
	setString(k, key)
	setString(v, value)
	mapping.Content = append(mapping.Content, k, v)
}

func setString(n *yaml.Node, value string) {
	n.Kind = yaml.ScalarNode
	n.Tag = "!!str"
	n.Value = value
	n.Style = 0
	n.Content = nil
}

// StringScalar builds a string scalar node.
func StringScalar(value string) *yaml.Node {
	n := &yaml.Node{}
	setString(n, value)
	return n
}
