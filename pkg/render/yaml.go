package render

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// writeYAML writes a sequence of report mappings. Nodes are built by hand so
// keys keep column order.
func writeYAML(w io.Writer, tables []Table) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, t := range tables {
		rows := &yaml.Node{Kind: yaml.SequenceNode}
		for _, row := range t.Rows {
			m := &yaml.Node{Kind: yaml.MappingNode}
			for i, c := range t.Columns {
				m.Content = append(m.Content, strNode(c.Name), yamlValue(row[i], c.Kind))
			}
			rows.Content = append(rows.Content, m)
		}

		report := &yaml.Node{Kind: yaml.MappingNode}
		report.Content = append(report.Content,
			strNode("report"), strNode(t.Name),
			strNode("title"), strNode(t.Title),
			strNode("rows"), rows,
		)
		doc.Content = append(doc.Content, report)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func yamlValue(v any, kind Kind) *yaml.Node {
	text, null := formatCell(v, kind)
	if null {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch kind {
	case Integer:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: text}
	case Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: text}
	}
	return strNode(text)
}
