package querylang

import "strings"

// Print emits the document as GraphQL query text.
func (d Document) Print() string {
	var sb strings.Builder
	sb.WriteString("query ")
	sb.WriteString(d.name)
	if len(d.params) > 0 {
		sb.WriteByte('(')
		for i, p := range d.params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(p.Name)
			sb.WriteString(": ")
			sb.WriteString(p.Type)
		}
		sb.WriteByte(')')
	}
	sb.WriteByte(' ')
	writeSelectionSet(&sb, d.selections, 0)
	return sb.String()
}

func writeSelectionSet(sb *strings.Builder, selections []Selection, depth int) {
	sb.WriteString("{\n")
	for _, sel := range selections {
		writeSelection(sb, sel, depth+1)
	}
	writeIndent(sb, depth)
	sb.WriteString("}")
	if depth == 0 {
		sb.WriteString("\n")
	} else {
		sb.WriteString("\n")
	}
}

func writeSelection(sb *strings.Builder, sel Selection, depth int) {
	writeIndent(sb, depth)

	if sel.isInlineFragment {
		sb.WriteString("... on ")
		sb.WriteString(sel.onType)
		sb.WriteByte(' ')
		writeSelectionSet(sb, sel.children, depth)
		return
	}

	if sel.alias != "" {
		sb.WriteString(sel.alias)
		sb.WriteString(": ")
	}
	sb.WriteString(sel.name)

	if len(sel.args) > 0 {
		sb.WriteByte('(')
		for i, arg := range sel.args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.Name)
			sb.WriteString(": ")
			arg.Value.writeTo(sb)
		}
		sb.WriteByte(')')
	}

	if len(sel.children) > 0 {
		sb.WriteByte(' ')
		writeSelectionSet(sb, sel.children, depth)
	} else {
		sb.WriteString("\n")
	}
}

func writeIndent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
}
