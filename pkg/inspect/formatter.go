package inspect

import (
	"fmt"
	"strings"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowModifiers includes modifier axes under each region
	ShowModifiers bool

	// ShowIDs includes saved global IDs alongside regions
	ShowIDs bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowModifiers: true,
		ShowIDs:       true,
		IndentWidth:   2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatModelTree formats a model's region tree.
func (f *Formatter) FormatModelTree(tree *ModelTree) string {
	var sb strings.Builder
	if tree.Key == tree.Name {
		sb.WriteString(fmt.Sprintf("Model: %s\n", tree.Key))
	} else {
		sb.WriteString(fmt.Sprintf("Model: %s (%s)\n", tree.Key, tree.Name))
	}
	f.writeRegion(&sb, tree.Root, 1)
	return sb.String()
}

// FormatRegion formats a region subtree.
func (f *Formatter) FormatRegion(info *RegionInfo) string {
	var sb strings.Builder
	f.writeRegion(&sb, *info, 0)
	return sb.String()
}

func (f *Formatter) writeRegion(sb *strings.Builder, r RegionInfo, depth int) {
	line := r.Name
	if len(r.Options) > 0 {
		line += " [" + strings.Join(r.Options, ", ") + "]"
	}
	if f.ShowIDs {
		if ids := FormatIDs(r.Locations); ids != "" {
			line += " loc=" + ids
		}
		if ids := FormatIDs(r.Areas); ids != "" {
			line += " area=" + ids
		}
	}
	sb.WriteString(f.Indent(depth, line))
	sb.WriteString("\n")

	if f.ShowModifiers {
		for _, axis := range r.Axes {
			values := "(none)"
			if len(axis.Values) > 0 {
				values = strings.Join(axis.Values, ", ")
			}
			sb.WriteString(f.Indent(depth+1, fmt.Sprintf("~ %s: %s\n", axis.Name, values)))
		}
	}
	for _, c := range r.Subregions {
		f.writeRegion(sb, c, depth+1)
	}
}

// FormatIDs formats a list of IDs as "{1,2,3}", or "" when empty.
func FormatIDs(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// FormatSavedTable formats saved addresses as a table.
func (f *Formatter) FormatSavedTable(rows []SavedRow) string {
	if len(rows) == 0 {
		return "  (none saved)\n"
	}

	var sb strings.Builder
	for _, row := range rows {
		if f.ShowIDs {
			sb.WriteString(fmt.Sprintf("  [%d] %s (local %d)\n", row.GlobalID, row.Address, row.LocalID))
		} else {
			sb.WriteString(fmt.Sprintf("  %s\n", row.Address))
		}
	}
	return sb.String()
}

// FormatMatches formats localization matches.
func (f *Formatter) FormatMatches(matches []Match) string {
	if len(matches) == 0 {
		return "  (no containing areas)\n"
	}

	var sb strings.Builder
	for _, m := range matches {
		kind := "partial"
		if m.Fully {
			kind = "full"
		}
		sb.WriteString(fmt.Sprintf("  %-7s [%d] %s\n", kind, m.GlobalID, m.Address))
	}
	return sb.String()
}
