package filter

import "fmt"

// Build reduces a specification into a single expression tree.
// Returns (nil, nil) for an empty specification, which selects every row.
//
// The specification is walked depth-first, post-order. Conditions become
// leaves in the block one level below their group label; when the label
// itself is visited the block below it is folded under the label and the
// result joins the label's own level as a pending sibling. The root level
// must end with exactly one node.
//
// Error conditions:
//   - Unknown operator token in a condition or in a label that folds several rules
//   - Condition validation errors (see NewLeaf)
//   - Empty groups, or a root with several unconsolidated groups
func Build(spec Spec, opts *Options) (Node, error) {
	if spec.IsEmpty() {
		return nil, nil
	}
	if opts == nil {
		opts = &Options{}
	}

	r := &reducer{
		blocks: make(map[int][]Node),
		level:  -1,
		strict: opts.StrictLabels,
	}
	if err := walk(spec, 0, nil, r.visit); err != nil {
		return nil, err
	}

	if root := r.blocks[0]; len(root) != 1 {
		return nil, fmt.Errorf("%w: root reduced to %d rules, a combinator key is missing",
			ErrMalformedSpecification, len(root))
	}
	return r.blocks[0][0], nil
}

// event is produced by walk: either the conditions of a group (at the level
// below its label) or the label itself once its contents have been visited.
type event struct {
	level  int
	path   []string
	label  string
	tuples []Tuple
	closes bool
}

// walk emits the events of spec in post-order.
func walk(spec Spec, level int, path []string, visit func(event) error) error {
	for _, entry := range spec {
		entryPath := append(path[:len(path):len(path)], entry.Label)

		switch {
		case entry.Tuples != nil && entry.Nested != nil:
			return fmt.Errorf("%w: group %s holds both conditions and a nested mapping",
				ErrMalformedSpecification, formatPath(entryPath))
		case len(entry.Tuples) == 0 && len(entry.Nested) == 0:
			return fmt.Errorf("%w: group %s is empty", ErrMalformedSpecification, formatPath(entryPath))
		case entry.Nested != nil:
			if err := walk(entry.Nested, level+1, entryPath, visit); err != nil {
				return err
			}
		default:
			if err := visit(event{level: level + 1, path: entryPath, tuples: entry.Tuples}); err != nil {
				return err
			}
		}

		if err := visit(event{level: level, path: entryPath, label: entry.Label, closes: true}); err != nil {
			return err
		}
	}
	return nil
}

// reducer holds the pending group results per nesting level.
type reducer struct {
	blocks map[int][]Node
	level  int
	strict bool
}

func (r *reducer) visit(ev event) error {
	if !ev.closes {
		r.level = ev.level
		for i, t := range ev.tuples {
			leaf, err := leafFromTuple(t)
			if err != nil {
				return fmt.Errorf("group %s condition %d: %w", formatPath(ev.path), i, err)
			}
			r.blocks[ev.level] = append(r.blocks[ev.level], leaf)
		}
		return nil
	}

	combined, err := combineLabel(ev.label, r.blocks[r.level], r.strict)
	if err != nil {
		return fmt.Errorf("group %s: %w", formatPath(ev.path), err)
	}
	r.blocks[r.level] = nil
	r.blocks[ev.level] = append(r.blocks[ev.level], combined)
	r.level = ev.level
	return nil
}

func formatPath(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "/"
		}
		s += fmt.Sprintf("%q", p)
	}
	return s
}
