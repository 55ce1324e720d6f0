package path

import (
	"fmt"
	"strings"
)

// ParseString parses the textual form of a description into a Path. Steps
// are separated by dots; a step is either a member name (with an optional
// trailing ? for nullable references) or a marker call:
//
//	Items.where($recent).orderBy($name).each().Product
//
// Marker arguments are $-prefixed placeholder names that become named
// handles; binding them to real logic is the query engine's concern.
func ParseString(root, desc string) (*Path, error) {
	if root == "" {
		return nil, fmt.Errorf("path %q: no root entity", desc)
	}
	p := Root(root)
	if strings.TrimSpace(desc) == "" {
		return nil, fmt.Errorf("path %q: empty description", desc)
	}

	for i, step := range strings.Split(desc, ".") {
		step = strings.TrimSpace(step)
		if step == "" {
			return nil, fmt.Errorf("path %q: empty step at position %d", desc, i+1)
		}

		open := strings.IndexByte(step, '(')
		if open < 0 {
			// Plain member access, optionally nullable
			name := step
			nullable := false
			if strings.HasSuffix(name, "?") {
				name = strings.TrimSuffix(name, "?")
				nullable = true
			}
			if !isIdentifier(name) {
				return nil, fmt.Errorf("path %q: invalid member %q at position %d", desc, step, i+1)
			}
			if nullable {
				p.NullableMember(name)
			} else {
				p.Member(name)
			}
			continue
		}

		if !strings.HasSuffix(step, ")") {
			return nil, fmt.Errorf("path %q: unterminated marker %q at position %d", desc, step, i+1)
		}
		marker := step[:open]
		arg := strings.TrimSpace(step[open+1 : len(step)-1])

		if marker == "each" {
			if arg != "" {
				return nil, fmt.Errorf("path %q: each() takes no argument at position %d", desc, i+1)
			}
			p.Each()
			continue
		}

		// Remaining markers require a $name placeholder argument
		if !strings.HasPrefix(arg, "$") || !isIdentifier(arg[1:]) {
			return nil, fmt.Errorf("path %q: marker %s needs a $name argument at position %d", desc, marker, i+1)
		}
		name := arg[1:]

		switch marker {
		case "where":
			p.Where(NamedPred(name, nil))
		case "orderBy":
			p.OrderBy(NamedKey(name, nil))
		case "orderByDesc":
			p.OrderByDesc(NamedKey(name, nil))
		case "thenBy":
			p.ThenBy(NamedKey(name, nil))
		case "thenByDesc":
			p.ThenByDesc(NamedKey(name, nil))
		default:
			return nil, fmt.Errorf("path %q: unknown marker %s at position %d", desc, marker, i+1)
		}
	}

	return p, nil
}

// isIdentifier reports whether s is a valid member or placeholder name
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
