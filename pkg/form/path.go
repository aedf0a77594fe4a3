package form

import (
	"strconv"
	"strings"
)

// splitPath flattens Get arguments into segments. Strings split on dots;
// ints are kept. Any other type makes the path invalid.
func splitPath(path []any) ([]any, bool) {
	segs := make([]any, 0, len(path))
	for _, p := range path {
		switch v := p.(type) {
		case int:
			segs = append(segs, v)
		case string:
			if v == "" {
				return nil, false
			}
			for _, s := range strings.Split(v, ".") {
				segs = append(segs, s)
			}
		default:
			return nil, false
		}
	}
	return segs, true
}

func childAt(c Control, seg any) Control {
	switch p := c.(type) {
	case *Group:
		name, ok := seg.(string)
		if !ok {
			return nil
		}
		return p.Control(name)
	case *List:
		switch v := seg.(type) {
		case int:
			return p.At(v)
		case string:
			i, err := strconv.Atoi(v)
			if err != nil {
				return nil
			}
			return p.At(i)
		}
	}
	return nil
}
