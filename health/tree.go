package health

import "github.com/c360/semunits/unit"

type node struct {
	status   Status
	children []*node
}

func (n *node) resolve() Status {
	nested := make([]Status, 0, len(n.children))
	for _, child := range n.children {
		nested = append(nested, child.resolve())
	}
	return combine(n.status, nested)
}

// UnitTree returns the aggregated status of every unit reachable from c,
// keeping the nesting of units as sub-statuses.
func UnitTree(component string, c *unit.Context) Status {
	var roots []*node
	var stack []*node

	c.Walk(func(u *unit.Unit, depth int) bool {
		n := &node{status: FromUnit(u)}
		stack = stack[:depth]
		if depth == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[depth-1]
			parent.children = append(parent.children, n)
		}
		stack = append(stack, n)
		return true
	})

	statuses := make([]Status, 0, len(roots))
	for _, n := range roots {
		statuses = append(statuses, n.resolve())
	}
	return Aggregate(component, statuses)
}
