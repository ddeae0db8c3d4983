package schema

// Find locates the node bound to key under the list fields named by parents,
// outermost first. Groups are transparent and hidden nodes are never
// returned. Each parent must name a list node.
func Find(nodes []Node, parents []string, key string) (Node, bool) {
	scope := nodes
	for _, field := range parents {
		list, ok := findBound(scope, field)
		if !ok || list.Kind() != KindList {
			return Node{}, false
		}
		scope = list.Children
	}
	return findBound(scope, key)
}

func findBound(nodes []Node, key string) (Node, bool) {
	for _, node := range nodes {
		if node.Hidden {
			continue
		}
		if node.Kind() == KindGroup {
			if found, ok := findBound(node.Children, key); ok {
				return found, true
			}
			continue
		}
		if node.DataIndex == key {
			return node, true
		}
	}
	return Node{}, false
}
