package rule

// Equal 判断两棵规则树结构是否等价：类型、名称、路径、截取表达式、后处理、页数上限、展开标志以及子节点顺序都相同
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.Name() != b.Name() {
		return false
	}

	if pa, ok := a.(pather); ok {
		pb, ok := b.(pather)
		if !ok || pa.Path() != pb.Path() {
			return false
		}
	}

	switch x := a.(type) {
	case *TextNode:
		y, ok := b.(*TextNode)
		if !ok || x.TruncatePattern() != y.TruncatePattern() || x.proc != y.proc {
			return false
		}
	case *PaginateNode:
		y, ok := b.(*PaginateNode)
		if !ok || x.limit != y.limit || x.flatten != y.flatten {
			return false
		}
	}

	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}
