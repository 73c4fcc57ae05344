package rule

import "strings"

// Kind 标识节点类型，同时也是显式格式中的node字段取值与简写格式中的键前缀
type Kind string

const (
	KindText   Kind = "text"
	KindStruct Kind = "struct"
	KindLinks  Kind = "links"
	KindPages  Kind = "pages"
	KindMap    Kind = "map"
)

// 简写键的前缀按固定顺序匹配，前缀之间互不包含
var kindPrefixes = []Kind{KindText, KindStruct, KindLinks, KindPages, KindMap}

// ParseKind 解析节点类型名称，名称未知时返回false
func ParseKind(s string) (Kind, bool) {
	for _, k := range kindPrefixes {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

/*
输入一个形如text_title的带前缀名称，输出节点类型、节点名称和一个布尔值

该方法用于解析简写格式的键与构建器的方法名，前缀决定节点类型，下划线之后的部分作为节点名称；没有可识别的前缀时返回false
*/
func SplitPrefixed(s string) (Kind, string, bool) {
	for _, k := range kindPrefixes {
		prefix := string(k) + "_"
		if strings.HasPrefix(s, prefix) {
			return k, strings.TrimPrefix(s, prefix), true
		}
	}
	return "", "", false
}
