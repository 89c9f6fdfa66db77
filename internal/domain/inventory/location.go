package inventory

import "sort"

// LocationSet 允许入库的仓库位置
// 由配置注入,测试可以传入任意集合
type LocationSet struct {
	names map[string]struct{}
}

// NewLocationSet 创建位置白名单,大小写敏感
func NewLocationSet(names ...string) LocationSet {
	set := LocationSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		set.names[n] = struct{}{}
	}
	return set
}

// Contains 是否在白名单内
func (s LocationSet) Contains(location string) bool {
	_, ok := s.names[location]
	return ok
}

// List 排好序的白名单,用于错误提示
func (s LocationSet) List() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Check 不在白名单时返回InvalidLocationError
func (s LocationSet) Check(location string) error {
	if s.Contains(location) {
		return nil
	}
	return &InvalidLocationError{Location: location, Allowed: s.List()}
}
