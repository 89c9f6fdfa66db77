package order

// RoleManager 管理员角色,可以调整库存、修改订单状态、查看所有订单
const RoleManager = "Manager"

// AnonymousName 未登录调用者在审计日志里的名字
const AnonymousName = "Unknown"

// Actor 调用者身份,由认证层解析后显式传入用例
type Actor struct {
	Name  string
	Roles []string
}

// Anonymous 未登录调用者
func Anonymous() Actor {
	return Actor{Name: AnonymousName}
}

// IsAuthenticated 是否登录
func (a Actor) IsAuthenticated() bool {
	return a.Name != "" && a.Name != AnonymousName
}

// HasRole 是否拥有角色
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsManager 是否管理员
func (a Actor) IsManager() bool {
	return a.HasRole(RoleManager)
}

// AuditName 审计日志里记录的名字
func (a Actor) AuditName() string {
	if a.Name == "" {
		return AnonymousName
	}
	return a.Name
}
