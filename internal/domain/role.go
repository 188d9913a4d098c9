package domain

import "fmt"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Capability 操作所需的权限等级
type Capability int

const (
	CapSelf Capability = iota
	CapAdmin
)

func (c Capability) String() string {
	if c == CapAdmin {
		return "admin"
	}
	return "self"
}

// ParseRole 只接受 "user" / "admin"
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// NormalizeRole 非 admin 一律视为 user
func NormalizeRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Allows 唯一的权限判断入口
func (r Role) Allows(c Capability) bool {
	switch c {
	case CapSelf:
		return true
	case CapAdmin:
		return r == RoleAdmin
	}
	return false
}
