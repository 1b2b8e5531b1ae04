package entities

import (
	"strings"
	"time"
)

// Role - закрытый перечень ролей. Нормализация строк ("ROLE_SUPPLIER",
// "supplier" и т.п.) происходит один раз на границе, дальше по коду
// гуляет только этот тип.
type Role string

const (
	RoleRequester       Role = "REQUESTER"
	RoleSupplier        Role = "SUPPLIER"
	RoleResourcePlanner Role = "RESOURCE_PLANNER"
	RoleAdmin           Role = "ADMIN"
)

// NormalizeRole приводит произвольную строку роли к закрытому типу.
// Возвращает ok=false для неизвестных ролей.
func NormalizeRole(raw string) (Role, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "ROLE_")
	switch Role(s) {
	case RoleRequester, RoleSupplier, RoleResourcePlanner, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Actor - явная личность вызывающего. Передается параметром в каждую
// операцию ядра; ядро никогда не читает личность из окружения.
type Actor struct {
	ID   string
	Role Role
}

type User struct {
	ID           string
	Fio          string
	Email        string
	PasswordHash string
	Role         Role
	// CompanyName заполняется для поставщиков - отображаемое имя компании.
	CompanyName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Actor возвращает личность пользователя для передачи в ядро.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
