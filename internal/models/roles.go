// models содержит доменные и проводные (wire) модели веб-клиента:
// роли, пару токенов, статус сессии и DTO ответов backend-API.
package models

// Role — роль пользователя на платформе.
//
// На проводе роль представлена маленьким целым (1/2), в памяти — именем.
// Маппинг тотальный и стабильный в обе стороны; неизвестные значения
// схлопываются в нулевые (RoleUnknown / 0), а не в панику.
type Role string

const (
	// RoleUnknown — нулевое значение: роль отсутствует или не распознана.
	RoleUnknown Role = ""
	// RoleStartup — аккаунт стартапа.
	RoleStartup Role = "startup"
	// RoleInvestor — аккаунт инвестора.
	RoleInvestor Role = "investor"
)

// roleIDs — единственный источник истины для соответствия имя <-> id.
var roleIDs = map[Role]int{
	RoleStartup:  1,
	RoleInvestor: 2,
}

// RoleID возвращает числовой идентификатор роли для провода.
// Для неизвестного имени возвращает 0.
func RoleID(name Role) int {
	return roleIDs[name]
}

// RoleName возвращает имя роли по числовому идентификатору.
// Для неизвестного id возвращает RoleUnknown.
func RoleName(id int) Role {
	for name, v := range roleIDs {
		if v == id {
			return name
		}
	}

	return RoleUnknown
}

// Valid сообщает, определена ли роль.
func (r Role) Valid() bool {
	_, ok := roleIDs[r]
	return ok
}
