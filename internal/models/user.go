package models

// User — профиль текущего пользователя, как его отдаёт GET auth/me/.
// Поля зеркалят проводной формат backend-а; времена приходят строками
// в формате backend-а и не интерпретируются клиентом.
type User struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	UserPhone string `json:"user_phone"`
	RoleName  string `json:"role_name"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Startup — карточка стартапа из листинга.
type Startup struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Industry    string `json:"industry"`
}
