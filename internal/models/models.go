package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Calculation struct {
	ID        int64     `json:"id"`
	Operation string    `json:"operation"`
	Operand1  float64   `json:"operand1"`
	Operand2  float64   `json:"operand2"`
	Result    float64   `json:"result"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type CalculationCreateRequest struct {
	Operation string  `json:"operation"`
	Operand1  float64 `json:"operand1"`
	Operand2  float64 `json:"operand2"`
}

// CalculationUpdateRequest uses pointers so that absent fields keep their
// prior values. PUT and PATCH share these semantics.
type CalculationUpdateRequest struct {
	Operation *string  `json:"operation"`
	Operand1  *float64 `json:"operand1"`
	Operand2  *float64 `json:"operand2"`
}

func (r *CalculationUpdateRequest) Empty() bool {
	return r.Operation == nil && r.Operand1 == nil && r.Operand2 == nil
}
