package models

// Address represents a saved shipping address
type Address struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}

type Notifications struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

// Preferences represents account settings. Language and currency are stored as given.
type Preferences struct {
	Currency      string        `json:"currency" validate:"required"`
	Language      string        `json:"language" validate:"required"`
	Notifications Notifications `json:"notifications"`
	DefaultView   string        `json:"default_view" validate:"omitempty,oneof=grid list"`
}

type User struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Avatar      string      `json:"avatar,omitempty"`
	Addresses   []Address   `json:"addresses"`
	Preferences Preferences `json:"preferences"`
}

// AuthSession is replaced wholesale on every login, register and logout
type AuthSession struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"is_authenticated"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
