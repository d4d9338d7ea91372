package models

import "golang.org/x/crypto/bcrypt"

// User is the account record stored in the Users table, keyed by email.
type User struct {
	ID           string `json:"id" dynamodbav:"Id"`
	UserName     string `json:"userName" dynamodbav:"UserName"`
	Email        string `json:"email" dynamodbav:"Email"`
	PasswordHash string `json:"-" dynamodbav:"PasswordHash"`
	CreatedAt    string `json:"createdAt" dynamodbav:"CreatedAt"`
}

// Profile is the safe DTO returned to clients.
type Profile struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

func (u *User) ToProfile() Profile {
	return Profile{ID: u.ID, UserName: u.UserName, Email: u.Email}
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(h), err
}

// ComparePassword checks a plaintext password against a bcrypt hash.
func ComparePassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
