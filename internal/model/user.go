package model

import "time"

type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CognitoSub   string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
