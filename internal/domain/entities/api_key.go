package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DefaultApiKeyName is used when a key is issued without a name
const DefaultApiKeyName = "Default"

// ApiKey represents a capability token owned by a single user
type ApiKey struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	Secret     string    `json:"apiKey"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsedAt null.Time `json:"lastUsedAt"`
}

type CreateApiKeyInput struct {
	Name string `json:"name"`
}

type CreateApiKeyResponse struct {
	Success bool    `json:"success"`
	ApiKey  string  `json:"apiKey"`
	Key     *ApiKey `json:"key"`
}
