package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Voting key builders
func (kb *KeyBuilder) KeyMainOptions() string {
	return kb.BuildKey(KeyMainOptions)
}

func (kb *KeyBuilder) KeyResults() string {
	return kb.BuildKey(KeyResults)
}

func (kb *KeyBuilder) KeyUserVoted(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyUserVoted, userID))
}

// Auth key builders
func (kb *KeyBuilder) KeyTokenBlacklist(tokenHash string) string {
	return kb.BuildKey(fmt.Sprintf(KeyTokenBlacklist, tokenHash))
}

// KeyCustom builds a key from an arbitrary pattern
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(pattern, args...))
}
