package repositories

// RecordStore is the durable storage for users, api keys and moderation
// actions. Every backend implements the whole contract.
type RecordStore interface {
	UserRepository
	ApiKeyRepository
	ModerationRepository
	UnitOfWork
}
