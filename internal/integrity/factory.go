package integrity

import (
	"time"

	"talkwire/infrastructure/cache"
	"talkwire/internal/repository"
)

type TTLConfig struct {
	Dialog  time.Duration
	Dialogs time.Duration
	Unread  time.Duration
}

// Factory builds integrity managers bound to the shared cache store and
// message repository. Sessions create managers per connection through it
// instead of reaching for process-wide state.
type Factory struct {
	store    cache.Store
	messages repository.MessageRepository
	ttl      TTLConfig
}

func NewFactory(store cache.Store, messages repository.MessageRepository, ttl TTLConfig) *Factory {
	return &Factory{
		store:    store,
		messages: messages,
		ttl:      ttl,
	}
}

func (f *Factory) Dialog(ownerId, partnerId int64) *DialogIntegrity {
	return NewDialogIntegrity(ownerId, partnerId, f.store, f.messages, f.ttl.Dialog)
}

func (f *Factory) Dialogs(userId int64) *DialogsIntegrity {
	return NewDialogsIntegrity(userId, f.store, f.messages, f.Unread(userId), f.ttl.Dialogs)
}

func (f *Factory) Unread(userId int64) *UnreadDialogs {
	return NewUnreadDialogs(userId, f.store, f.messages, f.ttl.Unread)
}
