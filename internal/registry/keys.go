package registry

import (
	"github.com/nfrund/propdesk/internal/auth"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/pubsub"
	"github.com/nfrund/propdesk/internal/storage"
)

// Core services registered by the server before any module is registered.
// Module-owned services declare their keys in their own package.
var (
	KeyRepositories = Key[*domain.Repositories]("core.domain.Repositories")
	KeyPublisher    = Key[pubsub.Publisher]("core.pubsub.Publisher")
	KeySubscriber   = Key[pubsub.Subscriber]("core.pubsub.Subscriber")
	KeyUploader     = Key[*storage.Uploader]("core.storage.Uploader")
	KeyEmailSender  = Key[domain.EmailSender]("core.domain.EmailSender")
	KeyAuthService  = Key[*auth.Service]("core.auth.Service")
)
