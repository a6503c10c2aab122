package usecase

import (
	"github.com/teleskin-lab/teleskin/pkg/domain/interfaces"
	"github.com/teleskin-lab/teleskin/pkg/service/ai"
	"github.com/teleskin-lab/teleskin/pkg/service/feed"
	"github.com/teleskin-lab/teleskin/pkg/service/imagestore"
)

type UseCases struct {
	repo    interfaces.Repository
	gateway *ai.Gateway
	images  imagestore.Store
	feeds   *feed.Registry

	Record   *RecordUseCase
	Auth     *AuthUseCase
	Chat     *ChatUseCase
	Analysis *AnalysisUseCase
}

type Option func(*UseCases)

// WithGateway sets the generative-AI gateway
func WithGateway(gateway *ai.Gateway) Option {
	return func(uc *UseCases) {
		uc.gateway = gateway
	}
}

// WithImageStore sets the check-in photo store
func WithImageStore(images imagestore.Store) Option {
	return func(uc *UseCases) {
		uc.images = images
	}
}

// WithFeeds sets the notification feed registry
func WithFeeds(feeds *feed.Registry) Option {
	return func(uc *UseCases) {
		uc.feeds = feeds
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.gateway == nil {
		uc.gateway = ai.New(nil, nil)
	}
	if uc.feeds == nil {
		uc.feeds = feed.NewRegistry()
	}

	uc.Record = NewRecordUseCase(repo)
	uc.Auth = NewAuthUseCase(repo, uc.feeds)
	uc.Chat = NewChatUseCase(uc.gateway)
	uc.Analysis = NewAnalysisUseCase(repo, uc.Record, uc.gateway, uc.images, uc.feeds)

	return uc
}
