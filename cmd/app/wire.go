//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/agriconnect/agriconnect/internal/bootstrap"
	"github.com/agriconnect/agriconnect/internal/domain/advisory"
	"github.com/agriconnect/agriconnect/internal/domain/auth"
	"github.com/agriconnect/agriconnect/internal/domain/chat"
	"github.com/agriconnect/agriconnect/internal/domain/community"
	"github.com/agriconnect/agriconnect/internal/domain/croprec"
	"github.com/agriconnect/agriconnect/internal/domain/diagnosis"
	"github.com/agriconnect/agriconnect/internal/domain/market"
	"github.com/agriconnect/agriconnect/internal/domain/media"
	"github.com/agriconnect/agriconnect/internal/domain/pricing"
	"github.com/agriconnect/agriconnect/internal/domain/weatheradvice"
	"github.com/agriconnect/agriconnect/internal/infra/config"
	"github.com/agriconnect/agriconnect/internal/infra/croprec/hfspace"
	"github.com/agriconnect/agriconnect/internal/infra/llm/gemini"
	"github.com/agriconnect/agriconnect/internal/infra/mandi/datagovin"
	"github.com/agriconnect/agriconnect/internal/infra/weather/weatherapi"
	httpiface "github.com/agriconnect/agriconnect/internal/interface/http"
	"github.com/agriconnect/agriconnect/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideGeminiClient,
		provideMandiClient,
		provideWeatherClient,
		provideCropRecClient,
		provideDiagnosisConfig,
		providePricingConfig,
		provideWeatherAdviceConfig,
		provideAuthConfig,
		provideCommunityConfig,
		provideMediaConfig,
		providePostgresPool,
		provideUserRepository,
		provideCommunityRepository,
		provideMarketRepository,
		provideChatRepository,
		provideTrendStore,
		provideObjectStorage,
		diagnosis.NewService,
		pricing.NewService,
		weatheradvice.NewService,
		croprec.NewService,
		auth.NewService,
		community.NewService,
		market.NewService,
		chat.NewService,
		media.NewService,
		wire.Bind(new(advisory.GenerativeClient), new(*gemini.Client)),
		wire.Bind(new(community.Embedder), new(*gemini.Client)),
		wire.Bind(new(pricing.MandiClient), new(*datagovin.Client)),
		wire.Bind(new(weatheradvice.WeatherClient), new(*weatherapi.Client)),
		wire.Bind(new(croprec.WeatherClient), new(*weatherapi.Client)),
		wire.Bind(new(croprec.RecommenderClient), new(*hfspace.Client)),
		httpiface.NewAIHandler,
		httpiface.NewAuthHandler,
		httpiface.NewCommunityHandler,
		httpiface.NewMarketHandler,
		httpiface.NewChatHandler,
		httpiface.NewMediaHandler,
		wire.Struct(new(httpiface.Handlers), "*"),
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
