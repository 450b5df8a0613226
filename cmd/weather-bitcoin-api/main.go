package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	httpapi "weatherbtc/internal/api/http"
	"weatherbtc/internal/config"
	"weatherbtc/internal/logger"
	"weatherbtc/internal/metrics"
	"weatherbtc/internal/price"
	priceproviders "weatherbtc/internal/price/providers"
	"weatherbtc/internal/probe"
	"weatherbtc/internal/weather"
	weatherproviders "weatherbtc/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Shared HTTP client for outbound source calls. Per-source deadlines are
	// tighter and enforced by the aggregators.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	weatherProvs := buildWeatherProviders(httpClient, cfg, log)
	priceProvs := buildPriceProviders(httpClient, cfg, log)

	weatherAgg := weather.NewAggregator(weatherProvs, log)
	priceAgg := price.NewAggregator(priceProvs, log)

	// Periodic source health checks backing /status/sources.
	registry := probe.NewRegistry()
	prober := probe.New(registry, weatherProvs, priceProvs, cfg.ProbeCity, cfg.ProbeInterval, log)
	if err := prober.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start prober")
	}
	defer prober.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-bitcoin-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          90 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-bitcoin-api",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	httpapi.RegisterRoutes(app, weatherAgg, priceAgg, registry, log)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("weather-bitcoin-api listening")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

// buildWeatherProviders constructs the weather adapters in the configured
// priority order. Unrecognized descriptor names are skipped with a warning.
func buildWeatherProviders(client *http.Client, cfg *config.AppConfig, log zerolog.Logger) []weather.Provider {
	var provs []weather.Provider
	for _, desc := range cfg.WeatherSources {
		switch desc.Name {
		case "openweather":
			provs = append(provs, weatherproviders.NewOpenWeatherProvider(client, desc, cfg.OpenWeatherAPIKey))
		case "weatherapi":
			provs = append(provs, weatherproviders.NewWeatherAPIProvider(client, desc, cfg.WeatherAPIKey))
		case "wttr.in":
			provs = append(provs, weatherproviders.NewWttrProvider(client, desc))
		default:
			log.Warn().Str("source", desc.Name).Msg("unknown weather source in configuration, skipping")
		}
	}
	return provs
}

// buildPriceProviders constructs the price adapters in the configured
// priority order.
func buildPriceProviders(client *http.Client, cfg *config.AppConfig, log zerolog.Logger) []price.Provider {
	var provs []price.Provider
	for _, desc := range cfg.PriceSources {
		switch desc.Name {
		case "nobitex":
			provs = append(provs, priceproviders.NewNobitexProvider(client, desc))
		case "kraken":
			provs = append(provs, priceproviders.NewKrakenProvider(client, desc))
		case "coinmarketcap":
			provs = append(provs, priceproviders.NewCoinMarketCapProvider(client, desc, cfg.CoinMarketCapAPIKey))
		case "binance":
			provs = append(provs, priceproviders.NewBinanceProvider(client, desc))
		case "coinbase":
			provs = append(provs, priceproviders.NewCoinbaseProvider(client, desc))
		case "blockchain":
			provs = append(provs, priceproviders.NewBlockchainProvider(client, desc))
		default:
			log.Warn().Str("source", desc.Name).Msg("unknown price source in configuration, skipping")
		}
	}
	return provs
}
