package config

import "time"

// Default returns the built-in configuration, including the production
// catalog and cost tables. Load merges file/env values over it.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:        "orderlens",
			Version:     "v1.0.0",
			Environment: "development",
		},
		HTTP: HTTPConfig{
			Port:         8080,
			BodyLimit:    32 << 20,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  90 * time.Second,
		},
		CORS: CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Datasets: DatasetsConfig{
			FetchTimeout: 15 * time.Second,
		},
		Catalog: CatalogConfig{
			Verticals: []string{"pom hl", "pom sh", "otc hl", "otc sh", "otc sk", "pom bg"},
			SKUVerticals: map[string]string{
				"ultimate revival":   "pom hl",
				"power regrowth":     "pom hl",
				"essential boost":    "pom hl",
				"oral mix":           "pom hl",
				"oral minoxidil":     "pom hl",
				"vital recharge":     "pom sh",
				"max power":          "pom sh",
				"delay spray":        "otc sh",
				"essential routine":  "otc sk",
				"advanced routine":   "otc sk",
				"cleanser":           "otc sk",
				"moisturizer spf":    "otc sk",
				"moisturizer":        "otc sk",
				"eye cream":          "otc sk",
				"serum":              "otc sk",
				"shampoo":            "otc hl",
				"conditioner":        "otc hl",
				"regrowth hair pack": "otc hl",
				"regrowth pack":      "otc hl",
				"beard growth serum": "pom bg",
			},
			CompactVerticals: map[string]string{
				"pomhl": "pom hl",
				"pomsh": "pom sh",
				"otchl": "otc hl",
				"otcsh": "otc sh",
				"otcsk": "otc sk",
				"pombg": "pom bg",
			},
			SubscriptionVerticals: []string{"pom hl", "pom bg"},
			VerticalPriority:      []string{"pom hl", "pom bg", "pom sh", "otc hl", "otc sh", "otc sk"},
			PlaceholderOrderIDs:   []string{"stripe"},
		},
		Costs: CostsConfig{
			Legacy: map[string]float64{
				"ultimate revival":   465.12,
				"power regrowth":     444.21,
				"essential boost":    235.75,
				"oral mix":           233.74,
				"oral minoxidil":     214.99,
				"vital recharge":     235.75,
				"max power":          332.95,
				"delay spray":        69.04,
				"essential routine":  62.32,
				"advanced routine":   80.48,
				"cleanser":           23.73,
				"moisturizer spf":    23.73,
				"moisturizer":        26.0,
				"eye cream":          28.27,
				"serum":              23.73,
				"shampoo":            23.73,
				"conditioner":        23.73,
				"regrowth hair pack": 37.35,
				"regrowth pack":      37.35,
				"beard growth serum": 159.0,
			},
			Current: map[string]float64{
				"ultimate revival":   284.7,
				"power regrowth":     271.7,
				"essential boost":    142.35,
				"oral mix":           142.35,
				"oral minoxidil":     129.35,
				"vital recharge":     142.35,
				"max power":          207.35,
				"delay spray":        69.04,
				"essential routine":  62.32,
				"advanced routine":   80.48,
				"cleanser":           23.73,
				"moisturizer spf":    23.73,
				"moisturizer":        26.0,
				"eye cream":          28.27,
				"serum":              23.73,
				"shampoo":            23.73,
				"conditioner":        23.73,
				"regrowth hair pack": 37.35,
				"regrowth pack":      37.35,
				"beard growth serum": 159.0,
			},
			CutoverMonth:  "2025-07",
			RepricedLabel: "Updated pricing",
		},
		Analytics: AnalyticsConfig{
			MaxOffsetMonths:   12,
			OnetimeWindowDays: 30,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
			SuccessThreshold: 2,
		},
	}
}
