package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// APIAccess holds exchange credentials for the live/emulate adapters. The
// backtest path never needs them.
type APIAccess struct {
	Key    string
	Secret string
}

// LoadAPIAccess reads credentials from the environment, first loading a
// .env file if one exists alongside the process.
func LoadAPIAccess() (APIAccess, error) {
	_ = godotenv.Load()

	a := APIAccess{
		Key:    os.Getenv("BINANCE_API_KEY"),
		Secret: os.Getenv("BINANCE_API_SECRET"),
	}
	if a.Key == "" || a.Secret == "" {
		return APIAccess{}, fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET must be set")
	}
	return a, nil
}
