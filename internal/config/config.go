package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port                 string
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	ChainRPCURL          string
	ContractAddress      string
	ClientDir            string
}

func LoadConfig() Config {
	cfg := Config{
		Port:                 GetEnv("PORT", "8080"),
		DatabaseURL:          GetEnv("DB_URI", ""),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		ChainRPCURL:          GetEnv("CHAIN_RPC_URL", ""),
		ContractAddress:      GetEnv("CONTRACT_ADDRESS", ""),
		ClientDir:            GetEnv("CLIENT_DIR", "./client"),
	}

	log.Printf("Config loaded: Port=%s, ContractAddress=%s, ClientDir=%s",
		cfg.Port, cfg.ContractAddress, cfg.ClientDir)

	return cfg
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
