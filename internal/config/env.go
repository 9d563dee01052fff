package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string
	PsqlURL  string
	MongoURL string

	RedisURL      string
	RedisPassword string
	RedisDB       int

	KafkaBrokers      string
	KafkaOutcomeTopic string

	JudgeBaseURL     string
	JudgePollMillis  int
	JudgeMaxAttempts int

	JWTSecret string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
	config := Config{
		HTTPPort:          getEnv("HTTPPORT", "3333"),
		PsqlURL:           getEnv("PSQLURL", "host=localhost port=5432 user=admin password=password dbname=codebattle sslmode=disable"),
		MongoURL:          getEnv("MONGOURL", ""),
		RedisURL:          getEnv("REDISURL", "localhost:6379"),
		RedisPassword:     getEnv("REDISPASSWORD", ""),
		RedisDB:           getEnvInt("REDISDB", 0),
		KafkaBrokers:      getEnv("KAFKABROKERS", "localhost:9092"),
		KafkaOutcomeTopic: getEnv("KAFKAOUTCOMETOPIC", "battle-outcomes"),
		JudgeBaseURL:      getEnv("JUDGEBASEURL", "https://judge0-ce.p.sulu.sh"),
		JudgePollMillis:   getEnvInt("JUDGEPOLLMILLIS", 1000),
		JudgeMaxAttempts:  getEnvInt("JUDGEMAXATTEMPTS", 10),
		JWTSecret:         getEnv("JWTSECRET", "secrettt"),
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
