package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// OpenAI設定（Embeddings + 回答生成）
	OpenAI OpenAIConfig

	// チャンク分割設定
	Chunking ChunkingConfig

	// 検索設定
	Retrieval RetrievalConfig

	// 回答生成設定
	Answer AnswerConfig

	// HTTPサーバ設定
	Server ServerConfig
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OpenAIConfig はOpenAI API設定
type OpenAIConfig struct {
	APIKey             string
	EmbeddingModel     string
	EmbeddingDimension int
	EmbeddingTimeout   time.Duration
	LLMModel           string
	GenerationTimeout  time.Duration
}

// ChunkingConfig はチャンク分割の設定
type ChunkingConfig struct {
	Size    int // チャンクサイズ（文字数）
	Overlap int // 前チャンクとの重複文字数
}

// RetrievalConfig はベクトル検索の設定
type RetrievalConfig struct {
	TopK           int     // 取得件数の上限
	ScoreThreshold float64 // 関連度スコアの下限
	ExcerptLength  int     // 出典表示用の抜粋文字数
}

// AnswerConfig は回答生成の設定
type AnswerConfig struct {
	MaxContextTokens int // プロンプトに載せるコンテキストのトークン上限
}

// ServerConfig はHTTPサーバの設定
type ServerConfig struct {
	Port          int
	MaxUploadSize int64 // アップロード上限（バイト）
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "docrag"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "docrag"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("OPENAI_EMBEDDING_DIMENSION", 1536),
			EmbeddingTimeout:   getEnvAsDuration("OPENAI_EMBEDDING_TIMEOUT", 30*time.Second),
			LLMModel:           getEnv("OPENAI_LLM_MODEL", "gpt-4o-mini"),
			GenerationTimeout:  getEnvAsDuration("OPENAI_GENERATION_TIMEOUT", 60*time.Second),
		},
		Chunking: ChunkingConfig{
			Size:    getEnvAsInt("CHUNK_SIZE", 500),
			Overlap: getEnvAsInt("CHUNK_OVERLAP", 50),
		},
		Retrieval: RetrievalConfig{
			TopK:           getEnvAsInt("RETRIEVAL_TOP_K", 3),
			ScoreThreshold: getEnvAsFloat("RETRIEVAL_SCORE_THRESHOLD", 0.30),
			ExcerptLength:  getEnvAsInt("RETRIEVAL_EXCERPT_LENGTH", 200),
		},
		Answer: AnswerConfig{
			MaxContextTokens: getEnvAsInt("ANSWER_MAX_CONTEXT_TOKENS", 3000),
		},
		Server: ServerConfig{
			Port:          getEnvAsInt("SERVER_PORT", 8080),
			MaxUploadSize: int64(getEnvAsInt("SERVER_MAX_UPLOAD_SIZE", 32<<20)),
		},
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat は環境変数を浮動小数点数として取得します
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数をtime.Durationとして取得します
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
