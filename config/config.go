package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Asset      AssetConfig      `yaml:"asset"`
	Export     ExportConfig     `yaml:"export"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

// LLMConfig 文本生成服务配置
type LLMConfig struct {
	Provider     string        `yaml:"provider"` // http, eino, gemini
	APIURL       string        `yaml:"api_url"`
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	MaxTokens    int           `yaml:"max_tokens"`
	Temperature  float64       `yaml:"temperature"`
	TopP         float64       `yaml:"top_p"`
	SystemPrompt string        `yaml:"system_prompt"`
	Timeout      time.Duration `yaml:"timeout"`       // 单次请求硬超时
	RetryBackoff time.Duration `yaml:"retry_backoff"` // 首次重试等待，之后翻倍
	MaxAttempts  int           `yaml:"max_attempts"`
}

// GenerationConfig 章节生成相关配置
type GenerationConfig struct {
	DocumentInstructions string `yaml:"document_instructions"`
	KnowledgeTextLimit   int    `yaml:"knowledge_text_limit"`
	MinKnowledgeChars    int    `yaml:"min_knowledge_chars"`
}

// AssetConfig 图片素材存储配置
type AssetConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	AccessKey     string        `yaml:"access_key"`
	SecretKey     string        `yaml:"secret_key"`
	Bucket        string        `yaml:"bucket"`
	UseSSL        bool          `yaml:"use_ssl"`
	PublicBaseURL string        `yaml:"public_base_url"` // 设置后不再生成预签名地址
	URLExpiry     time.Duration `yaml:"url_expiry"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
}

type ExportConfig struct {
	PDFEnabled bool          `yaml:"pdf_enabled"`
	ChromeBin  string        `yaml:"chrome_bin"`
	PDFTimeout time.Duration `yaml:"pdf_timeout"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig 返回进程级配置，只在 main 中使用，其余组件通过参数注入
func GetConfig() *Config {
	once.Do(func() {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config.yaml"
		}
		cfg = Load(configPath)
	})
	return cfg
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		LLM: LLMConfig{
			Provider:     "http",
			APIURL:       "https://api.openai.com/v1",
			Model:        "gpt-4o",
			MaxTokens:    8192,
			Temperature:  0.7,
			TopP:         0.95,
			SystemPrompt: "You are an expert bid writer producing technical responses to public tenders. Answer in Markdown.",
			Timeout:      3 * time.Minute,
			RetryBackoff: 2 * time.Second,
			MaxAttempts:  3,
		},
		Generation: GenerationConfig{
			KnowledgeTextLimit: 8000,
			MinKnowledgeChars:  50,
		},
		Asset: AssetConfig{
			Bucket:       "assets",
			URLExpiry:    24 * time.Hour,
			FetchTimeout: 5 * time.Second,
		},
		Export: ExportConfig{
			PDFTimeout: time.Minute,
		},
	}
}

// Load 读取配置文件并叠加环境变量，文件不存在时使用默认值
func Load(path string) *Config {
	config := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	// 环境变量优先级高于配置文件
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" && config.LLM.Provider == "gemini" {
		config.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.APIURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL_NAME"); model != "" {
		config.LLM.Model = model
	}
	if maxTokens := os.Getenv("LLM_MAX_TOKENS"); maxTokens != "" {
		if v, err := strconv.Atoi(maxTokens); err == nil {
			config.LLM.MaxTokens = v
		}
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	// 素材存储
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		config.Asset.Endpoint = endpoint
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		config.Asset.AccessKey = accessKey
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		config.Asset.SecretKey = secretKey
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		config.Asset.Bucket = bucket
	}

	if chromeBin := os.Getenv("EXPORT_CHROME_BIN"); chromeBin != "" {
		config.Export.ChromeBin = chromeBin
		config.Export.PDFEnabled = true
	}

	return config
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
