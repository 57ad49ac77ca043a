package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Storage   StorageConfig   `yaml:"storage"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Sweeper   SweeperConfig   `yaml:"sweeper"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MongoConfig struct {
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

// StorageConfig 는 미디어 업로드 대상 오브젝트 스토리지 설정이다.
// credentials 는 yaml 보다 STORAGE_ACCESS_KEY_ID / STORAGE_SECRET_ACCESS_KEY 환경변수를 우선한다.
type StorageConfig struct {
	// Driver 는 "s3" 또는 "memory" 이다. memory 는 로컬 개발용이며 재시작 시 사라진다.
	Driver         string             `yaml:"driver"`
	Endpoint       string             `yaml:"endpoint"`
	Region         string             `yaml:"region"`
	Bucket         string             `yaml:"bucket"`
	PublicBaseURL  string             `yaml:"public_base_url"`
	ForcePathStyle bool               `yaml:"force_path_style"`
	Credentials    StorageCredentials `yaml:"credentials"`

	// DefaultTimeoutMs 는 이미지/오디오 등 일반 업로드 1건의 제한 시간이다.
	DefaultTimeoutMs int `yaml:"default_timeout_ms"`
	// VideoTimeoutMs 는 video/ 계열 청크 업로드 1건의 제한 시간이다.
	VideoTimeoutMs int `yaml:"video_timeout_ms"`
	// ChunkSizeBytes 는 video/ 계열 업로드의 multipart 파트 크기이다.
	// MinChunkSizeBytes 보다 작으면 올려서 쓴다.
	ChunkSizeBytes int64 `yaml:"chunk_size_bytes"`
}

// MinChunkSizeBytes 는 S3 multipart 업로드가 마지막 파트를 제외하고 허용하는 최소 파트 크기이다.
const MinChunkSizeBytes = 5 * 1024 * 1024

type StorageCredentials struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type IngestionConfig struct {
	// DefaultExtractor 는 요청에 editor 값이 없을 때 사용할 추출 전략 이름이다. (data-uri | blob-url)
	DefaultExtractor string `yaml:"default_extractor"`
	WordsPerMinute   int    `yaml:"words_per_minute"`
}

type SweeperConfig struct {
	// MinAgeMinutes 보다 최근에 올라간 오브젝트는 진행 중인 업로드일 수 있으므로 지우지 않는다.
	MinAgeMinutes int `yaml:"min_age_minutes"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	config = &c
}

// Parse 는 yaml 설정을 읽고 환경변수 override 와 기본값을 적용한다.
func Parse(data []byte) (AppConfig, error) {
	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return AppConfig{}, err
	}
	applyEnv(&c)
	applyDefaults(&c)
	return c, nil
}

func applyEnv(c *AppConfig) {
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("STORAGE_ACCESS_KEY_ID"); v != "" {
		c.Storage.Credentials.AccessKeyID = v
	}
	if v := os.Getenv("STORAGE_SECRET_ACCESS_KEY"); v != "" {
		c.Storage.Credentials.SecretAccessKey = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
}

func applyDefaults(c *AppConfig) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Mongo.DBName == "" {
		c.Mongo.DBName = "blog"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "s3"
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "auto"
	}
	if c.Storage.DefaultTimeoutMs <= 0 {
		c.Storage.DefaultTimeoutMs = 60_000
	}
	if c.Storage.VideoTimeoutMs <= 0 {
		c.Storage.VideoTimeoutMs = 120_000
	}
	if c.Storage.ChunkSizeBytes <= 0 {
		c.Storage.ChunkSizeBytes = 6 * 1024 * 1024
	}
	if c.Storage.ChunkSizeBytes < MinChunkSizeBytes {
		c.Storage.ChunkSizeBytes = MinChunkSizeBytes
	}
	if c.Ingestion.DefaultExtractor == "" {
		c.Ingestion.DefaultExtractor = "data-uri"
	}
	if c.Ingestion.WordsPerMinute <= 0 {
		c.Ingestion.WordsPerMinute = 200
	}
	if c.Sweeper.MinAgeMinutes <= 0 {
		c.Sweeper.MinAgeMinutes = 60
	}
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
