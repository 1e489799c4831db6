package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	AdminToken string     `yaml:"admin_token" env:"ADMIN_TOKEN" env-required:"true"`
	HTTPServer HTTPServer `yaml:"http_server"`
	DB         DB         `yaml:"db"`
	Cache      Cache      `yaml:"cache"`
	BlobStore  BlobStore  `yaml:"blob_store"`
	Signing    Signing    `yaml:"signing"`
	Files      Files      `yaml:"files"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type DB struct {
	Addr     string `yaml:"addr" env:"DB_ADDR" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-required:"true"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-required:"true"`
	DB       string `yaml:"db" env:"DB_NAME" env-default:"notary"`
}

type Cache struct {
	Addr         string        `yaml:"addr" env:"CACHE_ADDR" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"CACHE_PASSWORD"`
	DB           int           `yaml:"db" env:"CACHE_DB" env-default:"0"`
	Timeout      time.Duration `yaml:"timeout" env:"CACHE_TIMEOUT" env-default:"3s"`
	SessionTTL   time.Duration `yaml:"session_ttl" env-default:"24h"`
	DocumentsTTL time.Duration `yaml:"documents_ttl" env-default:"10m"`
	UploadsTTL   time.Duration `yaml:"uploads_ttl" env-default:"168h"`
}

const (
	BlobDriverS3    = "s3"
	BlobDriverLocal = "local"

	SigningDriverKMS   = "kms"
	SigningDriverLocal = "local"
)

type BlobStore struct {
	Driver            string        `yaml:"driver" env:"BLOB_DRIVER" env-default:"local"`
	Bucket            string        `yaml:"bucket" env:"BLOB_BUCKET"`
	Prefix            string        `yaml:"prefix" env:"BLOB_PREFIX"`
	Region            string        `yaml:"region" env:"BLOB_REGION"`
	Endpoint          string        `yaml:"endpoint" env:"BLOB_ENDPOINT"`
	AccessKey         string        `yaml:"access_key" env:"BLOB_ACCESS_KEY"`
	SecretKey         string        `yaml:"secret_key" env:"BLOB_SECRET_KEY"`
	Path              string        `yaml:"path" env:"BLOB_PATH" env-default:"./storage"`
	BaseURL           string        `yaml:"base_url" env:"BLOB_BASE_URL" env-default:"http://localhost:8080/blobs"`
	PresignTTL        time.Duration `yaml:"presign_ttl" env-default:"15m"`
	PartSize          int64         `yaml:"part_size" env-default:"8388608"`
	UploadConcurrency int           `yaml:"upload_concurrency" env-default:"4"`
}

type Signing struct {
	Driver         string `yaml:"driver" env:"SIGNING_DRIVER" env-default:"local"`
	KeyID          string `yaml:"key_id" env:"SIGNING_KEY_ID"`
	Region         string `yaml:"region" env:"SIGNING_REGION"`
	Endpoint       string `yaml:"endpoint" env:"SIGNING_ENDPOINT"`
	PrivateKeyPath string `yaml:"private_key_path" env:"SIGNING_PRIVATE_KEY_PATH"`
}

type Files struct {
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"FILES_ALLOWED_CONTENT_TYPES" env-default:"application/pdf,image/jpeg,image/png,image/gif,application/vnd.openxmlformats-officedocument.wordprocessingml.document"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		log.Fatal("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(path string) *Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}

// fetchConfigPath resolves the config path from the -config flag, falling back to CONFIG_PATH.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
