package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	defaultMaxFileSize      = 100 << 20 // 100 MiB per file part
	defaultMaxFilesPerField = 2
	defaultUploadDir        = "./uploads"
	defaultBucketName       = "uploads"
)

// Server is the root service configuration.
type Server struct {
	API    Api    `yaml:"api"`
	Mongo  Mongo  `yaml:"mongo"`
	Upload Upload `yaml:"upload"`
}

type Api struct {
	HTTPAddr string `yaml:"http_addr"`
}

// Mongo points at the document database backing the blob store and the
// profile collections. An empty URI switches the service to in-memory
// stores, which is only meant for local runs.
type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	Bucket   string `yaml:"bucket"`
}

// Upload holds the ingest limits enforced while a request body streams in.
type Upload struct {
	MaxFileSize      int64  `yaml:"max_file_size"`
	MaxFilesPerField int    `yaml:"max_files_per_field"`
	Dir              string `yaml:"dir"`
}

func Parse(path string) (Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Server{}, fmt.Errorf("can't read config file: %w", err)
	}

	var cfg Server
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return Server{}, fmt.Errorf("can't parse config file: %w", err)
	}

	if cfg.Upload.MaxFileSize == 0 {
		cfg.Upload.MaxFileSize = defaultMaxFileSize
	}
	if cfg.Upload.MaxFilesPerField == 0 {
		cfg.Upload.MaxFilesPerField = defaultMaxFilesPerField
	}
	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = defaultUploadDir
	}
	if cfg.Mongo.Bucket == "" {
		cfg.Mongo.Bucket = defaultBucketName
	}

	return cfg, nil
}

func (s Server) Validate() error {
	if s.API.HTTPAddr == "" {
		return errors.New("api.http_addr is required")
	}

	if s.Mongo.URI != "" && s.Mongo.Database == "" {
		return errors.New("mongo.database is required when mongo.uri is set")
	}

	if s.Upload.MaxFileSize <= 0 {
		return errors.New("upload.max_file_size must be positive")
	}

	if s.Upload.MaxFilesPerField <= 0 {
		return errors.New("upload.max_files_per_field must be positive")
	}

	if s.Upload.Dir == "" {
		return errors.New("upload.dir is required")
	}

	return nil
}
