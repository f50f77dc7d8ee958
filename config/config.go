package config

import (
	"os"

	"git.fiblab.net/sim/catalogue/router"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_LISTEN    = "localhost:52101"
	DEFAULT_LOG_LEVEL = "info"
)

type ServerConfig struct {
	// RPC监听地址
	Listen string `yaml:"listen" validate:"hostname_port"`
	// pprof监听地址，为空表示不启动
	Pprof string `yaml:"pprof" validate:"omitempty,hostname_port"`
}

type MongoConfig struct {
	URI string `yaml:"uri"`
}

// Config serve模式的配置文件
type Config struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	// 快照位置 [format: {fspath} or {db}.{col}]
	Snapshot string `yaml:"snapshot" validate:"required_without=Document"`
	// 不使用快照时，直接由JSON请求文档构建
	Document string `yaml:"document"`
	// 请求文档中没有routing_settings时使用
	Routing  *router.Settings `yaml:"routing"`
	LogLevel string           `yaml:"log_level" validate:"oneof=debug info warn error fatal panic"`
}

// Load 读取并校验YAML配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = DEFAULT_LISTEN
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DEFAULT_LOG_LEVEL
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
