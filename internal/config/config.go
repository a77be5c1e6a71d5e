package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"` // 为空时允许所有来源
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
	ChatLimit      ChatLimitConfig    `yaml:"chat_limit"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// ChatLimitConfig 聊天速率限制
type ChatLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	Cooldown     int `yaml:"cooldown"` // 秒
}

// CooldownDuration 返回触发限制后的冷却时长
func (c *ChatLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.Cooldown) * time.Second
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	MaxConnections int      `yaml:"max_connections"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	PackDir          string `yaml:"pack_dir"`          // 曲包目录
	ReconnectTimeout int    `yaml:"reconnect_timeout"` // 掉线重连等待（秒）
	RoomTimeout      int    `yaml:"room_timeout"`      // 空闲大厅房间超时（分钟）
}

// ReconnectTimeoutDuration 返回掉线重连等待时长
func (c *GameConfig) ReconnectTimeoutDuration() time.Duration {
	return time.Duration(c.ReconnectTimeout) * time.Second
}

// RoomTimeoutDuration 返回大厅房间超时时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// 设置默认值
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3170
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = 1024
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Game.PackDir == "" {
		cfg.Game.PackDir = "packs"
	}
	if cfg.Game.ReconnectTimeout == 0 {
		cfg.Game.ReconnectTimeout = 120
	}
	if cfg.Game.RoomTimeout == 0 {
		cfg.Game.RoomTimeout = 30
	}
	applySecurityDefaults(&cfg.Security)

	return &cfg, nil
}

func applySecurityDefaults(sec *SecurityConfig) {
	if sec.RateLimit.MaxPerSecond == 0 {
		sec.RateLimit.MaxPerSecond = 5
	}
	if sec.RateLimit.MaxPerMinute == 0 {
		sec.RateLimit.MaxPerMinute = 60
	}
	if sec.RateLimit.BanDuration == 0 {
		sec.RateLimit.BanDuration = 60
	}
	if sec.MessageLimit.MaxPerSecond == 0 {
		sec.MessageLimit.MaxPerSecond = 20
	}
	if sec.ChatLimit.MaxPerSecond == 0 {
		sec.ChatLimit.MaxPerSecond = 2
	}
	if sec.ChatLimit.MaxPerMinute == 0 {
		sec.ChatLimit.MaxPerMinute = 20
	}
	if sec.ChatLimit.Cooldown == 0 {
		sec.ChatLimit.Cooldown = 5
	}
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           3170,
			MaxConnections: 1024,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Game: GameConfig{
			PackDir:          "packs",
			ReconnectTimeout: 120,
			RoomTimeout:      30,
		},
	}
	applySecurityDefaults(&cfg.Security)
	return cfg
}
