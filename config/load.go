// Package config 加载引擎配置，并维护配置驱动选品链所需的 Node 注册表。
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/swipekit/augment"
	"github.com/rushteam/swipekit/core"
)

// EnvPrefix 是环境变量前缀：SWIPEKIT_SESSION_IDLE_TIMEOUT -> session.idle_timeout
const EnvPrefix = "SWIPEKIT_"

// sections 是 core.Config 的嵌套段，按长度倒序匹配以处理 storage.redis
var sections = func() []string {
	s := []string{
		"quality", "preference", "session", "context", "exploration",
		"selection", "diversity", "storage", "storage_redis",
	}
	sort.Slice(s, func(i, j int) bool { return len(s[i]) > len(s[j]) })
	return s
}()

var validate = validator.New()

// Load 分层加载配置：默认值 -> YAML 文件（path 为空时跳过）-> SWIPEKIT_* 环境变量，
// 然后做结构校验并预编译上下文规则。
func Load(path string) (core.Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(core.DefaultConfig(), "koanf"), nil); err != nil {
		return core.Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return core.Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return core.Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg core.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return core.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

// Validate 校验配置取值范围，并确认每条上下文规则都能编译
func Validate(cfg core.Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := augment.New(cfg.Context); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// envKey 把环境变量名映射为 koanf 路径：
//
//	SWIPEKIT_SEED                     -> seed
//	SWIPEKIT_SESSION_IDLE_TIMEOUT     -> session.idle_timeout
//	SWIPEKIT_STORAGE_REDIS_ADDR       -> storage.redis.addr
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, sec := range sections {
		if rest, ok := strings.CutPrefix(key, sec+"_"); ok {
			return strings.ReplaceAll(sec, "_", ".") + "." + rest
		}
	}
	return key
}
