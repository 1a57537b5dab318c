package core

import "time"

// Config 是引擎的集中配置，所有可调常量都在这里，带文档化默认值。
// 由 config.Load 从 默认值 -> YAML 文件 -> 环境变量 分层加载。
type Config struct {
	Quality     QualityConfig     `koanf:"quality"`
	Preference  PreferenceConfig  `koanf:"preference"`
	Session     SessionConfig     `koanf:"session"`
	Context     ContextConfig     `koanf:"context"`
	Exploration ExplorationConfig `koanf:"exploration"`
	Selection   SelectionConfig   `koanf:"selection"`
	Diversity   DiversityConfig   `koanf:"diversity"`
	Storage     StorageConfig     `koanf:"storage"`

	// HistoryWindow 读取事件的回看窗口，0 表示全部历史
	HistoryWindow time.Duration `koanf:"history_window" validate:"gte=0"`

	// ExtraTags 追加到标签词表中的业务标签
	ExtraTags []string `koanf:"extra_tags"`

	// Seed 探索随机源的种子，0 使用固定默认值
	Seed int64 `koanf:"seed"`
}

// QualityConfig 品质分（Wilson 下界）参数
type QualityConfig struct {
	// Baseline 无评分时的固定基线分
	Baseline float64 `koanf:"baseline" validate:"gte=0,lte=100"`
	// Z 置信水平对应的 z 值（95% -> 1.96）
	Z float64 `koanf:"z" validate:"gt=0"`
}

// PreferenceConfig 偏好估计参数
type PreferenceConfig struct {
	// HalfLifeDays 衰减半衰期（天）：事件权重每 HalfLifeDays 天减半
	HalfLifeDays float64 `koanf:"half_life_days" validate:"gt=0"`
	// MinPriceEvents 计算价格带所需的最少 accept 事件数
	MinPriceEvents int `koanf:"min_price_events" validate:"gte=1"`
	// PriceLowQuantile / PriceHighQuantile 价格带分位点
	PriceLowQuantile  float64 `koanf:"price_low_quantile" validate:"gte=0,lte=1"`
	PriceHighQuantile float64 `koanf:"price_high_quantile" validate:"gte=0,lte=1,gtefield=PriceLowQuantile"`
	// BrandThreshold / CategoryThreshold 进入偏好集合的最小衰减权重和
	BrandThreshold    float64 `koanf:"brand_threshold" validate:"gte=0"`
	CategoryThreshold float64 `koanf:"category_threshold" validate:"gte=0"`
}

// SessionConfig 会话状态机参数
type SessionConfig struct {
	// CategoryShiftThreshold 连续拒绝达到该值进入 CategoryShiftPending
	CategoryShiftThreshold int `koanf:"category_shift_threshold" validate:"gte=1"`
	// BreakThreshold 连续拒绝达到该值进入 BreakSuggested
	BreakThreshold int `koanf:"break_threshold" validate:"gtefield=CategoryShiftThreshold"`
	// IdleTimeout 会话空闲超时，超时后下一次访问重置会话；0 表示不超时
	IdleTimeout time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	// MaxRetries 展示记录遇到写冲突时的内部重试次数
	MaxRetries int `koanf:"max_retries" validate:"gte=0"`
	// StateTTL 会话状态在 KV 存储中的过期时间（秒），0 表示不过期
	StateTTL int `koanf:"state_ttl" validate:"gte=0"`
}

// ContextRule 是一条上下文调权规则：CEL 表达式为真时乘以 Multiplier。
// 可用变量：tags(list<string>)、hour、weekday(0=周日)、month、season。
type ContextRule struct {
	Name       string  `koanf:"name" validate:"required"`
	Expr       string  `koanf:"expr" validate:"required"`
	Multiplier float64 `koanf:"multiplier" validate:"gt=0"`
}

// ContextConfig 上下文（季节/时段/星期）调权参数
type ContextConfig struct {
	InSeason  float64       `koanf:"in_season" validate:"gt=0"`
	AllSeason float64       `koanf:"all_season" validate:"gt=0"`
	OffSeason float64       `koanf:"off_season" validate:"gt=0"`
	Rules     []ContextRule `koanf:"rules" validate:"dive"`
}

// ExplorationConfig 探索/利用参数
type ExplorationConfig struct {
	EpsilonMax float64 `koanf:"epsilon_max" validate:"gt=0,lte=1,gtefield=EpsilonMin"`
	EpsilonMin float64 `koanf:"epsilon_min" validate:"gt=0,lte=1"`
	// DecaySwipes ε 从 max 向 min 指数衰减的尺度（滑动次数）
	DecaySwipes float64 `koanf:"decay_swipes" validate:"gt=0"`
	// NovelTags 视为"新奇/趋势"的标签
	NovelTags []string `koanf:"novel_tags"`
}

// SelectionConfig 个性化打分参数
type SelectionConfig struct {
	LikedWeight    float64 `koanf:"liked_weight" validate:"gte=0"`
	DislikedWeight float64 `koanf:"disliked_weight" validate:"gte=0,lte=1"`
	BrandBoost     float64 `koanf:"brand_boost" validate:"gte=0"`
	CategoryBoost  float64 `koanf:"category_boost" validate:"gte=0"`
	// PriceSensitivity 价格带外的平滑惩罚强度：exp(-PriceSensitivity * 相对偏离)
	PriceSensitivity float64 `koanf:"price_sensitivity" validate:"gte=0"`
	// AffinityFloor 亲和度下限，保证分数为正
	AffinityFloor float64 `koanf:"affinity_floor" validate:"gt=0"`
	// CategoryShiftPenalty CategoryShiftPending 时被拒类目的乘性惩罚
	CategoryShiftPenalty float64 `koanf:"category_shift_penalty" validate:"gte=0,lte=1"`
	// BlockedItems 全局屏蔽的物品
	BlockedItems []string `koanf:"blocked_items"`
}

// DiversityConfig 单批多样性上限
type DiversityConfig struct {
	MaxPerCategory    int `koanf:"max_per_category" validate:"gte=0"`
	MaxPerBrand       int `koanf:"max_per_brand" validate:"gte=0"`
	MaxPerPriceBucket int `koanf:"max_per_price_bucket" validate:"gte=0"`
	// PriceBuckets 价格分桶的升序边界，例如 [50,100,200] 得到 4 个桶
	PriceBuckets []float64 `koanf:"price_buckets"`
}

// StorageConfig 存储后端配置
type StorageConfig struct {
	// Backend 会话状态与事件日志的后端：memory / redis / sqlite
	Backend string `koanf:"backend" validate:"oneof=memory redis sqlite"`
	// CatalogFile 物品目录 YAML 文件；sqlite 后端下为空时读取数据库中的目录
	CatalogFile string      `koanf:"catalog_file"`
	Redis       RedisConfig `koanf:"redis"`
	// SQLitePath sqlite 数据库文件路径
	SQLitePath string `koanf:"sqlite_path"`
}

// RedisConfig Redis 连接参数
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db" validate:"gte=0"`
	PoolSize     int           `koanf:"pool_size" validate:"gte=0"`
	MinIdleConns int           `koanf:"min_idle_conns" validate:"gte=0"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	// KeyPrefix 会话状态、屏蔽名单与事件日志 key 的公共前缀
	KeyPrefix string `koanf:"key_prefix"`
}

// 默认值
const (
	DefaultQualityBaseline        = 30.0
	DefaultQualityZ               = 1.96
	DefaultHalfLifeDays           = 14.0
	DefaultMinPriceEvents         = 3
	DefaultCategoryShiftThreshold = 3
	DefaultBreakThreshold         = 5
	DefaultEpsilonMax             = 0.3
	DefaultEpsilonMin             = 0.05
	DefaultDecaySwipes            = 200.0
	DefaultMaxPerCategory         = 2
	DefaultMaxPerBrand            = 2
	DefaultMaxPerPriceBucket      = 3
	DefaultSeed                   = 42
)

// DefaultConfig 返回带文档化默认值的配置。
func DefaultConfig() Config {
	return Config{
		Quality: QualityConfig{
			Baseline: DefaultQualityBaseline,
			Z:        DefaultQualityZ,
		},
		Preference: PreferenceConfig{
			HalfLifeDays:      DefaultHalfLifeDays,
			MinPriceEvents:    DefaultMinPriceEvents,
			PriceLowQuantile:  0.25,
			PriceHighQuantile: 0.75,
			BrandThreshold:    0.5,
			CategoryThreshold: 0.5,
		},
		Session: SessionConfig{
			CategoryShiftThreshold: DefaultCategoryShiftThreshold,
			BreakThreshold:         DefaultBreakThreshold,
			IdleTimeout:            30 * time.Minute,
			MaxRetries:             3,
		},
		Context: ContextConfig{
			InSeason:  2.0,
			AllSeason: 1.0,
			OffSeason: 0.5,
			Rules: []ContextRule{
				{Name: "evening_leisure", Expr: `hour >= 18 && hour < 23 && "leisure" in tags`, Multiplier: 1.2},
				{Name: "weekend_leisure", Expr: `(weekday == 0 || weekday == 6) && "leisure" in tags`, Multiplier: 1.15},
				{Name: "workday_morning_work", Expr: `weekday >= 1 && weekday <= 5 && hour >= 7 && hour < 10 && "work" in tags`, Multiplier: 1.1},
			},
		},
		Exploration: ExplorationConfig{
			EpsilonMax:  DefaultEpsilonMax,
			EpsilonMin:  DefaultEpsilonMin,
			DecaySwipes: DefaultDecaySwipes,
			NovelTags:   []string{TagNew, TagTrending},
		},
		Selection: SelectionConfig{
			LikedWeight:          1.0,
			DislikedWeight:       0.8,
			BrandBoost:           0.2,
			CategoryBoost:        0.2,
			PriceSensitivity:     2.0,
			AffinityFloor:        0.05,
			CategoryShiftPenalty: 0.3,
		},
		Diversity: DiversityConfig{
			MaxPerCategory:    DefaultMaxPerCategory,
			MaxPerBrand:       DefaultMaxPerBrand,
			MaxPerPriceBucket: DefaultMaxPerPriceBucket,
			PriceBuckets:      []float64{25, 50, 100, 200, 500},
		},
		Storage: StorageConfig{
			Backend:    "memory",
			SQLitePath: "swipekit.db",
			Redis: RedisConfig{
				Addr:         "localhost:6379",
				PoolSize:     10,
				MinIdleConns: 5,
				DialTimeout:  5 * time.Second,
				ReadTimeout:  3 * time.Second,
				WriteTimeout: 3 * time.Second,
				KeyPrefix:    "swipekit:",
			},
		},
		HistoryWindow: 90 * 24 * time.Hour,
		ExtraTags:     []string{"leisure", "work"},
		Seed:          DefaultSeed,
	}
}
