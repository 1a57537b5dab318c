package core

// ItemMetadata 是物品目录中的静态元数据，对引擎而言每次调用只读。
type ItemMetadata struct {
	ItemID        string  `json:"item_id" yaml:"item_id" validate:"required"`
	Tags          Set     `json:"tags" yaml:"tags"`
	Category      string  `json:"category" yaml:"category"`
	Brand         string  `json:"brand" yaml:"brand"`
	Price         float64 `json:"price" yaml:"price" validate:"gte=0"`
	RatingCount   int     `json:"rating_count" yaml:"rating_count" validate:"gte=0"`
	RatingAverage float64 `json:"rating_average" yaml:"rating_average" validate:"gte=0,lte=5"`
	IsActive      bool    `json:"is_active" yaml:"is_active"`
}

// IndexItems 按 ItemID 建立索引，重复 ID 以后出现者为准。
func IndexItems(items []ItemMetadata) map[string]ItemMetadata {
	out := make(map[string]ItemMetadata, len(items))
	for _, it := range items {
		out[it.ItemID] = it
	}
	return out
}
