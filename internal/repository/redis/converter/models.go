package converter

type ProductInfoRedisModel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	ImageKey    string   `json:"image_key,omitempty"`
}
