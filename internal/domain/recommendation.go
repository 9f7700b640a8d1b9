package domain

// Recommendation — результат одного хода рекомендации: текстовый ответ
// и упорядоченный список идентификаторов товаров (0–5).
// Не персистится сам по себе: вызывающая сторона сохраняет его как реплику ассистента.
type Recommendation struct {
	Response   string
	ProductIDs []string
}

func NewRecommendation(response string, productIDs []string) *Recommendation {
	if productIDs == nil {
		productIDs = []string{}
	}
	return &Recommendation{
		Response:   response,
		ProductIDs: productIDs,
	}
}
