package usecase

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/DRSN-tech/seller-agent/pkg/e"
)

// llmRecommendation — ожидаемая структура ответа модели. Поле products
// декодируется толерантно: модель присылает то строки, то числа.
type llmRecommendation struct {
	Response string            `json:"response"`
	Products []json.RawMessage `json:"products"`
}

// extractJSONObject возвращает первую сбалансированную по фигурным скобкам
// подстроку `{...}` из ответа модели. Скобки внутри строковых литералов и
// экранированные кавычки не учитываются. Модели любят заворачивать JSON в
// прозу и markdown-блоки, поэтому парсить ответ целиком нельзя.
func extractJSONObject(reply string) (string, error) {
	start := strings.IndexByte(reply, '{')
	if start < 0 {
		return "", e.ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(reply); i++ {
		ch := reply[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return reply[start : i+1], nil
			}
		}
	}

	return "", e.ErrNoJSONObject
}

// parseRecommendationReply разбирает произвольный ответ модели в пару
// (текст ответа, список идентификаторов товаров). Нечисловые и нестроковые
// элементы products отбрасываются молча.
func parseRecommendationReply(reply string) (string, []string, error) {
	object, err := extractJSONObject(reply)
	if err != nil {
		return "", nil, err
	}

	var parsed llmRecommendation
	if err := json.Unmarshal([]byte(object), &parsed); err != nil {
		return "", nil, e.Wrap("unmarshal recommendation", e.ErrMalformedRecommendation)
	}

	if strings.TrimSpace(parsed.Response) == "" {
		return "", nil, e.ErrMalformedRecommendation
	}

	ids := make([]string, 0, len(parsed.Products))
	for _, raw := range parsed.Products {
		if id, ok := decodeProductID(raw); ok {
			ids = append(ids, id)
		}
	}

	return strings.TrimSpace(parsed.Response), ids, nil
}

func decodeProductID(raw json.RawMessage) (string, bool) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		return asString, asString != ""
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		if _, convErr := strconv.ParseFloat(asNumber.String(), 64); convErr == nil {
			return asNumber.String(), true
		}
	}

	return "", false
}
