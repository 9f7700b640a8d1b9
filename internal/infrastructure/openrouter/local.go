package openrouter

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// LocalDimension — размерность детерминированного локального эмбеддинга.
const LocalDimension = 384

// LocalEmbedding строит детерминированный вектор из sha256-хэша текста в нижнем
// регистре: байты хэша интерпретируются как float32, вектор дополняется нулями
// до фиксированной размерности и L2-нормализуется. Одинаковый текст всегда даёт
// одинаковый вектор; сеть не используется.
func LocalEmbedding(text string) []float32 {
	sum := sha256.Sum256([]byte(strings.ToLower(text)))

	vec := make([]float32, 0, LocalDimension)
	for i := 0; i+4 <= len(sum); i += 4 {
		bits := binary.LittleEndian.Uint32(sum[i : i+4])
		f := math.Float32frombits(bits)
		// NaN/Inf от произвольных битов заменяются детерминированной проекцией,
		// чтобы норма вектора оставалась конечной
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			f = float32(bits)/float32(math.MaxUint32) - 0.5
		}
		vec = append(vec, f)
	}

	for len(vec) < LocalDimension {
		vec = append(vec, 0)
	}
	vec = vec[:LocalDimension]

	return normalize(vec)
}

// localEmbeddings применяет LocalEmbedding к каждому тексту, сохраняя порядок.
func localEmbeddings(texts []string) [][]float32 {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, LocalEmbedding(text))
	}
	return vectors
}

// normalize приводит вектор к единичной L2-норме. Нулевой вектор не меняется.
func normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}

	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}
