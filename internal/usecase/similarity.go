package usecase

import (
	"math"
	"sort"

	"github.com/DRSN-tech/seller-agent/internal/domain"
)

const similarityEpsilon = 1e-8

// cosineSimilarity возвращает косинусную близость двух векторов.
// Векторы разной размерности несравнимы и получают нулевую близость, как и
// пары, где хотя бы одна норма меньше эпсилона.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom < similarityEpsilon {
		return 0
	}

	return dot / denom
}

type scoredID struct {
	id    string
	score float64
}

// rankTopK сортирует кандидатов по убыванию близости к запросу и возвращает
// идентификаторы первых k. Сортировка стабильная: при равных близостях
// сохраняется исходный порядок кандидатов.
func rankTopK(query []float32, candidates []domain.EmbeddingRecord, k int) []string {
	scored := make([]scoredID, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, scoredID{
			id:    candidate.ProductID,
			score: cosineSimilarity(query, candidate.Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if k > len(scored) {
		k = len(scored)
	}

	ids := make([]string, 0, k)
	for _, s := range scored[:k] {
		ids = append(ids, s.id)
	}

	return ids
}
