package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/DRSN-tech/seller-agent/internal/domain"
	"github.com/DRSN-tech/seller-agent/pkg/e"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

const (
	// retrieveTopK — сколько кандидатов запрашивается у векторного поиска
	retrieveTopK = 12
	// fallbackCatalogLimit — сколько товаров каталога берётся, когда поиск пуст
	fallbackCatalogLimit = 20
	// historyWindow — сколько последних реплик диалога попадает в промпт
	historyWindow = 6
	// maxRecommended — верхняя граница товаров в ответе
	maxRecommended = 5
	// fallbackSampleSize — размер случайной выборки, когда ключевые слова не совпали
	fallbackSampleSize = 4
)

const systemPromptTemplate = `You are a helpful shopping assistant for an online store.
Recommend between 1 and 5 products from the candidate list below. Never invent
products that are not in the list. When the customer refines an earlier request
("cheaper", "a different color"), stay within the product category already
being discussed. Reply with a single JSON object and nothing else:
{"response": "<friendly reply to the customer>", "products": ["<product id>", ...]}

Candidate products:
%s`

// fallbackTemplates — готовые ответы на случай недоступности LLM.
var fallbackTemplates = []string{
	"Here are some products you might like! Take a look and let me know if anything catches your eye.",
	"I picked out a few options for you — happy to tell you more about any of them.",
	"These caught my attention for your request. Want more details on any of them?",
	"Based on what you're looking for, here are my suggestions. Let me know what you think!",
	"Take a look at these picks — I can help you compare them if you'd like.",
}

// RecommendationUseCase собирает рекомендацию по сообщению покупателя.
// Конвейер: RETRIEVE → BUILD_CONTEXT → CALL_LLM → PARSE → RESULT, и из любого
// сбоя выполняется переход в FALLBACK. Каждая стадия возвращает явный
// результат, поэтому функция тотальна: ответ есть всегда.
type RecommendationUseCase struct {
	retrieval   RetrievalUC
	productUC   ProductUC
	productRepo ProductRepository
	chat        ChatCompletionInfra
	logger      logger.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRecommendationUC(
	retrieval RetrievalUC,
	productUC ProductUC,
	productRepo ProductRepository,
	chat ChatCompletionInfra,
	logger logger.Logger,
	rnd *rand.Rand,
) *RecommendationUseCase {
	return &RecommendationUseCase{
		retrieval:   retrieval,
		productUC:   productUC,
		productRepo: productRepo,
		chat:        chat,
		logger:      logger,
		rnd:         rnd,
	}
}

// retrievalStage — результат стадии RETRIEVE.
type retrievalStage struct {
	candidates []ProductInfo
}

// parseStage — результат стадии PARSE после фильтрации по множеству кандидатов.
type parseStage struct {
	response string
	ids      []string
	ok       bool
}

// GetRecommendation возвращает ответ покупателю и идентификаторы
// рекомендованных товаров. Второй результат — признак fallback-ответа.
func (r *RecommendationUseCase) GetRecommendation(ctx context.Context, message string, history []domain.ChatMessage) (*domain.Recommendation, bool) {
	const op = "RecommendationUseCase.GetRecommendation"

	retrieved := r.retrieve(ctx, message)

	reply, err := r.callLLM(ctx, message, history, retrieved.candidates)
	if err != nil {
		r.logger.Warnf("LLM call failed, using fallback: %v", e.Wrap(op, err))
		return r.fallback(ctx, message, retrieved.candidates), true
	}

	parsed := r.parse(reply, retrieved.candidates)
	if !parsed.ok {
		r.logger.Warnf("LLM reply unusable, using fallback: %q", truncateForLog(reply))
		return r.fallback(ctx, message, retrieved.candidates), true
	}

	return domain.NewRecommendation(parsed.response, parsed.ids), false
}

// retrieve выполняет векторный поиск кандидатов; пустой результат поиска
// заменяется первыми товарами каталога в порядке добавления.
func (r *RecommendationUseCase) retrieve(ctx context.Context, message string) retrievalStage {
	const op = "RecommendationUseCase.retrieve"

	ids := r.retrieval.Search(ctx, message, retrieveTopK)
	if len(ids) > 0 {
		candidates, err := r.productUC.GetProductsInfo(ctx, ids)
		if err != nil {
			r.logger.Warnf("Resolving search hits failed: %v", e.Wrap(op, err))
		} else if len(candidates) > 0 {
			return retrievalStage{candidates: candidates}
		}
	}

	products, err := r.productRepo.ListFirst(ctx, fallbackCatalogLimit)
	if err != nil {
		r.logger.Warnf("Catalog head fetch failed: %v", e.Wrap(op, err))
		return retrievalStage{}
	}

	candidates := make([]ProductInfo, 0, len(products))
	for i := range products {
		candidates = append(candidates, NewProductInfoFromProduct(&products[i]))
	}

	return retrievalStage{candidates: candidates}
}

// callLLM собирает контекст и выполняет chat-completion запрос.
func (r *RecommendationUseCase) callLLM(ctx context.Context, message string, history []domain.ChatMessage, candidates []ProductInfo) (string, error) {
	return r.chat.Complete(ctx, r.buildContext(message, history, candidates))
}

// buildContext формирует реплики промпта: системные правила с сериализованными
// кандидатами, последние historyWindow реплик диалога и текущее сообщение.
func (r *RecommendationUseCase) buildContext(message string, history []domain.ChatMessage, candidates []ProductInfo) []ChatTurn {
	serialized, err := json.Marshal(candidates)
	if err != nil {
		serialized = []byte("[]")
	}

	turns := make([]ChatTurn, 0, historyWindow+2)
	turns = append(turns, ChatTurn{
		Role:    "system",
		Content: fmt.Sprintf(systemPromptTemplate, serialized),
	})

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, msg := range history {
		turns = append(turns, ChatTurn{Role: string(msg.Role), Content: msg.Content})
	}

	turns = append(turns, ChatTurn{Role: "user", Content: message})

	return turns
}

// parse разбирает ответ модели и оставляет только известных кандидатов.
// Пустой список после фильтрации делает стадию неуспешной: рекомендация
// без товаров бесполезна, честнее уйти в fallback.
func (r *RecommendationUseCase) parse(reply string, candidates []ProductInfo) parseStage {
	response, ids, err := parseRecommendationReply(reply)
	if err != nil {
		return parseStage{}
	}

	known := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		known[candidate.ID] = struct{}{}
	}

	kept := make([]string, 0, maxRecommended)
	seen := make(map[string]struct{}, maxRecommended)
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
		if len(kept) == maxRecommended {
			break
		}
	}

	if len(kept) == 0 {
		return parseStage{}
	}

	return parseStage{response: response, ids: kept, ok: true}
}

// fallback строит ответ без LLM: скоринг всего каталога по вхождению слов
// запроса, при нулевых совпадениях — случайная выборка фиксированного размера.
// Кандидаты стадии RETRIEVE — лишь запасной пул на случай недоступного каталога.
func (r *RecommendationUseCase) fallback(ctx context.Context, message string, candidates []ProductInfo) *domain.Recommendation {
	pool := r.catalogPool(ctx, candidates)
	if len(pool) == 0 {
		return domain.NewRecommendation(
			"I'm sorry, I couldn't find any products to recommend right now. Please try again later.",
			nil,
		)
	}

	ids := keywordMatch(message, pool)
	if len(ids) == 0 {
		ids = r.randomSample(pool, fallbackSampleSize)
	}

	return domain.NewRecommendation(r.pickTemplate(), ids)
}

// catalogPool возвращает весь каталог для fallback-скоринга. Сбой или пустой
// результат чтения деградируют до кандидатов, чтобы ответ остался тотальным.
func (r *RecommendationUseCase) catalogPool(ctx context.Context, candidates []ProductInfo) []ProductInfo {
	const op = "RecommendationUseCase.catalogPool"

	products, err := r.productRepo.ListAll(ctx)
	if err != nil {
		r.logger.Warnf("Catalog fetch for fallback failed, using retrieved candidates: %v", e.Wrap(op, err))
		return candidates
	}
	if len(products) == 0 {
		return candidates
	}

	pool := make([]ProductInfo, 0, len(products))
	for i := range products {
		pool = append(pool, NewProductInfoFromProduct(&products[i]))
	}

	return pool
}

// keywordMatch считает, сколько слов запроса входит подстрокой в
// name+description+tags кандидата, и возвращает до maxRecommended лучших.
// Сортировка стабильная: при равном счёте сохраняется порядок кандидатов.
func keywordMatch(message string, candidates []ProductInfo) []string {
	tokens := strings.Fields(strings.ToLower(message))
	if len(tokens) == 0 {
		return nil
	}

	scored := make([]scoredID, 0, len(candidates))
	for _, candidate := range candidates {
		text := matchText(candidate)
		score := 0
		for _, token := range tokens {
			if strings.Contains(text, token) {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, scoredID{id: candidate.ID, score: float64(score)})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	limit := maxRecommended
	if limit > len(scored) {
		limit = len(scored)
	}

	ids := make([]string, 0, limit)
	for _, s := range scored[:limit] {
		ids = append(ids, s.id)
	}

	return ids
}

func matchText(candidate ProductInfo) string {
	parts := append([]string{candidate.Name, candidate.Description}, candidate.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// randomSample возвращает n случайных кандидатов без повторов.
func (r *RecommendationUseCase) randomSample(candidates []ProductInfo, n int) []string {
	if n > len(candidates) {
		n = len(candidates)
	}

	r.mu.Lock()
	perm := r.rnd.Perm(len(candidates))
	r.mu.Unlock()

	ids := make([]string, 0, n)
	for _, idx := range perm[:n] {
		ids = append(ids, candidates[idx].ID)
	}

	return ids
}

func (r *RecommendationUseCase) pickTemplate() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fallbackTemplates[r.rnd.Intn(len(fallbackTemplates))]
}

func truncateForLog(s string) string {
	const limit = 200
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
