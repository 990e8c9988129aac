package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/docchat/internal/activation"
	"github.com/nikhilbhutani/docchat/internal/api/handlers"
	"github.com/nikhilbhutani/docchat/internal/api/middleware"
	"github.com/nikhilbhutani/docchat/internal/cache"
	"github.com/nikhilbhutani/docchat/internal/chat"
	"github.com/nikhilbhutani/docchat/internal/config"
	"github.com/nikhilbhutani/docchat/internal/document"
	"github.com/nikhilbhutani/docchat/internal/embedding"
	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/nikhilbhutani/docchat/internal/queue"
	"github.com/nikhilbhutani/docchat/internal/rag"
	"github.com/nikhilbhutani/docchat/internal/storage"
	"github.com/nikhilbhutani/docchat/internal/vectorstore"
	"github.com/nikhilbhutani/docchat/pkg/chunker"
)

type Router struct {
	mux         *chi.Mux
	db          *pgxpool.Pool
	redis       *redis.Client
	cfg         *config.Config
	llmGW       llm.Gateway
	blobs       storage.BlobStore
	queueClient *queue.Client
	limiter     *middleware.RateLimiter
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, blobs storage.BlobStore, qc *queue.Client) *Router {
	return &Router{
		mux:         chi.NewRouter(),
		db:          db,
		redis:       rdb,
		cfg:         cfg,
		llmGW:       llm.NewGateway(cfg.LLM),
		blobs:       blobs,
		queueClient: qc,
		limiter:     middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}
}

// Close releases background resources owned by the router.
func (rt *Router) Close() {
	rt.limiter.Close()
}

// Handlers groups every HTTP handler the service exposes.
type Handlers struct {
	Health       *handlers.HealthHandler
	Models       *handlers.ModelHandler
	Conversation *handlers.ConversationHandler
	Documents    *handlers.DocumentHandler
	Context      *handlers.ContextHandler
}

// BuildServices wires the long-lived components. Embedder and index handles
// are created once here and shared by every request.
func BuildServices(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, gw llm.Gateway, blobs storage.BlobStore) (*document.Service, *activation.Controller, *chat.Orchestrator, *cache.RebuildStatusStore) {
	registry := document.NewPgRegistry(db)
	docSvc := document.NewService(registry, blobs)

	index := vectorstore.NewPgVectorStore(db)
	embedSvc := embedding.NewService(gw, cfg.Embedding.Provider, cfg.Embedding.Model)

	indexer := rag.NewIndexer(document.NewTextExtractor(), embedSvc, index, rag.IndexerOptions{
		Collection: cfg.RAG.Collection,
		Chunking: chunker.ChunkOptions{
			ChunkSize:    cfg.RAG.ChunkSize,
			ChunkOverlap: cfg.RAG.ChunkOverlap,
			Strategy:     cfg.RAG.ChunkStrategy,
		},
	})

	status := cache.NewRebuildStatusStore(cache.NewCache(rdb, "docchat:"))
	controller := activation.NewController(registry, blobs, index, indexer, status)

	orchestrator := chat.NewOrchestrator(
		chat.NewPgHistoryStore(db),
		rag.NewContextualizer(gw),
		rag.NewRetriever(index, embedSvc, rag.RetrieverOptions{
			Collection: cfg.RAG.Collection,
			Hybrid:     cfg.RAG.Hybrid,
			MinScore:   cfg.RAG.MinScore,
		}),
		rag.NewGenerator(gw),
		gw,
		chat.OrchestratorConfig{DefaultModel: cfg.LLM.DefaultModel, TopK: cfg.RAG.TopK},
	)

	return docSvc, controller, orchestrator, status
}

func (rt *Router) Setup() http.Handler {
	docSvc, controller, orchestrator, status := BuildServices(rt.db, rt.redis, rt.cfg, rt.llmGW, rt.blobs)

	h := Handlers{
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": rt.db,
			"redis":    cache.NewCache(rt.redis, ""),
		}),
		Models:       handlers.NewModelHandler(rt.llmGW),
		Conversation: handlers.NewConversationHandler(orchestrator),
		Documents:    handlers.NewDocumentHandler(docSvc),
		Context:      handlers.NewContextHandler(controller, rt.queueClient, status),
	}

	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.CORSOrigins))
	r.Use(rt.limiter.Limit)

	Routes(r, h)
	return r
}

// Routes mounts the public endpoints on r.
func Routes(r chi.Router, h Handlers) {
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)

	r.Route("/model", func(r chi.Router) {
		r.Get("/version", h.Models.ChatModels)
		r.Get("/embedding/version", h.Models.EmbeddingModels)
		r.Get("/persona", h.Models.Personas)
	})

	r.Post("/conversation", h.Conversation.Converse)

	r.Route("/document", func(r chi.Router) {
		r.Post("/upload", h.Documents.Upload)
		r.Get("/list", h.Documents.List)
		r.Post("/delete", h.Documents.Delete)
		r.Post("/build_context", h.Context.Build)
		r.Post("/build_context/async", h.Context.BuildAsync)
		r.Get("/build_context/status", h.Context.Status)
	})
}
