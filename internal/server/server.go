package server

import (
	"log"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/liup3424/excelAgent/internal/catalog"
	"github.com/liup3424/excelAgent/internal/config"
	"github.com/liup3424/excelAgent/internal/importer"
	"github.com/liup3424/excelAgent/internal/lineage"
	"github.com/liup3424/excelAgent/internal/server/handlers"
	"github.com/liup3424/excelAgent/internal/service/classify"
	"github.com/liup3424/excelAgent/internal/service/normalize"
	"github.com/liup3424/excelAgent/internal/service/resolve"
	"github.com/liup3424/excelAgent/internal/store"
)

// Server HTTP 服务器：对外暴露 上传预处理 / 表目录 / 实体解析 / 血缘查询
type Server struct {
	router   *gin.Engine
	store    *store.Store
	catalog  *catalog.Catalog
	handlers *handlers.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "db", "excelagent.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	cat := catalog.New()
	recorder := lineage.NewRecorder()

	var primary classify.Strategy
	if cfg.Classifier.Endpoint != "" {
		primary = classify.NewRemote(cfg.Classifier.Endpoint, time.Duration(cfg.Classifier.TimeoutMS)*time.Millisecond)
	}
	chain := classify.NewChain(primary, classify.NewHeuristic(), cfg.Preprocess.SampleRows)

	normalizer := normalize.NewNormalizer(normalize.Options{
		TypeThreshold:    cfg.Preprocess.TypeThreshold,
		CategoricalRatio: cfg.Preprocess.CategoricalRatio,
		DatePatterns:     cfg.Preprocess.DatePatterns,
	})
	resolver := resolve.NewResolver(resolve.Options{
		SimilarityThreshold: cfg.Preprocess.SimilarityThreshold,
	})

	coordinator := importer.NewCoordinator(cat, sqliteStore, chain, normalizer, cfg.Preprocess.Workers)

	h := handlers.NewHandler(cat, sqliteStore, recorder, resolver, coordinator, filepath.Join(dataDir, "uploads"))

	s := &Server{
		router:   gin.Default(),
		store:    sqliteStore,
		catalog:  cat,
		handlers: h,
	}

	s.setupRoutes()

	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.handlers.RegisterRoutes(api)
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 释放资源：清空表目录并关闭数据库
func (s *Server) Close() error {
	s.catalog.Clear()
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
