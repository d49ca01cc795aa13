package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/liup3424/excelAgent/internal/catalog"
	"github.com/liup3424/excelAgent/internal/importer"
	"github.com/liup3424/excelAgent/internal/lineage"
	"github.com/liup3424/excelAgent/internal/model"
	"github.com/liup3424/excelAgent/internal/service/resolve"
	"github.com/liup3424/excelAgent/internal/store"
)

// Handler API 处理器
type Handler struct {
	catalog     *catalog.Catalog
	store       *store.Store
	recorder    *lineage.Recorder
	resolver    *resolve.Resolver
	coordinator *importer.Coordinator
	uploadDir   string
}

// NewHandler 创建处理器
func NewHandler(cat *catalog.Catalog, st *store.Store, rec *lineage.Recorder, res *resolve.Resolver, coord *importer.Coordinator, uploadDir string) *Handler {
	return &Handler{
		catalog:     cat,
		store:       st,
		recorder:    rec,
		resolver:    res,
		coordinator: coord,
		uploadDir:   uploadDir,
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.handleUpload)
	rg.GET("/tables", h.handleListTables)
	rg.POST("/resolve", h.handleResolve)
	rg.GET("/lineage/:queryID", h.handleLineage)
}

// handleUpload 上传工作簿并同步预处理，返回汇总报告
func (h *Handler) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	fileID := uuid.New().String()
	savePath := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", fileID, filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, savePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	report, err := h.coordinator.PreprocessSync(c.Request.Context(), importer.Options{FilePath: savePath})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file_id": fileID,
		"path":    savePath,
		"report":  report,
	})
}

type tableSummary struct {
	SourceFile string         `json:"source_file"`
	SheetName  string         `json:"sheet_name"`
	Columns    []model.Column `json:"columns"`
	RowCount   int            `json:"row_count"`
}

// handleListTables 返回目录内全部规整表的概要
func (h *Handler) handleListTables(c *gin.Context) {
	tables := h.catalog.List()
	out := make([]tableSummary, 0, len(tables))
	for _, t := range tables {
		out = append(out, tableSummary{
			SourceFile: t.SourceFile,
			SheetName:  t.SheetName,
			Columns:    t.Columns,
			RowCount:   t.RowCount(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"tables": out})
}

type resolveRequest struct {
	SourceFile string         `json:"source_file" binding:"required"`
	SheetName  string         `json:"sheet_name" binding:"required"`
	Entities   []model.Entity `json:"entities" binding:"required"`
}

// handleResolve 把一组查询实体解析到某张规整表的列上，并落血缘
func (h *Handler) handleResolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, ok := h.catalog.Get(req.SourceFile, req.SheetName)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}

	queryID := uuid.New().String()
	scope, err := h.recorder.Begin(queryID, table.SourceFile, table.SheetName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	bindings, err := h.resolver.Resolve(c.Request.Context(), table, req.Entities, scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entries, _ := h.recorder.Entries(queryID)
	if h.store != nil && len(entries) > 0 {
		if err := h.store.SaveLineage(queryID, entries); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"query_id": queryID,
		"bindings": bindings,
		"lineage":  entries,
	})
}

// handleLineage 返回某查询的有序血缘记录
func (h *Handler) handleLineage(c *gin.Context) {
	queryID := c.Param("queryID")

	if entries, ok := h.recorder.Entries(queryID); ok {
		c.JSON(http.StatusOK, gin.H{"query_id": queryID, "lineage": entries})
		return
	}

	// 内存中没有则回落到持久化日志
	if h.store != nil {
		entries, err := h.store.LoadLineage(queryID)
		if err == nil && len(entries) > 0 {
			c.JSON(http.StatusOK, gin.H{"query_id": queryID, "lineage": entries})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "query not found"})
}
