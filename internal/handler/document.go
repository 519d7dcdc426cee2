package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/service"
	"github.com/opentender/backend/internal/service/generation"
	"github.com/opentender/backend/internal/service/render"
	"github.com/opentender/backend/internal/service/statemachine"
	"k8s.io/klog/v2"
)

type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// RegisterRoutes 注册文档相关路由
func (h *DocumentHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/tenders/:id/document", h.Open)
	api.GET("/catalog", h.Catalog)

	docs := api.Group("/documents")
	{
		docs.GET("/:id", h.Get)
		docs.PUT("/:id/instructions", h.UpdateInstructions)
		docs.PUT("/:id/sections/:key", h.UpdateSection)
		docs.POST("/:id/sections/:key/generate", h.GenerateSection)
		docs.POST("/:id/generate", h.GenerateAll)
		docs.GET("/:id/export/:format", h.Export)
	}
}

type generateRequest struct {
	UseTender    *bool `json:"use_tender"`
	UseKnowledge *bool `json:"use_knowledge"`
}

type instructionsRequest struct {
	Instructions string `json:"instructions"`
}

// Catalog 固定章节目录
func (h *DocumentHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sections": domain.Catalog,
		"formats":  h.service.Formats(),
	})
}

// Open 打开招标项目的响应文档，不存在时创建
func (h *DocumentHandler) Open(c *gin.Context) {
	tenderID, ok := parseID(c)
	if !ok {
		return
	}
	doc, err := h.service.Open(c.Request.Context(), tenderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Get 获取文档及章节状态
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateInstructions 更新文档级指令
func (h *DocumentHandler) UpdateInstructions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req instructionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.service.UpdateInstructions(c.Request.Context(), id, req.Instructions)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateSection 编辑章节内容、启用状态或指令覆盖
func (h *DocumentHandler) UpdateSection(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.SectionUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Content == nil && req.Enabled == nil && req.InstructionOverride == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	section, err := h.service.UpdateSection(c.Request.Context(), id, c.Param("key"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

// GenerateSection 生成单个章节；失败时返回 502 和带占位内容的章节
func (h *DocumentHandler) GenerateSection(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	opts, ok := bindOptions(c)
	if !ok {
		return
	}
	key := c.Param("key")
	section, err := h.service.GenerateSection(c.Request.Context(), id, key, opts)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) || errors.Is(err, domain.ErrSectionNotFound) ||
			errors.Is(err, generation.ErrGenerationInProgress) {
			writeError(c, err)
			return
		}
		klog.Errorf("[DocumentHandler.GenerateSection] 生成失败: docID=%d, section=%s, error=%v", id, key, err)
		doc, gerr := h.service.Get(c.Request.Context(), id)
		if gerr != nil {
			writeError(c, err)
			return
		}
		failed, _ := doc.Section(key)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "section": failed})
		return
	}
	c.JSON(http.StatusOK, section)
}

// GenerateAll 生成所有待生成章节，regenerate=true 时覆盖已有内容
func (h *DocumentHandler) GenerateAll(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	opts, ok := bindOptions(c)
	if !ok {
		return
	}
	opts.Regenerate, _ = strconv.ParseBool(c.Query("regenerate"))

	summary, err := h.service.GenerateAll(c.Request.Context(), id, opts)
	if err != nil {
		writeError(c, err)
		return
	}
	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"document":  doc,
	})
}

// Export 下载导出文件
func (h *DocumentHandler) Export(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	format, err := render.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Export(c.Request.Context(), id, format)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// bindOptions 请求体可以为空，默认带上招标信息和知识库
func bindOptions(c *gin.Context) (generation.Options, bool) {
	opts := generation.DefaultOptions()
	if c.Request.ContentLength == 0 {
		return opts, true
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return opts, false
	}
	if req.UseTender != nil {
		opts.UseTender = *req.UseTender
	}
	if req.UseKnowledge != nil {
		opts.UseKnowledge = *req.UseKnowledge
	}
	return opts, true
}

func writeError(c *gin.Context, err error) {
	var transition *statemachine.InvalidSectionTransitionError
	switch {
	case errors.Is(err, service.ErrTenderNotFound),
		errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrSectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, generation.ErrGenerationInProgress),
		errors.Is(err, render.ErrNothingToExport),
		errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrFormatNotSupported):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		klog.Errorf("[handler.writeError] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
