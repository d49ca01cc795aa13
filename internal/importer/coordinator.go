package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/liup3424/excelAgent/internal/catalog"
	"github.com/liup3424/excelAgent/internal/model"
	"github.com/liup3424/excelAgent/internal/service/classify"
	"github.com/liup3424/excelAgent/internal/service/excel"
	"github.com/liup3424/excelAgent/internal/service/normalize"
	"github.com/liup3424/excelAgent/internal/store"
)

// Coordinator 预处理协调器：对单个工作簿跑完
// 网格加载 → 合并展开 → 行分类 → 表头折叠 → 规整 → 注册/持久化 的流水线。
// 单个 sheet 内部严格顺序执行；多个 sheet 由独立 worker 并行处理，
// 目录注册是唯一同步点。单个 sheet 失败不影响兄弟 sheet。
type Coordinator struct {
	catalog    *catalog.Catalog
	store      *store.Store // 可为 nil（仅内存运行）
	chain      *classify.Chain
	normalizer *normalize.Normalizer
	workers    int
}

// NewCoordinator 创建预处理协调器
func NewCoordinator(cat *catalog.Catalog, st *store.Store, chain *classify.Chain, normalizer *normalize.Normalizer, workers int) *Coordinator {
	if workers <= 0 {
		workers = 4
	}
	return &Coordinator{
		catalog:    cat,
		store:      st,
		chain:      chain,
		normalizer: normalizer,
		workers:    workers,
	}
}

// Options 预处理选项
type Options struct {
	FilePath string
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/sheet_start/sheet_done/warning/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Preprocess 异步执行预处理，返回进度通道；done 事件携带 RunReport
func (c *Coordinator) Preprocess(ctx context.Context, opts Options) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doPreprocess(ctx, opts, progressChan)
	}()

	return progressChan
}

// PreprocessSync 同步执行预处理并返回汇总报告
func (c *Coordinator) PreprocessSync(ctx context.Context, opts Options) (*model.RunReport, error) {
	var report *model.RunReport
	for event := range c.Preprocess(ctx, opts) {
		switch event.Type {
		case "done":
			if r, ok := event.Data.(*model.RunReport); ok {
				report = r
			}
		case "error":
			return nil, errors.New(event.Message)
		}
	}
	if report == nil {
		return nil, errors.New("preprocess finished without report")
	}
	return report, nil
}

// doPreprocess 执行预处理逻辑
func (c *Coordinator) doPreprocess(ctx context.Context, opts Options, progressChan chan ProgressEvent) {
	startTime := time.Now()

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "start",
		Message: "开始预处理工作簿",
		Data: map[string]string{
			"filename": filepath.Base(opts.FilePath),
		},
		Timestamp: time.Now(),
	})

	loader, err := excel.Open(opts.FilePath)
	if err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("打开文件失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}
	defer loader.Close()

	sheetList := loader.Sheets()
	report := &model.RunReport{
		Filename:    filepath.Base(opts.FilePath),
		TotalSheets: len(sheetList),
		Sheets:      make([]model.SheetResult, len(sheetList)),
	}

	// excelize 工作簿非并发安全：网格在此顺序读出，
	// 后续重活（分类、规整）再交给 worker 并行
	grids := make([]*model.Grid, len(sheetList))
	for i, sheetName := range sheetList {
		grid, err := loader.LoadGrid(sheetName)
		if err != nil {
			var emptyErr *model.EmptySheetError
			if errors.As(err, &emptyErr) {
				report.Sheets[i] = model.SheetResult{
					SheetName: sheetName,
					Status:    model.SheetStatusSkipped,
					Warnings:  []string{"empty sheet"},
				}
				c.sendProgress(progressChan, ProgressEvent{
					Type:      "warning",
					Message:   fmt.Sprintf("跳过空 Sheet: %s", sheetName),
					Timestamp: time.Now(),
				})
				continue
			}
			report.Sheets[i] = model.SheetResult{
				SheetName: sheetName,
				Status:    model.SheetStatusError,
				Errors:    []string{err.Error()},
			}
			continue
		}
		grids[i] = grid
	}

	// worker 池并行处理各 sheet，结果按下标写回，无共享可变状态
	workers := c.workers
	if workers > len(sheetList) {
		workers = len(sheetList)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report.Sheets[i] = c.processSheet(ctx, grids[i], progressChan)
			}
		}()
	}
	for i := range sheetList {
		if grids[i] != nil {
			jobs <- i
		}
	}
	close(jobs)
	wg.Wait()

	for _, result := range report.Sheets {
		switch result.Status {
		case model.SheetStatusNormalized:
			report.NormalizedSheets++
		case model.SheetStatusSkipped:
			report.SkippedSheets++
		case model.SheetStatusError:
			report.ErrorSheets++
		}
	}
	report.Duration = time.Since(startTime)

	// done 事件携带报告，不可丢弃
	progressChan <- ProgressEvent{
		Type:      "done",
		Message:   "预处理完成",
		Data:      report,
		Timestamp: time.Now(),
	}
}

// processSheet 处理单个 sheet；任何失败都折算进该 sheet 的结果
func (c *Coordinator) processSheet(ctx context.Context, grid *model.Grid, progressChan chan ProgressEvent) model.SheetResult {
	sheetStartTime := time.Now()
	result := model.SheetResult{SheetName: grid.SheetName}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "sheet_start",
		Message:   fmt.Sprintf("正在预处理 Sheet: %s", grid.SheetName),
		Timestamp: time.Now(),
	})

	expanded, err := excel.ExpandMerges(grid)
	if err != nil {
		result.Status = model.SheetStatusError
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(sheetStartTime)
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("Sheet %q 合并区域畸形，已跳过: %v", grid.SheetName, err),
			Timestamp: time.Now(),
		})
		return result
	}

	roles, warnings, err := c.chain.Classify(ctx, expanded)
	result.Warnings = append(result.Warnings, warnings...)
	for _, w := range warnings {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("Sheet %q: %s", grid.SheetName, w),
			Timestamp: time.Now(),
		})
	}
	if err != nil {
		result.Status = model.SheetStatusError
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(sheetStartTime)
		return result
	}

	table, err := c.normalizer.Normalize(expanded, roles)
	if err != nil {
		result.Status = model.SheetStatusError
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(sheetStartTime)
		return result
	}

	if err := c.catalog.Register(table); err != nil {
		result.Status = model.SheetStatusError
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(sheetStartTime)
		return result
	}

	if c.store != nil {
		if err := c.store.SaveTable(table); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("persist failed: %v", err))
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "warning",
				Message:   fmt.Sprintf("Sheet %q 持久化失败: %v", grid.SheetName, err),
				Timestamp: time.Now(),
			})
		}
	}

	result.Status = model.SheetStatusNormalized
	result.RowCount = table.RowCount()
	result.ColumnCount = len(table.Columns)
	result.Duration = time.Since(sheetStartTime)

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "sheet_done",
		Message: fmt.Sprintf("Sheet %q 规整完成: %d 行 %d 列", grid.SheetName, result.RowCount, result.ColumnCount),
		Data: map[string]interface{}{
			"sheet_name":   grid.SheetName,
			"row_count":    result.RowCount,
			"column_count": result.ColumnCount,
		},
		Timestamp: time.Now(),
	})

	return result
}

// sendProgress 发送进度事件；通道满则丢弃
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}
