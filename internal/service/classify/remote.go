package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/liup3424/excelAgent/internal/model"
)

// Remote 外部模型分类策略：把样本行 POST 给外部服务，
// 服务返回 1 基的标签行/表头行下标列表，其余行视为数据行。
// 调用受超时约束；任何失败都转成 ClassificationError 交由上层回退。
type Remote struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewRemote 创建外部模型分类策略
func NewRemote(endpoint string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Remote{
		endpoint: endpoint,
		timeout:  timeout,
		client:   &http.Client{},
	}
}

// Name 策略名
func (r *Remote) Name() string { return "remote" }

type remoteRequest struct {
	ColumnCount int        `json:"column_count"`
	Rows        [][]string `json:"rows"`
}

type remoteResponse struct {
	Labels []int  `json:"labels"`
	Header []int  `json:"header"`
	Error  string `json:"error,omitempty"`
}

// ClassifyRows 调用外部服务分类样本行
func (r *Remote) ClassifyRows(ctx context.Context, sample [][]string, columnCount int) ([]model.RowRole, error) {
	if r.endpoint == "" {
		return nil, &model.ClassificationError{Strategy: r.Name(), Reason: "no endpoint configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(remoteRequest{ColumnCount: columnCount, Rows: sample})
	if err != nil {
		return nil, &model.ClassificationError{Strategy: r.Name(), Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &model.ClassificationError{Strategy: r.Name(), Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &model.ClassificationError{
			Strategy: r.Name(),
			Reason:   err.Error(),
			Timeout:  errors.Is(err, context.DeadlineExceeded),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.ClassificationError{
			Strategy: r.Name(),
			Reason:   fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var parsed remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &model.ClassificationError{Strategy: r.Name(), Reason: "malformed response: " + err.Error()}
	}
	if parsed.Error != "" {
		return nil, &model.ClassificationError{Strategy: r.Name(), Reason: parsed.Error}
	}

	roles := make([]model.RowRole, len(sample))
	for i := range roles {
		roles[i] = model.RowData
	}
	for _, idx := range parsed.Labels {
		if idx < 1 || idx > len(sample) {
			return nil, &model.ClassificationError{
				Strategy: r.Name(),
				Reason:   fmt.Sprintf("label index %d out of range", idx),
			}
		}
		roles[idx-1] = model.RowLabel
	}
	for _, idx := range parsed.Header {
		if idx < 1 || idx > len(sample) {
			return nil, &model.ClassificationError{
				Strategy: r.Name(),
				Reason:   fmt.Sprintf("header index %d out of range", idx),
			}
		}
		roles[idx-1] = model.RowHeader
	}

	return roles, nil
}
