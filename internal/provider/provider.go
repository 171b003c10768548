package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/John-Robertt/vixenscrape/internal/domain"
)

// Provider 把“站点页面结构”限制在 provider 包内部；核心流程只依赖统一接口与稳定的 Scrape。
//
// 约束：
// - Fetch 只发一次 GET：不缓存、不重试、不限速
// - Parse 必须是纯函数：相同输入 => 相同输出
type Provider interface {
	Name() string
	Fetch(ctx context.Context, ref domain.SceneRef, c *http.Client) (html []byte, pageURL string, err error)
	Parse(ref domain.SceneRef, html []byte, inputURL string) (Result, error)
}

// Result 是一次成功解析的产物。
type Result struct {
	Scrape domain.Scrape

	// Raw 是页面内嵌的完整数据图（原始 JSON 字节），供 dump 落盘。
	Raw []byte
	// VideoID 是场景记录的 videoId（dump 文件名）；记录里没有时为空。
	VideoID string
	// Source 是数据图的来源约定（next_data / state_assignment），仅用于日志。
	Source string
}

// Error 是 provider 阶段的可追溯错误。
// 上层据此把失败归类为 fetch_failed / json_not_found / scene_not_found 等。
type Error struct {
	Provider string
	Stage    string // "fetch" 或 "parse"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s stage=%s: %v", e.Provider, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrSceneNotFound 表示数据图里没有目标场景的 key。
var ErrSceneNotFound = errors.New("数据图中未找到目标场景")

// ErrJSONNotFound 表示页面里既没有 __NEXT_DATA__ 也没有 __APOLLO_STATE__ 赋值。
var ErrJSONNotFound = errors.New("页面中未找到内嵌 JSON")

// FetchPage 以浏览器的姿态 GET 一次页面：Origin 指向站点根，Referer 指向页面本身。
// 任何传输层错误原样返回；状态码非 200 返回 *HTTPStatusError。
func FetchPage(ctx context.Context, c *http.Client, pageURL, origin string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	req.Header.Set("Referer", pageURL)

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{URL: pageURL, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	return io.ReadAll(resp.Body)
}
