package vixen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/John-Robertt/vixenscrape/internal/apollo"
	"github.com/John-Robertt/vixenscrape/internal/domain"
	providerx "github.com/John-Robertt/vixenscrape/internal/provider"
)

// Provider 实现 Vixen 系站点（vixen/tushy/blacked/deeper/...）的场景页抓取与解析。
//
// 约束：
// - 场景页固定为 https://<site>/videos/<slug>（不走搜索）
// - 页面数据来自内嵌的 Apollo 数据图，不解析渲染后的 DOM 文本
type Provider struct {
	// BaseURL 覆盖站点根地址（镜像域名或测试服务器）。为空时使用 https://<site>。
	BaseURL string
}

func (Provider) Name() string { return "vixen" }

func (p Provider) origin(ref domain.SceneRef) string {
	if u := strings.TrimRight(strings.TrimSpace(p.BaseURL), "/"); u != "" {
		return u
	}
	return "https://" + ref.Site
}

// PageURL 返回场景详情页 URL。
func (p Provider) PageURL(ref domain.SceneRef) string {
	return p.origin(ref) + "/videos/" + ref.Slug
}

// Fetch 对场景页发起一次 GET。
func (p Provider) Fetch(ctx context.Context, ref domain.SceneRef, c *http.Client) ([]byte, string, error) {
	if ref.Site == "" || ref.Slug == "" {
		return nil, "", errors.New("scene ref 不完整")
	}
	pageURL := p.PageURL(ref)
	b, err := providerx.FetchPage(ctx, c, pageURL, p.origin(ref))
	return b, pageURL, err
}

// Parse 定位页面内嵌数据图、取出目标场景并归一化。
//
// 错误：
// - 页面里没有数据图：providerx.ErrJSONNotFound
// - 数据图里没有 Video:<studio>:<slug>：providerx.ErrSceneNotFound
// - 数据图/记录形态不对：*apollo.InvalidError
func (Provider) Parse(ref domain.SceneRef, html []byte, inputURL string) (providerx.Result, error) {
	if len(html) == 0 {
		return providerx.Result{}, errors.New("html 为空")
	}

	located, err := apollo.Locate(html)
	if err != nil {
		return providerx.Result{}, err
	}
	if !located.Found() {
		return providerx.Result{}, providerx.ErrJSONNotFound
	}

	key := apollo.SceneKey(ref.Studio, ref.Slug)
	scene, ok := located.Graph.Scene(key)
	if !ok {
		return providerx.Result{}, fmt.Errorf("%w：%s", providerx.ErrSceneNotFound, key)
	}
	if !scene.IsObject() {
		return providerx.Result{}, &apollo.InvalidError{Source: located.Source, Reason: key + " 不是对象"}
	}

	return providerx.Result{
		Scrape:  Normalize(scene, ref, inputURL),
		Raw:     located.Graph.Raw(),
		VideoID: scene.VideoID(),
		Source:  located.Source.String(),
	}, nil
}
