package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/vixenscrape/internal/config"
	"github.com/John-Robertt/vixenscrape/internal/domain"
	"github.com/John-Robertt/vixenscrape/internal/dump"
	"github.com/John-Robertt/vixenscrape/internal/infra/httpx"
	"github.com/John-Robertt/vixenscrape/internal/provider"
	"github.com/John-Robertt/vixenscrape/internal/provider/vixen"
	"github.com/John-Robertt/vixenscrape/internal/sceneurl"
)

// Deps 是一次执行需要的外部依赖（测试可替换 Provider / Client）。
type Deps struct {
	Provider provider.Provider
	Client   *http.Client
	// Store 为 nil 表示本次不落盘。
	Store *dump.Store
	Log   zerolog.Logger
}

// NewDeps 按最终配置组装默认依赖。
func NewDeps(eff config.EffectiveConfig, log zerolog.Logger) (Deps, error) {
	c, err := httpx.NewPageClient(httpx.Options{
		ProxyURL:       eff.ProxyURL,
		ConnectTimeout: eff.ConnectTimeout,
		ReadTimeout:    eff.ReadTimeout,
		UserAgent:      eff.UserAgent,
	})
	if err != nil {
		return Deps{}, err
	}
	d := Deps{
		Provider: vixen.Provider{BaseURL: eff.BaseURL},
		Client:   c,
		Log:      log,
	}
	if eff.SaveDir != "" {
		s := dump.New(eff.SaveDir)
		d.Store = &s
	}
	return d, nil
}

// Run 执行完整流水线：读 stdin -> 抓取/解析 -> （可选）落盘 -> 向 out 写一行 JSON。
// 只有全部成功才会写 out；失败时 out 保持为空。
func Run(ctx context.Context, d Deps, in io.Reader, out io.Writer) error {
	s, err := Execute(ctx, d, in)
	if err != nil {
		return err
	}
	if err := WriteOutput(out, s); err != nil {
		return &Error{Code: ErrCodeOutputFailed, Err: err}
	}
	return nil
}

// Execute 执行一次抓取并返回归一化结果（不写 stdout）。
func Execute(ctx context.Context, d Deps, in io.Reader) (domain.Scrape, error) {
	log := d.Log

	rawURL, err := ReadRequest(in, log)
	if err != nil {
		return domain.Scrape{}, err
	}

	ref, ok := sceneurl.Parse(rawURL)
	if !ok {
		return domain.Scrape{}, &Error{Code: ErrCodeURLUnparseable, Err: errors.New(rawURL)}
	}
	log.Debug().Str("site", ref.Site).Str("studio", ref.Studio).Str("slug", ref.Slug).Msg("URL 解析完成")

	p := d.Provider
	html, pageURL, err := p.Fetch(ctx, ref, d.Client)
	if err != nil {
		return domain.Scrape{}, &Error{Code: ErrCodeFetchFailed, Err: &provider.Error{Provider: p.Name(), Stage: "fetch", Err: err}}
	}
	log.Debug().Str("page_url", pageURL).Int("bytes", len(html)).Msg("页面抓取完成")

	res, err := p.Parse(ref, html, rawURL)
	if err != nil {
		perr := &provider.Error{Provider: p.Name(), Stage: "parse", Err: err}
		switch {
		case errors.Is(err, provider.ErrJSONNotFound):
			return domain.Scrape{}, &Error{Code: ErrCodeJSONNotFound, Err: perr}
		case errors.Is(err, provider.ErrSceneNotFound):
			return domain.Scrape{}, &Error{Code: ErrCodeSceneNotFound, Err: perr}
		default:
			return domain.Scrape{}, &Error{Code: ErrCodeJSONInvalid, Err: perr}
		}
	}
	log.Debug().Str("source", res.Source).Str("video_id", res.VideoID).Msg("内嵌 JSON 定位完成")

	if d.Store != nil {
		path, err := d.Store.Save(res.VideoID, res.Raw)
		if err != nil {
			return domain.Scrape{}, &Error{Code: ErrCodeSaveFailed, Err: err}
		}
		log.Info().Str("path", path).Msg("已保存完整 JSON")
	}
	return res.Scrape, nil
}

// ReadRequest 读取 stdin 上的请求对象并返回去掉首尾空白的 URL。
// stdin 原文会回显到日志（stderr），便于在宿主程序里排查。
func ReadRequest(in io.Reader, log zerolog.Logger) (string, error) {
	b, err := io.ReadAll(in)
	if err != nil {
		return "", &Error{Code: ErrCodeInputInvalid, Err: err}
	}
	log.Info().Str("input", string(b)).Msg("stdin")

	var req domain.Request
	if err := json.Unmarshal(b, &req); err != nil {
		return "", &Error{Code: ErrCodeInputInvalid, Err: err}
	}
	if req.URL == nil {
		return "", &Error{Code: ErrCodeMissingURL, Err: errors.New("缺少 url 字段")}
	}
	u := strings.TrimSpace(*req.URL)
	if u == "" {
		return "", &Error{Code: ErrCodeMissingURL, Err: errors.New("url 为空")}
	}
	return u, nil
}

// WriteOutput 把结果编码为单行 JSON（不转义 HTML 字符）。
func WriteOutput(w io.Writer, s domain.Scrape) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}
