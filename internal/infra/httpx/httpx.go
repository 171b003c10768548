package httpx

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultConnectTimeout = 3 * time.Second
	DefaultReadTimeout    = 6 * time.Second

	// DefaultUserAgent 固定为站点前端能正常返回页面的桌面 Firefox。
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:79.0) Gecko/20100101 Firefox/79.0"
)

// Options 描述页面抓取 client 的网络策略。零值字段回退到默认值。
type Options struct {
	ProxyURL       string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string
}

// Transport 只负责补齐 UA 与连接复用策略；不做重试（一次调用只发一个 GET）。
type Transport struct {
	Base *http.Transport

	UserAgent string

	// DisableKeepAlives 决定是否对 Request 设置 Close=true。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone：不在 RoundTripper 内部修改调用方的 request。
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		ua := t.UserAgent
		if ua == "" {
			ua = DefaultUserAgent
		}
		r.Header.Set("User-Agent", ua)
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

// NewPageClient 构造用于场景页面抓取的 HTTP client。
//
// 规则：
// - ConnectTimeout 作用于 TCP 建连；ReadTimeout 作用于等待响应头
// - client 总超时 = ConnectTimeout + ReadTimeout（兜住 body 读取）
// - ProxyURL 非空：走代理，且禁用 keep-alive
func NewPageClient(opts Options) (*http.Client, error) {
	connect := opts.ConnectTimeout
	if connect <= 0 {
		connect = DefaultConnectTimeout
	}
	read := opts.ReadTimeout
	if read <= 0 {
		read = DefaultReadTimeout
	}

	dialer := &net.Dialer{Timeout: connect}
	base := &http.Transport{
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   connect,
		ResponseHeaderTimeout: read,
	}

	disableKeepAlives := false
	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	tr := &Transport{
		Base:              base,
		UserAgent:         strings.TrimSpace(opts.UserAgent),
		DisableKeepAlives: disableKeepAlives,
	}
	return &http.Client{
		Transport: tr,
		Timeout:   connect + read,
	}, nil
}
