package vixen

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/John-Robertt/vixenscrape/internal/apollo"
	"github.com/John-Robertt/vixenscrape/internal/domain"
)

// Normalize 把场景记录映射为对外输出。来源字段缺失或为空时对应 key 省略。
//
// url 的规则：
// - 记录里没有 absoluteUrl：省略
// - absoluteUrl 为 null/空串：回退为用户输入的 URL
// - 否则补上 https:（站点给的是 //www.x.com/... 形式的协议相对地址）
func Normalize(s apollo.Scene, ref domain.SceneRef, inputURL string) domain.Scrape {
	out := domain.Scrape{
		Title:      text(s.Get("title")),
		Details:    text(s.Get("description")),
		URL:        sceneURL(s.Get("absoluteUrl"), inputURL),
		Performers: names(s.Get("models")),
		Tags:       names(s.Get("categories")),
		Image:      lastPoster(s.Get("images.poster")),
	}
	if d := text(s.Get("releaseDate")); d != "" {
		out.Date = firstRunes(d, 10)
	}
	if ref.Studio != "" {
		out.Studio = &domain.Named{Name: ref.Studio}
	}
	return out
}

// text 只接受 JSON 字符串；false、0、[]、{} 等非字符串值一律视为空。
func text(v gjson.Result) string {
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

func sceneURL(v gjson.Result, inputURL string) string {
	if !v.Exists() {
		return ""
	}
	abs := strings.TrimSpace(text(v))
	if abs == "" {
		return strings.TrimSpace(inputURL)
	}
	if strings.HasPrefix(abs, "http://") || strings.HasPrefix(abs, "https://") {
		return abs
	}
	return "https:" + abs
}

func names(v gjson.Result) []domain.Named {
	if !v.IsArray() {
		return nil
	}
	var out []domain.Named
	for _, it := range v.Array() {
		if n := text(it.Get("name")); n != "" {
			out = append(out, domain.Named{Name: n})
		}
	}
	return out
}

// lastPoster 取 poster 列表最后一张（站点按分辨率升序排列）。
func lastPoster(v gjson.Result) string {
	arr := v.Array()
	if len(arr) == 0 {
		return ""
	}
	return text(arr[len(arr)-1].Get("src"))
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
