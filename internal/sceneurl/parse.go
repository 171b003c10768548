package sceneurl

import (
	"regexp"
	"strings"

	"github.com/John-Robertt/vixenscrape/internal/domain"
)

// 可选 scheme + 可选 www. + <word>.com + 可选 videos/ + slug。
// 只锚定开头：slug 之后的路径/query 直接忽略。
var sceneRE = regexp.MustCompile(`^(?:https?://)?(?:www\.)?((\w+)\.com)/(?:videos/)?([a-z0-9-]+)`)

// Parse 从场景 URL 中提取 (site, studio, slug)。
// 不匹配时返回零值 + false，调用方据此判定 url_unparseable。
func Parse(s string) (domain.SceneRef, bool) {
	m := sceneRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return domain.SceneRef{}, false
	}
	return domain.SceneRef{
		Site:   m[1],
		Studio: m[2],
		Slug:   m[3],
	}, true
}
