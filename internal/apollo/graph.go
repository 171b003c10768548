package apollo

import (
	"github.com/tidwall/gjson"
)

// Graph 是页面内嵌的 Apollo 数据图：记录 id -> 任意 JSON 值。
// 只保存原始字节；字段访问都走 gjson，不做整图反序列化。
type Graph struct {
	raw []byte
}

// NewGraph 包装一段已校验为 JSON 对象的字节。
func NewGraph(raw []byte) Graph { return Graph{raw: raw} }

// Raw 返回数据图的原始 JSON（dump 落盘的就是它）。
func (g Graph) Raw() []byte { return g.raw }

// SceneKey 构造场景记录在数据图中的 key：Video:<studio>:<slug>。
func SceneKey(studio, slug string) string {
	return "Video:" + studio + ":" + slug
}

// Scene 按 key 精确查找一条记录；不做模糊匹配，也不尝试其他 key 形态。
// key 重复时以最后一次出现为准（与常见 JSON 解码器的覆盖语义一致）。
func (g Graph) Scene(key string) (Scene, bool) {
	var (
		out   gjson.Result
		found bool
	)
	gjson.ParseBytes(g.raw).ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out = v
			found = true
		}
		return true
	})
	if !found {
		return Scene{}, false
	}
	return Scene{rec: out}, true
}

// Scene 是数据图中的一条场景记录。
type Scene struct {
	rec gjson.Result
}

// IsObject 报告记录本身是否是 JSON 对象（null/标量记录无法归一化）。
func (s Scene) IsObject() bool { return s.rec.IsObject() }

// Get 按 gjson path 读取记录内的字段。
func (s Scene) Get(path string) gjson.Result { return s.rec.Get(path) }

// VideoID 返回 videoId 的字符串形式（数字 id 也按原样转成字符串）；缺失时为空。
func (s Scene) VideoID() string {
	v := s.rec.Get("videoId")
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return v.String()
}
