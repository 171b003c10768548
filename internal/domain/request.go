package domain

// Request 是 stdin 上的一次性输入（每次调用只处理一个 URL）。
//
// URL 使用指针：区分“字段缺失/null”与“空串”，两者都按 missing_url 处理，
// 但日志里需要能说清楚是哪一种。
type Request struct {
	URL *string `json:"url"`
}

// SceneRef 是从场景 URL 中解析出的最小定位信息。
//
// 不变量：Parse 成功时三个字段都非空；Studio 是 Site 的首个 label。
type SceneRef struct {
	Site   string // 例如 "vixen.com"
	Studio string // 例如 "vixen"
	Slug   string // 例如 "some-scene"
}
