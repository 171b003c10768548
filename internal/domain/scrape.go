package domain

// Named 对应输出里 {"name": ...} 形态的对象（studio / performer / tag）。
type Named struct {
	Name string `json:"name"`
}

// Scrape 是对外稳定输出（stdout 的一行 JSON）。
//
// 约束：所有字段都是可选的；来源字段缺失或为空时必须省略该 key，
// 不允许输出 null 或空占位（靠 omitempty + 指针/切片零值保证）。
type Scrape struct {
	Title      string  `json:"title,omitempty"`
	Date       string  `json:"date,omitempty"`
	Details    string  `json:"details,omitempty"`
	URL        string  `json:"url,omitempty"`
	Studio     *Named  `json:"studio,omitempty"`
	Performers []Named `json:"performers,omitempty"`
	Tags       []Named `json:"tags,omitempty"`
	Image      string  `json:"image,omitempty"`
}
