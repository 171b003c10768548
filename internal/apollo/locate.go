package apollo

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// Source 标记数据图是从页面的哪种约定中找到的。
type Source int

const (
	SourceNone Source = iota
	// SourceNextData：<script id="__NEXT_DATA__" type="application/json"> 内的
	// props.pageProps.__APOLLO_STATE__。
	SourceNextData
	// SourceStateAssignment：旧版页面的 window.__APOLLO_STATE__ = {...}; 赋值行。
	SourceStateAssignment
)

func (s Source) String() string {
	switch s {
	case SourceNextData:
		return "next_data"
	case SourceStateAssignment:
		return "state_assignment"
	default:
		return "none"
	}
}

// Result 是定位结果：Found() 为 false 时 Graph 为零值。
type Result struct {
	Graph  Graph
	Source Source
}

func (r Result) Found() bool { return r.Source != SourceNone }

// InvalidError 表示找到了约定的位置，但内容不是预期的 JSON 形态。
type InvalidError struct {
	Source Source
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("内嵌 JSON 无效（%s）：%s", e.Source, e.Reason)
}

const (
	nextDataMarker   = `<script id="__NEXT_DATA__" type="application/json">`
	scriptClose      = `</script>`
	nextDataSelector = `script#__NEXT_DATA__[type="application/json"]`
	nextDataPath     = "props.pageProps.__APOLLO_STATE__"
)

var stateAssignRE = regexp.MustCompile(`(?m)window\.__APOLLO_STATE__ = (.+);$`)

// Locate 先按 __NEXT_DATA__ 查找，找不到标记时再回退到 __APOLLO_STATE__ 赋值行。
//
// 只要 __NEXT_DATA__ 标记存在，它的结果就是最终结果（内容无效时返回错误，不再回退）。
func Locate(html []byte) (Result, error) {
	r, err := FromNextData(html)
	if err != nil || r.Found() {
		return r, err
	}
	return FromStateAssignment(html)
}

// FromNextData 从 Next.js 的 __NEXT_DATA__ 脚本中取出 Apollo 数据图。
// 标记不存在时返回未找到（nil error）。
//
// 载荷取原始字节中开标签之后到下一个 </script> 之间的内容，不经过 HTML 解析
// （HTML5 的 script 转义状态会让 "<!--<script>" 之类的文本吞掉后续的 </script>）。
// 开标签写法与固定标记不一致（属性顺序、引号不同）时，才用 goquery 按节点取文本。
func FromNextData(html []byte) (Result, error) {
	payload, ok, err := nextDataPayload(html)
	if err != nil || !ok {
		return Result{}, err
	}
	if !gjson.ValidBytes(payload) {
		return Result{}, &InvalidError{Source: SourceNextData, Reason: "__NEXT_DATA__ 不是合法 JSON"}
	}
	state := gjson.GetBytes(payload, nextDataPath)
	if !state.Exists() {
		return Result{}, &InvalidError{Source: SourceNextData, Reason: "缺少 " + nextDataPath}
	}
	if !state.IsObject() {
		return Result{}, &InvalidError{Source: SourceNextData, Reason: nextDataPath + " 不是对象"}
	}
	return Result{Graph: Graph{raw: []byte(state.Raw)}, Source: SourceNextData}, nil
}

func nextDataPayload(html []byte) ([]byte, bool, error) {
	if i := bytes.Index(html, []byte(nextDataMarker)); i >= 0 {
		start := i + len(nextDataMarker)
		end := bytes.Index(html[start:], []byte(scriptClose))
		if end < 0 {
			return nil, false, &InvalidError{Source: SourceNextData, Reason: "__NEXT_DATA__ 缺少 " + scriptClose}
		}
		return html[start : start+end], true, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, false, err
	}
	sel := doc.Find(nextDataSelector).First()
	if sel.Length() == 0 {
		return nil, false, nil
	}
	return []byte(sel.Text()), true, nil
}

// FromStateAssignment 在页面中逐行查找 `window.__APOLLO_STATE__ = <json>;`（分号位于行尾）。
// 多处命中时取第一处。
func FromStateAssignment(html []byte) (Result, error) {
	m := stateAssignRE.FindSubmatch(html)
	if m == nil {
		return Result{}, nil
	}
	payload := m[1]
	if !gjson.ValidBytes(payload) {
		return Result{}, &InvalidError{Source: SourceStateAssignment, Reason: "__APOLLO_STATE__ 不是合法 JSON"}
	}
	if !gjson.ParseBytes(payload).IsObject() {
		return Result{}, &InvalidError{Source: SourceStateAssignment, Reason: "__APOLLO_STATE__ 不是对象"}
	}
	return Result{Graph: Graph{raw: append([]byte(nil), payload...)}, Source: SourceStateAssignment}, nil
}
