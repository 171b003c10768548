package scrape

import (
	"errors"
	"fmt"
)

const (
	ErrCodeInputInvalid   = "input_invalid"
	ErrCodeMissingURL     = "missing_url"
	ErrCodeURLUnparseable = "url_unparseable"
	ErrCodeFetchFailed    = "fetch_failed"
	ErrCodeJSONNotFound   = "json_not_found"
	ErrCodeJSONInvalid    = "json_invalid"
	ErrCodeSceneNotFound  = "scene_not_found"
	ErrCodeSaveFailed     = "save_failed"
	ErrCodeOutputFailed   = "output_failed"
)

// Error 是流水线阶段的结构化错误（带 error_code）。任何 *Error 都意味着退出码 1。
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	msg := describe(e.Code)
	if e.Err == nil {
		return fmt.Sprintf("%s：%s", e.Code, msg)
	}
	return fmt.Sprintf("%s：%s：%v", e.Code, msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func describe(code string) string {
	switch code {
	case ErrCodeInputInvalid:
		return "stdin 不是合法的 JSON 对象"
	case ErrCodeMissingURL:
		return "未提供 URL"
	case ErrCodeURLUnparseable:
		return "无法解析 URL"
	case ErrCodeFetchFailed:
		return "抓取页面 HTML 失败"
	case ErrCodeJSONNotFound:
		return "页面中未找到内嵌 JSON"
	case ErrCodeJSONInvalid:
		return "内嵌 JSON 无法解析"
	case ErrCodeSceneNotFound:
		return "JSON 中未找到目标场景"
	case ErrCodeSaveFailed:
		return "保存 JSON 失败"
	case ErrCodeOutputFailed:
		return "写出结果失败"
	default:
		return "未知错误"
	}
}
