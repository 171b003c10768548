package logx

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONLinesAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn", false)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("error_code", "fetch_failed").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("期望 1 行，实际 %d：%q", len(lines), buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("日志行不是 JSON：%v", err)
	}
	if ev["message"] != "shown" || ev["error_code"] != "fetch_failed" || ev["level"] != "warn" {
		t.Fatalf("日志事件不符合预期：%v", ev)
	}
}

func TestNew_EmptyLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "", false)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("默认级别应为 info：%q", buf.String())
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New(&buf, "loud", false); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "info", true)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("console 输出缺少消息：%q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("console 模式不应输出 JSON：%q", buf.String())
	}
}
