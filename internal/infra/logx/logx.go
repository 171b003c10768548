package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New 构造写往 w 的 logger（约定 w 是 stderr：stdout 只留给结果 JSON）。
//
// console=true 时输出人类可读格式，否则每行一个 JSON 事件。
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lv, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("无效的日志级别 %q：%w", level, err)
	}
	if lv == zerolog.NoLevel {
		lv = zerolog.InfoLevel
	}

	out := w
	if console {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lv).With().Timestamp().Logger(), nil
}

// IsTerminal 判断 f 是否连着交互终端（决定是否使用 console 格式）。
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
