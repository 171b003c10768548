package dump

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/John-Robertt/vixenscrape/internal/infra/fsx"
)

// SaveKeyword 是 CLI 上表示“使用默认目录”的占位参数。
const SaveKeyword = "save"

// DefaultDir 是 save 关键字对应的默认落盘目录（相对当前工作目录）。
var DefaultDir = filepath.Join("..", "scraperJSON", "VixenNetwork")

// ResolveDir 把 CLI 的目标参数解析为目录。
// arg 为 "save" 时使用 configured（为空则 DefaultDir）；否则 arg 本身就是目录。
func ResolveDir(arg, configured string) string {
	arg = strings.TrimSpace(arg)
	if arg != SaveKeyword {
		return arg
	}
	if c := strings.TrimSpace(configured); c != "" {
		return c
	}
	return DefaultDir
}

// Store 把页面的完整数据图落盘为 <Dir>/<videoId>.json。
type Store struct {
	Dir string
}

func New(dir string) Store {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return Store{}
	}
	return Store{Dir: filepath.Clean(dir)}
}

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var prettyOpts = &pretty.Options{
	Width:    0, // 0：数组也逐元素换行
	Indent:   "    ",
	SortKeys: false,
}

// Save 写入整张数据图（4 空格缩进，保持原始 key 顺序，非 ASCII 字符原样保留）。
// 目录不存在时创建；同名文件覆盖。
func (s Store) Save(videoID string, raw []byte) (string, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return "", errors.New("dump 目录不能为空")
	}
	name, err := fileName(videoID)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(raw) {
		return "", errors.New("数据图不是合法 JSON")
	}

	b := pretty.PrettyOptions(raw, prettyOpts)
	if !bytes.HasSuffix(b, []byte("\n")) {
		b = append(b, '\n')
	}
	if err := fsx.WriteFileAtomic(s.Dir, name, b); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name), nil
}

func fileName(videoID string) (string, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return "", errors.New("videoId 为空，无法确定 dump 文件名")
	}
	// 最小约束：避免路径穿越。
	if !videoIDRE.MatchString(videoID) {
		return "", fmt.Errorf("非法 videoId：%q", videoID)
	}
	return videoID + ".json", nil
}
