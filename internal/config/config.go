package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/vixenscrape/internal/dump"
	"github.com/John-Robertt/vixenscrape/internal/infra/httpx"
)

const (
	// ErrCodeNotFound 表示 --config 指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const DefaultLogLevel = "info"

// 无 --config 时按顺序尝试的文件名（都不存在也不报错）。
var defaultFileNames = []string{"vixenscrape.json", "vixenscrape.yaml", "vixenscrape.yml"}

const envPrefix = "VIXEN_"

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
type CLIArgs struct {
	ConfigPath string

	// Dest 是位置参数：dump 目录，或关键字 "save"（使用配置/默认目录）。
	Dest    string
	DestSet bool

	LogLevel    string
	LogLevelSet bool
}

// FileConfig 对应 vixenscrape.json / vixenscrape.yaml。
type FileConfig struct {
	SaveDir        string       `json:"save_dir" yaml:"save_dir"`
	ConnectTimeout string       `json:"connect_timeout" yaml:"connect_timeout"`
	ReadTimeout    string       `json:"read_timeout" yaml:"read_timeout"`
	Proxy          *ProxyConfig `json:"proxy" yaml:"proxy"`
	BaseURL        string       `json:"base_url" yaml:"base_url"`
	LogLevel       string       `json:"log_level" yaml:"log_level"`
	UserAgent      string       `json:"user_agent" yaml:"user_agent"`
}

type ProxyConfig struct {
	URL string `json:"url" yaml:"url"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置。
type EffectiveConfig struct {
	// SaveDir 是 dump 目录（clean + absolute）；为空表示本次不落盘。
	SaveDir string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	ProxyURL       string
	UserAgent      string

	// BaseURL 覆盖站点根地址（可选）；为空时按 URL 中的站点访问。
	BaseURL string

	LogLevel string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
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

// LoadEffective 读取配置文件与环境变量，然后与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：
// CLI > 进程环境变量 VIXEN_* > <cwd>/.env > 配置文件 > 内置默认值
//
// 配置文件发现：--config 指定时必须存在；否则依次尝试 <cwd>/vixenscrape.{json,yaml,yml}（可选）。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	fc, cfgPath, err := discoverFileConfig(cwdAbs, cli.ConfigPath)
	if err != nil {
		return EffectiveConfig{}, err
	}

	envPath := filepath.Join(cwdAbs, ".env")
	dotenv, err := readDotEnv(envPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: envPath, Err: err}
	}
	env := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(envPrefix + key); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
		v, ok := dotenv[envPrefix+key]
		return v, ok
	}

	return merge(cwdAbs, cli, fc, env, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, env func(string) (string, bool), cfgPath string) (EffectiveConfig, error) {
	pick := func(key, fileVal string) string {
		if v, ok := env(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(fileVal)
	}

	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	connect, err := parseTimeout("connect_timeout", pick("CONNECT_TIMEOUT", fc.ConnectTimeout), httpx.DefaultConnectTimeout)
	if err != nil {
		return invalid(err)
	}
	read, err := parseTimeout("read_timeout", pick("READ_TIMEOUT", fc.ReadTimeout), httpx.DefaultReadTimeout)
	if err != nil {
		return invalid(err)
	}

	proxyFile := ""
	if fc.Proxy != nil {
		proxyFile = fc.Proxy.URL
	}
	proxyURL := pick("PROXY_URL", proxyFile)
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return invalid(fmt.Errorf("proxy.url 无效：%w", err))
		}
	}

	baseURL := pick("BASE_URL", fc.BaseURL)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalid(fmt.Errorf("base_url 无效：%q", baseURL))
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return invalid(fmt.Errorf("base_url 必须是 http/https：%q", baseURL))
		}
	}

	// log_level：CLI > env > config > 默认 info
	logLevel := pick("LOG_LEVEL", fc.LogLevel)
	if cli.LogLevelSet {
		logLevel = strings.TrimSpace(cli.LogLevel)
	}
	if logLevel == "" {
		logLevel = DefaultLogLevel
	}
	logLevel = strings.ToLower(logLevel)
	if _, err := zerolog.ParseLevel(logLevel); err != nil {
		return invalid(fmt.Errorf("log_level 无效：%q", logLevel))
	}

	// save：只有 CLI 给了目标参数才落盘；"save" 关键字走配置/默认目录。
	saveDir := ""
	if cli.DestSet {
		dest := strings.TrimSpace(cli.Dest)
		if dest == "" {
			return invalid(errors.New("dump 目标参数不能为空"))
		}
		saveDir = absCleanFrom(cwdAbs, dump.ResolveDir(dest, pick("SAVE_DIR", fc.SaveDir)))
	}

	return EffectiveConfig{
		SaveDir:        saveDir,
		ConnectTimeout: connect,
		ReadTimeout:    read,
		ProxyURL:       proxyURL,
		UserAgent:      pick("USER_AGENT", fc.UserAgent),
		BaseURL:        baseURL,
		LogLevel:       logLevel,
	}, nil
}

func parseTimeout(name, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s 无效：%q", name, s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s 必须大于 0：%q", name, s)
	}
	return d, nil
}

func discoverFileConfig(cwdAbs, explicit string) (FileConfig, string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		path := absCleanFrom(cwdAbs, p)
		fc, exists, err := readFileConfig(path)
		if err != nil {
			return FileConfig{}, path, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}
		if !exists {
			return FileConfig{}, path, &Error{Code: ErrCodeNotFound, Path: path, Err: os.ErrNotExist}
		}
		return fc, path, nil
	}

	for _, name := range defaultFileNames {
		path := filepath.Join(cwdAbs, name)
		fc, exists, err := readFileConfig(path)
		if err != nil {
			return FileConfig{}, path, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}
		if exists {
			return fc, path, nil
		}
	}
	// 没有配置文件：全部走 env/默认值。
	return FileConfig{}, filepath.Join(cwdAbs, defaultFileNames[0]), nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析配置文件：.yaml/.yml 按 YAML，其它按 JSON。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = json.Unmarshal(b, &fc)
	}
	if err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}

// readDotEnv 读取 .env（不存在时返回空表）。不写回进程环境变量。
func readDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return godotenv.Read(path)
}
