package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

const (
	// ErrCodeNotFound 表示显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// 配置键（同时是配置文件字段名；环境变量为 MLSCRAPE_ + 大写键名）。
const (
	KeyURL          = "url"
	KeyOutput       = "output"
	KeyAttempts     = "attempts"
	KeyBaseDelay    = "base_delay"
	KeyTimeout      = "timeout"
	KeyProxyURL     = "proxy_url"
	KeySnapshotDir  = "snapshot_dir"
	KeyOffline      = "offline"
	KeyHTMLFile     = "html_file"
	KeyResolveLinks = "resolve_links"
	KeyLogLevel     = "log_level"
	KeyReport       = "report"
)

const (
	DefaultURL       = "https://watchofree.beer/director/netflix/"
	DefaultOutput    = "voot.json"
	DefaultAttempts  = 3
	DefaultBaseDelay = time.Second
	DefaultTimeout   = 20 * time.Second
	DefaultLogLevel  = "info"

	// EnvPrefix 是环境变量前缀。
	EnvPrefix = "MLSCRAPE"
	// ConfigName 是在搜索目录中自动发现的配置文件名（扩展名由 viper 识别：yaml/json/toml）。
	ConfigName = "mlscrape"
)

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	URL    string
	Output string

	MaxAttempts int
	BaseDelay   time.Duration
	Timeout     time.Duration
	ProxyURL    string

	// SnapshotDir 非空时：在线抓取后保存原始 HTML；Offline=true 时改为从快照读取。
	SnapshotDir string
	Offline     bool

	// InputFile 非空时直接解析本地 HTML 文件，不发起网络请求。
	InputFile string

	ResolveLinks bool
	LogLevel     log.Level

	// ReportPath 非空时把 RunReport 以 JSON 写入该文件（失败的 run 也写）。
	ReportPath string
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
		if e.Path == "" {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
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

// SetDefaults 写入所有内置默认值（优先级最低）。
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyURL, DefaultURL)
	v.SetDefault(KeyOutput, DefaultOutput)
	v.SetDefault(KeyAttempts, DefaultAttempts)
	v.SetDefault(KeyBaseDelay, DefaultBaseDelay)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyProxyURL, "")
	v.SetDefault(KeySnapshotDir, "")
	v.SetDefault(KeyOffline, false)
	v.SetDefault(KeyHTMLFile, "")
	v.SetDefault(KeyResolveLinks, false)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyReport, "")
}

// Load 读取配置并合并为最终配置。
//
// 覆盖优先级（由 viper 保证）：flag（已绑定且显式指定）> 环境变量 > 配置文件 > 默认值。
//
// 发现规则：
// 1) configFile 非空：必须存在且可解析
// 2) configFile 为空：在 searchDir 中查找 mlscrape.{yaml,json,toml}（可选）
func Load(v *viper.Viper, configFile, searchDir string) (EffectiveConfig, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfgPath, err := readConfig(v, strings.TrimSpace(configFile), searchDir)
	if err != nil {
		return EffectiveConfig{}, err
	}
	return build(v, cfgPath)
}

func readConfig(v *viper.Viper, configFile, searchDir string) (string, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			if os.IsNotExist(err) {
				return "", &Error{Code: ErrCodeNotFound, Path: configFile, Err: os.ErrNotExist}
			}
			return "", &Error{Code: ErrCodeInvalid, Path: configFile, Err: err}
		}
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return "", &Error{Code: ErrCodeInvalid, Path: configFile, Err: err}
		}
		return configFile, nil
	}

	if strings.TrimSpace(searchDir) == "" {
		return "", nil
	}
	v.SetConfigName(ConfigName)
	v.AddConfigPath(searchDir)
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) {
			return "", nil
		}
		return "", &Error{Code: ErrCodeInvalid, Path: filepath.Join(searchDir, ConfigName), Err: err}
	}
	return v.ConfigFileUsed(), nil
}

func build(v *viper.Viper, cfgPath string) (EffectiveConfig, error) {
	invalid := func(format string, args ...any) error {
		return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf(format, args...)}
	}

	pageURL := strings.TrimSpace(v.GetString(KeyURL))
	if err := validateHTTPURL(pageURL); err != nil {
		return EffectiveConfig{}, invalid("url 无效：%v", err)
	}

	output := strings.TrimSpace(v.GetString(KeyOutput))
	if output == "" {
		return EffectiveConfig{}, invalid("output 不能为空")
	}

	attempts := v.GetInt(KeyAttempts)
	if attempts < 1 {
		return EffectiveConfig{}, invalid("attempts 必须 >= 1，实际是 %d", attempts)
	}

	baseDelay := v.GetDuration(KeyBaseDelay)
	if baseDelay < 0 {
		return EffectiveConfig{}, invalid("base_delay 不能为负数：%s", baseDelay)
	}
	timeout := v.GetDuration(KeyTimeout)
	if timeout < 0 {
		return EffectiveConfig{}, invalid("timeout 不能为负数：%s", timeout)
	}

	proxyURL := strings.TrimSpace(v.GetString(KeyProxyURL))
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, invalid("proxy_url 无效：%w", err)
		}
	}

	snapshotDir := strings.TrimSpace(v.GetString(KeySnapshotDir))
	offline := v.GetBool(KeyOffline)
	if offline && snapshotDir == "" {
		return EffectiveConfig{}, invalid("offline=true 但 snapshot_dir 为空")
	}

	level, err := log.ParseLevel(strings.TrimSpace(v.GetString(KeyLogLevel)))
	if err != nil {
		return EffectiveConfig{}, invalid("log_level 无效：%w", err)
	}

	return EffectiveConfig{
		URL:          pageURL,
		Output:       output,
		MaxAttempts:  attempts,
		BaseDelay:    baseDelay,
		Timeout:      timeout,
		ProxyURL:     proxyURL,
		SnapshotDir:  snapshotDir,
		Offline:      offline,
		InputFile:    strings.TrimSpace(v.GetString(KeyHTMLFile)),
		ResolveLinks: v.GetBool(KeyResolveLinks),
		LogLevel:     level,
		ReportPath:   strings.TrimSpace(v.GetString(KeyReport)),
	}, nil
}

func validateHTTPURL(s string) error {
	if s == "" {
		return errors.New("不能为空")
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("必须是 http/https：%q", s)
	}
	if u.Host == "" {
		return fmt.Errorf("缺少 host：%q", s)
	}
	return nil
}
