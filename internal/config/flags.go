package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// FlagConfig 是指定配置文件路径的 flag 名（不绑定到 viper，由 Load 的 configFile 参数消费）。
const FlagConfig = "config"

// RegisterFlags 在 cmd 上注册全部 flag 并绑定到 v。
//
// 约束：flag 的零值不参与合并；只有显式指定的 flag 才会覆盖环境变量/配置文件/默认值。
func RegisterFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()

	flags.StringP(FlagConfig, "c", "", "配置文件路径（yaml/json/toml）")
	flags.StringP("url", "u", "", "列表页 URL")
	flags.StringP("out", "o", "", "输出 JSON 文件路径")
	flags.String("html", "", "直接解析本地 HTML 文件（不发起网络请求）")
	flags.String("snapshot-dir", "", "页面快照目录：在线抓取后写入，--offline 时从中读取")
	flags.Bool("offline", false, "只从快照目录读取页面")
	flags.Int("attempts", 0, "最大抓取次数（含首次）")
	flags.Duration("base-delay", 0, "重试基础等待；第 n 次失败后等待 n*base-delay")
	flags.Duration("timeout", 0, "单次请求超时")
	flags.String("proxy", "", "代理 URL（http/https/socks5）")
	flags.Bool("resolve-links", false, "把相对链接解析为绝对地址")
	flags.String("log-level", "", "日志级别：debug|info|warn|error")
	flags.String("report", "", "把运行报告（JSON）写入该文件")

	bindFlags(cmd, v)
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()

	_ = v.BindPFlag(KeyURL, flags.Lookup("url"))
	_ = v.BindPFlag(KeyOutput, flags.Lookup("out"))
	_ = v.BindPFlag(KeyHTMLFile, flags.Lookup("html"))
	_ = v.BindPFlag(KeySnapshotDir, flags.Lookup("snapshot-dir"))
	_ = v.BindPFlag(KeyOffline, flags.Lookup("offline"))
	_ = v.BindPFlag(KeyAttempts, flags.Lookup("attempts"))
	_ = v.BindPFlag(KeyBaseDelay, flags.Lookup("base-delay"))
	_ = v.BindPFlag(KeyTimeout, flags.Lookup("timeout"))
	_ = v.BindPFlag(KeyProxyURL, flags.Lookup("proxy"))
	_ = v.BindPFlag(KeyResolveLinks, flags.Lookup("resolve-links"))
	_ = v.BindPFlag(KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(KeyReport, flags.Lookup("report"))
}
