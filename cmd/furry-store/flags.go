package main

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func configFileFlag(v *viper.Viper) string {
	return v.GetString("config")
}

func addConfigFileFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("config", "", "config file (yaml, json or toml)")
	_ = v.BindPFlag("config", flags.Lookup("config"))
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "console", "log format (json or console)")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
}

func addStorageFlags(flags *pflag.FlagSet, v *viper.Viper, area string) {
	flags.String(area+"-driver", "memory", area+" storage driver (memory, file, blob, sqlite, redis)")
	_ = v.BindPFlag("storage."+area+".driver", flags.Lookup(area+"-driver"))
	flags.String(area+"-dir", "", area+" storage directory for the file driver")
	_ = v.BindPFlag("storage."+area+".dir", flags.Lookup(area+"-dir"))
	flags.String(area+"-url", "", area+" storage bucket URL, DSN or address")
	_ = v.BindPFlag("storage."+area+".url", flags.Lookup(area+"-url"))
	flags.String(area+"-prefix", "", area+" storage key prefix or hash name")
	_ = v.BindPFlag("storage."+area+".prefix", flags.Lookup(area+"-prefix"))
}

func addCrossTabFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("crosstab-driver", "none", "cross-context channel (none, redis, nats, watch)")
	_ = v.BindPFlag("crosstab.driver", flags.Lookup("crosstab-driver"))
	flags.String("crosstab-url", "", "cross-context channel address")
	_ = v.BindPFlag("crosstab.url", flags.Lookup("crosstab-url"))
	flags.String("crosstab-channel", "", "cross-context channel or subject name")
	_ = v.BindPFlag("crosstab.channel", flags.Lookup("crosstab-channel"))
}

func addTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("timeout", 5*time.Second, "timeout for each storage call")
	_ = v.BindPFlag("timeout", flags.Lookup("timeout"))
}

func areaFlag(v *viper.Viper) string {
	return v.GetString("area")
}

func addAreaFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("area", "local", "storage area (local or session)")
	_ = v.BindPFlag("area", flags.Lookup("area"))
}

func addMetricsAddrFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("metrics-addr", "", "serve prometheus metrics on this address")
	_ = v.BindPFlag("metrics.addr", flags.Lookup("metrics-addr"))
}

func widthFlag(v *viper.Viper) int {
	return v.GetInt("watch.width")
}

func addWidthFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("width", 80, "column width of watch output")
	_ = v.BindPFlag("watch.width", flags.Lookup("width"))
}

func noticesFlag(v *viper.Viper) bool {
	return v.GetBool("watch.notices")
}

func addNoticesFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("notices", false, "log every cross-context notice")
	_ = v.BindPFlag("watch.notices", flags.Lookup("notices"))
}

func stringFlag(v *viper.Viper) bool {
	return v.GetBool("set.string")
}

func addStringFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("string", false, "store the argument as a JSON string")
	_ = v.BindPFlag("set.string", flags.Lookup("string"))
}

func defaultValueFlag(v *viper.Viper) string {
	return v.GetString("get.default")
}

func addDefaultValueFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("default", "null", "JSON value printed when the key is absent or malformed")
	_ = v.BindPFlag("get.default", flags.Lookup("default"))
}

func tuiFlag(v *viper.Viper) bool {
	return v.GetBool("watch.tui")
}

func addTUIFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("tui", false, "draw on the terminal instead of printing frames")
	_ = v.BindPFlag("watch.tui", flags.Lookup("tui"))
}
