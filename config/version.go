package config

var (
	Version    string = "dev"
	CommitHash string = ""
)

// IsProduction 判断是否为生产环境
func IsProduction() bool {
	return Version == "release" && CommitHash != ""
}

// VersionString 返回带提交哈希的版本号
func VersionString() string {
	if CommitHash == "" {
		return Version
	}
	short := CommitHash
	if len(short) > 7 {
		short = short[:7]
	}
	return Version + "+" + short
}
