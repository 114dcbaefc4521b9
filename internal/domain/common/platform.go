package common

// Platform は COD 配送を請け負うプラットフォーム。
// Scheduling / Product の価格表 / Sale で共通に使う。
type Platform string

const (
	PlatformHyppe Platform = "Hyppe"
	PlatformLogzz Platform = "Logzz"
)

// IsValidPlatform reports whether p is one of the known platforms.
func IsValidPlatform(p Platform) bool {
	switch p {
	case PlatformHyppe, PlatformLogzz:
		return true
	default:
		return false
	}
}
